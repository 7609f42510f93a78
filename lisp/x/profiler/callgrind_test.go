// Copyright © 2026 The Spill authors

package profiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/x/profiler"
)

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

func TestNewCallgrind(t *testing.T) {
	out := &closingBuffer{}
	runProfiled(t, func(rt *lisp.Runtime) lisp.Profiler {
		return profiler.NewCallgrindProfiler(rt, out)
	})
	assert.True(t, out.closed)
	prof := out.String()
	assert.True(t, strings.HasPrefix(prof, "version: 1\ncreator: spill"))
	assert.Contains(t, prof, "events: Time_(ns) Memory_(bytes)")
	assert.Contains(t, prof, ") add-again\n")
	assert.Contains(t, prof, ") ENTRYPOINT\n")
	assert.Contains(t, prof, "\nsummary ")
}

func TestCallgrindWithoutOutput(t *testing.T) {
	env := lisp.NewEnv(nil)
	p := profiler.NewCallgrindProfiler(env.Runtime, nil)
	assert.Error(t, p.Enable())
	assert.Error(t, p.Complete())
}
