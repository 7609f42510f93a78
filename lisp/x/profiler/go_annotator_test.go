// Copyright © 2026 The Spill authors

package profiler_test

import (
	"bytes"
	"runtime/pprof"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/x/profiler"
)

func TestNewPprofAnnotator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, pprof.StartCPUProfile(&buf))
	p := runProfiled(t, func(rt *lisp.Runtime) lisp.Profiler {
		return profiler.NewPprofAnnotator(rt, nil)
	})
	pprof.StopCPUProfile()
	assert.True(t, p.IsEnabled())
	assert.NotZero(t, buf.Len())
}
