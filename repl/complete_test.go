// Copyright © 2026 The Spill authors

package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser"
)

func TestSymbolCompleter(t *testing.T) {
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, lisp.WithReader(parser.NewReader()))
	require.NoError(t, lisp.GoError(rc))

	c := &symbolCompleter{env: env}

	candidates, offset := c.Do([]rune("(de"), 3)
	assert.Equal(t, 2, offset)
	assert.Equal(t, [][]rune{[]rune("f"), []rune("fmacro")}, candidates)

	// macros complete like functions
	candidates, offset = c.Do([]rune("(wh"), 3)
	assert.Equal(t, 2, offset)
	assert.Equal(t, [][]rune{[]rune("en")}, candidates)

	candidates, offset = c.Do([]rune("(map 'fi"), 8)
	assert.Equal(t, 2, offset)
	assert.Equal(t, [][]rune{[]rune("lter")}, candidates)

	candidates, _ = c.Do([]rune("(zzz-nonexistent"), 16)
	assert.Empty(t, candidates)

	candidates, offset = c.Do([]rune("( "), 2)
	assert.Empty(t, candidates)
	assert.Equal(t, 0, offset)
}
