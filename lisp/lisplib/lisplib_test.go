// Copyright © 2026 The Spill authors

package lisplib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib"
)

func TestNewDocEnv(t *testing.T) {
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	require.NotNil(t, env)

	for _, name := range []string{"help", "help-names", "map", "car"} {
		v := env.Get(lisp.Symbol(name))
		if assert.Equal(t, lisp.LFun, v.Type, name) {
			assert.NotEmpty(t, v.Docstring(), name)
		}
	}
	_, ok := env.Runtime.Macros.Lookup("and")
	assert.True(t, ok)
}

func TestNewDocEnv_Config(t *testing.T) {
	_, err := lisplib.NewDocEnv(lisp.WithCoreLibrary("missing.spl"))
	assert.Error(t, err)
}
