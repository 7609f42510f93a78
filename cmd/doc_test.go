// Copyright © 2026 The Spill authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib"
)

func newTestDocEnv(t *testing.T) *lisp.LEnv {
	t.Helper()
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	return env
}

// executeDoc runs a doc command documenting env with the given arguments.
func executeDoc(t *testing.T, env *lisp.LEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := DocCommand(WithEnv(env))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDocCommand_DefaultFlags(t *testing.T) {
	cmd := DocCommand()
	assert.Equal(t, "doc [flags] [NAME]", cmd.Use)
	for _, name := range []string{"source-file", "names", "missing"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestDocCommand_Name(t *testing.T) {
	env := newTestDocEnv(t)

	out, err := executeDoc(t, env, "car")
	require.NoError(t, err)
	assert.Contains(t, out, "builtin (car lis)\n")

	out, err = executeDoc(t, env, "when")
	require.NoError(t, err)
	assert.Contains(t, out, "macro (when c * body)\n")

	_, err = executeDoc(t, env, "no-such-name")
	assert.Error(t, err)
}

func TestDocCommand_WithEnv(t *testing.T) {
	env := newTestDocEnv(t)
	rc := env.ReadEval("test", `(def my-helper (fn (x) "Helps with x." x))`)
	require.NoError(t, lisp.GoError(rc))

	out, err := executeDoc(t, env, "my-helper")
	require.NoError(t, err)
	assert.Equal(t, "function (my-helper x)\n  Helps with x.\n", out)
}

func TestDocCommand_SourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.spl")
	err := os.WriteFile(path, []byte(`(def area (fn (w h) "Returns the area of a w by h rectangle." (* w h)))`), 0600)
	require.NoError(t, err)

	out, err := executeDoc(t, newTestDocEnv(t), "-f", path, "area")
	require.NoError(t, err)
	assert.Contains(t, out, "function (area w h)\n")
	assert.Contains(t, out, "Returns the area")

	broken := filepath.Join(t.TempDir(), "broken.spl")
	require.NoError(t, os.WriteFile(broken, []byte("(car 1 2 3"), 0600))
	out, err = executeDoc(t, newTestDocEnv(t), "-f", broken, "car")
	assert.ErrorIs(t, err, errEvaluation)
	assert.Contains(t, out, "syntax-error")
}

func TestDocCommand_Names(t *testing.T) {
	out, err := executeDoc(t, newTestDocEnv(t), "--names")
	require.NoError(t, err)
	assert.Contains(t, out, "special operators:\n")
	assert.Contains(t, out, "macros:\n")
	assert.Contains(t, out, "functions:\n")
}

func TestDocCommand_All(t *testing.T) {
	out, err := executeDoc(t, newTestDocEnv(t))
	require.NoError(t, err)
	assert.Contains(t, out, "special-op (quote expr)\n")
	assert.Contains(t, out, "builtin (cons head tail)\n")
	assert.Contains(t, out, "function (map f xs)\n")
}

func TestDocCommand_Missing(t *testing.T) {
	env := newTestDocEnv(t)
	out, err := executeDoc(t, env, "--missing")
	require.NoError(t, err)
	assert.Empty(t, out)

	rc := env.ReadEval("test", `(def undocumented (fn (x) x))`)
	require.NoError(t, lisp.GoError(rc))
	out, err = executeDoc(t, env, "--missing")
	assert.EqualError(t, err, "1 names have no documentation")
	assert.Contains(t, out, "function undocumented\n")
}
