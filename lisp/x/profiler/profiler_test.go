// Copyright © 2026 The Spill authors

package profiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser"
)

const testSource = `
(def add-it
  (fn (x y)
    "Adds two numbers. @trace{ Add It }"
    (+ x y)))
(def add-again
  (fn (x y)
    "@trace{Add It Again}"
    (add-it x y)))
(def double (fn (x) (* x 2)))
(def traced
  (fn (x)
    "Doubles x. @trace"
    (double x)))
(add-again 1 (add-it 2 3))
(traced 4)
`

// runProfiled evaluates testSource with p attached to a new environment.
func runProfiled(t *testing.T, newProfiler func(*lisp.Runtime) lisp.Profiler) lisp.Profiler {
	t.Helper()
	env := lisp.NewEnv(nil)
	p := newProfiler(env.Runtime)
	lerr := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithProfiler(p))
	require.NoError(t, lisp.GoError(lerr))
	require.True(t, p.IsEnabled())
	v := env.LoadString("test.spl", testSource)
	require.NoError(t, lisp.GoError(v))
	require.Equal(t, "8", v.String())
	require.NoError(t, p.Complete())
	return p
}
