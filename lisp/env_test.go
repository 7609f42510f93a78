// Copyright © 2026 The Spill authors

package lisp_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser"
	"github.com/luthersystems/spill/spilltest"
)

func newEnv(t *testing.T, config ...lisp.Config) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	config = append([]lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(io.Discard),
	}, config...)
	lerr := lisp.InitializeUserEnv(env, config...)
	require.True(t, lerr.IsNil(), "initialization failure: %v", lerr)
	return env
}

func BenchmarkFunCallRecursion(b *testing.B) {
	spilltest.RunBenchmark(b, `
	  (def loopn (fn (n f) (if (<= n 0) ()
	    (begin (loopn (- n 1) f)
	           (f n)))))
	  (loopn 1000 (fn (x) x))
	`)
}

func BenchmarkCoreLibrary(b *testing.B) {
	spilltest.RunBenchmark(b, `
	  (length (filter (fn (x) (> x 50)) (map (fn (x) (* x 2)) (fromto 1 100))))
	`)
}

func TestEnvScoping(t *testing.T) {
	global := lisp.NewEnv(nil)
	child := lisp.NewEnv(global)
	assert.Equal(t, global, child.Root())
	assert.Same(t, global.Runtime, child.Runtime)

	global.Put(lisp.Symbol("a"), lisp.Int(1))
	assert.Equal(t, 1, child.Get(lisp.Symbol("a")).Int)

	child.Put(lisp.Symbol("a"), lisp.Int(2))
	assert.Equal(t, 2, child.Get(lisp.Symbol("a")).Int)
	assert.Equal(t, 1, global.Get(lisp.Symbol("a")).Int)

	lerr := child.Update(lisp.Symbol("a"), lisp.Int(3))
	assert.True(t, lerr.IsNil())
	assert.Equal(t, 3, child.Get(lisp.Symbol("a")).Int)
	assert.Equal(t, 1, global.Get(lisp.Symbol("a")).Int)

	grandchild := lisp.NewEnv(child)
	grandchild.Update(lisp.Symbol("a"), lisp.Int(4))
	assert.Equal(t, 4, child.Scope["a"].Int)
	assert.NotContains(t, grandchild.Scope, "a")

	lerr = grandchild.Update(lisp.Symbol("b"), lisp.Int(5))
	assert.True(t, lisp.IsCondition(lerr, lisp.CondVariableNotFound))
	assert.NotContains(t, global.Scope, "b")
	assert.True(t, lisp.IsCondition(grandchild.Get(lisp.Symbol("b")), lisp.CondVariableNotFound))

	lerr = global.Put(lisp.Int(1), lisp.Int(1))
	assert.True(t, lisp.IsCondition(lerr, lisp.CondTypeError))
}

func TestInitializeUserEnv(t *testing.T) {
	env := newEnv(t)
	for _, name := range []string{"quote", "if", "def", "set!", "begin", "fn", "eval", "defmacro"} {
		_, ok := env.Runtime.SpecialOp(name)
		assert.True(t, ok, name)
		assert.Equal(t, lisp.LFun, env.Get(lisp.Symbol(name)).Type, name)
	}
	assert.Equal(t, []string{"begin", "def", "defmacro", "eval", "fn", "if", "quote", "set!"}, env.Runtime.SpecialOpNames())
	for _, name := range []string{"+", "car", "pr", "list", "map", "fromto"} {
		assert.Equal(t, lisp.LFun, env.Get(lisp.Symbol(name)).Type, name)
	}
	assert.Equal(t, []string{"and", "or", "when"}, env.Runtime.Macros.Names())
	assert.True(t, lisp.Equal(lisp.Symbol("true"), env.Get(lisp.Symbol("true"))))
	assert.NotEmpty(t, env.Get(lisp.Symbol("map")).Docstring())
	assert.NotEmpty(t, env.Get(lisp.Symbol("car")).Docstring())
}

func TestInitializeUserEnv_NoReader(t *testing.T) {
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env)
	assert.True(t, lisp.IsCondition(lerr, lisp.CondLibraryError), "%v", lerr)
}

func TestInitializeUserEnv_MissingLibrary(t *testing.T) {
	env := lisp.NewEnv(nil)
	lerr := lisp.InitializeUserEnv(env,
		lisp.WithReader(parser.NewReader()),
		lisp.WithLibrary(&lisp.SearchPathLibrary{Paths: []string{t.TempDir()}}),
	)
	assert.True(t, lisp.IsCondition(lerr, lisp.CondLibraryError), "%v", lerr)
	assert.ErrorContains(t, lisp.GoError(lerr), "core.spl")
}

func TestInitializeUserEnv_CustomCoreLibrary(t *testing.T) {
	lib := &lisp.FSLibrary{FS: fstest.MapFS{
		"tiny.spl": {Data: []byte(`(def answer 42)`)},
	}}
	env := newEnv(t, lisp.WithLibrary(lib), lisp.WithCoreLibrary("tiny.spl"))
	assert.Equal(t, 42, env.Get(lisp.Symbol("answer")).Int)
	assert.True(t, lisp.IsCondition(env.Get(lisp.Symbol("map")), lisp.CondVariableNotFound))
}

func TestReadEval(t *testing.T) {
	var out bytes.Buffer
	env := newEnv(t, lisp.WithStdout(&out))

	v := env.ReadEval("test", `(def x 1) (pr "a") (+ x 1)`)
	assert.Equal(t, "2", v.String())
	assert.Equal(t, "a", out.String())

	v = env.ReadEval("test", "")
	assert.True(t, v.IsNil())

	// Forms before an error are evaluated, forms after it are not.
	out.Reset()
	v = env.ReadEval("test", `(pr "before") (car ()) (pr "after")`)
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
	assert.Equal(t, "before", out.String())

	out.Reset()
	v = env.ReadEval("test", `(set! x 5) (pr "ok") )`)
	assert.True(t, lisp.IsCondition(v, lisp.CondSyntaxError), "%v", v)
	assert.Equal(t, 5, env.Get(lisp.Symbol("x")).Int)
	assert.Equal(t, "ok", out.String())
}

func TestReadEval_ErrorLocation(t *testing.T) {
	env := newEnv(t)
	v := env.ReadEval("test", "(def f (fn (x) (car x)))\n(f 1)")
	require.Equal(t, lisp.LError, v.Type)
	err := lisp.GoError(v)
	var lerr *lisp.ErrorVal
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, lisp.CondTypeError, lerr.Condition())
	assert.Equal(t, "test:1:16: type-error: car: argument is not a list: int", err.Error())

	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	require.NoError(t, ioerr)
	assert.Contains(t, buf.String(), "Stack Trace [2 frames -- entrypoint last]:")
	assert.Contains(t, buf.String(), "height 1: test:1:16: car")
	assert.Contains(t, buf.String(), "height 0: test:2:1: f")
}

func TestEvalExpr(t *testing.T) {
	env := newEnv(t)
	expr := lisp.List(lisp.Symbol("and"), lisp.Int(1), lisp.List(lisp.Symbol("+"), lisp.Int(2), lisp.Int(3)))
	assert.Equal(t, "5", env.EvalExpr(expr).String())
	assert.Equal(t, "(and 1 (+ 2 3))", expr.String(), "expansion must not modify its input")

	// Eval alone does not expand macros.
	v := env.Eval(expr)
	assert.True(t, lisp.IsCondition(v, lisp.CondVariableNotFound), "%v", v)
}

func TestApply(t *testing.T) {
	env := newEnv(t)
	v := env.Apply(env.Get(lisp.Symbol("+")), lisp.List(lisp.Int(1), lisp.Int(2)))
	assert.Equal(t, 3, v.Int)
	square := env.ReadEval("test", "(fn (x) (* x x))")
	assert.Equal(t, 16, env.Apply(square, lisp.List(lisp.Int(4))).Int)
	v = env.Apply(lisp.Int(1), lisp.Nil())
	assert.True(t, lisp.IsCondition(v, lisp.CondTypeError))
	assert.Equal(t, 0, env.Runtime.Stack.Height())
}

func TestStackLimit(t *testing.T) {
	env := newEnv(t, lisp.WithMaximumStackHeight(20))
	v := env.ReadEval("test", "(def down (fn (n) (if (> n 0) (down (- n 1)) 'done)))")
	require.NotEqual(t, lisp.LError, v.Type, "%v", v)
	assert.Equal(t, "done", env.ReadEval("test", "(down 10)").String())
	v = env.ReadEval("test", "(down 30)")
	assert.True(t, lisp.IsCondition(v, lisp.CondStackOverflow), "%v", v)
	assert.Equal(t, 0, env.Runtime.Stack.Height())
}

func TestMacroExpansionDepth(t *testing.T) {
	env := newEnv(t, lisp.WithMaxMacroExpansionDepth(5))
	env.ReadEval("test", "(defmacro nest (x) `(list (nest ,x)))")
	v := env.ReadEval("test", "(nest 1)")
	assert.True(t, lisp.IsCondition(v, lisp.CondMacroExpansionDepthExceeded), "%v", v)
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	env := newEnv(t, lisp.WithLogger(logger))

	var loaded bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "loading library" {
			loaded = true
			assert.Equal(t, "core.spl", entry.Data["library"])
		}
	}
	assert.True(t, loaded)

	hook.Reset()
	env.ReadEval("test", "(and 1 2)")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "macro expansion", entry.Message)
	assert.Equal(t, "(and 1 2)", entry.Data["before"])
	assert.Equal(t, "(if (not 1) (quote false) 2)", entry.Data["after"])
}

func TestTextLoader(t *testing.T) {
	loader, err := lisp.TextLoader(parser.NewReader(), "defs", strings.NewReader(`(def z 9) (and z z)`))
	require.NoError(t, err)
	env := newEnv(t)
	assert.Equal(t, "9", loader(env).String())
	assert.Equal(t, 9, env.Get(lisp.Symbol("z")).Int)

	_, err = lisp.TextLoader(parser.NewReader(), "bad", strings.NewReader(`(`))
	assert.Error(t, err)
	assert.Panics(t, func() { lisp.LoaderMust(nil, err) })
}
