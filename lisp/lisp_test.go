// Copyright © 2026 The Spill authors

package lisp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/spill/lisp"
)

func TestTrue(t *testing.T) {
	falsy := []*lisp.LVal{
		lisp.Symbol("false"),
		lisp.Int(0),
		lisp.Nil(),
		lisp.String(""),
	}
	for _, v := range falsy {
		assert.False(t, lisp.True(v), "%v", v)
		assert.True(t, lisp.Not(v), "%v", v)
	}
	truthy := []*lisp.LVal{
		lisp.Symbol("true"),
		lisp.Symbol("nil"),
		lisp.Int(-1),
		lisp.List(lisp.Nil()),
		lisp.String("false"),
		lisp.Primitive("f", lisp.Formals(), identity, ""),
	}
	for _, v := range truthy {
		assert.True(t, lisp.True(v), "%v", v)
	}
}

func TestEqual(t *testing.T) {
	a := lisp.List(lisp.Int(1), lisp.Symbol("x"), lisp.List(lisp.String("s")))
	b := lisp.List(lisp.Int(1), lisp.Symbol("x"), lisp.List(lisp.String("s")))
	assert.True(t, lisp.Equal(a, b))
	assert.False(t, lisp.Equal(a, lisp.List(lisp.Int(1))))
	assert.False(t, lisp.Equal(lisp.Symbol("x"), lisp.String("x")))
	assert.True(t, lisp.Equal(lisp.Nil(), lisp.List()))

	f := lisp.Primitive("f", lisp.Formals(), identity, "")
	named := f.Copy()
	named.Str = "g"
	assert.True(t, lisp.Equal(f, named))
	assert.False(t, lisp.Equal(f, lisp.Primitive("f", lisp.Formals(), identity, "")))
}

func TestString(t *testing.T) {
	tests := []struct {
		v       *lisp.LVal
		str     string
		display string
	}{
		{lisp.Int(-3), "-3", "-3"},
		{lisp.Symbol("set!"), "set!", "set!"},
		{lisp.String("a\"b\\c\nd"), `"a\"b\\c\nd"`, "a\"b\\c\nd"},
		{lisp.Nil(), "()", "()"},
		{lisp.Quote(lisp.Symbol("x")), "(quote x)", "(quote x)"},
		{lisp.List(lisp.String("a"), lisp.List(lisp.Int(1))), `("a" (1))`, "(a (1))"},
		{lisp.Primitive("car", lisp.Formals("lis"), identity, ""), "<builtin car>", "<builtin car>"},
		{&lisp.LVal{Type: lisp.LFun, Str: "bare"}, "<builtin bare>", "<builtin bare>"},
		{lisp.Closure(nil, lisp.Formals("x"), lisp.Symbol("x"), ""), "<fn (x) x>", "<fn (x) x>"},
		{lisp.ErrorConditionf(lisp.CondTypeError, "bad %s", "thing"), "type-error: bad thing", "type-error: bad thing"},
	}
	for i, test := range tests {
		assert.Equal(t, test.str, test.v.String(), "test %d", i)
		assert.Equal(t, test.display, test.v.Display(), "test %d", i)
	}
}

func identity(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	return args.Cells[0]
}

func TestPrimitive(t *testing.T) {
	fun := lisp.Primitive("id", lisp.Formals("x"), identity, "Returns x.")
	assert.True(t, fun.IsBuiltin())
	assert.Equal(t, "id", fun.Str)
	assert.Equal(t, "(x)", fun.Formals().String())
	assert.Panics(t, func() { lisp.Primitive("broken", lisp.Formals(), nil, "") })
}

func TestCopy(t *testing.T) {
	v := lisp.List(lisp.Int(1), lisp.Int(2))
	cp := v.Copy()
	cp.Cells[0] = lisp.Int(3)
	assert.Equal(t, "(1 2)", v.String())
	assert.Equal(t, "(3 2)", cp.String())
}

func TestHeadSymbol(t *testing.T) {
	h, ok := lisp.List(lisp.Symbol("a"), lisp.Int(1)).HeadSymbol()
	assert.True(t, ok)
	assert.Equal(t, "a", h)
	_, ok = lisp.List(lisp.Int(1)).HeadSymbol()
	assert.False(t, ok)
	_, ok = lisp.Nil().HeadSymbol()
	assert.False(t, ok)
	_, ok = lisp.Symbol("a").HeadSymbol()
	assert.False(t, ok)
}

func TestGoError(t *testing.T) {
	assert.Nil(t, lisp.GoError(lisp.Int(1)))
	lerr := lisp.ErrorConditionf(lisp.CondArityError, "too many")
	err := lisp.GoError(lerr)
	assert.EqualError(t, err, "arity-error: too many")
	assert.Equal(t, lisp.CondArityError, err.(*lisp.ErrorVal).Condition())
	assert.Equal(t, "too many", err.(*lisp.ErrorVal).ErrorMessage())
	assert.True(t, lisp.IsCondition(lerr, lisp.CondArityError))
	assert.False(t, lisp.IsCondition(lerr, lisp.CondTypeError))
	assert.False(t, lisp.IsCondition(lisp.Symbol(lisp.CondArityError), lisp.CondArityError))
}
