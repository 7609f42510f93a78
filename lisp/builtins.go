// Copyright © 2026 The Spill authors

package lisp

import (
	"fmt"
	"math"
	"strings"
)

// LBuiltin is a function that performs executes a lisp function.
type LBuiltin func(env *LEnv, args *LVal) *LVal

// LBuiltinDef is a built-in function
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Eval(env *LEnv, args *LVal) *LVal
}

type langBuiltin struct {
	name    string
	formals *LVal
	fun     LBuiltin
	docs    string
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Eval(env *LEnv, args *LVal) *LVal {
	return fun.fun(env, args)
}

func (fun *langBuiltin) Docstring() string {
	return fun.docs
}

var langBuiltins = []*langBuiltin{
	{"+", Formals(VarArgSymbol, "x"), builtinAdd,
		`Returns the sum of its arguments, 0 when there are none.`},
	{"-", Formals("x", VarArgSymbol, "y"), builtinSub,
		`Subtracts the arguments following x from x.  With a single argument
		returns the negation of x.`},
	{"*", Formals(VarArgSymbol, "x"), builtinMul,
		`Returns the product of its arguments, 1 when there are none.`},
	{"/", Formals("x", "y"), builtinDiv,
		`Returns the floor of x divided by y.  Division by zero is an
		arithmetic-error.`},
	{"car", Formals("lis"), builtinCAR,
		`Returns the first element of a non-empty list.`},
	{"cdr", Formals("lis"), builtinCDR,
		`Returns the list of all elements of lis after the first.  The cdr of
		the empty list is the empty list.`},
	{"cons", Formals("head", "tail"), builtinCons,
		`Returns a new list with head in front of the elements of tail.`},
	{"null?", Formals("expr"), builtinIsNull,
		`Returns true if expr is the empty list.`},
	{"pair?", Formals("expr"), builtinIsPair,
		`Returns true if expr is a list with at least one element.`},
	{"append", Formals(VarArgSymbol, "lists"), builtinAppend,
		`Returns a new list containing the elements of each list in order.`},
	{"?", Formals("expr"), builtinTruth,
		`Returns the symbol true if expr is a true value and false otherwise.`},
	{"eq?", Formals("a", "b"), builtinEqual,
		`Returns true if a and b are structurally equal.`},
	{"==", Formals("a", "b"), builtinEqual,
		`Returns true if a and b are structurally equal.`},
	{"!=", Formals("a", "b"), builtinNotEqual,
		`Returns true if a and b are not structurally equal.`},
	{"<", Formals("a", "b"), builtinLT,
		`Returns true if integer a is less than integer b.`},
	{">", Formals("a", "b"), builtinGT,
		`Returns true if integer a is greater than integer b.`},
	{"<=", Formals("a", "b"), builtinLEQ,
		`Returns true if integer a is less than or equal to integer b.`},
	{">=", Formals("a", "b"), builtinGEQ,
		`Returns true if integer a is greater than or equal to integer b.`},
	{"pr", Formals(VarArgSymbol, "args"), builtinPr,
		`Writes the display form of each argument to standard output, with no
		separators, and returns the written text as a string.`},
	{"macroexpand", Formals("quoted-form"), builtinMacroExpand,
		`Returns the complete macro expansion of quoted-form.`},
	{"type", Formals("value"), builtinType,
		`Returns a symbol naming the type of value.`},
}

// DefaultBuiltins returns the default set of LBuiltinDefs added to LEnv
// objects when LEnv.AddBuiltins is called without arguments.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins))
	for i := range langBuiltins {
		ops[i] = langBuiltins[i]
	}
	return ops
}

func intArgs(env *LEnv, name string, args []*LVal) ([]int, *LVal) {
	xs := make([]int, len(args))
	for i, v := range args {
		if v.Type != LInt {
			return nil, env.ErrorConditionf(CondTypeError, "%s: argument is not an integer: %v", name, v)
		}
		xs[i] = v.Int
	}
	return xs, nil
}

func builtinAdd(env *LEnv, args *LVal) *LVal {
	xs, lerr := intArgs(env, "+", args.Cells)
	if lerr != nil {
		return lerr
	}
	sum := 0
	for _, x := range xs {
		var ok bool
		if sum, ok = addInt(sum, x); !ok {
			return errOverflow(env, "+")
		}
	}
	return Int(sum)
}

func builtinSub(env *LEnv, args *LVal) *LVal {
	xs, lerr := intArgs(env, "-", args.Cells)
	if lerr != nil {
		return lerr
	}
	if len(xs) == 1 {
		xs = []int{0, xs[0]}
	}
	diff := xs[0]
	for _, x := range xs[1:] {
		var ok bool
		if diff, ok = subInt(diff, x); !ok {
			return errOverflow(env, "-")
		}
	}
	return Int(diff)
}

func builtinMul(env *LEnv, args *LVal) *LVal {
	xs, lerr := intArgs(env, "*", args.Cells)
	if lerr != nil {
		return lerr
	}
	prod := 1
	for _, x := range xs {
		var ok bool
		if prod, ok = mulInt(prod, x); !ok {
			return errOverflow(env, "*")
		}
	}
	return Int(prod)
}

func builtinDiv(env *LEnv, args *LVal) *LVal {
	xs, lerr := intArgs(env, "/", args.Cells)
	if lerr != nil {
		return lerr
	}
	x, y := xs[0], xs[1]
	if y == 0 {
		return env.ErrorConditionf(CondArithmeticError, "division by zero")
	}
	if x == math.MinInt && y == -1 {
		return errOverflow(env, "/")
	}
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return Int(q)
}

func errOverflow(env *LEnv, name string) *LVal {
	return env.ErrorConditionf(CondArithmeticError, "%s: integer overflow", name)
}

func addInt(a, b int) (int, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func subInt(a, b int) (int, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return c, false
	}
	return c, c/b == a
}

func builtinCAR(env *LEnv, args *LVal) *LVal {
	lis := args.Cells[0]
	if lis.Type != LSExpr {
		return env.ErrorConditionf(CondTypeError, "car: argument is not a list: %v", lis.Type)
	}
	if len(lis.Cells) == 0 {
		return env.ErrorConditionf(CondTypeError, "car: argument is the empty list")
	}
	return lis.Cells[0]
}

func builtinCDR(env *LEnv, args *LVal) *LVal {
	lis := args.Cells[0]
	if lis.Type != LSExpr {
		return env.ErrorConditionf(CondTypeError, "cdr: argument is not a list: %v", lis.Type)
	}
	if len(lis.Cells) == 0 {
		return Nil()
	}
	return SExpr(lis.Cells[1:])
}

func builtinCons(env *LEnv, args *LVal) *LVal {
	head, tail := args.Cells[0], args.Cells[1]
	if tail.Type != LSExpr {
		return env.ErrorConditionf(CondTypeError, "cons: second argument is not a list: %v", tail.Type)
	}
	cells := make([]*LVal, 0, len(tail.Cells)+1)
	cells = append(cells, head)
	cells = append(cells, tail.Cells...)
	return SExpr(cells)
}

func builtinIsNull(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].IsNil())
}

func builtinIsPair(env *LEnv, args *LVal) *LVal {
	return Bool(args.Cells[0].Len() > 0)
}

func builtinAppend(env *LEnv, args *LVal) *LVal {
	size := 0
	for _, lis := range args.Cells {
		if lis.Type != LSExpr {
			return env.ErrorConditionf(CondTypeError, "append: argument is not a list: %v", lis)
		}
		size += len(lis.Cells)
	}
	cells := make([]*LVal, 0, size)
	for _, lis := range args.Cells {
		cells = append(cells, lis.Cells...)
	}
	return SExpr(cells)
}

func builtinTruth(env *LEnv, args *LVal) *LVal {
	return Bool(True(args.Cells[0]))
}

func builtinEqual(env *LEnv, args *LVal) *LVal {
	return Bool(Equal(args.Cells[0], args.Cells[1]))
}

func builtinNotEqual(env *LEnv, args *LVal) *LVal {
	return Bool(!Equal(args.Cells[0], args.Cells[1]))
}

func compareInts(env *LEnv, name string, args *LVal, cmp func(a, b int) bool) *LVal {
	xs, lerr := intArgs(env, name, args.Cells)
	if lerr != nil {
		return lerr
	}
	return Bool(cmp(xs[0], xs[1]))
}

func builtinLT(env *LEnv, args *LVal) *LVal {
	return compareInts(env, "<", args, func(a, b int) bool { return a < b })
}

func builtinGT(env *LEnv, args *LVal) *LVal {
	return compareInts(env, ">", args, func(a, b int) bool { return a > b })
}

func builtinLEQ(env *LEnv, args *LVal) *LVal {
	return compareInts(env, "<=", args, func(a, b int) bool { return a <= b })
}

func builtinGEQ(env *LEnv, args *LVal) *LVal {
	return compareInts(env, ">=", args, func(a, b int) bool { return a >= b })
}

func builtinPr(env *LEnv, args *LVal) *LVal {
	var buf strings.Builder
	for _, v := range args.Cells {
		buf.WriteString(v.Display())
	}
	s := buf.String()
	if _, err := fmt.Fprint(env.Runtime.Stdout, s); err != nil {
		return env.Error(err)
	}
	return String(s)
}

func builtinMacroExpand(env *LEnv, args *LVal) *LVal {
	return env.MacroExpand(args.Cells[0])
}

func builtinType(env *LEnv, args *LVal) *LVal {
	return GetType(args.Cells[0])
}
