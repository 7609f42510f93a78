// Copyright © 2026 The Spill authors

package lisp

import (
	"github.com/sirupsen/logrus"
)

var langSpecialOps = []*langBuiltin{
	{"quote", Formals("expr"), opQuote,
		`Returns expr without evaluating it.  The reader translates 'expr into
		(quote expr).`},
	{"if", Formals("condition", "then", VarArgSymbol, "clauses"), opIf,
		`Evaluates conditions in order until one is true and returns the value
		of the expression following it.  An odd final expression is a default
		evaluated when no condition is true.  Without a default the value of
		the last condition is returned.`},
	{"def", Formals("name", "expr"), opDef,
		`Binds name to the value of expr in the current environment and
		returns the value.`},
	{"set!", Formals("name", "expr"), opSet,
		`Assigns the value of expr to the nearest existing binding of name and
		returns the value.  It is an error if name is not bound.`},
	{"begin", Formals(VarArgSymbol, "exprs"), opBegin,
		`Evaluates exprs in order and returns the value of the last one.`},
	{"fn", Formals("formals", VarArgSymbol, "body"), opFn,
		`Returns a closure over the current environment.  The symbol * in
		formals binds the symbol after it to a list of the remaining
		arguments.  When body has more than one expression a leading string
		is the function's documentation and the rest are evaluated in order.`},
	{"eval", Formals("expr"), opEval,
		`Evaluates expr, expands macros in the result and evaluates it
		again in the current environment.`},
	{"defmacro", Formals("name", "formals", VarArgSymbol, "body"), opDefmacro,
		`Defines a macro.  The expander receives its arguments unevaluated and
		returns the expression which replaces the macro call.  Returns the
		macro name.`},
}

// DefaultSpecialOps returns the default set of special operators.  Special
// operators receive their operands unevaluated and are dispatched by the name
// at the head of a list.
func DefaultSpecialOps() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langSpecialOps))
	for i := range ops {
		ops[i] = langSpecialOps[i]
	}
	return ops
}

func opQuote(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) != 1 {
		return env.ErrorConditionf(CondArityError, "quote: expected 1 operand but got %d", len(args.Cells))
	}
	return args.Cells[0]
}

func opIf(env *LEnv, args *LVal) *LVal {
	cells := args.Cells
	if len(cells) == 0 {
		return env.ErrorConditionf(CondArityError, "if: expected at least 1 operand")
	}
	var cond *LVal
	for len(cells) >= 2 {
		cond = env.Eval(cells[0])
		if cond.Type == LError {
			return cond
		}
		if True(cond) {
			return env.Eval(cells[1])
		}
		cells = cells[2:]
	}
	if len(cells) == 1 {
		return env.Eval(cells[0])
	}
	return cond
}

func opDef(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) != 2 {
		return env.ErrorConditionf(CondArityError, "def: expected 2 operands but got %d", len(args.Cells))
	}
	name := args.Cells[0]
	if name.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "def: first operand is not a symbol: %v", name.Type)
	}
	v := env.Eval(args.Cells[1])
	if v.Type == LError {
		return v
	}
	if v.Type == LFun && v.Str == "" {
		v = v.Copy()
		v.Str = name.Str
	}
	if lerr := env.Put(name, v); lerr.Type == LError {
		return lerr
	}
	return v
}

func opSet(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) != 2 {
		return env.ErrorConditionf(CondArityError, "set!: expected 2 operands but got %d", len(args.Cells))
	}
	name := args.Cells[0]
	if name.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "set!: first operand is not a symbol: %v", name.Type)
	}
	v := env.Eval(args.Cells[1])
	if v.Type == LError {
		return v
	}
	if lerr := env.Update(name, v); lerr.Type == LError {
		return lerr
	}
	return v
}

func opBegin(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) == 0 {
		return env.ErrorConditionf(CondArityError, "begin: expected at least 1 operand")
	}
	var ret *LVal
	for _, expr := range args.Cells {
		ret = env.Eval(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

func opFn(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) < 2 {
		return env.ErrorConditionf(CondArityError, "fn: expected formals and a body")
	}
	return env.lambdaForm(args.Cells[0], args.Cells[1:])
}

// lambdaForm builds a closure from the operands of fn or defmacro.
func (env *LEnv) lambdaForm(formals *LVal, body []*LVal) *LVal {
	var doc string
	if len(body) > 1 && body[0].Type == LString {
		doc = body[0].Str
		body = body[1:]
	}
	expr := body[0]
	if len(body) > 1 {
		cells := make([]*LVal, 0, len(body)+1)
		cells = append(cells, Symbol("begin"))
		cells = append(cells, body...)
		expr = SExpr(cells)
		expr.Source = body[0].Source
	}
	return env.Lambda(formals, expr, doc)
}

func opEval(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) != 1 {
		return env.ErrorConditionf(CondArityError, "eval: expected 1 operand but got %d", len(args.Cells))
	}
	v := env.Eval(args.Cells[0])
	if v.Type == LError {
		return v
	}
	return env.EvalExpr(v)
}

func opDefmacro(env *LEnv, args *LVal) *LVal {
	if len(args.Cells) < 3 {
		return env.ErrorConditionf(CondArityError, "defmacro: expected a name, formals and a body")
	}
	name := args.Cells[0]
	if name.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "defmacro: first operand is not a symbol: %v", name.Type)
	}
	mac := env.lambdaForm(args.Cells[1], args.Cells[2:])
	if mac.Type == LError {
		return mac
	}
	mac.Str = name.Str
	env.Runtime.Macros.Define(name.Str, mac)
	env.Runtime.logger().WithFields(logrus.Fields{
		"macro":   name.Str,
		"formals": mac.Cells[0].String(),
	}).Debug("macro defined")
	return name
}
