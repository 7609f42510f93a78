// Copyright © 2026 The Spill authors

package lisp

import (
	"github.com/luthersystems/spill/parser/token"
)

// Eval evaluates v in env.  Symbols are looked up, the empty list and all
// atoms other than symbols evaluate to themselves, and lists are either
// special forms or function applications.  Eval does not expand macros; see
// EvalExpr.
func (env *LEnv) Eval(v *LVal) *LVal {
	if v.Source != nil {
		env.Loc = v.Source
	}
	switch v.Type {
	case LSymbol:
		return env.Get(v)
	case LSExpr:
		if len(v.Cells) == 0 {
			return v
		}
		res := env.EvalSExpr(v)
		if res.Type == LError {
			env.ErrorAssociate(res)
		}
		return res
	default:
		return v
	}
}

// EvalSExpr evaluates a non-empty list.  When the head of s is the name of a
// special operator the operator receives the remaining cells unevaluated.
// Otherwise every cell is evaluated from left to right and the value of the
// head is applied to the remaining values.
func (env *LEnv) EvalSExpr(s *LVal) *LVal {
	if name, ok := s.HeadSymbol(); ok {
		if op, ok := env.Runtime.SpecialOp(name); ok {
			return env.SpecialOpCall(op, SExpr(s.Cells[1:]))
		}
	}
	cells := make([]*LVal, len(s.Cells))
	for i, c := range s.Cells {
		v := env.Eval(c)
		if v.Type == LError {
			return v
		}
		cells[i] = v
	}
	env.setLoc(s.Source)
	fun := cells[0]
	name := fun.Str
	if name == "" && s.Cells[0].Type == LSymbol {
		name = s.Cells[0].Str
	}
	return env.funCall(fun, SExpr(cells[1:]), name)
}

// SpecialOpCall invokes the special operator op with unevaluated operands.
func (env *LEnv) SpecialOpCall(op, args *LVal) *LVal {
	fd := op.FunData()
	if fd == nil || !fd.Special {
		return env.ErrorConditionf(CondTypeError, "not a special operator: %v", op)
	}
	return fd.Builtin(env, args)
}

// Apply calls fun with the already evaluated arguments in the list args.
func (env *LEnv) Apply(fun, args *LVal) *LVal {
	if args.Type != LSExpr {
		return env.ErrorConditionf(CondTypeError, "argument list is not a list: %v", args.Type)
	}
	return env.funCall(fun, args, fun.Str)
}

func (env *LEnv) funCall(fun, args *LVal, name string) *LVal {
	fd := fun.FunData()
	if fd == nil {
		return env.ErrorConditionf(CondTypeError, "not a function: %v", fun)
	}
	if fd.Special {
		return env.ErrorConditionf(CondTypeError, "special operator cannot be applied: %s", fun.Str)
	}
	if lerr := env.checkArity(fun, name, len(args.Cells)); lerr != nil {
		return lerr
	}
	err := env.Runtime.Stack.Push(env.Loc, name)
	if err != nil {
		return env.ErrorConditionf(CondStackOverflow, "%v", err)
	}
	defer env.Runtime.Stack.Pop()
	defer env.trace(fun)()

	if fd.Builtin != nil {
		return fd.Builtin(env, args)
	}
	fenv := env.bind(fun, args)
	return fenv.Eval(fun.Cells[1])
}

func (env *LEnv) trace(fun *LVal) func() {
	p := env.Runtime.Profiler
	if p == nil || !p.IsEnabled() {
		return func() {}
	}
	return p.Start(fun)
}

func (env *LEnv) checkArity(fun *LVal, name string, n int) *LVal {
	required, variadic := arity(fun.Formals())
	if n >= required && (variadic || n == required) {
		return nil
	}
	if name == "" {
		name = "anonymous function"
	}
	if variadic {
		return env.ErrorConditionf(CondArityError, "%s: expected at least %d arguments but got %d", name, required, n)
	}
	return env.ErrorConditionf(CondArityError, "%s: expected %d arguments but got %d", name, required, n)
}

func arity(formals *LVal) (required int, variadic bool) {
	for _, f := range formals.Cells {
		if f.IsSymbol(VarArgSymbol) {
			return required, true
		}
		required++
	}
	return required, false
}

// bind returns a child of the closure's defining environment in which the
// formal arguments of fun are bound to args.  The argument count must
// already have been checked.
func (env *LEnv) bind(fun, args *LVal) *LEnv {
	fenv := NewEnv(fun.FunData().Env)
	formals := fun.Cells[0].Cells
	for i, f := range formals {
		if f.IsSymbol(VarArgSymbol) {
			rest := make([]*LVal, len(args.Cells)-i)
			copy(rest, args.Cells[i:])
			fenv.Scope[formals[i+1].Str] = SExpr(rest)
			break
		}
		fenv.Scope[f.Str] = args.Cells[i]
	}
	return fenv
}

func (env *LEnv) setLoc(loc *token.Location) {
	if loc != nil {
		env.Loc = loc
	}
}
