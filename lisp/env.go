// Copyright © 2026 The Spill authors

package lisp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/luthersystems/spill/parser/token"
)

// LEnv is a lisp environment.  The global environment has a nil Parent.
// Every closure call creates an LEnv whose Parent is the environment the
// closure was defined in.
type LEnv struct {
	Loc     *token.Location
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
}

// InitializeUserEnv creates the default user environment: the special
// operators, primitives and boolean symbols are bound in env, the configs are
// applied, and the core library is loaded through env.Runtime.Library.
func InitializeUserEnv(env *LEnv, config ...Config) *LVal {
	env.AddSpecialOps(DefaultSpecialOps()...)
	env.AddBuiltins(DefaultBuiltins()...)
	env.Scope[TrueSymbol] = Symbol(TrueSymbol)
	env.Scope[FalseSymbol] = Symbol(FalseSymbol)
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return lerr
		}
	}
	if env.Runtime.CoreLibrary == "" {
		return Nil()
	}
	rc := env.LoadLibrary(env.Runtime.CoreLibrary)
	if rc.Type == LError {
		return rc
	}
	return Nil()
}

// NewEnvRuntime returns a new root LEnv which uses rt.  If rt is nil a
// StandardRuntime is used.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	return &LEnv{
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns a new LEnv with the given parent.  If parent is nil a root
// environment with a StandardRuntime is returned.
func NewEnv(parent *LEnv) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return &LEnv{
		Scope:   make(map[string]*LVal),
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// Root returns the global environment of env.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// ReadEval parses text using env.Runtime.Reader and macro-expands then
// evaluates each top-level expression in env, in order.  ReadEval returns the
// value of the last expression or the first error encountered.  Expressions
// following an error are not evaluated.
func (env *LEnv) ReadEval(name, text string) *LVal {
	return env.Load(name, strings.NewReader(text))
}

// Load reads LVals from r and evaluates them in order, like ReadEval.  If
// env.Runtime.Reader has not been set then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) *LVal {
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	sr, ok := env.Runtime.Reader.(StreamReader)
	if !ok {
		exprs, err := env.Runtime.Reader.Read(name, r)
		if err != nil {
			return env.Error(err)
		}
		return env.load(exprs)
	}
	ret := Nil()
	err := sr.ReadEach(name, r, func(expr *LVal) error {
		ret = env.EvalExpr(expr)
		return GoError(ret)
	})
	if err != nil {
		return env.Error(err)
	}
	return ret
}

// LoadLocation reads and evaluates the expressions in r, associating them
// with the physical location loc when the runtime Reader supports it.
func (env *LEnv) LoadLocation(name string, loc string, r io.Reader) *LVal {
	if env.Runtime.Reader == nil {
		return env.Errorf("no reader for environment runtime")
	}
	reader, ok := env.Runtime.Reader.(LocationReader)
	if !ok {
		return env.Load(name, r)
	}
	exprs, err := reader.ReadLocation(name, loc, r)
	if err != nil {
		return env.Error(err)
	}
	return env.load(exprs)
}

// LoadFile uses env.Runtime.Library to locate a source file and evaluates
// the expressions it contains.  A syntax error prevents execution of any
// expression in the file.
func (env *LEnv) LoadFile(loc string) *LVal {
	if env.Runtime.Library == nil {
		return env.ErrorConditionf(CondLibraryError, "no source library in environment runtime")
	}
	name, path, src, err := env.Runtime.Library.LoadSource(loc)
	if err != nil {
		return env.ErrorConditionf(CondLibraryError, "%v", err)
	}
	return env.LoadLocation(name, path, bytes.NewReader(src))
}

// LoadLibrary loads the library source named name, like LoadFile, and logs
// the location it was loaded from.
func (env *LEnv) LoadLibrary(name string) *LVal {
	if env.Runtime.Reader == nil {
		return env.ErrorConditionf(CondLibraryError, "cannot load library %s: no reader for environment runtime", name)
	}
	if env.Runtime.Library == nil {
		return env.ErrorConditionf(CondLibraryError, "cannot load library %s: no source library in environment runtime", name)
	}
	_, path, src, err := env.Runtime.Library.LoadSource(name)
	if err != nil {
		return env.ErrorConditionf(CondLibraryError, "cannot load library %s: %v", name, err)
	}
	env.Runtime.logger().WithFields(logrus.Fields{
		"library": name,
		"path":    path,
	}).Debug("loading library")
	return env.LoadLocation(name, path, bytes.NewReader(src))
}

// LoadString evaluates the expressions in the string exprs.
func (env *LEnv) LoadString(name, exprs string) *LVal {
	return env.Load(name, strings.NewReader(exprs))
}

func (env *LEnv) load(exprs []*LVal) *LVal {
	ret := Nil()
	for _, expr := range exprs {
		ret = env.EvalExpr(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

// EvalExpr macro-expands v and evaluates the expansion in env, bypassing the
// reader.
func (env *LEnv) EvalExpr(v *LVal) *LVal {
	expanded := env.MacroExpand(v)
	if expanded.Type == LError {
		return expanded
	}
	return env.Eval(expanded)
}

// Get looks up the value bound to symbol k in env and its ancestors.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[k.Str]; ok {
			return v
		}
	}
	return env.ErrorConditionf(CondVariableNotFound, "unbound symbol: %v", k.Str)
}

// Put binds symbol k to v in env, shadowing any binding in an ancestor.
func (env *LEnv) Put(k, v *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	env.Scope[k.Str] = v
	return Nil()
}

// Update rebinds symbol k to v in the nearest environment defining k.  Update
// returns an error and binds nothing when k is not defined.
func (env *LEnv) Update(k, v *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.Scope[k.Str]; ok {
			e.Scope[k.Str] = v
			return Nil()
		}
	}
	return env.ErrorConditionf(CondVariableNotFound, "unbound symbol: %v", k.Str)
}

// Lambda returns a closure over env.  Formals must be a list of symbols in
// which VarArgSymbol, if present, is followed by exactly one symbol at the
// end of the list.
func (env *LEnv) Lambda(formals *LVal, body *LVal, doc string) *LVal {
	if err := checkFormals(formals); err != nil {
		return env.ErrorConditionf(CondTypeError, "%v", err)
	}
	return Closure(env, formals, body, doc)
}

func checkFormals(formals *LVal) error {
	if formals.Type != LSExpr {
		return fmt.Errorf("formal argument list is not a list: %v", formals)
	}
	for i, f := range formals.Cells {
		if f.Type != LSymbol {
			return fmt.Errorf("formal argument is not a symbol: %v", f)
		}
		if f.Str != VarArgSymbol {
			continue
		}
		if i != len(formals.Cells)-2 {
			return fmt.Errorf("%s must be followed by exactly one symbol: %v", VarArgSymbol, formals)
		}
		if formals.Cells[i+1].Str == VarArgSymbol {
			return fmt.Errorf("invalid variadic argument name: %v", formals)
		}
		break
	}
	return nil
}

// AddSpecialOps binds ops as special operators of the runtime and makes them
// visible as values in env.
func (env *LEnv) AddSpecialOps(ops ...LBuiltinDef) {
	for _, op := range ops {
		fn := env.builtin(op)
		fn.FunData().Special = true
		env.Runtime.specialOps[op.Name()] = fn
		env.Scope[op.Name()] = fn
	}
}

// AddBuiltins binds the given functions in env.
func (env *LEnv) AddBuiltins(funs ...LBuiltinDef) {
	for _, f := range funs {
		env.Scope[f.Name()] = env.builtin(f)
	}
}

func (env *LEnv) builtin(f LBuiltinDef) *LVal {
	var doc string
	if d, ok := f.(interface{ Docstring() string }); ok {
		doc = d.Docstring()
	}
	return Primitive(f.Name(), f.Formals(), f.Eval, doc)
}

// Error returns an LError representing err.  If err wraps an *ErrorVal the
// underlying LVal is returned unchanged.
func (env *LEnv) Error(err error) *LVal {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return (*LVal)(lerr)
	}
	return &LVal{
		Source: env.Loc,
		Type:   LError,
		Str:    CondError,
		Native: env.Runtime.Stack.Copy(),
		Cells:  []*LVal{{Native: err}},
	}
}

// Errorf returns an LError value with a formatted error message.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError value with the given condition and a
// formatted error message.  The current call stack is attached to the error.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: env.Loc,
		Type:   LError,
		Str:    condition,
		Native: env.Runtime.Stack.Copy(),
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location, if lerr has none.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Native == nil {
		lerr.Native = env.Runtime.Stack.Copy()
	}
	if lerr.Source == nil {
		lerr.Source = env.Loc
	}
}
