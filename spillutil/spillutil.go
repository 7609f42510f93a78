// Copyright © 2026 The Spill authors

// Package spillutil helps Go programs embed spill: constructing primitives,
// installing extensions and creating ready to use environments.
package spillutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser"
)

// Function is a helper to construct builtins.
func Function(name string, formals *lisp.LVal, fun lisp.LBuiltin) *Builtin {
	return &Builtin{formals: formals, fun: fun, name: name}
}

// FunctionDoc is like Function but attaches documentation to the builtin.
func FunctionDoc(name string, formals *lisp.LVal, fun lisp.LBuiltin, doc string) *Builtin {
	return &Builtin{formals: formals, fun: fun, name: name, doc: doc}
}

// Builtin captures Go functions that are callable from spill.
type Builtin struct {
	formals *lisp.LVal
	fun     lisp.LBuiltin
	name    string
	doc     string
}

var _ lisp.LBuiltinDef = (*Builtin)(nil)

// Name returns the name of a function.
func (fun *Builtin) Name() string {
	return fun.name
}

// Formals returns the formal arguments of a function.
func (fun *Builtin) Formals() *lisp.LVal {
	return fun.formals
}

// Eval evaluates a function on an environment.
func (fun *Builtin) Eval(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	return fun.fun(env, args)
}

// Docstring returns the function's documentation.
func (fun *Builtin) Docstring() string {
	return fun.doc
}

// Loader is a generic function to initialize/load an LEnv.  A chain of
// loaders may be formed to load a library.
type Loader = lisp.Loader

// Extension is a named set of definitions implemented in Go and spill.
type Extension interface {
	ExtensionName() string
}

// ExtensionBuiltins exposes the primitives of an Extension.
type ExtensionBuiltins interface {
	Extension
	Builtins() []lisp.LBuiltinDef
}

// ExtensionSource exposes spill source evaluated after an Extension's
// builtins are bound.  The source typically defines functions and macros
// layered on the builtins.
type ExtensionSource interface {
	Extension
	Source() string
}

// ExtensionLoader returns a Loader which installs each extension in order.
func ExtensionLoader(xs ...Extension) Loader {
	return func(env *lisp.LEnv) *lisp.LVal {
		for _, x := range xs {
			lerr := loadExtension(env, x)
			if lerr.Type == lisp.LError {
				return lerr
			}
		}
		return lisp.Nil()
	}
}

func loadExtension(env *lisp.LEnv, x Extension) *lisp.LVal {
	if xb, ok := x.(ExtensionBuiltins); ok {
		env.AddBuiltins(xb.Builtins()...)
	}
	xs, ok := x.(ExtensionSource)
	if !ok {
		return lisp.Nil()
	}
	rc := env.Load(x.ExtensionName(), strings.NewReader(xs.Source()))
	if rc.Type == lisp.LError {
		return rc
	}
	return lisp.Nil()
}

// LoadAll returns a Loader which calls each of fn in order, stopping at the
// first error.
func LoadAll(fn ...Loader) Loader {
	return func(env *lisp.LEnv) *lisp.LVal {
		for _, fn := range fn {
			lerr := fn(env)
			if lerr.Type == lisp.LError {
				return lerr
			}
		}
		return lisp.Nil()
	}
}

// NewEnv returns a user environment initialized with the standard reader
// followed by config.  Program output is discarded unless config sets
// Stdout.  Extensions which depend on the core library should be loaded
// with Load after NewEnv returns.
func NewEnv(config ...lisp.Config) (*lisp.LEnv, error) {
	env := lisp.NewEnv(nil)
	base := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(&bytes.Buffer{}),
	}
	rc := lisp.InitializeUserEnv(env, append(base, config...)...)
	if rc.Type == lisp.LError {
		return nil, fmt.Errorf("failed to initialize environment: %w", lisp.GoError(rc))
	}
	return env, nil
}

// Load calls fn on env and converts a resulting error value into a Go error.
func Load(env *lisp.LEnv, fn Loader) error {
	return lisp.GoError(fn(env))
}

// EvalString evaluates source in env and converts a resulting error value
// into a Go error.
func EvalString(env *lisp.LEnv, name, source string) (*lisp.LVal, error) {
	v := env.ReadEval(name, source)
	if err := lisp.GoError(v); err != nil {
		return nil, err
	}
	return v, nil
}
