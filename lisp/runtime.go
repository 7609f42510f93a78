// Copyright © 2026 The Spill authors

package lisp

import (
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// DefaultMaxMacroExpansionDepth is the macro expansion depth limit of a
// Runtime created by StandardRuntime.
const DefaultMaxMacroExpansionDepth = 1000

// Runtime is an object underlying a tree of LEnv values.  It is responsible
// for holding shared interpreter state (the macro registry, the call stack,
// special operators) and for the streams used by primitives and logging.
type Runtime struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Library  SourceLibrary
	Macros   *MacroRegistry
	Logger   logrus.FieldLogger
	Profiler Profiler

	// CoreLibrary names the library loaded by InitializeUserEnv.
	CoreLibrary string

	// MaxMacroExpansionDepth bounds nested macro expansion.  A value less
	// than one disables the limit.
	MaxMacroExpansionDepth int

	specialOps map[string]*LVal
}

// StandardRuntime returns a new Runtime with an empty macro registry, output
// streams set to os.Stdout and os.Stderr and the embedded library as its
// source library.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stdout:                 os.Stdout,
		Stderr:                 os.Stderr,
		Stack:                  &CallStack{MaxHeight: DefaultMaxStackHeight},
		Library:                EmbeddedLibrary(),
		Macros:                 NewMacroRegistry(),
		CoreLibrary:            CoreLibraryName,
		MaxMacroExpansionDepth: DefaultMaxMacroExpansionDepth,
		specialOps:             make(map[string]*LVal),
	}
}

func (r *Runtime) logger() logrus.FieldLogger {
	if r.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(r.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		r.Logger = logger
	}
	return r.Logger
}

// SpecialOp returns the special operator named name, if one exists.
func (r *Runtime) SpecialOp(name string) (*LVal, bool) {
	op, ok := r.specialOps[name]
	return op, ok
}

// SpecialOpNames returns the sorted names of all special operators.
func (r *Runtime) SpecialOpNames() []string {
	names := make([]string, 0, len(r.specialOps))
	for name := range r.specialOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MacroRegistry maps symbol names to macro expanders.  It is separate from
// the value environment so a name can be a macro without shadowing (or being
// shadowed by) a variable.
type MacroRegistry struct {
	macros map[string]*LVal
}

// NewMacroRegistry returns an empty MacroRegistry.
func NewMacroRegistry() *MacroRegistry {
	return &MacroRegistry{macros: make(map[string]*LVal)}
}

// Define registers expander as the macro named name, replacing any existing
// definition.
func (r *MacroRegistry) Define(name string, expander *LVal) {
	r.macros[name] = expander
}

// Lookup returns the expander registered under name.
func (r *MacroRegistry) Lookup(name string) (*LVal, bool) {
	mac, ok := r.macros[name]
	return mac, ok
}

// Names returns the sorted names of all registered macros.
func (r *MacroRegistry) Names() []string {
	names := make([]string, 0, len(r.macros))
	for name := range r.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
