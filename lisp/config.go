// Copyright © 2026 The Spill authors

package lisp

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) *LVal

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Reader = r
		return Nil()
	}
}

// WithStdout returns a Config that makes the pr primitive write to w instead
// of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stdout = w
		return Nil()
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		return Nil()
	}
}

// WithLibrary returns a Config that makes environments use l
// as a source library.
func WithLibrary(l SourceLibrary) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Library = l
		return Nil()
	}
}

// WithLogger returns a Config that makes the runtime log through logger.
func WithLogger(logger logrus.FieldLogger) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Logger = logger
		return Nil()
	}
}

// WithMaxMacroExpansionDepth returns a Config that limits nested macro
// expansion to n levels.
func WithMaxMacroExpansionDepth(n int) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.MaxMacroExpansionDepth = n
		return Nil()
	}
}

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the call stack height to exceed n.
func WithMaximumStackHeight(n int) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stack.MaxHeight = n
		return Nil()
	}
}

// WithProfiler returns a Config that makes the runtime report function calls
// to p.  The profiler is enabled before the core library loads.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Profiler = p
		if err := p.Enable(); err != nil {
			return env.Error(err)
		}
		return Nil()
	}
}

// WithCoreLibrary returns a Config that makes InitializeUserEnv load the
// library named name instead of CoreLibraryName.
func WithCoreLibrary(name string) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.CoreLibrary = name
		return Nil()
	}
}
