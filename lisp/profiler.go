// Copyright © 2026 The Spill authors

package lisp

// Profiler observes function calls made by the evaluator.
type Profiler interface {
	// IsEnabled returns true if the profiler is recording calls.
	IsEnabled() bool
	// Enable attaches the profiler to its runtime and starts recording.
	Enable() error
	// Complete ends the profiling session and flushes any output.
	Complete() error
	// Start marks the beginning of a call to fun and returns a function that
	// marks its end.
	Start(fun *LVal) func()
}
