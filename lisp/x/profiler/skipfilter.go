// Copyright © 2026 The Spill authors

package profiler

import (
	"strings"

	"github.com/luthersystems/spill/lisp"
)

// SkipFilter returns true for functions whose calls should not be recorded.
type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	return fun.Type != lisp.LFun
}

// WithDocFilter restricts recording to functions whose docstring contains
// DocTrace.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithSkipFilter sets the filter for recorded calls.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string which marks a function for tracing by a
// profiler configured WithDocFilter.
const DocTrace = "@trace"

func docSkipFilter(fun *lisp.LVal) bool {
	return !strings.Contains(fun.Docstring(), DocTrace)
}
