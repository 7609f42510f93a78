// Copyright © 2026 The Spill authors

package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/spill/lisp"
)

// pprofAnnotator labels the running goroutine with the function being
// called so that CPU profiles can be broken down by lisp function.  The
// annotator does not start pprof itself.
type pprofAnnotator struct {
	profiler
	currentContext context.Context
}

var _ lisp.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler which sets pprof goroutine labels.
// When parentContext is nil labels are derived from context.Background.
func NewPprofAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.profiler.Enable()
}

func (p *pprofAnnotator) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

func (p *pprofAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	// Contexts are kept on the annotator instead of using pprof.Do so the
	// evaluator needs no context plumbing.
	oldContext := p.currentContext
	label, _ := p.prettyFunName(fun)
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels("function", label))
	pprof.SetGoroutineLabels(p.currentContext)
	return func() {
		p.currentContext = oldContext
		pprof.SetGoroutineLabels(oldContext)
	}
}
