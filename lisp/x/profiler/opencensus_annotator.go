// Copyright © 2026 The Spill authors

package profiler

import (
	"context"
	"errors"

	"go.opencensus.io/trace"

	"github.com/luthersystems/spill/lisp"
)

var _ lisp.Profiler = &ocAnnotator{}

type ocAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       []context.Context
}

// NewOpenCensusAnnotator returns a profiler which records each function call
// as an OpenCensus span, nested under the span in parentContext.
func NewOpenCensusAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &ocAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opencensus")
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
		p.currentSpan = nil
	}
	return nil
}

func (p *ocAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	p.contexts = append(p.contexts, p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, label)
	return func() {
		p.end(fun)
	}
}

func (p *ocAnnotator) end(fun *lisp.LVal) {
	file, line := "no-source", 0
	if loc := getSourceLoc(fun); loc != nil {
		file, line = loc.File, loc.Line
	}
	p.currentSpan.Annotate([]trace.Attribute{
		trace.StringAttribute("file", file),
		trace.Int64Attribute("line", int64(line)),
	}, "source")
	p.currentSpan.End()
	n := len(p.contexts) - 1
	p.currentContext = p.contexts[n]
	p.contexts[n] = nil
	p.contexts = p.contexts[:n]
	p.currentSpan = nil
	if n > 0 {
		p.currentSpan = trace.FromContext(p.currentContext)
	}
}
