// Copyright © 2026 The Spill authors

package profiler

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/spill/lisp"
)

type contextKey string

// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context
// key.
const ContextOpenTelemetryTracerKey contextKey = "otelParentTracer"

// DefaultTracerName names the tracer used when the parent context does not
// name one.
const DefaultTracerName = "spill"

var _ lisp.Profiler = &otelAnnotator{}

type otelAnnotator struct {
	profiler
	rootContext    context.Context
	currentContext context.Context
	currentSpan    trace.Span
}

// NewOpenTelemetryAnnotator returns a profiler which records each function
// call as a span, nested under the span in parentContext.  Spans are created
// with the global tracer provider.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		rootContext:    parentContext,
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	if p.currentContext == nil {
		return errors.New("spans can only be appended to a context linked to opentelemetry")
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete ends any span left open by an unfinished call.  The span in the
// parent context is never ended.
func (p *otelAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
		p.currentSpan = nil
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	oldContext := p.currentContext
	label, name := p.prettyFunName(fun)
	p.currentContext, p.currentSpan = contextTracer(p.currentContext).Start(p.currentContext, label)
	p.addCodeAttributes(fun, name)
	return func() {
		p.currentSpan.End()
		p.currentContext = oldContext
		p.currentSpan = nil
		if oldContext != p.rootContext {
			p.currentSpan = trace.SpanFromContext(oldContext)
		}
	}
}

func (p *otelAnnotator) addCodeAttributes(fun *lisp.LVal, name string) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(name),
	}
	if loc := getSourceLoc(fun); loc != nil {
		attrs = append(attrs,
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
			semconv.CodeColumn(loc.Col),
		)
	}
	p.currentSpan.SetAttributes(attrs...)
}
