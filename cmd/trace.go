// Copyright © 2026 The Spill authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/x/profiler"
)

// Tracer names accepted by the trace setting.
const (
	TraceOpenTelemetry = "otel"
	TraceOpenCensus    = "opencensus"
	TracePprof         = "pprof"
	TraceCallgrind     = "callgrind"
)

func validTracer(name string) bool {
	switch name {
	case "", TraceOpenTelemetry, TraceOpenCensus, TracePprof, TraceCallgrind:
		return true
	}
	return false
}

// tracer attaches the profiler selected by the trace setting to an
// environment and releases the resources backing it.
type tracer struct {
	newProfiler func(rt *lisp.Runtime) lisp.Profiler
	profiler    lisp.Profiler
	completed   bool
	closers     []func() error
}

// newTracer prepares the named tracer.  It returns nil when name is empty.
// Spans from the otel and opencensus tracers are written to log.
func newTracer(name string, file string, log logrus.FieldLogger) (*tracer, error) {
	t := &tracer{}
	switch name {
	case "":
		return nil, nil
	case TraceOpenTelemetry:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&logSpanExporter{log: log}),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		ctx, root := tp.Tracer(profiler.DefaultTracerName).Start(context.Background(), "spill")
		t.newProfiler = func(rt *lisp.Runtime) lisp.Profiler {
			return profiler.NewOpenTelemetryAnnotator(rt, ctx)
		}
		t.onClose(func() error {
			root.End()
			return tp.Shutdown(context.Background())
		})
	case TraceOpenCensus:
		exporter := &logCensusExporter{log: log}
		octrace.RegisterExporter(exporter)
		ctx, root := octrace.StartSpan(context.Background(), "spill",
			octrace.WithSampler(octrace.AlwaysSample()))
		t.newProfiler = func(rt *lisp.Runtime) lisp.Profiler {
			return profiler.NewOpenCensusAnnotator(rt, ctx)
		}
		t.onClose(func() error {
			root.End()
			octrace.UnregisterExporter(exporter)
			return nil
		})
	case TracePprof:
		f, err := createTraceFile(file, "spill.pprof")
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("starting cpu profile: %w", err)
		}
		t.newProfiler = func(rt *lisp.Runtime) lisp.Profiler {
			return profiler.NewPprofAnnotator(rt, context.Background())
		}
		t.onClose(func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	case TraceCallgrind:
		f, err := createTraceFile(file, "callgrind.out.spill")
		if err != nil {
			return nil, err
		}
		// The callgrind profiler closes f when it completes.
		t.newProfiler = func(rt *lisp.Runtime) lisp.Profiler {
			return profiler.NewCallgrindProfiler(rt, f)
		}
		t.onClose(func() error {
			if t.completed {
				return nil
			}
			return f.Close()
		})
	default:
		return nil, fmt.Errorf("unknown tracer: %q", name)
	}
	return t, nil
}

func createTraceFile(name string, def string) (*os.File, error) {
	if name == "" {
		name = def
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	return f, nil
}

func (t *tracer) onClose(fn func() error) {
	t.closers = append(t.closers, fn)
}

// config returns an environment configuration which enables the profiler.
func (t *tracer) config() lisp.Config {
	return func(env *lisp.LEnv) *lisp.LVal {
		t.profiler = t.newProfiler(env.Runtime)
		return lisp.WithProfiler(t.profiler)(env)
	}
}

// Close completes the profiler and releases the tracer's resources.  Close
// may be called on a nil tracer.
func (t *tracer) Close() error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.profiler != nil && t.profiler.IsEnabled() {
		errs = append(errs, t.profiler.Complete())
		t.completed = true
	}
	for i := len(t.closers) - 1; i >= 0; i-- {
		errs = append(errs, t.closers[i]())
	}
	t.closers = nil
	return errors.Join(errs...)
}

// logSpanExporter writes finished OpenTelemetry spans to a logger.
type logSpanExporter struct {
	log logrus.FieldLogger
}

var _ sdktrace.SpanExporter = (*logSpanExporter)(nil)

func (e *logSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := logrus.Fields{
			"span":     span.Name(),
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
			"duration": span.EndTime().Sub(span.StartTime()),
		}
		for _, attr := range span.Attributes() {
			fields[string(attr.Key)] = attr.Value.Emit()
		}
		e.log.WithFields(fields).Info("span")
	}
	return nil
}

func (e *logSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// logCensusExporter writes finished OpenCensus spans to a logger.
type logCensusExporter struct {
	log logrus.FieldLogger
}

var _ octrace.Exporter = (*logCensusExporter)(nil)

func (e *logCensusExporter) ExportSpan(s *octrace.SpanData) {
	fields := logrus.Fields{
		"span":     s.Name,
		"trace_id": s.TraceID.String(),
		"span_id":  s.SpanID.String(),
		"duration": s.EndTime.Sub(s.StartTime),
	}
	for k, v := range s.Attributes {
		fields[k] = v
	}
	e.log.WithFields(fields).Info("span")
}
