// Copyright © 2026 The Spill authors

package profiler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/x/profiler"
)

type recordingExporter struct {
	mut   sync.Mutex
	names []string
}

func (e *recordingExporter) ExportSpan(sd *trace.SpanData) {
	e.mut.Lock()
	defer e.mut.Unlock()
	e.names = append(e.names, sd.Name)
}

func TestNewOpenCensusAnnotator(t *testing.T) {
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	exporter := &recordingExporter{}
	trace.RegisterExporter(exporter)
	t.Cleanup(func() { trace.UnregisterExporter(exporter) })

	runProfiled(t, func(rt *lisp.Runtime) lisp.Profiler {
		return profiler.NewOpenCensusAnnotator(rt, context.Background(),
			profiler.WithDocFilter(),
			profiler.WithDocLabeler())
	})
	exporter.mut.Lock()
	defer exporter.mut.Unlock()
	assert.Equal(t, []string{"Add_It", "Add_It", "Add_It_Again", "traced"}, exporter.names)
}
