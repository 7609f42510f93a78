// Copyright © 2026 The Spill authors

package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const traceProgram = `
(def fact (fn (n) (if (< n 2) 1 (* n (fact (- n 1))))))
(fact 5)`

// runTraced evaluates traceProgram with the named tracer and closes the
// tracer.
func runTraced(t *testing.T, name string, file string, log logrus.FieldLogger) {
	t.Helper()
	s := &settings{Trace: name, TraceFile: file}
	env, tr, err := s.newEnv(io.Discard, io.Discard, log)
	require.NoError(t, err)
	require.NotNil(t, tr)
	var stdout bytes.Buffer
	err = runSources(env, &stdout, io.Discard, testRenderer(), []string{traceProgram}, true, true)
	require.NoError(t, err)
	assert.Equal(t, "120\n", stdout.String())
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close(), "closing twice")
}

func spanNames(hook *logtest.Hook) []string {
	var names []string
	for _, entry := range hook.AllEntries() {
		if entry.Message == "span" && entry.Level == logrus.InfoLevel {
			name, _ := entry.Data["span"].(string)
			names = append(names, name)
		}
	}
	return names
}

func TestTracer_None(t *testing.T) {
	tr, err := newTracer("", "", testLogger())
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.NoError(t, tr.Close())

	_, err = newTracer("jaeger", "", testLogger())
	assert.Error(t, err)
}

func TestTracer_OpenTelemetry(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	runTraced(t, TraceOpenTelemetry, "", log)
	names := spanNames(hook)
	assert.Contains(t, names, "spill")
	assert.Greater(t, len(names), 1)
	for _, entry := range hook.AllEntries() {
		if entry.Message == "span" {
			assert.NotEmpty(t, entry.Data["trace_id"])
		}
	}
}

func TestTracer_OpenCensus(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	runTraced(t, TraceOpenCensus, "", log)
	assert.Contains(t, spanNames(hook), "spill")
}

func TestTracer_Callgrind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callgrind.out")
	runTraced(t, TraceCallgrind, path, testLogger())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "version: 1\ncreator: spill"))
	assert.Contains(t, string(b), "fact")
}

func TestTracer_CallgrindUnused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callgrind.out")
	tr, err := newTracer(TraceCallgrind, path, testLogger())
	require.NoError(t, err)
	assert.NoError(t, tr.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestTracer_Pprof(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	runTraced(t, TracePprof, path, testLogger())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
