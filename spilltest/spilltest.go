// Copyright © 2026 The Spill authors

// Package spilltest runs spill programs from Go tests.
package spilltest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser"
)

// BenchmarkParse returns a benchmark which parses the file at path with the
// reader returned by r.
func BenchmarkParse(path string, r func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// Runner creates test environments.
type Runner struct {
	// Reader parses test source.  When Reader is nil parser.NewReader is
	// used.
	Reader lisp.Reader

	// Config is applied to each environment after the default test
	// configuration.
	Config []lisp.Config
}

// NewEnv returns an initialized environment.  Program output (from pr) is
// captured in the returned buffer and runtime logging is forwarded to t.
func (r *Runner) NewEnv(t testing.TB) (*lisp.LEnv, *bytes.Buffer, error) {
	reader := r.Reader
	if reader == nil {
		reader = parser.NewReader()
	}
	logger, _ := NewFieldLogger(t)
	var stdout bytes.Buffer
	config := []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithStdout(&stdout),
		lisp.WithStderr(NewLogger(t)),
		lisp.WithLogger(logger),
	}
	config = append(config, r.Config...)
	env := lisp.NewEnv(nil)
	err := lisp.GoError(lisp.InitializeUserEnv(env, config...))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize lisp environment: %w", err)
	}
	return env, &stdout, nil
}

// LispError reports err as a test failure, including a stack trace when err
// is a lisp error.
func (r *Runner) LispError(t testing.TB, err error) {
	t.Helper()
	lerr, ok := err.(*lisp.ErrorVal)
	if !ok {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// TestSequence is a sequence of lisp expressions which are evaluated sequentially
// by a lisp.LEnv.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the canonical form of the evaluated result
	Output string // program output written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated lisp.LEnvs.
func RunTestSuite(t *testing.T, tests TestSuite) {
	var r Runner
	for i, test := range tests {
		env, stdout, err := r.NewEnv(t)
		if err != nil {
			t.Errorf("test %d %q: %v", i, test.Name, err)
			continue
		}
		for j, expr := range test.TestSequence {
			stdout.Reset()
			result := env.ReadEval("test", expr.Expr).String()
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if stdout.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, stdout.String())
			}
		}
	}
}

// Scenario is a named sequence of steps evaluated in one environment.
// Scenarios are decoded from YAML files.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one expression of a Scenario and its expected outcome.  When Error
// is set the step must produce an error with that condition and Result is
// ignored.
type Step struct {
	Expr   string `yaml:"expr"`
	Result string `yaml:"result"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

// ReadScenarios decodes the scenarios in r.
func ReadScenarios(r io.Reader) ([]Scenario, error) {
	var scenarios []Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&scenarios); err != nil {
		return nil, fmt.Errorf("invalid scenario file: %w", err)
	}
	return scenarios, nil
}

// RunScenario evaluates the steps of s in a fresh environment.
func (r *Runner) RunScenario(t *testing.T, s Scenario) {
	env, stdout, err := r.NewEnv(t)
	if err != nil {
		t.Fatal(err)
	}
	for i, step := range s.Steps {
		stdout.Reset()
		v := env.ReadEval(fmt.Sprintf("%s[%d]", s.Name, i), step.Expr)
		switch {
		case step.Error != "":
			if v.Type != lisp.LError {
				t.Errorf("step %d: %s: expected %s error (got %v)", i, step.Expr, step.Error, v)
			} else if v.Str != step.Error {
				t.Errorf("step %d: %s: expected %s error (got %v)", i, step.Expr, step.Error, v)
			}
		case v.Type == lisp.LError:
			t.Errorf("step %d: %s", i, step.Expr)
			r.LispError(t, lisp.GoError(v))
		case v.String() != strings.TrimSpace(step.Result):
			t.Errorf("step %d: %s: expected result %s (got %v)", i, step.Expr, strings.TrimSpace(step.Result), v)
		}
		if stdout.String() != step.Output {
			t.Errorf("step %d: %s: expected output %q (got %q)", i, step.Expr, step.Output, stdout.String())
		}
	}
}

// RunScenarioFile runs each scenario in the YAML file at path as a subtest.
func (r *Runner) RunScenarioFile(t *testing.T, path string) {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		t.Fatalf("Unable to open scenario file: %v", err)
	}
	defer f.Close()
	scenarios, err := ReadScenarios(f)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			r.RunScenario(t, s)
		})
	}
}

// RunScenarioFiles runs every scenario file matching the glob pattern as a
// subtest named by the file's base name.
func (r *Runner) RunScenarioFiles(t *testing.T, pattern string) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("Failed to list scenario files: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("No scenario files match %s", pattern)
	}
	for _, path := range files {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			r.RunScenarioFile(t, path)
		})
	}
}

// RunBenchmark runs a standard benchmark that executes expressions parsed from
// source.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	exprs, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env := lisp.NewEnv(nil)
		err := lisp.GoError(lisp.InitializeUserEnv(env,
			lisp.WithReader(p),
			lisp.WithStdout(io.Discard),
			lisp.WithStderr(io.Discard),
		))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		for i, expr := range exprs {
			lerr := env.EvalExpr(expr)
			if lerr.Type == lisp.LError {
				b.Fatalf("expr %d: %v", i, lerr)
			}
		}
		b.StopTimer()
	}
}
