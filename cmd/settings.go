// Copyright © 2026 The Spill authors

package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/luthersystems/spill/diagnostic"
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib"
	"github.com/luthersystems/spill/parser"
)

// Configuration keys.  Each key is also a persistent flag of the root
// command and can be set with a SPILL_ prefixed environment variable.
const (
	keySearchPath     = "search-path"
	keyMaxMacroDepth  = "max-macro-depth"
	keyMaxStackHeight = "max-stack-height"
	keyLogLevel       = "log-level"
	keyReader         = "reader"
	keyTrace          = "trace"
	keyTraceFile      = "trace-file"
	keyColor          = "color"
)

var settingsKeys = []string{
	keySearchPath,
	keyMaxMacroDepth,
	keyMaxStackHeight,
	keyLogLevel,
	keyReader,
	keyTrace,
	keyTraceFile,
	keyColor,
}

// settings is the interpreter configuration shared by the commands which
// create an environment.
type settings struct {
	SearchPath     []string
	MaxMacroDepth  int
	MaxStackHeight int
	Reader         string
	Trace          string
	TraceFile      string
	Color          diagnostic.ColorMode
}

// loadSettings reads and validates the interpreter configuration from v.
func loadSettings(v *viper.Viper) (*settings, error) {
	s := &settings{
		SearchPath:     v.GetStringSlice(keySearchPath),
		MaxMacroDepth:  v.GetInt(keyMaxMacroDepth),
		MaxStackHeight: v.GetInt(keyMaxStackHeight),
		Reader:         v.GetString(keyReader),
		Trace:          v.GetString(keyTrace),
		TraceFile:      v.GetString(keyTraceFile),
	}
	if _, ok := parser.NewReaderNamed(s.Reader); !ok {
		return nil, fmt.Errorf("invalid %s: %q", keyReader, s.Reader)
	}
	if s.MaxMacroDepth < 0 {
		return nil, fmt.Errorf("invalid %s: %d", keyMaxMacroDepth, s.MaxMacroDepth)
	}
	if s.MaxStackHeight < 0 {
		return nil, fmt.Errorf("invalid %s: %d", keyMaxStackHeight, s.MaxStackHeight)
	}
	if !validTracer(s.Trace) {
		return nil, fmt.Errorf("invalid %s: %q", keyTrace, s.Trace)
	}
	color, err := diagnostic.ParseColorMode(v.GetString(keyColor))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyColor, err)
	}
	s.Color = color
	return s, nil
}

// envConfig returns the environment configuration described by s.  Source
// files are searched for in the configured directories and then in the
// embedded library, which always provides the core library.
func (s *settings) envConfig(stdout, stderr io.Writer, log logrus.FieldLogger) []lisp.Config {
	reader, _ := parser.NewReaderNamed(s.Reader)
	config := []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithLibrary(&lisp.SearchPathLibrary{
			Paths:    s.SearchPath,
			Fallback: lisp.EmbeddedLibrary(),
		}),
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
		lisp.WithLogger(log),
	}
	if s.MaxMacroDepth > 0 {
		config = append(config, lisp.WithMaxMacroExpansionDepth(s.MaxMacroDepth))
	}
	if s.MaxStackHeight > 0 {
		config = append(config, lisp.WithMaximumStackHeight(s.MaxStackHeight))
	}
	return config
}

// newEnv creates a user environment with the standard extensions loaded.
// The returned tracer must be closed once evaluation is complete.
func (s *settings) newEnv(stdout, stderr io.Writer, log logrus.FieldLogger) (*lisp.LEnv, *tracer, error) {
	tr, err := newTracer(s.Trace, s.TraceFile, log)
	if err != nil {
		return nil, nil, err
	}
	config := s.envConfig(stdout, stderr, log)
	if tr != nil {
		config = append(config, tr.config())
	}
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, config...)
	if rc.Type == lisp.LError {
		_ = tr.Close()
		return nil, nil, lisp.GoError(rc)
	}
	rc = lisplib.LoadLibrary(env)
	if rc.Type == lisp.LError {
		_ = tr.Close()
		return nil, nil, lisp.GoError(rc)
	}
	return env, tr, nil
}

// renderer returns the renderer used to report evaluation errors.
func (s *settings) renderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: s.Color}
}
