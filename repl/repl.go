// Copyright © 2026 The Spill authors

// Package repl implements an interactive read-eval-print loop with line
// editing and history.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/luthersystems/spill/diagnostic"
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib"
	"github.com/luthersystems/spill/parser"
	"github.com/luthersystems/spill/parser/rdparser"
)

// HistoryFileName is the name of the history file in the user's home
// directory.
const HistoryFileName = ".spill_history"

// inputName is the source name of expressions read by the REPL.
const inputName = "stdin"

type config struct {
	stdin       io.ReadCloser
	stderr      io.WriteCloser
	envConfig   []lisp.Config
	historyFile string
	noHistory   bool
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// Option configures a REPL.
type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.  Program output and
// results are written to stderr.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithEnvConfig adds configuration for the environment created by RunRepl.
func WithEnvConfig(cfg ...lisp.Config) Option {
	return func(c *config) {
		c.envConfig = append(c.envConfig, cfg...)
	}
}

// WithHistoryFile sets the file used to persist input history.  An empty
// path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
		c.noHistory = path == ""
	}
}

// RunRepl runs a repl in a new user environment with the standard
// extensions loaded.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	envOpts := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
	}
	if cfg.stderr != nil {
		envOpts = append(envOpts,
			lisp.WithStdout(cfg.stderr),
			lisp.WithStderr(cfg.stderr))
	}
	envOpts = append(envOpts, cfg.envConfig...)

	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, envOpts...)
	if rc.Type == lisp.LError {
		return fmt.Errorf("language initialization failure: %w", lisp.GoError(rc))
	}
	rc = lisplib.LoadLibrary(env)
	if rc.Type == lisp.LError {
		return fmt.Errorf("standard extension initialization failure: %w", lisp.GoError(rc))
	}
	return RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunEnv runs a repl with env as a root environment.  RunEnv returns when
// input is exhausted.
func RunEnv(env *lisp.LEnv, prompt, cont string, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	history := cfg.historyFile
	if history == "" && !cfg.noHistory {
		history = historyPath()
	}
	ensureHistoryFilePermissions(history)

	rlCfg := &readline.Config{
		Stdout:            env.Runtime.Stderr,
		Stderr:            env.Runtime.Stderr,
		Prompt:            prompt,
		HistoryFile:       history,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("unable to start line editor: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	var session strings.Builder
	p := rdparser.NewInteractive(inputName, func(linePrompt string) (string, error) {
		rl.SetPrompt(linePrompt)
		for {
			line, err := rl.ReadLine()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if err != nil {
				return "", err
			}
			session.WriteString(line)
			session.WriteByte('\n')
			return line, nil
		}
	})
	p.SetPrompts(prompt, cont)

	for {
		expr, err := p.Parse()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			renderError(env.Runtime.Stderr, err, session.String())
			continue
		}
		val := env.EvalExpr(expr)
		if err := lisp.GoError(val); err != nil {
			renderError(env.Runtime.Stderr, err, session.String())
			continue
		}
		fmt.Fprintln(env.Runtime.Stderr, val) //nolint:errcheck // best-effort REPL output
	}
}

// renderError writes err with a snippet of the session input and the
// functions active when it was raised.
func renderError(w io.Writer, err error, input string) {
	d := diagnostic.FromError(err)
	var lerr *lisp.ErrorVal
	if errors.As(err, &lerr) && lerr.Condition() == lisp.CondVariableNotFound {
		d.Notes = append(d.Notes, "use (help-names) to list available names")
	}
	r := &diagnostic.Renderer{
		Sources:  map[string]string{inputName: input},
		ReadFile: func(string) ([]byte, error) { return nil, os.ErrNotExist },
	}
	_ = r.Render(w, d)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFileName)
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}
