// Copyright © 2026 The Spill authors

package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/spill/diagnostic"
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib"
	"github.com/luthersystems/spill/lisp/lisplib/libhelp"
)

// DocCommand creates the "doc" cobra command.  Embedders can pass WithEnv to
// document an environment containing their own definitions.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		sourceFile string
		names      bool
		missing    bool
	)

	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation for special operators, macros and functions",
		Long: `Show built-in documentation for spill special operators, macros and
functions.

With a NAME the documentation of that name is shown. A name bound both as
a macro and as a value has both documented. Without a NAME every special
operator, macro and global function is documented. Use -f to load a source
file first (useful for documenting your own code).

Examples:
  spill doc map                    Show docs for the map function
  spill doc defmacro               Show docs for the defmacro special operator
  spill doc --names                List every documented name
  spill doc -f mylib.spl my-func   Load a file, then show docs for my-func
  spill doc --missing              List names without documentation`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := cfg.env
			if env == nil {
				var err error
				env, err = newDocEnv()
				if err != nil {
					return err
				}
			}
			if sourceFile != "" {
				if err := loadDocSource(env, sourceFile, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			err := docExec(out, env, args, names, missing)
			if ferr := out.Flush(); err == nil {
				err = ferr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Evaluate a source file before querying documentation.")
	cmd.Flags().BoolVar(&names, "names", false,
		"List documented names grouped by kind.")
	cmd.Flags().BoolVar(&missing, "missing", false,
		"List names without documentation and fail if there are any.")
	return cmd
}

// newDocEnv creates a documentation environment using the configured
// search path.  Program output is discarded.
func newDocEnv() (*lisp.LEnv, error) {
	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return lisplib.NewDocEnv(s.envConfig(io.Discard, &bytes.Buffer{}, logrus.StandardLogger())...)
}

func loadDocSource(env *lisp.LEnv, path string, stderr io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := env.LoadLocation(filepath.Base(path), path, bytes.NewReader(src))
	if err := lisp.GoError(res); err != nil {
		diag := &diagnostic.Renderer{}
		diag.AddSource(filepath.Base(path), string(src))
		if rerr := diag.RenderError(stderr, err); rerr != nil {
			return rerr
		}
		return errEvaluation
	}
	return nil
}

func docExec(w io.Writer, env *lisp.LEnv, args []string, names bool, missing bool) error {
	switch {
	case missing:
		undocumented := libhelp.CheckMissing(env)
		for _, m := range undocumented {
			if _, err := fmt.Fprintln(w, m); err != nil {
				return err
			}
		}
		if len(undocumented) > 0 {
			return fmt.Errorf("%d names have no documentation", len(undocumented))
		}
		return nil
	case names:
		return libhelp.RenderNames(w, env)
	case len(args) == 1:
		return libhelp.RenderVar(w, env, args[0])
	default:
		return libhelp.RenderAll(w, env)
	}
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
