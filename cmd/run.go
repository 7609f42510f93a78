// Copyright © 2026 The Spill authors

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/spill/diagnostic"
	"github.com/luthersystems/spill/lisp"
)

// errEvaluation is returned by commands whose failure has already been
// reported along with the source location and call frames.
var errEvaluation = errors.New("evaluation failed")

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE...",
	Short: "Run spill code",
	Long: `Run spill code supplied via the command line or in source files.

Files are located using the search path. An argument ending in "/..."
runs every .spl file under the named directory in lexical order.
Evaluation stops at the first error, which is printed with the offending
source line and the active call frames.

Examples:
  spill run main.spl
  spill run lib/...
  spill run -p -e '(+ 1 2)' '(map (fn (x) (* x x)) (list 1 2 3))'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		env, tr, err := s.newEnv(cmd.OutOrStdout(), cmd.ErrOrStderr(), logrus.StandardLogger())
		if err != nil {
			return err
		}
		runErr := runSources(env, cmd.OutOrStdout(), cmd.ErrOrStderr(), s.renderer(), args, runExpression, runPrint)
		if err := tr.Close(); err != nil && runErr == nil {
			return fmt.Errorf("closing tracer: %w", err)
		}
		return runErr
	},
}

// runSources evaluates each file, or each expression when expression is
// true, in env.  When print is true the value of each file or expression is
// written to stdout.  An evaluation error is reported to stderr using diag.
func runSources(env *lisp.LEnv, stdout, stderr io.Writer, diag *diagnostic.Renderer, args []string, expression, print bool) error {
	if !expression {
		var err error
		args, err = expandArgs(args)
		if err != nil {
			return err
		}
	}
	for i, arg := range args {
		var v *lisp.LVal
		if expression {
			name := fmt.Sprintf("expr%d", i+1)
			diag.AddSource(name, arg)
			v = env.ReadEval(name, arg)
		} else {
			v = env.LoadFile(arg)
		}
		if err := lisp.GoError(v); err != nil {
			if rerr := diag.RenderError(stderr, err); rerr != nil {
				return rerr
			}
			return errEvaluation
		}
		if print {
			if _, err := fmt.Fprintln(stdout, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
