// Copyright © 2026 The Spill authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/spill/repl"
)

var replNoHistory bool

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive spill REPL",
	Long: `Start an interactive read-eval-print loop for spill.

Line editing and command history are supported via readline. History is
kept in ~/` + repl.HistoryFileName + ` unless --no-history is given. Use
Ctrl-D to exit.

Example REPL session:
  spill> (def square (fn (x) (* x x)))
  square
  spill> (square 5)
  25
  spill> (help 'map)
  ...
  spill> (help-names)
  ...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		env, tr, err := s.newEnv(os.Stdout, os.Stderr, logrus.StandardLogger())
		if err != nil {
			return err
		}
		prompt := filepath.Base(os.Args[0]) + "> "
		var opts []repl.Option
		if replNoHistory {
			opts = append(opts, repl.WithHistoryFile(""))
		}
		replErr := repl.RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
		if err := tr.Close(); err != nil && replErr == nil {
			return fmt.Errorf("closing tracer: %w", err)
		}
		return replErr
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replNoHistory, "no-history", false,
		"Do not read or write the history file")
}
