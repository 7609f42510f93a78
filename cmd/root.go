// Copyright © 2026 The Spill authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/spill/diagnostic"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spill",
	Short: "Spill, a small Lisp interpreter",
	Long: `Spill is a small Lisp interpreter implemented in Go. It provides a
standalone CLI for running and exploring spill code.

Getting started:
  spill run file.spl           Run a source file
  spill run src/...            Run every source file under src
  spill run -e '(+ 1 2)'       Evaluate an expression
  spill repl                   Start an interactive REPL
  spill doc map                Show documentation for a function
  spill lsp                    Start the language server

Language overview:
  Values are integers, strings, symbols and lists. The symbols true and
  false are the booleans and the empty list () is the only other false
  value. Functions are created with (fn (args) body) and bound with
  (def name value). Macros are defined with (defmacro name (args) body)
  and quasiquote templates build code: ` + "`(a ,b ,@c)" + `.

Configuration is read from $HOME/.spill.yaml (or --config) and from
SPILL_* environment variables, for example SPILL_SEARCH_PATH or
SPILL_LOG_LEVEL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(viper.GetString(keyLogLevel))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errEvaluation) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spill.yaml)")
	flags.StringSlice(keySearchPath, []string{"."},
		"Directories searched for source files before the embedded library")
	flags.Int(keyMaxMacroDepth, 0,
		"Maximum nested macro expansion depth (0 uses the interpreter default)")
	flags.Int(keyMaxStackHeight, 0,
		"Maximum call stack height (0 uses the interpreter default)")
	flags.String(keyLogLevel, "warning",
		`Log level: "debug", "info", "warning" or "error"`)
	flags.String(keyReader, "rd",
		`Source reader: "rd" (recursive descent) or "parsec" (parser combinator)`)
	flags.String(keyTrace, "",
		`Trace function calls: "otel" or "opencensus" (spans logged at info level), "pprof" or "callgrind"`)
	flags.String(keyTraceFile, "",
		"Output file for the pprof and callgrind tracers")
	flags.String(keyColor, diagnostic.ColorAutoName,
		`Colorize error reports: "auto", "always" or "never"`)
	for _, key := range settingsKeys {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		// Search config in home directory with name ".spill" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spill")
	}

	viper.SetEnvPrefix("spill")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configureLogging sets the level of the standard logger.
func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", keyLogLevel, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	return nil
}
