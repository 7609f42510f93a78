// Copyright © 2026 The Spill authors

package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luthersystems/spill/lsp"
)

// LSPCommand creates the "lsp" cobra command.  Embedders can pass WithEnv to
// document and complete their own global names.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the spill Language Server Protocol server",
		Long: `Start an LSP server for spill source files.

The language server reports syntax errors, including misplaced
unquote-splicing in quasiquote templates, and provides hover
documentation, completion, document symbols and go-to-definition.
Documents are parsed but never evaluated.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  spill lsp                          Start with stdio transport
  spill lsp --port 7998              Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			env := cfg.env
			if env == nil {
				var err error
				env, err = newDocEnv()
				if err != nil {
					return err
				}
			}
			srv := lsp.New(lsp.WithEnv(env), lsp.WithLogger(logrus.StandardLogger()))

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				logrus.WithField("addr", addr).Info("spill LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
