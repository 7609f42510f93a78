// Copyright © 2026 The Spill authors

package cmd

import "github.com/luthersystems/spill/lisp"

// Option configures an exported command factory (DocCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	env *lisp.LEnv
}

// WithEnv injects a fully configured LEnv. For the doc command this is the
// environment used for documentation queries. For the lsp command it
// supplies the documentation and names of global bindings.
func WithEnv(env *lisp.LEnv) Option {
	return func(c *cmdConfig) { c.env = env }
}

func newCmdConfig(opts ...Option) *cmdConfig {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &cfg
}
