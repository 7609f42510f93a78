// Copyright © 2026 The Spill authors

// Package lisplib is used to conveniently load the standard extensions of
// the spill environment.
package lisplib

import (
	"bytes"
	"fmt"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/lisp/lisplib/libhelp"
	"github.com/luthersystems/spill/spillutil"
)

// Extensions returns the standard extensions, in load order.
func Extensions() []spillutil.Extension {
	return []spillutil.Extension{
		libhelp.Extension{},
	}
}

// LoadLibrary installs the standard extensions in env.
func LoadLibrary(env *lisp.LEnv) *lisp.LVal {
	return spillutil.ExtensionLoader(Extensions()...)(env)
}

// NewDocEnv creates a standard environment with the standard extensions
// loaded, suitable for documentation queries.  Embedders can extend this env
// with their own definitions, or create their own env and use the
// libhelp.Render* functions and libhelp.CheckMissing directly.
func NewDocEnv(config ...lisp.Config) (*lisp.LEnv, error) {
	base := []lisp.Config{lisp.WithStderr(&bytes.Buffer{})}
	env, err := spillutil.NewEnv(append(base, config...)...)
	if err != nil {
		return nil, err
	}
	if err := spillutil.Load(env, LoadLibrary); err != nil {
		return nil, fmt.Errorf("failed to load standard extensions: %w", err)
	}
	return env, nil
}
