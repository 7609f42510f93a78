// Copyright © 2026 The Spill authors

// Package parser selects a spill reader implementation.
package parser

import (
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/rdparser"
	"github.com/luthersystems/spill/parser/regexparser"
)

// Option configures the reader returned by NewReader.
type Option func(*readerConfig)

type readerConfig struct {
	parsec bool
}

// WithParsec returns an Option that selects the parser combinator reader
// from package regexparser instead of the recursive descent reader.  The
// parser combinator reader does not stream expressions, so a syntax error
// anywhere in a source prevents evaluation of all of it.
func WithParsec() Option {
	return func(c *readerConfig) {
		c.parsec = true
	}
}

// NewReader returns a new lisp.Reader.  With no options the recursive
// descent reader is returned.
func NewReader(opts ...Option) lisp.Reader {
	var cfg readerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parsec {
		return regexparser.NewReader()
	}
	return rdparser.NewReader()
}

// NewReaderNamed returns the reader named name, "rd" or "parsec".  An empty
// name selects the default reader.
func NewReaderNamed(name string) (lisp.Reader, bool) {
	switch name {
	case "", "rd":
		return NewReader(), true
	case "parsec":
		return NewReader(WithParsec()), true
	default:
		return nil, false
	}
}
