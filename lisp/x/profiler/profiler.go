// Copyright © 2026 The Spill authors

// Package profiler reports the function calls made by a lisp.Runtime to
// tracing and profiling backends.
package profiler

import (
	"fmt"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

// Option configures the calls a profiler records and how they are labeled.
type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// FunName returns the name used to label calls to fun.  Functions which were
// never bound with def are labeled "anonymous".
func FunName(fun *lisp.LVal) string {
	if fun.Type != lisp.LFun {
		return ""
	}
	if fun.Str == "" {
		return "anonymous"
	}
	return fun.Str
}

// prettyFunName returns the label for fun and its plain name.  Without a
// FunLabeler, or when the labeler has nothing to say, the label is the plain
// name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	name := FunName(fun)
	if name == "" {
		return "", ""
	}
	label := name
	if p.funLabeler != nil {
		label = p.funLabeler(p.runtime, fun)
	}
	if label == "" {
		label = name
	}
	return label, name
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

// getSourceLoc returns the location where fun was defined, when known.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source != nil {
		return fun.Source
	}
	for i := len(fun.Cells) - 1; i >= 0; i-- {
		if fun.Cells[i] != nil && fun.Cells[i].Source != nil {
			return fun.Cells[i].Source
		}
	}
	return nil
}
