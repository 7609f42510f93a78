// Copyright © 2026 The Spill authors

package profiler

import (
	"regexp"
	"strings"

	"github.com/luthersystems/spill/lisp"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(runtime *lisp.Runtime, fun *lisp.LVal) string

// WithDocLabeler labels calls using the text in a docstring's DocLabel
// annotation, e.g. "@trace{ Add It }".
func WithDocLabeler() Option {
	return WithFunLabeler(docFunLabeler)
}

// WithFunLabeler sets the labeler for recorded calls.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

// DocLabel matches a label annotation in a docstring.
const DocLabel = `@trace\s*{([^}]+)}`

var (
	docLabelRegExp   = regexp.MustCompile(DocLabel)
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(label string) string {
	if label == "" {
		return ""
	}
	label = sanitizeRegExp.ReplaceAllString(label, "_")
	return validLabelRegExp.FindString(label)
}

func extractLabel(doc string) string {
	match := docLabelRegExp.FindStringSubmatch(doc)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func cleanLabel(doc string) string {
	return sanitizeLabel(extractLabel(doc))
}

func docFunLabeler(runtime *lisp.Runtime, fun *lisp.LVal) string {
	return cleanLabel(fun.Docstring())
}
