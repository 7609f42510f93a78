// Copyright © 2026 The Spill authors

// Package diagnostic renders spill errors as annotated source snippets for
// command line output.
package diagnostic

import (
	"errors"
	"fmt"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// MaxFrameNotes is the number of call frames included as notes by
// FromError.  Remaining frames are summarized in a single note.
const MaxFrameNotes = 8

// Span identifies a region of source code to highlight.
type Span struct {
	File   string // display name of the source
	Path   string // physical location used to read the source, if different
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 detects the end of the token)
	Label  string // text shown after the underline
}

// Diagnostic is a single error, warning, or note with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}

// FromError converts err into a Diagnostic.  Spill errors are annotated at
// their source location and the call frames active when the error occurred
// are attached as notes, innermost first.
func FromError(err error) Diagnostic {
	d := Diagnostic{Severity: SeverityError}
	var lerr *lisp.ErrorVal
	var locErr *token.LocationError
	switch {
	case errors.As(err, &lerr):
		d.Message = fmt.Sprintf("%s: %s", lerr.Condition(), lerr.ErrorMessage())
		if span, ok := locationSpan(lerr.Source); ok {
			d.Spans = append(d.Spans, span)
		}
		d.Notes = frameNotes(lerr.CallStack())
	case errors.As(err, &locErr):
		d.Message = locErr.Err.Error()
		if span, ok := locationSpan(locErr.Source); ok {
			d.Spans = append(d.Spans, span)
		}
	default:
		d.Message = err.Error()
	}
	return d
}

func locationSpan(loc *token.Location) (Span, bool) {
	if loc == nil || loc.Pos < 0 || loc.File == "" {
		return Span{}, false
	}
	span := Span{
		File: loc.File,
		Line: loc.Line,
		Col:  loc.Col,
	}
	if loc.Path != "" && loc.Path != loc.File {
		span.Path = loc.Path
	}
	return span, true
}

func frameNotes(stack *lisp.CallStack) []string {
	if stack == nil || len(stack.Frames) == 0 {
		return nil
	}
	var notes []string
	for i := len(stack.Frames) - 1; i >= 0; i-- {
		if len(notes) == MaxFrameNotes {
			notes = append(notes, fmt.Sprintf("... %d more frames", i+1))
			break
		}
		notes = append(notes, "in "+stack.Frames[i].String())
	}
	return notes
}
