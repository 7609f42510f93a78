// Copyright © 2026 The Spill authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Renderer formats diagnostics as annotated source snippets.
//
//	error: variable-not-found: unbound symbol: sqaure
//	  --> main.spl:3:2
//	   |
//	 3 |  (sqaure 4)
//	   |   ^^^^^^
//	   = note: in main.spl:7:1: run
type Renderer struct {
	// Color controls ANSI color output.  The default is ColorAuto.
	Color ColorMode

	// Sources holds source text by display name for sources which do not
	// exist on disk, such as expressions given on the command line.
	Sources map[string]string

	// ReadFile reads source files not found in Sources.  If nil, os.ReadFile
	// is used.
	ReadFile func(name string) ([]byte, error)
}

// AddSource registers the text of the source with the given display name.
func (r *Renderer) AddSource(name string, text string) {
	if r.Sources == nil {
		r.Sources = make(map[string]string)
	}
	r.Sources[name] = text
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, w)
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}
	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}
	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderError converts err with FromError and renders the result to w.
func (r *Renderer) RenderError(w io.Writer, err error) error {
	return r.Render(w, FromError(err))
}

// errWriter captures the first write error and ignores subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	color := p.boldRed
	switch d.Severity {
	case SeverityWarning:
		color = p.yellow
	case SeverityNote:
		color = p.boldCyan
	}
	ew.printf("%s%s%s: %s%s%s\n", color, d.Severity, p.reset, p.bold, d.Message, p.reset)
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	loc := span.File
	if span.Line > 0 {
		loc += ":" + strconv.Itoa(span.Line)
		if span.Col > 0 {
			loc += ":" + strconv.Itoa(span.Col)
		}
	}
	ew.printf("  %s-->%s %s\n", p.boldBlue, p.reset, loc)

	source, ok := r.sourceLine(span)
	if !ok {
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}
	lineNum := strconv.Itoa(span.Line)
	pad := strings.Repeat(" ", len(lineNum))
	runes := []rune(source)

	col := span.Col
	if col <= 0 {
		col = 1
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = tokenEnd(runes, col)
	}
	if endCol < col {
		endCol = col
	}
	prefix := source + strings.Repeat(" ", max(0, col-1-len(runes)))
	if col-1 <= len(runes) {
		prefix = string(runes[:col-1])
	}

	ew.printf(" %s%s |%s\n", p.boldBlue, pad, p.reset)
	ew.printf(" %s%s |%s  %s\n", p.boldBlue, lineNum, p.reset, expandTabs(source))
	ew.printf(" %s%s |%s  %s%s%s%s", p.boldBlue, pad, p.reset,
		strings.Repeat(" ", len([]rune(expandTabs(prefix)))),
		p.boldRed, strings.Repeat("^", endCol-col+1), p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", p.boldRed, span.Label, p.reset)
	}
	ew.printf("\n")
}

func (r *Renderer) sourceLine(span Span) (string, bool) {
	if span.Line <= 0 {
		return "", false
	}
	text, ok := r.Sources[span.File]
	if !ok {
		path := span.Path
		if path == "" {
			path = span.File
		}
		read := r.ReadFile
		if read == nil {
			read = os.ReadFile
		}
		b, err := read(path)
		if err != nil {
			return "", false
		}
		text = string(b)
	}
	lines := strings.Split(text, "\n")
	if span.Line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[span.Line-1], "\r"), true
}

// tokenEnd returns the 1-based column of the last rune of the token
// starting at col.  An open paren highlights only itself.
func tokenEnd(runes []rune, col int) int {
	if col > len(runes) {
		return col
	}
	end := col - 1
	for end < len(runes) {
		switch runes[end] {
		case ' ', '\t', '(', ')':
			if end == col-1 {
				return col
			}
			return end
		}
		end++
	}
	return end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
