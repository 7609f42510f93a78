// Copyright © 2026 The Spill authors

package lsp

import (
	"errors"
	"strings"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// spillToLSPPosition converts a 1-based source location to a 0-based LSP
// position.
func spillToLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// spillToLSPRange converts a source location to an LSP range width
// characters wide.  Locations only mark the start of a token.
func spillToLSPRange(loc *token.Location, width int) protocol.Range {
	start := spillToLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(width),
	}
	return protocol.Range{Start: start, End: end}
}

// errorRange extracts the source position from a parse error.
func errorRange(err error) protocol.Range {
	var errVal *lisp.ErrorVal
	if errors.As(err, &errVal) && errVal.Source != nil && errVal.Source.Line > 0 {
		return spillToLSPRange(errVal.Source, 1)
	}
	var locErr *token.LocationError
	if errors.As(err, &locErr) && locErr.Source != nil && locErr.Source.Line > 0 {
		return spillToLSPRange(locErr.Source, 1)
	}
	return protocol.Range{}
}

// wordAtPosition extracts the symbol-like word at the given 0-based LSP
// position from the document content. The cursor can be inside or at the
// end of a word; in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := lines[line]
	if col < 0 || col > len(ln) {
		return ""
	}
	start := col
	for start > 0 && isSymbolChar(ln[start-1]) {
		start--
	}
	end := col
	for end < len(ln) && isSymbolChar(ln[end]) {
		end++
	}
	return ln[start:end]
}

// isSymbolChar reports whether c may appear in an identifier.
func isSymbolChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("_~?!+-*/<>=", c) >= 0
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
