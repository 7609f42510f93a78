// Copyright © 2026 The Spill authors

package token

import (
	"io"
	"strings"
	"unicode"
)

// Scanner facilitates construction of tokens from a byte stream (io.Reader).
// The stream is read completely when the Scanner is constructed; a read
// failure is reported by Err after the bytes read before it are consumed.
type Scanner struct {
	file string
	path string

	src     []rune
	readErr error

	start     int // index of the first rune of the current token
	startLine int
	startCol  int
	startPos  int // byte offset of start

	next int // index of the rune following the last scanned rune
	line int // line of src[next]
	col  int // column of src[next]
	pos  int // byte offset of src[next]
	last rune
}

// NewScanner initializes and returns a new Scanner.
func NewScanner(file string, r io.Reader) *Scanner {
	b, err := io.ReadAll(r)
	s := &Scanner{
		file:      file,
		src:       []rune(string(b)),
		readErr:   err,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
	return s
}

// SetPath associates a physical location (e.g. filesystem path) with s to aid
// in debugging projects which scan many ungrouped files.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
	s.startPos = s.pos
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return string(s.src[s.start:s.next])
}

// Rune returns the last rune scanned.
func (s *Scanner) Rune() rune {
	return s.last
}

// Peek returns the next rune to be scanned.  Peek returns a false second
// value at the end of input.
func (s *Scanner) Peek() (rune, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the rune n positions beyond the next rune to be scanned.
func (s *Scanner) PeekAt(n int) (rune, bool) {
	i := s.next + n
	if i >= len(s.src) {
		return 0, false
	}
	return s.src[i], true
}

// ScanRune includes the next rune in the current token.  At the end of input
// ScanRune returns io.EOF, or the error that interrupted reading.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.src) {
		if s.readErr != nil {
			return s.readErr
		}
		return io.EOF
	}
	c := s.src[s.next]
	s.last = c
	s.next++
	s.pos += len(string(c))
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return nil
}

// Err returns an error encountered while reading the input stream, once all
// runes read before the failure have been scanned.
func (s *Scanner) Err() error {
	if s.next < len(s.src) {
		return nil
	}
	return s.readErr
}

// EOF returns true when no runes remain to be scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.src)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune() == nil
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptDigit() bool {
	return s.Accept(isDigit)
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqDigit() int {
	return s.AcceptSeq(isDigit)
}

func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

// AcceptString scans literal if the input continues with it and returns
// true.  Nothing is scanned when the input does not match.
func (s *Scanner) AcceptString(literal string) bool {
	for i, c := range []rune(literal) {
		peek, ok := s.PeekAt(i)
		if !ok || peek != c {
			return false
		}
	}
	for range []rune(literal) {
		_ = s.ScanRune()
	}
	return true
}

// LocStart returns a Location referencing the beginning of the current token,
// just beyond the end of the previous token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.startPos,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.pos,
		Line: s.line,
		Col:  s.col,
	}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
