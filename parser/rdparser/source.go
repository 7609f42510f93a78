// Copyright © 2026 The Spill authors

package rdparser

import (
	"github.com/luthersystems/spill/parser/lexer"
	"github.com/luthersystems/spill/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a materialized slice of lexer output but other implementations may
// be desirable for implementing a REPL or other dynamic environments.
type TokenStream interface {
	// ReadToken returns a set of token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	// ReadToken never returns an empty slice.
	ReadToken() []*token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() []*token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() []*token.Token {
	return fn()
}

// TokenSlice returns a TokenStream that yields toks in order.  After the
// slice is exhausted the stream repeats its final EOF token.
func TokenSlice(toks []*token.Token) TokenStream {
	eof := &token.Token{Type: token.EOF, Source: &token.Location{}}
	if n := len(toks); n > 0 && toks[n-1].Type == token.EOF {
		eof = toks[n-1]
	}
	return TokenGenerator(func() []*token.Token {
		if len(toks) == 0 {
			return []*token.Token{eof}
		}
		tok := toks[0]
		toks = toks[1:]
		return []*token.Token{tok}
	})
}

// TokenSource abstracts a TokenStream by adding "memory" and providing methods
// to process and branch off the stream's tokens.
type TokenSource struct {
	lex   TokenStream
	Token *token.Token
	peek  []*token.Token
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource lexes all input from scanner and returns a TokenSource over
// the resulting tokens.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	lex := lexer.New(scanner)
	var toks []*token.Token
	for done := false; !done; {
		for _, tok := range lex.ReadToken() {
			toks = append(toks, tok)
			done = done || tok.Type == token.EOF
		}
	}
	return NewTokenStreamSource(TokenSlice(toks))
}

func (s *TokenSource) Peek() *token.Token {
	if len(s.peek) > 0 {
		return s.peek[0]
	}
	s.peek = s.lex.ReadToken()
	return s.peek[0]
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	s.peek = s.peek[1:]
}
