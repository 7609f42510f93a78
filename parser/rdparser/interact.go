// Copyright © 2026 The Spill authors

package rdparser

import (
	"strings"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/lexer"
	"github.com/luthersystems/spill/parser/token"
)

// LineFunc reads one line of input after displaying prompt.  A non-nil error
// ends the input.
type LineFunc func(prompt string) (string, error)

// Interactive parses expressions one at a time from lines of input that are
// requested only when the current expression needs more tokens.  Lines are
// numbered from 1 across the whole session.
type Interactive struct {
	file       string
	readLine   LineFunc
	prompt     string
	promptCont string
	lineno     int
	pending    []*token.Token
	p          *Parser
}

// NewInteractive returns an Interactive parser reading lines from readLine.
// Token locations report file as their source.
func NewInteractive(file string, readLine LineFunc) *Interactive {
	p := &Interactive{file: file, readLine: readLine}
	p.p = NewFromSource(NewTokenStreamSource(TokenGenerator(p.next)))
	return p
}

// SetPrompts sets the prompt shown before a new expression and the prompt
// shown while an expression is incomplete.
func (p *Interactive) SetPrompts(prompt, cont string) {
	p.prompt = prompt
	p.promptCont = cont
}

// Prompt returns the prompt for the next line of input.
func (p *Interactive) Prompt() string {
	if p.p.parsing {
		return p.promptCont
	}
	return p.prompt
}

// Parse returns the next expression.  After a syntax error the rest of the
// offending line is discarded.  Parse returns io.EOF when the input ends
// between expressions.
func (p *Interactive) Parse() (*lisp.LVal, error) {
	v, err := p.p.Parse()
	if err != nil {
		p.pending = nil
		return nil, err
	}
	return v, nil
}

func (p *Interactive) next() []*token.Token {
	for len(p.pending) == 0 {
		line, err := p.readLine(p.Prompt())
		if err != nil {
			return []*token.Token{{Type: token.EOF, Source: &token.Location{File: p.file, Line: p.lineno + 1, Col: 1}}}
		}
		p.lineno++
		p.pending = LineTokens(p.file, p.lineno, line)
	}
	tok := p.pending[0]
	p.pending = p.pending[1:]
	return []*token.Token{tok}
}

// LineTokens returns the tokens of a single line of input, excluding the
// final EOF, with locations on line lineno of file.
func LineTokens(file string, lineno int, line string) []*token.Token {
	toks := lexer.Tokenize(file, strings.NewReader(line))
	toks = toks[:len(toks)-1]
	for _, tok := range toks {
		if tok.Source != nil {
			tok.Source.Line = lineno
		}
	}
	return toks
}
