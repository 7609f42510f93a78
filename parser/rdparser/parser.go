// Copyright © 2026 The Spill authors

package rdparser

import (
	"io"
	"strconv"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

type reader struct {
}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	return p.ParseProgram()
}

// ReadLocation implements lisp.LocationReader.
func (*reader) ReadLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	s := token.NewScanner(name, r)
	s.SetPath(loc)
	p := New(s)
	return p.ParseProgram()
}

// ReadEach implements lisp.StreamReader.
func (*reader) ReadEach(name string, r io.Reader, fn func(*lisp.LVal) error) error {
	s := token.NewScanner(name, r)
	p := New(s)
	return p.ParseEach(fn)
}

// Parser is a recursive descent parser for spill source.
//
//	sourceFile := exp*
//	exp := INTEGER | IDENTIFIER | STRING
//	     | '(' exp* ')'
//	     | QUOTE exp | QUASIQUOTE exp
//	     | UNQUOTE IDENTIFIER | UNQUOTE_SPLICING IDENTIFIER
type Parser struct {
	parsing bool
	src     *TokenSource
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// Parse is a generic entry point that is similar to ParseExpression but is
// capable of handling EOF before reading an expression.
func (p *Parser) Parse() (*lisp.LVal, error) {
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	expr := p.ParseExpression()
	if expr.Type == lisp.LError {
		return nil, lisp.GoError(expr)
	}
	return expr, nil
}

// ParseEach parses top-level expressions in order and calls fn with each one
// as soon as it is complete.  Parsing stops at the first syntax error or the
// first error returned by fn.  Expressions passed to fn before an error was
// encountered have already been delivered.
func (p *Parser) ParseEach(fn func(*lisp.LVal) error) error {
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(expr); err != nil {
			return err
		}
	}
}

// ParseProgram parses all top-level expressions in the input.  If a syntax
// error is encountered no expressions are returned.
func (p *Parser) ParseProgram() ([]*lisp.LVal, error) {
	var exprs []*lisp.LVal
	err := p.ParseEach(func(expr *lisp.LVal) error {
		exprs = append(exprs, expr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exprs, nil
}

// ParseExpression parses a single expression.  Unlike Parse, ParseExpression
// requires an expression to be present in the input stream and will report
// unexpected EOF tokens encountered.
func (p *Parser) ParseExpression() *lisp.LVal {
	fn := p.parseExpression()

	// Flag that we are in the middle of an expression so that an Interactive
	// parser can pick a continuation prompt.
	if !p.parsing {
		p.parsing = true
		defer func() { p.parsing = false }()
	}

	return fn(p)
}

func (p *Parser) parseExpression() func(p *Parser) *lisp.LVal {
	switch p.PeekType() {
	case token.INTEGER:
		return (*Parser).ParseLiteralInt
	case token.STRING:
		return (*Parser).ParseLiteralString
	case token.IDENTIFIER:
		return (*Parser).ParseSymbol
	case token.QUOTE:
		return prefixParser(token.QUOTE, "quote", (*Parser).ParseExpression)
	case token.QUASIQUOTE:
		return prefixParser(token.QUASIQUOTE, "quasiquote", (*Parser).ParseExpression)
	case token.UNQUOTE:
		return prefixParser(token.UNQUOTE, "unquote", (*Parser).ParseSymbol)
	case token.UNQUOTE_SPLICING:
		return prefixParser(token.UNQUOTE_SPLICING, "unquote-splicing", (*Parser).ParseSymbol)
	case token.PAREN_L:
		return (*Parser).ParseConsExpression
	case token.PAREN_R:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("unmatched %s", p.TokenText())
		}
	case token.EOF:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("unexpected EOF")
		}
	case token.ERROR, token.INVALID:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("%s", p.TokenText())
		}
	default:
		return func(p *Parser) *lisp.LVal {
			p.ReadToken()
			return p.errorf("unexpected character %q", p.TokenText())
		}
	}
}

// prefixParser returns a parse function that wraps the expression following
// a prefix operator token in a list headed by sym.
func prefixParser(typ token.Type, sym string, operand func(*Parser) *lisp.LVal) func(*Parser) *lisp.LVal {
	return func(p *Parser) *lisp.LVal {
		if !p.Accept(typ) {
			return p.errorf("invalid %s: %v", sym, p.PeekType())
		}
		head := p.Symbol(sym)
		list := p.SExpr(nil)
		x := operand(p)
		if x.Type == lisp.LError {
			return x
		}
		list.Cells = []*lisp.LVal{head, x}
		return list
	}
}

func (p *Parser) ParseLiteralInt() *lisp.LVal {
	if !p.Accept(token.INTEGER) {
		return p.errorf("invalid integer literal: %v", p.PeekType())
	}
	text := p.src.Token.Value
	x, err := strconv.Atoi(text)
	if err != nil {
		return p.errorf("integer literal overflows int: %v", text)
	}
	return p.Int(x)
}

func (p *Parser) ParseLiteralString() *lisp.LVal {
	if !p.Accept(token.STRING) {
		return p.errorf("invalid string literal: %v", p.PeekType())
	}
	return p.String(p.src.Token.Value)
}

func (p *Parser) ParseSymbol() *lisp.LVal {
	if !p.Accept(token.IDENTIFIER) {
		if p.PeekType() == token.EOF {
			p.ReadToken()
			return p.errorf("unexpected EOF")
		}
		p.ReadToken()
		return p.errorf("expected identifier but got %v", p.TokenType())
	}
	return p.Symbol(p.src.Token.Value)
}

func (p *Parser) ParseConsExpression() *lisp.LVal {
	if !p.Accept(token.PAREN_L) {
		return p.errorf("invalid list: %v", p.PeekType())
	}
	open := p.src.Token
	expr := p.SExpr(nil)
	for {
		if p.src.IsEOF() {
			err := p.errorf("unmatched %s", open.Text)
			err.Source = open.Source
			return err
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		x := p.ParseExpression()
		if x.Type == lisp.LError {
			return x
		}
		expr.Cells = append(expr.Cells, x)
	}
	return expr
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}

func (p *Parser) String(s string) *lisp.LVal {
	return p.tokenLVal(lisp.String(s))
}

func (p *Parser) Symbol(sym string) *lisp.LVal {
	return p.tokenLVal(lisp.Symbol(sym))
}

func (p *Parser) Int(x int) *lisp.LVal {
	return p.tokenLVal(lisp.Int(x))
}

func (p *Parser) SExpr(cells []*lisp.LVal) *lisp.LVal {
	return p.tokenLVal(lisp.SExpr(cells))
}

func (p *Parser) tokenLVal(v *lisp.LVal) *lisp.LVal {
	v.Source = p.Location()
	return v
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) errorf(format string, v ...interface{}) *lisp.LVal {
	err := lisp.ErrorConditionf(lisp.CondSyntaxError, format, v...)
	err.Source = p.Location()
	return err
}
