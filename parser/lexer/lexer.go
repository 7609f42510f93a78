// Copyright © 2026 The Spill authors

package lexer

import (
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/spill/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	identSymbols = "_~?!+-*/<>="
	identRunes   = "0123456789" + identSymbols
)

// Lexer produces spill tokens from a token.Scanner.  Lexing never fails.
// Characters outside of the token grammar are emitted as single CHAR tokens
// and left for the parser to reject.
type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// Tokenize reads all of r and returns its tokens.  The returned slice always
// ends with an EOF token.
func Tokenize(file string, r io.Reader) []*token.Token {
	lex := New(token.NewScanner(file, r))
	var toks []*token.Token
	for {
		for _, tok := range lex.ReadToken() {
			toks = append(toks, tok)
			if tok.Type == token.EOF {
				return toks
			}
		}
	}
}

func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipIgnored()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if err := lex.scanner.Err(); err != nil {
			toks := lex.emit(token.ERROR, err.Error())
			return append(toks, lex.emit(token.EOF, "")...)
		}
		return lex.emit(token.EOF, "")
	}
	switch c := lex.scanner.Rune(); c {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '\'':
		return lex.emitText(token.QUOTE)
	case '`':
		return lex.emitText(token.QUASIQUOTE)
	case ',':
		if lex.scanner.AcceptRune('@') {
			return lex.emitText(token.UNQUOTE_SPLICING)
		}
		return lex.emitText(token.UNQUOTE)
	case '"':
		return lex.readString()
	case '+', '-':
		if isDigit(lex.peekRune()) {
			return lex.readInteger()
		}
		return lex.readIdentifier()
	default:
		if isDigit(c) {
			return lex.readInteger()
		}
		if isIdentStart(c) {
			return lex.readIdentifier()
		}
		return lex.emitText(token.CHAR)
	}
}

// skipIgnored skips whitespace and all three comment forms.  An unterminated
// block comment extends to the end of the input.
func (lex *Lexer) skipIgnored() {
	for {
		lex.scanner.AcceptSeqSpace()
		switch {
		case lex.scanner.AcceptString(";{{"):
			lex.skipUntil(";}}")
		case lex.scanner.AcceptString("#|"):
			lex.skipUntil("|#")
		case lex.scanner.AcceptRune(';'):
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		default:
			lex.scanner.Ignore()
			return
		}
	}
}

func (lex *Lexer) skipUntil(end string) {
	for !lex.scanner.AcceptString(end) {
		if lex.scanner.ScanRune() != nil {
			return
		}
	}
}

func (lex *Lexer) readInteger() []*token.Token {
	lex.scanner.AcceptSeqDigit()
	return lex.emitValue(token.INTEGER, lex.scanner.Text())
}

func (lex *Lexer) readIdentifier() []*token.Token {
	lex.scanner.AcceptSeq(isIdent)
	return lex.emitValue(token.IDENTIFIER, lex.scanner.Text())
}

func (lex *Lexer) readString() []*token.Token {
	for {
		c, ok := lex.scanner.Peek()
		if !ok {
			return lex.emit(token.ERROR, "unterminated string literal")
		}
		_ = lex.scanner.ScanRune()
		switch c {
		case '"':
			text := lex.scanner.Text()
			return lex.emitValue(token.STRING, Unescape(text[1:len(text)-1]))
		case '\\':
			if lex.scanner.ScanRune() != nil {
				return lex.emit(token.ERROR, "unterminated string literal")
			}
		}
	}
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitValue(typ token.Type, value string) []*token.Token {
	tok := lex.scanner.EmitToken(typ)
	tok.Value = value
	return []*token.Token{tok}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

// Unescape decodes the body of a string literal.  The escapes \n, \\ and \xNN
// are recognized.  \xNN yields the code point U+00NN, never a raw byte, so
// the result is always valid UTF-8.  For any other escaped character the
// backslash is dropped and the character kept, so \" and \' produce quotes.
// A \x not followed by two hex digits is dropped.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' || i+1 >= len(rs) {
			b.WriteRune(rs[i])
			continue
		}
		i++
		switch rs[i] {
		case 'n':
			b.WriteByte('\n')
		case 'x':
			if i+2 < len(rs) && isHex(rs[i+1]) && isHex(rs[i+2]) {
				b.WriteRune(hexVal(rs[i+1])<<4 | hexVal(rs[i+2]))
				i += 2
			}
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}

func isIdentStart(c rune) bool {
	return isASCIILetter(c) || strings.ContainsRune(identSymbols, c)
}

func isIdent(c rune) bool {
	return isASCIILetter(c) || strings.ContainsRune(identRunes, c)
}

func isASCIILetter(c rune) bool {
	return c < unicode.MaxASCII && unicode.IsLetter(c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHex(c rune) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hexVal(c rune) rune {
	switch {
	case isDigit(c):
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
