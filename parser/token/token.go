// Copyright © 2026 The Spill authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

// Token is a lexeme of Spill source text.  Value holds the decoded attribute
// of atom tokens: the digits of an INTEGER, the name of an IDENTIFIER, or the
// unescaped content of a STRING.
type Token struct {
	Type   Type
	Text   string
	Value  string
	Source *Location
}

func (tok *Token) String() string {
	if tok == nil {
		return "<nil>"
	}
	if tok.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used for the spill lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Atoms
	INTEGER
	IDENTIFIER
	STRING

	// Prefix operators
	QUOTE
	QUASIQUOTE
	UNQUOTE
	UNQUOTE_SPLICING

	// Delimiters
	PAREN_L
	PAREN_R

	// CHAR is any single character the lexer does not otherwise recognize.
	// The parser rejects it.
	CHAR

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:          "invalid",
		ERROR:            "error",
		EOF:              "EOF",
		INTEGER:          "integer",
		IDENTIFIER:       "identifier",
		STRING:           "string",
		QUOTE:            "'",
		QUASIQUOTE:       "`",
		UNQUOTE:          ",",
		UNQUOTE_SPLICING: ",@",
		PAREN_L:          "(",
		PAREN_R:          ")",
		CHAR:             "char",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
