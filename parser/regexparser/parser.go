// Copyright © 2026 The Spill authors

// Package regexparser provides a spill reader built from regular expression
// terminals and parser combinators.  It accepts the same language as rdparser:
//
//	expr    := '(' <expr>* ')' | <integer> | <string> | <symbol> | <prefix> <expr>
//	         | <unquote> <symbol>
//	integer := [+-]?[0-9]+
//	string  := '"' ([^"\\] | '\\' any)* '"'
//	symbol  := <initial> <subsequent>*
//	initial := [A-Za-z_~?!+\-*/<>=]
//	subsequent := <initial> | [0-9]
//	prefix  := "'" | '`'
//	unquote := ",@" | ','
//
// Comments may appear wherever whitespace may, including between a prefix
// and its operand.  An unterminated block comment extends to the end of the
// input.
package regexparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/lexer"
	"github.com/luthersystems/spill/parser/token"
)

// NewReader returns a lisp.Reader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

// Read implements lisp.Reader.
func (p *parsecReader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	vals, _, err := ParseLVal(name, b)
	if err != nil {
		return nil, err
	}
	return vals, nil
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeSExpr
	nodeSExprOUnmatched
	nodePrefix
)

var nodeTypeStrings = []string{
	nodeInvalid:         "INVALID",
	nodeTerm:            "TERM",
	nodeSExpr:           "SEXPR",
	nodeSExprOUnmatched: "SEXPROPENUNMATCHED",
	nodePrefix:          "PREFIX",
}

var prefixSymbols = map[string]string{
	"QUOTE":            lisp.QuoteSymbol,
	"QUASIQUOTE":       lisp.QuasiquoteSymbol,
	"UNQUOTE":          lisp.UnquoteSymbol,
	"UNQUOTE_SPLICING": lisp.UnquoteSplicingSymbol,
}

// ParseLVal parses LVal values from text and returns them.  The number of
// bytes read is returned along with any error that was encountered in parsing.
// Errors are syntax-error conditions.
func ParseLVal(name string, text []byte) ([]*lisp.LVal, int, error) {
	var v []*lisp.LVal
	s := parsec.NewScanner(text)
	s = s.TrackLineno()
	parser := newParsecParser()
	root, s := parser(s)
	for root != nil {
		lval := getLVal(root)
		if lval.Type == lisp.LError {
			lval.Source = &token.Location{File: name, Line: s.Lineno()}
			return nil, s.GetCursor(), lisp.GoError(lval)
		}
		if lval.Type != lisp.LInvalid {
			v = append(v, lval)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		lerr := lisp.ErrorConditionf(lisp.CondSyntaxError, "unexpected source text possibly starting: %s", b)
		lerr.Source = &token.Location{File: name, Line: s.Lineno()}
		return nil, s.GetCursor(), lisp.GoError(lerr)
	}
	return v, s.GetCursor(), nil
}

func newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	quote := parsec.Atom("'", "QUOTE")
	quasiquote := parsec.Atom("`", "QUASIQUOTE")
	unquoteSplicing := parsec.Atom(",@", "UNQUOTE_SPLICING")
	unquote := parsec.Atom(",", "UNQUOTE")
	comment := parsec.Token(`(?:;\{\{(?s:.*?)(?:;\}\}|\z)|#\|(?s:.*?)(?:\|#|\z)|;[^\n]*)`, "COMMENT")
	comments := parsec.Kleene(nil, comment)
	str := parsec.Token(`"(?:[^"\\]|\\(?s:.))*"`, "STRING")
	integer := parsec.Token(`[+-]?[0-9]+`, "INTEGER")
	symbol := parsec.Token(`[A-Za-z_~?!+\-*/<>=][A-Za-z0-9_~?!+\-*/<>=]*`, "SYMBOL")
	term := parsec.OrdChoice(astNode(nodeTerm),
		str,
		integer,
		symbol, // symbol comes after integer so that -1 is a number
	)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	sexpr := parsec.And(astNode(nodeSExpr), openP, exprList, closeP)
	sexprOUnmatched := parsec.And(astNode(nodeSExprOUnmatched), openP, exprList, parsec.End())
	quoted := parsec.And(astNode(nodePrefix), parsec.OrdChoice(nil, quote, quasiquote), comments, &expr)
	unquoted := parsec.And(astNode(nodePrefix),
		parsec.OrdChoice(nil, unquoteSplicing, unquote),
		comments,
		parsec.OrdChoice(astNode(nodeTerm), symbol))
	expr = parsec.OrdChoice(nil,
		comment,
		term,
		sexpr,
		quoted,
		unquoted,
		// Error matching cases come last because they have the lowest
		// precedence.
		sexprOUnmatched,
	)
	return expr
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

func newAST(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	switch typ {
	case nodeTerm:
		term, ok := nodes[0].(*parsec.Terminal)
		if !ok {
			return syntaxError("unexpected term: %v", nodes[0])
		}
		switch term.Name {
		case "STRING":
			return lisp.String(lexer.Unescape(term.Value[1 : len(term.Value)-1]))
		case "INTEGER":
			x, err := strconv.Atoi(strings.TrimPrefix(term.Value, "+"))
			if err != nil {
				return syntaxError("integer literal overflows int: %v", term.Value)
			}
			return lisp.Int(x)
		default:
			return lisp.Symbol(term.Value)
		}
	case nodeSExprOUnmatched:
		open := nodes[0].(*parsec.Terminal)
		rest := open.GetValue() + stringifyNodes(nodes[1:len(nodes)-1]) // Trim off the End node
		if len(rest) > 10 {
			rest = rest[:10] + "..."
		}
		return syntaxError("unmatched %q starting: %v", open.GetValue(), rest)
	case nodeSExpr:
		// We don't want terminal parsec nodes '(' and ')'
		lval := lisp.SExpr(make([]*lisp.LVal, 0, len(nodes)-2))
		for _, c := range nodes {
			if c, ok := c.(*lisp.LVal); ok {
				lval.Cells = append(lval.Cells, c)
			}
		}
		return lval
	case nodePrefix:
		mark := nodes[0].(*parsec.Terminal)
		c, ok := nodes[len(nodes)-1].(*lisp.LVal)
		if !ok {
			return syntaxError("invalid %s operand", prefixSymbols[mark.GetName()])
		}
		return lisp.List(lisp.Symbol(prefixSymbols[mark.GetName()]), c)
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func syntaxError(format string, v ...interface{}) error {
	return lisp.GoError(lisp.ErrorConditionf(lisp.CondSyntaxError, format, v...))
}

func stringifyNodes(nodes []parsec.ParsecNode) string {
	var s []string
	for _, node := range nodes {
		switch node := node.(type) {
		case *parsec.Terminal:
			switch node.GetName() {
			case "OPENP", "CLOSEP":
				continue
			}
			s = append(s, node.GetValue())
		case []parsec.ParsecNode:
			s = append(s, "("+stringifyNodes(node)+")")
		case *lisp.LVal:
			s = append(s, node.String())
		default:
			s = append(s, fmt.Sprint(node))
		}
	}
	return strings.Join(s, " ")
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case error:
			nodes = []parsec.ParsecNode{node}
			return nodes, false
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

func astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newAST(t, nodes)
	}
}

// getLVal converts a root node into an LVal.  Comments produce an LInvalid
// value which callers skip.
func getLVal(root parsec.ParsecNode) *lisp.LVal {
	nodes, ok := cleanParsecNodeList([]parsec.ParsecNode{root})
	if !ok {
		if lerr, isLErr := nodes[0].(*lisp.ErrorVal); isLErr {
			return (*lisp.LVal)(lerr)
		}
		return lisp.ErrorConditionf(lisp.CondSyntaxError, "%v", nodes[0])
	}
	if len(nodes) == 0 {
		return &lisp.LVal{}
	}
	lval, ok := nodes[0].(*lisp.LVal)
	if !ok {
		return &lisp.LVal{}
	}
	return lval
}
