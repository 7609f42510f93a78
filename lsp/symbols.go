// Copyright © 2026 The Spill authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/spill/astutil"
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

// DefKind classifies a top-level definition.
type DefKind int

const (
	DefVariable DefKind = iota
	DefFunction
	DefMacro
)

func (k DefKind) String() string {
	switch k {
	case DefFunction:
		return "function"
	case DefMacro:
		return "macro"
	default:
		return "variable"
	}
}

// Definition is a global name bound by a def or defmacro form in a document.
type Definition struct {
	Name    string
	Kind    DefKind
	Formals *lisp.LVal // nil for variables
	Doc     string
	Source  *token.Location
}

// collectDefinitions returns the global definitions made by exprs.  The
// operands of top-level begin forms are searched as well.
func collectDefinitions(exprs []*lisp.LVal) []*Definition {
	var defs []*Definition
	for _, expr := range astutil.TopLevelForms(exprs) {
		head, ok := expr.HeadSymbol()
		if !ok {
			continue
		}
		switch head {
		case "def":
			if d := varDefinition(expr); d != nil {
				defs = append(defs, d)
			}
		case "defmacro":
			if d := macroDefinition(expr); d != nil {
				defs = append(defs, d)
			}
		}
	}
	return defs
}

// varDefinition inspects (def name expr).
func varDefinition(expr *lisp.LVal) *Definition {
	if expr.Len() != 3 || expr.Cells[1].Type != lisp.LSymbol {
		return nil
	}
	name := expr.Cells[1]
	d := &Definition{Name: name.Str, Kind: DefVariable, Source: name.Source}
	val := expr.Cells[2]
	if h, ok := val.HeadSymbol(); ok && h == "fn" && val.Len() >= 3 {
		d.Kind = DefFunction
		d.Formals = val.Cells[1]
		d.Doc = lambdaDoc(val.Cells[2:])
	}
	return d
}

// macroDefinition inspects (defmacro name formals body...).
func macroDefinition(expr *lisp.LVal) *Definition {
	if expr.Len() < 4 || expr.Cells[1].Type != lisp.LSymbol {
		return nil
	}
	name := expr.Cells[1]
	return &Definition{
		Name:    name.Str,
		Kind:    DefMacro,
		Formals: expr.Cells[2],
		Doc:     lambdaDoc(expr.Cells[3:]),
		Source:  name.Source,
	}
}

// lambdaDoc returns the docstring of a function body.  A leading string is
// only documentation when more of the body follows it.
func lambdaDoc(body []*lisp.LVal) string {
	if len(body) > 1 && body[0].Type == lisp.LString {
		return body[0].Str
	}
	return ""
}

// lookupDefinition returns the last definition of name in the document.
// Later definitions shadow earlier ones when the file is loaded.
func (d *Document) lookupDefinition(name string) *Definition {
	var found *Definition
	for _, def := range d.defs {
		if def.Name == name {
			found = def
		}
	}
	return found
}

func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	defs := doc.defs
	doc.mu.Unlock()

	symbols := []protocol.DocumentSymbol{}
	for _, def := range defs {
		if def.Source == nil || def.Source.Line == 0 {
			continue
		}
		r := spillToLSPRange(def.Source, len(def.Name))
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           def.Name,
			Detail:         definitionDetail(def),
			Kind:           mapSymbolKind(def.Kind),
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols, nil
}

func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()

	word := wordAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	if word == "" {
		return nil, nil
	}
	def := doc.lookupDefinition(word)
	if def == nil || def.Source == nil || def.Source.Line == 0 {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: spillToLSPRange(def.Source, len(def.Name)),
	}, nil
}

// definitionDetail renders the signature of a function or macro definition.
func definitionDetail(def *Definition) *string {
	if def.Formals == nil {
		return nil
	}
	s := signature(def.Name, def.Formals)
	return &s
}

// signature renders a call signature such as "(map fn lis)".
func signature(name string, formals *lisp.LVal) string {
	cells := make([]*lisp.LVal, 0, 1+formals.Len())
	cells = append(cells, lisp.Symbol(name))
	if formals.Type == lisp.LSExpr {
		cells = append(cells, formals.Cells...)
	}
	return lisp.SExpr(cells).String()
}

func mapSymbolKind(kind DefKind) protocol.SymbolKind {
	switch kind {
	case DefFunction, DefMacro:
		return protocol.SymbolKindFunction
	default:
		return protocol.SymbolKindVariable
	}
}
