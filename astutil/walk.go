// Copyright © 2026 The Spill authors

// Package astutil provides helpers for traversing parsed spill expressions.
package astutil

import (
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

// Walk calls fn for every node in exprs, depth-first.  parent is nil for
// top-level expressions.  The children of a node are visited only when fn
// returns true.
func Walk(exprs []*lisp.LVal, fn func(node *lisp.LVal, parent *lisp.LVal, depth int) bool) {
	for _, expr := range exprs {
		walkNode(expr, nil, 0, fn)
	}
}

func walkNode(node *lisp.LVal, parent *lisp.LVal, depth int, fn func(*lisp.LVal, *lisp.LVal, int) bool) {
	if node == nil {
		return
	}
	if !fn(node, parent, depth) || node.Type != lisp.LSExpr {
		return
	}
	for _, child := range node.Cells {
		walkNode(child, node, depth+1, fn)
	}
}

// TopLevelForms returns the expressions evaluated at the top level of a
// program, replacing each top-level begin form with its operands.
func TopLevelForms(exprs []*lisp.LVal) []*lisp.LVal {
	var forms []*lisp.LVal
	for _, expr := range exprs {
		if head, ok := expr.HeadSymbol(); ok && head == "begin" {
			forms = append(forms, TopLevelForms(expr.Cells[1:])...)
			continue
		}
		forms = append(forms, expr)
	}
	return forms
}

// SourceOf returns the best known source location of v.  The location of
// the first located child is used when v has none.
func SourceOf(v *lisp.LVal) *token.Location {
	if v.Source != nil && v.Source.Line > 0 {
		return v.Source
	}
	for _, c := range v.Cells {
		if loc := SourceOf(c); loc != nil {
			return loc
		}
	}
	return v.Source
}
