// Copyright © 2026 The Spill authors

package lisp

import (
	"github.com/sirupsen/logrus"
)

// MacroExpand returns the complete expansion of v.  Quoted forms are left
// unchanged, quasiquote templates are rewritten into list construction code,
// macro calls are replaced by their expansion and every other list has each
// of its elements expanded.  Expansion repeats until no macro call remains.
func (env *LEnv) MacroExpand(v *LVal) *LVal {
	expanded := env.macroExpand(v, 0)
	if expanded.Type != LError && expanded != v {
		env.Runtime.logger().WithFields(logrus.Fields{
			"before": v.String(),
			"after":  expanded.String(),
		}).Debug("macro expansion")
	}
	return expanded
}

func (env *LEnv) macroExpand(v *LVal, depth int) *LVal {
	if v.Type != LSExpr || len(v.Cells) == 0 {
		return v
	}
	limit := env.Runtime.MaxMacroExpansionDepth
	if limit > 0 && depth > limit {
		env.setLoc(v.Source)
		return env.ErrorConditionf(CondMacroExpansionDepthExceeded,
			"macro expansion exceeded maximum depth %d: %v", limit, v)
	}
	if head, ok := v.HeadSymbol(); ok {
		switch head {
		case QuoteSymbol:
			return v
		case QuasiquoteSymbol:
			if len(v.Cells) != 2 {
				env.setLoc(v.Source)
				return env.ErrorConditionf(CondSyntaxError, "quasiquote: expected 1 operand but got %d", len(v.Cells)-1)
			}
			code := QuasiquoteExpand(v.Cells[1])
			if code.Type == LError {
				env.setLoc(v.Source)
				env.ErrorAssociate(code)
				return code
			}
			return env.macroExpand(code, depth+1)
		}
		if mac, ok := env.Runtime.Macros.Lookup(head); ok {
			env.setLoc(v.Source)
			args := make([]*LVal, len(v.Cells)-1)
			copy(args, v.Cells[1:])
			expansion := env.funCall(mac, SExpr(args), head)
			if expansion.Type == LError {
				env.ErrorAssociate(expansion)
				return expansion
			}
			return env.macroExpand(expansion, depth+1)
		}
	}
	var cells []*LVal
	for i, c := range v.Cells {
		x := env.macroExpand(c, depth)
		if x.Type == LError {
			return x
		}
		if x != c && cells == nil {
			cells = make([]*LVal, len(v.Cells))
			copy(cells, v.Cells[:i])
		}
		if cells != nil {
			cells[i] = x
		}
	}
	if cells == nil {
		return v
	}
	expanded := SExpr(cells)
	expanded.Source = v.Source
	return expanded
}
