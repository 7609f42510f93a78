// Copyright © 2026 The Spill authors

package lisp

// QuasiquoteExpand rewrites the quasiquote template ex into code which builds
// the template's value when evaluated.  Unquoted expressions are evaluated in
// place and the values of spliced expressions, which must be lists, are
// appended in place.
//
//	`x            => (quote x)
//	`,x           => x
//	`(a ,b ,@c d) => (cons (quote a) (cons b (append c (cons (quote d) (quote ())))))
//
// An unquote-splicing form which is not an element of a list is a
// syntax-error.
func QuasiquoteExpand(ex *LVal) *LVal {
	if ex.Type != LSExpr || len(ex.Cells) == 0 {
		return Quote(ex)
	}
	head := ex.Cells[0]
	if head.IsSymbol(UnquoteSplicingSymbol) {
		return qqError(ex, "can't splice here")
	}
	if head.IsSymbol(UnquoteSymbol) {
		if len(ex.Cells) != 2 {
			return qqError(ex, "unquote: expected 1 operand but got %d", len(ex.Cells)-1)
		}
		return ex.Cells[1]
	}
	rest := QuasiquoteExpand(SExpr(ex.Cells[1:]))
	if rest.Type == LError {
		return rest
	}
	if h, ok := head.HeadSymbol(); ok && h == UnquoteSplicingSymbol {
		if len(head.Cells) != 2 {
			return qqError(head, "unquote-splicing: expected 1 operand but got %d", len(head.Cells)-1)
		}
		return List(Symbol("append"), head.Cells[1], rest)
	}
	first := QuasiquoteExpand(head)
	if first.Type == LError {
		return first
	}
	return List(Symbol("cons"), first, rest)
}

func qqError(ex *LVal, format string, v ...interface{}) *LVal {
	err := ErrorConditionf(CondSyntaxError, format, v...)
	err.Source = ex.Source
	return err
}
