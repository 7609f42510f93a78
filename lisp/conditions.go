// Copyright © 2026 The Spill authors

package lisp

// Error condition names.  These are stable API for programmatic error
// classification by embedders and tooling.
const (
	CondError                       = "error"
	CondSyntaxError                 = "syntax-error"
	CondVariableNotFound            = "variable-not-found"
	CondArityError                  = "arity-error"
	CondTypeError                   = "type-error"
	CondArithmeticError             = "arithmetic-error"
	CondMacroExpansionDepthExceeded = "macro-expansion-depth-exceeded"
	CondStackOverflow               = "stack-overflow"
	CondLibraryError                = "library-error"
)

// IsCondition returns true if v is an error with the given condition.
func IsCondition(v *LVal, condition string) bool {
	return v.Type == LError && v.Str == condition
}
