// Copyright © 2026 The Spill authors

package lisp

// TrueSymbol is the language's canonical true value.  Any value other than
// those listed in the documentation for True is also considered true.
const TrueSymbol = "true"

// FalseSymbol is the language's canonical false value.
const FalseSymbol = "false"

// VarArgSymbol marks a variadic parameter in a list of formal arguments.  The
// symbol following it is bound to a list of all remaining arguments.
const VarArgSymbol = "*"

// Symbols with special meaning to the evaluator and macro expander.
const (
	QuoteSymbol           = "quote"
	QuasiquoteSymbol      = "quasiquote"
	UnquoteSymbol         = "unquote"
	UnquoteSplicingSymbol = "unquote-splicing"
)

// CoreLibraryName is the name of the library loaded into every user
// environment by InitializeUserEnv.
const CoreLibraryName = "core.spl"
