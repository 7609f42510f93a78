// Copyright © 2026 The Spill authors

package lisp

import (
	"github.com/luthersystems/spill/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LValType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LInt values store an int in the LVal.Int field.
	LInt
	// LError values store a condition name in LVal.Str and message data in
	// LVal.Cells.  A copy of the call stack at the time of the error's
	// creation is stored in LVal.Native.
	LError
	// LSymbol values store the symbol name in the LVal.Str field.
	LSymbol
	// LSExpr values are the compound (list) values of the language and store
	// their elements in LVal.Cells.  An LSExpr without cells is the empty
	// list.
	LSExpr
	// LFun values use the following fields in an LVal:
	// 		LVal.Str      The name used to display the function (if any)
	// 		LVal.Native   An *LFunData object
	//
	// A closure (created by ``fn'') uses LVal.Cells to store:
	//		[0]  the list of formal parameters
	//		[1]  the body expression
	//
	// A primitive stores its Go implementation in LFunData.Builtin and its
	// formal argument list in Cells[0].
	LFun
	// LString values store a string in the LVal.Str field.
	LString
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LInt:     "int",
	LError:   "error",
	LSymbol:  "symbol",
	LSExpr:   "list",
	LFun:     "function",
	LString:  "string",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LFunData holds the data behind an LFun value.  Exactly one of Builtin and
// Env is non-nil.
type LFunData struct {
	Builtin LBuiltin
	Env     *LEnv
	Doc     string

	// Special is true for special operators, which receive their operands
	// unevaluated and cannot be applied as ordinary functions.
	Special bool
}

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the location of the value in source text, if it was read
	// by a Reader.
	Source *token.Location

	// Str used by LSymbol, LString, LError and LFun values.
	Str string

	// Cells used by many values as a storage space for lisp objects.
	Cells []*LVal

	// Int used by LInt values.
	Int int

	// Type is the native type for a value in lisp.
	Type LType
}

// Int returns an LVal representing the number x.
func Int(x int) *LVal {
	return &LVal{
		Type: LInt,
		Int:  x,
	}
}

// Symbol returns an LVal representing the symbol s.
func Symbol(s string) *LVal {
	return &LVal{
		Type: LSymbol,
		Str:  s,
	}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Type: LString,
		Str:  str,
	}
}

// Bool returns an LVal with truthiness identical to b.
func Bool(b bool) *LVal {
	if b {
		return Symbol(TrueSymbol)
	}
	return Symbol(FalseSymbol)
}

// Nil returns the empty list.
func Nil() *LVal {
	return SExpr(nil)
}

// SExpr returns an LVal representing a list containing cells.
func SExpr(cells []*LVal) *LVal {
	return &LVal{
		Type:  LSExpr,
		Cells: cells,
	}
}

// List is a convenience wrapper around SExpr.
func List(cells ...*LVal) *LVal {
	return SExpr(cells)
}

// Quote returns the list (quote v).
func Quote(v *LVal) *LVal {
	return List(Symbol(QuoteSymbol), v)
}

// Primitive returns an LFun named name which calls fn with evaluated
// arguments.  Formals documents the arguments fn accepts and is used to check
// the number of arguments in a call.  Primitive panics if fn is nil.
func Primitive(name string, formals *LVal, fn LBuiltin, doc string) *LVal {
	if fn == nil {
		panic("lisp: nil builtin for primitive " + name)
	}
	return &LVal{
		Type:   LFun,
		Str:    name,
		Cells:  []*LVal{formals},
		Native: &LFunData{Builtin: fn, Doc: doc},
	}
}

// Closure returns an LFun which evaluates body in a child of env after
// binding its arguments to formals.
func Closure(env *LEnv, formals, body *LVal, doc string) *LVal {
	return &LVal{
		Type:   LFun,
		Cells:  []*LVal{formals, body},
		Native: &LFunData{Env: env, Doc: doc},
	}
}

// Formals returns the formal argument list of a function.
func (v *LVal) Formals() *LVal {
	if v.Type != LFun || len(v.Cells) == 0 {
		return Nil()
	}
	return v.Cells[0]
}

// Formals returns a list of formal argument symbols.
func Formals(argSymbols ...string) *LVal {
	cells := make([]*LVal, len(argSymbols))
	for i, sym := range argSymbols {
		cells[i] = Symbol(sym)
	}
	return SExpr(cells)
}

// FunData returns the function data of an LFun value.
func (v *LVal) FunData() *LFunData {
	if v.Type != LFun {
		return nil
	}
	fd, _ := v.Native.(*LFunData)
	return fd
}

// IsBuiltin returns true if v is a primitive implemented in Go.
func (v *LVal) IsBuiltin() bool {
	fd := v.FunData()
	return fd != nil && fd.Builtin != nil
}

// Builtin returns the Go implementation of a primitive.
func (v *LVal) Builtin() LBuiltin {
	if fd := v.FunData(); fd != nil {
		return fd.Builtin
	}
	return nil
}

// Docstring returns the documentation attached to a function.
func (v *LVal) Docstring() string {
	if fd := v.FunData(); fd != nil {
		return fd.Doc
	}
	return ""
}

// Len returns the length of a list, or -1 for any other value.
func (v *LVal) Len() int {
	if v.Type != LSExpr {
		return -1
	}
	return len(v.Cells)
}

// IsNil returns true if v is the empty list.
func (v *LVal) IsNil() bool {
	return v.Type == LSExpr && len(v.Cells) == 0
}

// IsSymbol returns true if v is the symbol sym.
func (v *LVal) IsSymbol(sym string) bool {
	return v.Type == LSymbol && v.Str == sym
}

// HeadSymbol returns the name of the symbol at the head of list v and true.
// When v is not a list headed by a symbol HeadSymbol returns false.
func (v *LVal) HeadSymbol() (string, bool) {
	if v.Type != LSExpr || len(v.Cells) == 0 || v.Cells[0].Type != LSymbol {
		return "", false
	}
	return v.Cells[0].Str, true
}

// Copy returns a shallow copy of v.  The Cells slice is copied so that
// appending to or modifying the returned list does not modify v.
func (v *LVal) Copy() *LVal {
	if v == nil {
		return nil
	}
	cp := &LVal{}
	*cp = *v
	if v.Cells != nil {
		cp.Cells = make([]*LVal, len(v.Cells))
		copy(cp.Cells, v.Cells)
	}
	return cp
}

// True returns true if v has a true value.  The symbol false, the integer
// zero, the empty list and the empty string are false.  Every other value is
// true.
func True(v *LVal) bool {
	switch v.Type {
	case LSymbol:
		return v.Str != FalseSymbol
	case LInt:
		return v.Int != 0
	case LSExpr:
		return len(v.Cells) != 0
	case LString:
		return v.Str != ""
	default:
		return true
	}
}

// Not inverts the truthiness of v.
func Not(v *LVal) bool {
	return !True(v)
}

// Equal returns true if a and b are structurally equal.  Functions are equal
// only if they are the same function.
func Equal(a, b *LVal) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case LInt:
		return a.Int == b.Int
	case LSymbol, LString:
		return a.Str == b.Str
	case LSExpr:
		if len(a.Cells) != len(b.Cells) {
			return false
		}
		for i := range a.Cells {
			if !Equal(a.Cells[i], b.Cells[i]) {
				return false
			}
		}
		return true
	case LFun:
		return a.Native == b.Native
	case LError:
		return a.Str == b.Str && errorCellMessage(a.Cells) == errorCellMessage(b.Cells)
	default:
		return false
	}
}

// GetType returns a symbol naming the type of v.
func GetType(v *LVal) *LVal {
	return Symbol(v.Type.String())
}
