// Copyright © 2026 The Spill authors

package lisp

import (
	"io"
)

// Loader is a function that loads definitions into an environment.
type Loader func(*LEnv) *LVal

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals should be executed in order.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// LocationReader is like Reader but assigns physical locations to the tokens
// from r.
type LocationReader interface {
	// ReadLocation the contents of r, associated with physical location loc,
	// and return the sequence of LVals that it contains.
	ReadLocation(name string, loc string, r io.Reader) ([]*LVal, error)
}

// StreamReader is a Reader which can deliver each top-level expression as
// soon as it is parsed.  If fn returns an error ReadEach stops and returns
// it.  Expressions preceding a syntax error are delivered before the syntax
// error is returned.
type StreamReader interface {
	ReadEach(name string, r io.Reader, fn func(*LVal) error) error
}

// LoaderMust returns its first argument when err is nil.  If err is not nil
// LoaderMust panics.
func LoaderMust(fn Loader, err error) Loader {
	if err != nil {
		panic(err)
	}
	return fn
}

// TextLoader parses a text stream using r and returns a Loader which expands
// and evaluates the stream's expressions when called.  The reader will be
// invoked only once.
func TextLoader(r Reader, name string, stream io.Reader) (Loader, error) {
	exprs, err := r.Read(name, stream)
	if err != nil {
		return nil, err
	}
	fn := func(env *LEnv) *LVal {
		lval := Nil()
		for _, expr := range exprs {
			lval = env.EvalExpr(expr)
			if lval.Type == LError {
				return lval
			}
		}
		return lval
	}
	return fn, nil
}
