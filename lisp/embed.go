// Copyright © 2026 The Spill authors

package lisp

import (
	"embed"
	"io/fs"
)

//go:embed lib/*.spl
var embeddedLib embed.FS

// EmbeddedLibrary returns a SourceLibrary serving the libraries compiled into
// the interpreter, including the core library.
func EmbeddedLibrary() SourceLibrary {
	sub, err := fs.Sub(embeddedLib, "lib")
	if err != nil {
		panic(err)
	}
	return &FSLibrary{FS: sub, Prefix: "embedded:"}
}
