// Copyright © 2026 The Spill authors

package diagnostic

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color terminals unless NO_COLOR is set
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// Color mode names accepted by ParseColorMode.
const (
	ColorAutoName   = "auto"
	ColorAlwaysName = "always"
	ColorNeverName  = "never"
)

// ParseColorMode returns the ColorMode with the given name.
func ParseColorMode(name string) (ColorMode, error) {
	switch name {
	case ColorAutoName, "":
		return ColorAuto, nil
	case ColorAlwaysName:
		return ColorAlways, nil
	case ColorNeverName:
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("unknown color mode: %q", name)
}

type palette struct {
	bold     string
	yellow   string
	boldRed  string
	boldBlue string
	boldCyan string
	reset    string
}

var ansiPalette = palette{
	bold:     "\033[1m",
	yellow:   "\033[33m",
	boldRed:  "\033[1;31m",
	boldBlue: "\033[1;34m",
	boldCyan: "\033[1;36m",
	reset:    "\033[0m",
}

var noPalette = palette{}

func choosePalette(mode ColorMode, w io.Writer) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return noPalette
	}
	if os.Getenv("NO_COLOR") != "" {
		return noPalette
	}
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return noPalette
	}
	return ansiPalette
}
