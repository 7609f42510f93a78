// Copyright © 2026 The Spill authors

// Package libhelp renders documentation for the special operators, macros
// and functions of an environment, both for Go programs and from spill code
// through the help primitive.
package libhelp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/spillutil"
)

// DocWidth is the column at which rendered documentation is wrapped.
const DocWidth = 72

// Kinds of documented names.
const (
	KindSpecialOp = "special-op"
	KindMacro     = "macro"
	KindBuiltin   = "builtin"
	KindFunction  = "function"
)

// MissingDoc describes a name with no documentation.
type MissingDoc struct {
	Kind string
	Name string
}

func (m MissingDoc) String() string {
	return m.Kind + " " + m.Name
}

// CheckMissing reports special operators, macros and global functions of env
// which have no docstring.
func CheckMissing(env *lisp.LEnv) []MissingDoc {
	var missing []MissingDoc
	for _, name := range env.Runtime.SpecialOpNames() {
		op, _ := env.Runtime.SpecialOp(name)
		if op.Docstring() == "" {
			missing = append(missing, MissingDoc{Kind: KindSpecialOp, Name: name})
		}
	}
	for _, name := range env.Runtime.Macros.Names() {
		mac, _ := env.Runtime.Macros.Lookup(name)
		if mac.Docstring() == "" {
			missing = append(missing, MissingDoc{Kind: KindMacro, Name: name})
		}
	}
	for _, name := range globalFunctions(env) {
		fun := env.Root().Scope[name]
		if fun.Docstring() == "" {
			missing = append(missing, MissingDoc{Kind: funKind(fun), Name: name})
		}
	}
	return missing
}

// Extension installs the help primitives.
type Extension struct{}

var _ spillutil.ExtensionBuiltins = Extension{}

// ExtensionName implements spillutil.Extension.
func (Extension) ExtensionName() string {
	return "help"
}

// Builtins implements spillutil.ExtensionBuiltins.
func (Extension) Builtins() []lisp.LBuiltinDef {
	return builtins
}

// Load installs the help primitives in env.
func Load(env *lisp.LEnv) *lisp.LVal {
	return spillutil.ExtensionLoader(Extension{})(env)
}

var builtins = []lisp.LBuiltinDef{
	spillutil.FunctionDoc("help", lisp.Formals("name"), builtinHelp,
		`
		Writes documentation for the symbol name to standard error.  Special
		operators, macros and functions have their signature and docstring
		rendered.  Other values have their type and current value printed.
		`),
	spillutil.FunctionDoc("help-names", lisp.Formals(), builtinHelpNames,
		`
		Writes the names of all special operators, macros and global
		functions to standard error.
		`),
}

func builtinHelp(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	name := args.Cells[0]
	if name.Type != lisp.LSymbol {
		return env.ErrorConditionf(lisp.CondTypeError, "help: argument is not a symbol: %v", name.Type)
	}
	err := RenderVar(env.Runtime.Stderr, env, name.Str)
	if err != nil {
		return env.Error(err)
	}
	return lisp.Nil()
}

func builtinHelpNames(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	err := RenderNames(env.Runtime.Stderr, env)
	if err != nil {
		return env.Error(err)
	}
	return lisp.Nil()
}

func funKind(fun *lisp.LVal) string {
	fd := fun.FunData()
	switch {
	case fd == nil:
		return lisp.GetType(fun).Str
	case fd.Special:
		return KindSpecialOp
	case fd.Builtin != nil:
		return KindBuiltin
	default:
		return KindFunction
	}
}

// globalFunctions returns the sorted names of functions bound in the global
// environment, excluding special operators.
func globalFunctions(env *lisp.LEnv) []string {
	var names []string
	for name, v := range env.Root().Scope {
		if v.Type != lisp.LFun {
			continue
		}
		if fd := v.FunData(); fd != nil && fd.Special {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wrap breaks s into lines of at most DocWidth columns.  Lines break only at
// whitespace so hyphenated names stay whole.
func wrap(s string) string {
	ww := wordwrap.NewWriter(DocWidth)
	ww.Breakpoints = nil
	_, _ = ww.Write([]byte(s))
	_ = ww.Close()
	return ww.String()
}

// RenderNames writes the documented names of env to w, grouped by kind.
func RenderNames(w io.Writer, env *lisp.LEnv) error {
	groups := []struct {
		title string
		names []string
	}{
		{"special operators", env.Runtime.SpecialOpNames()},
		{"macros", env.Runtime.Macros.Names()},
		{"functions", globalFunctions(env)},
	}
	for _, g := range groups {
		if len(g.names) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", g.title); err != nil {
			return err
		}
		text := indent.String(wrap(strings.Join(g.names, " ")), 2)
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

// RenderAll writes documentation for every special operator, macro and
// global function of env to w.  The exact formatting of the rendered
// documentation is subject to change.
func RenderAll(w io.Writer, env *lisp.LEnv) error {
	first := true
	sep := func() error {
		if first {
			first = false
			return nil
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	for _, name := range env.Runtime.SpecialOpNames() {
		op, _ := env.Runtime.SpecialOp(name)
		if err := sep(); err != nil {
			return err
		}
		if err := renderFun(w, KindSpecialOp, name, op); err != nil {
			return fmt.Errorf("special operator %s: %w", name, err)
		}
	}
	for _, name := range env.Runtime.Macros.Names() {
		mac, _ := env.Runtime.Macros.Lookup(name)
		if err := sep(); err != nil {
			return err
		}
		if err := renderFun(w, KindMacro, name, mac); err != nil {
			return fmt.Errorf("macro %s: %w", name, err)
		}
	}
	for _, name := range globalFunctions(env) {
		fun := env.Root().Scope[name]
		if err := sep(); err != nil {
			return err
		}
		if err := renderFun(w, funKind(fun), name, fun); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
	}
	return nil
}

// RenderVar writes to w formatted documentation for sym in the context of
// env.  A name which is both a macro and a variable has both documented.
func RenderVar(w io.Writer, env *lisp.LEnv, sym string) error {
	if op, ok := env.Runtime.SpecialOp(sym); ok {
		return renderFun(w, KindSpecialOp, sym, op)
	}
	mac, isMacro := env.Runtime.Macros.Lookup(sym)
	if isMacro {
		if err := renderFun(w, KindMacro, sym, mac); err != nil {
			return err
		}
	}
	v := env.Get(lisp.Symbol(sym))
	if v.Type == lisp.LError {
		if isMacro {
			return nil
		}
		return lisp.GoError(v)
	}
	if isMacro {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if v.Type != lisp.LFun {
		return renderVal(w, sym, v)
	}
	return renderFun(w, funKind(v), sym, v)
}

func renderVal(w io.Writer, sym string, v *lisp.LVal) error {
	_, err := fmt.Fprintf(w, "%v %s %v\n", lisp.GetType(v).Str, sym, v)
	return err
}

func renderFun(w io.Writer, kind string, sym string, v *lisp.LVal) error {
	formals := v.Formals()
	siglist := lisp.SExpr(make([]*lisp.LVal, 1+formals.Len()))
	siglist.Cells[0] = lisp.Symbol(sym)
	copy(siglist.Cells[1:], formals.Cells)
	_, err := fmt.Fprintf(w, "%s %v\n", kind, siglist)
	if err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	doc := cleanDocstring(v.Docstring())
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	return nil
}

func cleanDocstring(doc string) string {
	doc = strings.TrimLeft(doc, "\n")
	if strings.TrimSpace(doc) == "" {
		return ""
	}
	doc = indent.String(wrap(dedentDoc(doc)), 2)
	return strings.TrimRight(doc, "\n ")
}

// dedentDoc removes common leading whitespace from all non-empty lines.  The
// first line of a docstring often has no indentation while continuation
// lines inherit the indentation of the source code around them, so the first
// line does not count toward the common prefix.  Tabs are normalized to
// spaces.
func dedentDoc(s string) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	lines := strings.Split(s, "\n")

	minWS := -1
	start := 0
	if len(lines) > 1 {
		start = 1
	}
	for _, line := range lines[start:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		ws := len(line) - len(trimmed)
		if minWS < 0 || ws < minWS {
			minWS = ws
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	if minWS <= 0 {
		return strings.Join(lines, "\n")
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		} else if len(lines[i]) >= minWS {
			lines[i] = lines[i][minWS:]
		}
	}
	return strings.Join(lines, "\n")
}
