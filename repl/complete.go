// Copyright © 2026 The Spill authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/spill/lisp"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the
// global names and macros of an environment.
type symbolCompleter struct {
	env *lisp.LEnv
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' || ch == '\'' || ch == '`' || ch == ',' || ch == '@' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}
	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		result = append(result, []rune(sym[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	for name := range c.env.Root().Scope {
		add(name)
	}
	for _, name := range c.env.Runtime.Macros.Names() {
		add(name)
	}
	sort.Strings(result)
	return result
}
