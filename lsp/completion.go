// Copyright © 2026 The Spill authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/spill/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	prefix := wordPrefix(doc.Content, int(params.Position.Line), int(params.Position.Character))
	defs := doc.defs
	doc.mu.Unlock()

	seen := make(map[string]bool)
	items := []protocol.CompletionItem{}
	add := func(item protocol.CompletionItem) {
		if seen[item.Label] || !strings.HasPrefix(item.Label, prefix) {
			return
		}
		seen[item.Label] = true
		items = append(items, item)
	}

	for _, def := range defs {
		kind := completionKind(def.Kind)
		item := protocol.CompletionItem{
			Label:  def.Name,
			Kind:   &kind,
			Detail: definitionDetail(def),
		}
		if def.Doc != "" {
			item.Documentation = &protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: strings.TrimSpace(def.Doc),
			}
		}
		add(item)
	}
	for _, item := range s.globalCompletions() {
		add(item)
	}
	return items, nil
}

// globalCompletions returns an item for every special operator, macro and
// global binding in the server's environment, sorted by name within each
// group.
func (s *Server) globalCompletions() []protocol.CompletionItem {
	if s.env == nil {
		return nil
	}
	var items []protocol.CompletionItem
	keyword := protocol.CompletionItemKindKeyword
	for _, name := range s.env.Runtime.SpecialOpNames() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: &keyword})
	}
	for _, name := range s.env.Runtime.Macros.Names() {
		mac, _ := s.env.Runtime.Macros.Lookup(name)
		items = append(items, funCompletion(name, mac, &keyword))
	}

	scope := s.env.Root().Scope
	names := make([]string, 0, len(scope))
	for name := range scope {
		names = append(names, name)
	}
	sort.Strings(names)
	function := protocol.CompletionItemKindFunction
	variable := protocol.CompletionItemKindVariable
	for _, name := range names {
		v := scope[name]
		if v.Type != lisp.LFun {
			items = append(items, protocol.CompletionItem{Label: name, Kind: &variable})
			continue
		}
		items = append(items, funCompletion(name, v, &function))
	}
	return items
}

func funCompletion(name string, fun *lisp.LVal, kind *protocol.CompletionItemKind) protocol.CompletionItem {
	detail := signature(name, fun.Formals())
	item := protocol.CompletionItem{
		Label:  name,
		Kind:   kind,
		Detail: &detail,
	}
	if doc := strings.TrimSpace(fun.Docstring()); doc != "" {
		item.Documentation = &protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: doc,
		}
	}
	return item
}

// wordPrefix returns the part of the identifier which ends at the cursor.
func wordPrefix(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := lines[line]
	if col < 0 || col > len(ln) {
		return ""
	}
	start := col
	for start > 0 && isSymbolChar(ln[start-1]) {
		start--
	}
	return ln[start:col]
}

func completionKind(kind DefKind) protocol.CompletionItemKind {
	switch kind {
	case DefFunction:
		return protocol.CompletionItemKindFunction
	case DefMacro:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindVariable
	}
}
