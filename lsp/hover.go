// Copyright © 2026 The Spill authors

package lsp

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/luthersystems/spill/lisp/lisplib/libhelp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	word := wordAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	var def *Definition
	if word != "" {
		def = doc.lookupDefinition(word)
	}
	doc.mu.Unlock()
	if word == "" {
		return nil, nil
	}

	var content string
	if def != nil {
		content = definitionHover(def)
	} else {
		content = s.globalHover(word)
	}
	if content == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// definitionHover builds Markdown hover text for a definition in the
// document.
func definitionHover(def *Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`", def.Kind, def.Name)
	if def.Formals != nil {
		fmt.Fprintf(&sb, "\n\n```lisp\n%s\n```", signature(def.Name, def.Formals))
	}
	if doc := strings.TrimSpace(def.Doc); doc != "" {
		fmt.Fprintf(&sb, "\n\n%s", doc)
	}
	if def.Source != nil && def.Source.Line > 0 {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", def.Source.File, def.Source.Line)
	}
	return sb.String()
}

// globalHover renders the documentation of a name bound in the server's
// environment.  It returns the empty string for unknown names.
func (s *Server) globalHover(name string) string {
	if s.env == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := libhelp.RenderVar(&buf, s.env, name); err != nil {
		return ""
	}
	return "```text\n" + strings.TrimRight(buf.String(), "\n") + "\n```"
}
