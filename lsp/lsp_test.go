// Copyright © 2026 The Spill authors

package lsp

import (
	"testing"

	"github.com/luthersystems/spill/lisp/lisplib"
	"github.com/luthersystems/spill/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = "file:///test.spl"

// testServer creates a server with the standard library environment.
func testServer(t *testing.T) *Server {
	t.Helper()
	env, err := lisplib.NewDocEnv()
	require.NoError(t, err)
	return New(WithEnv(env))
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func openDoc(t *testing.T, s *Server, text string) []*protocol.PublishDiagnosticsParams {
	t.Helper()
	ctx, captured := capturingContext()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "spill",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
	return *captured
}

func position(line, char int) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Position:     protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)},
	}
}

func hoverText(t *testing.T, s *Server, line, char int) string {
	t.Helper()
	hover, err := s.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: position(line, char),
	})
	require.NoError(t, err)
	if hover == nil {
		return ""
	}
	content, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok, "hover contents should be MarkupContent, got %T", hover.Contents)
	return content.Value
}

func completionLabels(t *testing.T, s *Server, line, char int) []string {
	t.Helper()
	result, err := s.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: position(line, char),
	})
	require.NoError(t, err)
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "completion result should be []CompletionItem, got %T", result)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

func TestPositionConversion(t *testing.T) {
	tests := []struct {
		name      string
		loc       *token.Location
		line, col protocol.UInteger
	}{
		{"origin", &token.Location{File: "test.spl", Line: 1, Col: 1}, 0, 0},
		{"multi-digit", &token.Location{File: "test.spl", Line: 5, Col: 10}, 4, 9},
		{"zero values clamp", &token.Location{File: "test.spl"}, 0, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pos := spillToLSPPosition(test.loc)
			assert.Equal(t, test.line, pos.Line)
			assert.Equal(t, test.col, pos.Character)
		})
	}

	r := spillToLSPRange(&token.Location{Line: 3, Col: 5}, 4)
	assert.Equal(t, protocol.Position{Line: 2, Character: 4}, r.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 8}, r.End)
}

func TestWordAtPosition(t *testing.T) {
	tests := []struct {
		content   string
		line, col int
		word      string
	}{
		{"(map f xs)", 0, 1, "map"},
		{"(map f xs)", 0, 4, "map"},
		{"(map f xs)", 0, 2, "map"},
		{"(set! x 1)", 0, 1, "set!"},
		{"(null? xs)", 0, 3, "null?"},
		{"'(a b)", 0, 2, "a"},
		{"`(a ,@rest)", 0, 8, "rest"},
		{"(a b)\n(cdr c)", 1, 2, "cdr"},
		{"(a b)", 0, 0, ""},
		{"(a b)", 3, 0, ""},
		{"(a b)", 0, 10, ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.word, wordAtPosition(test.content, test.line, test.col),
			"%q at %d:%d", test.content, test.line, test.col)
	}
	assert.Equal(t, "ma", wordPrefix("(map f xs)", 0, 3))
	assert.Equal(t, "", wordPrefix("(map f xs)", 0, 0))
}

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	doc := store.Open(testURI, 1, "(+ 1 2)")
	require.NotNil(t, doc)
	assert.Len(t, doc.ast, 1)
	assert.Same(t, doc, store.Get(testURI))
	assert.Nil(t, store.Get("file:///missing.spl"))

	changed := store.Change(testURI, 2, "(def x 1)\n(def y 2)")
	assert.Same(t, doc, changed)
	assert.Equal(t, int32(2), changed.Version)
	assert.Len(t, changed.ast, 2)
	assert.Len(t, changed.defs, 2)

	store.Close(testURI)
	assert.Nil(t, store.Get(testURI))
}

func TestDocumentParse(t *testing.T) {
	store := NewDocumentStore()

	doc := store.Open(testURI, 1, "(def add (fn (x y) (+ x y)))")
	assert.Empty(t, doc.parseErrors)
	require.Len(t, doc.ast, 1)
	require.Len(t, doc.defs, 1)
	assert.Equal(t, "add", doc.defs[0].Name)
	assert.Equal(t, DefFunction, doc.defs[0].Kind)
	assert.Equal(t, "(x y)", doc.defs[0].Formals.String())

	doc = store.Open(testURI, 1, "(def add (fn (x y)")
	assert.NotEmpty(t, doc.parseErrors)
	assert.Empty(t, doc.ast)
}

func TestDocumentParseRecovery(t *testing.T) {
	store := NewDocumentStore()
	doc := store.Open(testURI, 1, "(def a 1)\n)\n(def b 2)")
	require.Len(t, doc.parseErrors, 1)
	assert.Contains(t, doc.parseErrors[0].Error(), "unmatched )")
	require.Len(t, doc.ast, 2)
	assert.Equal(t, "(def a 1)", doc.ast[0].String())
	assert.Equal(t, "(def b 2)", doc.ast[1].String())
}

func TestDocumentQuasiquoteErrors(t *testing.T) {
	store := NewDocumentStore()

	doc := store.Open(testURI, 1, "(def x `,@y)")
	require.Len(t, doc.parseErrors, 1)
	assert.Contains(t, doc.parseErrors[0].Error(), "can't splice here")
	r := errorRange(doc.parseErrors[0])
	assert.Equal(t, protocol.Position{Line: 0, Character: 8}, r.Start)

	doc = store.Open(testURI, 1, "(defmacro m (x) `(list ,x (quote ,@x)))")
	assert.Empty(t, doc.parseErrors)

	doc = store.Open(testURI, 1, "(def f (fn () `(a `,@b)))")
	assert.Len(t, doc.parseErrors, 1)
}

func TestCollectDefinitions(t *testing.T) {
	store := NewDocumentStore()
	doc := store.Open(testURI, 1, `(def pi 3)
(def double (fn (x)
  "Doubles x."
  (* 2 x)))
(defmacro unless (c * body)
  "Evaluates body when c is false."
  (list 'if c () (cons 'begin body)))
(begin
  (def nested 1))
(def)
(+ 1 2)`)
	require.Empty(t, doc.parseErrors)
	require.Len(t, doc.defs, 4)

	assert.Equal(t, "pi", doc.defs[0].Name)
	assert.Equal(t, DefVariable, doc.defs[0].Kind)
	assert.Nil(t, doc.defs[0].Formals)

	assert.Equal(t, "double", doc.defs[1].Name)
	assert.Equal(t, DefFunction, doc.defs[1].Kind)
	assert.Equal(t, "Doubles x.", doc.defs[1].Doc)
	assert.Equal(t, 2, doc.defs[1].Source.Line)

	assert.Equal(t, "unless", doc.defs[2].Name)
	assert.Equal(t, DefMacro, doc.defs[2].Kind)
	assert.Equal(t, "(c * body)", doc.defs[2].Formals.String())

	assert.Equal(t, "nested", doc.defs[3].Name)
}

func TestDiagnostics(t *testing.T) {
	t.Run("valid code", func(t *testing.T) {
		s := testServer(t)
		pubs := openDoc(t, s, "(def add (fn (x y) (+ x y)))")
		require.Len(t, pubs, 1)
		assert.Equal(t, testURI, pubs[0].URI)
		assert.Empty(t, pubs[0].Diagnostics)
	})
	t.Run("syntax error", func(t *testing.T) {
		s := testServer(t)
		pubs := openDoc(t, s, "(def add\n  (fn (x y)")
		require.Len(t, pubs, 1)
		require.Len(t, pubs[0].Diagnostics, 1)
		d := pubs[0].Diagnostics[0]
		assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
		assert.Equal(t, "spill", *d.Source)
		assert.Equal(t, "syntax-error: unmatched (", d.Message)
		assert.Equal(t, protocol.Position{Line: 1, Character: 2}, d.Range.Start)
	})
	t.Run("multiple errors", func(t *testing.T) {
		s := testServer(t)
		pubs := openDoc(t, s, ")\n(+ 1 2)\n)\n(def x `,@y)")
		require.Len(t, pubs, 1)
		assert.Len(t, pubs[0].Diagnostics, 3)
	})
}

func TestDiagnosticsOnClose(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, "(broken")

	ctx, captured := capturingContext()
	s.captureNotify(ctx)
	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
	assert.Nil(t, s.docs.Get(testURI))
}

func TestDiagnosticsOnSave(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, "(+ 1 2)")

	ctx, captured := capturingContext()
	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "(+ 1"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, *captured, "change diagnostics are debounced")

	err = s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Len(t, (*captured)[0].Diagnostics, 1)
}

func TestHover(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, `(def add (fn (x y)
  "Adds x and y."
  (+ x y)))
(add (car '(1)) zz)
(when true (map add ()))`)

	text := hoverText(t, s, 3, 2)
	assert.Contains(t, text, "**function** `add`")
	assert.Contains(t, text, "(add x y)")
	assert.Contains(t, text, "Adds x and y.")
	assert.Contains(t, text, "*Defined in /test.spl:1*")

	text = hoverText(t, s, 3, 7)
	assert.Contains(t, text, "builtin (car lis)")

	text = hoverText(t, s, 4, 2)
	assert.Contains(t, text, "macro (when c * body)")

	text = hoverText(t, s, 4, 13)
	assert.Contains(t, text, "function (map f xs)")

	assert.Empty(t, hoverText(t, s, 3, 0), "hover on a parenthesis")
	assert.Empty(t, hoverText(t, s, 3, 16), "hover on an unbound name")
}

func TestHoverUnknownDocument(t *testing.T) {
	s := testServer(t)
	hover, err := s.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: position(0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestCompletion(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, "(def map-twice (fn (f xs) (map f (map f xs))))\n(ma")

	labels := completionLabels(t, s, 1, 3)
	assert.Contains(t, labels, "map")
	assert.Contains(t, labels, "map-twice")
	assert.NotContains(t, labels, "car")

	labels = completionLabels(t, s, 1, 1)
	assert.Contains(t, labels, "car")
	assert.Contains(t, labels, "defmacro")
	assert.Contains(t, labels, "when")
	seen := make(map[string]bool)
	for _, label := range labels {
		assert.False(t, seen[label], "duplicate completion %q", label)
		seen[label] = true
	}
}

func TestDefinition(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, "(def x 1)\n(def x 2)\n(+ x (car '(3)))")

	result, err := s.textDocumentDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: position(2, 3),
	})
	require.NoError(t, err)
	loc, ok := result.(protocol.Location)
	require.True(t, ok, "definition should be a Location, got %T", result)
	assert.Equal(t, testURI, loc.URI)
	assert.Equal(t, protocol.Position{Line: 1, Character: 5}, loc.Range.Start)

	result, err = s.textDocumentDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: position(2, 7),
	})
	require.NoError(t, err)
	assert.Nil(t, result, "builtins have no source definition")
}

func TestDocumentSymbols(t *testing.T) {
	s := testServer(t)
	openDoc(t, s, "(def n 1)\n(def inc (fn (x) (+ x 1)))\n(defmacro m (x) x)")

	result, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	syms, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, syms, 3)

	assert.Equal(t, "n", syms[0].Name)
	assert.Equal(t, protocol.SymbolKindVariable, syms[0].Kind)
	assert.Nil(t, syms[0].Detail)

	assert.Equal(t, "inc", syms[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, syms[1].Kind)
	require.NotNil(t, syms[1].Detail)
	assert.Equal(t, "(inc x)", *syms[1].Detail)
	assert.Equal(t, protocol.Position{Line: 1, Character: 5}, syms[1].Range.Start)

	assert.Equal(t, "m", syms[2].Name)
}

func TestInitialize(t *testing.T) {
	s := testServer(t)
	root := "file:///workspace"
	result, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &root})
	require.NoError(t, err)
	res, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, res.ServerInfo.Name)
	assert.NotNil(t, res.Capabilities.HoverProvider)
	assert.NotNil(t, res.Capabilities.CompletionProvider)
	assert.NotNil(t, res.Capabilities.DefinitionProvider)
	assert.NotNil(t, res.Capabilities.DocumentSymbolProvider)
	assert.Equal(t, "/workspace", s.rootPath)

	var code = -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.shutdown(&glsp.Context{}))
	require.NoError(t, s.exit(&glsp.Context{}))
	assert.Equal(t, 0, code)
}
