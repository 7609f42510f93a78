// Copyright © 2026 The Spill authors

package lsp

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/luthersystems/spill/astutil"
	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/rdparser"
	"github.com/luthersystems/spill/parser/token"
)

// maxParseErrors bounds the number of syntax errors collected from a single
// document.
const maxParseErrors = 100

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu          sync.Mutex
	URI         string
	Version     int32
	Content     string
	ast         []*lisp.LVal
	parseErrors []error
	defs        []*Definition
}

// parse parses the document content and caches the AST.  Parsing resumes
// after each syntax error so every well formed top-level expression is kept
// and every error is reported.
func (d *Document) parse() {
	scanner := token.NewScanner(uriToPath(d.URI), strings.NewReader(d.Content))
	p := rdparser.New(scanner)
	d.ast = nil
	d.parseErrors = nil
	for len(d.parseErrors) < maxParseErrors {
		expr, err := p.Parse()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.parseErrors = append(d.parseErrors, err)
			continue
		}
		d.ast = append(d.ast, expr)
	}
	d.parseErrors = append(d.parseErrors, quasiquoteErrors(d.ast)...)
	d.defs = collectDefinitions(d.ast)
}

// quasiquoteErrors returns the syntax errors in quasiquote templates found
// anywhere within exprs.  These errors are otherwise only detected when the
// enclosing form is expanded at run time.
func quasiquoteErrors(exprs []*lisp.LVal) []error {
	var errs []error
	astutil.Walk(exprs, func(form *lisp.LVal, _ *lisp.LVal, _ int) bool {
		if form.Len() != 2 || !form.Cells[0].IsSymbol(lisp.QuasiquoteSymbol) {
			return true
		}
		if exp := lisp.QuasiquoteExpand(form.Cells[1]); exp.Type == lisp.LError {
			if exp.Source == nil {
				exp.Source = astutil.SourceOf(form)
			}
			errs = append(errs, lisp.GoError(exp))
		}
		return true
	})
	return errs
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}
