package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
)

// Document is an open grammar file.
type Document struct {
	// Text is the current content.
	Text string
	// Grammar is the syntax tree of the last content that compiled. It may
	// lag behind Text while the user is typing.
	Grammar *grammar.Grammar
	// Diagnostics were computed from Text.
	Diagnostics []protocol.Diagnostic
}

// DocumentStore is a thread-safe store of open documents keyed by URI.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Update analyzes text with analyze and stores the result under uri. The
// previous grammar is kept when text does not compile.
func (ds *DocumentStore) Update(uri, text string, analyze func(string) (*grammar.Grammar, []protocol.Diagnostic)) *Document {
	g, diags := analyze(text)

	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc := &Document{Text: text, Grammar: g, Diagnostics: diags}
	if prev, ok := ds.documents[uri]; ok && g == nil {
		doc.Grammar = prev.Grammar
	}

	ds.documents[uri] = doc

	return doc
}

// Get retrieves a document by URI. The returned document must not be
// modified.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Len returns the number of open documents.
func (ds *DocumentStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.documents)
}
