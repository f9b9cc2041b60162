// Package docstore caches the extracted documents of the current upload
// session, keyed by recipient name. One producer (the upload handlers) and
// the advisor as reader; uploads replace the whole set.
package docstore

import (
	"sync"

	"github.com/kbility/taxassist/internal/document"
)

// Store is a thread-safe in-memory registry of extracted documents.
type Store struct {
	mu    sync.Mutex
	docs  map[string][]document.TaxDocument
	order []string // recipient insertion order, for First and All
}

func New() *Store {
	return &Store{docs: make(map[string][]document.TaxDocument)}
}

// Add caches one document under its recipient name. Documents without a
// recipient are not addressable and are dropped.
func (s *Store) Add(doc document.TaxDocument) {
	if doc.RecipientName == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.RecipientName]; !ok {
		s.order = append(s.order, doc.RecipientName)
	}
	s.docs[doc.RecipientName] = append(s.docs[doc.RecipientName], doc)
}

// Get returns the cached documents for a recipient, or nil.
func (s *Store) Get(recipient string) []document.TaxDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.docs[recipient]
	out := make([]document.TaxDocument, len(docs))
	copy(out, docs)
	return out
}

// First returns the first cached recipient name, if any.
func (s *Store) First() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return "", false
	}
	return s.order[0], true
}

// All returns every cached document in insertion order.
func (s *Store) All() []document.TaxDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []document.TaxDocument
	for _, name := range s.order {
		out = append(out, s.docs[name]...)
	}
	return out
}

// Clear drops everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string][]document.TaxDocument)
	s.order = nil
}
