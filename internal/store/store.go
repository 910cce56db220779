// Package store owns the raw document contents and metadata. It is the
// source of truth for phrase search and snippet extraction, which both
// operate on unnormalised text.
package store

import (
	"sort"
	"sync"
)

// Metadata holds arbitrary per-document key/value pairs (title, author,
// date, ...). The engine treats it as opaque and only round-trips it, so
// values are restricted to JSON-representable scalars by convention.
type Metadata map[string]any

// Store maps document IDs to their raw content and metadata.
type Store struct {
	mu        sync.RWMutex
	documents map[string]string
	metadata  map[string]Metadata
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		documents: make(map[string]string),
		metadata:  make(map[string]Metadata),
	}
}

// Put stores or overwrites the content and metadata for id. Retraction of a
// replaced document's index contributions is the index's responsibility, not
// the store's.
func (s *Store) Put(id string, content string, meta Metadata) {
	if meta == nil {
		meta = Metadata{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id] = content
	s.metadata[id] = meta
}

// Get returns the content and metadata for id. The second metadata return is
// never nil when ok is true.
func (s *Store) Get(id string) (string, Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.documents[id]
	if !ok {
		return "", nil, false
	}
	return content, s.metadata[id], true
}

// Meta returns the metadata for id, or an empty Metadata if the document is
// unknown.
func (s *Store) Meta(id string) Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if meta, ok := s.metadata[id]; ok {
		return meta
	}
	return Metadata{}
}

// IDs returns all document IDs in ascending order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Snapshot returns deep copies of the document and metadata tables for
// persistence.
func (s *Store) Snapshot() (map[string]string, map[string]Metadata) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make(map[string]string, len(s.documents))
	for id, content := range s.documents {
		docs[id] = content
	}
	meta := make(map[string]Metadata, len(s.metadata))
	for id, m := range s.metadata {
		copied := make(Metadata, len(m))
		for k, v := range m {
			copied[k] = v
		}
		meta[id] = copied
	}
	return docs, meta
}

// Restore replaces the store's state with the given tables, as loaded from a
// persisted snapshot.
func (s *Store) Restore(documents map[string]string, metadata map[string]Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]string, len(documents))
	for id, content := range documents {
		s.documents[id] = content
	}
	s.metadata = make(map[string]Metadata, len(metadata))
	for id, m := range metadata {
		if m == nil {
			m = Metadata{}
		}
		s.metadata[id] = m
	}
	for id := range s.documents {
		if _, ok := s.metadata[id]; !ok {
			s.metadata[id] = Metadata{}
		}
	}
}
