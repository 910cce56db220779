// Package engine is the facade over the search core. It exclusively owns
// the analyzer, document store, and index tables, and exposes document
// insertion, search, snippet extraction, statistics, and snapshot
// persistence.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/docsearch-labs/docsearch/internal/analyzer"
	"github.com/docsearch-labs/docsearch/internal/index"
	"github.com/docsearch-labs/docsearch/internal/persist"
	"github.com/docsearch-labs/docsearch/internal/searcher"
	"github.com/docsearch-labs/docsearch/internal/snippet"
	"github.com/docsearch-labs/docsearch/internal/store"
	apperrors "github.com/docsearch-labs/docsearch/pkg/errors"
)

// Stats is the statistics contract reported by the engine.
type Stats struct {
	TotalDocuments        int     `json:"total_documents"`
	TotalTerms            int     `json:"total_terms"`
	AverageDocumentLength float64 `json:"average_document_length"`
}

// Engine bundles the search core behind a single owner. Writers
// (AddDocument, Load) are serialised by the store and index locks; readers
// may run concurrently between writes.
type Engine struct {
	analyzer *analyzer.Analyzer
	docs     *store.Store
	idx      *index.Index
	searcher *searcher.Searcher
	snippets *snippet.Extractor
	logger   *slog.Logger
}

// New creates an Engine with the given analyzer. A nil analyzer falls back
// to the default stopword set.
func New(an *analyzer.Analyzer) *Engine {
	if an == nil {
		an = analyzer.New(nil)
	}
	docs := store.New()
	idx := index.New()
	return &Engine{
		analyzer: an,
		docs:     docs,
		idx:      idx,
		searcher: searcher.New(an, idx, docs),
		snippets: snippet.New(an),
		logger:   slog.Default().With("component", "engine"),
	}
}

// AddDocument stores and indexes a document. Re-adding an existing ID
// replaces the stored content and retracts the prior version's index
// contributions before re-indexing. The only rejected input is an empty ID.
func (e *Engine) AddDocument(id string, content string, meta store.Metadata) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty document id", apperrors.ErrInvalidInput)
	}
	tokens := e.analyzer.Tokens(content)
	e.docs.Put(id, content, meta)
	e.idx.Add(id, tokens)
	e.logger.Debug("document indexed",
		"doc_id", id,
		"token_count", len(tokens),
	)
	return nil
}

// Search executes a query and returns at most topK ranked results.
func (e *Engine) Search(query string, mode searcher.Mode, topK int) []searcher.Result {
	return e.searcher.Search(query, mode, topK)
}

// Snippet returns a context window around the first query match in the
// given document, or "" for an unknown document ID.
func (e *Engine) Snippet(id string, query string, window int) string {
	content, _, ok := e.docs.Get(id)
	if !ok {
		return ""
	}
	return e.snippets.Extract(content, query, window)
}

// Document returns the stored content and metadata for id.
func (e *Engine) Document(id string) (string, store.Metadata, bool) {
	return e.docs.Get(id)
}

// Stats reports document count, vocabulary size, and average document
// length (0 when the engine is empty).
func (e *Engine) Stats() Stats {
	return Stats{
		TotalDocuments:        e.docs.Len(),
		TotalTerms:            e.idx.TermCount(),
		AverageDocumentLength: e.idx.AverageDocumentLength(),
	}
}

// Save snapshots the full engine state to a single file.
func (e *Engine) Save(path string) error {
	documents, metadata := e.docs.Snapshot()
	inverted, termFreqs, docFreqs, docLengths := e.idx.Snapshot()
	st := &persist.State{
		Documents:       documents,
		Metadata:        metadata,
		InvertedIndex:   inverted,
		TermFrequencies: termFreqs,
		DocFrequencies:  docFreqs,
		DocLengths:      docLengths,
	}
	if err := persist.Save(path, st); err != nil {
		return fmt.Errorf("saving index snapshot: %w", err)
	}
	e.logger.Info("index snapshot saved",
		"path", path,
		"documents", len(documents),
		"terms", len(inverted),
	)
	return nil
}

// Load replaces the engine state from a snapshot file. Failures leave the
// current state untouched and are surfaced to the caller.
func (e *Engine) Load(path string) error {
	st, err := persist.Load(path)
	if err != nil {
		return fmt.Errorf("loading index snapshot: %w", err)
	}
	e.docs.Restore(st.Documents, st.Metadata)
	e.idx.Restore(st.InvertedIndex, st.TermFrequencies, st.DocFrequencies, st.DocLengths)
	e.logger.Info("index snapshot loaded",
		"path", path,
		"documents", len(st.Documents),
		"terms", len(st.InvertedIndex),
	)
	return nil
}
