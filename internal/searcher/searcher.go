// Package searcher executes OR, AND, and PHRASE queries against the index
// and document store and returns ranked results.
package searcher

import (
	"log/slog"
	"math"
	"strings"

	"github.com/docsearch-labs/docsearch/internal/analyzer"
	"github.com/docsearch-labs/docsearch/internal/index"
	"github.com/docsearch-labs/docsearch/internal/searcher/ranker"
	"github.com/docsearch-labs/docsearch/internal/store"
)

// Result is a single ranked search hit.
type Result struct {
	DocID    string         `json:"doc_id"`
	Score    float64        `json:"score"`
	Metadata store.Metadata `json:"metadata"`
}

// Searcher runs queries against an index and its backing document store.
type Searcher struct {
	analyzer *analyzer.Analyzer
	idx      *index.Index
	docs     *store.Store
	logger   *slog.Logger
}

// New creates a Searcher over the given analyzer, index, and store.
func New(an *analyzer.Analyzer, idx *index.Index, docs *store.Store) *Searcher {
	return &Searcher{
		analyzer: an,
		idx:      idx,
		docs:     docs,
		logger:   slog.Default().With("component", "searcher"),
	}
}

// Search executes a query in the given mode and returns at most topK
// results, sorted by score descending with ties broken by ascending
// document ID. Empty normalised queries and non-positive topK yield an
// empty slice, never an error.
func (s *Searcher) Search(query string, mode Mode, topK int) []Result {
	if mode == ModePhrase {
		return s.phraseSearch(query, topK)
	}

	terms := s.analyzer.Tokens(query)
	if len(terms) == 0 {
		return []Result{}
	}

	var candidates []string
	switch mode {
	case ModeAND:
		candidates = s.intersectPostings(terms)
	default:
		candidates = s.unionPostings(terms)
	}

	ranked := ranker.Rank(terms, candidates, s.idx, topK)
	s.logger.Debug("query executed",
		"query", query,
		"mode", mode.String(),
		"terms", terms,
		"candidates", len(candidates),
		"results", len(ranked),
	)
	return s.attachMetadata(ranked)
}

// phraseSearch counts non-overlapping occurrences of the raw lowercased
// query in each document's raw lowercased content. The score is the
// occurrence count divided by the document's whitespace-split word count, a
// frequency ratio rather than TF-IDF. Matching is a literal substring test,
// so punctuation and spacing must reproduce exactly; this is deliberately
// laxer than the word-boundary matching used for snippets.
func (s *Searcher) phraseSearch(query string, topK int) []Result {
	phrase := strings.ToLower(query)
	if strings.TrimSpace(phrase) == "" {
		return []Result{}
	}

	scored := make([]ranker.ScoredDoc, 0)
	for _, docID := range s.docs.IDs() {
		content, _, ok := s.docs.Get(docID)
		if !ok {
			continue
		}
		count := strings.Count(strings.ToLower(content), phrase)
		if count == 0 {
			continue
		}
		wordCount := len(strings.Fields(content))
		if wordCount == 0 {
			continue
		}
		scored = append(scored, ranker.ScoredDoc{
			DocID: docID,
			Score: math.Round(float64(count)/float64(wordCount)*10000) / 10000,
		})
	}
	return s.attachMetadata(ranker.SortAndTruncate(scored, topK))
}

// unionPostings returns every document containing at least one term.
func (s *Searcher) unionPostings(terms []string) []string {
	seen := make(map[string]struct{})
	candidates := make([]string, 0)
	for _, term := range terms {
		for _, docID := range s.idx.Postings(term) {
			if _, dup := seen[docID]; dup {
				continue
			}
			seen[docID] = struct{}{}
			candidates = append(candidates, docID)
		}
	}
	return candidates
}

// intersectPostings returns the documents containing every term. Any term
// with empty postings empties the whole intersection.
func (s *Searcher) intersectPostings(terms []string) []string {
	var candidates map[string]struct{}
	for _, term := range terms {
		postings := s.idx.Postings(term)
		if len(postings) == 0 {
			return nil
		}
		docSet := make(map[string]struct{}, len(postings))
		for _, docID := range postings {
			docSet[docID] = struct{}{}
		}
		if candidates == nil {
			candidates = docSet
			continue
		}
		for docID := range candidates {
			if _, ok := docSet[docID]; !ok {
				delete(candidates, docID)
			}
		}
	}
	result := make([]string, 0, len(candidates))
	for docID := range candidates {
		result = append(result, docID)
	}
	return result
}

func (s *Searcher) attachMetadata(scored []ranker.ScoredDoc) []Result {
	results := make([]Result, 0, len(scored))
	for _, doc := range scored {
		results = append(results, Result{
			DocID:    doc.DocID,
			Score:    doc.Score,
			Metadata: s.docs.Meta(doc.DocID),
		})
	}
	return results
}
