// Package index maintains the inverted index and the per-document term
// statistics backing TF-IDF scoring. All four tables (postings, term
// frequencies, document frequencies, document lengths) live behind a single
// mutation entry point so they can never drift apart.
package index

import (
	"sort"
	"sync"
)

// Index is the aggregate of index tables. A single RWMutex serialises
// writers; readers may run concurrently between writes.
type Index struct {
	mu          sync.RWMutex
	postings    map[string]map[string]struct{}
	termFreqs   map[string]map[string]int
	docFreqs    map[string]int
	docLengths  map[string]int
	totalTokens int64
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		postings:   make(map[string]map[string]struct{}),
		termFreqs:  make(map[string]map[string]int),
		docFreqs:   make(map[string]int),
		docLengths: make(map[string]int),
	}
}

// Add indexes the token sequence of a document. Re-adding a known docID
// first retracts every contribution of the previous version, so the
// resulting state is identical to having only ever indexed the new tokens.
func (x *Index) Add(docID string, tokens []string) {
	termFreq := make(map[string]int, len(tokens))
	for _, term := range tokens {
		termFreq[term]++
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, indexed := x.docLengths[docID]; indexed {
		x.retract(docID)
	}

	x.termFreqs[docID] = termFreq
	x.docLengths[docID] = len(tokens)
	x.totalTokens += int64(len(tokens))

	for term := range termFreq {
		docs, ok := x.postings[term]
		if !ok {
			docs = make(map[string]struct{})
			x.postings[term] = docs
		}
		docs[docID] = struct{}{}
		x.docFreqs[term]++
	}
}

// retract removes all of docID's postings and frequency contributions.
// Caller must hold the write lock.
func (x *Index) retract(docID string) {
	for term := range x.termFreqs[docID] {
		if docs, ok := x.postings[term]; ok {
			delete(docs, docID)
			if len(docs) == 0 {
				delete(x.postings, term)
			}
		}
		x.docFreqs[term]--
		if x.docFreqs[term] <= 0 {
			delete(x.docFreqs, term)
		}
	}
	x.totalTokens -= int64(x.docLengths[docID])
	delete(x.termFreqs, docID)
	delete(x.docLengths, docID)
}

// TermFrequency returns the raw occurrence count of term in docID, or 0.
func (x *Index) TermFrequency(term, docID string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.termFreqs[docID][term]
}

// DocumentFrequency returns the number of documents containing term, or 0
// for an unseen term.
func (x *Index) DocumentFrequency(term string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docFreqs[term]
}

// Postings returns the IDs of all documents containing term, in ascending
// order. Unseen terms yield an empty slice.
func (x *Index) Postings(term string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	docs := x.postings[term]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DocumentLength returns the token count of docID, or 0 if unknown.
func (x *Index) DocumentLength(docID string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docLengths[docID]
}

// TermCount returns the vocabulary size.
func (x *Index) TermCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.postings)
}

// DocumentCount returns the number of indexed documents.
func (x *Index) DocumentCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docLengths)
}

// AverageDocumentLength returns the mean token count per document, or 0
// when nothing is indexed.
func (x *Index) AverageDocumentLength() float64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.docLengths) == 0 {
		return 0
	}
	return float64(x.totalTokens) / float64(len(x.docLengths))
}

// Snapshot returns copies of the four tables in a serialisable form: the
// inverted index as term → sorted ID list, plus term frequencies, document
// frequencies, and document lengths.
func (x *Index) Snapshot() (map[string][]string, map[string]map[string]int, map[string]int, map[string]int) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	inverted := make(map[string][]string, len(x.postings))
	for term, docs := range x.postings {
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		inverted[term] = ids
	}
	termFreqs := make(map[string]map[string]int, len(x.termFreqs))
	for docID, freqs := range x.termFreqs {
		copied := make(map[string]int, len(freqs))
		for term, n := range freqs {
			copied[term] = n
		}
		termFreqs[docID] = copied
	}
	docFreqs := make(map[string]int, len(x.docFreqs))
	for term, n := range x.docFreqs {
		docFreqs[term] = n
	}
	docLengths := make(map[string]int, len(x.docLengths))
	for docID, n := range x.docLengths {
		docLengths[docID] = n
	}
	return inverted, termFreqs, docFreqs, docLengths
}

// Restore replaces the index state with the given tables, as loaded from a
// persisted snapshot.
func (x *Index) Restore(inverted map[string][]string, termFreqs map[string]map[string]int, docFreqs map[string]int, docLengths map[string]int) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.postings = make(map[string]map[string]struct{}, len(inverted))
	for term, ids := range inverted {
		docs := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			docs[id] = struct{}{}
		}
		x.postings[term] = docs
	}
	x.termFreqs = make(map[string]map[string]int, len(termFreqs))
	for docID, freqs := range termFreqs {
		copied := make(map[string]int, len(freqs))
		for term, n := range freqs {
			copied[term] = n
		}
		x.termFreqs[docID] = copied
	}
	x.docFreqs = make(map[string]int, len(docFreqs))
	for term, n := range docFreqs {
		x.docFreqs[term] = n
	}
	x.docLengths = make(map[string]int, len(docLengths))
	x.totalTokens = 0
	for docID, n := range docLengths {
		x.docLengths[docID] = n
		x.totalTokens += int64(n)
	}
}
