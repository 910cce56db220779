// Package ranker computes TF-IDF relevance scores and produces the ranked,
// truncated result list for a query.
package ranker

import (
	"math"
	"sort"
)

// ScoredDoc is a document ID with its aggregate relevance score.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// IndexStats is the read-only view of the index the ranker needs.
type IndexStats interface {
	TermFrequency(term, docID string) int
	DocumentFrequency(term string) int
	DocumentLength(docID string) int
	DocumentCount() int
}

// TFIDF returns the TF-IDF score of a single term in a single document:
// tf(t,d)/len(d) * ln(N/df(t)). Terms absent from the document or from the
// vocabulary contribute 0.
func TFIDF(idx IndexStats, term, docID string) float64 {
	tf := idx.TermFrequency(term, docID)
	if tf == 0 {
		return 0
	}
	docLen := idx.DocumentLength(docID)
	if docLen == 0 {
		return 0
	}
	docFreq := idx.DocumentFrequency(term)
	if docFreq == 0 {
		return 0
	}
	idf := math.Log(float64(idx.DocumentCount()) / float64(docFreq))
	return float64(tf) / float64(docLen) * idf
}

// Rank scores every candidate document by summed TF-IDF over the query
// terms, drops non-positive scores, and returns the sorted, truncated list.
func Rank(terms []string, candidates []string, idx IndexStats, limit int) []ScoredDoc {
	scored := make([]ScoredDoc, 0, len(candidates))
	for _, docID := range candidates {
		var score float64
		for _, term := range terms {
			score += TFIDF(idx, term, docID)
		}
		if score > 0 {
			scored = append(scored, ScoredDoc{
				DocID: docID,
				Score: round(score),
			})
		}
	}
	return SortAndTruncate(scored, limit)
}

// SortAndTruncate orders results by score descending, breaking ties by
// ascending document ID for reproducibility, then truncates to limit. A
// non-positive limit yields an empty list.
func SortAndTruncate(results []ScoredDoc, limit int) []ScoredDoc {
	if limit <= 0 {
		return []ScoredDoc{}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// round clamps a score to four decimal places for stable presentation.
func round(score float64) float64 {
	return math.Round(score*10000) / 10000
}
