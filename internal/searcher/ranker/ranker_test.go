package ranker

import (
	"math"
	"reflect"
	"testing"
)

// stubIndex is a minimal IndexStats backed by literal tables.
type stubIndex struct {
	termFreqs  map[string]map[string]int
	docFreqs   map[string]int
	docLengths map[string]int
	docCount   int
}

func (s *stubIndex) TermFrequency(term, docID string) int { return s.termFreqs[docID][term] }
func (s *stubIndex) DocumentFrequency(term string) int    { return s.docFreqs[term] }
func (s *stubIndex) DocumentLength(docID string) int      { return s.docLengths[docID] }
func (s *stubIndex) DocumentCount() int                   { return s.docCount }

func corpusIndex() *stubIndex {
	// doc1: python programming language; doc2: java programming language
	return &stubIndex{
		termFreqs: map[string]map[string]int{
			"doc1": {"python": 1, "programming": 1, "language": 1},
			"doc2": {"java": 1, "programming": 1, "language": 1},
		},
		docFreqs:   map[string]int{"python": 1, "java": 1, "programming": 2, "language": 2},
		docLengths: map[string]int{"doc1": 3, "doc2": 3},
		docCount:   2,
	}
}

func TestTFIDF(t *testing.T) {
	idx := corpusIndex()

	// tf/len * ln(N/df) = 1/3 * ln(2/1)
	want := 1.0 / 3.0 * math.Log(2)
	if got := TFIDF(idx, "python", "doc1"); math.Abs(got-want) > 1e-12 {
		t.Errorf("TFIDF(python, doc1) = %v, want %v", got, want)
	}

	// Term in every document: idf = ln(2/2) = 0.
	if got := TFIDF(idx, "programming", "doc1"); got != 0 {
		t.Errorf("TFIDF(programming, doc1) = %v, want 0", got)
	}
	// Term absent from the document.
	if got := TFIDF(idx, "java", "doc1"); got != 0 {
		t.Errorf("TFIDF(java, doc1) = %v, want 0", got)
	}
	// Unknown term.
	if got := TFIDF(idx, "unseen", "doc1"); got != 0 {
		t.Errorf("TFIDF(unseen, doc1) = %v, want 0", got)
	}
}

func TestRankDropsNonPositiveScores(t *testing.T) {
	idx := corpusIndex()

	// "programming" has idf 0, so doc2 (which lacks "python") scores 0 and
	// must be excluded.
	got := Rank([]string{"python", "programming"}, []string{"doc1", "doc2"}, idx, 10)
	if len(got) != 1 || got[0].DocID != "doc1" {
		t.Fatalf("Rank = %v, want only doc1", got)
	}
	if got[0].Score <= 0 {
		t.Errorf("doc1 score = %v, want > 0", got[0].Score)
	}
}

func TestRankRounding(t *testing.T) {
	idx := corpusIndex()
	got := Rank([]string{"python"}, []string{"doc1"}, idx, 1)
	if len(got) != 1 {
		t.Fatal("expected one result")
	}
	want := math.Round(1.0/3.0*math.Log(2)*10000) / 10000
	if got[0].Score != want {
		t.Errorf("score = %v, want %v rounded to 4 places", got[0].Score, want)
	}
}

func TestSortAndTruncate(t *testing.T) {
	results := []ScoredDoc{
		{DocID: "c", Score: 0.5},
		{DocID: "a", Score: 0.5},
		{DocID: "b", Score: 0.9},
		{DocID: "d", Score: 0.1},
	}

	got := SortAndTruncate(append([]ScoredDoc(nil), results...), 3)
	want := []ScoredDoc{
		{DocID: "b", Score: 0.9},
		{DocID: "a", Score: 0.5},
		{DocID: "c", Score: 0.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortAndTruncate = %v, want %v", got, want)
	}
}

func TestSortAndTruncateLimits(t *testing.T) {
	results := []ScoredDoc{{DocID: "a", Score: 1}}

	if got := SortAndTruncate(append([]ScoredDoc(nil), results...), 0); len(got) != 0 {
		t.Errorf("limit 0 = %v, want empty", got)
	}
	if got := SortAndTruncate(append([]ScoredDoc(nil), results...), -3); len(got) != 0 {
		t.Errorf("negative limit = %v, want empty", got)
	}
	if got := SortAndTruncate(append([]ScoredDoc(nil), results...), 100); len(got) != 1 {
		t.Errorf("oversized limit = %v, want all results", got)
	}
}
