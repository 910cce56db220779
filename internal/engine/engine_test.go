package engine

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/docsearch-labs/docsearch/internal/searcher"
	"github.com/docsearch-labs/docsearch/internal/store"
	apperrors "github.com/docsearch-labs/docsearch/pkg/errors"
)

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(nil)
	docs := map[string]string{
		"doc1": "python is a programming language",
		"doc2": "java is a programming language",
		"doc3": "rust systems programming without garbage collection",
	}
	for id, content := range docs {
		if err := e.AddDocument(id, content, store.Metadata{"id": id}); err != nil {
			t.Fatalf("AddDocument(%s): %v", id, err)
		}
	}
	return e
}

func TestAddDocumentValidation(t *testing.T) {
	e := New(nil)
	for _, id := range []string{"", "   ", "\t\n"} {
		err := e.AddDocument(id, "content", nil)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("AddDocument(%q) error = %v, want ErrInvalidInput", id, err)
		}
	}
	// Empty content is allowed; the document is stored but matches nothing.
	if err := e.AddDocument("empty", "", nil); err != nil {
		t.Errorf("AddDocument with empty content: %v", err)
	}
	if e.Stats().TotalDocuments != 1 {
		t.Errorf("TotalDocuments = %d, want 1", e.Stats().TotalDocuments)
	}
}

func TestReAddReplacesDocument(t *testing.T) {
	e := New(nil)
	if err := e.AddDocument("doc1", "ancient mariner ballad", nil); err != nil {
		t.Fatal(err)
	}
	if err := e.AddDocument("doc1", "modern poetry collection", nil); err != nil {
		t.Fatal(err)
	}

	if results := e.Search("ancient", searcher.ModeOR, 10); len(results) != 0 {
		t.Errorf("stale content still matches: %v", results)
	}
	if results := e.Search("poetry", searcher.ModeOR, 10); len(results) != 1 {
		t.Errorf("new content should match: %v", results)
	}
	stats := e.Stats()
	if stats.TotalDocuments != 1 {
		t.Errorf("TotalDocuments = %d, want 1", stats.TotalDocuments)
	}
}

func TestSearchAndSnippet(t *testing.T) {
	e := seededEngine(t)

	results := e.Search("python", searcher.ModeOR, 10)
	if len(results) != 1 || results[0].DocID != "doc1" {
		t.Fatalf("Search = %v, want doc1 only", results)
	}

	snip := e.Snippet("doc1", "python", 200)
	if snip == "" {
		t.Error("Snippet for a matching document should not be empty")
	}
	if got := e.Snippet("unknown", "python", 200); got != "" {
		t.Errorf("Snippet for unknown document = %q, want empty", got)
	}
}

func TestDocument(t *testing.T) {
	e := seededEngine(t)
	content, meta, ok := e.Document("doc2")
	if !ok || content == "" || meta["id"] != "doc2" {
		t.Errorf("Document = %q, %v, %v", content, meta, ok)
	}
	if _, _, ok := e.Document("ghost"); ok {
		t.Error("Document should miss for unknown id")
	}
}

func TestStats(t *testing.T) {
	e := New(nil)
	stats := e.Stats()
	if stats.TotalDocuments != 0 || stats.TotalTerms != 0 || stats.AverageDocumentLength != 0 {
		t.Errorf("empty engine stats = %+v", stats)
	}

	e = seededEngine(t)
	stats = e.Stats()
	if stats.TotalDocuments != 3 {
		t.Errorf("TotalDocuments = %d, want 3", stats.TotalDocuments)
	}
	if stats.TotalTerms == 0 || stats.AverageDocumentLength == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

// Saving then loading must reproduce identical results for a fixed query set.
func TestSaveLoadQueryEquivalence(t *testing.T) {
	e := seededEngine(t)
	path := filepath.Join(t.TempDir(), "index.dsix")
	if err := e.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := New(nil)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	queries := []struct {
		q    string
		mode searcher.Mode
	}{
		{"python", searcher.ModeOR},
		{"programming language", searcher.ModeAND},
		{"systems programming", searcher.ModeOR},
		{"is a", searcher.ModePhrase},
	}
	for _, tt := range queries {
		want := e.Search(tt.q, tt.mode, 10)
		got := restored.Search(tt.q, tt.mode, 10)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("query %q mode %s: restored %v, original %v", tt.q, tt.mode, got, want)
		}
	}

	if !reflect.DeepEqual(restored.Stats(), e.Stats()) {
		t.Errorf("stats diverged: %+v vs %+v", restored.Stats(), e.Stats())
	}
}

func TestLoadCorruptLeavesStateUntouched(t *testing.T) {
	e := seededEngine(t)
	path := filepath.Join(t.TempDir(), "missing.dsix")

	if err := e.Load(path); err == nil {
		t.Fatal("Load of missing file should fail")
	}
	if results := e.Search("python", searcher.ModeOR, 10); len(results) != 1 {
		t.Errorf("failed Load must not clobber engine state: %v", results)
	}
}
