package ingest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/searcher"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "python programming notes")
	writeFile(t, dir, "guide.md", "java programming guide")
	writeFile(t, dir, filepath.Join("nested", "deep.txt"), "nested document content")
	writeFile(t, dir, "image.png", "binary junk")

	e := engine.New(nil)
	loader := NewLoader(e, nil)

	report, err := loader.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if report.Indexed != 3 {
		t.Errorf("Indexed = %d, want 3", report.Indexed)
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, want 0", report.Failed)
	}

	// Document IDs are slash-separated relative paths.
	if _, _, ok := e.Document("nested/deep.txt"); !ok {
		t.Error("nested document missing or wrongly keyed")
	}
	if _, _, ok := e.Document("image.png"); ok {
		t.Error("non-matching extension was ingested")
	}
	if results := e.Search("python", searcher.ModeOR, 10); len(results) != 1 {
		t.Errorf("ingested content not searchable: %v", results)
	}
}

func TestLoadDirectoryMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "hello searchable world")

	e := engine.New(nil)
	loader := NewLoader(e, nil)
	if _, err := loader.LoadDirectory(dir); err != nil {
		t.Fatal(err)
	}

	_, meta, ok := e.Document("doc.txt")
	if !ok {
		t.Fatal("doc.txt not ingested")
	}
	if meta["filename"] != "doc.txt" {
		t.Errorf("filename = %v", meta["filename"])
	}
	if meta["size"] != len("hello searchable world") {
		t.Errorf("size = %v", meta["size"])
	}
}

func TestLoadDirectoryCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.log", "log content alpha")
	writeFile(t, dir, "b.txt", "text content beta")

	e := engine.New(nil)
	// Extensions normalise case and accept entries without a leading dot.
	loader := NewLoader(e, []string{"LOG"})

	report, err := loader.LoadDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if report.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", report.Indexed)
	}
	if _, _, ok := e.Document("a.log"); !ok {
		t.Error("a.log should have been ingested")
	}
	if _, _, ok := e.Document("b.txt"); ok {
		t.Error("b.txt should have been filtered out")
	}
}

func TestLoadDirectoryUnreadableFileContinues(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforceable here")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "readable content")
	locked := writeFile(t, dir, "locked.txt", "unreadable content")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	e := engine.New(nil)
	loader := NewLoader(e, nil)
	report, err := loader.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("one bad file must not abort the batch: %v", err)
	}
	if report.Indexed != 1 || report.Failed != 1 {
		t.Errorf("report = %+v, want 1 indexed and 1 failed", report)
	}

	var failure *FileResult
	for i := range report.Results {
		if report.Results[i].Error != "" {
			failure = &report.Results[i]
		}
	}
	if failure == nil || failure.DocID != "locked.txt" {
		t.Errorf("failure entry = %+v", failure)
	}
}

func TestLoadDirectoryMissingRoot(t *testing.T) {
	e := engine.New(nil)
	loader := NewLoader(e, nil)
	if _, err := loader.LoadDirectory(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing root must be a hard error")
	}
}
