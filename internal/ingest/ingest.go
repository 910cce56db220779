// Package ingest loads documents into the engine from a directory tree.
// Each file is an independent unit of work: a read failure is recorded in
// the report and logged, and never aborts the rest of the batch.
package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/store"
)

// DefaultExtensions lists the file extensions ingested when none are
// configured.
var DefaultExtensions = []string{".txt", ".md", ".text"}

// FileResult records the outcome for a single file.
type FileResult struct {
	DocID string `json:"doc_id"`
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// Report summarises a directory ingestion run.
type Report struct {
	Indexed int          `json:"indexed"`
	Failed  int          `json:"failed"`
	Results []FileResult `json:"results"`
}

// Loader walks directories and feeds matching files into the engine. Calls
// into the engine are serialised: files are processed one at a time so the
// index's retract-then-insert invariant holds.
type Loader struct {
	engine     *engine.Engine
	extensions map[string]struct{}
	logger     *slog.Logger
}

// NewLoader creates a Loader for the given engine and extension filter.
// Empty extensions fall back to DefaultExtensions.
func NewLoader(e *engine.Engine, extensions []string) *Loader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Loader{
		engine:     e,
		extensions: exts,
		logger:     slog.Default().With("component", "ingest"),
	}
}

// LoadDirectory recursively ingests every matching file under root. The
// document ID is the slash-separated path relative to root. An unreadable
// root is the only hard failure; per-file errors end up in the report.
func (l *Loader) LoadDirectory(root string) (*Report, error) {
	report := &Report{Results: make([]FileResult, 0)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			l.logger.Error("skipping unreadable path", "path", path, "error", walkErr)
			report.Failed++
			report.Results = append(report.Results, FileResult{Path: path, Error: walkErr.Error()})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := l.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		l.ingestFile(root, path, report)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", root, err)
	}

	l.logger.Info("directory ingestion complete",
		"root", root,
		"indexed", report.Indexed,
		"failed", report.Failed,
	)
	return report, nil
}

func (l *Loader) ingestFile(root string, path string, report *Report) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	docID := filepath.ToSlash(rel)

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error("failed to read file", "path", path, "error", err)
		report.Failed++
		report.Results = append(report.Results, FileResult{DocID: docID, Path: path, Error: err.Error()})
		return
	}

	meta := store.Metadata{
		"filename": filepath.Base(path),
		"path":     path,
		"size":     len(data),
	}
	if err := l.engine.AddDocument(docID, string(data), meta); err != nil {
		l.logger.Error("failed to index file", "doc_id", docID, "error", err)
		report.Failed++
		report.Results = append(report.Results, FileResult{DocID: docID, Path: path, Error: err.Error()})
		return
	}

	l.logger.Debug("file indexed", "doc_id", docID, "size", len(data))
	report.Indexed++
	report.Results = append(report.Results, FileResult{DocID: docID, Path: path})
}
