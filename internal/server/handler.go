// Package server exposes the search engine over HTTP: query execution,
// document insertion, directory ingestion, statistics, analytics, and index
// snapshot management.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/docsearch-labs/docsearch/internal/analytics"
	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/ingest"
	"github.com/docsearch-labs/docsearch/internal/searcher"
	"github.com/docsearch-labs/docsearch/internal/searcher/cache"
	"github.com/docsearch-labs/docsearch/pkg/config"
	apperrors "github.com/docsearch-labs/docsearch/pkg/errors"
	"github.com/docsearch-labs/docsearch/pkg/metrics"
)

// Handler implements the HTTP API. Cache, collector, and metrics are
// optional; a nil field disables that concern.
type Handler struct {
	engine    *engine.Engine
	loader    *ingest.Loader
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	search    config.SearchConfig
	indexFile string
	window    int
	logger    *slog.Logger
}

// Options carries the optional collaborators for a Handler.
type Options struct {
	Cache     *cache.QueryCache
	Collector *analytics.Collector
	Metrics   *metrics.Metrics
}

// New creates a Handler over the engine and loader.
func New(e *engine.Engine, loader *ingest.Loader, cfg *config.Config, opts Options) *Handler {
	return &Handler{
		engine:    e,
		loader:    loader,
		cache:     opts.Cache,
		collector: opts.Collector,
		metrics:   opts.Metrics,
		search:    cfg.Search,
		indexFile: cfg.Engine.IndexFile,
		window:    cfg.Engine.SnippetWindow,
		logger:    slog.Default().With("component", "http"),
	}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.handleSearch)
	mux.HandleFunc("POST /api/v1/documents", h.handleAddDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.handleGetDocument)
	mux.HandleFunc("POST /api/v1/ingest", h.handleIngest)
	mux.HandleFunc("GET /api/v1/stats", h.handleStats)
	mux.HandleFunc("GET /api/v1/analytics", h.handleAnalytics)
	mux.HandleFunc("POST /api/v1/index/save", h.handleSave)
	mux.HandleFunc("POST /api/v1/index/load", h.handleLoad)
}

type searchHit struct {
	DocID    string         `json:"doc_id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
	Snippet  string         `json:"snippet,omitempty"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Mode    string      `json:"mode"`
	Total   int         `json:"total"`
	TookMs  float64     `json:"took_ms"`
	Cached  bool        `json:"cached"`
	Results []searchHit `json:"results"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, fmt.Errorf("%w: missing query parameter q", apperrors.ErrInvalidInput))
		return
	}
	mode := searcher.ParseMode(r.URL.Query().Get("mode"))
	limit := h.parseLimit(r.URL.Query().Get("limit"))
	withSnippets := r.URL.Query().Get("snippets") != "false"

	start := time.Now()
	results, cached, err := h.runSearch(r, query, mode, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	elapsed := time.Since(start)

	h.recordSearch(query, mode, len(results), elapsed, cached)

	hits := make([]searchHit, 0, len(results))
	for _, res := range results {
		hit := searchHit{DocID: res.DocID, Score: res.Score, Metadata: res.Metadata}
		if withSnippets {
			hit.Snippet = h.engine.Snippet(res.DocID, query, h.window)
		}
		hits = append(hits, hit)
	}

	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Mode:    mode.String(),
		Total:   len(hits),
		TookMs:  float64(elapsed.Microseconds()) / 1000.0,
		Cached:  cached,
		Results: hits,
	})
}

// runSearch goes through the query cache when one is configured. Snippets
// are computed after the cache lookup so cached entries stay small.
func (h *Handler) runSearch(r *http.Request, query string, mode searcher.Mode, limit int) ([]searcher.Result, bool, error) {
	if h.cache == nil {
		return h.engine.Search(query, mode, limit), false, nil
	}
	return h.cache.GetOrCompute(r.Context(), query, mode, limit, func() ([]searcher.Result, error) {
		return h.engine.Search(query, mode, limit), nil
	})
}

func (h *Handler) recordSearch(query string, mode searcher.Mode, resultCount int, elapsed time.Duration, cached bool) {
	if h.metrics != nil {
		resultType := "hit"
		if resultCount == 0 {
			resultType = "zero_result"
		}
		cacheStatus := "miss"
		if cached {
			cacheStatus = "hit"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(mode.String(), resultType).Inc()
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(resultCount))
		if cached {
			h.metrics.CacheHitsTotal.Inc()
		} else if h.cache != nil {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	if h.collector != nil {
		h.collector.TrackSearch(query, mode.String(), resultCount, elapsed, cached)
	}
}

type addDocumentRequest struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if err := h.engine.AddDocument(req.ID, req.Content, req.Metadata); err != nil {
		h.writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.Inc()
	}
	if h.collector != nil {
		h.collector.TrackIndex(req.ID, len(req.Content))
	}
	h.invalidateCache(r)
	h.writeJSON(w, http.StatusCreated, map[string]string{"doc_id": req.ID, "status": "indexed"})
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	content, meta, ok := h.engine.Document(id)
	if !ok {
		h.writeError(w, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, id))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":   id,
		"content":  content,
		"metadata": meta,
	})
}

type ingestRequest struct {
	Path string `json:"path"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		h.writeError(w, fmt.Errorf("%w: request body must provide a path", apperrors.ErrInvalidInput))
		return
	}
	report, err := h.loader.LoadDirectory(req.Path)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if h.metrics != nil {
		h.metrics.IngestFilesTotal.WithLabelValues("indexed").Add(float64(report.Indexed))
		h.metrics.IngestFilesTotal.WithLabelValues("failed").Add(float64(report.Failed))
		h.metrics.DocsIndexedTotal.Add(float64(report.Indexed))
	}
	h.invalidateCache(r)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Stats())
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		h.writeError(w, fmt.Errorf("%w: analytics disabled", apperrors.ErrInvalidInput))
		return
	}
	h.writeJSON(w, http.StatusOK, h.collector.Stats())
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Save(h.indexFile); err != nil {
		h.recordSnapshot("save", "error")
		h.writeError(w, err)
		return
	}
	h.recordSnapshot("save", "ok")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "path": h.indexFile})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Load(h.indexFile); err != nil {
		h.recordSnapshot("load", "error")
		h.writeError(w, err)
		return
	}
	h.recordSnapshot("load", "ok")
	h.invalidateCache(r)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "path": h.indexFile})
}

func (h *Handler) recordSnapshot(op, status string) {
	if h.metrics != nil {
		h.metrics.SnapshotOpsTotal.WithLabelValues(op, status).Inc()
	}
}

func (h *Handler) invalidateCache(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
	}
}

// parseLimit applies the default on a missing or malformed limit and clamps
// to the configured maximum. Explicit non-positive limits pass through so
// they yield empty result sets.
func (h *Handler) parseLimit(raw string) int {
	if raw == "" {
		return h.search.DefaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return h.search.DefaultLimit
	}
	if limit > h.search.MaxResults {
		return h.search.MaxResults
	}
	return limit
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("writing response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	var appErr *apperrors.AppError
	message := err.Error()
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	h.logger.Error("request failed", "status", status, "error", err)
	h.writeJSON(w, status, map[string]any{
		"error":  message,
		"status": status,
	})
}
