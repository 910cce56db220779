package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/docsearch-labs/docsearch/pkg/postgres"
	"github.com/docsearch-labs/docsearch/pkg/resilience"
)

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS search_analytics_snapshots (
	id                  BIGSERIAL PRIMARY KEY,
	window_start        TIMESTAMPTZ NOT NULL,
	window_end          TIMESTAMPTZ NOT NULL,
	total_queries       BIGINT NOT NULL,
	zero_result_queries BIGINT NOT NULL,
	cache_hits          BIGINT NOT NULL,
	documents_indexed   BIGINT NOT NULL,
	latency_p50_ms      DOUBLE PRECISION NOT NULL,
	latency_p95_ms      DOUBLE PRECISION NOT NULL,
	latency_p99_ms      DOUBLE PRECISION NOT NULL,
	queries_by_mode     JSONB NOT NULL,
	top_queries         JSONB NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertSnapshot = `
INSERT INTO search_analytics_snapshots (
	window_start, window_end, total_queries, zero_result_queries,
	cache_hits, documents_indexed,
	latency_p50_ms, latency_p95_ms, latency_p99_ms,
	queries_by_mode, top_queries
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// SnapshotStore persists aggregated analytics windows to PostgreSQL on a
// fixed interval.
type SnapshotStore struct {
	client *postgres.Client
	logger *slog.Logger
}

// NewSnapshotStore creates the snapshot table if needed and returns a store.
func NewSnapshotStore(ctx context.Context, client *postgres.Client) (*SnapshotStore, error) {
	if _, err := client.DB.ExecContext(ctx, createSnapshotTable); err != nil {
		return nil, fmt.Errorf("creating analytics snapshot table: %w", err)
	}
	return &SnapshotStore{
		client: client,
		logger: slog.Default().With("component", "analytics-store"),
	}, nil
}

// Write persists a single snapshot, retrying transient failures.
func (s *SnapshotStore) Write(ctx context.Context, stats AggregatedStats) error {
	byMode, err := json.Marshal(stats.QueriesByMode)
	if err != nil {
		return fmt.Errorf("marshaling mode counts: %w", err)
	}
	topQueries, err := json.Marshal(stats.TopQueries)
	if err != nil {
		return fmt.Errorf("marshaling top queries: %w", err)
	}

	return resilience.Retry(ctx, "analytics-snapshot", resilience.RetryConfig{}, func() error {
		return s.client.InTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, insertSnapshot,
				stats.WindowStart, stats.GeneratedAt,
				stats.TotalQueries, stats.ZeroResultQueries,
				stats.CacheHits, stats.DocumentsIndexed,
				stats.LatencyP50Ms, stats.LatencyP95Ms, stats.LatencyP99Ms,
				byMode, topQueries,
			)
			return err
		})
	})
}

// StartSnapshotLoop writes a snapshot every interval until ctx is cancelled,
// resetting the collector's aggregation window after each successful write.
// Windows with no queries are skipped. A final snapshot is attempted on
// shutdown.
func (s *SnapshotStore) StartSnapshotLoop(ctx context.Context, collector *Collector, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.snapshot(ctx, collector)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				s.snapshot(flushCtx, collector)
				cancel()
				return
			}
		}
	}()
}

func (s *SnapshotStore) snapshot(ctx context.Context, collector *Collector) {
	stats := collector.Stats()
	if stats.TotalQueries == 0 && stats.DocumentsIndexed == 0 {
		return
	}
	if err := s.Write(ctx, stats); err != nil {
		s.logger.Error("snapshot write failed", "error", err)
		return
	}
	collector.Aggregator().Reset()
	s.logger.Info("analytics snapshot persisted",
		"total_queries", stats.TotalQueries,
		"zero_result_queries", stats.ZeroResultQueries,
		"window_start", stats.WindowStart,
	)
}
