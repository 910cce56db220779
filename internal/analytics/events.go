// Package analytics collects per-query events over an in-process channel,
// aggregates them into rolling statistics, and optionally snapshots the
// aggregates to PostgreSQL.
package analytics

import "time"

// EventType distinguishes the kinds of events the collector accepts.
type EventType string

const (
	EventSearch EventType = "search"
	EventIndex  EventType = "index"
)

// SearchEvent records a single executed query.
type SearchEvent struct {
	Query       string        `json:"query"`
	Mode        string        `json:"mode"`
	ResultCount int           `json:"result_count"`
	Latency     time.Duration `json:"latency"`
	CacheHit    bool          `json:"cache_hit"`
	Timestamp   time.Time     `json:"timestamp"`
}

// IndexEvent records a document add or bulk ingestion.
type IndexEvent struct {
	DocID     string    `json:"doc_id"`
	TokenCnt  int       `json:"token_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is the union type carried on the collector channel.
type Event struct {
	Type   EventType
	Search *SearchEvent
	Index  *IndexEvent
}
