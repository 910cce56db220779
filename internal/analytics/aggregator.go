package analytics

import (
	"sort"
	"sync"
	"time"
)

const (
	maxLatencySamples = 10000
	topQueryLimit     = 10
)

// QueryCount is a query string with its observed frequency.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// AggregatedStats is a point-in-time summary of everything the aggregator
// has seen.
type AggregatedStats struct {
	TotalQueries      int64            `json:"total_queries"`
	ZeroResultQueries int64            `json:"zero_result_queries"`
	CacheHits         int64            `json:"cache_hits"`
	DocumentsIndexed  int64            `json:"documents_indexed"`
	QueriesByMode     map[string]int64 `json:"queries_by_mode"`
	TopQueries        []QueryCount     `json:"top_queries"`
	LatencyP50Ms      float64          `json:"latency_p50_ms"`
	LatencyP95Ms      float64          `json:"latency_p95_ms"`
	LatencyP99Ms      float64          `json:"latency_p99_ms"`
	WindowStart       time.Time        `json:"window_start"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// Aggregator accumulates events into counters, per-query tallies, and a
// bounded latency sample buffer for percentile estimation.
type Aggregator struct {
	mu                sync.Mutex
	totalQueries      int64
	zeroResultQueries int64
	cacheHits         int64
	documentsIndexed  int64
	queriesByMode     map[string]int64
	queryCounts       map[string]int64
	latencies         []float64
	windowStart       time.Time
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		queriesByMode: make(map[string]int64),
		queryCounts:   make(map[string]int64),
		latencies:     make([]float64, 0, 1024),
		windowStart:   time.Now().UTC(),
	}
}

// Record folds a single event into the running aggregates.
func (a *Aggregator) Record(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ev.Type {
	case EventSearch:
		if ev.Search == nil {
			return
		}
		a.totalQueries++
		a.queriesByMode[ev.Search.Mode]++
		a.queryCounts[ev.Search.Query]++
		if ev.Search.ResultCount == 0 {
			a.zeroResultQueries++
		}
		if ev.Search.CacheHit {
			a.cacheHits++
		}
		if len(a.latencies) < maxLatencySamples {
			a.latencies = append(a.latencies, float64(ev.Search.Latency.Microseconds())/1000.0)
		}
	case EventIndex:
		if ev.Index == nil {
			return
		}
		a.documentsIndexed++
	}
}

// Stats returns a snapshot of the current aggregates.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := AggregatedStats{
		TotalQueries:      a.totalQueries,
		ZeroResultQueries: a.zeroResultQueries,
		CacheHits:         a.cacheHits,
		DocumentsIndexed:  a.documentsIndexed,
		QueriesByMode:     make(map[string]int64, len(a.queriesByMode)),
		WindowStart:       a.windowStart,
		GeneratedAt:       time.Now().UTC(),
	}
	for mode, count := range a.queriesByMode {
		stats.QueriesByMode[mode] = count
	}
	stats.TopQueries = a.topQueries(topQueryLimit)

	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)
		stats.LatencyP50Ms = percentile(sorted, 0.50)
		stats.LatencyP95Ms = percentile(sorted, 0.95)
		stats.LatencyP99Ms = percentile(sorted, 0.99)
	}
	return stats
}

// Reset clears the aggregation window. Called after a successful snapshot.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalQueries = 0
	a.zeroResultQueries = 0
	a.cacheHits = 0
	a.documentsIndexed = 0
	a.queriesByMode = make(map[string]int64)
	a.queryCounts = make(map[string]int64)
	a.latencies = a.latencies[:0]
	a.windowStart = time.Now().UTC()
}

// topQueries must be called with the mutex held.
func (a *Aggregator) topQueries(limit int) []QueryCount {
	counts := make([]QueryCount, 0, len(a.queryCounts))
	for query, count := range a.queryCounts {
		counts = append(counts, QueryCount{Query: query, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Query < counts[j].Query
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// percentile interpolates linearly between the two nearest ranks of an
// already-sorted sample.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
