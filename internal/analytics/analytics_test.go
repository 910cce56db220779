package analytics

import (
	"context"
	"testing"
	"time"
)

func TestAggregatorRecordAndStats(t *testing.T) {
	a := NewAggregator()

	a.Record(Event{Type: EventSearch, Search: &SearchEvent{
		Query: "python", Mode: "OR", ResultCount: 3, Latency: 2 * time.Millisecond,
	}})
	a.Record(Event{Type: EventSearch, Search: &SearchEvent{
		Query: "python", Mode: "OR", ResultCount: 0, Latency: 4 * time.Millisecond,
	}})
	a.Record(Event{Type: EventSearch, Search: &SearchEvent{
		Query: "java", Mode: "AND", ResultCount: 1, Latency: 6 * time.Millisecond, CacheHit: true,
	}})
	a.Record(Event{Type: EventIndex, Index: &IndexEvent{DocID: "doc1"}})

	stats := a.Stats()
	if stats.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", stats.TotalQueries)
	}
	if stats.ZeroResultQueries != 1 {
		t.Errorf("ZeroResultQueries = %d, want 1", stats.ZeroResultQueries)
	}
	if stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", stats.CacheHits)
	}
	if stats.DocumentsIndexed != 1 {
		t.Errorf("DocumentsIndexed = %d, want 1", stats.DocumentsIndexed)
	}
	if stats.QueriesByMode["OR"] != 2 || stats.QueriesByMode["AND"] != 1 {
		t.Errorf("QueriesByMode = %v", stats.QueriesByMode)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "python" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %v", stats.TopQueries)
	}
	if stats.LatencyP50Ms <= 0 || stats.LatencyP99Ms < stats.LatencyP50Ms {
		t.Errorf("latency percentiles = p50 %v p99 %v", stats.LatencyP50Ms, stats.LatencyP99Ms)
	}
}

func TestAggregatorIgnoresMalformedEvents(t *testing.T) {
	a := NewAggregator()
	a.Record(Event{Type: EventSearch})
	a.Record(Event{Type: EventIndex})
	stats := a.Stats()
	if stats.TotalQueries != 0 || stats.DocumentsIndexed != 0 {
		t.Errorf("malformed events were counted: %+v", stats)
	}
}

func TestAggregatorReset(t *testing.T) {
	a := NewAggregator()
	a.Record(Event{Type: EventSearch, Search: &SearchEvent{Query: "q", Mode: "OR", ResultCount: 1}})
	before := a.Stats().WindowStart

	a.Reset()
	stats := a.Stats()
	if stats.TotalQueries != 0 || len(stats.TopQueries) != 0 {
		t.Errorf("Reset left state behind: %+v", stats)
	}
	if stats.WindowStart.Before(before) {
		t.Error("Reset should start a new window")
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.99, 7},
		{"median of pair", []float64{1, 3}, 0.5, 2},
		{"p50 of five", []float64{1, 2, 3, 4, 5}, 0.5, 3},
		{"p100", []float64{1, 2, 3}, 1.0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(tt.sorted, tt.p); got != tt.want {
				t.Errorf("percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestCollectorDeliversEvents(t *testing.T) {
	c := NewCollector(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	c.TrackSearch("python", "OR", 2, time.Millisecond, false)
	c.TrackSearch("java", "AND", 0, time.Millisecond, false)
	c.TrackIndex("doc1", 42)
	c.Close()

	stats := c.Stats()
	if stats.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", stats.TotalQueries)
	}
	if stats.ZeroResultQueries != 1 {
		t.Errorf("ZeroResultQueries = %d, want 1", stats.ZeroResultQueries)
	}
	if stats.DocumentsIndexed != 1 {
		t.Errorf("DocumentsIndexed = %d, want 1", stats.DocumentsIndexed)
	}
}

func TestCollectorTrackAfterClose(t *testing.T) {
	c := NewCollector(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	c.Close()

	// Must neither panic nor block.
	c.TrackSearch("late", "OR", 0, 0, false)
	c.Close()
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(1)
	// No consumer running: the second event has nowhere to go and must be
	// dropped without blocking.
	c.TrackSearch("a", "OR", 1, 0, false)
	done := make(chan struct{})
	go func() {
		c.TrackSearch("b", "OR", 1, 0, false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Track blocked on a full buffer")
	}
}
