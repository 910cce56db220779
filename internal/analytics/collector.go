package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Collector receives events on a buffered channel and feeds them to an
// Aggregator from a single consumer goroutine. Track never blocks the
// caller; events are dropped when the buffer is full.
type Collector struct {
	events     chan Event
	aggregator *Aggregator
	logger     *slog.Logger

	mu      sync.Mutex
	dropped int64
	closed  bool
	done    chan struct{}
}

// NewCollector creates a Collector with the given channel buffer size.
func NewCollector(bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		events:     make(chan Event, bufferSize),
		aggregator: NewAggregator(),
		logger:     slog.Default().With("component", "analytics"),
		done:       make(chan struct{}),
	}
}

// Start launches the consumer goroutine. It returns once the goroutine is
// running; the goroutine exits when Close is called or ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case ev, ok := <-c.events:
				if !ok {
					return
				}
				c.aggregator.Record(ev)
			case <-ctx.Done():
				c.drain()
				return
			}
		}
	}()
}

// TrackSearch records a search event without blocking.
func (c *Collector) TrackSearch(query, mode string, resultCount int, latency time.Duration, cacheHit bool) {
	c.track(Event{
		Type: EventSearch,
		Search: &SearchEvent{
			Query:       query,
			Mode:        mode,
			ResultCount: resultCount,
			Latency:     latency,
			CacheHit:    cacheHit,
			Timestamp:   time.Now().UTC(),
		},
	})
}

// TrackIndex records a document indexing event without blocking.
func (c *Collector) TrackIndex(docID string, tokenCount int) {
	c.track(Event{
		Type: EventIndex,
		Index: &IndexEvent{
			DocID:     docID,
			TokenCnt:  tokenCount,
			Timestamp: time.Now().UTC(),
		},
	})
}

// track holds the mutex across the send so Close cannot close the channel
// between the closed check and the send.
func (c *Collector) track(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.dropped++
		if c.dropped%1000 == 1 {
			c.logger.Warn("analytics buffer full, dropping events", "dropped_total", c.dropped)
		}
	}
}

// Stats returns the current aggregates.
func (c *Collector) Stats() AggregatedStats {
	return c.aggregator.Stats()
}

// Aggregator exposes the underlying aggregator, used by the snapshot store
// to reset the window after a successful write.
func (c *Collector) Aggregator() *Aggregator {
	return c.aggregator
}

// Close stops accepting events, drains the buffer, and waits for the
// consumer goroutine to exit.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.events)
	<-c.done
}

// drain consumes whatever remains in the buffer without blocking.
func (c *Collector) drain() {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			c.aggregator.Record(ev)
		default:
			return
		}
	}
}
