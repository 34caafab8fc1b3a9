package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
)

// Publisher delivers a batch of events; *kafka.Producer satisfies it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Tracker accepts events without blocking. A nil *Collector is a valid
// Tracker that discards everything.
type Tracker interface {
	Track(event Event)
}

// Collector buffers events in a channel and publishes them in batches from a
// single goroutine.
type Collector struct {
	publisher     Publisher
	eventCh       chan Event
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	done          chan struct{}
	closeOnce     sync.Once
}

type CollectorOption func(*Collector)

func WithBatchSize(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) CollectorOption {
	return func(c *Collector) { c.metrics = m }
}

func NewCollector(publisher Publisher, bufferSize int, opts ...CollectorOption) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	c := &Collector{
		publisher:     publisher,
		eventCh:       make(chan Event, bufferSize),
		batchSize:     100,
		flushInterval: time.Second,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the publishing goroutine. It stops after Close, or when ctx
// is cancelled, publishing whatever is still buffered.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		batch := make([]kafka.Event, 0, c.batchSize)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.publish(context.Background(), batch)
					return
				}
				batch = append(batch, kafka.Event{Key: event.Key(), Value: event})
				if len(batch) >= c.batchSize {
					c.publish(ctx, batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				c.publish(ctx, batch)
				batch = batch[:0]
			case <-ctx.Done():
				c.drainRemaining(batch)
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
	)
}

// Track queues event, dropping it when the buffer is full.
func (c *Collector) Track(event Event) {
	if c == nil {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		if c.metrics != nil {
			c.metrics.AnalyticsDroppedTotal.Inc()
		}
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the buffer to be published.
// Start must have been called, and Track must not be called after Close.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.eventCh) })
	<-c.done
}

func (c *Collector) drainRemaining(batch []kafka.Event) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.publish(context.Background(), batch)
				return
			}
			batch = append(batch, kafka.Event{Key: event.Key(), Value: event})
		default:
			c.publish(context.Background(), batch)
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		if c.metrics != nil {
			c.metrics.AnalyticsPublishErrors.Add(float64(len(batch)))
		}
		c.logger.Error("failed to publish analytics events", "count", len(batch), "error", err)
	}
}
