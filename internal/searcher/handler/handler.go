// Package handler answers query lines: it parses them, consults the query
// cache, runs the executor and prints the ranked documents.
package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
)

const (
	NoMatches   = "no matches"
	QuitCommand = "quit"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan) (*executor.SearchResult, error)
}

type Handler struct {
	executor    SearchExecutor
	cache       *cache.QueryCache
	tracker     analytics.Tracker
	metrics     *metrics.Metrics
	fingerprint string
	seq         atomic.Int64
	logger      *slog.Logger
}

// New wires a Handler. queryCache, tracker and m may all be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, tracker analytics.Tracker, m *metrics.Metrics, fingerprint string) *Handler {
	return &Handler{
		executor:    exec,
		cache:       queryCache,
		tracker:     tracker,
		metrics:     m,
		fingerprint: fingerprint,
		logger:      logger.WithComponent("search-handler"),
	}
}

// Search answers one query line.
func (h *Handler) Search(ctx context.Context, query string) (*executor.SearchResult, error) {
	start := time.Now()
	queryID := fmt.Sprintf("q-%d", h.seq.Add(1))
	ctx = logger.WithQueryID(ctx, queryID)
	log := logger.FromContext(ctx)

	plan := parser.Parse(query)

	var result *executor.SearchResult
	var err error
	cacheHit := false
	cacheStatus := "disabled"
	if h.cache != nil && !plan.Empty() {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result, err = h.executor.Execute(ctx, plan)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		return nil, fmt.Errorf("executing query %q: %w", query, err)
	}

	latency := time.Since(start)
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Documents),
		"cache_status", cacheStatus,
		"latency_us", latency.Microseconds(),
	)

	if h.tracker != nil && !plan.Empty() {
		event := analytics.SearchEvent{
			Type:        analytics.EventSearch,
			Query:       query,
			Keywords:    keywords(plan),
			TotalHits:   result.TotalHits,
			Returned:    len(result.Documents),
			LatencyUs:   latency.Microseconds(),
			CacheHit:    cacheHit,
			Fingerprint: h.fingerprint,
			Timestamp:   time.Now().UTC(),
			QueryID:     queryID,
		}
		if !result.Found() {
			event.Type = analytics.EventZeroResult
		}
		h.tracker.Track(event)
		if cacheStatus != "disabled" {
			event.Type = analytics.EventCacheMiss
			if cacheHit {
				event.Type = analytics.EventCacheHit
			}
			h.tracker.Track(event)
		}
	}
	return result, nil
}

// Serve reads one query per line from r and writes the answers to w until EOF,
// the line "quit", or ctx is cancelled. Blank lines are skipped.
func (h *Handler) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	defer func() {
		h.logger.Debug("query session ended", "queries", h.seq.Load())
	}()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, QuitCommand) {
			return nil
		}
		result, err := h.Search(ctx, line)
		if err != nil {
			return err
		}
		if err := Write(w, result); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	return nil
}

// Write prints the documents of result one per line, or NoMatches.
func Write(w io.Writer, result *executor.SearchResult) error {
	if !result.Found() {
		_, err := fmt.Fprintln(w, NoMatches)
		return err
	}
	for _, doc := range result.Documents {
		if _, err := fmt.Fprintln(w, doc); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) CacheStats() (hits, misses int64, enabled bool) {
	if h.cache == nil {
		return 0, 0, false
	}
	hits, misses = h.cache.Stats()
	return hits, misses, true
}

func keywords(plan *parser.QueryPlan) []string {
	kws := []string{plan.First}
	if plan.Second != "" {
		kws = append(kws, plan.Second)
	}
	return kws
}
