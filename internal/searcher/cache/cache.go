package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "lse:"

// Store is the subset of *pkgredis.Client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// QueryCache caches search results per index fingerprint.
type QueryCache struct {
	store       Store
	fingerprint string
	ttl         time.Duration
	metrics     *metrics.Metrics
	group       singleflight.Group
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

// New returns a cache whose keys live under lse:<fingerprint>:. m may be nil.
func New(store Store, fingerprint string, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:       store,
		fingerprint: fingerprint,
		ttl:         ttl,
		metrics:     m,
		logger:      slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan) (*executor.SearchResult, bool) {
	result, ok := c.lookup(ctx, plan)
	if !ok {
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query_key", plan.Key())
	return result, true
}

func (c *QueryCache) lookup(ctx context.Context, plan *parser.QueryPlan) (*executor.SearchResult, bool) {
	key := c.Key(plan)
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	result.Query = plan.RawQuery
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, result *executor.SearchResult) {
	key := c.Key(plan)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for plan or computes and stores it.
// Concurrent misses for the same key share one computation. The bool reports
// a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(c.Key(plan), func() (any, error) {
		if result, ok := c.lookup(ctx, plan); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, plan, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.SearchResult)
	shared.Query = plan.RawQuery
	return &shared, false, nil
}

// Invalidate deletes every key cached for the current fingerprint.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.DeletePrefix(ctx, keyPrefix+c.fingerprint+":")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "fingerprint", c.fingerprint, "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key is lse:<fingerprint>:<hex sha256 of plan.Key()>. Keyword order is
// significant because the first keyword takes precedence.
func (c *QueryCache) Key(plan *parser.QueryPlan) string {
	hash := sha256.Sum256([]byte(plan.Key()))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.fingerprint, hash)
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
