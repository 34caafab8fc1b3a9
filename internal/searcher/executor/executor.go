package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
)

type SearchResult struct {
	Query     string   `json:"query"`
	First     string   `json:"first"`
	Second    string   `json:"second,omitempty"`
	TotalHits int      `json:"total_hits"`
	Documents []string `json:"documents"`
}

// Found reports whether any document matched.
func (r *SearchResult) Found() bool {
	return r != nil && len(r.Documents) > 0
}

type Executor struct {
	source  merger.Source
	limit   int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Executor answering queries against src. A non-positive limit
// means merger.DefaultLimit; m may be nil.
func New(src merger.Source, limit int, m *metrics.Metrics) *Executor {
	if limit <= 0 {
		limit = merger.DefaultLimit
	}
	return &Executor{
		source:  src,
		limit:   limit,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

func (e *Executor) Limit() int {
	return e.limit
}

// Execute runs plan against the source. An empty plan yields an empty result.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		e.observe("error", 0)
		return nil, err
	}
	result := &SearchResult{
		Query:     plan.RawQuery,
		First:     plan.First,
		Second:    plan.Second,
		Documents: []string{},
	}
	if plan.Empty() {
		e.observe("empty", 0)
		return result, nil
	}
	if len(plan.Ignored) > 0 {
		logger.FromContext(ctx).Warn("extra query words ignored",
			"query", plan.RawQuery,
			"ignored", plan.Ignored,
		)
	}

	found := merger.Search(e.source, plan.First, plan.Second, e.limit)
	result.TotalHits = found.TotalHits
	if found.Found() {
		result.Documents = found.Documents
		e.observe("match", len(found.Documents))
	} else {
		e.observe("zero_result", 0)
	}

	e.logger.Debug("query executed",
		"first", plan.First,
		"second", plan.Second,
		"total_hits", result.TotalHits,
		"returned", len(result.Documents),
	)
	return result, nil
}

func (e *Executor) observe(resultType string, returned int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(returned))
	}
}
