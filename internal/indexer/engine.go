package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/loader"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/tracing"
)

// Engine builds an Index from a list of documents and answers two-keyword
// queries against it.
type Engine struct {
	cfg     config.IndexerConfig
	index   *index.Index
	metrics *metrics.Metrics
	tracker analytics.Tracker
	logger  *slog.Logger

	mu        sync.RWMutex
	baseDir   string
	noise     []string
	filter    *tokenizer.Filter
	documents []string
	failed    int
	builds    int
}

type EngineOption func(*Engine)

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithTracker(t analytics.Tracker) EngineOption {
	return func(e *Engine) { e.tracker = t }
}

func NewEngine(cfg config.IndexerConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		baseDir: cfg.BaseDir,
		filter:  tokenizer.NewFilter(nil),
		logger: slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	var indexOpts []index.Option
	if e.metrics != nil {
		probes := e.metrics.InsertionProbes
		indexOpts = append(indexOpts, index.WithInsertionObserver(func(_ string, trace []int) {
			probes.Observe(float64(len(trace)))
		}))
	}
	e.index = index.New(indexOpts...)
	return e
}

// SetNoiseWords replaces the noise words used by later builds.
func (e *Engine) SetNoiseWords(words []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noise = append([]string(nil), words...)
	e.filter = tokenizer.NewFilter(words)
}

// MakeIndex reads the noise words and the document list, then builds the
// index. Either file missing yields ErrInputUnavailable. Without a configured
// BaseDir, relative document paths resolve against the docs file's directory.
func (e *Engine) MakeIndex(ctx context.Context, docsFile, noiseFile string) error {
	noise, err := readFile(noiseFile, tokenizer.ReadNoiseWords)
	if err != nil {
		return fmt.Errorf("noise words: %w", err)
	}
	ids, err := readFile(docsFile, loader.ReadDocumentList)
	if err != nil {
		return fmt.Errorf("document list: %w", err)
	}
	e.SetNoiseWords(noise)
	if e.cfg.BaseDir == "" {
		e.mu.Lock()
		e.baseDir = filepath.Dir(docsFile)
		e.mu.Unlock()
	}
	e.logger.Info("inputs read",
		"docs_file", docsFile,
		"noise_file", noiseFile,
		"documents", len(ids),
		"noise_words", len(noise),
	)
	return e.Build(ctx, ids)
}

// Build loads every document and merges them into the index in list order.
// An unavailable document aborts the build before anything is merged unless
// SkipUnavailable is set, in which case it is logged and skipped.
func (e *Engine) Build(ctx context.Context, documentIDs []string) error {
	start := time.Now()
	e.mu.Lock()
	e.builds++
	traceID := fmt.Sprintf("build-%d", e.builds)
	ld := loader.New(e.filter,
		loader.WithBaseDir(e.baseDir),
		loader.WithWorkers(e.cfg.LoadWorkers),
	)
	e.mu.Unlock()

	ctx, span := tracing.Start(ctx, "index_build", traceID)
	defer func() {
		span.End()
		span.Log(e.logger)
	}()
	span.SetAttr("documents", len(documentIDs))

	loadCtx, loadSpan := tracing.StartChild(ctx, "load")
	loaded, failed, err := e.load(loadCtx, ld, documentIDs)
	loadSpan.SetAttr("skipped", failed)
	loadSpan.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		return err
	}

	_, mergeSpan := tracing.StartChild(ctx, "merge")
	fingerprintBefore := e.Fingerprint()
	for _, doc := range loaded {
		docStart := time.Now()
		e.index.Merge(doc.Keywords)
		if e.metrics != nil {
			e.metrics.DocsIndexedTotal.Inc()
		}
		e.track(analytics.IndexEvent{
			Type:         analytics.EventIndexDocument,
			DocumentID:   doc.DocumentID,
			KeywordCount: len(doc.Keywords),
			LatencyMs:    time.Since(docStart).Milliseconds(),
			Fingerprint:  fingerprintBefore,
			Timestamp:    time.Now().UTC(),
		})
		e.logger.Debug("document indexed",
			"doc_id", doc.DocumentID,
			"keyword_count", len(doc.Keywords),
		)
	}

	mergeSpan.SetAttr("documents", len(loaded))
	mergeSpan.End()

	e.mu.Lock()
	for _, doc := range loaded {
		e.documents = append(e.documents, doc.DocumentID)
	}
	e.failed += failed
	e.mu.Unlock()

	stats := e.index.Stats()
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.KeywordsIndexed.Set(float64(stats.Keywords))
		e.metrics.OccurrencesIndexed.Set(float64(stats.Occurrences))
		e.metrics.BuildDuration.Observe(elapsed.Seconds())
	}
	fingerprint := e.Fingerprint()
	e.track(analytics.IndexEvent{
		Type:         analytics.EventIndexComplete,
		KeywordCount: stats.Keywords,
		Documents:    len(loaded),
		Failed:       failed,
		LatencyMs:    elapsed.Milliseconds(),
		Fingerprint:  fingerprint,
		Timestamp:    time.Now().UTC(),
	})
	e.logger.Info("index built",
		"documents", len(loaded),
		"skipped", failed,
		"keywords", stats.Keywords,
		"occurrences", stats.Occurrences,
		"fingerprint", fingerprint,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}

func (e *Engine) load(ctx context.Context, ld *loader.Loader, ids []string) ([]loader.Result, int, error) {
	if !e.cfg.SkipUnavailable {
		maps, err := ld.LoadAll(ctx, ids)
		if err != nil {
			e.countFailure()
			e.logger.Error("build aborted", "error", err)
			return nil, 0, err
		}
		results := make([]loader.Result, len(ids))
		for i, id := range ids {
			results[i] = loader.Result{DocumentID: id, Keywords: maps[i]}
		}
		return results, 0, nil
	}

	results, err := ld.LoadEach(ctx, ids)
	if err != nil {
		e.logger.Error("build aborted", "error", err)
		return nil, 0, err
	}
	var loaded []loader.Result
	failed := 0
	for _, res := range results {
		if res.Err == nil {
			loaded = append(loaded, res)
			continue
		}
		failed++
		e.countFailure()
		e.logger.Warn("skipping unavailable document", "doc_id", res.DocumentID, "error", res.Err)
	}
	return loaded, failed, nil
}

// Search answers "kw1 or kw2" with at most the configured number of documents.
func (e *Engine) Search(kw1, kw2 string) merger.Result {
	return merger.Search(e.index, kw1, kw2, e.cfg.ResultLimit)
}

func (e *Engine) Index() *index.Index {
	return e.index
}

func (e *Engine) Stats() index.Stats {
	return e.index.Stats()
}

// Fingerprint identifies the built index by its documents, in merge order,
// and its sorted noise words.
func (e *Engine) Fingerprint() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	noise := append([]string(nil), e.noise...)
	sort.Strings(noise)

	h := sha256.New()
	io.WriteString(h, "docs\n")
	for _, d := range e.documents {
		io.WriteString(h, d+"\n")
	}
	io.WriteString(h, "noise\n")
	for _, w := range noise {
		io.WriteString(h, strings.ToLower(w)+"\n")
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Dump writes one line per keyword: "keyword: (doc,freq) (doc,freq) ...".
func (e *Engine) Dump(w io.Writer) error {
	for _, entry := range e.index.Snapshot() {
		parts := make([]string, len(entry.Occurrences))
		for i, o := range entry.Occurrences {
			parts[i] = o.String()
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", entry.Keyword, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) countFailure() {
	if e.metrics != nil {
		e.metrics.DocLoadFailuresTotal.Inc()
	}
}

func (e *Engine) track(event analytics.IndexEvent) {
	if e.tracker != nil {
		e.tracker.Track(event)
	}
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", apperrors.ErrInputUnavailable, err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%w: reading %s: %v", apperrors.ErrInputUnavailable, path, err)
	}
	return v, nil
}
