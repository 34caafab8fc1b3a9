package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/redis"
)

type options struct {
	configPath string
	docsFile   string
	noiseFile  string
	query      string
	dump       bool
	flushCache bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.docsFile, "docs", "", "file listing the documents to index")
	flag.StringVar(&opts.noiseFile, "noise", "", "file of noise words to skip")
	flag.StringVar(&opts.query, "q", "", `one query such as "cat or dog"; read from stdin when empty`)
	flag.BoolVar(&opts.dump, "dump", false, "print the index after building it")
	flag.BoolVar(&opts.flushCache, "flush-cache", false, "drop cached results for this index before answering")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts, os.Stdin, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lse: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	if opts.docsFile == "" || opts.noiseFile == "" {
		return apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput, "-docs and -noise are required")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput, "loading config: %v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	m := metrics.New()
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, m, checker.Handlers())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000, analytics.WithMetrics(m))
		collector.Start(ctx)
		// Runs before producer.Close so buffered events are flushed.
		defer collector.Close()
	}

	engine := indexer.NewEngine(cfg.Indexer, indexer.WithMetrics(m), indexer.WithTracker(collector))
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats := engine.Stats()
		if stats.Documents == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no documents indexed"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d keywords in %d documents", stats.Keywords, stats.Documents),
		}
	})
	if err := engine.MakeIndex(ctx, opts.docsFile, opts.noiseFile); err != nil {
		return err
	}
	if opts.dump {
		if err := engine.Dump(stdout); err != nil {
			return fmt.Errorf("dumping index: %w", err)
		}
	}

	queryCache, closeCache := newQueryCache(ctx, cfg, engine.Fingerprint(), m, checker)
	defer closeCache()
	if queryCache != nil && opts.flushCache {
		if _, err := queryCache.Invalidate(ctx); err != nil {
			slog.Warn("cache flush failed", "error", err)
		}
	}
	exec := executor.New(engine.Index(), cfg.Indexer.ResultLimit, m)
	h := handler.New(exec, queryCache, collector, m, engine.Fingerprint())

	if opts.query != "" {
		result, err := h.Search(ctx, opts.query)
		if err != nil {
			return err
		}
		return handler.Write(stdout, result)
	}
	err = h.Serve(ctx, stdin, stdout)
	if hits, misses, ok := h.CacheStats(); ok {
		slog.Info("query cache stats", "hits", hits, "misses", misses)
	}
	return err
}

// newQueryCache connects to Redis when enabled. A connection failure only
// disables caching.
func newQueryCache(ctx context.Context, cfg *config.Config, fingerprint string, m *metrics.Metrics, checker *health.Checker) (*cache.QueryCache, func()) {
	noop := func() {}
	if !cfg.Redis.Enabled {
		return nil, noop
	}
	client, err := pkgredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", fmt.Errorf("%w: %v", apperrors.ErrCacheUnavailable, err))
		return nil, noop
	}
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if err := client.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	slog.Info("search cache enabled",
		"addr", client.Addr(),
		"ttl", cfg.Redis.CacheTTL,
		"fingerprint", fingerprint,
	)
	return cache.New(client, fingerprint, cfg.Redis.CacheTTL, m), func() { client.Close() }
}
