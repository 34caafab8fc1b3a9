// Package loader reads documents from disk and counts their keywords.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Loader turns a document identifier into its KeywordMap. Identifiers are
// file paths; relative ones are resolved against the base directory.
type Loader struct {
	filter  *tokenizer.Filter
	baseDir string
	workers int
	open    func(name string) (io.ReadCloser, error)
	logger  *slog.Logger
}

type Option func(*Loader)

func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithWorkers bounds how many documents LoadAll reads at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithOpener replaces os.Open, mainly for tests.
func WithOpener(open func(name string) (io.ReadCloser, error)) Option {
	return func(l *Loader) { l.open = open }
}

func New(filter *tokenizer.Filter, opts ...Option) *Loader {
	l := &Loader{
		filter:  filter,
		workers: 1,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
		logger: slog.Default().With("component", "document-loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path resolves a document identifier to the file that holds it.
func (l *Loader) Path(documentID string) string {
	if l.baseDir == "" || filepath.IsAbs(documentID) {
		return documentID
	}
	return filepath.Join(l.baseDir, documentID)
}

// Load scans one document. Each distinct keyword gets one Occurrence whose
// frequency is the number of times it appears. A document that cannot be
// opened or read yields an error wrapping ErrDocumentUnavailable.
func (l *Loader) Load(ctx context.Context, documentID string) (index.KeywordMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := l.Path(documentID)
	f, err := l.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrDocumentUnavailable, path, err)
	}
	defer f.Close()

	kws := make(index.KeywordMap)
	words := 0
	err = tokenizer.Words(f, func(word string) {
		words++
		if kw, ok := l.filter.Keyword(word); ok {
			kws.Add(kw, documentID)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrDocumentUnavailable, path, err)
	}
	l.logger.Debug("document loaded",
		"doc_id", documentID,
		"words", words,
		"keywords", len(kws),
	)
	return kws, nil
}

// LoadAll loads documents concurrently and returns their maps in the order of
// documentIDs. The first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, documentIDs []string) ([]index.KeywordMap, error) {
	maps := make([]index.KeywordMap, len(documentIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, id := range documentIDs {
		g.Go(func() error {
			kws, err := l.Load(ctx, id)
			if err != nil {
				return err
			}
			maps[i] = kws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return maps, nil
}

// Result is the outcome of loading one document in LoadEach.
type Result struct {
	DocumentID string
	Keywords   index.KeywordMap
	Err        error
}

// LoadEach loads every document concurrently without stopping at unavailable
// ones. Results are in the order of documentIDs; an unavailable document has
// Err set. Any other failure cancels the remaining loads and is returned.
func (l *Loader) LoadEach(ctx context.Context, documentIDs []string) ([]Result, error) {
	results := make([]Result, len(documentIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, id := range documentIDs {
		g.Go(func() error {
			kws, err := l.Load(ctx, id)
			results[i] = Result{DocumentID: id, Keywords: kws, Err: err}
			if err != nil && !errors.Is(err, apperrors.ErrDocumentUnavailable) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ReadDocumentList reads whitespace-separated document identifiers from r.
func ReadDocumentList(r io.Reader) ([]string, error) {
	var ids []string
	if err := tokenizer.Words(r, func(w string) { ids = append(ids, w) }); err != nil {
		return nil, fmt.Errorf("reading document list: %w", err)
	}
	return ids, nil
}
