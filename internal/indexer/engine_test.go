package indexer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type eventLog struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (l *eventLog) Track(e analytics.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(dir string) config.IndexerConfig {
	return config.IndexerConfig{BaseDir: dir, LoadWorkers: 2, ResultLimit: 5}
}

func TestMakeIndexEndToEnd(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"docs.txt":  "D1\nD2\n",
		"noise.txt": "the\n",
		"D1":        "the Cat sat.",
		"D2":        "Cat dog cat!",
	})
	m := metrics.New()
	events := &eventLog{}
	e := NewEngine(testConfig(dir), WithMetrics(m), WithTracker(events))

	err := e.MakeIndex(context.Background(), filepath.Join(dir, "docs.txt"), filepath.Join(dir, "noise.txt"))
	if err != nil {
		t.Fatalf("MakeIndex: %v", err)
	}

	cat, _ := e.Index().Occurrences("cat")
	if diff := cmp.Diff(index.OccurrenceList{{Document: "D2", Frequency: 2}, {Document: "D1", Frequency: 1}}, cat); diff != "" {
		t.Errorf("cat mismatch (-want +got):\n%s", diff)
	}
	dog, _ := e.Index().Occurrences("dog")
	if diff := cmp.Diff(index.OccurrenceList{{Document: "D2", Frequency: 1}}, dog); diff != "" {
		t.Errorf("dog mismatch (-want +got):\n%s", diff)
	}
	if _, ok := e.Index().Occurrences("the"); ok {
		t.Error("noise word indexed")
	}

	got := e.Search("cat", "dog")
	if diff := cmp.Diff([]string{"D2", "D1"}, got.Documents); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(index.Stats{Keywords: 3, Documents: 2, Occurrences: 4}, e.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	if v := testutil.ToFloat64(m.DocsIndexedTotal); v != 2 {
		t.Errorf("docs indexed = %v, want 2", v)
	}
	if v := testutil.ToFloat64(m.KeywordsIndexed); v != 3 {
		t.Errorf("keywords gauge = %v, want 3", v)
	}

	var types []analytics.EventType
	for _, ev := range events.events {
		types = append(types, ev.(analytics.IndexEvent).Type)
	}
	want := []analytics.EventType{analytics.EventIndexDocument, analytics.EventIndexDocument, analytics.EventIndexComplete}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeIndexResolvesAgainstDocsFileDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"docs.txt":  "D1\nD2\n",
		"noise.txt": "the\n",
		"D1":        "the Cat sat.",
		"D2":        "Cat dog cat!",
	})
	e := NewEngine(config.IndexerConfig{LoadWorkers: 2, ResultLimit: 5})

	err := e.MakeIndex(context.Background(), filepath.Join(dir, "docs.txt"), filepath.Join(dir, "noise.txt"))
	if err != nil {
		t.Fatalf("MakeIndex with empty BaseDir: %v", err)
	}
	if diff := cmp.Diff([]string{"D2", "D1"}, e.Search("cat", "dog").Documents); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeIndexConfiguredBaseDirWins(t *testing.T) {
	listDir := writeFiles(t, map[string]string{"docs.txt": "D1\n", "noise.txt": "", "D1": "wrong"})
	docDir := writeFiles(t, map[string]string{"D1": "right"})
	e := NewEngine(testConfig(docDir))

	if err := e.MakeIndex(context.Background(), filepath.Join(listDir, "docs.txt"), filepath.Join(listDir, "noise.txt")); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Index().Occurrences("right"); !ok {
		t.Error("document was not read from the configured BaseDir")
	}
	if _, ok := e.Index().Occurrences("wrong"); ok {
		t.Error("document was read from the docs file directory")
	}
}

func TestBuildSkipUnavailableReturnsCancellation(t *testing.T) {
	dir := writeFiles(t, map[string]string{"D1": "cat", "D2": "dog"})
	cfg := testConfig(dir)
	cfg.SkipUnavailable = true
	e := NewEngine(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Build(ctx, []string{"D1", "missing", "D2"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if e.Index().Len() != 0 {
		t.Errorf("index has %d keywords after cancelled build", e.Index().Len())
	}
}

func TestBuildAbortsOnUnavailableDocument(t *testing.T) {
	dir := writeFiles(t, map[string]string{"D1": "cat"})
	m := metrics.New()
	e := NewEngine(testConfig(dir), WithMetrics(m))

	err := e.Build(context.Background(), []string{"D1", "missing"})
	if !errors.Is(err, apperrors.ErrDocumentUnavailable) {
		t.Fatalf("err = %v, want ErrDocumentUnavailable", err)
	}
	if e.Index().Len() != 0 {
		t.Errorf("index has %d keywords after failed build", e.Index().Len())
	}
	if v := testutil.ToFloat64(m.DocLoadFailuresTotal); v != 1 {
		t.Errorf("load failures = %v, want 1", v)
	}
}

func TestBuildSkipUnavailable(t *testing.T) {
	dir := writeFiles(t, map[string]string{"D1": "cat", "D3": "cat cat"})
	cfg := testConfig(dir)
	cfg.SkipUnavailable = true
	e := NewEngine(cfg)

	if err := e.Build(context.Background(), []string{"D1", "missing", "D3"}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	cat, _ := e.Index().Occurrences("cat")
	if diff := cmp.Diff([]string{"D3", "D1"}, cat.Documents()); diff != "" {
		t.Errorf("cat mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeIndexMissingInputs(t *testing.T) {
	dir := writeFiles(t, map[string]string{"docs.txt": "D1", "noise.txt": ""})
	e := NewEngine(testConfig(dir))
	ctx := context.Background()

	err := e.MakeIndex(ctx, filepath.Join(dir, "docs.txt"), filepath.Join(dir, "nope.txt"))
	if !errors.Is(err, apperrors.ErrInputUnavailable) {
		t.Errorf("missing noise file: err = %v", err)
	}
	err = e.MakeIndex(ctx, filepath.Join(dir, "nope.txt"), filepath.Join(dir, "noise.txt"))
	if !errors.Is(err, apperrors.ErrInputUnavailable) {
		t.Errorf("missing docs file: err = %v", err)
	}
	if apperrors.ExitCode(err) != apperrors.ExitInputUnavailable {
		t.Errorf("exit code = %d", apperrors.ExitCode(err))
	}
}

func TestFingerprint(t *testing.T) {
	dir := writeFiles(t, map[string]string{"D1": "cat", "D2": "dog"})
	build := func(noise []string, ids ...string) string {
		e := NewEngine(testConfig(dir))
		e.SetNoiseWords(noise)
		if err := e.Build(context.Background(), ids); err != nil {
			t.Fatal(err)
		}
		return e.Fingerprint()
	}

	base := build([]string{"a", "the"}, "D1", "D2")
	if base != build([]string{"the", "a"}, "D1", "D2") {
		t.Error("noise word order changed the fingerprint")
	}
	if base == build([]string{"a", "the"}, "D2", "D1") {
		t.Error("document order did not change the fingerprint")
	}
	if base == build(nil, "D1", "D2") {
		t.Error("noise words did not change the fingerprint")
	}
}

func TestDump(t *testing.T) {
	dir := writeFiles(t, map[string]string{"D1": "the Cat sat.", "D2": "Cat dog cat!"})
	e := NewEngine(testConfig(dir))
	e.SetNoiseWords([]string{"the"})
	if err := e.Build(context.Background(), []string{"D1", "D2"}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := e.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"cat: (D2,2) (D1,1)",
		"dog: (D2,1)",
		"sat: (D1,1)",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Dump mismatch (-want +got):\n%s", diff)
	}
}
