package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/google/go-cmp/cmp"
)

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func flatten(kws index.KeywordMap) map[string]index.Occurrence {
	out := make(map[string]index.Occurrence, len(kws))
	for k, o := range kws {
		out[k] = *o
	}
	return out
}

func TestLoad(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"d2.txt": "Cat dog cat!\nDOG, dog? the end-of-line 42",
	})
	l := New(tokenizer.NewFilter([]string{"the"}), WithBaseDir(dir))

	kws, err := l.Load(context.Background(), "d2.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string]index.Occurrence{
		"cat": {Document: "d2.txt", Frequency: 2},
		"dog": {Document: "d2.txt", Frequency: 3},
	}
	if diff := cmp.Diff(want, flatten(kws)); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadUnavailable(t *testing.T) {
	l := New(tokenizer.NewFilter(nil), WithBaseDir(t.TempDir()))
	_, err := l.Load(context.Background(), "missing.txt")
	if !errors.Is(err, apperrors.ErrDocumentUnavailable) {
		t.Fatalf("err = %v, want ErrDocumentUnavailable", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }
func (failingReader) Close() error             { return nil }

func TestLoadReadFailure(t *testing.T) {
	l := New(tokenizer.NewFilter(nil), WithOpener(func(string) (io.ReadCloser, error) {
		return failingReader{}, nil
	}))
	_, err := l.Load(context.Background(), "d1")
	if !errors.Is(err, apperrors.ErrDocumentUnavailable) {
		t.Fatalf("err = %v, want ErrDocumentUnavailable", err)
	}
}

func TestPath(t *testing.T) {
	l := New(tokenizer.NewFilter(nil), WithBaseDir("/srv/docs"))
	if got := l.Path("a.txt"); got != filepath.Join("/srv/docs", "a.txt") {
		t.Errorf("Path(relative) = %q", got)
	}
	if got := l.Path("/abs/b.txt"); got != "/abs/b.txt" {
		t.Errorf("Path(absolute) = %q", got)
	}
	if got := New(tokenizer.NewFilter(nil)).Path("c.txt"); got != "c.txt" {
		t.Errorf("Path without base = %q", got)
	}
}

func TestLoadAllKeepsOrder(t *testing.T) {
	docs := make(map[string]string)
	var ids []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("doc%02d.txt", i)
		docs[name] = strings.Repeat("word ", i+1)
		ids = append(ids, name)
	}
	dir := writeDocs(t, docs)
	l := New(tokenizer.NewFilter(nil), WithBaseDir(dir), WithWorkers(4))

	maps, err := l.LoadAll(context.Background(), ids)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for i, kws := range maps {
		o := kws["word"]
		if o == nil || o.Document != ids[i] || o.Frequency != i+1 {
			t.Errorf("maps[%d] = %+v, want (%s,%d)", i, o, ids[i], i+1)
		}
	}
}

func TestLoadAllFails(t *testing.T) {
	dir := writeDocs(t, map[string]string{"a.txt": "alpha"})
	l := New(tokenizer.NewFilter(nil), WithBaseDir(dir), WithWorkers(2))
	if _, err := l.LoadAll(context.Background(), []string{"a.txt", "b.txt"}); !errors.Is(err, apperrors.ErrDocumentUnavailable) {
		t.Fatalf("err = %v, want ErrDocumentUnavailable", err)
	}
}

func TestLoadEach(t *testing.T) {
	dir := writeDocs(t, map[string]string{"a.txt": "alpha", "c.txt": "gamma gamma"})
	l := New(tokenizer.NewFilter(nil), WithBaseDir(dir), WithWorkers(3))

	results, err := l.LoadEach(context.Background(), []string{"a.txt", "b.txt", "c.txt"})
	if err != nil {
		t.Fatalf("LoadEach: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Keywords["alpha"].Frequency != 1 {
		t.Errorf("a.txt result = %+v", results[0])
	}
	if !errors.Is(results[1].Err, apperrors.ErrDocumentUnavailable) || results[1].DocumentID != "b.txt" {
		t.Errorf("b.txt result = %+v", results[1])
	}
	if results[2].Err != nil || results[2].Keywords["gamma"].Frequency != 2 {
		t.Errorf("c.txt result = %+v", results[2])
	}
}

func TestLoadEachCancelled(t *testing.T) {
	dir := writeDocs(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	l := New(tokenizer.NewFilter(nil), WithBaseDir(dir), WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := l.LoadEach(ctx, []string{"a.txt", "missing.txt", "b.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want nil", results)
	}
}

func TestReadDocumentList(t *testing.T) {
	got, err := ReadDocumentList(strings.NewReader("d1.txt\nd2.txt\n\n  d3.txt\n"))
	if err != nil {
		t.Fatalf("ReadDocumentList: %v", err)
	}
	if diff := cmp.Diff([]string{"d1.txt", "d2.txt", "d3.txt"}, got); diff != "" {
		t.Errorf("ReadDocumentList mismatch (-want +got):\n%s", diff)
	}
}
