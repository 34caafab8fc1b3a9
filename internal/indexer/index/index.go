package index

import (
	"sort"
	"sync"
)

// InsertionObserver receives the midpoint trace of every ranked insertion
// performed by Merge.
type InsertionObserver func(keyword string, trace []int)

type Option func(*Index)

func WithInsertionObserver(fn InsertionObserver) Option {
	return func(idx *Index) {
		idx.observe = fn
	}
}

// Index maps keywords to their occurrences ranked by descending frequency.
// Merge is the only mutator; every reader gets a copy.
type Index struct {
	mu          sync.RWMutex
	keywords    map[string]OccurrenceList
	documents   map[string]struct{}
	occurrences int
	observe     InsertionObserver
}

func New(opts ...Option) *Index {
	idx := &Index{
		keywords:  make(map[string]OccurrenceList),
		documents: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Merge folds one document's keywords into the index. A keyword seen for the
// first time gets a single-entry list; otherwise the occurrence is appended
// and moved into ranked position with InsertLastOccurrence.
//
// Merging the same document twice records it twice.
func (idx *Index) Merge(kws KeywordMap) {
	keywords := make([]string, 0, len(kws))
	for kw := range kws {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, kw := range keywords {
		occ := *kws[kw]
		idx.documents[occ.Document] = struct{}{}
		idx.occurrences++

		list, exists := idx.keywords[kw]
		if !exists {
			idx.keywords[kw] = OccurrenceList{occ}
			continue
		}
		list = append(list, occ)
		trace := InsertLastOccurrence(list)
		idx.keywords[kw] = list
		if idx.observe != nil {
			idx.observe(kw, trace)
		}
	}
}

// Occurrences returns a copy of the ranked list for keyword. The keyword is
// looked up as given; callers normalise it first.
func (idx *Index) Occurrences(keyword string) (OccurrenceList, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	list, ok := idx.keywords[keyword]
	if !ok {
		return nil, false
	}
	return list.Clone(), true
}

func (idx *Index) Keywords() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.keywords))
	for kw := range idx.keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns every keyword with a copy of its list, sorted by keyword.
func (idx *Index) Snapshot() []KeywordEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entries := make([]KeywordEntry, 0, len(idx.keywords))
	for kw, list := range idx.keywords {
		entries = append(entries, KeywordEntry{
			Keyword:     kw,
			Occurrences: list.Clone(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Keyword < entries[j].Keyword
	})
	return entries
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.keywords)
}

func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{
		Keywords:    len(idx.keywords),
		Documents:   len(idx.documents),
		Occurrences: idx.occurrences,
	}
}
