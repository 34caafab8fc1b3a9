// Package merger combines the ranked occurrence lists of two keywords into
// the ordered answer of a "kw1 or kw2" query.
package merger

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
)

// DefaultLimit is the number of documents a query returns.
const DefaultLimit = 5

// Source is the read side of an index.
type Source interface {
	Occurrences(keyword string) (index.OccurrenceList, bool)
}

// Result is the answer to a two-keyword query. Documents is nil when nothing
// matched.
type Result struct {
	Documents []string `json:"documents"`
	TotalHits int      `json:"total_hits"`
}

// Found reports whether any document matched.
func (r Result) Found() bool {
	return len(r.Documents) > 0
}

// Merge splices second into a copy of first, keeping the combined list in
// non-increasing frequency order. An entry from second goes before the first
// entry with a strictly lower frequency, so first wins ties. Entries of second
// for documents already present in first are dropped: such a document keeps
// the rank its first-keyword frequency gives it.
func Merge(first, second index.OccurrenceList) index.OccurrenceList {
	merged := make(index.OccurrenceList, len(first), len(first)+len(second))
	copy(merged, first)

	inFirst := make(map[string]struct{}, len(first))
	for _, o := range first {
		inFirst[o.Document] = struct{}{}
	}
	for _, occ := range second {
		if _, dup := inFirst[occ.Document]; dup {
			continue
		}
		pos := len(merged)
		for j, cur := range merged {
			if occ.Frequency > cur.Frequency {
				pos = j
				break
			}
		}
		merged = slices.Insert(merged, pos, occ)
	}
	return merged
}

// TopK returns at most limit distinct documents from the merge of first and
// second, best first, together with the number of distinct documents in the
// union. A non-positive limit means DefaultLimit.
func TopK(first, second index.OccurrenceList, limit int) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	merged := Merge(first, second)
	seen := make(map[string]struct{}, len(merged))
	var docs []string
	for _, occ := range merged {
		if _, dup := seen[occ.Document]; dup {
			continue
		}
		seen[occ.Document] = struct{}{}
		if len(docs) < limit {
			docs = append(docs, occ.Document)
		}
	}
	return Result{Documents: docs, TotalHits: len(seen)}
}

// Search answers "kw1 or kw2" against src. Keywords are lower-cased; either
// may be empty or unknown.
func Search(src Source, kw1, kw2 string, limit int) Result {
	first := lookup(src, kw1)
	second := lookup(src, kw2)
	return TopK(first, second, limit)
}

func lookup(src Source, keyword string) index.OccurrenceList {
	keyword = strings.ToLower(keyword)
	if keyword == "" {
		return nil
	}
	list, _ := src.Occurrences(keyword)
	return list
}
