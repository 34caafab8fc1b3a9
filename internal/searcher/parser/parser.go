package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
)

// QueryPlan is a two-keyword OR query. Second is empty for a one-word query.
type QueryPlan struct {
	First    string
	Second   string
	Ignored  []string
	RawQuery string
}

// Empty reports whether the plan has no keyword to look up.
func (p *QueryPlan) Empty() bool {
	return p.First == "" && p.Second == ""
}

// Key is the normalised form of the plan used to identify equivalent queries.
func (p *QueryPlan) Key() string {
	return p.First + "|" + p.Second
}

// Parse reads "kw1 or kw2", "kw1 kw2" or "kw1". The word "or" in any case is
// a separator. Keywords are lower-cased with trailing punctuation stripped;
// words after the second keyword are kept in Ignored.
func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Ignored:  make([]string, 0),
		RawQuery: query,
	}
	for _, word := range strings.Fields(query) {
		if strings.EqualFold(word, "or") {
			continue
		}
		kw := tokenizer.Normalize(word)
		if kw == "" {
			continue
		}
		switch {
		case plan.First == "":
			plan.First = kw
		case plan.Second == "":
			plan.Second = kw
		default:
			plan.Ignored = append(plan.Ignored, kw)
		}
	}
	return plan
}
