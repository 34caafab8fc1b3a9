package index

import "fmt"

// Occurrence records how many times a keyword appears in one document.
type Occurrence struct {
	Document  string `json:"document"`
	Frequency int    `json:"frequency"`
}

func (o Occurrence) String() string {
	return fmt.Sprintf("(%s,%d)", o.Document, o.Frequency)
}

// OccurrenceList is kept in non-increasing Frequency order inside an Index.
type OccurrenceList []Occurrence

// Clone returns a copy that shares no backing array with l.
func (l OccurrenceList) Clone() OccurrenceList {
	if l == nil {
		return nil
	}
	out := make(OccurrenceList, len(l))
	copy(out, l)
	return out
}

// IsRanked reports whether frequencies never increase from first to last.
func (l OccurrenceList) IsRanked() bool {
	for i := 1; i < len(l); i++ {
		if l[i].Frequency > l[i-1].Frequency {
			return false
		}
	}
	return true
}

// Documents returns the document identifiers in list order.
func (l OccurrenceList) Documents() []string {
	docs := make([]string, len(l))
	for i, o := range l {
		docs[i] = o.Document
	}
	return docs
}

// KeywordMap is the per-document result of loading: one Occurrence per
// distinct keyword, all for the same document. Frequencies are accumulated
// through the pointers while the document is scanned.
type KeywordMap map[string]*Occurrence

// Add counts one more appearance of keyword in document.
func (m KeywordMap) Add(keyword, document string) {
	if o, ok := m[keyword]; ok {
		o.Frequency++
		return
	}
	m[keyword] = &Occurrence{Document: document, Frequency: 1}
}

// KeywordEntry is one row of an Index snapshot.
type KeywordEntry struct {
	Keyword     string         `json:"keyword"`
	Occurrences OccurrenceList `json:"occurrences"`
}

// Stats summarises the size of an Index.
type Stats struct {
	Keywords    int `json:"keywords"`
	Documents   int `json:"documents"`
	Occurrences int `json:"occurrences"`
}
