package analytics

import "time"

type EventType string

const (
	EventIndexDocument EventType = "index_document"
	EventIndexComplete EventType = "index_complete"
	EventSearch        EventType = "search"
	EventZeroResult    EventType = "zero_result"
	EventCacheHit      EventType = "cache_hit"
	EventCacheMiss     EventType = "cache_miss"
)

// Event is anything the collector can publish. Key picks the Kafka partition.
type Event interface {
	Key() string
}

type SearchEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Keywords    []string  `json:"keywords"`
	TotalHits   int       `json:"total_hits"`
	Returned    int       `json:"returned"`
	LatencyUs   int64     `json:"latency_us"`
	CacheHit    bool      `json:"cache_hit"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
	QueryID     string    `json:"query_id"`
}

func (e SearchEvent) Key() string { return "search" }

type IndexEvent struct {
	Type         EventType `json:"type"`
	DocumentID   string    `json:"document_id,omitempty"`
	KeywordCount int       `json:"keyword_count"`
	Documents    int       `json:"documents,omitempty"`
	Failed       int       `json:"failed,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	Fingerprint  string    `json:"fingerprint"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e IndexEvent) Key() string {
	if e.DocumentID != "" {
		return e.DocumentID
	}
	return "index"
}
