package digest

import "time"

// Config tunes the digest pipeline.
type Config struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

// Request is the inbound payload of the summaries endpoint.
type Request struct {
	URL string `json:"url"`
}

// Response is the all-or-nothing result returned to callers.
type Response struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Article is an archived digest.
type Article struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Tags          []string  `json:"tags"`
	SourceKind    string    `json:"sourceKind"`
	ContentLength int       `json:"contentLength"`
	SnapshotKey   string    `json:"snapshotKey,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
