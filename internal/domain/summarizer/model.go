package summarizer

import "github.com/yanqian/gopher-digest/pkg/metrics"

// Config configures the summarization adapter.
type Config struct {
	MaxInputChars int
	MinTags       int
	MaxTags       int
	SystemPrompt  string
	Model         string
	Temperature   float32
}

// Request is the extracted article handed to the adapter.
type Request struct {
	Text string `json:"text"`
	// Title is an optional hint found during extraction.
	Title string `json:"title,omitempty"`
}

// ArticleSummary is the validated record returned to callers.
type ArticleSummary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Result bundles the summary with the usage of the call that produced it.
type Result struct {
	Summary ArticleSummary
	Usage   metrics.TokenUsage
}
