package extraction

import (
	"context"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
)

// Config tunes the acceptance threshold and per-tier fetch budgets.
type Config struct {
	MinContentLength  int
	StructuredTimeout time.Duration
	MarkupTimeout     time.Duration
	UserAgent         string
}

// SourceKind names the tier that produced a piece of content.
type SourceKind string

const (
	SourceStructured SourceKind = "STRUCTURED"
	SourceMarkup     SourceKind = "MARKUP"
)

// Request is the caller supplied extraction target.
type Request struct {
	URL string `json:"url"`
}

// Validate checks that the URL is an absolute http(s) address.
func (r Request) Validate() error {
	return ValidateURL(r.URL)
}

// ExtractedContent is the text accepted from one tier. Length is the character count of Text.
type ExtractedContent struct {
	Text       string     `json:"text"`
	SourceKind SourceKind `json:"sourceKind"`
	Length     int        `json:"length"`
	Title      string     `json:"title,omitempty"`
	Language   string     `json:"language,omitempty"`
	Claps      int64      `json:"claps,omitempty"`
}

// RawFetchResult is the verbatim response of one outbound GET.
type RawFetchResult struct {
	StatusCode int
	Body       []byte
}

// Fetcher performs a single outbound GET. Transport failures surface as network errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) (RawFetchResult, error)
}

// ValidateURL rejects empty, relative and non-http(s) URLs. Such URLs can
// never yield an article, so they are reported as no content.
func ValidateURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return apperrors.Wrap(apperrors.CodeNoContent, "url cannot be empty", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNoContent, "url is malformed", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return apperrors.Wrap(apperrors.CodeNoContent, "url must be an absolute http(s) address", nil)
	}
	return nil
}
