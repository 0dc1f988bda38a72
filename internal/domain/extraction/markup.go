package extraction

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// contentSelector lists the tags that carry body text, matched in document order.
const contentSelector = "p, h1, h2, h3, h4, blockquote, li"

// MarkupTier scrapes the rendered HTML page. It is the canonical fallback.
type MarkupTier struct {
	cfg     Config
	fetcher Fetcher
}

// NewMarkupTier builds the HTML tier.
func NewMarkupTier(cfg Config, fetcher Fetcher) *MarkupTier {
	return &MarkupTier{cfg: cfg, fetcher: fetcher}
}

func (t *MarkupTier) Name() string { return "markup" }

func (t *MarkupTier) Attempt(ctx context.Context, rawURL string) Outcome {
	headers := map[string]string{
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"User-Agent": t.cfg.UserAgent,
	}
	res, err := t.fetcher.Fetch(ctx, rawURL, headers, t.cfg.MarkupTimeout)
	if err != nil {
		return failed(FailureFetch, err)
	}
	if res.StatusCode != http.StatusOK {
		return failed(FailureStatus, fmt.Errorf("status %d", res.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return failed(FailureParse, err)
	}

	content := ExtractedContent{
		Text:       collectBodyText(doc),
		SourceKind: SourceMarkup,
		Title:      pageTitle(res.Body, doc),
	}
	return acceptText(content, t.cfg.MinContentLength)
}

// collectBodyText prefers the first <article>, falling back to the whole document.
func collectBodyText(doc *goquery.Document) string {
	scope := doc.Find("article").First()
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var fragments []string
	scope.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			fragments = append(fragments, text)
		}
	})
	return strings.Join(fragments, "\n\n")
}

// pageTitle reads og:title first and falls back to <title>.
func pageTitle(body []byte, doc *goquery.Document) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err == nil {
		if title := strings.TrimSpace(og.Title); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
