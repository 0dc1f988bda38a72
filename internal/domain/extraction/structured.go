package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// StructuredTier reads the platform's JSON rendition of an article (the ?format=json convention).
type StructuredTier struct {
	cfg     Config
	fetcher Fetcher
}

// NewStructuredTier builds the JSON tier.
func NewStructuredTier(cfg Config, fetcher Fetcher) *StructuredTier {
	return &StructuredTier{cfg: cfg, fetcher: fetcher}
}

func (t *StructuredTier) Name() string { return "structured" }

func (t *StructuredTier) Attempt(ctx context.Context, rawURL string) Outcome {
	target, err := structuredURL(rawURL)
	if err != nil {
		return failed(FailureFetch, err)
	}

	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": t.cfg.UserAgent,
	}
	res, err := t.fetcher.Fetch(ctx, target, headers, t.cfg.StructuredTimeout)
	if err != nil {
		return failed(FailureFetch, err)
	}
	if res.StatusCode != http.StatusOK {
		return failed(FailureStatus, fmt.Errorf("status %d", res.StatusCode))
	}

	// Some platforms prefix the payload with an anti-hijacking guard like `])}while(1);</x>`.
	start := bytes.IndexByte(res.Body, '{')
	if start == -1 {
		return failed(FailureNotJSON, nil)
	}

	var envelope structuredEnvelope
	if err := json.NewDecoder(bytes.NewReader(res.Body[start:])).Decode(&envelope); err != nil {
		return failed(FailureMalformed, err)
	}

	value, ok := envelope.value()
	if !ok {
		return failed(FailureAbsent, nil)
	}
	paragraphs, ok := value.paragraphs()
	if !ok {
		return failed(FailureAbsent, nil)
	}

	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		texts = append(texts, p.Text)
	}

	content := ExtractedContent{
		Text:       strings.Join(texts, "\n"),
		SourceKind: SourceStructured,
		Title:      strings.TrimSpace(value.Title),
		Language:   value.DetectedLanguage,
	}
	if value.Virtuals != nil {
		content.Claps = int64(value.Virtuals.TotalClapCount)
	}
	return acceptText(content, t.cfg.MinContentLength)
}

func structuredURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// structuredEnvelope mirrors payload.value.{title,detectedLanguage,virtuals,content.bodyModel.paragraphs}.
// Every hop is a pointer so a missing key reads as absent instead of failing the decode.
type structuredEnvelope struct {
	Payload *struct {
		Value *structuredValue `json:"value"`
	} `json:"payload"`
}

type structuredValue struct {
	Title            string `json:"title"`
	DetectedLanguage string `json:"detectedLanguage"`
	Virtuals         *struct {
		TotalClapCount float64 `json:"totalClapCount"`
	} `json:"virtuals"`
	Content *struct {
		BodyModel *struct {
			Paragraphs []structuredParagraph `json:"paragraphs"`
		} `json:"bodyModel"`
	} `json:"content"`
}

type structuredParagraph struct {
	Text string `json:"text"`
}

func (e structuredEnvelope) value() (*structuredValue, bool) {
	if e.Payload == nil || e.Payload.Value == nil {
		return nil, false
	}
	return e.Payload.Value, true
}

func (v *structuredValue) paragraphs() ([]structuredParagraph, bool) {
	if v.Content == nil || v.Content.BodyModel == nil {
		return nil, false
	}
	return v.Content.BodyModel.Paragraphs, true
}
