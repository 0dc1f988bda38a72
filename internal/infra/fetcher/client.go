package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
)

const defaultMaxBodyBytes = 10 << 20

// headerOrder is the order a desktop Chrome sends these headers in.
var headerOrder = []string{"accept", "accept-language", "user-agent"}

type doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Client performs outbound GETs with a browser TLS fingerprint.
type Client struct {
	doer      doer
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

var _ extraction.Fetcher = (*Client)(nil)

// NewClient builds a fingerprinting HTTP client for the configured browser profile.
func NewClient(cfg config.ExtractionConfig, logger *slog.Logger) (*Client, error) {
	profile, ok := profiles.MappedTLSClients[strings.ToLower(cfg.Impersonate)]
	if !ok {
		if cfg.Impersonate != "" {
			return nil, fmt.Errorf("unknown impersonation profile %q", cfg.Impersonate)
		}
		profile = profiles.Chrome_120
	}

	// The per call budget is enforced through the request context.
	ceiling := cfg.MarkupTimeout
	if cfg.StructuredTimeout > ceiling {
		ceiling = cfg.StructuredTimeout
	}
	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profile),
		tls_client.WithTimeoutSeconds(int(ceiling/time.Second) + 1),
	}
	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("build tls client: %w", err)
	}
	return newWithDoer(httpClient, cfg, logger), nil
}

func newWithDoer(d doer, cfg config.ExtractionConfig, logger *slog.Logger) *Client {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Client{
		doer:      d,
		userAgent: cfg.UserAgent,
		maxBody:   maxBody,
		logger:    logger.With("component", "fetcher"),
	}
}

// Fetch issues one GET. Any HTTP status is a result; only transport failures are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) (extraction.RawFetchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, rawURL, nil)
	if err != nil {
		return extraction.RawFetchResult{}, apperrors.Wrap(apperrors.CodeNetwork, "build request", err)
	}
	req.Header = c.buildHeaders(headers)

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("fetch failed", "url", rawURL, "error", err, "elapsed", time.Since(start))
		return extraction.RawFetchResult{}, apperrors.Wrap(apperrors.CodeNetwork, "fetch "+rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return extraction.RawFetchResult{}, apperrors.Wrap(apperrors.CodeNetwork, "read body of "+rawURL, err)
	}
	c.logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return extraction.RawFetchResult{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) buildHeaders(extra map[string]string) fhttp.Header {
	h := fhttp.Header{}
	h.Set("Accept-Language", "en-US,en;q=0.9")
	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	for k, v := range extra {
		if strings.TrimSpace(v) == "" {
			continue
		}
		h.Set(k, v)
	}
	h[fhttp.HeaderOrderKey] = headerOrder
	return h
}
