package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// maxFetchBytes caps response bodies so a hostile page cannot exhaust memory.
const maxFetchBytes = 10 << 20

// FetchResult carries a fetched body together with the final post-redirect
// URL, which callers must re-validate against the allowlist.
type FetchResult struct {
	Body        []byte
	FinalURL    *url.URL
	ContentType string
	StatusCode  int
}

// HTTPClient performs direct page fetches with a realistic browser-like
// header set and a bounded timeout.
type HTTPClient struct {
	client  *http.Client
	config  *types.Config
	logger  types.Logger
	limiter *rate.Limiter
}

// NewHTTPClient creates a new HTTP client with the given configuration.
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}

	perSecond := rate.Every(config.RequestDelay)
	if config.RequestDelay <= 0 {
		perSecond = rate.Inf
	}

	return &HTTPClient{
		client:  client,
		config:  config,
		logger:  logger,
		limiter: rate.NewLimiter(perSecond, 3),
	}
}

// Get performs one GET request with browser-like headers, following
// redirects. The final URL after redirects is reported so callers can
// re-apply host trust checks. Timeouts surface as types.ErrTimeout.
func (h *HTTPClient) Get(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9,hi;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")

	h.logger.Debugf("Fetching %s", rawURL)

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: fetching %s", types.ErrTimeout, rawURL)
		}
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return nil, fmt.Errorf("%w: fetching %s", types.ErrTimeout, rawURL)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	h.logger.Debugf("Fetched %d bytes from %s (status %d, final %s)",
		len(body), rawURL, resp.StatusCode, resp.Request.URL.Host)

	return &FetchResult{
		Body:        body,
		FinalURL:    resp.Request.URL,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
