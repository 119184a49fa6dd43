package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Balaji2327/Devsparks/allowlist"
	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/utils"
)

// pageRenderer is the browser session contract the extractor depends on,
// satisfied by utils.BrowserClient.
type pageRenderer interface {
	Render(ctx context.Context, rawURL string, profile utils.FingerprintProfile) (*utils.RenderedPage, error)
}

// BrowserExtractor renders JavaScript-heavy pages in an isolated headless
// browser session and applies the same structured-data/markup mining as the
// HTML tier. An order of magnitude more expensive, so used only when the
// direct fetch fails.
type BrowserExtractor struct {
	browser pageRenderer
	config  *types.Config
	logger  types.Logger
}

// NewBrowserExtractor creates a browser extractor.
func NewBrowserExtractor(browser pageRenderer, config *types.Config, logger types.Logger) *BrowserExtractor {
	return &BrowserExtractor{browser: browser, config: config, logger: logger}
}

// Extract renders the page with a platform-tuned fingerprint profile and
// mines a ProductRecord from the post-render state. The final host is
// re-validated against the allowlist before any extraction occurs.
func (e *BrowserExtractor) Extract(ctx context.Context, rawURL string) (*types.ProductRecord, error) {
	requested, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	profile := utils.ProfileFor(allowlist.Platform(requested.Hostname()), e.config.UserAgent)

	page, err := e.browser.Render(ctx, rawURL, profile)
	if err != nil {
		return nil, err
	}

	final, err := url.Parse(page.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("browser reported unparsable location %q: %w", page.FinalURL, err)
	}
	finalHost := final.Hostname()
	if !allowlist.Allowed(finalHost) {
		return nil, fmt.Errorf("%w: redirected to %s", types.ErrDomainNotAllowed, finalHost)
	}

	if looksLikeBotWall(page.HTML) {
		e.logger.Debugf("Bot-challenge signature in rendered page for %s", rawURL)
		return nil, nil
	}

	platform := allowlist.Platform(finalHost)
	record := &types.ProductRecord{
		Platform: platform,
		URL:      page.FinalURL,
	}

	// Structured data read inside the browser context first; on rendered
	// pages the blocks may not exist in the raw markup at all.
	applyJSONLD(record, page.JSONLD)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered markup: %w", err)
	}
	applySelectors(record, doc, platform)

	return record, nil
}
