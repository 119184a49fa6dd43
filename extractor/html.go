package extractor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Balaji2327/Devsparks/allowlist"
	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/utils"
)

// botSignatures are challenge-page phrases checked case-insensitively
// against the response body. A hit is a soft failure signal, not an error,
// so auto mode can escalate silently to the browser tier.
var botSignatures = []string{
	"captcha",
	"unusual traffic",
	"automated access",
	"robot check",
	"are you a human",
	"access denied",
}

// looksLikeBotWall reports whether markup matches a bot-challenge signature.
func looksLikeBotWall(html string) bool {
	lower := strings.ToLower(html)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// HTMLExtractor mines product data from directly fetched markup. It is the
// cheap fast path; the browser tier exists for pages it cannot handle.
type HTMLExtractor struct {
	client    *utils.HTTPClient
	logger    types.Logger
	allowHost func(string) bool
}

// NewHTMLExtractor creates an HTML extractor over the shared fetch client.
func NewHTMLExtractor(client *utils.HTTPClient, logger types.Logger) *HTMLExtractor {
	return &HTMLExtractor{client: client, logger: logger, allowHost: allowlist.Allowed}
}

// Extract fetches the page once and mines a ProductRecord from it.
// A (nil, nil) return means a soft failure (bot wall, non-OK status) that
// the strategy controller may escalate past. The final post-redirect host is
// re-validated against the allowlist before any content is interpreted.
func (e *HTMLExtractor) Extract(ctx context.Context, rawURL string) (*types.ProductRecord, error) {
	result, err := e.client.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	finalHost := result.FinalURL.Hostname()
	if !e.allowHost(finalHost) {
		return nil, fmt.Errorf("%w: redirected to %s", types.ErrDomainNotAllowed, finalHost)
	}

	if result.StatusCode != http.StatusOK {
		e.logger.Debugf("HTML tier got status %d for %s, treating as soft failure", result.StatusCode, rawURL)
		return nil, nil
	}

	html := string(result.Body)
	if looksLikeBotWall(html) {
		e.logger.Debugf("Bot-challenge signature in response for %s, treating as soft failure", rawURL)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	platform := allowlist.Platform(finalHost)
	record := &types.ProductRecord{
		Platform: platform,
		URL:      result.FinalURL.String(),
	}

	applyJSONLD(record, jsonLDBlocks(doc))
	applySelectors(record, doc, platform)

	return record, nil
}
