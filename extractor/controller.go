package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Balaji2327/Devsparks/allowlist"
	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/utils"
)

// tierExtractor is the uniform contract every extraction tier satisfies.
// A (nil, nil) return is a soft failure the controller may escalate past.
type tierExtractor interface {
	Extract(ctx context.Context, rawURL string) (*types.ProductRecord, error)
}

// strategy is one named extraction attempt. Representing the fallback order
// as an explicit list keeps it first-class and testable rather than buried
// in nested conditionals.
type strategy struct {
	name string
	tier tierExtractor
}

// Controller sequences allowlist guard, sandbox fixtures, and the HTML and
// browser tiers according to the requested mode and observed failure
// signals. Direct fetches are an order of magnitude cheaper than a browser
// session, so auto mode is a cost-ordered fallback.
type Controller struct {
	htmlTier    tierExtractor
	browserTier tierExtractor
	logger      types.Logger
}

// NewController wires the real tiers over the shared clients.
func NewController(config *types.Config, logger types.Logger) *Controller {
	httpClient := utils.NewHTTPClient(config, logger)
	browserClient := utils.NewBrowserClient(config, logger)
	return &Controller{
		htmlTier:    NewHTMLExtractor(httpClient, logger),
		browserTier: NewBrowserExtractor(browserClient, config, logger),
		logger:      logger,
	}
}

// NewControllerWithTiers injects tier implementations directly; used by
// tests to substitute fakes.
func NewControllerWithTiers(htmlTier, browserTier tierExtractor, logger types.Logger) *Controller {
	return &Controller{htmlTier: htmlTier, browserTier: browserTier, logger: logger}
}

// Extract runs one extraction request end to end.
func (c *Controller) Extract(ctx context.Context, req types.ExtractionRequest) (*types.ProductRecord, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil || !parsed.IsAbs() || parsed.Hostname() == "" {
		return nil, fmt.Errorf("%w: not an absolute URL: %q", types.ErrInvalidInput, req.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", types.ErrInvalidInput, parsed.Scheme)
	}

	mode := req.Mode
	if mode == "" {
		mode = types.ModeAuto
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", types.ErrInvalidInput, mode)
	}

	host := parsed.Hostname()
	if !allowlist.Allowed(host) {
		return nil, fmt.Errorf("%w: %s", types.ErrDomainNotAllowed, host)
	}

	switch mode {
	case types.ModeSandbox:
		return SandboxLookup(allowlist.Platform(host), parsed)
	case types.ModeHTML:
		return c.runSingle(ctx, req.URL, strategy{name: "html", tier: c.htmlTier})
	case types.ModeBrowser:
		return c.runSingle(ctx, req.URL, strategy{name: "browser", tier: c.browserTier})
	default:
		return c.runChain(ctx, req.URL, []strategy{
			{name: "html", tier: c.htmlTier},
			{name: "browser", tier: c.browserTier},
		})
	}
}

// runSingle executes one explicit tier; an incomplete result is terminal.
func (c *Controller) runSingle(ctx context.Context, rawURL string, s strategy) (*types.ProductRecord, error) {
	record, err := s.tier.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !record.Complete() {
		return nil, fmt.Errorf("%w: %s tier", types.ErrExtractionIncomplete, s.name)
	}
	return record, nil
}

// runChain iterates the ordered strategy list, escalating on soft failures
// and incompleteness. Policy violations and timeouts abort the chain: a
// disallowed redirect is never retried, and a timeout is not re-attempted
// within a single request to keep latency predictable.
func (c *Controller) runChain(ctx context.Context, rawURL string, strategies []strategy) (*types.ProductRecord, error) {
	for _, s := range strategies {
		record, err := s.tier.Extract(ctx, rawURL)
		if err != nil {
			if errors.Is(err, types.ErrDomainNotAllowed) || errors.Is(err, types.ErrTimeout) {
				return nil, err
			}
			c.logger.Warnf("%s tier failed for %s: %v", s.name, rawURL, err)
			continue
		}
		if record.Complete() {
			c.logger.Debugf("%s tier produced a complete record for %s", s.name, rawURL)
			return record, nil
		}
		c.logger.Debugf("%s tier incomplete for %s, escalating", s.name, rawURL)
	}
	return nil, types.ErrExtractionFailed
}
