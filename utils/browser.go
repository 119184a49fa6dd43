package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// FingerprintProfile is the set of headers, locale and timing characteristics
// a browser session presents. Two profiles exist: the default one for
// platforms that tolerate the stock request signature, and a disguised one
// for platforms with stricter bot defenses.
type FingerprintProfile struct {
	Name            string
	UserAgent       string
	AcceptLanguage  string
	Timezone        string
	Locale          string
	WaitNetworkIdle bool
	SettleMin       time.Duration
	SettleMax       time.Duration
	MovePointer     bool
}

// DefaultProfile is used for platforms known to tolerate the stock signature.
func DefaultProfile(userAgent string) FingerprintProfile {
	return FingerprintProfile{
		Name:           "default",
		UserAgent:      userAgent,
		AcceptLanguage: "en-IN,en;q=0.9",
		SettleMin:      300 * time.Millisecond,
		SettleMax:      800 * time.Millisecond,
	}
}

// StealthProfile is the heavier disguise for stricter platforms: refreshed
// common user-agent, regional locale and timezone, full Accept headers, a
// randomized post-load settle delay and a small synthetic pointer movement.
func StealthProfile() FingerprintProfile {
	return FingerprintProfile{
		Name:            "stealth",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
		AcceptLanguage:  "en-IN,en-GB;q=0.9,en;q=0.8,hi;q=0.7",
		Timezone:        "Asia/Kolkata",
		Locale:          "en-IN",
		WaitNetworkIdle: true,
		SettleMin:       800 * time.Millisecond,
		SettleMax:       2200 * time.Millisecond,
		MovePointer:     true,
	}
}

// ProfileFor picks a fingerprint profile for the destination platform.
// Amazon tolerates the stock signature; the rest get the disguised profile.
func ProfileFor(platform types.Platform, userAgent string) FingerprintProfile {
	if platform == types.PlatformAmazon {
		return DefaultProfile(userAgent)
	}
	return StealthProfile()
}

// RenderedPage is the output of one browser session: the post-render markup,
// any structured-data blocks read inside the page, and the final URL after
// redirects.
type RenderedPage struct {
	HTML     string
	JSONLD   []string
	FinalURL string
}

// BrowserClient drives isolated headless browser sessions. Sessions are
// never pooled or reused; every Render call launches and tears down its own.
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client.
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// Render navigates to a URL with the given fingerprint profile and returns
// the rendered page. The browser session is torn down unconditionally on
// every exit path; a leaked browser process is an invariant violation.
func (b *BrowserClient) Render(ctx context.Context, rawURL string, profile FingerprintProfile) (*RenderedPage, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(profile.UserAgent),
	)
	if profile.Locale != "" {
		opts = append(opts, chromedp.Flag("lang", profile.Locale))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.config.BrowserTimeout)
	defer cancelTimeout()

	rendered := &RenderedPage{}

	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": profile.AcceptLanguage,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		}),
	}
	if profile.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(profile.Timezone))
	}
	if profile.WaitNetworkIdle {
		tasks = append(tasks,
			page.SetLifecycleEventsEnabled(true),
			navigateAndWaitIdle(rawURL),
		)
	} else {
		tasks = append(tasks, chromedp.Navigate(rawURL))
	}
	tasks = append(tasks, chromedp.Sleep(settleDelay(profile)))
	if profile.MovePointer {
		tasks = append(tasks, syntheticPointerMove())
	}
	tasks = append(tasks,
		chromedp.Location(&rendered.FinalURL),
		chromedp.Evaluate(jsonLDScript, &rendered.JSONLD),
		chromedp.OuterHTML("html", &rendered.HTML),
	)

	start := time.Now()
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: browser navigation to %s", types.ErrTimeout, rawURL)
		}
		return nil, fmt.Errorf("browser render failed: %w", err)
	}

	b.logger.Debugf("Rendered %s with %q profile in %v (%d bytes, %d structured blocks)",
		rawURL, profile.Name, time.Since(start), len(rendered.HTML), len(rendered.JSONLD))

	return rendered, nil
}

// networkIdleEvent is the page lifecycle signal meaning no network
// connections have been active for 500ms.
const networkIdleEvent = "networkIdle"

// navigateAndWaitIdle starts navigation with the lifecycle listener already
// attached, then blocks until the page reports network idle or the session
// deadline expires. Requires lifecycle events to be enabled first.
func navigateAndWaitIdle(rawURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		idle := make(chan struct{})
		listenCtx, stopListening := context.WithCancel(ctx)
		defer stopListening()

		// Only the navigated frame's idle signal counts; events from other
		// frames (the initial blank target included) are ignored. The frame
		// id is known once Navigate returns, long before the 500ms idle
		// window can elapse.
		var mu sync.Mutex
		var frameID cdp.FrameID
		var once sync.Once
		chromedp.ListenTarget(listenCtx, func(ev interface{}) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.Name != networkIdleEvent {
				return
			}
			mu.Lock()
			match := frameID != "" && e.FrameID == frameID
			mu.Unlock()
			if match {
				once.Do(func() { close(idle) })
			}
		})

		navigatedFrame, _, _, err := page.Navigate(rawURL).Do(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		frameID = navigatedFrame
		mu.Unlock()

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// jsonLDScript collects structured-data blocks inside the browser context,
// since on JavaScript-heavy pages they may only exist post-render.
const jsonLDScript = `Array.from(document.querySelectorAll('script[type="application/ld+json"]')).map(s => s.textContent)`

func settleDelay(profile FingerprintProfile) time.Duration {
	if profile.SettleMax <= profile.SettleMin {
		return profile.SettleMin
	}
	return profile.SettleMin + time.Duration(rand.Int63n(int64(profile.SettleMax-profile.SettleMin)))
}

// syntheticPointerMove nudges the mouse across the viewport so the session
// does not look entirely input-less.
func syntheticPointerMove() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		x := 120 + rand.Float64()*400
		y := 90 + rand.Float64()*300
		if err := input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx); err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseMoved, x+40, y+25).Do(ctx)
	})
}
