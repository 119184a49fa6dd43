package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// fixtureKey identifies one canned product: the platform plus the product id
// mined from the URL path or query.
type fixtureKey struct {
	platform types.Platform
	product  string
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(n int) *int         { return &n }

// fixtures are deterministic records served in sandbox mode so tests run
// without live network calls.
var fixtures = map[fixtureKey]types.ProductRecord{
	{types.PlatformAmazon, "B07WNS52H2"}: {
		Platform:    types.PlatformAmazon,
		URL:         "https://www.amazon.in/dp/B07WNS52H2",
		ProductName: strPtr("NAKPRO Micronised Creatine Monohydrate 250g, Unflavoured (83 Servings)"),
		Brand:       strPtr("NAKPRO"),
		Price:       f64Ptr(499),
		Currency:    strPtr("INR"),
		Image:       strPtr("https://m.media-amazon.com/images/I/61rHl+yzPFL._SL1500_.jpg"),
		Rating:      f64Ptr(4.3),
		RatingCount: intPtr(11526),
	},
	{types.PlatformAmazon, "B0B5FJ4W5V"}: {
		Platform:    types.PlatformAmazon,
		URL:         "https://www.amazon.in/dp/B0B5FJ4W5V",
		ProductName: strPtr("Tata Sampann Unpolished Toor Dal, 1kg"),
		Brand:       strPtr("Tata Sampann"),
		Price:       f64Ptr(189),
		Currency:    strPtr("INR"),
		Image:       strPtr("https://m.media-amazon.com/images/I/71V7nK1BxFL._SL1500_.jpg"),
		Rating:      f64Ptr(4.5),
		RatingCount: intPtr(31842),
	},
	{types.PlatformFlipkart, "TKPGHZ9FJDZKPGZF"}: {
		Platform:    types.PlatformFlipkart,
		URL:         "https://www.flipkart.com/p/itm?pid=TKPGHZ9FJDZKPGZF",
		ProductName: strPtr("AASHIRVAAD Shudh Chakki Atta 5 kg"),
		Brand:       strPtr("AASHIRVAAD"),
		Price:       f64Ptr(262),
		Currency:    strPtr("INR"),
		Image:       strPtr("https://rukminim2.flixcart.com/image/416/416/atta-whole-wheat-flour.jpeg"),
		Rating:      f64Ptr(4.4),
		RatingCount: intPtr(208311),
	},
}

// SandboxLookup serves the canned fixture for a URL. The same URL always
// yields an identical record; callers receive a copy so fixtures can never
// be mutated.
func SandboxLookup(platform types.Platform, rawURL *url.URL) (*types.ProductRecord, error) {
	productID := productIDFromURL(platform, rawURL)
	if productID == "" {
		return nil, fmt.Errorf("%w: no product id in %s", types.ErrNoFixture, rawURL.Path)
	}

	record, ok := fixtures[fixtureKey{platform, productID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrNoFixture, platform, productID)
	}

	copied := record
	return &copied, nil
}

// productIDFromURL mines the product identifier out of the URL path or
// query, per platform convention.
func productIDFromURL(platform types.Platform, u *url.URL) string {
	switch platform {
	case types.PlatformAmazon:
		// /dp/<id> or /gp/product/<id>
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, seg := range segments {
			if (seg == "dp" || seg == "product") && i+1 < len(segments) {
				return segments[i+1]
			}
		}
	case types.PlatformFlipkart:
		return u.Query().Get("pid")
	default:
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) > 0 {
			return segments[len(segments)-1]
		}
	}
	return ""
}
