package allowlist

import (
	"strings"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// allowedSuffixes is the fixed set of supported retail domains. Matching is
// anchored to the end of the hostname on a label boundary, so
// "amazon.in.evil.com" does not pass.
var allowedSuffixes = []string{
	"amazon.in",
	"flipkart.com",
	"myntra.com",
	"nykaa.com",
	"bigbasket.com",
	"jiomart.com",
}

var suffixPlatform = map[string]types.Platform{
	"amazon.in":     types.PlatformAmazon,
	"flipkart.com":  types.PlatformFlipkart,
	"myntra.com":    types.PlatformMyntra,
	"nykaa.com":     types.PlatformNykaa,
	"bigbasket.com": types.PlatformBigBasket,
	"jiomart.com":   types.PlatformJioMart,
}

// Allowed reports whether host belongs to one of the supported retail
// domains. The check is case-insensitive and must be re-applied after every
// redirect; the final host is the one that matters for trust decisions.
func Allowed(host string) bool {
	return matchSuffix(host) != ""
}

// Platform derives the platform enum from a hostname. Unknown for hosts
// outside the allowlist.
func Platform(host string) types.Platform {
	if s := matchSuffix(host); s != "" {
		return suffixPlatform[s]
	}
	return types.PlatformUnknown
}

func matchSuffix(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	for _, suffix := range allowedSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return suffix
		}
	}
	return ""
}
