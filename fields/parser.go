// Package fields derives regulated label attributes from noisy OCR text.
package fields

import (
	"regexp"
	"strings"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// fieldRule binds one regulated attribute to the pattern tuned for its
// typical label phrasing and a fixed confidence weight. The weights are
// tuned constants reflecting how reliable each pattern is empirically, not
// computed values; keeping them in this table makes them independently
// tunable without touching control flow.
type fieldRule struct {
	pattern *regexp.Regexp
	weight  float64
}

var rules = struct {
	productName     fieldRule
	netQuantity     fieldRule
	mrp             fieldRule
	manufacturer    fieldRule
	countryOfOrigin fieldRule
	consumerCare    fieldRule
	bestBefore      fieldRule
}{
	productName: fieldRule{
		pattern: regexp.MustCompile(`^([A-Z][A-Z0-9&'.\-]*(?:\s[A-Z0-9&'.\-]+){1,7})`),
		weight:  70,
	},
	netQuantity: fieldRule{
		pattern: regexp.MustCompile(`NET\s(?:QTY|QUANTITY|WT|WEIGHT|CONTENTS?)[.:]?\s?([0-9]+(?:\.[0-9]+)?\s?(?:KG|GMS|GM|MG|ML|LTR|G|L|PCS|UNITS?|N))(?:\s|$)`),
		weight:  85,
	},
	mrp: fieldRule{
		pattern: regexp.MustCompile(`(?:MRP|M\.R\.P\.?|MAXIMUM RETAIL PRICE)[^0-9]{0,12}([0-9]+(?:\.[0-9]{1,2})?)`),
		weight:  90,
	},
	manufacturer: fieldRule{
		pattern: regexp.MustCompile(`(?:MANUFACTURED|MARKETED|PACKED|MFD)\.?\sBY[:\s]?\s?([A-Z0-9][A-Z0-9 .,&'()\-/]{7,80})`),
		weight:  75,
	},
	countryOfOrigin: fieldRule{
		pattern: regexp.MustCompile(`COUNTRY\sOF\sORIGIN[:\s]?\s?([A-Z][A-Z ]{2,30}?)(?:[.,]|\s{2}|$| [A-Z]+:)`),
		weight:  80,
	},
	consumerCare: fieldRule{
		pattern: regexp.MustCompile(`(?:CONSUMER\sCARE|CUSTOMER\sCARE|CONSUMER\sCOMPLAINTS?)[:\s,]?\s?([A-Z0-9@+][A-Z0-9@ .,:+\-/]{5,100})`),
		weight:  65,
	},
	bestBefore: fieldRule{
		pattern: regexp.MustCompile(`BEST\sBEFORE[:\s]?\s?([0-9]+\s?(?:MONTHS?|DAYS?|YEARS?)|[0-9]{1,2}[/.\-][0-9]{2,4})`),
		weight:  75,
	},
}

// Parse turns free-form recognized text into the seven regulated label
// fields. All seven slots are always populated even when every pattern
// misses; a miss carries the rule's fixed weight as its confidence,
// representing pattern reliability rather than match quality.
func Parse(text string) types.DetectedFieldSet {
	normalized := normalize(text)
	return types.DetectedFieldSet{
		ProductName:     detect(rules.productName, normalized),
		NetQuantity:     detect(rules.netQuantity, normalized),
		MRP:             detect(rules.mrp, normalized),
		Manufacturer:    detect(rules.manufacturer, normalized),
		CountryOfOrigin: detect(rules.countryOfOrigin, normalized),
		ConsumerCare:    detect(rules.consumerCare, normalized),
		BestBefore:      detect(rules.bestBefore, normalized),
	}
}

// normalize upper-cases the text and collapses all whitespace runs so the
// patterns tolerate the ragged spacing OCR produces.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToUpper(text)), " ")
}

func detect(rule fieldRule, normalized string) types.DetectedField {
	match := rule.pattern.FindStringSubmatch(normalized)
	if match == nil {
		return types.DetectedField{
			Text:       nil,
			Confidence: rule.weight,
			Compliant:  false,
		}
	}
	value := strings.Trim(strings.TrimSpace(match[1]), ".,:")
	return types.DetectedField{
		Text:       &value,
		Confidence: rule.weight,
		Compliant:  true,
	}
}
