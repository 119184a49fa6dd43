package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// fieldSelectors lists candidate CSS selectors per field, tried in order;
// the first non-empty match wins. Image selectors are attribute lookups.
type fieldSelectors struct {
	Name        []string
	Brand       []string
	Price       []string
	Image       []string
	Rating      []string
	RatingCount []string
}

// imageAttrs are tried in order on a matched image element. Lazy-loaded
// markup keeps the real source in data attributes.
var imageAttrs = []string{"data-old-hires", "data-src", "src"}

// selectorTable is the platform-specific markup lookup, keyed by the
// platform derived from the final host. Second tier after structured data.
var selectorTable = map[types.Platform]fieldSelectors{
	types.PlatformAmazon: {
		Name:        []string{"#productTitle", "h1#title span"},
		Brand:       []string{"#bylineInfo", "a#bylineInfo", "#brand"},
		Price:       []string{".a-price .a-offscreen", "#priceblock_ourprice", "#priceblock_dealprice", ".priceToPay .a-offscreen"},
		Image:       []string{"#landingImage", "#imgTagWrapperId img", "#main-image"},
		Rating:      []string{"#acrPopover .a-icon-alt", "span[data-hook='rating-out-of-text']", ".a-icon-star .a-icon-alt"},
		RatingCount: []string{"#acrCustomerReviewText", "span[data-hook='total-review-count']"},
	},
	types.PlatformFlipkart: {
		Name:        []string{"span.VU-ZEz", "span.B_NuCI", "h1.yhB1nd"},
		Brand:       []string{"span.mEh187", ".G6XhRU"},
		Price:       []string{"div.Nx9bqj.CxhGGd", "div._30jeq3._16Jk6d", "div._30jeq3"},
		Image:       []string{"img.DByuf4", "img._396cs4", "img._2r_T1I"},
		Rating:      []string{"div.XQDdHH", "div._3LWZlK"},
		RatingCount: []string{"span.Wphh3N span", "span._2_R_DZ span"},
	},
	types.PlatformMyntra: {
		Name:        []string{"h1.pdp-name", "h1.pdp-title"},
		Brand:       []string{"h1.pdp-title .pdp-brand-name", "h1.pdp-title", ".pdp-product-brand"},
		Price:       []string{"span.pdp-price strong", ".pdp-price", ".pdp-discounted-price"},
		Image:       []string{".image-grid-image", ".image-grid-imageContainer img"},
		Rating:      []string{".index-overallRating div"},
		RatingCount: []string{".index-ratingsCount"},
	},
	types.PlatformNykaa: {
		Name:        []string{"h1.css-1gc4x7i", "h1[class*='title']"},
		Brand:       []string{".css-1c1dxvt a", "a[class*='brand']"},
		Price:       []string{".css-1jczs19", "span[class*='price']"},
		Image:       []string{".css-43m2vm img", "img[class*='product-image']"},
		Rating:      []string{".css-m6n3ou", "div[class*='rating'] span"},
		RatingCount: []string{".css-1hvvm95"},
	},
	types.PlatformBigBasket: {
		Name:        []string{"h1.Description___StyledH", "h1[class*='Description']"},
		Brand:       []string{"a.BrandName___StyledLabel", "span[class*='Brand']"},
		Price:       []string{"td[data-qa='productPrice']", "span.Pricing___StyledLabel"},
		Image:       []string{"img[class*='DeckImage']", ".image-wrapper img"},
		Rating:      []string{"span[class*='Label-sc'][class*='gvgtQU']"},
		RatingCount: []string{"span[class*='ReviewsAndRatings']"},
	},
	types.PlatformJioMart: {
		Name:        []string{"#pdp_product_name", ".product-header-name"},
		Brand:       []string{".product-header-brand", "#brand_name"},
		Price:       []string{"#price_section .product-price", ".product-price span"},
		Image:       []string{"#pdp_main_image", ".swiper-slide img"},
		Rating:      []string{".product-rating-value"},
		RatingCount: []string{".product-rating-count"},
	},
}

// applySelectors fills any still-unset record fields using the platform's
// selector table. A selector that matches nothing is absorbed silently; only
// the aggregate completeness check at tier boundaries reports failure.
func applySelectors(record *types.ProductRecord, doc *goquery.Document, platform types.Platform) {
	selectors, ok := selectorTable[platform]
	if !ok {
		return
	}

	if record.ProductName == nil {
		if v := firstText(doc, selectors.Name); v != "" {
			record.ProductName = &v
		}
	}
	if record.Brand == nil {
		if v := cleanBrand(firstText(doc, selectors.Brand)); v != "" {
			record.Brand = &v
		}
	}
	if record.Price == nil {
		if raw := firstText(doc, selectors.Price); raw != "" {
			record.Price = parsePrice(raw)
			if record.Price != nil && record.Currency == nil {
				currency := "INR"
				record.Currency = &currency
			}
		}
	}
	if record.Image == nil {
		if v := firstImageAttr(doc, selectors.Image); v != "" {
			record.Image = &v
		}
	}
	if record.Rating == nil {
		if raw := firstText(doc, selectors.Rating); raw != "" {
			record.Rating = parseRating(raw)
		}
	}
	if record.RatingCount == nil {
		if raw := firstText(doc, selectors.RatingCount); raw != "" {
			record.RatingCount = parseCount(raw)
		}
	}
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}

func firstImageAttr(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		for _, attr := range imageAttrs {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// cleanBrand strips the boilerplate Amazon puts around byline text.
func cleanBrand(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Visit the ")
	s = strings.TrimSuffix(s, " Store")
	s = strings.TrimPrefix(s, "Brand: ")
	return strings.TrimSpace(s)
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// parsePrice normalizes a price string by stripping every character that is
// not a digit or decimal point and parsing the remainder as a float. A
// non-finite or unparsable result is absent, not zero.
func parsePrice(raw string) *float64 {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finiteOrNil(f)
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

var leadingFloat = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// parseRating pulls the numeric rating out of strings like
// "4.3 out of 5 stars".
func parseRating(raw string) *float64 {
	match := leadingFloat.FindString(raw)
	if match == "" {
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return finiteOrNil(f)
}

var digitRuns = regexp.MustCompile(`[0-9,]+`)

// parseCount pulls the integer out of strings like "11,526 ratings".
func parseCount(raw string) *int {
	match := digitRuns.FindString(raw)
	match = strings.ReplaceAll(match, ",", "")
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}
