package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// jsonLDBlocks pulls the raw text of every embedded structured-data block
// out of a parsed document.
func jsonLDBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

// applyJSONLD mines the first schema.org Product entity found in the given
// blocks and fills any unset fields of the record. Structured data is tried
// before visual markup because it is more stable across site redesigns.
func applyJSONLD(record *types.ProductRecord, blocks []string) {
	for _, block := range blocks {
		for _, entity := range decodeEntities(block) {
			if !isProductEntity(entity) {
				continue
			}
			fillFromProduct(record, entity)
			return
		}
	}
}

// decodeEntities tolerates the three common shapes a block comes in: a single
// object, a top-level array, and an object carrying a @graph array.
func decodeEntities(block string) []map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(block), &obj); err == nil {
		if graph, ok := obj["@graph"].([]interface{}); ok {
			return collectObjects(graph)
		}
		return []map[string]interface{}{obj}
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(block), &arr); err == nil {
		return collectObjects(arr)
	}

	return nil
}

func collectObjects(items []interface{}) []map[string]interface{} {
	var objects []map[string]interface{}
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

func isProductEntity(entity map[string]interface{}) bool {
	switch t := entity["@type"].(type) {
	case string:
		return strings.EqualFold(t, "Product")
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func fillFromProduct(record *types.ProductRecord, entity map[string]interface{}) {
	if record.ProductName == nil {
		if name := stringValue(entity["name"]); name != "" {
			record.ProductName = &name
		}
	}
	if record.Brand == nil {
		if brand := brandName(entity["brand"]); brand != "" {
			record.Brand = &brand
		}
	}
	if record.Image == nil {
		if image := firstImage(entity["image"]); image != "" {
			record.Image = &image
		}
	}

	offer := firstObject(entity["offers"])
	if offer != nil {
		if record.Price == nil {
			if price := numberValue(offer["price"]); price != nil {
				record.Price = price
			}
		}
		if record.Currency == nil {
			if cur := stringValue(offer["priceCurrency"]); cur != "" {
				record.Currency = &cur
			}
		}
	}

	if rating := firstObject(entity["aggregateRating"]); rating != nil {
		if record.Rating == nil {
			record.Rating = numberValue(rating["ratingValue"])
		}
		if record.RatingCount == nil {
			count := numberValue(rating["ratingCount"])
			if count == nil {
				count = numberValue(rating["reviewCount"])
			}
			if count != nil {
				n := int(*count)
				record.RatingCount = &n
			}
		}
	}
}

// brandName handles both a bare string and a nested {"name": ...} object.
func brandName(v interface{}) string {
	if s := stringValue(v); s != "" {
		return s
	}
	if obj, ok := v.(map[string]interface{}); ok {
		return stringValue(obj["name"])
	}
	return ""
}

func firstImage(v interface{}) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case []interface{}:
		for _, item := range img {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	case map[string]interface{}:
		return stringValue(img["url"])
	}
	return ""
}

func firstObject(v interface{}) map[string]interface{} {
	switch o := v.(type) {
	case map[string]interface{}:
		return o
	case []interface{}:
		for _, item := range o {
			if obj, ok := item.(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return nil
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// numberValue accepts both JSON numbers and numeric strings, which sites mix
// freely inside offer blocks. Non-finite results are treated as absent.
func numberValue(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return finiteOrNil(n)
	case string:
		return parsePrice(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return finiteOrNil(f)
		}
	}
	return nil
}
