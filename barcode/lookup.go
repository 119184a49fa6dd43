package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/Balaji2327/Devsparks/internal/types"
)

var codePattern = regexp.MustCompile(`^\d{8,14}$`)

// ValidateCode checks that a lookup code is a plausible UPC/EAN/GTIN string.
func ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return types.ErrInvalidInput
	}
	return nil
}

// Client resolves barcode values against a UPC catalog service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  types.Logger
}

// NewClient builds a catalog client from the process configuration.
func NewClient(cfg *types.Config, logger types.Logger) *Client {
	return &Client{
		baseURL: cfg.BarcodeBaseURL,
		client:  &http.Client{Timeout: cfg.BarcodeTimeout},
		logger:  logger,
	}
}

// catalogResponse mirrors the subset of the catalog payload we consume.
type catalogResponse struct {
	Code  string `json:"code"`
	Total int    `json:"total"`
	Items []struct {
		Title       string   `json:"title"`
		Brand       string   `json:"brand"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		UPC         string   `json:"upc"`
		EAN         string   `json:"ean"`
		Images      []string `json:"images"`
	} `json:"items"`
}

// Lookup resolves a validated code against the catalog. The catalog is best
// effort: a miss, a non-200 response or a transport failure all yield
// Found=false rather than an error, so callers can still return the decoded
// code on its own.
func (c *Client) Lookup(ctx context.Context, code string) (*types.ProductInfo, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/lookup?upc=%s", c.baseURL, url.QueryEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &types.ProductInfo{Found: false}, nil
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warnf("barcode catalog unreachable for %s: %v", code, err)
		return &types.ProductInfo{Found: false}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("barcode catalog returned %d for %s", resp.StatusCode, code)
		return &types.ProductInfo{Found: false}, nil
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warnf("barcode catalog payload undecodable for %s: %v", code, err)
		return &types.ProductInfo{Found: false}, nil
	}
	if len(payload.Items) == 0 {
		return &types.ProductInfo{Found: false}, nil
	}

	item := payload.Items[0]
	info := &types.ProductInfo{
		Found:       true,
		ProductName: item.Title,
		Brand:       item.Brand,
		Category:    item.Category,
		Description: item.Description,
		UPC:         item.UPC,
		EAN:         item.EAN,
	}
	if len(item.Images) > 0 {
		info.Image = item.Images[0]
	}
	c.logger.Debugf("barcode %s resolved in %s", code, time.Since(start))
	return info, nil
}
