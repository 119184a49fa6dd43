package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// VisionProvider calls the Google Vision document-text REST API in a single
// request. Confidence is the average per-symbol confidence across the full
// structured response, scaled to 0-100.
type VisionProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  types.Logger
}

// NewVisionProvider creates the cloud document-text provider.
func NewVisionProvider(config *types.Config, logger types.Logger) *VisionProvider {
	return &VisionProvider{
		apiKey:  config.VisionAPIKey,
		baseURL: strings.TrimSuffix(config.VisionBaseURL, "/"),
		client:  &http.Client{Timeout: config.FetchTimeout},
		logger:  logger,
	}
}

func (p *VisionProvider) Name() types.Provider { return types.ProviderCloudVision }

func (p *VisionProvider) Usable() bool { return p.apiKey != "" }

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image        visionImage     `json:"image"`
	Features     []visionFeature `json:"features"`
	ImageContext *visionContext  `json:"imageContext,omitempty"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionContext struct {
	LanguageHints []string `json:"languageHints,omitempty"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text  string `json:"text"`
			Pages []struct {
				Blocks []struct {
					Paragraphs []struct {
						Words []struct {
							Symbols []struct {
								Confidence float64 `json:"confidence"`
							} `json:"symbols"`
						} `json:"words"`
					} `json:"paragraphs"`
				} `json:"blocks"`
			} `json:"pages"`
		} `json:"fullTextAnnotation"`
		Error *visionError `json:"error"`
	} `json:"responses"`
	Error *visionError `json:"error"`
}

type visionError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Recognize performs one images:annotate call.
func (p *VisionProvider) Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error) {
	if !p.Usable() {
		return nil, fmt.Errorf("%w: vision API key not configured", types.ErrProviderUnavailable)
	}

	annotate := visionAnnotateRequest{
		Image:    visionImage{Content: base64.StdEncoding.EncodeToString(req.ImageBytes)},
		Features: []visionFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
	}
	if req.Language != "" {
		annotate.ImageContext = &visionContext{LanguageHints: []string{req.Language}}
	}

	payload, err := json.Marshal(visionRequest{Requests: []visionAnnotateRequest{annotate}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode vision request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", p.baseURL, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: vision API call", types.ErrTimeout)
		}
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vision response: %w", err)
	}

	var decoded visionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode vision response (status %d): %w", resp.StatusCode, err)
	}

	if verr := firstVisionError(&decoded); verr != nil {
		return nil, p.rewriteError(verr)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision API returned status %d", resp.StatusCode)
	}
	if len(decoded.Responses) == 0 || decoded.Responses[0].FullTextAnnotation == nil {
		return &types.OCRResult{Text: "", Confidence: 0, ProviderUsed: types.ProviderCloudVision}, nil
	}

	annotation := decoded.Responses[0].FullTextAnnotation

	var sum float64
	var count int
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				for _, word := range para.Words {
					for _, symbol := range word.Symbols {
						sum += symbol.Confidence
						count++
					}
				}
			}
		}
	}
	confidence := 0.0
	if count > 0 {
		confidence = sum / float64(count) * 100
	}

	return &types.OCRResult{
		Text:         strings.TrimSpace(annotation.Text),
		Confidence:   confidence,
		ProviderUsed: types.ProviderCloudVision,
	}, nil
}

func firstVisionError(resp *visionResponse) *visionError {
	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Responses) > 0 && resp.Responses[0].Error != nil {
		return resp.Responses[0].Error
	}
	return nil
}

// rewriteError pattern-matches provider errors into user-actionable
// messages. Billing and entitlement failures must be distinguishable from
// generic failures so callers can surface them separately.
func (p *VisionProvider) rewriteError(verr *visionError) error {
	msg := strings.ToLower(verr.Message)
	if verr.Status == "PERMISSION_DENIED" || strings.Contains(msg, "billing") || strings.Contains(msg, "has not been used") {
		return fmt.Errorf("%w: cloud vision requires billing/entitlement on the API key (%s)",
			types.ErrProviderUnavailable, verr.Status)
	}
	return fmt.Errorf("vision API error %s: %s", verr.Status, verr.Message)
}
