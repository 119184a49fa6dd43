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

const transcribePrompt = "Transcribe ALL visible text in this image verbatim. " +
	"Preserve the original line order. Output only the transcribed text, nothing else."

const cleanupInstruction = "You clean up noisy OCR transcriptions of product package labels. " +
	"Preserve the structure, numbers and unit tokens exactly. Fix only obvious character-level " +
	"recognition mistakes. Change nothing else and add nothing."

// GenerativeProvider prompts a vision-capable generative model to read the
// image. The model produces no meaningful per-symbol confidence, so
// confidence is reported as 0 by convention; that is a known limitation, not
// a bug.
type GenerativeProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  types.Logger
}

// NewGenerativeProvider creates the generative image-read provider.
func NewGenerativeProvider(config *types.Config, logger types.Logger) *GenerativeProvider {
	return &GenerativeProvider{
		apiKey:  config.GeminiAPIKey,
		baseURL: strings.TrimSuffix(config.GeminiBaseURL, "/"),
		model:   config.GeminiModel,
		client:  &http.Client{Timeout: config.FetchTimeout},
		logger:  logger,
	}
}

func (p *GenerativeProvider) Name() types.Provider { return types.ProviderGenerative }

func (p *GenerativeProvider) Usable() bool { return p.apiKey != "" }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Recognize transcribes the image text, line order preserved.
func (p *GenerativeProvider) Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error) {
	if !p.Usable() {
		return nil, fmt.Errorf("%w: generative API key not configured", types.ErrProviderUnavailable)
	}

	prompt := transcribePrompt
	if req.Language != "" {
		prompt += " The text is primarily in language code " + req.Language + "."
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: http.DetectContentType(req.ImageBytes),
					Data:     base64.StdEncoding.EncodeToString(req.ImageBytes),
				}},
			},
		}},
	}

	text, err := p.generate(ctx, payload)
	if err != nil {
		return nil, err
	}

	return &types.OCRResult{
		Text:         stripCodeFences(text),
		Confidence:   0,
		ProviderUsed: types.ProviderGenerative,
	}, nil
}

// Cleanup feeds a base transcription back through the model for noise
// cleanup, constrained to preserve structure and units.
func (p *GenerativeProvider) Cleanup(ctx context.Context, transcript string) (string, error) {
	if !p.Usable() {
		return "", fmt.Errorf("%w: generative API key not configured", types.ErrProviderUnavailable)
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: cleanupInstruction}}},
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: transcript}},
		}},
	}

	text, err := p.generate(ctx, payload)
	if err != nil {
		return "", err
	}
	return stripCodeFences(text), nil
}

func (p *GenerativeProvider) generate(ctx context.Context, payload geminiRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode generative request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: generative API call", types.ErrTimeout)
		}
		return "", fmt.Errorf("generative API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generative response: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode generative response (status %d): %w", resp.StatusCode, err)
	}

	if decoded.Error != nil {
		if decoded.Error.Code == http.StatusForbidden || decoded.Error.Code == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: generative API rejected the key (%s)",
				types.ErrProviderUnavailable, decoded.Error.Status)
		}
		return "", fmt.Errorf("generative API error %s: %s", decoded.Error.Status, decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative API returned status %d", resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("generative API returned no candidates")
	}

	var parts []string
	for _, part := range decoded.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// stripCodeFences removes any fenced code-block wrapping the model added
// around the transcription.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence.
	if idx := strings.Index(s, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if len(firstLine) <= 12 && !strings.ContainsAny(firstLine, " \t") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
