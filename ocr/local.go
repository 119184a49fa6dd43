package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// numericWhitelist restricts the second pass to the characters that appear
// in currency, weight and unit tokens on package labels.
const numericWhitelist = "0123456789.,:/%-() ₹RsINRMPKGLONETQUWYABCDF"

// LocalProvider runs two-pass Tesseract recognition. Label text mixes prose
// and numeric/unit tokens that benefit from different recognition tuning, so
// pass 1 runs general-purpose recognition and pass 2 re-runs with a
// restricted character whitelist; text is concatenated and per-word
// confidences are averaged across both passes.
type LocalProvider struct {
	logger types.Logger
}

// NewLocalProvider creates the local recognizer. It is always usable.
func NewLocalProvider(logger types.Logger) *LocalProvider {
	return &LocalProvider{logger: logger}
}

func (p *LocalProvider) Name() types.Provider { return types.ProviderLocal }

func (p *LocalProvider) Usable() bool { return true }

// Recognize runs one or two recognition passes over the (already
// preprocessed) image. Fast mode skips the whitelist pass.
func (p *LocalProvider) Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error) {
	prepared := req.ImageBytes

	lang := req.Language
	if lang == "" {
		lang = "eng"
	}

	text1, words1, err := p.runPass(ctx, prepared, lang, "")
	if err != nil {
		return nil, fmt.Errorf("general pass: %w", err)
	}

	texts := []string{text1}
	allConfidences := words1

	if !req.FastMode {
		text2, words2, err := p.runPass(ctx, prepared, lang, numericWhitelist)
		if err != nil {
			// The numeric pass is a refinement; its failure does not
			// discard the general pass.
			p.logger.Warnf("Whitelist pass failed: %v", err)
		} else {
			texts = append(texts, text2)
			allConfidences = append(allConfidences, words2...)
		}
	}

	return &types.OCRResult{
		Text:         strings.TrimSpace(strings.Join(texts, "\n")),
		Confidence:   averageConfidence(allConfidences),
		ProviderUsed: types.ProviderLocal,
	}, nil
}

// runPass executes a single Tesseract pass, returning the recognized text
// and per-word confidences on the 0-100 scale.
func (p *LocalProvider) runPass(ctx context.Context, imageBytes []byte, lang, whitelist string) (string, []float64, error) {
	select {
	case <-ctx.Done():
		return "", nil, fmt.Errorf("%w: %v", types.ErrTimeout, ctx.Err())
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return "", nil, fmt.Errorf("set language %q: %w", lang, err)
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			return "", nil, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(imageBytes); err != nil {
		return "", nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", nil, fmt.Errorf("recognize: %w", err)
	}

	var confidences []float64
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		for _, box := range boxes {
			confidences = append(confidences, box.Confidence)
		}
	}

	return strings.TrimSpace(text), confidences, nil
}

func averageConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
