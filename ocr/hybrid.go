package ocr

import (
	"context"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// baseRecognizer is what the hybrid needs from its base layer.
type baseRecognizer interface {
	Usable() bool
	Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error)
}

// transcriptCleaner is the cleanup stage contract.
type transcriptCleaner interface {
	Usable() bool
	Cleanup(ctx context.Context, transcript string) (string, error)
}

// HybridProvider runs the cloud document-text API as its base layer,
// silently substituting the local recognizer when the cloud is unavailable,
// then feeds the base transcription to the generative model for noise
// cleanup. The reported confidence is the base layer's; cleanup does not
// produce its own.
type HybridProvider struct {
	cloud    baseRecognizer
	fallback baseRecognizer
	cleaner  transcriptCleaner
	logger   types.Logger
}

// NewHybridProvider wires the hybrid from the already-constructed providers.
func NewHybridProvider(cloud *VisionProvider, fallback *LocalProvider, cleaner *GenerativeProvider, logger types.Logger) *HybridProvider {
	return &HybridProvider{cloud: cloud, fallback: fallback, cleaner: cleaner, logger: logger}
}

func (p *HybridProvider) Name() types.Provider { return types.ProviderHybrid }

// Usable is always true: the local base layer needs no credentials.
func (p *HybridProvider) Usable() bool { return true }

// Recognize produces the base transcription and optionally cleans it up.
func (p *HybridProvider) Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error) {
	base, err := p.baseLayer(ctx, req)
	if err != nil {
		return nil, err
	}

	text := base.Text
	if p.cleaner.Usable() && text != "" {
		cleaned, err := p.cleaner.Cleanup(ctx, text)
		if err != nil {
			p.logger.Warnf("Transcript cleanup failed, keeping base text: %v", err)
		} else if cleaned != "" {
			text = cleaned
		}
	}

	return &types.OCRResult{
		Text:         text,
		Confidence:   base.Confidence,
		ProviderUsed: types.ProviderHybrid,
	}, nil
}

func (p *HybridProvider) baseLayer(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error) {
	if p.cloud.Usable() {
		result, err := p.cloud.Recognize(ctx, req)
		if err == nil {
			return result, nil
		}
		p.logger.Warnf("Cloud base layer failed, substituting local recognizer: %v", err)
	}
	return p.fallback.Recognize(ctx, req)
}
