package ocr

import (
	"context"
	"fmt"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// Recognizer is the single contract all four recognition strategies satisfy.
type Recognizer interface {
	Name() types.Provider
	// Usable reports whether the provider can currently serve requests
	// (local always can; cloud and generative need credentials).
	Usable() bool
	Recognize(ctx context.Context, req types.OCRRequest) (*types.OCRResult, error)
}

// Registry holds the providers constructed once at startup. Providers are
// explicit dependency objects, never re-created per call and never global.
type Registry struct {
	providers  map[types.Provider]Recognizer
	preference []types.Provider
	logger     types.Logger
}

// NewRegistry wires the four providers from process configuration.
func NewRegistry(config *types.Config, logger types.Logger) *Registry {
	local := NewLocalProvider(logger)
	vision := NewVisionProvider(config, logger)
	generative := NewGenerativeProvider(config, logger)
	hybrid := NewHybridProvider(vision, local, generative, logger)

	return &Registry{
		providers: map[types.Provider]Recognizer{
			types.ProviderLocal:       local,
			types.ProviderCloudVision: vision,
			types.ProviderGenerative:  generative,
			types.ProviderHybrid:      hybrid,
		},
		preference: config.OCRPreference,
		logger:     logger,
	}
}

// Get returns the named provider, or ErrProviderUnavailable when it exists
// but cannot currently serve (e.g. missing credentials).
func (r *Registry) Get(name types.Provider) (Recognizer, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", types.ErrInvalidInput, name)
	}
	if !p.Usable() {
		return nil, fmt.Errorf("%w: %s is not configured", types.ErrProviderUnavailable, name)
	}
	return p, nil
}

// Select applies the provider selection policy when the caller did not name
// one: honor the operator-configured preference order filtered to usable
// providers; otherwise default to generative if configured, else local.
func (r *Registry) Select() Recognizer {
	for _, name := range r.preference {
		if p, ok := r.providers[name]; ok && p.Usable() {
			return p
		}
	}
	if p := r.providers[types.ProviderGenerative]; p != nil && p.Usable() {
		return p
	}
	return r.providers[types.ProviderLocal]
}
