package ocr

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
)

func TestRegistry_SelectDefaultsToLocalWithoutCredentials(t *testing.T) {
	config := types.DefaultConfig()
	registry := NewRegistry(config, logrus.New())

	selected := registry.Select()
	assert.Equal(t, types.ProviderLocal, selected.Name())
}

func TestRegistry_SelectPrefersGenerativeWhenConfigured(t *testing.T) {
	config := types.DefaultConfig()
	config.GeminiAPIKey = "test-key"
	registry := NewRegistry(config, logrus.New())

	selected := registry.Select()
	assert.Equal(t, types.ProviderGenerative, selected.Name())
}

func TestRegistry_SelectHonorsPreferenceOrder(t *testing.T) {
	config := types.DefaultConfig()
	config.GeminiAPIKey = "test-key"
	config.VisionAPIKey = "vision-key"
	config.OCRPreference = []types.Provider{types.ProviderCloudVision, types.ProviderGenerative}
	registry := NewRegistry(config, logrus.New())

	selected := registry.Select()
	assert.Equal(t, types.ProviderCloudVision, selected.Name())
}

func TestRegistry_SelectSkipsUnusablePreferred(t *testing.T) {
	config := types.DefaultConfig()
	config.OCRPreference = []types.Provider{types.ProviderCloudVision, types.ProviderLocal}
	registry := NewRegistry(config, logrus.New())

	// No vision key, so the preferred cloud provider is filtered out.
	selected := registry.Select()
	assert.Equal(t, types.ProviderLocal, selected.Name())
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	registry := NewRegistry(types.DefaultConfig(), logrus.New())

	_, err := registry.Get("easyocr")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestRegistry_GetUnconfiguredCloudProvider(t *testing.T) {
	registry := NewRegistry(types.DefaultConfig(), logrus.New())

	_, err := registry.Get(types.ProviderCloudVision)
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestRegistry_GetConfiguredProvider(t *testing.T) {
	config := types.DefaultConfig()
	config.VisionAPIKey = "vision-key"
	registry := NewRegistry(config, logrus.New())

	p, err := registry.Get(types.ProviderCloudVision)
	require.NoError(t, err)
	assert.Equal(t, types.ProviderCloudVision, p.Name())
}

func TestRegistry_HybridAlwaysUsable(t *testing.T) {
	registry := NewRegistry(types.DefaultConfig(), logrus.New())

	p, err := registry.Get(types.ProviderHybrid)
	require.NoError(t, err)
	assert.True(t, p.Usable())
}
