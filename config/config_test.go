package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 45*time.Second, cfg.BrowserTimeout)
	assert.NotEmpty(t, cfg.UserAgent)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, []types.Provider{types.ProviderGenerative, types.ProviderLocal}, cfg.OCRPreference)
	assert.NotEmpty(t, cfg.BarcodeBaseURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LABELLENS_SERVER_PORT", "9090")
	t.Setenv("LABELLENS_OCR_GEMINI_MODEL", "gemini-1.5-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
}

func TestValidate_RejectsBadPreference(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.OCRPreference = []types.Provider{"tesseract5000"}

	err := validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown OCR provider")
}

func TestValidate_RejectsNonPositiveTimeouts(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.FetchTimeout = 0
	assert.Error(t, validate(cfg))

	cfg = types.DefaultConfig()
	cfg.BrowserTimeout = -time.Second
	assert.Error(t, validate(cfg))
}
