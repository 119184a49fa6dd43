package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Balaji2327/Devsparks/internal/types"
)

// Load builds the process configuration from config.yaml (optional) and
// LABELLENS_* environment variables, falling back to defaults.
func Load() (*types.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/labellens/")

	v.SetEnvPrefix("LABELLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; environment variables and defaults apply.
	}

	cfg := &types.Config{
		Port:           v.GetString("server.port"),
		Environment:    v.GetString("server.environment"),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		FetchTimeout:   v.GetDuration("fetch.timeout"),
		BrowserTimeout: v.GetDuration("browser.timeout"),
		RequestDelay:   v.GetDuration("fetch.request_delay"),
		UserAgent:      v.GetString("fetch.user_agent"),
		VisionAPIKey:   v.GetString("ocr.vision_api_key"),
		VisionBaseURL:  v.GetString("ocr.vision_base_url"),
		GeminiAPIKey:   v.GetString("ocr.gemini_api_key"),
		GeminiBaseURL:  v.GetString("ocr.gemini_base_url"),
		GeminiModel:    v.GetString("ocr.gemini_model"),
		BarcodeBaseURL: v.GetString("barcode.base_url"),
		BarcodeTimeout: v.GetDuration("barcode.timeout"),
	}

	for _, p := range v.GetStringSlice("ocr.preference") {
		cfg.OCRPreference = append(cfg.OCRPreference, types.Provider(p))
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := types.DefaultConfig()

	v.SetDefault("server.port", def.Port)
	v.SetDefault("server.environment", def.Environment)
	v.SetDefault("server.allowed_origins", def.AllowedOrigins)

	v.SetDefault("fetch.timeout", def.FetchTimeout)
	v.SetDefault("fetch.request_delay", def.RequestDelay)
	v.SetDefault("fetch.user_agent", def.UserAgent)
	v.SetDefault("browser.timeout", def.BrowserTimeout)

	v.SetDefault("ocr.vision_base_url", def.VisionBaseURL)
	v.SetDefault("ocr.gemini_base_url", def.GeminiBaseURL)
	v.SetDefault("ocr.gemini_model", def.GeminiModel)
	v.SetDefault("ocr.preference", []string{"generative", "local"})

	v.SetDefault("barcode.base_url", def.BarcodeBaseURL)
	v.SetDefault("barcode.timeout", def.BarcodeTimeout)
}

func validate(cfg *types.Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", cfg.FetchTimeout)
	}
	if cfg.BrowserTimeout <= 0 {
		return fmt.Errorf("browser timeout must be positive, got %v", cfg.BrowserTimeout)
	}
	for _, p := range cfg.OCRPreference {
		switch p {
		case types.ProviderLocal, types.ProviderCloudVision, types.ProviderGenerative, types.ProviderHybrid:
		default:
			return fmt.Errorf("unknown OCR provider in preference list: %q", p)
		}
	}
	if cfg.BarcodeTimeout <= 0 {
		cfg.BarcodeTimeout = 10 * time.Second
	}
	return nil
}
