package types

import "time"

// Platform identifies the retail platform a URL belongs to.
type Platform string

const (
	PlatformAmazon    Platform = "Amazon"
	PlatformFlipkart  Platform = "Flipkart"
	PlatformMyntra    Platform = "Myntra"
	PlatformNykaa     Platform = "Nykaa"
	PlatformBigBasket Platform = "BigBasket"
	PlatformJioMart   Platform = "JioMart"
	PlatformUnknown   Platform = "Unknown"
)

// Mode selects the extraction strategy for a request.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeSandbox Mode = "sandbox"
	ModeHTML    Mode = "html"
	ModeBrowser Mode = "browser"
)

// Valid reports whether the mode is one of the supported values.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeSandbox, ModeHTML, ModeBrowser:
		return true
	}
	return false
}

// Provider identifies an OCR recognition strategy.
type Provider string

const (
	ProviderLocal       Provider = "local"
	ProviderCloudVision Provider = "cloud-vision"
	ProviderGenerative  Provider = "generative"
	ProviderHybrid      Provider = "hybrid"
)

// ExtractionRequest is the immutable per-call input to the extraction pipeline.
type ExtractionRequest struct {
	URL  string
	Mode Mode
}

// ProductRecord is the common product shape produced by all extraction tiers.
// Every field except Platform and URL is nullable; absence is a valid outcome.
type ProductRecord struct {
	Platform    Platform `json:"platform"`
	URL         string   `json:"url"`
	ProductName *string  `json:"productName"`
	Brand       *string  `json:"brand"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Image       *string  `json:"image"`
	Rating      *float64 `json:"rating"`
	RatingCount *int     `json:"ratingCount"`
}

// Complete reports whether the record passes the minimal-completeness check:
// at least one of name, brand, price or image is present.
func (r *ProductRecord) Complete() bool {
	if r == nil {
		return false
	}
	return r.ProductName != nil || r.Brand != nil || r.Price != nil || r.Image != nil
}

// OCRRequest is the stateless per-call input to the OCR provider layer.
type OCRRequest struct {
	ImageBytes []byte
	Provider   Provider
	Language   string
	FastMode   bool
}

// OCRResult is the output of one recognition call. Confidence is a 0-100
// scalar whose meaning differs by provider.
type OCRResult struct {
	Text         string
	Confidence   float64
	ProviderUsed Provider
}

// DetectedField is one regulated label attribute derived from OCR text.
type DetectedField struct {
	Text       *string `json:"text"`
	Confidence float64 `json:"confidence"`
	Compliant  bool    `json:"compliant"`
}

// DetectedFieldSet maps the seven regulated label attributes to their
// detection results. Every slot is always populated, even on a total miss.
type DetectedFieldSet struct {
	ProductName     DetectedField `json:"productName"`
	NetQuantity     DetectedField `json:"netQuantity"`
	MRP             DetectedField `json:"mrp"`
	Manufacturer    DetectedField `json:"manufacturer"`
	CountryOfOrigin DetectedField `json:"countryOfOrigin"`
	ConsumerCare    DetectedField `json:"consumerCare"`
	BestBefore      DetectedField `json:"bestBefore"`
}

// ProductInfo is the shape returned by the external barcode catalog.
type ProductInfo struct {
	Found       bool   `json:"found"`
	ProductName string `json:"productName,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	UPC         string `json:"upc,omitempty"`
	EAN         string `json:"ean,omitempty"`
}

// Config holds the process-wide configuration. It is populated once at
// startup and read-only afterwards.
type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	FetchTimeout   time.Duration
	BrowserTimeout time.Duration
	RequestDelay   time.Duration
	UserAgent      string

	VisionAPIKey   string
	VisionBaseURL  string
	GeminiAPIKey   string
	GeminiBaseURL  string
	GeminiModel    string
	OCRPreference  []Provider
	BarcodeBaseURL string
	BarcodeTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
		FetchTimeout:   15 * time.Second,
		BrowserTimeout: 45 * time.Second,
		RequestDelay:   500 * time.Millisecond,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		VisionBaseURL:  "https://vision.googleapis.com",
		GeminiBaseURL:  "https://generativelanguage.googleapis.com",
		GeminiModel:    "gemini-1.5-flash",
		OCRPreference:  []Provider{ProviderGenerative, ProviderLocal},
		BarcodeBaseURL: "https://api.upcitemdb.com/prod/trial",
		BarcodeTimeout: 10 * time.Second,
	}
}

// Logger defines the logging interface implemented by logrus.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
