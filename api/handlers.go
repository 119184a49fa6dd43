package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Balaji2327/Devsparks/barcode"
	"github.com/Balaji2327/Devsparks/fields"
	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/ocr"
)

// maxImageBytes caps uploaded and proxied image payloads.
const maxImageBytes = 10 << 20

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrDomainNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNoFixture):
		return http.StatusNotFound
	case errors.Is(err, types.ErrExtractionIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// detachedContext derives the downstream context for extraction, OCR and
// catalog calls. A caller disconnect must not abort an in-flight browser
// session or provider call; the per-call timeouts remain the only bound, and
// the operation releases its resources when it completes or times out.
func detachedContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleExtract(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	mode := types.Mode(c.DefaultQuery("mode", string(types.ModeAuto)))
	record, err := s.extractor.Extract(detachedContext(c), types.ExtractionRequest{
		URL:  rawURL,
		Mode: mode,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// imageIntake is the common image input shape: either a multipart upload
// under the "image" field, or a JSON body pointing at a fetchable URL.
type imageIntake struct {
	ImageURL string `json:"imageUrl"`
	Provider string `json:"provider"`
	Language string `json:"lang"`
	Fast     bool   `json:"fast"`
	Lookup   bool   `json:"lookup"`
}

// readImage resolves the image bytes plus the accompanying options from
// either intake form.
func (s *Server) readImage(c *gin.Context) ([]byte, imageIntake, error) {
	var opts imageIntake

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("image")
		if err != nil {
			return nil, opts, types.ErrInvalidInput
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil || len(data) == 0 {
			return nil, opts, types.ErrInvalidInput
		}
		opts.Provider = c.PostForm("provider")
		opts.Language = c.PostForm("lang")
		opts.Fast = c.PostForm("fast") == "true"
		opts.Lookup = c.PostForm("lookup") == "true"
		return data, opts, nil
	}

	if err := c.ShouldBindJSON(&opts); err != nil || opts.ImageURL == "" {
		return nil, opts, types.ErrInvalidInput
	}
	data, err := s.fetchImage(c, opts.ImageURL)
	if err != nil {
		return nil, opts, err
	}
	return data, opts, nil
}

func (s *Server) fetchImage(c *gin.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, types.ErrInvalidInput
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, types.ErrInvalidInput
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, types.ErrExtractionFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warnf("image fetch returned %d for %s", resp.StatusCode, rawURL)
		return nil, types.ErrExtractionFailed
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil || len(data) == 0 {
		return nil, types.ErrExtractionFailed
	}
	return data, nil
}

func (s *Server) handleOCR(c *gin.Context) {
	imageBytes, opts, err := s.readImage(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	recognizer := s.ocr.Select()
	if opts.Provider != "" {
		recognizer, err = s.ocr.Get(types.Provider(opts.Provider))
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}

	// Normalization happens once here so every provider sees the same
	// canonical image.
	if normalized, err := ocr.Preprocess(imageBytes); err == nil {
		imageBytes = normalized
	} else {
		s.logger.Debugf("image preprocessing skipped: %v", err)
	}

	start := time.Now()
	result, err := recognizer.Recognize(detachedContext(c), types.OCRRequest{
		ImageBytes: imageBytes,
		Provider:   recognizer.Name(),
		Language:   lang,
		FastMode:   opts.Fast,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider":       result.ProviderUsed,
		"confidence":     result.Confidence,
		"extractedText":  textLines(result.Text),
		"detectedFields": fields.Parse(result.Text),
		"elapsedMs":      time.Since(start).Milliseconds(),
	})
}

// textLines splits recognized text into trimmed non-empty lines.
func textLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func (s *Server) handleBarcodeDecode(c *gin.Context) {
	imageBytes, opts, err := s.readImage(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	code, err := barcode.Decode(imageBytes)
	if err != nil {
		s.fail(c, err)
		return
	}
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}

	response := gin.H{"found": true, "barcode": code}
	if opts.Lookup {
		info := &types.ProductInfo{Found: false}
		if barcode.ValidateCode(code) == nil {
			if resolved, err := s.catalog.Lookup(detachedContext(c), code); err == nil {
				info = resolved
			}
		}
		response["productInfo"] = info
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) handleBarcodeLookup(c *gin.Context) {
	code := c.Param("code")
	info, err := s.catalog.Lookup(detachedContext(c), code)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleImageProxy(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	data, err := s.fetchImage(c, rawURL)
	if err != nil {
		s.fail(c, err)
		return
	}

	contentType := http.DetectContentType(data)
	c.Data(http.StatusOK, contentType, data)
}
