// Package api exposes the extraction, OCR and barcode pipelines over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Balaji2327/Devsparks/barcode"
	"github.com/Balaji2327/Devsparks/extractor"
	"github.com/Balaji2327/Devsparks/internal/types"
	"github.com/Balaji2327/Devsparks/ocr"
)

// extractionService is the slice of the strategy controller the handlers use.
type extractionService interface {
	Extract(ctx context.Context, req types.ExtractionRequest) (*types.ProductRecord, error)
}

// ocrService is the slice of the provider registry the handlers use.
type ocrService interface {
	Get(name types.Provider) (ocr.Recognizer, error)
	Select() ocr.Recognizer
}

// lookupService resolves barcode values against the product catalog.
type lookupService interface {
	Lookup(ctx context.Context, code string) (*types.ProductInfo, error)
}

// Server wires the HTTP surface to the underlying pipelines.
type Server struct {
	engine    *gin.Engine
	config    *types.Config
	logger    types.Logger
	extractor extractionService
	ocr       ocrService
	catalog   lookupService
	fetcher   *http.Client
}

// NewServer builds the full server with production dependencies.
func NewServer(config *types.Config, logger types.Logger) *Server {
	return newServer(
		config,
		logger,
		extractor.NewController(config, logger),
		ocr.NewRegistry(config, logger),
		barcode.NewClient(config, logger),
	)
}

func newServer(config *types.Config, logger types.Logger, ext extractionService, reg ocrService, cat lookupService) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:    gin.New(),
		config:    config,
		logger:    logger,
		extractor: ext,
		ocr:       reg,
		catalog:   cat,
		fetcher:   &http.Client{Timeout: config.FetchTimeout},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(s.logger))
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/extract", s.handleExtract)
		api.POST("/ocr", s.handleOCR)
		api.POST("/barcode/decode", s.handleBarcodeDecode)
		api.GET("/barcode/lookup/:code", s.handleBarcodeLookup)
		api.GET("/image-proxy", s.handleImageProxy)
	}
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	s.logger.Infof("listening on :%s", s.config.Port)
	return s.engine.Run(":" + s.config.Port)
}
