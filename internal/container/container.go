package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/application/service"
	"github.com/garyjia/vat-invoice-ocr/internal/config"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/fetch"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/metrics"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/pdf"
	"github.com/garyjia/vat-invoice-ocr/internal/invoice"
)

// Container manages all application dependencies and lifecycle.
// Components are created once in Start and are read-only afterwards.
type Container struct {
	config *config.Config
	logger *zap.Logger

	providers *ProviderBundle
	client    *extraction.Client
	metrics   *metrics.Metrics
	service   *service.ExtractionService

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start builds the service graph:
// 1. Metrics
// 2. Provider clients and the extraction client
// 3. Acquisition collaborators (OCR, enhancer, PDF, fetcher)
// 4. Normalizer and the extraction service
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	c.metrics = metrics.New()

	providers, err := ProvideProviders(ctx, c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}
	c.providers = providers

	builder, client, err := ProvideExtraction(c.config, providers, c.logger)
	if err != nil {
		c.closeProviders()
		return fmt.Errorf("failed to initialize extraction: %w", err)
	}
	c.client = client

	ocrEngine, err := ProvideOCR(&c.config.OCR, c.logger)
	if err != nil {
		c.closeProviders()
		return fmt.Errorf("failed to initialize OCR: %w", err)
	}

	pdfExtractor, err := pdf.New(c.config.PDF.Backend, c.config.PDF.MaxPages)
	if err != nil {
		c.closeProviders()
		return fmt.Errorf("failed to initialize PDF extractor: %w", err)
	}

	fetcher := fetch.NewFetcher(fetch.Config{
		Timeout:  c.config.Fetch.Timeout,
		MaxBytes: c.config.Fetch.MaxBytes,
	}, c.logger)

	acquirer := service.NewAcquirer(
		ocrEngine,
		ProvideEnhancer(&c.config.Imaging, c.logger),
		pdfExtractor,
		&timedTranscriber{Transcriber: providers.Transcriber, timeout: c.config.Extraction.Timeout},
		fetcher,
		c.logger,
	)

	normalizer, err := invoice.NewNormalizer()
	if err != nil {
		c.closeProviders()
		return fmt.Errorf("failed to initialize normalizer: %w", err)
	}

	c.service = service.NewExtractionService(acquirer, builder, client, normalizer, c.metrics, c.logger)

	c.ready.Store(true)
	c.logger.Info("Container started successfully",
		zap.String("ocr_engine", ocrEngine.Name()),
		zap.String("pdf_backend", c.config.PDF.Backend))

	return nil
}

// Close releases provider clients. It is safe to call once.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	c.ready.Store(false)

	if err := c.closeProviders(); err != nil {
		c.logger.Error("Failed to close providers", zap.Error(err))
		return err
	}

	c.logger.Info("Container closed")
	return nil
}

func (c *Container) closeProviders() error {
	if c.providers == nil || c.providers.Gemini == nil {
		return nil
	}
	if err := c.providers.Gemini.Close(); err != nil {
		return fmt.Errorf("close gemini client: %w", err)
	}
	return nil
}

// IsReady reports whether Start completed
func (c *Container) IsReady() bool {
	return c.ready.Load()
}

// Config returns the configuration the container was built from
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Service returns the extraction service
func (c *Container) Service() *service.ExtractionService {
	return c.service
}

// Client returns the extraction provider client
func (c *Container) Client() *extraction.Client {
	return c.client
}

// Metrics returns the metrics registry
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}
