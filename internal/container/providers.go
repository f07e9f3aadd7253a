// Package container builds the service graph from configuration and owns
// the lifetime of the clients it creates.
package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/application/port"
	"github.com/garyjia/vat-invoice-ocr/internal/config"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/external/gemini"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/external/ocr"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/external/openai"
	"github.com/garyjia/vat-invoice-ocr/internal/infrastructure/imageproc"
)

// ProviderBundle holds the extraction providers and the STT client
type ProviderBundle struct {
	Gemini      *gemini.Extractor
	OpenAI      *openai.Extractor
	Transcriber *openai.Transcriber
}

// ProvideProviders creates the Gemini and OpenAI adapters. Missing API keys
// are not an error here; requests for that engine fail with a
// configuration error instead.
func ProvideProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ProviderBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	geminiExtractor, err := gemini.NewExtractor(ctx, gemini.Config{
		APIKey:   cfg.Gemini.APIKey,
		Endpoint: cfg.Gemini.Endpoint,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	openaiCfg := openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		WhisperModel: cfg.OpenAI.WhisperModel,
		Language:     cfg.OpenAI.Language,
	}

	logger.Info("Extraction providers created",
		zap.Bool("gemini_configured", cfg.Gemini.APIKey != ""),
		zap.Bool("openai_configured", cfg.OpenAI.APIKey != ""))

	return &ProviderBundle{
		Gemini:      geminiExtractor,
		OpenAI:      openai.NewExtractor(openaiCfg, logger),
		Transcriber: openai.NewTranscriber(openaiCfg, logger),
	}, nil
}

// ProvideExtraction creates the request builder and provider client
func ProvideExtraction(cfg *config.Config, providers *ProviderBundle, logger *zap.Logger) (*extraction.Builder, *extraction.Client, error) {
	prompts, err := extraction.LoadPrompts(cfg.Extraction.PromptsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	builder, err := extraction.NewBuilder(prompts)
	if err != nil {
		return nil, nil, err
	}
	client := extraction.NewClient(cfg.Extraction.Timeout, logger, providers.Gemini, providers.OpenAI)
	return builder, client, nil
}

// ProvideOCR creates the configured OCR engine
func ProvideOCR(cfg *config.OCRConfig, logger *zap.Logger) (port.OCREngine, error) {
	var engine port.OCREngine
	switch cfg.Engine {
	case "tesseract":
		engine = ocr.NewTesseract(ocr.TesseractConfig{
			Binary:      cfg.Tesseract.Binary,
			TessdataDir: cfg.Tesseract.TessdataDir,
			PSM:         cfg.Tesseract.PSM,
			OEM:         cfg.Tesseract.OEM,
		}, ocr.ExecRunner{Logger: logger}, logger)
	case "azure":
		engine = ocr.NewAzure(ocr.AzureConfig{
			Endpoint: cfg.Azure.Endpoint,
			APIKey:   cfg.Azure.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}

	logger.Info("OCR engine selected", zap.String("ocr_engine", engine.Name()))
	return &timedOCR{OCREngine: engine, timeout: cfg.Timeout}, nil
}

// ProvideEnhancer creates the image enhancer
func ProvideEnhancer(cfg *config.ImagingConfig, logger *zap.Logger) port.ImageEnhancer {
	return imageproc.NewEnhancer(imageproc.Config{
		MinSide:      cfg.MinSide,
		TargetSide:   cfg.TargetSide,
		MaxSide:      cfg.MaxSide,
		SharpenSigma: cfg.SharpenSigma,
		ClipPercent:  cfg.ClipPercent,
	}, logger)
}

// timedOCR bounds each recognition call
type timedOCR struct {
	port.OCREngine
	timeout time.Duration
}

func (t *timedOCR) Recognize(ctx context.Context, image []byte, language string) (entity.RecognizedText, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.OCREngine.Recognize(ctx, image, language)
}

// timedTranscriber bounds each speech-to-text call
type timedTranscriber struct {
	port.Transcriber
	timeout time.Duration
}

func (t *timedTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.Transcriber.Transcribe(ctx, audio, mimeType)
}
