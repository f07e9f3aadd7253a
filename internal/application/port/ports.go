package port

import (
	"context"
	"time"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

// OCREngine recognizes text in a raster image
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, language string) (entity.RecognizedText, error)
}

// ImageEnhancer prepares an image for OCR
type ImageEnhancer interface {
	Enhance(ctx context.Context, data []byte) ([]byte, error)
}

// PDFTextExtractor reads the embedded text layer of a PDF
type PDFTextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Transcriber converts speech to text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// DocumentFetcher downloads a document from a URL
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*entity.RemoteDocument, error)
}

// RequestBuilder renders the extraction prompt for an engine and model
type RequestBuilder interface {
	Build(engine, model, text string) (extraction.Request, error)
}

// ExtractionClient sends an extraction request and returns the raw reply
type ExtractionClient interface {
	// CheckEngine fails with *entity.ConfigurationError when engine has no credentials
	CheckEngine(engine string) error
	Generate(ctx context.Context, req extraction.Request) (string, error)
}

// InvoiceNormalizer turns a raw model reply into an InvoiceDocument
type InvoiceNormalizer interface {
	Normalize(raw string) (*entity.InvoiceDocument, error)
}

// MetricsRecorder receives request, provider and acquisition observations
type MetricsRecorder interface {
	ObserveRequest(source, engine, outcome string, elapsed time.Duration)
	ObserveProviderCall(engine, model string, elapsed time.Duration, err error)
	ObserveAcquisition(source string, confidence float64, err error)
}
