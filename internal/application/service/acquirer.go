package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/application/port"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

const (
	// OCRLanguage is the language hint passed to the OCR engine
	OCRLanguage = "vie+eng"

	// MinPDFTextRunes separates text PDFs from scanned ones
	MinPDFTextRunes = 50

	pdfTextConfidence    = 0.9
	scannedPDFConfidence = 0.1
	directTextConfidence = 1.0
)

var pdfMagic = []byte("%PDF-")

// Acquirer turns an uploaded file, pasted text, audio clip or URL into the
// text handed to the extraction model.
type Acquirer struct {
	ocr         port.OCREngine
	enhancer    port.ImageEnhancer
	pdf         port.PDFTextExtractor
	transcriber port.Transcriber
	fetcher     port.DocumentFetcher
	logger      *zap.Logger
}

// NewAcquirer creates an Acquirer
func NewAcquirer(
	ocr port.OCREngine,
	enhancer port.ImageEnhancer,
	pdf port.PDFTextExtractor,
	transcriber port.Transcriber,
	fetcher port.DocumentFetcher,
	logger *zap.Logger,
) *Acquirer {
	return &Acquirer{
		ocr:         ocr,
		enhancer:    enhancer,
		pdf:         pdf,
		transcriber: transcriber,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// AcquireFile reads an uploaded image or PDF. The content type, or the
// %PDF- magic when the type is missing or generic, selects the PDF path.
func (a *Acquirer) AcquireFile(ctx context.Context, data []byte, contentType string) (*entity.Acquired, error) {
	if len(data) == 0 {
		return nil, acquisitionError(entity.SourceFile, entity.ErrMissingPayload)
	}
	if isPDF(data, contentType) {
		return a.acquirePDF(ctx, data)
	}
	if err := checkImageType(contentType); err != nil {
		return nil, acquisitionError(entity.SourceFile, err)
	}
	return a.acquireImage(ctx, data)
}

// AcquireText trims pasted text; blank text is a missing payload
func (a *Acquirer) AcquireText(_ context.Context, text string) (*entity.Acquired, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, acquisitionError(entity.SourceText, entity.ErrMissingPayload)
	}
	return &entity.Acquired{Text: text, Confidence: directTextConfidence, Source: entity.SourceText}, nil
}

// AcquireVoice transcribes audio and routes the transcript as pasted text
func (a *Acquirer) AcquireVoice(ctx context.Context, audio []byte, mimeType string) (*entity.Acquired, error) {
	if len(audio) == 0 {
		return nil, acquisitionError(entity.SourceVoice, entity.ErrMissingPayload)
	}

	transcript, err := a.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return nil, acquisitionError(entity.SourceVoice, err)
	}
	a.logger.Info("Voice transcribed", zap.Int("transcript_length", len(transcript)))

	acquired, err := a.AcquireText(ctx, transcript)
	if err != nil {
		return nil, acquisitionError(entity.SourceVoice, fmt.Errorf("empty transcript: %w", entity.ErrMissingPayload))
	}
	acquired.Source = entity.SourceVoice
	return acquired, nil
}

// AcquireURL downloads the document and routes it by response content type
func (a *Acquirer) AcquireURL(ctx context.Context, rawURL string) (*entity.Acquired, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, acquisitionError(entity.SourceURL, entity.ErrMissingPayload)
	}

	doc, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, acquisitionError(entity.SourceURL, err)
	}
	if len(doc.Data) == 0 {
		return nil, acquisitionError(entity.SourceURL, fmt.Errorf("empty response body: %w", entity.ErrMissingPayload))
	}

	var acquired *entity.Acquired
	switch {
	case isPDF(doc.Data, doc.ContentType):
		acquired, err = a.acquirePDF(ctx, doc.Data)
	default:
		if err := checkImageType(doc.ContentType); err != nil {
			return nil, acquisitionError(entity.SourceURL, err)
		}
		acquired, err = a.acquireImage(ctx, doc.Data)
	}
	if err != nil {
		return nil, err
	}
	acquired.Source = entity.SourceURL
	return acquired, nil
}

func (a *Acquirer) acquirePDF(ctx context.Context, data []byte) (*entity.Acquired, error) {
	text, err := a.pdf.ExtractText(ctx, data)
	if err != nil {
		a.logger.Warn("PDF text extraction failed, treating as scanned", zap.Error(err))
		text = ""
	}
	text = strings.TrimSpace(text)

	confidence := pdfTextConfidence
	if utf8.RuneCountInString(text) < MinPDFTextRunes {
		// no OCR fallback for scanned PDFs
		confidence = scannedPDFConfidence
		a.logger.Warn("PDF has little or no text layer",
			zap.Int("runes", utf8.RuneCountInString(text)))
	}
	return &entity.Acquired{Text: text, Confidence: confidence, Source: entity.SourcePDF}, nil
}

func (a *Acquirer) acquireImage(ctx context.Context, data []byte) (*entity.Acquired, error) {
	image := data
	enhanced, err := a.enhancer.Enhance(ctx, data)
	switch {
	case err != nil:
		a.logger.Warn("Image enhancement failed, using original bytes", zap.Error(err))
	case len(enhanced) > 0:
		image = enhanced
	}

	result, err := a.ocr.Recognize(ctx, image, OCRLanguage)
	if err != nil {
		return nil, acquisitionError(entity.SourceImage, fmt.Errorf("%s OCR failed: %w", a.ocr.Name(), err))
	}

	a.logger.Info("Image recognized",
		zap.String("ocr_engine", a.ocr.Name()),
		zap.Int("text_length", len(result.Text)),
		zap.Float64("ocr_confidence", result.Confidence))

	return &entity.Acquired{
		Text:       strings.TrimSpace(result.Text),
		Confidence: normalizeConfidence(result.Confidence),
		Source:     entity.SourceImage,
	}, nil
}

// normalizeConfidence maps an engine score in [0,100] onto [0,1]
func normalizeConfidence(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score/100))
}

func isPDF(data []byte, contentType string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(data, pdfMagic)
}

// checkImageType rejects declared media types other than images. Missing
// or generic types are left to the OCR engine.
func checkImageType(contentType string) error {
	if strings.TrimSpace(contentType) == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%q: %w", contentType, entity.ErrUnsupportedMedia)
	}
	if strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream" {
		return nil
	}
	return fmt.Errorf("%s: %w", mediaType, entity.ErrUnsupportedMedia)
}

// acquisitionError wraps err for source. Configuration errors pass through
// so the caller can report them as such.
func acquisitionError(source string, err error) error {
	var cfgErr *entity.ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	var acqErr *entity.InputAcquisitionError
	if errors.As(err, &acqErr) {
		return err
	}
	return &entity.InputAcquisitionError{Source: source, Err: err}
}
