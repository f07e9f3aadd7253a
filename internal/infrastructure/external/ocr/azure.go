package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// AzureConfig configures the Azure Computer Vision engine
type AzureConfig struct {
	Endpoint string
	APIKey   string
}

// Azure recognizes printed text with Azure Computer Vision v3.0 OCR
type Azure struct {
	client *computervision.BaseClient
	cfg    AzureConfig
	logger *zap.Logger
}

// NewAzure creates the Azure engine. Missing credentials surface per call.
func NewAzure(cfg AzureConfig, logger *zap.Logger) *Azure {
	a := &Azure{cfg: cfg, logger: logger}
	if cfg.Endpoint != "" && cfg.APIKey != "" {
		client := computervision.New(cfg.Endpoint)
		client.Authorizer = autorest.NewCognitiveServicesAuthorizer(cfg.APIKey)
		a.client = &client
	}
	return a
}

// Name identifies the engine in logs and metrics
func (a *Azure) Name() string { return "azure" }

// Recognize runs OCR on image. Azure auto-detects the language (Vietnamese
// is not one of its OCR hints) and returns no confidence, so the score is
// estimated from the recognized text.
func (a *Azure) Recognize(ctx context.Context, image []byte, _ string) (Result, error) {
	if a.client == nil {
		setting := "AZURE_VISION_KEY"
		if a.cfg.Endpoint == "" {
			setting = "AZURE_VISION_ENDPOINT"
		}
		return Result{}, &entity.ConfigurationError{Provider: "azure", Setting: setting}
	}

	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(image)),
		computervision.OcrLanguagesUnk,
	)
	if err != nil {
		return Result{}, fmt.Errorf("azure ocr: %w", err)
	}

	text := joinOCRLines(result)
	if text == "" {
		return Result{}, errors.New("azure ocr: no text recognized")
	}

	conf := heuristicConfidence(text)
	a.logger.Debug("Azure OCR finished",
		zap.Int("text_length", len(text)),
		zap.Float64("confidence", conf))
	return Result{Text: text, Confidence: conf}, nil
}

func joinOCRLines(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}
	var lines []string
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			words := make([]string, 0, len(*line.Words))
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			if len(words) > 0 {
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(lines, "\n")
}
