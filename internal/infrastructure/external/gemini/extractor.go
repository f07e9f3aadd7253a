package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

// Config holds Gemini connection settings
type Config struct {
	APIKey   string
	Endpoint string // optional API endpoint override
}

// Extractor implements extraction.Provider for the gemini engine
type Extractor struct {
	client *genai.Client
	logger *zap.Logger
}

// NewExtractor creates the Gemini provider. Without an API key no client is
// created and every call fails with a configuration error.
func NewExtractor(ctx context.Context, cfg Config, logger *zap.Logger) (*Extractor, error) {
	e := &Extractor{logger: logger}
	if cfg.APIKey == "" {
		return e, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	e.client = client
	return e, nil
}

// Close releases the underlying connection
func (e *Extractor) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Engine implements extraction.Provider
func (e *Extractor) Engine() string { return extraction.EngineGemini }

// CheckConfig implements extraction.Provider
func (e *Extractor) CheckConfig() error {
	if e.client == nil {
		return &entity.ConfigurationError{Provider: extraction.EngineGemini, Setting: "GEMINI_API_KEY"}
	}
	return nil
}

// Generate sends the prompt as a single user turn. Gemini has no JSON mode
// here; the reply may come back fenced and is unwrapped by the normalizer.
func (e *Extractor) Generate(ctx context.Context, req extraction.Request) (string, error) {
	if err := e.CheckConfig(); err != nil {
		return "", err
	}

	model := e.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		e.logger.Warn("Gemini reply truncated at max tokens",
			zap.String("model", req.Model),
			zap.Int("max_output_tokens", req.MaxOutputTokens))
	}
	if resp.UsageMetadata != nil {
		e.logger.Debug("Gemini usage",
			zap.String("model", req.Model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("candidates_tokens", resp.UsageMetadata.CandidatesTokenCount))
	}

	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil {
			return "", fmt.Errorf("no candidates from Gemini (block reason: %v)", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("no candidates from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts from Gemini (finish reason: %v)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
