package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

// Extractor implements extraction.Provider for the gpt engine
type Extractor struct {
	client *openai.Client
	logger *zap.Logger
}

// NewExtractor creates a GPT extraction provider. It can be built without
// an API key; calls then fail with a configuration error.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: newClient(cfg),
		logger: logger,
	}
}

// Engine implements extraction.Provider
func (e *Extractor) Engine() string { return extraction.EngineGPT }

// CheckConfig implements extraction.Provider
func (e *Extractor) CheckConfig() error {
	if e.client == nil {
		return missingKey()
	}
	return nil
}

// Generate sends the prompt as a chat completion and returns the first choice
func (e *Extractor) Generate(ctx context.Context, req extraction.Request) (string, error) {
	if err := e.CheckConfig(); err != nil {
		return "", err
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
		Messages:    messages,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		e.logger.Warn("OpenAI reply truncated at max tokens",
			zap.String("model", req.Model),
			zap.Int("max_tokens", req.MaxOutputTokens))
	}

	e.logger.Debug("OpenAI usage",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return choice.Message.Content, nil
}
