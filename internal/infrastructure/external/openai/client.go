package openai

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

const providerName = "openai"

// Config holds OpenAI connection settings
type Config struct {
	APIKey       string
	BaseURL      string // optional, for proxies and tests
	WhisperModel string
	Language     string // transcription language hint
}

// newClient returns nil when no API key is configured
func newClient(cfg Config) *openai.Client {
	if cfg.APIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func missingKey() error {
	return &entity.ConfigurationError{Provider: providerName, Setting: "OPENAI_API_KEY"}
}
