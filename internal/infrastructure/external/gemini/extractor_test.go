package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

func TestExtractor_WithoutKey(t *testing.T) {
	e, err := NewExtractor(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, extraction.EngineGemini, e.Engine())

	_, err = e.Generate(context.Background(), extraction.Request{Model: "gemini-flash-latest"})
	var cfgErr *entity.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Setting)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text("```json\n{\"items\": "), genai.Text("[]}\n```")},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"items\": []}\n```", text)
}

func TestResponseText_Empty(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	})
	assert.ErrorContains(t, err, "block reason")

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}, FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorContains(t, err, "finish reason")
}
