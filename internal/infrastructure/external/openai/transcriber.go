package openai

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Transcriber converts voice recordings to text with Whisper
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// NewTranscriber creates a Whisper transcriber
func NewTranscriber(cfg Config, logger *zap.Logger) *Transcriber {
	model := cfg.WhisperModel
	if model == "" {
		model = openai.Whisper1
	}
	language := cfg.Language
	if language == "" {
		language = "vi"
	}
	return &Transcriber{
		client:   newClient(cfg),
		model:    model,
		language: language,
		logger:   logger,
	}
}

// Transcribe returns the transcript of audio. The MIME type only picks the
// file extension Whisper uses to detect the container format.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if t.client == nil {
		return "", missingKey()
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + audioExtension(mimeType),
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("Whisper transcription failed: %w", err)
	}

	t.logger.Info("Audio transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_length", len(resp.Text)))

	return resp.Text, nil
}

var audioExtensions = map[string]string{
	"audio/webm":  ".webm",
	"audio/ogg":   ".ogg",
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/mp4":   ".m4a",
	"audio/x-m4a": ".m4a",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/wave":  ".wav",
	"audio/flac":  ".flac",
}

func audioExtension(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ".webm"
	}
	if ext, ok := audioExtensions[mediaType]; ok {
		return ext
	}
	return ".webm"
}
