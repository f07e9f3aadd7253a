package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "fitz", cfg.PDF.Backend)
	assert.Equal(t, 60*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "whisper-1", cfg.OpenAI.WhisperModel)
	assert.Equal(t, "vi", cfg.OpenAI.Language)
	assert.Equal(t, 1000, cfg.Imaging.MinSide)
	assert.Empty(t, cfg.Gemini.APIKey, "missing keys are allowed at load time")
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
ocr:
  engine: azure
pdf:
  backend: pure
  max_pages: 3
fetch:
  timeout: 5s
logger:
  format: console
`), 0644))

	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	t.Setenv("AZURE_VISION_ENDPOINT", "https://vision.example.com")
	t.Setenv("AZURE_VISION_KEY", "azure-secret")
	t.Setenv("PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "azure", cfg.OCR.Engine)
	assert.Equal(t, "https://vision.example.com", cfg.OCR.Azure.Endpoint)
	assert.Equal(t, "azure-secret", cfg.OCR.Azure.APIKey)
	assert.Equal(t, "gemini-secret", cfg.Gemini.APIKey)
	assert.Equal(t, "pure", cfg.PDF.Backend)
	assert.Equal(t, 3, cfg.PDF.MaxPages)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OCR_TEST_ONLY=from-file\nOCR_TEST_SET=from-file\n"), 0644))

	t.Setenv("OCR_TEST_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("OCR_TEST_ONLY") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("OCR_TEST_ONLY"))
	assert.Equal(t, "from-env", os.Getenv("OCR_TEST_SET"))

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))
}

func validConfig() *Config {
	return &Config{
		Server:     ServerConfig{Port: 5000, MaxUploadBytes: 1 << 20},
		Metrics:    MetricsConfig{Port: 9090},
		Extraction: ExtractionConfig{Timeout: time.Minute},
		OCR:        OCRConfig{Engine: "Tesseract", Timeout: time.Minute, Tesseract: TesseractConfig{Binary: "tesseract"}},
		Imaging:    ImagingConfig{MinSide: 1000, TargetSide: 2000, MaxSide: 8000},
		PDF:        PDFConfig{Backend: "FITZ"},
		Fetch:      FetchConfig{Timeout: time.Second, MaxBytes: 1},
		Logger:     LoggerConfig{Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "fitz", cfg.PDF.Backend)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"metrics port clash", func(c *Config) { c.Metrics.Port = c.Server.Port }},
		{"unknown ocr engine", func(c *Config) { c.OCR.Engine = "paddle" }},
		{"no tesseract binary", func(c *Config) { c.OCR.Tesseract.Binary = "" }},
		{"unknown pdf backend", func(c *Config) { c.PDF.Backend = "poppler" }},
		{"target below min", func(c *Config) { c.Imaging.TargetSide = 10 }},
		{"max below target", func(c *Config) { c.Imaging.MaxSide = 100 }},
		{"zero fetch timeout", func(c *Config) { c.Fetch.Timeout = 0 }},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:5000", ServerConfig{Host: "0.0.0.0", Port: 5000}.Address())
	assert.Equal(t, ":9090", MetricsConfig{Port: 9090}.Address())
}
