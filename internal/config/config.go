package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Imaging    ImagingConfig    `mapstructure:"imaging"`
	PDF        PDFConfig        `mapstructure:"pdf"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// MetricsConfig holds the Prometheus listener. Port 0 disables it.
type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// OpenAIConfig holds OpenAI chat and Whisper configuration
type OpenAIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	WhisperModel string `mapstructure:"whisper_model"`
	Language     string `mapstructure:"language"`
}

// ExtractionConfig holds extraction call settings
type ExtractionConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	PromptsPath string        `mapstructure:"prompts_path"` // empty uses the embedded prompts
}

// OCRConfig selects and configures the OCR engine
type OCRConfig struct {
	Engine    string          `mapstructure:"engine"` // tesseract or azure
	Timeout   time.Duration   `mapstructure:"timeout"`
	Tesseract TesseractConfig `mapstructure:"tesseract"`
	Azure     AzureConfig     `mapstructure:"azure"`
}

// TesseractConfig holds the tesseract CLI settings
type TesseractConfig struct {
	Binary      string `mapstructure:"binary"`
	TessdataDir string `mapstructure:"tessdata_dir"`
	PSM         int    `mapstructure:"psm"`
	OEM         int    `mapstructure:"oem"`
}

// AzureConfig holds Azure Computer Vision credentials
type AzureConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// ImagingConfig holds image enhancement settings
type ImagingConfig struct {
	MinSide      int     `mapstructure:"min_side"`
	TargetSide   int     `mapstructure:"target_side"`
	MaxSide      int     `mapstructure:"max_side"`
	SharpenSigma float64 `mapstructure:"sharpen_sigma"`
	ClipPercent  float64 `mapstructure:"clip_percent"`
}

// PDFConfig holds PDF text extraction settings
type PDFConfig struct {
	Backend  string `mapstructure:"backend"` // fitz or pure
	MaxPages int    `mapstructure:"max_pages"`
}

// FetchConfig bounds URL downloads
type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads the .env file (if present), the optional YAML config file and
// the environment, in increasing order of precedence. An empty configPath
// runs on defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already set
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_bytes", 50<<20)

	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)

	// Provider defaults
	v.SetDefault("openai.whisper_model", "whisper-1")
	v.SetDefault("openai.language", "vi")
	v.SetDefault("extraction.timeout", 60*time.Second)

	// OCR defaults
	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.timeout", 60*time.Second)
	v.SetDefault("ocr.tesseract.binary", "tesseract")
	v.SetDefault("ocr.tesseract.psm", 0)
	v.SetDefault("ocr.tesseract.oem", -1)

	v.SetDefault("imaging.min_side", 1000)
	v.SetDefault("imaging.target_side", 2000)
	v.SetDefault("imaging.max_side", 8000)
	v.SetDefault("imaging.sharpen_sigma", 1.0)
	v.SetDefault("imaging.clip_percent", 0.5)

	v.SetDefault("pdf.backend", "fitz")
	v.SetDefault("pdf.max_pages", 0)

	v.SetDefault("fetch.timeout", 20*time.Second)
	v.SetDefault("fetch.max_bytes", 50<<20)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("ocr.azure.endpoint", "AZURE_VISION_ENDPOINT")
	v.BindEnv("ocr.azure.api_key", "AZURE_VISION_KEY")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("metrics.port", "METRICS_PORT")
	v.BindEnv("ocr.engine", "OCR_ENGINE")
	v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate checks ranges and enumerations. Provider credentials may be
// missing; requests for that provider then fail with a configuration error.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	if c.Metrics.Port != 0 && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics.port must differ from server.port")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	switch c.OCR.Engine {
	case "tesseract":
		if c.OCR.Tesseract.Binary == "" {
			return fmt.Errorf("ocr.tesseract.binary is required")
		}
	case "azure":
	default:
		return fmt.Errorf("ocr.engine must be tesseract or azure, got %q", c.OCR.Engine)
	}

	c.PDF.Backend = strings.ToLower(strings.TrimSpace(c.PDF.Backend))
	if c.PDF.Backend != "fitz" && c.PDF.Backend != "pure" {
		return fmt.Errorf("pdf.backend must be fitz or pure, got %q", c.PDF.Backend)
	}
	if c.PDF.MaxPages < 0 {
		return fmt.Errorf("pdf.max_pages must not be negative")
	}

	if c.Imaging.MinSide <= 0 || c.Imaging.TargetSide < c.Imaging.MinSide {
		return fmt.Errorf("imaging.target_side must be at least imaging.min_side")
	}
	if c.Imaging.MaxSide < c.Imaging.TargetSide {
		return fmt.Errorf("imaging.max_side must be at least imaging.target_side")
	}
	if c.Imaging.ClipPercent < 0 || c.Imaging.ClipPercent >= 50 {
		return fmt.Errorf("imaging.clip_percent must be in [0, 50)")
	}

	if c.Extraction.Timeout <= 0 || c.OCR.Timeout <= 0 || c.Fetch.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}

// Address returns the API listen address
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the metrics listen address
func (c MetricsConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
