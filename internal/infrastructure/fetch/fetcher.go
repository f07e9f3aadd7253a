package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/pkg/utils"
)

// DefaultContentType is assumed when the server does not send one
const DefaultContentType = "image/jpeg"

// ErrTooLarge is returned when the body exceeds the configured cap
var ErrTooLarge = errors.New("remote document exceeds size limit")

// Config bounds remote downloads
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Document is a downloaded file
type Document = entity.RemoteDocument

// Fetcher downloads invoice images and PDFs from http(s) URLs
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// NewFetcher creates a fetcher; zero values select 20s and 50 MiB
func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 50 << 20
	}
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}
}

// Fetch downloads rawURL. Non-2xx responses and oversize bodies are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := utils.ValidateSourceURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "image/*, application/pdf;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch URL: %s", resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	contentType := DefaultContentType
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType != "" {
		contentType = mediaType
	}

	f.logger.Info("Fetched remote document",
		zap.String("host", u.Host),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)))

	return &Document{Data: data, ContentType: contentType}, nil
}
