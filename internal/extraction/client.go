package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// DefaultCallTimeout bounds a single provider call
const DefaultCallTimeout = 60 * time.Second

// Provider sends one extraction request to a model vendor and returns the
// raw reply text.
type Provider interface {
	// Engine returns the engine name this provider serves
	Engine() string

	// CheckConfig returns a *entity.ConfigurationError when credentials are missing
	CheckConfig() error

	Generate(ctx context.Context, req Request) (string, error)
}

// Client dispatches requests to the provider registered for their engine.
// It performs no retries and never falls back to another engine.
type Client struct {
	providers map[string]Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewClient creates a client over the given providers. A non-positive
// timeout selects DefaultCallTimeout.
func NewClient(timeout time.Duration, logger *zap.Logger, providers ...Provider) *Client {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	registry := make(map[string]Provider, len(providers))
	for _, p := range providers {
		registry[p.Engine()] = p
	}
	return &Client{
		providers: registry,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate runs req against its provider and returns the raw reply.
// Missing credentials fail with *entity.ConfigurationError before any
// network I/O; provider failures come back as *entity.ProviderError.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	provider, err := c.provider(req.Engine)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := provider.Generate(ctx, req)
	if err != nil {
		c.logger.Error("Extraction provider call failed",
			zap.String("engine", req.Engine),
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))

		var providerErr *entity.ProviderError
		if errors.As(err, &providerErr) {
			return "", err
		}
		return "", &entity.ProviderError{Provider: req.Engine, Err: err}
	}

	c.logger.Info("Extraction provider replied",
		zap.String("engine", req.Engine),
		zap.String("model", req.Model),
		zap.Int("reply_length", len(reply)),
		zap.Duration("elapsed", time.Since(start)))

	return reply, nil
}

// CheckEngine reports whether engine is known, registered and has its
// credentials, without any network I/O.
func (c *Client) CheckEngine(engine string) error {
	_, err := c.provider(engine)
	return err
}

// Ping sends a minimal request to check credentials and connectivity
func (c *Client) Ping(ctx context.Context, engine, model string) (string, error) {
	engine, err := ParseEngine(engine)
	if err != nil {
		return "", err
	}
	req := Request{
		Engine:          engine,
		Model:           ResolveModel(engine, model),
		System:          "Reply with a JSON object.",
		Prompt:          `Return exactly {"ok": true}`,
		Temperature:     0,
		MaxOutputTokens: 32,
		JSONMode:        engine == EngineGPT,
	}
	return c.Generate(ctx, req)
}

func (c *Client) provider(engine string) (Provider, error) {
	provider, ok := c.providers[engine]
	if !ok {
		if _, known := modelTables[engine]; known {
			return nil, &entity.ConfigurationError{Provider: engine, Setting: "provider registration"}
		}
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownEngine, engine)
	}
	if err := provider.CheckConfig(); err != nil {
		return nil, err
	}
	return provider, nil
}
