package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/config"
	"github.com/garyjia/vat-invoice-ocr/internal/container"
	"github.com/garyjia/vat-invoice-ocr/pkg/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "invoice-ocr",
	Short:         "Vietnamese VAT invoice extraction",
	Long:          `Extract Circular 78 invoice data from images, PDFs, text, voice notes and URLs using Gemini or GPT.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults and environment only when empty)")
}

// bootstrap loads configuration, builds the logger and starts the container.
// logOutput overrides the configured log sink when not empty.
func bootstrap(ctx context.Context, logOutput string) (*container.Container, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logOutput != "" {
		cfg.Logger.OutputPath = logOutput
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to start container: %w", err)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return c, cleanup, nil
}
