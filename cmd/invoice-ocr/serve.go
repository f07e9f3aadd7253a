package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/garyjia/vat-invoice-ocr/internal/container"
	httpapi "github.com/garyjia/vat-invoice-ocr/internal/interfaces/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the metrics server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, cleanup, err := bootstrap(ctx, "")
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := c.Config()
	logger := c.Logger()

	logger.Info("Starting invoice OCR service",
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Metrics.Port),
		zap.String("ocr_engine", cfg.OCR.Engine))

	api := httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, c.Service(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Start(gctx)
	})
	if cfg.Metrics.Port != 0 {
		g.Go(func() error {
			return serveMetrics(gctx, c, logger)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Service stopped")
	return nil
}

// serveMetrics exposes /metrics until ctx is cancelled
func serveMetrics(ctx context.Context, c *container.Container, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Metrics().Handler())

	srv := &http.Server{
		Addr:              c.Config().Metrics.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting metrics server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
