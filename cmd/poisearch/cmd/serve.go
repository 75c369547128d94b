package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/poisearch/internal/config"
	"github.com/kailas-cloud/poisearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/poisearch/internal/transport/chi"
	"github.com/kailas-cloud/poisearch/internal/version"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API consumed by the map frontend. The backend API key stays
on the server; browsers only talk to this process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting poisearch API server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", cfg.Backend.URL),
		zap.String("translation_index", cfg.Indices.Translation),
		zap.String("poi_index", cfg.Indices.POI),
	)

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("Inbound authentication disabled: auth.api_keys is empty")
	}

	// Register metrics explicitly (no init())
	metrics.RegisterBackendMetrics()
	metrics.RegisterHTTPMetrics()

	svc, err := wire(cfg, logger)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Backend.Timeout())
	if err := svc.backend.Ping(pingCtx); err != nil {
		// Not fatal: /health reports it.
		logger.Warn("Search backend not reachable at startup", zap.Error(err))
	} else {
		logger.Info("Connected to search backend")
	}
	cancel()

	server := chiTransport.NewServer(svc.explore, svc.health, cfg.Query.FilterFields, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second,
	)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
