package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/api"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/dataset"
)

// shutdownGrace is how long in-flight requests get on shutdown.
const shutdownGrace = 5 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the downloaded CSV files over a read-only API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Viewer.DataDir, "data-dir", cfg.Viewer.DataDir, "directory of CSV files to serve")
	f.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "listen host")
	f.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "listen port")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	store := dataset.NewStore(cfg.Viewer.DataDir).
		CacheSeries(cfg.Viewer.SeriesCacheEntries, cfg.Viewer.SeriesCacheTTL)
	router := api.NewRouter(store, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr, "data_dir", cfg.Viewer.DataDir, "auth", cfg.Auth.Enabled)
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
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
		return err
	}
	slog.Info("HTTP server drained gracefully")
	return nil
}
