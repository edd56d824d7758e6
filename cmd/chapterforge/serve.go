package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chapterforge/chapterforge/internal/api"
	"github.com/chapterforge/chapterforge/internal/config"
	"github.com/chapterforge/chapterforge/internal/health"
	"github.com/chapterforge/chapterforge/internal/ingest"
	"github.com/chapterforge/chapterforge/internal/logging"
	"github.com/chapterforge/chapterforge/internal/parser"
	"github.com/chapterforge/chapterforge/internal/pipeline"
	"github.com/chapterforge/chapterforge/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction pipeline behind an HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(providerName)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "registered LM provider name (defaults to config's default)")

	return cmd
}

func runServe(providerName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(false)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	client, err := registry.Get(providerName)
	if err != nil {
		return fmt.Errorf("failed to resolve LM provider: %w", err)
	}

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage adapter: %w", err)
	}
	defer storageAdapter.Close()

	loader := ingest.NewLoader(storageAdapter, parser.NewFactory())
	p := pipeline.New(client, cfg.Pipeline, log)

	healthHandler := health.NewHandler(version)
	healthHandler.Register("storage", func(ctx context.Context) (health.Status, error) {
		if _, err := storageAdapter.Exists(ctx, "."); err != nil {
			return health.StatusDegraded, err
		}
		return health.StatusHealthy, nil
	})
	healthHandler.Register("llm_provider", func(ctx context.Context) (health.Status, error) {
		if client == nil {
			return health.StatusUnhealthy, fmt.Errorf("no LM provider resolved")
		}
		return health.StatusHealthy, nil
	})

	extractHandler := api.NewExtractHandler(loader, p, log)
	router := api.NewRouter(extractHandler, healthHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
