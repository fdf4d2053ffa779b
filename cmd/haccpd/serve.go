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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/assessment"
	"github.com/fyrsmithlabs/haccpd/internal/catalog"
	"github.com/fyrsmithlabs/haccpd/internal/config"
	"github.com/fyrsmithlabs/haccpd/internal/embeddings"
	"github.com/fyrsmithlabs/haccpd/internal/httpapi"
	"github.com/fyrsmithlabs/haccpd/internal/logging"
	"github.com/fyrsmithlabs/haccpd/internal/resolver"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
	"github.com/fyrsmithlabs/haccpd/internal/suggest"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		return runServe(ctx)
	},
}

// runServe wires configuration, logging, the embedding provider, the
// index library and the persistence layers behind the HTTP server, then
// blocks until the context is cancelled.
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting haccpd",
		zap.String("version", version),
		zap.String("data_dir", cfg.DataDir))

	embedder, err := embeddings.NewFastEmbedProvider(embeddings.Config{
		Model:     cfg.Embeddings.Model,
		CacheDir:  cfg.Embeddings.CacheDir,
		MaxLength: cfg.Embeddings.MaxLength,
	})
	if err != nil {
		return fmt.Errorf("initializing embeddings: %w", err)
	}
	defer func() { _ = embedder.Close() }()

	library, err := retriever.NewLibrary(retriever.Config{
		Path:     cfg.Library.Path,
		Compress: cfg.Library.Compress,
	}, embedder, logger)
	if err != nil {
		return fmt.Errorf("opening index library: %w", err)
	}

	store, err := assessment.NewStore(cfg.Assessments.Path, logger)
	if err != nil {
		return fmt.Errorf("opening assessment store: %w", err)
	}

	cat, err := catalog.Open(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, httpapi.Deps{
		Library:   library,
		Resolver:  resolver.New(library, logger),
		Suggester: suggest.New(library, embedder, logger),
		Store:     store,
		Catalog:   cat,
		Version:   version,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
