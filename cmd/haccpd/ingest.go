package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/config"
	"github.com/fyrsmithlabs/haccpd/internal/embeddings"
	"github.com/fyrsmithlabs/haccpd/internal/ingest"
	"github.com/fyrsmithlabs/haccpd/internal/logging"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
)

var (
	ingestDataDir string
	ingestForce   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index per-product hazard sheets",
	Long: `Scan the sheet layout <data-dir>/<produto>/<fonte>_<produto>.csv and
build one vector index per product and source document. Existing
indexes are skipped unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if ingestDataDir != "" {
			cfg.Ingest.DataDir = ingestDataDir
		}

		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

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

		pipeline := ingest.NewPipeline(ingest.Config{
			DataDir: cfg.Ingest.DataDir,
			Force:   ingestForce,
		}, library, logger)

		res, err := pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}

		logger.Info("ingestion finished",
			zap.Int("indexed", res.Indexed),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed))
		if res.Failed > 0 {
			return fmt.Errorf("%d sheet(s) failed to index", res.Failed)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDataDir, "data-dir", "", "override the sheet data directory")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-index sheets whose index already exists")
}
