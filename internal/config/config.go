// Package config provides configuration loading for haccpd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the full daemon configuration.
type Config struct {
	// DataDir is the base directory for indexes, the catalog database and
	// assessment snapshots. Sub-paths default relative to it.
	DataDir string `koanf:"data_dir"`

	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Library     LibraryConfig     `koanf:"library"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Assessments AssessmentsConfig `koanf:"assessments"`
	Ingest      IngestConfig      `koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// LibraryConfig holds vector index library settings.
type LibraryConfig struct {
	Path     string `koanf:"path"`
	Compress bool   `koanf:"compress"`
}

// EmbeddingsConfig holds embedding provider settings.
type EmbeddingsConfig struct {
	// Model is the embedding model name (see internal/embeddings for the
	// supported set).
	Model     string `koanf:"model"`
	CacheDir  string `koanf:"cache_dir"`
	MaxLength int    `koanf:"max_length"`
}

// CatalogConfig holds relational catalog settings.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// AssessmentsConfig holds assessment snapshot storage settings.
type AssessmentsConfig struct {
	Path string `koanf:"path"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	// DataDir is where per-product source sheets live:
	// <data_dir>/<product>/<source>_<product>.csv
	DataDir string `koanf:"data_dir"`
}

// ApplyDefaults fills unset fields. Path fields default under DataDir.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "~/.local/share/haccpd"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8088
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Library.Path == "" {
		c.Library.Path = filepath.Join(c.DataDir, "indexes")
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embeddings.CacheDir == "" {
		c.Embeddings.CacheDir = filepath.Join(c.DataDir, "models")
	}
	if c.Embeddings.MaxLength == 0 {
		c.Embeddings.MaxLength = 512
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join(c.DataDir, "catalog.db")
	}
	if c.Assessments.Path == "" {
		c.Assessments.Path = filepath.Join(c.DataDir, "assessments")
	}
	if c.Ingest.DataDir == "" {
		c.Ingest.DataDir = filepath.Join(c.DataDir, "produtos")
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ExpandPaths resolves a leading ~ in every path field.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{
		&c.DataDir,
		&c.Library.Path,
		&c.Embeddings.CacheDir,
		&c.Catalog.Path,
		&c.Assessments.Path,
		&c.Ingest.DataDir,
	} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
