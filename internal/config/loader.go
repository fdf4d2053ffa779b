package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before mapping them to
// config keys: HACCPD_SERVER_PORT -> server.port,
// HACCPD_EMBEDDINGS_CACHE_DIR -> embeddings.cache_dir.
const envPrefix = "HACCPD_"

// Load loads configuration with the usual precedence: hardcoded defaults,
// overridden by the YAML file at configPath (if it exists), overridden by
// HACCPD_* environment variables. Paths are ~-expanded after merging.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform maps an environment variable name (prefix already
// stripped) to a dotted config key. The first underscore separates the
// section from the field; fields keep their own underscores:
//
//	SERVER_PORT           -> server.port
//	EMBEDDINGS_CACHE_DIR  -> embeddings.cache_dir
//	DATA_DIR              -> data_dir
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))

	// Top-level scalar keys have no section.
	if s == "data_dir" {
		return s
	}

	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return s
	}
	return parts[0] + "." + parts[1]
}
