// Package config loads and validates application configuration, in the
// same YAML-plus-env-override shape the rest of the module's ambient stack
// uses, bound through viper so env vars override values from the file.
// Command-line flags are not bound here.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chapterforge/chapterforge/pkg/types"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces environment variable overrides, e.g.
// CHAPTERFORGE_SERVER_PORT.
const envPrefix = "CHAPTERFORGE"

// Load reads and parses the configuration file at configPath, applies
// environment variable overrides, and validates the result.
func Load(configPath string) (*types.Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// WatchReload re-reads configPath whenever it changes on disk and invokes
// onChange with the newly loaded, validated configuration. A load or
// validation failure on reload is logged and the previous configuration
// stays in effect.
func WatchReload(configPath string, log *zap.Logger, onChange func(*types.Config)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		for event := range watcher.Events {
			if event.Name != configPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(configPath)
			if err != nil {
				if log != nil {
					log.Warn("config reload failed, keeping previous configuration", zap.Error(err))
				}
				continue
			}
			onChange(cfg)
		}
	}()

	return watcher, nil
}

// Validate checks that a configuration is internally consistent, applying
// safe defaults for a handful of optional pipeline tunables.
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	if cfg.Pipeline.HeadSampleLines <= 0 {
		cfg.Pipeline.HeadSampleLines = 3000
	}
	if cfg.Pipeline.RegexMatchTimeoutMs <= 0 {
		cfg.Pipeline.RegexMatchTimeoutMs = 100
	}
	if cfg.Pipeline.VerificationWindow <= 0 {
		cfg.Pipeline.VerificationWindow = 2000
	}
	if cfg.Pipeline.ConfidenceThreshold <= 0 {
		cfg.Pipeline.ConfidenceThreshold = 0.8
	}

	return nil
}

// GetDefault returns a default configuration.
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/chapterforge/storage",
			},
		},
		Pipeline: types.PipelineConfig{
			HeadSampleLines:     3000,
			BoundaryConcurrency: 8,
			VerifyConcurrency:   8,
			RegexMatchTimeoutMs: 100,
			VerificationWindow:  2000,
			ConfidenceThreshold: 0.8,
			TempDir:             "/tmp/chapterforge",
		},
	}
}

// marshalForDisplay renders a configuration back to YAML for display. No
// CLI command calls it.
func marshalForDisplay(cfg *types.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
