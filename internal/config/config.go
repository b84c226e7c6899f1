// Package config loads runtime settings from defaults, an optional YAML
// config file, TRANSCODE_* environment variables, and CLI flags (highest
// precedence), in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Search modes. Local scans only the top level of the root; global walks the
// whole tree.
const (
	SearchLocal  = "local"
	SearchGlobal = "global"
)

// DefaultChunkThresholdMB is the per-chunk size threshold: files larger than
// this are split before transcoding.
const DefaultChunkThresholdMB = 100.0

// defaultFormats is the extension set recognized when the config file does
// not provide one.
var defaultFormats = []string{
	".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v",
	".mp3", ".wav", ".aac", ".m4a", ".wma", ".ts", ".mts", ".m2ts", ".vob", ".3gp",
}

// Config holds all settings for one batch run.
type Config struct {
	RootPath         string   `mapstructure:"root_path"`
	SearchMode       string   `mapstructure:"search_mode"`
	SupportedFormats []string `mapstructure:"supported_formats"`
	EngineLogging    bool     `mapstructure:"engine_logging"`
	ChunkThresholdMB float64  `mapstructure:"chunk_threshold_mb"`
	NotifyURL        string   `mapstructure:"notify_url"`
	LogLevel         string   `mapstructure:"log_level"`
}

// flagBindings maps CLI flag names to config keys.
var flagBindings = map[string]string{
	"path":           "root_path",
	"search":         "search_mode",
	"engine-logging": "engine_logging",
	"threshold":      "chunk_threshold_mb",
	"notify-url":     "notify_url",
	"log-level":      "log_level",
}

// Load merges all config sources. A missing config file is fine; defaults,
// env vars, and flags still apply. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("root_path", defaultRootPath())
	v.SetDefault("search_mode", SearchLocal)
	v.SetDefault("supported_formats", defaultFormats)
	v.SetDefault("engine_logging", false)
	v.SetDefault("chunk_threshold_mb", DefaultChunkThresholdMB)
	v.SetDefault("log_level", "info")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; flags and env still work.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TRANSCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flagName, key := range flagBindings {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultRootPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Movies", "bgm")
}

func (c *Config) validate() error {
	switch c.SearchMode {
	case SearchLocal, SearchGlobal:
	default:
		return fmt.Errorf("invalid search mode %q (use %q or %q)", c.SearchMode, SearchLocal, SearchGlobal)
	}
	if c.ChunkThresholdMB <= 0 {
		return fmt.Errorf("chunk threshold must be positive, got %v", c.ChunkThresholdMB)
	}
	return nil
}

// Recursive reports whether discovery should walk the whole tree.
func (c *Config) Recursive() bool {
	return c.SearchMode == SearchGlobal
}

// ExtensionSet returns the supported formats as a lookup set of lowercase
// extensions with leading dots.
func (c *Config) ExtensionSet() map[string]bool {
	set := make(map[string]bool, len(c.SupportedFormats))
	for _, ext := range c.SupportedFormats {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
