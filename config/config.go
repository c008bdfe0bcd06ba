package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every tunable the service reads at startup. Values come from
// config.json when present, environment variables override the file, and
// hard defaults apply last.
type Config struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	ChatModel           string `mapstructure:"chat_model"`
	DataDir             string `mapstructure:"data_dir"`
	Port                string `mapstructure:"port"`
	ChunkThresholdBytes int64  `mapstructure:"chunk_threshold_bytes"`
	ChunkSizeBytes      int64  `mapstructure:"chunk_size_bytes"`
	SegmentLenSec       int    `mapstructure:"segment_len_sec"`
	UploadProgressMax   int    `mapstructure:"upload_progress_max"`
}

var globalConfig *Config

// Load reads the configuration once and caches it for the process lifetime.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := viper.New()
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("chat_model", "gpt-4o-mini")
	v.SetDefault("data_dir", "data")
	v.SetDefault("port", "8080")
	v.SetDefault("chunk_threshold_bytes", int64(50*1024*1024))
	v.SetDefault("chunk_size_bytes", int64(5*1024*1024))
	v.SetDefault("segment_len_sec", 0)
	v.SetDefault("upload_progress_max", 20)

	v.SetConfigFile("config.json")
	if err := v.ReadInConfig(); err != nil {
		// config.json is optional; environment plus defaults must suffice.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config.json: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	globalConfig = &cfg
	return globalConfig, nil
}

// HasValidAPI reports whether the remote model credential is configured.
func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.BaseURL) != ""
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []string
	if c.ChunkSizeBytes <= 0 {
		errs = append(errs, "chunk_size_bytes must be positive")
	}
	if c.ChunkThresholdBytes <= 0 {
		errs = append(errs, "chunk_threshold_bytes must be positive")
	}
	if c.UploadProgressMax <= 0 || c.UploadProgressMax >= 100 {
		errs = append(errs, "upload_progress_max must be between 1 and 99")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
