package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/minjia/goldgap/internal/core"
	"github.com/minjia/goldgap/internal/snapshot"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Thresholds ThresholdsConfig           `mapstructure:"thresholds"`
	Normalizer NormalizerConfig           `mapstructure:"normalizer"`
	Output     OutputConfig               `mapstructure:"output"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	Storage    StorageConfig              `mapstructure:"storage"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	APIKey          string        `mapstructure:"api_key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MaxRuns         int           `mapstructure:"max_runs"`
}

// ThresholdsConfig holds the premium boundaries for signal
// classification, as decimal rates.
type ThresholdsConfig struct {
	BuyBelow  float64 `mapstructure:"buy_below"`
	SellAbove float64 `mapstructure:"sell_above"`
}

type NormalizerConfig struct {
	DedupePolicy string `mapstructure:"dedupe_policy"`
}

type OutputConfig struct {
	SortByPremium bool `mapstructure:"sort_by_premium"`
}

type CollectorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type StorageConfig struct {
	Archive ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig selects where run artifacts (CSV/JSON exports) go.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RefreshInterval: 5 * time.Minute,
			MaxRuns:         100,
		},
		Thresholds: ThresholdsConfig{
			BuyBelow:  -0.01,
			SellAbove: 0.01,
		},
		Normalizer: NormalizerConfig{
			DedupePolicy: string(snapshot.DedupeKeepLast),
		},
		Collectors: map[string]CollectorConfig{
			"jisilu": {Enabled: true},
			"yahoo":  {Enabled: true},
		},
		Storage: StorageConfig{
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "data",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RefreshInterval < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("refresh_interval cannot be negative, got %s", c.Server.RefreshInterval))
	}
	if c.Server.MaxRuns < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_runs must be at least 1, got %d", c.Server.MaxRuns))
	}

	if c.Thresholds.BuyBelow > c.Thresholds.SellAbove {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_below (%v) must not exceed sell_above (%v)",
				c.Thresholds.BuyBelow, c.Thresholds.SellAbove))
	}

	if !snapshot.ValidDedupePolicy(snapshot.DedupePolicy(c.Normalizer.DedupePolicy)) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("dedupe_policy must be keep-last, keep-first or reject, got %q",
				c.Normalizer.DedupePolicy))
	}

	switch c.Storage.Archive.Type {
	case "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Storage.Archive.Type))
	}
	if c.Storage.Archive.Enabled && c.Storage.Archive.Type == "s3" && c.Storage.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("s3 bucket required when archive type is s3"))
	}

	return nil
}
