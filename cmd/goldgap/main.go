package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minjia/goldgap/internal/app"
	"github.com/minjia/goldgap/internal/collector"
	"github.com/minjia/goldgap/internal/collector/jisilu"
	"github.com/minjia/goldgap/internal/collector/yahoo"
	"github.com/minjia/goldgap/internal/config"
	"github.com/minjia/goldgap/internal/storage/archive"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "goldgap",
	Short: "goldgap - gold QDII fund premium monitor",
	Long: `goldgap estimates the real-time NAV of gold QDII funds from the live
gold price, compares it with the on-exchange price and flags premium or
discount arbitrage opportunities.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig loads and validates the config file, falling back to
// defaults when none is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildApp wires the configured collectors and the archiver into an app.
func buildApp(cfg *config.Config, log *zap.Logger) (*app.App, error) {
	a := app.New(cfg, log)

	if cc, ok := cfg.Collectors["jisilu"]; !ok || cc.Enabled {
		c := jisilu.New()
		if err := c.Init(collector.Config{BaseURL: cc.BaseURL, APIKey: cc.APIKey}); err != nil {
			return nil, fmt.Errorf("init jisilu collector: %w", err)
		}
		a.RegisterFundCollector(c)
	}
	if cc, ok := cfg.Collectors["yahoo"]; !ok || cc.Enabled {
		c := yahoo.New()
		if err := c.Init(collector.Config{BaseURL: cc.BaseURL, APIKey: cc.APIKey}); err != nil {
			return nil, fmt.Errorf("init yahoo collector: %w", err)
		}
		a.RegisterMarketCollector(c)
	}

	if cfg.Storage.Archive.Enabled {
		storage, err := buildArchiveStorage(cfg.Storage.Archive)
		if err != nil {
			return nil, fmt.Errorf("init archive storage: %w", err)
		}
		a.SetArchiver(archive.NewArchiver(storage, log))
	}

	return a, nil
}

func buildArchiveStorage(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Path)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
