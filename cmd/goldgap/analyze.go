package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minjia/goldgap/internal/export"
	"github.com/minjia/goldgap/internal/logger"
	"github.com/minjia/goldgap/internal/valuation"
)

var (
	analyzeCSV       string
	analyzeJSON      string
	analyzeSort      bool
	analyzeBuyBelow  float64
	analyzeSellAbove float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a single valuation cycle and print the result table",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "write results to a CSV file")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "write the run to a JSON file")
	analyzeCmd.Flags().BoolVar(&analyzeSort, "sort-by-premium", false, "sort results by premium rate ascending")
	analyzeCmd.Flags().Float64Var(&analyzeBuyBelow, "buy-below", 0, "premium below which to flag BUY (decimal rate)")
	analyzeCmd.Flags().Float64Var(&analyzeSellAbove, "sell-above", 0, "premium above which to flag SELL (decimal rate)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	// Flags override config thresholds.
	if cmd.Flags().Changed("buy-below") {
		cfg.Thresholds.BuyBelow = analyzeBuyBelow
	}
	if cmd.Flags().Changed("sell-above") {
		cfg.Thresholds.SellAbove = analyzeSellAbove
	}
	if cmd.Flags().Changed("sort-by-premium") {
		cfg.Output.SortByPremium = analyzeSort
	}
	if (valuation.Thresholds{BuyBelow: cfg.Thresholds.BuyBelow, SellAbove: cfg.Thresholds.SellAbove}).Validate() != nil {
		return fmt.Errorf("buy-below (%v) must not exceed sell-above (%v)",
			cfg.Thresholds.BuyBelow, cfg.Thresholds.SellAbove)
	}

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	run, err := a.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("valuation run failed: %w", err)
	}

	if err := export.Table(os.Stdout, run); err != nil {
		return err
	}

	if analyzeCSV != "" {
		f, err := os.Create(analyzeCSV)
		if err != nil {
			return fmt.Errorf("creating csv file: %w", err)
		}
		defer f.Close()
		if err := export.CSV(f, run.Table); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}

	if analyzeJSON != "" {
		f, err := os.Create(analyzeJSON)
		if err != nil {
			return fmt.Errorf("creating json file: %w", err)
		}
		defer f.Close()
		if err := export.JSON(f, run); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
	}

	return nil
}
