package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/config"
	"github.com/kmorita/cotscan/internal/data"
	"github.com/kmorita/cotscan/internal/domain/scanner"
)

// scanCmd ranks the whole universe under one scoring mode.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rank the asset universe by positioning score",
	Long: `Score every asset in a COT report and print the ranked table.

Modes:
  divergence  speculative index minus commercial index
  flow        z-score of the latest weekly net-position change
  reversal    speculative index minus retail index
  monetary    weekly net change converted to USD (needs --prices)

Examples:
  cotscan scan --data annual.txt
  cotscan scan --data annual.txt --mode flow --format csv
  cotscan scan --data annual.txt --mode monetary --prices closes.csv`,
	RunE: runScan,
}

var (
	scanData     string
	scanMode     string
	scanFormat   string
	scanSort     string
	scanLookback int
	scanPrices   string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanData, "data", "", "Path to COT report CSV")
	scanCmd.Flags().StringVar(&scanMode, "mode", "divergence", "Scan mode (divergence|flow|reversal|monetary)")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "Output format (table|json|csv), default by terminal")
	scanCmd.Flags().StringVar(&scanSort, "sort", "abs", "Ranking key (abs|signed)")
	scanCmd.Flags().IntVar(&scanLookback, "lookback", 0, "Override configured lookback window")
	scanCmd.Flags().StringVar(&scanPrices, "prices", "", "Path to ticker,date,close CSV (monetary mode)")
	scanCmd.MarkFlagRequired("data")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if scanLookback > 0 {
		cfg.Lookback = scanLookback
	}
	format := scanFormat
	if format == "" {
		format = defaultFormat()
	}

	universe, err := data.LoadCOTFile(scanData, cfg.Assets)
	if err != nil {
		return err
	}
	log.Info().Int("assets", len(universe)).Str("mode", scanMode).Msg("universe loaded")

	now := time.Now().UTC()

	if scanMode == "monetary" {
		if scanPrices == "" {
			return fmt.Errorf("monetary mode requires --prices")
		}
		closes, err := data.LoadClosesFile(scanPrices)
		if err != nil {
			return err
		}
		usdJPY, _ := closes.Lookup("JPY=X", now)
		report := scanner.MonetaryFlow(universe, cfg.ContractSpecs(), closes.Lookup, usdJPY, now)
		switch format {
		case "json":
			return writeJSON(report)
		case "csv":
			return renderMonetaryCSV(report)
		default:
			renderMonetaryTable(report)
			return nil
		}
	}

	mode, err := scanner.ParseMode(scanMode)
	if err != nil {
		return err
	}
	report, err := scanner.Scan(universe, mode, scanner.Params{
		Lookback:               cfg.Lookback,
		FreshnessThresholdDays: cfg.FreshnessThresholdDays,
		Now:                    now,
		SortBy:                 scanner.SortKey(scanSort),
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("ranked", len(report.Results)).
		Int("skipped", len(report.Skipped)).
		Msg("scan complete")

	switch format {
	case "json":
		return writeJSON(report)
	case "csv":
		return renderScanCSV(report)
	default:
		renderScanTable(report)
		return nil
	}
}
