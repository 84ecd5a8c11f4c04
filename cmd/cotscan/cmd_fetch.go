package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/config"
	"github.com/kmorita/cotscan/internal/data"
)

// fetchCmd downloads annual COT report archives.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download CFTC legacy-futures report archives",
	Long: `Download one or more annual legacy-futures archives from the CFTC and
store the extracted report files locally. Each fetch replaces the stored
snapshot wholesale; the published report is the source of truth.

Examples:
  cotscan fetch --year 2026 --out data/cot
  cotscan fetch --year 2025 --year 2026 --out data/cot`,
	RunE: runFetch,
}

var (
	fetchYears []int
	fetchOut   string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntSliceVar(&fetchYears, "year", nil, "Report year to download (repeatable)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "data/cot", "Directory for downloaded report files")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	years := fetchYears
	if len(years) == 0 {
		years = []int{time.Now().UTC().Year()}
	}
	if err := os.MkdirAll(fetchOut, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fetcher := data.NewFetcher(cfg.Fetch, log.Logger)
	ctx := context.Background()

	for _, year := range years {
		report, err := fetcher.FetchCOTYear(ctx, year)
		if err != nil {
			return err
		}
		path := filepath.Join(fetchOut, fmt.Sprintf("annual_%d.txt", year))
		if err := os.WriteFile(path, report, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Info().Int("year", year).Str("path", path).Int("bytes", len(report)).Msg("report saved")
	}
	return nil
}
