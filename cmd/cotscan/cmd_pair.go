package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/config"
	"github.com/kmorita/cotscan/internal/data"
	"github.com/kmorita/cotscan/internal/domain/fxpair"
	"github.com/kmorita/cotscan/internal/domain/score"
)

// pairCmd scores one currency pair.
var pairCmd = &cobra.Command{
	Use:   "pair <currency> <currency>",
	Short: "Score a currency pair from positioning indices",
	Long: `Resolve two currencies into market-convention base/quote order and
score the pair: positive favors the base, negative the quote. Price bars
supplied in the order you typed the currencies are reciprocal-inverted
automatically when that order is inverted relative to convention.

Examples:
  cotscan pair EUR JPY --data annual.txt
  cotscan pair JPY USD --data annual.txt --history
  cotscan pair AUD USD --data annual.txt --history --bars audusd.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runPair,
}

var (
	pairData    string
	pairHistory bool
	pairBars    string
	pairFormat  string
)

func init() {
	rootCmd.AddCommand(pairCmd)

	pairCmd.Flags().StringVar(&pairData, "data", "", "Path to COT report CSV")
	pairCmd.Flags().BoolVar(&pairHistory, "history", false, "Print the full score history")
	pairCmd.Flags().StringVar(&pairBars, "bars", "", "Path to OHLCV CSV quoted in the order given")
	pairCmd.Flags().StringVar(&pairFormat, "format", "", "Output format (table|json), default by terminal")
	pairCmd.MarkFlagRequired("data")
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	format := pairFormat
	if format == "" {
		format = defaultFormat()
	}

	pair, err := cfg.HierarchyOrDefault().Normalize(args[0], args[1])
	if err != nil {
		return err
	}

	universe, err := data.LoadCOTFile(pairData, cfg.Assets)
	if err != nil {
		return err
	}
	baseSeries, ok := universe[pair.Base]
	if !ok {
		return fmt.Errorf("no positioning data for %s", pair.Base)
	}
	quoteSeries, ok := universe[pair.Quote]
	if !ok {
		return fmt.Errorf("no positioning data for %s", pair.Quote)
	}

	snapshot, err := score.PairSnapshot(baseSeries.SpecNetSeries(), quoteSeries.SpecNetSeries(), cfg.Lookback)
	if err != nil {
		return err
	}

	if !pairHistory {
		if format == "json" {
			return writeJSON(map[string]interface{}{
				"base": pair.Base, "quote": pair.Quote,
				"ticker": pair.Ticker(), "inverted": pair.Inverted,
				"snapshot": snapshot,
			})
		}
		fmt.Printf("%s (base %s, quote %s)\n", pair.Ticker(), pair.Base, pair.Quote)
		fmt.Printf("base index:  %.1f (%s)\n", snapshot.BaseIndex, snapshot.BaseDate.Format("2006-01-02"))
		fmt.Printf("quote index: %.1f (%s)\n", snapshot.QuoteIndex, snapshot.QuoteDate.Format("2006-01-02"))
		fmt.Printf("score:       %+.1f\n", snapshot.Score)
		return nil
	}

	history, err := score.PairHistory(baseSeries.SpecNetSeries(), quoteSeries.SpecNetSeries(), cfg.Lookback)
	if err != nil {
		return err
	}

	if pairBars != "" {
		bars, err := data.LoadBarsFile(pairBars)
		if err != nil {
			return err
		}
		if pair.Inverted {
			if bars, err = fxpair.InvertSeries(bars); err != nil {
				return err
			}
		}
		priced := score.WithPrices(history, bars)
		if format == "json" {
			return writeJSON(priced)
		}
		renderPricedTable(priced)
		return nil
	}

	if format == "json" {
		return writeJSON(history)
	}
	renderHistoryTable(history)
	return nil
}
