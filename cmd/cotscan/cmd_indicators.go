package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/data"
	"github.com/kmorita/cotscan/internal/domain/fxpair"
	"github.com/kmorita/cotscan/internal/domain/indicators"
)

// indicatorsCmd computes strength metrics over a price bar file.
var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Compute strength indicators over OHLCV bars",
	Long: `Compute RSI, volume surge, VWAP hold ratios, and the cumulative return
for a bar file. Daily bars feed RSI/volume surge/returns; the VWAP hold
ratios treat the file as one intraday session.

Examples:
  cotscan indicators --bars spx_daily.csv
  cotscan indicators --bars spx_5min.csv --intraday`,
	RunE: runIndicators,
}

var (
	indicatorBars     string
	indicatorIntraday bool
	indicatorRSI      int
	indicatorVolume   int
	indicatorFormat   string
)

func init() {
	rootCmd.AddCommand(indicatorsCmd)

	indicatorsCmd.Flags().StringVar(&indicatorBars, "bars", "", "Path to OHLCV CSV")
	indicatorsCmd.Flags().BoolVar(&indicatorIntraday, "intraday", false, "Treat bars as one intraday session (VWAP hold)")
	indicatorsCmd.Flags().IntVar(&indicatorRSI, "rsi-period", 14, "RSI period")
	indicatorsCmd.Flags().IntVar(&indicatorVolume, "volume-period", 20, "Volume moving-average period")
	indicatorsCmd.Flags().StringVar(&indicatorFormat, "format", "", "Output format (table|json), default by terminal")
	indicatorsCmd.MarkFlagRequired("bars")
}

// indicatorReport bundles the metrics for one bar file.
type indicatorReport struct {
	RSI              indicators.RSIResult         `json:"rsi"`
	VolumeSurge      indicators.VolumeSurgeResult `json:"volume_surge"`
	VWAPHold         *indicators.VWAPHoldResult   `json:"vwap_hold,omitempty"`
	CumulativeReturn float64                      `json:"cumulative_return"`
	Bars             int                          `json:"bars"`
}

func runIndicators(cmd *cobra.Command, args []string) error {
	format := indicatorFormat
	if format == "" {
		format = defaultFormat()
	}

	bars, err := data.LoadBarsFile(indicatorBars)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no bars in %s", indicatorBars)
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	report := indicatorReport{
		RSI:         indicators.CalculateRSI(closes, indicatorRSI),
		VolumeSurge: indicators.CalculateVolumeSurge(volumes, indicatorVolume),
		Bars:        len(bars),
	}
	returns := indicators.CumulativeReturns(closes)
	report.CumulativeReturn = returns[len(returns)-1]
	if indicatorIntraday {
		hold := indicators.CalculateVWAPHold(bars)
		report.VWAPHold = &hold
	}

	if format == "json" {
		return writeJSON(report)
	}
	printIndicators(report, bars)
	return nil
}

func printIndicators(r indicatorReport, bars []fxpair.Bar) {
	fmt.Printf("bars: %d (%s to %s)\n", r.Bars,
		bars[0].Date.Format("2006-01-02"), bars[len(bars)-1].Date.Format("2006-01-02"))
	if r.RSI.IsValid {
		fmt.Printf("rsi(%d): %.1f\n", r.RSI.Period, r.RSI.Value)
	} else {
		fmt.Printf("rsi(%d): insufficient data\n", r.RSI.Period)
	}
	if r.VolumeSurge.IsValid {
		fmt.Printf("volume surge(%d): %.1f\n", r.VolumeSurge.Period, r.VolumeSurge.Value)
	} else {
		fmt.Printf("volume surge(%d): insufficient data\n", r.VolumeSurge.Period)
	}
	if r.VWAPHold != nil {
		fmt.Printf("vwap hold: +1s %.1f%%  0s %.1f%%  -1s %.1f%%\n",
			r.VWAPHold.AbovePlusSigma, r.VWAPHold.AboveVWAP, r.VWAPHold.AboveMinusSigma)
	}
	fmt.Printf("cumulative return: %+.2f%%\n", r.CumulativeReturn*100)
}
