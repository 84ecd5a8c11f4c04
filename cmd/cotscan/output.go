package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/kmorita/cotscan/internal/domain/scanner"
	"github.com/kmorita/cotscan/internal/domain/score"
)

// defaultFormat picks table output for interactive use and JSON when stdout
// is piped.
func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "table"
	}
	return "json"
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func staleMark(stale bool) string {
	if stale {
		return "STALE"
	}
	return ""
}

func renderScanTable(report *scanner.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	switch report.Mode {
	case scanner.ModeFlow:
		fmt.Fprintln(w, "RANK\tASSET\tDATE\tZ-SCORE\tWEEKLY CHANGE\t")
		for i, r := range report.Results {
			fmt.Fprintf(w, "%d\t%s %s\t%s\t%.2f\t%+.0f\t\n",
				i+1, r.AssetID, staleMark(r.Stale), r.Date.Format("2006-01-02"), r.Score, r.WeeklyChange)
		}
	case scanner.ModeReversal:
		fmt.Fprintln(w, "RANK\tASSET\tDATE\tSCORE\tSPEC IDX\tRETAIL IDX\t")
		for i, r := range report.Results {
			fmt.Fprintf(w, "%d\t%s %s\t%s\t%.1f\t%.1f\t%.1f\t\n",
				i+1, r.AssetID, staleMark(r.Stale), r.Date.Format("2006-01-02"), r.Score, r.SpecIndex, r.RetailIndex)
		}
	default:
		fmt.Fprintln(w, "RANK\tASSET\tDATE\tSCORE\tSPEC IDX\tCOMM IDX\t")
		for i, r := range report.Results {
			fmt.Fprintf(w, "%d\t%s %s\t%s\t%.1f\t%.1f\t%.1f\t\n",
				i+1, r.AssetID, staleMark(r.Stale), r.Date.Format("2006-01-02"), r.Score, r.SpecIndex, r.CommIndex)
		}
	}
	w.Flush()

	if len(report.Skipped) > 0 {
		fmt.Println()
		for _, skip := range report.Skipped {
			fmt.Printf("skipped %s: %s\n", skip.AssetID, skip.Reason)
		}
	}
}

func renderScanCSV(report *scanner.Report) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"asset", "date", "score", "spec_index", "comm_index", "retail_index", "weekly_change", "stale"}); err != nil {
		return err
	}
	for _, r := range report.Results {
		row := []string{
			r.AssetID,
			r.Date.Format("2006-01-02"),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			strconv.FormatFloat(r.SpecIndex, 'f', 4, 64),
			strconv.FormatFloat(r.CommIndex, 'f', 4, 64),
			strconv.FormatFloat(r.RetailIndex, 'f', 4, 64),
			strconv.FormatFloat(r.WeeklyChange, 'f', 0, 64),
			strconv.FormatBool(r.Stale),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func renderMonetaryTable(report *scanner.MonetaryReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tASSET\tDATE\tSPEC FLOW (USD)\tCOMM FLOW (USD)\tCONTRACT VALUE\tPRICE\t")
	for i, r := range report.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%+.0f\t%+.0f\t%.0f\t%.4f\t\n",
			i+1, r.AssetID, r.Date.Format("2006-01-02"),
			r.SpecFlowUSD, r.CommFlowUSD, r.ContractValueUSD, r.Price)
	}
	w.Flush()

	if len(report.Skipped) > 0 {
		fmt.Println()
		for _, skip := range report.Skipped {
			fmt.Printf("skipped %s: %s\n", skip.AssetID, skip.Reason)
		}
	}
}

func renderMonetaryCSV(report *scanner.MonetaryReport) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"asset", "date", "ticker", "price", "contract_value_usd", "spec_flow_usd", "comm_flow_usd"}); err != nil {
		return err
	}
	for _, r := range report.Results {
		row := []string{
			r.AssetID,
			r.Date.Format("2006-01-02"),
			r.Ticker,
			strconv.FormatFloat(r.Price, 'f', 4, 64),
			strconv.FormatFloat(r.ContractValueUSD, 'f', 2, 64),
			strconv.FormatFloat(r.SpecFlowUSD, 'f', 0, 64),
			strconv.FormatFloat(r.CommFlowUSD, 'f', 0, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func renderPricedTable(history []score.PricedPoint) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tBASE IDX\tQUOTE IDX\tSCORE\tDELTA\tCLOSE\t")
	for _, h := range history {
		delta := ""
		if h.HasDelta {
			delta = fmt.Sprintf("%+.1f", h.Delta)
		}
		px := ""
		if h.HasClose {
			px = strconv.FormatFloat(h.Close, 'f', 4, 64)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%s\t%s\t\n",
			h.Date.Format("2006-01-02"), h.BaseIndex, h.QuoteIndex, h.Score, delta, px)
	}
	w.Flush()
}

func renderHistoryTable(history []score.HistoryPoint) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tBASE IDX\tQUOTE IDX\tSCORE\tDELTA\t")
	for _, h := range history {
		delta := ""
		if h.HasDelta {
			delta = fmt.Sprintf("%+.1f", h.Delta)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%s\t\n",
			h.Date.Format("2006-01-02"), h.BaseIndex, h.QuoteIndex, h.Score, delta)
	}
	w.Flush()
}
