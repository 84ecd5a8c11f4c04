package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/config"
	"github.com/kmorita/cotscan/internal/data"
	"github.com/kmorita/cotscan/internal/domain/cot"
)

// detailCmd prints the latest weekly breakdown per asset.
var detailCmd = &cobra.Command{
	Use:   "detail [asset...]",
	Short: "Show the latest weekly position breakdown",
	Long: `Print long/short/net counts per trader category for the latest report
week, with week-over-week changes and the long-side share. Without arguments
every asset in the report is shown.

Examples:
  cotscan detail --data annual.txt
  cotscan detail EUR JPY --data annual.txt --format json`,
	RunE: runDetail,
}

var (
	detailData   string
	detailFormat string
)

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().StringVar(&detailData, "data", "", "Path to COT report CSV")
	detailCmd.Flags().StringVar(&detailFormat, "format", "", "Output format (table|json), default by terminal")
	detailCmd.MarkFlagRequired("data")
}

func runDetail(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	format := detailFormat
	if format == "" {
		format = defaultFormat()
	}

	universe, err := data.LoadCOTFile(detailData, cfg.Assets)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		for id := range universe {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	var details []*cot.WeeklyDetail
	for _, id := range ids {
		series, ok := universe[id]
		if !ok {
			return fmt.Errorf("no positioning data for %s", id)
		}
		detail, err := series.WeeklyDetail()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", id, err)
			continue
		}
		details = append(details, detail)
	}

	if format == "json" {
		return writeJSON(details)
	}
	for _, d := range details {
		renderDetail(d)
	}
	return nil
}

func renderDetail(d *cot.WeeklyDetail) {
	fmt.Printf("--- %s (%s, previous %s) ---\n",
		d.AssetID, d.Date.Format("2006-01-02"), d.PrevDate.Format("2006-01-02"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tLONG (CHG)\tSHORT (CHG)\tNET (CHG)\tLONG % (CHG)\t")
	printCategory(w, "commercial", d.Commercial)
	printCategory(w, "speculative", d.Speculative)
	if d.Retail != nil {
		printCategory(w, "retail", *d.Retail)
	}
	w.Flush()
	fmt.Println()
}

func printCategory(w *tabwriter.Writer, name string, c cot.CategoryDetail) {
	fmt.Fprintf(w, "%s\t%d (%+d)\t%d (%+d)\t%d (%+d)\t%.1f%% (%+.1f%%)\t\n",
		name, c.Long, c.LongChange, c.Short, c.ShortChange, c.Net, c.NetChange,
		c.LongRatio, c.LongRatioChange)
}
