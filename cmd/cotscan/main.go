package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagConfig  string
	flagVerbose bool
)

// rootCmd is the base command for the cotscan CLI
var rootCmd = &cobra.Command{
	Use:   "cotscan",
	Short: "COT positioning index scanner",
	Long: `cotscan analyzes CFTC Commitments of Traders reports: it derives net
positions per trader category, normalizes them into rolling [0,100] indices,
scores currency pairs, and ranks a whole asset universe by divergence, flow,
reversal, or USD-denominated flow.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cotscan - COT positioning index scanner")
		fmt.Println("Use 'cotscan scan --data <report.csv>' to rank the universe")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
