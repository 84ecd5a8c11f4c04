package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kmorita/cotscan/internal/config"
	"github.com/kmorita/cotscan/internal/data"
	httpapi "github.com/kmorita/cotscan/internal/interfaces/http"
)

// serveCmd runs the read-only HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan and pair scores over HTTP",
	Long: `Load a COT report and serve the read-only JSON API:

  GET /health
  GET /scan/{divergence|flow|reversal}
  GET /pair/{base}/{quote}?history=true
  GET /metrics

Example:
  cotscan serve --data annual.txt --port 8080`,
	RunE: runServe,
}

var (
	serveData string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveData, "data", "", "Path to COT report CSV")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override configured listen port")
	serveCmd.MarkFlagRequired("data")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	universe, err := data.LoadCOTFile(serveData, cfg.Assets)
	if err != nil {
		return err
	}
	log.Info().Int("assets", len(universe)).Msg("universe loaded")

	server := httpapi.NewServer(universe, cfg, log.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
