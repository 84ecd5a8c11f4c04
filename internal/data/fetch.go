package data

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/kmorita/cotscan/internal/config"
)

// cotArchiveURL is the CFTC annual legacy-futures archive. Each zip contains
// a single annual.txt report file.
const cotArchiveURL = "https://www.cftc.gov/files/dea/history/deacot%d.zip"

// Fetcher downloads report archives with token-bucket rate limiting and a
// circuit breaker around the remote host.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewFetcher builds a Fetcher from fetch configuration.
func NewFetcher(cfg config.FetchConfig, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), maxInt(cfg.Burst, 1)),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "cftc",
			Interval: 60 * time.Second,
			Timeout:  45 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}),
		log: log,
	}
}

// Get fetches a URL, respecting the rate limit and circuit breaker.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	result, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		f.log.Error().Str("url", url).Err(err).Msg("fetch failed")
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	body := result.([]byte)
	f.log.Info().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")
	return body, nil
}

// FetchCOTYear downloads one year's legacy-futures archive and returns the
// contained report file's bytes.
func (f *Fetcher) FetchCOTYear(ctx context.Context, year int) ([]byte, error) {
	body, err := f.Get(ctx, fmt.Sprintf(cotArchiveURL, year))
	if err != nil {
		return nil, err
	}
	return extractReport(body)
}

// extractReport pulls the report text file out of a CFTC archive zip.
func extractReport(zipped []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipped), int64(len(zipped)))
	if err != nil {
		return nil, fmt.Errorf("open report archive: %w", err)
	}
	for _, file := range zr.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".txt") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in archive: %w", file.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("report archive contains no .txt file")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
