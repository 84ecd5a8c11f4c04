package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorita/cotscan/internal/domain/scanner"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 26, cfg.Lookback)
	assert.Equal(t, 9, cfg.FreshnessThresholdDays)
	assert.Equal(t, []string{"EUR", "GBP", "AUD", "USD", "CAD", "CHF", "JPY"}, cfg.Hierarchy)
	assert.Equal(t, "EUR", cfg.Assets["099741"])
	assert.Equal(t, "JPY", cfg.Assets["097741"])
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Lookback, cfg.Lookback)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotscan.yaml")
	body := `
lookback: 52
freshness_threshold_days: 14
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 52, cfg.Lookback)
	assert.Equal(t, 14, cfg.FreshnessThresholdDays)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched sections keep defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.NotEmpty(t, cfg.Assets)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lookback: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookback")
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lookback: [\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative freshness", func(c *Config) { c.FreshnessThresholdDays = -1 }, "freshness"},
		{"empty hierarchy", func(c *Config) { c.Hierarchy = nil }, "hierarchy"},
		{"duplicate currency", func(c *Config) { c.Hierarchy = []string{"EUR", "EUR"} }, "twice"},
		{"bad contract unit", func(c *Config) {
			c.Contracts["EUR"] = ContractConfig{Unit: 0, Ticker: "EURUSD=X", Kind: "usd"}
		}, "unit"},
		{"bad contract kind", func(c *Config) {
			c.Contracts["EUR"] = ContractConfig{Unit: 1, Ticker: "EURUSD=X", Kind: "pesos"}
		}, "kind"},
		{"zero fetch timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, "timeout"},
		{"zero fetch rate", func(c *Config) { c.Fetch.RequestsPerSecond = 0 }, "requests_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContractSpecs(t *testing.T) {
	specs := Default().ContractSpecs()
	eur, ok := specs["EUR"]
	require.True(t, ok)
	assert.Equal(t, scanner.ContractSpec{Unit: 125000, Ticker: "EURUSD=X", Kind: scanner.KindUSD}, eur)

	jpy := specs["JPY"]
	assert.Equal(t, scanner.KindJPYPerUSD, jpy.Kind)
}
