// Package config loads scanner configuration from YAML with defaults that
// reproduce the published dashboard: 26-week lookback, 9-day freshness
// threshold, the CFTC legacy-futures asset universe, and the standard FX
// base-currency hierarchy.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmorita/cotscan/internal/domain/fxpair"
	"github.com/kmorita/cotscan/internal/domain/scanner"
)

// Config is the full scanner configuration.
type Config struct {
	// Lookback is the rolling window size in weekly periods.
	Lookback int `yaml:"lookback"`
	// FreshnessThresholdDays flags assets whose latest report is older.
	FreshnessThresholdDays int `yaml:"freshness_threshold_days"`
	// Hierarchy is the ordered base-currency precedence list.
	Hierarchy []string `yaml:"hierarchy"`
	// Assets maps CFTC contract market codes to asset ids.
	Assets map[string]string `yaml:"assets"`
	// Contracts maps asset ids to futures contract specs for USD valuation.
	Contracts map[string]ContractConfig `yaml:"contracts"`

	Fetch  FetchConfig  `yaml:"fetch"`
	Server ServerConfig `yaml:"server"`
}

// ContractConfig mirrors scanner.ContractSpec in YAML form.
type ContractConfig struct {
	Unit   float64 `yaml:"unit"`
	Ticker string  `yaml:"ticker"`
	Kind   string  `yaml:"kind"`
}

// FetchConfig controls the report downloader.
type FetchConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ServerConfig controls the read-only HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the dashboard's built-in configuration.
func Default() Config {
	return Config{
		Lookback:               26,
		FreshnessThresholdDays: 9,
		Hierarchy:              []string(fxpair.DefaultHierarchy()),
		Assets: map[string]string{
			"090741": "CAD",
			"092741": "CHF",
			"096742": "GBP",
			"097741": "JPY",
			"099741": "EUR",
			"232741": "AUD",
			"098662": "DXY",
			"13874+": "SPX",
			"20974+": "NDX",
			"12460+": "DJIA",
			"240743": "NKY",
			"088691": "GOLD",
			"084691": "SILVER",
			"06765A": "WTI",
			"023391": "NATGAS",
			"043602": "UST10Y",
			"020601": "UST30Y",
		},
		Contracts: map[string]ContractConfig{
			"CAD":    {Unit: 100000, Ticker: "CADUSD=X", Kind: "usd"},
			"CHF":    {Unit: 125000, Ticker: "CHFUSD=X", Kind: "usd"},
			"GBP":    {Unit: 62500, Ticker: "GBPUSD=X", Kind: "usd"},
			"JPY":    {Unit: 12500000, Ticker: "JPY=X", Kind: "jpy_per_usd"},
			"EUR":    {Unit: 125000, Ticker: "EURUSD=X", Kind: "usd"},
			"AUD":    {Unit: 100000, Ticker: "AUDUSD=X", Kind: "usd"},
			"DXY":    {Unit: 1000, Ticker: "DX-Y.NYB", Kind: "point"},
			"SPX":    {Unit: 50, Ticker: "^GSPC", Kind: "point"},
			"NDX":    {Unit: 20, Ticker: "^NDX", Kind: "point"},
			"DJIA":   {Unit: 5, Ticker: "^DJI", Kind: "point"},
			"NKY":    {Unit: 500, Ticker: "NKD=F", Kind: "jpy"},
			"GOLD":   {Unit: 100, Ticker: "GC=F", Kind: "usd"},
			"SILVER": {Unit: 5000, Ticker: "SI=F", Kind: "usd"},
			"WTI":    {Unit: 1000, Ticker: "CL=F", Kind: "usd"},
			"NATGAS": {Unit: 10000, Ticker: "NG=F", Kind: "usd"},
			"UST10Y": {Unit: 100000, Ticker: "ZN=F", Kind: "usd_price"},
			"UST30Y": {Unit: 100000, Ticker: "ZB=F", Kind: "usd_price"},
		},
		Fetch: FetchConfig{
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path (or an
// empty path argument) yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.Lookback < 1 {
		return fmt.Errorf("lookback must be positive, got %d", c.Lookback)
	}
	if c.FreshnessThresholdDays < 0 {
		return fmt.Errorf("freshness_threshold_days must be non-negative, got %d", c.FreshnessThresholdDays)
	}
	if len(c.Hierarchy) == 0 {
		return fmt.Errorf("hierarchy must not be empty")
	}
	seen := make(map[string]bool, len(c.Hierarchy))
	for _, code := range c.Hierarchy {
		if seen[code] {
			return fmt.Errorf("hierarchy lists %q twice", code)
		}
		seen[code] = true
	}
	for id, cc := range c.Contracts {
		if cc.Unit <= 0 {
			return fmt.Errorf("contract %s: unit must be positive, got %g", id, cc.Unit)
		}
		switch scanner.Kind(cc.Kind) {
		case scanner.KindUSD, scanner.KindPoint, scanner.KindUSDPrice, scanner.KindJPYPerUSD, scanner.KindJPY:
		default:
			return fmt.Errorf("contract %s: unknown kind %q", id, cc.Kind)
		}
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("fetch.requests_per_second must be positive, got %g", c.Fetch.RequestsPerSecond)
	}
	return nil
}

// HierarchyOrDefault returns the configured hierarchy as the domain type.
func (c Config) HierarchyOrDefault() fxpair.Hierarchy {
	if len(c.Hierarchy) == 0 {
		return fxpair.DefaultHierarchy()
	}
	return fxpair.Hierarchy(c.Hierarchy)
}

// ContractSpecs converts the configured contracts to scanner specs.
func (c Config) ContractSpecs() map[string]scanner.ContractSpec {
	out := make(map[string]scanner.ContractSpec, len(c.Contracts))
	for id, cc := range c.Contracts {
		out[id] = scanner.ContractSpec{
			Unit:   cc.Unit,
			Ticker: cc.Ticker,
			Kind:   scanner.Kind(cc.Kind),
		}
	}
	return out
}

// FetchTimeout returns the fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
