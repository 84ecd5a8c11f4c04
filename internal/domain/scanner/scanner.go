// Package scanner applies the positioning-index computations across a whole
// asset universe and produces ranked tables. Three modes replace the
// original per-mode scan scripts: divergence (speculators vs commercials),
// flow (z-score of the weekly net change), and reversal (speculators vs
// retail).
package scanner

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kmorita/cotscan/internal/domain/cot"
	"github.com/kmorita/cotscan/internal/domain/rolling"
)

// Mode selects the scoring function applied to each asset.
type Mode string

const (
	ModeDivergence Mode = "divergence"
	ModeFlow       Mode = "flow"
	ModeReversal   Mode = "reversal"
)

// ParseMode validates a mode string from the CLI or HTTP layer.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDivergence, ModeFlow, ModeReversal:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown scan mode %q (want divergence, flow, or reversal)", s)
}

// SortKey selects the ranking order of scan results.
type SortKey string

const (
	// SortAbsScore ranks by absolute score descending (default): the most
	// extreme readings in either direction come first.
	SortAbsScore SortKey = "abs"
	// SortScore ranks by signed score descending.
	SortScore SortKey = "signed"
)

// Params carries the caller-supplied knobs of a scan. Now is explicit so
// staleness flags are reproducible.
type Params struct {
	Lookback               int
	FreshnessThresholdDays int
	Now                    time.Time
	SortBy                 SortKey
}

// Result is one ranked row of a scan. Index fields are populated according
// to the mode; WeeklyChange only for flow scans.
type Result struct {
	AssetID string
	Date    time.Time
	Score   float64

	SpecIndex    float64
	CommIndex    float64
	RetailIndex  float64
	WeeklyChange float64

	Stale     bool
	StaleDays int
}

// Skip records an asset omitted from a scan and why. Insufficient history is
// an expected condition, not an error.
type Skip struct {
	AssetID string
	Reason  string
}

// Report is the outcome of one scan run.
type Report struct {
	RunID       string
	Mode        Mode
	GeneratedAt time.Time
	Results     []Result
	Skipped     []Skip
}

// Scan scores every asset in the universe under the given mode and returns
// the ranked report. Assets with insufficient history (or, for reversal
// scans, without retail data) are omitted, never errored on.
func Scan(universe map[string]*cot.AssetSeries, mode Mode, p Params) (*Report, error) {
	if p.Lookback < 1 {
		return nil, fmt.Errorf("scan: lookback must be positive, got %d", p.Lookback)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = SortAbsScore
	}

	report := &Report{
		RunID:       uuid.NewString(),
		Mode:        mode,
		GeneratedAt: p.Now,
	}

	for _, id := range sortedIDs(universe) {
		series := universe[id]
		if series.Len() < p.Lookback {
			report.Skipped = append(report.Skipped, Skip{AssetID: id,
				Reason: fmt.Sprintf("insufficient history: %d of %d observations", series.Len(), p.Lookback)})
			continue
		}
		res, skip := scoreAsset(series, mode, p)
		if skip != "" {
			report.Skipped = append(report.Skipped, Skip{AssetID: id, Reason: skip})
			continue
		}
		report.Results = append(report.Results, res)
	}

	rank(report.Results, sortBy)
	return report, nil
}

func scoreAsset(series *cot.AssetSeries, mode Mode, p Params) (Result, string) {
	latest, _ := series.Latest()
	res := Result{AssetID: series.AssetID, Date: latest.Date}
	if !p.Now.IsZero() {
		days := int(p.Now.Sub(latest.Date).Hours() / 24)
		res.StaleDays = days
		res.Stale = days > p.FreshnessThresholdDays
	}

	switch mode {
	case ModeDivergence:
		spec, ok := latestIndexValue(series.SpecNetSeries(), p.Lookback)
		if !ok {
			return Result{}, "speculative index undefined (flat history)"
		}
		comm, ok := latestIndexValue(series.CommNetSeries(), p.Lookback)
		if !ok {
			return Result{}, "commercial index undefined (flat history)"
		}
		res.SpecIndex, res.CommIndex = spec, comm
		res.Score = spec - comm

	case ModeFlow:
		changes := rolling.Diff(series.SpecNetSeries())
		if len(changes) == 0 {
			return Result{}, "no weekly changes available"
		}
		latestChange := changes[len(changes)-1].Value
		window := rolling.Values(rolling.Tail(changes, p.Lookback))
		mean, std := rolling.MeanStd(window)
		res.WeeklyChange = latestChange
		res.Score = rolling.ZScore(latestChange, mean, std)

	case ModeReversal:
		retailSeries, ok := series.RetailNetSeries()
		if !ok {
			return Result{}, "retail positions not reported"
		}
		spec, ok := latestIndexValue(series.SpecNetSeries(), p.Lookback)
		if !ok {
			return Result{}, "speculative index undefined (flat history)"
		}
		retail, ok := latestIndexValue(retailSeries, p.Lookback)
		if !ok {
			return Result{}, "retail index undefined (flat history)"
		}
		res.SpecIndex, res.RetailIndex = spec, retail
		res.Score = spec - retail
	}

	return res, ""
}

func latestIndexValue(obs []rolling.Observation, lookback int) (float64, bool) {
	points, err := rolling.Index(obs, lookback)
	if err != nil {
		return 0, false
	}
	p, ok := rolling.LastValid(points)
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// rank orders results by the sort key descending with a stable tie-break by
// asset id ascending.
func rank(results []Result, key SortKey) {
	value := func(r Result) float64 {
		if key == SortScore {
			return r.Score
		}
		return abs(r.Score)
	}
	sort.SliceStable(results, func(i, j int) bool {
		vi, vj := value(results[i]), value(results[j])
		if vi != vj {
			return vi > vj
		}
		return results[i].AssetID < results[j].AssetID
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sortedIDs(universe map[string]*cot.AssetSeries) []string {
	ids := make([]string, 0, len(universe))
	for id := range universe {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
