package scanner

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorita/cotscan/internal/domain/cot"
)

func week(n int) time.Time {
	return time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n)
}

// mustSeries builds an asset series from weekly speculative and commercial
// net positions, expressed as long-only counts.
func mustSeries(t *testing.T, id string, specNets, commNets []int64) *cot.AssetSeries {
	t.Helper()
	require.Equal(t, len(specNets), len(commNets))
	records := make([]cot.PositionRecord, len(specNets))
	for i := range specNets {
		records[i] = cot.PositionRecord{
			Date:     week(i),
			SpecLong: specNets[i],
			CommLong: commNets[i],
		}
	}
	s, err := cot.NewSeries(id, records)
	require.NoError(t, err)
	return s
}

func withRetail(t *testing.T, id string, specNets, retailNets []int64) *cot.AssetSeries {
	t.Helper()
	records := make([]cot.PositionRecord, len(specNets))
	for i := range specNets {
		records[i] = cot.PositionRecord{
			Date:       week(i),
			SpecLong:   specNets[i],
			CommLong:   1,
			RetailLong: retailNets[i],
			HasRetail:  true,
		}
	}
	s, err := cot.NewSeries(id, records)
	require.NoError(t, err)
	return s
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"divergence", "flow", "reversal"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
	_, err := ParseMode("momentum")
	assert.Error(t, err)
}

func TestScan_DivergenceRanking(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		// Speculators accumulating while commercials distribute: score +100.
		"A": mustSeries(t, "A", []int64{10, 20, 30}, []int64{30, 20, 10}),
		// Both sides mid-range: score 0.
		"B": mustSeries(t, "B", []int64{0, 10, 5}, []int64{0, 10, 5}),
		// Mirror of A: score -100.
		"C": mustSeries(t, "C", []int64{30, 20, 10}, []int64{10, 20, 30}),
	}

	report, err := Scan(universe, ModeDivergence, Params{Lookback: 3})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Skipped)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, ModeDivergence, report.Mode)

	// Absolute-score ranking, ties broken by asset id.
	assert.Equal(t, "A", report.Results[0].AssetID)
	assert.Equal(t, "C", report.Results[1].AssetID)
	assert.Equal(t, "B", report.Results[2].AssetID)

	a := report.Results[0]
	assert.InDelta(t, 100.0, a.SpecIndex, 1e-9)
	assert.InDelta(t, 0.0, a.CommIndex, 1e-9)
	assert.InDelta(t, 100.0, a.Score, 1e-9)
	assert.Equal(t, week(2), a.Date)

	assert.InDelta(t, -100.0, report.Results[1].Score, 1e-9)
	assert.InDelta(t, 0.0, report.Results[2].Score, 1e-9)
}

func TestScan_SignedSort(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"A": mustSeries(t, "A", []int64{10, 20, 30}, []int64{30, 20, 10}),
		"B": mustSeries(t, "B", []int64{0, 10, 5}, []int64{0, 10, 5}),
		"C": mustSeries(t, "C", []int64{30, 20, 10}, []int64{10, 20, 30}),
	}

	report, err := Scan(universe, ModeDivergence, Params{Lookback: 3, SortBy: SortScore})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "A", report.Results[0].AssetID)
	assert.Equal(t, "B", report.Results[1].AssetID)
	assert.Equal(t, "C", report.Results[2].AssetID)
}

func TestScan_SkipsInsufficientHistory(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"OK":    mustSeries(t, "OK", []int64{10, 20, 30}, []int64{30, 20, 10}),
		"SHORT": mustSeries(t, "SHORT", []int64{10, 20}, []int64{20, 10}),
	}

	report, err := Scan(universe, ModeDivergence, Params{Lookback: 3})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "OK", report.Results[0].AssetID)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "SHORT", report.Skipped[0].AssetID)
	assert.Contains(t, report.Skipped[0].Reason, "insufficient history")
}

func TestScan_SkipsFlatHistory(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"FLAT": mustSeries(t, "FLAT", []int64{5, 5, 5}, []int64{1, 2, 3}),
	}

	report, err := Scan(universe, ModeDivergence, Params{Lookback: 3})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Reason, "speculative index undefined")
}

func TestScan_FlowZeroStd(t *testing.T) {
	// A perfectly linear net series has identical weekly changes; the
	// z-score degrades to zero rather than dividing by zero.
	universe := map[string]*cot.AssetSeries{
		"LIN": mustSeries(t, "LIN", []int64{10, 20, 30, 40}, []int64{1, 2, 3, 4}),
	}

	report, err := Scan(universe, ModeFlow, Params{Lookback: 3})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.InDelta(t, 0.0, r.Score, 1e-9)
	assert.InDelta(t, 10.0, r.WeeklyChange, 1e-9)
}

func TestScan_FlowZScore(t *testing.T) {
	// Changes are 10, 10, 20: the latest change sits 2/sqrt(3) sample
	// deviations above the mean.
	universe := map[string]*cot.AssetSeries{
		"X": mustSeries(t, "X", []int64{0, 10, 20, 40}, []int64{1, 2, 3, 4}),
	}

	report, err := Scan(universe, ModeFlow, Params{Lookback: 3})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.InDelta(t, 20.0, r.WeeklyChange, 1e-9)
	assert.InDelta(t, 2.0/math.Sqrt(3), r.Score, 1e-9)
}

func TestScan_Reversal(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"R":  withRetail(t, "R", []int64{10, 20, 30}, []int64{30, 20, 10}),
		"NR": mustSeries(t, "NR", []int64{10, 20, 30}, []int64{30, 20, 10}),
	}

	report, err := Scan(universe, ModeReversal, Params{Lookback: 3})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.Equal(t, "R", r.AssetID)
	assert.InDelta(t, 100.0, r.SpecIndex, 1e-9)
	assert.InDelta(t, 0.0, r.RetailIndex, 1e-9)
	assert.InDelta(t, 100.0, r.Score, 1e-9)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "NR", report.Skipped[0].AssetID)
	assert.Contains(t, report.Skipped[0].Reason, "retail")
}

func TestScan_Staleness(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"A": mustSeries(t, "A", []int64{10, 20, 30}, []int64{30, 20, 10}),
	}

	now := week(2).AddDate(0, 0, 10)
	report, err := Scan(universe, ModeDivergence, Params{
		Lookback:               3,
		FreshnessThresholdDays: 9,
		Now:                    now,
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Stale)
	assert.Equal(t, 10, report.Results[0].StaleDays)
	assert.Equal(t, now, report.GeneratedAt)

	report, err = Scan(universe, ModeDivergence, Params{
		Lookback:               3,
		FreshnessThresholdDays: 9,
		Now:                    week(2).AddDate(0, 0, 6),
	})
	require.NoError(t, err)
	assert.False(t, report.Results[0].Stale)
	assert.Equal(t, 6, report.Results[0].StaleDays)
}

func TestScan_BadParams(t *testing.T) {
	universe := map[string]*cot.AssetSeries{}

	_, err := Scan(universe, ModeDivergence, Params{Lookback: 0})
	assert.Error(t, err)

	_, err = Scan(universe, Mode("bogus"), Params{Lookback: 3})
	assert.Error(t, err)
}

func TestContractValueUSD(t *testing.T) {
	tests := []struct {
		name   string
		spec   ContractSpec
		price  float64
		usdJPY float64
		want   float64
	}{
		{"fx usd quote", ContractSpec{Unit: 125000, Kind: KindUSD}, 1.10, 150, 137500},
		{"index points", ContractSpec{Unit: 50, Kind: KindPoint}, 5000, 150, 250000},
		{"treasury face", ContractSpec{Unit: 1000, Kind: KindUSDPrice}, 112.5, 150, 112500},
		{"yen per usd", ContractSpec{Unit: 12500000, Kind: KindJPYPerUSD}, 150, 150, 12500000.0 / 150},
		{"yen denominated", ContractSpec{Unit: 500, Kind: KindJPY}, 38000, 150, 500 * 38000.0 / 150},
		{"yen per usd zero price", ContractSpec{Unit: 12500000, Kind: KindJPYPerUSD}, 0, 150, 0},
		{"yen without usdjpy", ContractSpec{Unit: 500, Kind: KindJPY}, 38000, 0, 0},
		{"unknown kind", ContractSpec{Unit: 1, Kind: Kind("barrels")}, 10, 150, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.spec.ContractValueUSD(tt.price, tt.usdJPY), 1e-6)
		})
	}
}

func TestMonetaryFlow(t *testing.T) {
	universe := map[string]*cot.AssetSeries{
		"EUR":    mustSeries(t, "EUR", []int64{1000, 1500}, []int64{500, 400}),
		"GBP":    mustSeries(t, "GBP", []int64{200, 300}, []int64{100, 150}),
		"NOSPEC": mustSeries(t, "NOSPEC", []int64{1, 2}, []int64{2, 1}),
		"NOPX":   mustSeries(t, "NOPX", []int64{1, 2}, []int64{2, 1}),
		"SHORT":  mustSeries(t, "SHORT", []int64{1}, []int64{1}),
	}
	specs := map[string]ContractSpec{
		"EUR":   {Unit: 125000, Ticker: "6E=F", Kind: KindUSD},
		"GBP":   {Unit: 62500, Ticker: "6B=F", Kind: KindUSD},
		"NOPX":  {Unit: 1, Ticker: "MISSING", Kind: KindUSD},
		"SHORT": {Unit: 1, Ticker: "6E=F", Kind: KindUSD},
	}
	prices := func(ticker string, _ time.Time) (float64, bool) {
		switch ticker {
		case "6E=F":
			return 1.10, true
		case "6B=F":
			return 1.30, true
		}
		return 0, false
	}

	now := week(1).AddDate(0, 0, 3)
	report := MonetaryFlow(universe, specs, prices, 150, now)
	require.NotNil(t, report)
	assert.Equal(t, now, report.GeneratedAt)
	assert.InDelta(t, 150.0, report.USDJPY, 1e-9)

	require.Len(t, report.Results, 2)
	eur := report.Results[0]
	assert.Equal(t, "EUR", eur.AssetID, "largest absolute speculative flow ranks first")
	assert.InDelta(t, 137500, eur.ContractValueUSD, 1e-6)
	assert.InDelta(t, 500*137500.0, eur.SpecFlowUSD, 1e-3)
	assert.InDelta(t, -100*137500.0, eur.CommFlowUSD, 1e-3)

	gbp := report.Results[1]
	assert.Equal(t, "GBP", gbp.AssetID)
	assert.InDelta(t, 100*62500*1.30, gbp.SpecFlowUSD, 1e-3)

	reasons := map[string]string{}
	for _, s := range report.Skipped {
		reasons[s.AssetID] = s.Reason
	}
	assert.Contains(t, reasons["NOSPEC"], "no contract spec")
	assert.Contains(t, reasons["NOPX"], "no price")
	assert.Contains(t, reasons["SHORT"], "insufficient history")
}
