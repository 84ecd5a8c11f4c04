package scanner

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kmorita/cotscan/internal/domain/cot"
)

// Kind describes how a contract's quoted price converts to a USD value per
// contract.
type Kind string

const (
	// KindUSD: price is USD per unit; value = unit * price.
	KindUSD Kind = "usd"
	// KindPoint: price is an index level; value = multiplier * points.
	KindPoint Kind = "point"
	// KindUSDPrice: price is a USD face-value quote (treasury futures);
	// valued the same as KindUSD.
	KindUSDPrice Kind = "usd_price"
	// KindJPYPerUSD: price is JPY per USD; value = unit / price.
	KindJPYPerUSD Kind = "jpy_per_usd"
	// KindJPY: price is in JPY; value = unit * price / USDJPY.
	KindJPY Kind = "jpy"
)

// ContractSpec describes one futures contract for USD valuation.
type ContractSpec struct {
	Unit   float64
	Ticker string
	Kind   Kind
}

// ContractValueUSD converts a quoted price into the USD value of one
// contract. usdJPY is the JPY-per-USD rate used for yen-denominated
// contracts; a zero result means the contract cannot be valued.
func (s ContractSpec) ContractValueUSD(price, usdJPY float64) float64 {
	switch s.Kind {
	case KindUSD, KindPoint, KindUSDPrice:
		return s.Unit * price
	case KindJPYPerUSD:
		if price == 0 {
			return 0
		}
		return s.Unit / price
	case KindJPY:
		if usdJPY == 0 {
			return 0
		}
		return s.Unit * price / usdJPY
	}
	return 0
}

// PriceFunc looks up the closing price of a ticker on or near a date. The
// second return is false when no price is available; the asset is then
// skipped rather than valued at zero.
type PriceFunc func(ticker string, date time.Time) (float64, bool)

// MonetaryResult is one row of the USD-denominated flow scan: the weekly
// net-position change converted to dollars at the contract's USD value.
type MonetaryResult struct {
	AssetID          string
	Date             time.Time
	Ticker           string
	Price            float64
	ContractValueUSD float64
	SpecFlowUSD      float64
	CommFlowUSD      float64
}

// MonetaryReport is the outcome of one monetary flow scan.
type MonetaryReport struct {
	RunID       string
	GeneratedAt time.Time
	USDJPY      float64
	Results     []MonetaryResult
	Skipped     []Skip
}

// MonetaryFlow converts each asset's latest weekly net change into USD using
// its contract spec and a price lookup, ranked by absolute speculative flow.
// Assets without a spec, without two observations, without a price, or whose
// contract value resolves to zero are skipped.
func MonetaryFlow(universe map[string]*cot.AssetSeries, specs map[string]ContractSpec, prices PriceFunc, usdJPY float64, now time.Time) *MonetaryReport {
	report := &MonetaryReport{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		USDJPY:      usdJPY,
	}

	for _, id := range sortedIDs(universe) {
		series := universe[id]
		spec, ok := specs[id]
		if !ok {
			report.Skipped = append(report.Skipped, Skip{AssetID: id, Reason: "no contract spec"})
			continue
		}
		if series.Len() < 2 {
			report.Skipped = append(report.Skipped, Skip{AssetID: id,
				Reason: fmt.Sprintf("insufficient history: %d of 2 observations", series.Len())})
			continue
		}
		latest := series.Records[series.Len()-1]
		prev := series.Records[series.Len()-2]

		price, ok := prices(spec.Ticker, latest.Date)
		if !ok {
			report.Skipped = append(report.Skipped, Skip{AssetID: id,
				Reason: fmt.Sprintf("no price for %s", spec.Ticker)})
			continue
		}
		value := spec.ContractValueUSD(price, usdJPY)
		if value == 0 {
			report.Skipped = append(report.Skipped, Skip{AssetID: id, Reason: "contract value resolved to zero"})
			continue
		}

		report.Results = append(report.Results, MonetaryResult{
			AssetID:          id,
			Date:             latest.Date,
			Ticker:           spec.Ticker,
			Price:            price,
			ContractValueUSD: value,
			SpecFlowUSD:      float64(latest.SpecNet()-prev.SpecNet()) * value,
			CommFlowUSD:      float64(latest.CommNet()-prev.CommNet()) * value,
		})
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		vi, vj := abs(report.Results[i].SpecFlowUSD), abs(report.Results[j].SpecFlowUSD)
		if vi != vj {
			return vi > vj
		}
		return report.Results[i].AssetID < report.Results[j].AssetID
	})
	return report
}
