// Package indicators computes the sector-strength metrics shown alongside
// positioning scores: RSI, volume surge, intraday VWAP hold ratios, and
// cumulative returns.
package indicators

import (
	"math"

	"github.com/kmorita/cotscan/internal/domain/fxpair"
)

// RSIResult represents the result of RSI calculation
type RSIResult struct {
	Value     float64 `json:"value"`
	Period    int     `json:"period"`
	IsValid   bool    `json:"is_valid"`
	DataCount int     `json:"data_count"`
}

// CalculateRSI calculates the Relative Strength Index over closing prices
// using Wilder's smoothing. Returns a neutral 50 marked invalid when there
// is not enough history.
func CalculateRSI(prices []float64, period int) RSIResult {
	if period < 1 || len(prices) < period+1 {
		return RSIResult{Value: 50.0, Period: period, IsValid: false, DataCount: len(prices)}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = avgGain*(1-alpha) + gain*alpha
		avgLoss = avgLoss*(1-alpha) + loss*alpha
	}

	if avgLoss == 0 {
		return RSIResult{Value: 100.0, Period: period, IsValid: true, DataCount: len(prices)}
	}
	rs := avgGain / avgLoss
	return RSIResult{
		Value:     100.0 - 100.0/(1.0+rs),
		Period:    period,
		IsValid:   true,
		DataCount: len(prices),
	}
}

// VolumeSurgeResult represents the result of volume surge normalization
type VolumeSurgeResult struct {
	Value     float64 `json:"value"`
	Period    int     `json:"period"`
	IsValid   bool    `json:"is_valid"`
	DataCount int     `json:"data_count"`
}

// CalculateVolumeSurge compares the latest volume against its trailing
// moving average. The raw ratio (in percent) is clipped to [50,250] and
// rescaled to [0,100], so average volume maps to 25.
func CalculateVolumeSurge(volumes []float64, period int) VolumeSurgeResult {
	if period < 1 || len(volumes) < period {
		return VolumeSurgeResult{Period: period, IsValid: false, DataCount: len(volumes)}
	}

	var ma float64
	for _, v := range volumes[len(volumes)-period:] {
		ma += v
	}
	ma /= float64(period)
	if ma == 0 {
		return VolumeSurgeResult{Period: period, IsValid: false, DataCount: len(volumes)}
	}

	ratio := volumes[len(volumes)-1] / ma * 100
	if ratio < 50 {
		ratio = 50
	} else if ratio > 250 {
		ratio = 250
	}
	return VolumeSurgeResult{
		Value:     (ratio - 50) / 200 * 100,
		Period:    period,
		IsValid:   true,
		DataCount: len(volumes),
	}
}

// VWAPHoldResult reports the fraction of intraday bars whose low held above
// each VWAP band, in percent.
type VWAPHoldResult struct {
	AbovePlusSigma  float64 `json:"above_plus_sigma"`
	AboveVWAP       float64 `json:"above_vwap"`
	AboveMinusSigma float64 `json:"above_minus_sigma"`
	IsValid         bool    `json:"is_valid"`
	DataCount       int     `json:"data_count"`
}

// CalculateVWAPHold walks one session of intraday bars, accumulating the
// volume-weighted average of typical price and an expanding standard
// deviation of typical price, and counts how often the bar low stayed above
// VWAP+sigma, VWAP, and VWAP-sigma.
func CalculateVWAPHold(bars []fxpair.Bar) VWAPHoldResult {
	if len(bars) == 0 {
		return VWAPHoldResult{IsValid: false}
	}

	var cumTPV, cumVol float64
	var plus, mid, minus int
	tps := make([]float64, 0, len(bars))

	for _, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		tps = append(tps, tp)
		cumTPV += tp * b.Volume
		cumVol += b.Volume
		if cumVol == 0 {
			continue
		}
		vwap := cumTPV / cumVol
		_, sigma := meanStd(tps)

		if b.Low >= vwap+sigma {
			plus++
		}
		if b.Low >= vwap {
			mid++
		}
		if b.Low >= vwap-sigma {
			minus++
		}
	}

	n := float64(len(bars))
	return VWAPHoldResult{
		AbovePlusSigma:  float64(plus) / n * 100,
		AboveVWAP:       float64(mid) / n * 100,
		AboveMinusSigma: float64(minus) / n * 100,
		IsValid:         true,
		DataCount:       len(bars),
	}
}

// CumulativeReturns converts a close series into compounded returns relative
// to the first close: out[i] = prod(1 + r_1..r_i) - 1, with out[0] = 0.
func CumulativeReturns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	acc := 1.0
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			acc *= 1 + (closes[i]-closes[i-1])/closes[i-1]
		}
		out[i] = acc - 1
	}
	return out
}

func meanStd(values []float64) (mean, std float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}
