// Package rolling provides the windowed statistics behind positioning
// indices: trailing min-max normalization to [0,100], first differences, and
// z-scores. All functions are pure; undefined values are carried as invalid
// points, never fabricated defaults.
package rolling

import (
	"fmt"
	"math"
	"time"
)

// Observation is one dated raw value of a time series.
type Observation struct {
	Date  time.Time
	Value float64
}

// Point is one dated derived value. Valid is false when the computation is
// undefined at that date (insufficient trailing history, or a degenerate
// window where max equals min).
type Point struct {
	Date  time.Time
	Value float64
	Valid bool
}

// Index computes the trailing min-max index for each observation:
//
//	(value - min(window)) / (max(window) - min(window)) * 100
//
// where the window is the lookback observations ending at (and including)
// the current one. Output is in [0,100] by construction since the current
// value is part of its own window. Points with fewer than lookback trailing
// observations, or a flat window, are marked invalid.
func Index(obs []Observation, lookback int) ([]Point, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("rolling index: lookback must be positive, got %d", lookback)
	}

	out := make([]Point, len(obs))
	for i, o := range obs {
		out[i] = Point{Date: o.Date}
		if i+1 < lookback {
			continue
		}
		lo, hi := obs[i].Value, obs[i].Value
		for j := i - lookback + 1; j <= i; j++ {
			v := obs[j].Value
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi == lo {
			continue
		}
		out[i].Value = (o.Value - lo) / (hi - lo) * 100
		out[i].Valid = true
	}
	return out, nil
}

// Diff returns the first difference of a series. Each output observation
// carries the date of the later operand; length is len(obs)-1 (empty for
// fewer than two observations).
func Diff(obs []Observation) []Observation {
	if len(obs) < 2 {
		return nil
	}
	out := make([]Observation, len(obs)-1)
	for i := 1; i < len(obs); i++ {
		out[i-1] = Observation{Date: obs[i].Date, Value: obs[i].Value - obs[i-1].Value}
	}
	return out
}

// MeanStd returns the mean and sample standard deviation of values. Std is
// zero for fewer than two values.
func MeanStd(values []float64) (mean, std float64) {
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

// ZScore standardizes value against mean and std. A zero std yields exactly
// zero rather than NaN: a flat change distribution carries no signal.
func ZScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}

// Tail returns the last n observations, or all of them when the series is
// shorter than n.
func Tail(obs []Observation, n int) []Observation {
	if n >= len(obs) {
		return obs
	}
	return obs[len(obs)-n:]
}

// LastValid returns the most recent valid point.
func LastValid(points []Point) (Point, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Valid {
			return points[i], true
		}
	}
	return Point{}, false
}

// Values extracts the raw values of a series.
func Values(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Value
	}
	return out
}
