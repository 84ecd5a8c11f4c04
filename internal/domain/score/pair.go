// Package score combines two assets' rolling positioning indices into a
// single directional pair score: positive favors the base asset, negative
// the quote.
package score

import (
	"fmt"
	"time"

	"github.com/kmorita/cotscan/internal/domain/cot"
	"github.com/kmorita/cotscan/internal/domain/fxpair"
	"github.com/kmorita/cotscan/internal/domain/rolling"
)

// Snapshot is the latest-value pair score: score = base index - quote index,
// in roughly [-100, 100]. BaseDate and QuoteDate may differ when the two
// assets report on different calendars.
type Snapshot struct {
	BaseIndex  float64
	QuoteIndex float64
	Score      float64
	BaseDate   time.Time
	QuoteDate  time.Time
}

// PairSnapshot scores the latest defined index values of two net-position
// series. It fails with cot.ErrInsufficientHistory when either side has
// fewer than lookback observations or no defined index value at all (an
// entirely flat history).
func PairSnapshot(base, quote []rolling.Observation, lookback int) (Snapshot, error) {
	baseIdx, err := latestIndex(base, lookback, "base")
	if err != nil {
		return Snapshot{}, err
	}
	quoteIdx, err := latestIndex(quote, lookback, "quote")
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		BaseIndex:  baseIdx.Value,
		QuoteIndex: quoteIdx.Value,
		Score:      baseIdx.Value - quoteIdx.Value,
		BaseDate:   baseIdx.Date,
		QuoteDate:  quoteIdx.Date,
	}, nil
}

func latestIndex(obs []rolling.Observation, lookback int, side string) (rolling.Point, error) {
	if len(obs) < lookback {
		return rolling.Point{}, fmt.Errorf("%s series: %w (need %d observations, have %d)",
			side, cot.ErrInsufficientHistory, lookback, len(obs))
	}
	points, err := rolling.Index(obs, lookback)
	if err != nil {
		return rolling.Point{}, err
	}
	p, ok := rolling.LastValid(points)
	if !ok {
		return rolling.Point{}, fmt.Errorf("%s series: %w (no defined index value)",
			side, cot.ErrInsufficientHistory)
	}
	return p, nil
}

// HistoryPoint is one row of a pair score history. Delta is the change from
// the previous row; the first row of a history has HasDelta false.
type HistoryPoint struct {
	Date       time.Time
	BaseIndex  float64
	QuoteIndex float64
	Score      float64
	Delta      float64
	HasDelta   bool
}

// PairHistory computes the full score series for a pair. The two index
// series are inner-joined on date: only dates where both sides have a
// defined index appear, with no forward fill across the series boundary.
// A join of fewer than two rows yields an empty history, since the first
// difference needs two rows.
func PairHistory(base, quote []rolling.Observation, lookback int) ([]HistoryPoint, error) {
	if len(base) < lookback || len(quote) < lookback {
		return nil, fmt.Errorf("pair history: %w (need %d observations, have %d base / %d quote)",
			cot.ErrInsufficientHistory, lookback, len(base), len(quote))
	}
	basePoints, err := rolling.Index(base, lookback)
	if err != nil {
		return nil, err
	}
	quotePoints, err := rolling.Index(quote, lookback)
	if err != nil {
		return nil, err
	}

	joined := innerJoin(basePoints, quotePoints)
	if len(joined) < 2 {
		return nil, nil
	}
	for i := 1; i < len(joined); i++ {
		joined[i].Delta = joined[i].Score - joined[i-1].Score
		joined[i].HasDelta = true
	}
	return joined, nil
}

// innerJoin merges two index series on equal dates, keeping only rows where
// both points are defined. Inputs are date-ordered, so a two-pointer sweep
// suffices.
func innerJoin(base, quote []rolling.Point) []HistoryPoint {
	var out []HistoryPoint
	i, j := 0, 0
	for i < len(base) && j < len(quote) {
		switch {
		case base[i].Date.Before(quote[j].Date):
			i++
		case quote[j].Date.Before(base[i].Date):
			j++
		default:
			if base[i].Valid && quote[j].Valid {
				out = append(out, HistoryPoint{
					Date:       base[i].Date,
					BaseIndex:  base[i].Value,
					QuoteIndex: quote[j].Value,
					Score:      base[i].Value - quote[j].Value,
				})
			}
			i++
			j++
		}
	}
	return out
}

// PricedPoint pairs a history row with the pair's closing price on that
// date, for display alongside the score.
type PricedPoint struct {
	HistoryPoint
	Close    float64
	HasClose bool
}

// WithPrices left-joins closing prices onto a score history by date. Rows
// without a matching bar keep HasClose false; bars without a score row are
// dropped.
func WithPrices(history []HistoryPoint, bars []fxpair.Bar) []PricedPoint {
	closes := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		closes[dateKey(b.Date)] = b.Close
	}
	out := make([]PricedPoint, len(history))
	for i, h := range history {
		out[i] = PricedPoint{HistoryPoint: h}
		if c, ok := closes[dateKey(h.Date)]; ok {
			out[i].Close = c
			out[i].HasClose = true
		}
	}
	return out
}

func dateKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
