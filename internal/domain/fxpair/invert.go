package fxpair

import (
	"fmt"
	"time"
)

// Bar is one OHLCV price bar.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Invert converts a bar quoted as A/B into the reciprocal B/A quote. Under
// x -> 1/x the ordering reverses, so the old low becomes the new high and
// vice versa; open and close transform directly. Volume is unchanged.
// All four prices must be positive for the reciprocal to be meaningful.
func Invert(b Bar) (Bar, error) {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close},
	} {
		if p.value <= 0 {
			return Bar{}, fmt.Errorf("invert bar at %s: %s price must be positive, got %g",
				b.Date.Format("2006-01-02"), p.name, p.value)
		}
	}
	return Bar{
		Date:   b.Date,
		Open:   1 / b.Open,
		High:   1 / b.Low,
		Low:    1 / b.High,
		Close:  1 / b.Close,
		Volume: b.Volume,
	}, nil
}

// InvertSeries inverts every bar in a series.
func InvertSeries(bars []Bar) ([]Bar, error) {
	out := make([]Bar, len(bars))
	for i, b := range bars {
		inv, err := Invert(b)
		if err != nil {
			return nil, err
		}
		out[i] = inv
	}
	return out, nil
}
