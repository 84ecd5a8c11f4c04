package rolling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(values ...float64) []Observation {
	start := time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC)
	out := make([]Observation, len(values))
	for i, v := range values {
		out[i] = Observation{Date: start.AddDate(0, 0, 7*i), Value: v}
	}
	return out
}

func TestIndex_Basic(t *testing.T) {
	points, err := Index(obs(10, 20, 30, 40), 3)
	require.NoError(t, err)
	require.Len(t, points, 4)

	assert.False(t, points[0].Valid, "insufficient trailing history")
	assert.False(t, points[1].Valid, "insufficient trailing history")
	assert.True(t, points[2].Valid)
	assert.InDelta(t, 100.0, points[2].Value, 1e-9, "window max maps to 100")
	assert.True(t, points[3].Valid)
	assert.InDelta(t, 100.0, points[3].Value, 1e-9)
}

func TestIndex_MinMidMax(t *testing.T) {
	points, err := Index(obs(50, 0, 100, 25), 3)
	require.NoError(t, err)

	// window [50,0,100]: value 100 -> 100
	assert.InDelta(t, 100.0, points[2].Value, 1e-9)
	// window [0,100,25]: value 25 -> 25
	assert.InDelta(t, 25.0, points[3].Value, 1e-9)
}

func TestIndex_BoundedByConstruction(t *testing.T) {
	values := []float64{3, -8, 12, 7, -2, 15, 0, 9, -11, 4, 6, 1}
	points, err := Index(obs(values...), 4)
	require.NoError(t, err)
	for _, p := range points {
		if !p.Valid {
			continue
		}
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 100.0)
	}
}

func TestIndex_DegenerateWindow(t *testing.T) {
	points, err := Index(obs(5, 5, 5, 6), 3)
	require.NoError(t, err)

	assert.False(t, points[2].Valid, "flat window is undefined, not zero")
	assert.True(t, points[3].Valid)
	assert.InDelta(t, 100.0, points[3].Value, 1e-9)
}

func TestIndex_Idempotent(t *testing.T) {
	series := obs(4, 8, 2, 9, 1, 7)
	first, err := Index(series, 3)
	require.NoError(t, err)
	second, err := Index(series, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndex_IgnoresHistoryBeyondWindow(t *testing.T) {
	// Strict windowing: identical windows yield identical values no matter
	// how much history precedes them.
	long, err := Index(obs(1000, -1000, 10, 20, 30), 3)
	require.NoError(t, err)
	short, err := Index(obs(10, 20, 30), 3)
	require.NoError(t, err)
	assert.InDelta(t, short[2].Value, long[4].Value, 1e-9)
}

func TestIndex_InvalidLookback(t *testing.T) {
	_, err := Index(obs(1, 2), 0)
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	series := obs(10, 25, 20)
	diff := Diff(series)
	require.Len(t, diff, 2)
	assert.Equal(t, 15.0, diff[0].Value)
	assert.Equal(t, -5.0, diff[1].Value)
	assert.Equal(t, series[1].Date, diff[0].Date, "difference carries the later date")

	assert.Empty(t, Diff(obs(42)))
	assert.Empty(t, Diff(nil))
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 6})
	assert.InDelta(t, 4.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)

	mean, std = MeanStd([]float64{7})
	assert.Equal(t, 7.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = MeanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)
}

func TestZScore_ZeroStd(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(5, 5, 0), "flat distribution yields exactly zero")
	assert.InDelta(t, 1.5, ZScore(8, 5, 2), 1e-9)
}

func TestTail(t *testing.T) {
	series := obs(1, 2, 3, 4)
	assert.Len(t, Tail(series, 2), 2)
	assert.Equal(t, 3.0, Tail(series, 2)[0].Value)
	assert.Len(t, Tail(series, 10), 4)
}

func TestLastValid(t *testing.T) {
	points, err := Index(obs(5, 5, 5, 6, 6, 6), 3)
	require.NoError(t, err)
	// Last two windows are flat again; the last valid point is at index 4.
	p, ok := LastValid(points)
	require.True(t, ok)
	assert.Equal(t, points[4].Date, p.Date)

	_, ok = LastValid(nil)
	assert.False(t, ok)
}
