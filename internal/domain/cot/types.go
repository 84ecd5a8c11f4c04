// Package cot models Commitments of Traders positioning data: one record per
// asset per weekly reporting date, with long/short contract counts for the
// speculative (non-commercial), commercial, and retail (non-reportable)
// trader categories.
package cot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kmorita/cotscan/internal/domain/rolling"
)

// ErrInsufficientHistory indicates a series has fewer observations than the
// requested computation needs. Scans recover by omitting the asset; single
// pair calls surface it to the caller.
var ErrInsufficientHistory = errors.New("insufficient history")

// Category identifies a trader category within a COT report row.
type Category string

const (
	Speculative Category = "speculative"
	Commercial  Category = "commercial"
	Retail      Category = "retail"
)

// InvalidPositionDataError reports a negative long or short count, which is
// upstream data corruption and must never be absorbed into a net calculation.
type InvalidPositionDataError struct {
	AssetID  string
	Date     time.Time
	Category Category
	Side     string
	Value    int64
}

func (e *InvalidPositionDataError) Error() string {
	return fmt.Sprintf("invalid position data for %s at %s: %s %s count is negative (%d)",
		e.AssetID, e.Date.Format("2006-01-02"), e.Category, e.Side, e.Value)
}

// Net derives a net position from long and short contract counts. Both
// inputs must be non-negative; the net itself may be negative.
func Net(long, short int64) (int64, error) {
	if long < 0 {
		return 0, fmt.Errorf("net position: long count is negative (%d)", long)
	}
	if short < 0 {
		return 0, fmt.Errorf("net position: short count is negative (%d)", short)
	}
	return long - short, nil
}

// PositionRecord is one reported COT row for one asset as of one date.
// Retail counts are absent for some datasets; HasRetail flags presence.
type PositionRecord struct {
	AssetID string
	Date    time.Time

	SpecLong  int64
	SpecShort int64
	CommLong  int64
	CommShort int64

	RetailLong  int64
	RetailShort int64
	HasRetail   bool
}

// Validate checks that all present long/short counts are non-negative.
func (r PositionRecord) Validate() error {
	checks := []struct {
		cat     Category
		side    string
		value   int64
		present bool
	}{
		{Speculative, "long", r.SpecLong, true},
		{Speculative, "short", r.SpecShort, true},
		{Commercial, "long", r.CommLong, true},
		{Commercial, "short", r.CommShort, true},
		{Retail, "long", r.RetailLong, r.HasRetail},
		{Retail, "short", r.RetailShort, r.HasRetail},
	}
	for _, c := range checks {
		if c.present && c.value < 0 {
			return &InvalidPositionDataError{
				AssetID:  r.AssetID,
				Date:     r.Date,
				Category: c.cat,
				Side:     c.side,
				Value:    c.value,
			}
		}
	}
	return nil
}

// SpecNet returns the speculative net position. Records held by an
// AssetSeries are validated at construction, so the subtraction is safe.
func (r PositionRecord) SpecNet() int64 { return r.SpecLong - r.SpecShort }

// CommNet returns the commercial net position.
func (r PositionRecord) CommNet() int64 { return r.CommLong - r.CommShort }

// RetailNet returns the retail net position and whether retail data exists
// for this record.
func (r PositionRecord) RetailNet() (int64, bool) {
	if !r.HasRetail {
		return 0, false
	}
	return r.RetailLong - r.RetailShort, true
}

// AssetSeries is the ordered positioning history for a single asset:
// strictly increasing dates, no duplicates. Construct via NewSeries.
type AssetSeries struct {
	AssetID string
	Records []PositionRecord
}

// NewSeries builds an AssetSeries from raw records. Records are validated,
// sorted by date, and deduplicated with last-write-wins: when two records
// share a date, the one appearing later in the input survives.
func NewSeries(assetID string, records []PositionRecord) (*AssetSeries, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]PositionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := make([]PositionRecord, 0, len(sorted))
	for _, r := range sorted {
		r.AssetID = assetID
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(r.Date) {
			deduped[n-1] = r
			continue
		}
		deduped = append(deduped, r)
	}

	return &AssetSeries{AssetID: assetID, Records: deduped}, nil
}

// Len returns the number of observations.
func (s *AssetSeries) Len() int { return len(s.Records) }

// Latest returns the most recent record.
func (s *AssetSeries) Latest() (PositionRecord, bool) {
	if len(s.Records) == 0 {
		return PositionRecord{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// HasRetail reports whether every record in the series carries retail data.
// Reversal scans require a fully populated retail series.
func (s *AssetSeries) HasRetail() bool {
	if len(s.Records) == 0 {
		return false
	}
	for _, r := range s.Records {
		if !r.HasRetail {
			return false
		}
	}
	return true
}

// SpecNetSeries returns (date, speculative net) observations.
func (s *AssetSeries) SpecNetSeries() []rolling.Observation {
	out := make([]rolling.Observation, len(s.Records))
	for i, r := range s.Records {
		out[i] = rolling.Observation{Date: r.Date, Value: float64(r.SpecNet())}
	}
	return out
}

// CommNetSeries returns (date, commercial net) observations.
func (s *AssetSeries) CommNetSeries() []rolling.Observation {
	out := make([]rolling.Observation, len(s.Records))
	for i, r := range s.Records {
		out[i] = rolling.Observation{Date: r.Date, Value: float64(r.CommNet())}
	}
	return out
}

// RetailNetSeries returns (date, retail net) observations, or false when any
// record lacks retail data.
func (s *AssetSeries) RetailNetSeries() ([]rolling.Observation, bool) {
	if !s.HasRetail() {
		return nil, false
	}
	out := make([]rolling.Observation, len(s.Records))
	for i, r := range s.Records {
		net, _ := r.RetailNet()
		out[i] = rolling.Observation{Date: r.Date, Value: float64(net)}
	}
	return out, true
}
