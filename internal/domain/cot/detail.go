package cot

import (
	"fmt"
	"time"
)

// CategoryDetail summarizes one trader category for the latest report week,
// with week-over-week changes and the long-side share of open positions.
type CategoryDetail struct {
	Long  int64
	Short int64
	Net   int64

	LongChange  int64
	ShortChange int64
	NetChange   int64

	// LongRatio is long/(long+short) in percent, zero when no positions.
	LongRatio       float64
	LongRatioChange float64
}

// WeeklyDetail is the latest-vs-previous breakdown for one asset. Retail is
// nil when either week lacks retail data.
type WeeklyDetail struct {
	AssetID  string
	Date     time.Time
	PrevDate time.Time

	Speculative CategoryDetail
	Commercial  CategoryDetail
	Retail      *CategoryDetail
}

// WeeklyDetail builds the latest-week breakdown. It needs at least two
// observations to report changes.
func (s *AssetSeries) WeeklyDetail() (*WeeklyDetail, error) {
	if len(s.Records) < 2 {
		return nil, fmt.Errorf("weekly detail for %s: %w (need 2 observations, have %d)",
			s.AssetID, ErrInsufficientHistory, len(s.Records))
	}
	latest := s.Records[len(s.Records)-1]
	prev := s.Records[len(s.Records)-2]

	d := &WeeklyDetail{
		AssetID:     s.AssetID,
		Date:        latest.Date,
		PrevDate:    prev.Date,
		Speculative: categoryDetail(latest.SpecLong, latest.SpecShort, prev.SpecLong, prev.SpecShort),
		Commercial:  categoryDetail(latest.CommLong, latest.CommShort, prev.CommLong, prev.CommShort),
	}
	if latest.HasRetail && prev.HasRetail {
		r := categoryDetail(latest.RetailLong, latest.RetailShort, prev.RetailLong, prev.RetailShort)
		d.Retail = &r
	}
	return d, nil
}

func categoryDetail(long, short, prevLong, prevShort int64) CategoryDetail {
	return CategoryDetail{
		Long:            long,
		Short:           short,
		Net:             long - short,
		LongChange:      long - prevLong,
		ShortChange:     short - prevShort,
		NetChange:       (long - short) - (prevLong - prevShort),
		LongRatio:       longRatio(long, short),
		LongRatioChange: longRatio(long, short) - longRatio(prevLong, prevShort),
	}
}

func longRatio(long, short int64) float64 {
	total := long + short
	if total <= 0 {
		return 0
	}
	return float64(long) / float64(total) * 100
}
