// Package data ingests raw inputs: CFTC legacy-futures COT report files and
// OHLCV price bar files. Each load rebuilds series wholesale; the report
// file is the source of truth and there are no incremental updates.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kmorita/cotscan/internal/domain/cot"
	"github.com/kmorita/cotscan/internal/domain/fxpair"
)

// Column names as published in the CFTC legacy futures report.
const (
	colMarketCode = "CFTC Contract Market Code"
	colDate       = "As of Date in Form YYYY-MM-DD"
	colSpecLong   = "Noncommercial Positions-Long (All)"
	colSpecShort  = "Noncommercial Positions-Short (All)"
	colCommLong   = "Commercial Positions-Long (All)"
	colCommShort  = "Commercial Positions-Short (All)"
	colRetLong    = "Nonreportable Positions-Long (All)"
	colRetShort   = "Nonreportable Positions-Short (All)"
)

// ParseCOT reads a legacy-futures COT report and returns one AssetSeries
// per asset in the map. Rows whose contract market code is not in assets are
// ignored. Retail (nonreportable) columns are optional; series built from
// files without them carry no retail data.
func ParseCOT(r io.Reader, assets map[string]string) (map[string]*cot.AssetSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read COT header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colMarketCode, colDate, colSpecLong, colSpecShort, colCommLong, colCommShort} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("COT report missing column %q", required)
		}
	}
	_, hasRetLong := cols[colRetLong]
	_, hasRetShort := cols[colRetShort]
	hasRetail := hasRetLong && hasRetShort

	records := make(map[string][]cot.PositionRecord)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read COT row %d: %w", line, err)
		}
		line++

		code := field(row, cols[colMarketCode])
		assetID, ok := assets[code]
		if !ok {
			continue
		}

		date, err := time.Parse("2006-01-02", field(row, cols[colDate]))
		if err != nil {
			return nil, fmt.Errorf("COT row %d (%s): bad date: %w", line, assetID, err)
		}
		rec := cot.PositionRecord{AssetID: assetID, Date: date.UTC()}
		if rec.SpecLong, err = count(row, cols[colSpecLong]); err != nil {
			return nil, fmt.Errorf("COT row %d (%s): %w", line, assetID, err)
		}
		if rec.SpecShort, err = count(row, cols[colSpecShort]); err != nil {
			return nil, fmt.Errorf("COT row %d (%s): %w", line, assetID, err)
		}
		if rec.CommLong, err = count(row, cols[colCommLong]); err != nil {
			return nil, fmt.Errorf("COT row %d (%s): %w", line, assetID, err)
		}
		if rec.CommShort, err = count(row, cols[colCommShort]); err != nil {
			return nil, fmt.Errorf("COT row %d (%s): %w", line, assetID, err)
		}
		if hasRetail {
			long, lerr := count(row, cols[colRetLong])
			short, serr := count(row, cols[colRetShort])
			if lerr == nil && serr == nil {
				rec.RetailLong, rec.RetailShort, rec.HasRetail = long, short, true
			}
		}
		records[assetID] = append(records[assetID], rec)
	}

	universe := make(map[string]*cot.AssetSeries, len(records))
	for id, recs := range records {
		series, err := cot.NewSeries(id, recs)
		if err != nil {
			return nil, fmt.Errorf("build series for %s: %w", id, err)
		}
		universe[id] = series
	}
	return universe, nil
}

// LoadCOTFile parses a COT report from disk.
func LoadCOTFile(path string, assets map[string]string) (map[string]*cot.AssetSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open COT file: %w", err)
	}
	defer f.Close()
	return ParseCOT(f, assets)
}

// ParseBars reads OHLCV bars from a CSV with a Date,Open,High,Low,Close,Volume
// header (case-insensitive, any column order). Bars are returned date-sorted.
func ParseBars(r io.Reader) ([]fxpair.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read bars header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("bars file missing column %q", required)
		}
	}
	volumeCol, hasVolume := cols["volume"]

	var bars []fxpair.Bar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars row %d: %w", line, err)
		}
		line++

		date, err := parseBarDate(field(row, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("bars row %d: %w", line, err)
		}
		bar := fxpair.Bar{Date: date}
		if bar.Open, err = price(row, cols["open"]); err != nil {
			return nil, fmt.Errorf("bars row %d: %w", line, err)
		}
		if bar.High, err = price(row, cols["high"]); err != nil {
			return nil, fmt.Errorf("bars row %d: %w", line, err)
		}
		if bar.Low, err = price(row, cols["low"]); err != nil {
			return nil, fmt.Errorf("bars row %d: %w", line, err)
		}
		if bar.Close, err = price(row, cols["close"]); err != nil {
			return nil, fmt.Errorf("bars row %d: %w", line, err)
		}
		if hasVolume {
			if bar.Volume, err = price(row, volumeCol); err != nil {
				return nil, fmt.Errorf("bars row %d: %w", line, err)
			}
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// LoadBarsFile parses a bars CSV from disk.
func LoadBarsFile(path string) ([]fxpair.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()
	return ParseBars(f)
}

func parseBarDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func count(row []string, i int) (int64, error) {
	s := strings.ReplaceAll(field(row, i), ",", "")
	if s == "" || s == "." {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad count %q", s)
	}
	return v, nil
}

func price(row []string, i int) (float64, error) {
	s := field(row, i)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q", s)
	}
	return v, nil
}
