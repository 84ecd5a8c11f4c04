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
)

// ClosePoint is one dated closing price.
type ClosePoint struct {
	Date  time.Time
	Close float64
}

// CloseTable maps tickers to date-sorted closing prices. It backs the price
// lookup of the monetary flow scan.
type CloseTable map[string][]ClosePoint

// ParseCloses reads a ticker,date,close CSV (header required) into a table.
func ParseCloses(r io.Reader) (CloseTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read closes header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"ticker", "date", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("closes file missing column %q", required)
		}
	}

	table := make(CloseTable)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read closes row %d: %w", line, err)
		}
		line++

		ticker := field(row, cols["ticker"])
		date, err := parseBarDate(field(row, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("closes row %d: %w", line, err)
		}
		close, err := strconv.ParseFloat(field(row, cols["close"]), 64)
		if err != nil {
			return nil, fmt.Errorf("closes row %d: bad close %q", line, field(row, cols["close"]))
		}
		table[ticker] = append(table[ticker], ClosePoint{Date: date, Close: close})
	}

	for ticker := range table {
		points := table[ticker]
		sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		table[ticker] = points
	}
	return table, nil
}

// LoadClosesFile parses a closes CSV from disk.
func LoadClosesFile(path string) (CloseTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open closes file: %w", err)
	}
	defer f.Close()
	return ParseCloses(f)
}

// Lookup finds a close for ticker near date: the last close within the four
// days following the report date, falling back to the last close within the
// preceding week. Markets are closed on some report dates, so an exact match
// is not required.
func (t CloseTable) Lookup(ticker string, date time.Time) (float64, bool) {
	points, ok := t[ticker]
	if !ok {
		return 0, false
	}
	if c, ok := lastCloseIn(points, date, date.AddDate(0, 0, 4)); ok {
		return c, true
	}
	return lastCloseIn(points, date.AddDate(0, 0, -7), date)
}

func lastCloseIn(points []ClosePoint, from, to time.Time) (float64, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		d := points[i].Date
		if d.After(to) {
			continue
		}
		if d.Before(from) {
			break
		}
		return points[i].Close, true
	}
	return 0, false
}
