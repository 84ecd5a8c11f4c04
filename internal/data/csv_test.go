package data

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cotHeader = `"Market and Exchange Names","As of Date in Form YYYY-MM-DD","CFTC Contract Market Code","Noncommercial Positions-Long (All)","Noncommercial Positions-Short (All)","Commercial Positions-Long (All)","Commercial Positions-Short (All)","Nonreportable Positions-Long (All)","Nonreportable Positions-Short (All)"`

func TestParseCOT(t *testing.T) {
	report := cotHeader + "\n" +
		`"EURO FX - CME","2026-02-03","099741","120,500","40,000","50,000","130,000","9,500","10,000"` + "\n" +
		`"EURO FX - CME","2026-02-10","099741","125,000","38,000","48,000","135,000","9,000","9,000"` + "\n" +
		`"JAPANESE YEN - CME","2026-02-10","097741","30,000","90,000","100,000","40,000","5,000","5,000"` + "\n" +
		`"LUMBER - CME","2026-02-10","058643","1,000","2,000","3,000","4,000","100","200"` + "\n"
	assets := map[string]string{"099741": "EUR", "097741": "JPY"}

	universe, err := ParseCOT(strings.NewReader(report), assets)
	require.NoError(t, err)
	require.Len(t, universe, 2, "unmapped contract codes are skipped")

	eur := universe["EUR"]
	require.NotNil(t, eur)
	require.Equal(t, 2, eur.Len())
	assert.Equal(t, "EUR", eur.AssetID)
	assert.True(t, eur.HasRetail())

	first := eur.Records[0]
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, int64(120500), first.SpecLong)
	assert.Equal(t, int64(40000), first.SpecShort)
	assert.Equal(t, int64(80500), first.SpecNet())
	assert.Equal(t, int64(-80000), first.CommNet())

	jpy := universe["JPY"]
	require.Equal(t, 1, jpy.Len())
	assert.Equal(t, int64(-60000), jpy.Records[0].SpecNet())
}

func TestParseCOT_UnorderedRows(t *testing.T) {
	report := cotHeader + "\n" +
		`"EURO FX","2026-02-10","099741","2","0","0","0","0","0"` + "\n" +
		`"EURO FX","2026-02-03","099741","1","0","0","0","0","0"` + "\n"

	universe, err := ParseCOT(strings.NewReader(report), map[string]string{"099741": "EUR"})
	require.NoError(t, err)
	eur := universe["EUR"]
	require.Equal(t, 2, eur.Len())
	assert.True(t, eur.Records[0].Date.Before(eur.Records[1].Date))
}

func TestParseCOT_WithoutRetailColumns(t *testing.T) {
	report := `"As of Date in Form YYYY-MM-DD","CFTC Contract Market Code","Noncommercial Positions-Long (All)","Noncommercial Positions-Short (All)","Commercial Positions-Long (All)","Commercial Positions-Short (All)"` + "\n" +
		`"2026-02-03","099741","10","5","3","8"` + "\n"

	universe, err := ParseCOT(strings.NewReader(report), map[string]string{"099741": "EUR"})
	require.NoError(t, err)
	assert.False(t, universe["EUR"].HasRetail())
}

func TestParseCOT_MissingColumn(t *testing.T) {
	report := `"As of Date in Form YYYY-MM-DD","CFTC Contract Market Code"` + "\n"
	_, err := ParseCOT(strings.NewReader(report), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestParseCOT_BadDate(t *testing.T) {
	report := cotHeader + "\n" +
		`"EURO FX","03/02/2026","099741","1","0","0","0","0","0"` + "\n"
	_, err := ParseCOT(strings.NewReader(report), map[string]string{"099741": "EUR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad date")
}

func TestParseCOT_BadCount(t *testing.T) {
	report := cotHeader + "\n" +
		`"EURO FX","2026-02-03","099741","many","0","0","0","0","0"` + "\n"
	_, err := ParseCOT(strings.NewReader(report), map[string]string{"099741": "EUR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad count")
}

func TestParseBars(t *testing.T) {
	csvBody := "Date,Open,High,Low,Close,Volume\n" +
		"2026-02-04,1.10,1.12,1.09,1.11,1000\n" +
		"2026-02-03,1.08,1.11,1.07,1.10,900\n"

	bars, err := ParseBars(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Date.Before(bars[1].Date), "bars come back date-sorted")
	assert.InDelta(t, 1.08, bars[0].Open, 1e-9)
	assert.InDelta(t, 1.12, bars[1].High, 1e-9)
	assert.InDelta(t, 1000.0, bars[1].Volume, 1e-9)
}

func TestParseBars_CaseInsensitiveNoVolume(t *testing.T) {
	csvBody := "DATE,close,OPEN,high,LOW\n" +
		"2026-02-03,1.10,1.08,1.11,1.07\n"

	bars, err := ParseBars(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.InDelta(t, 1.10, bars[0].Close, 1e-9)
	assert.Zero(t, bars[0].Volume)
}

func TestParseBars_MissingColumn(t *testing.T) {
	_, err := ParseBars(strings.NewReader("Date,Open,High,Low\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestParseBars_TimestampDates(t *testing.T) {
	csvBody := "date,open,high,low,close\n" +
		"2026-02-03 09:30:00,1,2,1,2\n"
	bars, err := ParseBars(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 9, bars[0].Date.Hour())
}

func TestParseCloses(t *testing.T) {
	csvBody := "ticker,date,close\n" +
		"EURUSD=X,2026-02-04,1.11\n" +
		"EURUSD=X,2026-02-02,1.09\n" +
		"JPY=X,2026-02-03,150.5\n"

	table, err := ParseCloses(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, table["EURUSD=X"], 2)
	assert.True(t, table["EURUSD=X"][0].Date.Before(table["EURUSD=X"][1].Date))
	assert.InDelta(t, 150.5, table["JPY=X"][0].Close, 1e-9)
}

func TestCloseTableLookup(t *testing.T) {
	d := func(day int) time.Time {
		return time.Date(2026, time.February, day, 0, 0, 0, 0, time.UTC)
	}
	table := CloseTable{
		"EURUSD=X": {
			{Date: d(2), Close: 1.09},
			{Date: d(4), Close: 1.11},
			{Date: d(6), Close: 1.12},
		},
	}

	// Last close within the four days after the report date wins.
	c, ok := table.Lookup("EURUSD=X", d(3))
	require.True(t, ok)
	assert.InDelta(t, 1.12, c, 1e-9)

	// Nothing after the date: fall back to the preceding week.
	c, ok = table.Lookup("EURUSD=X", d(10))
	require.True(t, ok)
	assert.InDelta(t, 1.12, c, 1e-9)

	// Too far past the data entirely.
	_, ok = table.Lookup("EURUSD=X", d(20))
	assert.False(t, ok)

	_, ok = table.Lookup("UNKNOWN", d(3))
	assert.False(t, ok)
}
