package market

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func candle(ts time.Time, open, high, low, close float64) Candle {
	return Candle{
		Symbol:    "BTC/USDT",
		Timestamp: ts,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromInt(100),
	}
}

func TestSeriesValidate(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := &Series{
		Symbol: "BTC/USDT",
		Candles: []Candle{
			candle(base, 100, 110, 95, 105),
			candle(base.Add(time.Hour), 105, 112, 100, 108),
		},
	}

	if err := series.Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}
}

func TestSeriesValidate_Empty(t *testing.T) {
	series := &Series{Symbol: "BTC/USDT"}
	if err := series.Validate(); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestSeriesValidate_Unordered(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := &Series{
		Symbol: "BTC/USDT",
		Candles: []Candle{
			candle(base.Add(time.Hour), 100, 110, 95, 105),
			candle(base, 105, 112, 100, 108),
		},
	}
	if err := series.Validate(); !errors.Is(err, ErrUnorderedSeries) {
		t.Fatalf("expected ErrUnorderedSeries, got %v", err)
	}

	// Duplicate timestamps are also a violation
	series.Candles[0].Timestamp = base
	if err := series.Validate(); !errors.Is(err, ErrUnorderedSeries) {
		t.Fatalf("expected ErrUnorderedSeries for duplicates, got %v", err)
	}
}

func TestSeriesValidate_InvalidBar(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		c    Candle
	}{
		{"high below body", candle(base, 100, 99, 95, 98)},
		{"low above body", candle(base, 100, 110, 101, 105)},
		{"non-positive price", candle(base, 0, 110, 95, 105)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := &Series{Symbol: "BTC/USDT", Candles: []Candle{tc.c}}
			if err := series.Validate(); !errors.Is(err, ErrInvalidBar) {
				t.Fatalf("expected ErrInvalidBar, got %v", err)
			}
		})
	}
}

func TestLocation_Fallback(t *testing.T) {
	loc := Location("Not/AZone")
	if loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", loc)
	}
}

func TestDayKey_CrossesMidnight(t *testing.T) {
	loc := Location("America/Argentina/Buenos_Aires") // UTC-3, no DST

	// 02:30 UTC is 23:30 the previous local day
	ts := time.Date(2024, 3, 2, 2, 30, 0, 0, time.UTC)
	if got := DayKey(ts, loc); got != "2024-03-01" {
		t.Fatalf("expected 2024-03-01, got %s", got)
	}
	if got := LocalHour(ts, loc); got != 23 {
		t.Fatalf("expected local hour 23, got %d", got)
	}
}

func TestGenerateSample(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := GenerateSample("BTC/USDT", start, 48, 50000, time.Hour)

	if len(series.Candles) != 48 {
		t.Fatalf("expected 48 candles, got %d", len(series.Candles))
	}
	if err := series.Validate(); err != nil {
		t.Fatalf("generated series should validate: %v", err)
	}
	if !series.Candles[1].Timestamp.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected hourly spacing, got %s", series.Candles[1].Timestamp)
	}

	// Deterministic: two generations are identical
	again := GenerateSample("BTC/USDT", start, 48, 50000, time.Hour)
	for i := range series.Candles {
		if !series.Candles[i].Close.Equal(again.Candles[i].Close) {
			t.Fatalf("generation should be deterministic, diverged at %d", i)
		}
	}
}
