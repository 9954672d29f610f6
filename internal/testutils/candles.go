// Package testutils provides shared utilities for testing
package testutils

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// D is a shorthand for building decimals in fixtures
func D(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Candle builds a single candle with sane defaults for the unset extremes:
// high is the body top plus 0.1%, low the body bottom minus 0.1%.
func Candle(symbol string, ts time.Time, open, close float64) market.Candle {
	o := decimal.NewFromFloat(open)
	c := decimal.NewFromFloat(close)
	body := decimal.Max(o, c)
	low := decimal.Min(o, c)
	return market.Candle{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      o,
		High:      body.Mul(decimal.NewFromFloat(1.001)),
		Low:       low.Mul(decimal.NewFromFloat(0.999)),
		Close:     c,
		Volume:    decimal.NewFromInt(100),
	}
}

// CandleOHLC builds a candle with every level set explicitly
func CandleOHLC(symbol string, ts time.Time, open, high, low, close, volume float64) market.Candle {
	return market.Candle{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromFloat(volume),
	}
}

// HourlySeries builds consecutive hourly candles from closes, starting at
// start. Each bar opens at the previous close.
func HourlySeries(symbol string, start time.Time, closes ...float64) *market.Series {
	candles := make([]market.Candle, 0, len(closes))
	open := closes[0]
	for i, close := range closes {
		candles = append(candles, Candle(symbol, start.Add(time.Duration(i)*time.Hour), open, close))
		open = close
	}
	return &market.Series{Symbol: symbol, Candles: candles}
}

// FlatSeries builds count hourly candles all at the same price
func FlatSeries(symbol string, start time.Time, price float64, count int) *market.Series {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = price
	}
	return HourlySeries(symbol, start, closes...)
}

// DayStart returns midnight of the given calendar day in loc
func DayStart(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
