package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies the direction of a signal or position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Candle represents a single OHLCV bar. Candles are immutable once loaded.
type Candle struct {
	Symbol    string
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// TypicalPrice returns (high + low + close) / 3
func (c Candle) TypicalPrice() decimal.Decimal {
	return c.High.Add(c.Low).Add(c.Close).Div(decimal.NewFromInt(3))
}

// Series is a collection of candles for one symbol, ordered by timestamp
type Series struct {
	Symbol  string
	Candles []Candle
}

// Closes extracts the close column
func (s *Series) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high column
func (s *Series) Highs() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low column
func (s *Series) Lows() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume column
func (s *Series) Volumes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}
