// Package exchange is the external market-data collaborator of the
// backtester: a REST candle fetcher and a websocket latest-price stream.
// Fetch failures are fatal for the run that requested them; the engine never
// degrades to a partial series.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// DataFetchError wraps a network or exchange failure while fetching candles
type DataFetchError struct {
	Symbol string
	Op     string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s for %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Fetcher returns an ordered candle series for a symbol and window
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol string, interval string, since, until time.Time) (*market.Series, error)
}

// PriceStream delivers latest-price updates until the context is canceled
type PriceStream interface {
	Subscribe(ctx context.Context, symbol string) (<-chan PriceUpdate, error)
}

// PriceUpdate is one latest-price tick
type PriceUpdate struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}
