package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

const (
	binanceBaseURL  = "https://api.binance.com"
	binanceMaxLimit = 1000
)

// BinanceClient fetches candles from the Binance public REST API. Requests
// are rate limited and retried with exponential backoff.
type BinanceClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
	maxRetries int
}

// NewBinanceClient creates a client with sane defaults
func NewBinanceClient() *BinanceClient {
	return &BinanceClient{
		baseURL:    binanceBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    newTokenBucket(10, 20),
		maxRetries: 3,
	}
}

// normalizeSymbol converts "BTC/USDT" to the exchange's "BTCUSDT" form
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// FetchCandles fetches the klines covering [since, until), paging through the
// API limit. Failures surface as a DataFetchError.
func (b *BinanceClient) FetchCandles(ctx context.Context, symbol string, interval string, since, until time.Time) (*market.Series, error) {
	series := &market.Series{Symbol: symbol}
	cursor := since

	for cursor.Before(until) {
		batch, err := b.fetchPage(ctx, symbol, interval, cursor, until)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		series.Candles = append(series.Candles, batch...)
		last := batch[len(batch)-1].Timestamp
		if !last.After(cursor) {
			break
		}
		cursor = last.Add(time.Millisecond)
	}

	logger.Component("exchange").Debug("candles fetched",
		"symbol", symbol, "interval", interval, "count", len(series.Candles))
	return series, nil
}

func (b *BinanceClient) fetchPage(ctx context.Context, symbol, interval string, since, until time.Time) ([]market.Candle, error) {
	values := url.Values{}
	values.Set("symbol", normalizeSymbol(symbol))
	values.Set("interval", interval)
	values.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	values.Set("endTime", strconv.FormatInt(until.UnixMilli(), 10))
	values.Set("limit", strconv.Itoa(binanceMaxLimit))

	endpoint := b.baseURL + "/api/v3/klines?" + values.Encode()

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, &DataFetchError{Symbol: symbol, Op: "klines", Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		if err := b.limiter.wait(ctx); err != nil {
			return nil, &DataFetchError{Symbol: symbol, Op: "klines", Err: err}
		}

		candles, err := b.doRequest(ctx, endpoint, symbol)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		logger.Component("exchange").WithError(err).Warn("klines request failed",
			"symbol", symbol, "attempt", attempt+1)
	}

	return nil, &DataFetchError{Symbol: symbol, Op: "klines", Err: lastErr}
}

func (b *BinanceClient) doRequest(ctx context.Context, endpoint, symbol string) ([]market.Candle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Kline rows: [openTime, open, high, low, close, volume, closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode klines: %w", err)
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}

		prices := make([]decimal.Decimal, 5)
		ok := true
		for i := 1; i <= 5; i++ {
			var s string
			if err := json.Unmarshal(row[i], &s); err != nil {
				ok = false
				break
			}
			parsed, err := decimal.NewFromString(s)
			if err != nil {
				ok = false
				break
			}
			prices[i-1] = parsed
		}
		if !ok {
			continue
		}

		candles = append(candles, market.Candle{
			Symbol:    symbol,
			Timestamp: time.UnixMilli(openTime).UTC(),
			Open:      prices[0],
			High:      prices[1],
			Low:       prices[2],
			Close:     prices[3],
			Volume:    prices[4],
		})
	}

	return candles, nil
}
