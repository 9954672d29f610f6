package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", normalizeSymbol("BTC/USDT"))
	assert.Equal(t, "ETHUSDT", normalizeSymbol("ethusdt"))
	assert.Equal(t, "BTCUSDT", normalizeSymbol("BTCUSDT"))
}

func testClient(baseURL string) *BinanceClient {
	return &BinanceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    newTokenBucket(1000, 1000),
		maxRetries: 0,
	}
}

func TestFetchCandles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))

		// One page, then an empty page ends the pagination
		if r.URL.Query().Get("startTime") == "1709290800000" {
			w.Write([]byte(`[
				[1709290800000,"50000","50100","49900","50050","1000",1709294399999],
				[1709294400000,"50050","50200","50000","50150","1200",1709297999999]
			]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	since := time.UnixMilli(1709290800000).UTC()
	until := since.Add(24 * time.Hour)

	series, err := client.FetchCandles(context.Background(), "BTC/USDT", "1h", since, until)
	require.NoError(t, err)
	require.Len(t, series.Candles, 2)

	first := series.Candles[0]
	assert.True(t, first.Open.Equal(decimal.NewFromInt(50000)))
	assert.True(t, first.Timestamp.Equal(since))
	assert.Equal(t, "BTC/USDT", first.Symbol)
	require.NoError(t, series.Validate())
}

func TestFetchCandles_SkipsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("startTime") == "1709290800000" {
			w.Write([]byte(`[
				[1709290800000,"50000","50100","49900","50050","1000",0],
				[1709294400000,"not-a-price","50200","50000","50150","1200",0]
			]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	since := time.UnixMilli(1709290800000).UTC()

	series, err := client.FetchCandles(context.Background(), "BTC/USDT", "1h", since, since.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Len(t, series.Candles, 1, "malformed rows are skipped")
}

func TestFetchCandles_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	since := time.UnixMilli(1709290800000).UTC()

	_, err := client.FetchCandles(context.Background(), "BTC/USDT", "1h", since, since.Add(time.Hour))
	require.Error(t, err)

	var fetchErr *DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "BTC/USDT", fetchErr.Symbol)
	assert.Equal(t, "klines", fetchErr.Op)
}

func TestTokenBucket(t *testing.T) {
	tb := newTokenBucket(1000, 2)

	ctx := context.Background()
	require.NoError(t, tb.wait(ctx))
	require.NoError(t, tb.wait(ctx), "burst allows two immediate tokens")

	// A drained, barely-refilling bucket must honor cancellation
	slow := newTokenBucket(0.001, 1)
	require.NoError(t, slow.wait(ctx))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, slow.wait(canceled), "canceled context aborts the wait")
}

func TestDataFetchError_Unwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &DataFetchError{Symbol: "BTC/USDT", Op: "klines", Err: inner}

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "BTC/USDT")
}
