package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Default(), nil)
}

func postBacktest(t *testing.T, router *gin.Engine, req BacktestRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/backtest", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListStrategies(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/strategies", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Strategies []string `json:"strategies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Strategies, config.StrategyORB)
	assert.Contains(t, resp.Strategies, config.StrategyMultifactor)
	assert.Len(t, resp.Strategies, 5)
}

func TestGetDefaults(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunBacktest_Sample(t *testing.T) {
	router := testRouter()

	w := postBacktest(t, router, BacktestRequest{
		Symbol:   "BTC/USDT",
		Timezone: "UTC",
		Sample:   &SampleParams{Candles: 24 * 10, BasePrice: 50000},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "BTC/USDT", resp.Symbol)
	assert.Equal(t, config.StrategyORB, resp.Strategy)
	require.NotNil(t, resp.Summary)
	require.NotNil(t, resp.Validation)
	assert.NotEmpty(t, resp.ProfitFactor)
	assert.Empty(t, resp.Trades, "trades omitted unless requested")
}

func TestRunBacktest_IncludeTrades(t *testing.T) {
	router := testRouter()

	w := postBacktest(t, router, BacktestRequest{
		Symbol:        "BTC/USDT",
		Timezone:      "UTC",
		Sample:        &SampleParams{Candles: 24 * 10, BasePrice: 50000},
		IncludeTrades: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(resp.Trades), resp.Summary.TotalTrades)
}

func TestRunBacktest_NoDataSource(t *testing.T) {
	router := testRouter()

	w := postBacktest(t, router, BacktestRequest{Symbol: "BTC/USDT"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DATA_LOAD_ERROR", resp.Error.Code)
}

func TestRunBacktest_BadStrategy(t *testing.T) {
	router := testRouter()

	w := postBacktest(t, router, BacktestRequest{
		Symbol:   "BTC/USDT",
		Strategy: "martingale",
		Sample:   &SampleParams{Candles: 100},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CONFIG", resp.Error.Code)
}

func TestRunBacktest_FetchDisabled(t *testing.T) {
	router := testRouter() // nil fetcher

	w := postBacktest(t, router, BacktestRequest{
		Symbol: "BTC/USDT",
		Fetch:  &FetchWindow{Interval: "1h"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
