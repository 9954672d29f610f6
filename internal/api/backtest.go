package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/exchange"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BacktestHandler runs backtests on request
type BacktestHandler struct {
	base    *config.Config
	fetcher exchange.Fetcher
	loader  *market.Loader
}

// NewBacktestHandler creates a handler. base supplies defaults requests can
// override; fetcher may be nil to disable exchange fetches.
func NewBacktestHandler(base *config.Config, fetcher exchange.Fetcher) *BacktestHandler {
	return &BacktestHandler{
		base:    base,
		fetcher: fetcher,
		loader:  market.NewLoader(),
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	cfg := h.buildConfig(&req)
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()},
		})
		return
	}

	series, err := h.loadSeries(c, &req, cfg)
	if err != nil {
		status := http.StatusBadRequest
		var fetchErr *exchange.DataFetchError
		if errors.As(err, &fetchErr) {
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{
			Error: ErrorDetail{Code: "DATA_LOAD_ERROR", Message: err.Error()},
		})
		return
	}

	eng, err := engine.New(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_CONFIG", Message: err.Error()},
		})
		return
	}

	result, err := eng.Run(series)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{Code: "BACKTEST_ERROR", Message: err.Error()},
		})
		return
	}

	summary := metrics.Compute(result.Trades)
	validation := metrics.Validate(summary, cfg.Thresholds)

	resp := BacktestResponse{
		Status:       "completed",
		Symbol:       result.Symbol,
		Strategy:     cfg.Strategy,
		Summary:      summary,
		Validation:   validation,
		Days:         result.Days,
		ProfitFactor: formatProfitFactor(summary.ProfitFactor),
	}
	if req.IncludeTrades {
		resp.Trades = result.Trades
	}

	c.JSON(http.StatusOK, resp)
}

// GetDefaults handles GET /api/v1/config
func (h *BacktestHandler) GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.base)
}

// ListStrategies handles GET /api/v1/strategies
func (h *BacktestHandler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": []string{
		config.StrategyORB,
		config.StrategyMultifactor,
		config.StrategyMeanReversion,
		config.StrategyTrendFollowing,
		config.StrategyBreakoutFade,
	}})
}

func (h *BacktestHandler) buildConfig(req *BacktestRequest) *config.Config {
	cfg := *h.base
	if req.Symbol != "" {
		cfg.Symbol = req.Symbol
	}
	if req.Strategy != "" {
		cfg.Strategy = req.Strategy
	}
	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}
	if req.RiskUSDT != nil {
		cfg.RiskUSDT = decimal.NewFromFloat(*req.RiskUSDT)
	}
	if req.InitialCapital != nil {
		cfg.InitialCapital = decimal.NewFromFloat(*req.InitialCapital)
	}
	if req.ForceOneTrade != nil {
		cfg.ForceOneTrade = *req.ForceOneTrade
	}
	if req.FullDayTrading != nil {
		cfg.FullDayTrading = *req.FullDayTrading
	}
	return &cfg
}

func (h *BacktestHandler) loadSeries(c *gin.Context, req *BacktestRequest, cfg *config.Config) (*market.Series, error) {
	switch {
	case req.CSVPath != "":
		return h.loader.LoadCSV(req.CSVPath, cfg.Symbol)
	case req.Fetch != nil:
		if h.fetcher == nil {
			return nil, fmt.Errorf("exchange fetch is not enabled on this server")
		}
		interval := req.Fetch.Interval
		if interval == "" {
			interval = "1h"
		}
		return h.fetcher.FetchCandles(c.Request.Context(), cfg.Symbol, interval, req.Fetch.Start, req.Fetch.End)
	case req.Sample != nil:
		candles := req.Sample.Candles
		if candles <= 0 {
			candles = 24 * 30
		}
		basePrice := req.Sample.BasePrice
		if basePrice <= 0 {
			basePrice = 50000
		}
		start := time.Now().UTC().Add(-time.Duration(candles) * time.Hour).Truncate(time.Hour)
		return market.GenerateSample(cfg.Symbol, start, candles, basePrice, time.Hour), nil
	default:
		return nil, fmt.Errorf("one of csv_path, fetch, or sample is required")
	}
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%g", pf)
}
