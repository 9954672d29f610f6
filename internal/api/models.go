package api

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
)

// BacktestRequest describes one backtest run. Exactly one data source must be
// set: a CSV path, a fetch window, or sample generation.
type BacktestRequest struct {
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	CSVPath string        `json:"csv_path,omitempty"`
	Fetch   *FetchWindow  `json:"fetch,omitempty"`
	Sample  *SampleParams `json:"sample,omitempty"`

	RiskUSDT       *float64 `json:"risk_usdt,omitempty"`
	InitialCapital *float64 `json:"initial_capital,omitempty"`
	ForceOneTrade  *bool    `json:"force_one_trade,omitempty"`
	FullDayTrading *bool    `json:"full_day_trading,omitempty"`
	IncludeTrades  bool     `json:"include_trades,omitempty"`
}

// FetchWindow asks the server to download candles from the exchange
type FetchWindow struct {
	Interval string    `json:"interval"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// SampleParams asks the server to run against generated sample data
type SampleParams struct {
	Candles   int     `json:"candles"`
	BasePrice float64 `json:"base_price"`
}

// BacktestResponse is the result of a completed run
type BacktestResponse struct {
	Status     string                    `json:"status"`
	Symbol     string                    `json:"symbol"`
	Strategy   string                    `json:"strategy"`
	Summary    *metrics.Summary          `json:"summary"`
	Validation *metrics.ValidationResult `json:"validation"`
	Days       []engine.DaySummary       `json:"days"`
	Trades     []engine.TradeRecord      `json:"trades,omitempty"`

	// ProfitFactor carried as a string so the +Inf edge case survives JSON
	ProfitFactor string `json:"profit_factor"`
}

// ErrorDetail carries a machine-readable error code with its message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope every failed request returns
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
