package engine

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// ExitReason identifies why a position was closed
type ExitReason string

const (
	ExitTakeProfit      ExitReason = "take_profit"
	ExitStopLoss        ExitReason = "stop_loss"
	ExitSessionEnd      ExitReason = "session_end"
	ExitSessionRollover ExitReason = "session_rollover"
	ExitSessionClose    ExitReason = "session_close"
	ExitTimeLimit24h    ExitReason = "time_limit_24h"
	ExitEndOfData       ExitReason = "end_of_data"
	ExitTrendFlip       ExitReason = "trend_flip_exit"
	ExitBreakEven       ExitReason = "break_even"
	ExitError           ExitReason = "error"
)

// OpenPosition is the mutable state held while a trade is live. At most one
// OpenPosition exists at a time. StopLoss may be revised (break-even move);
// InitialStop keeps the risk-defining level the R-multiple is computed from.
type OpenPosition struct {
	Symbol        string
	Side          market.Side
	EntryTime     time.Time
	EntryPrice    decimal.Decimal
	StopLoss      decimal.Decimal
	InitialStop   decimal.Decimal
	TakeProfit    decimal.Decimal
	PositionSize  decimal.Decimal
	Reason        string
	DayKey        string
	BreakEvenSet  bool
}

// RiskPerUnit returns the initial per-unit dollar risk
func (p *OpenPosition) RiskPerUnit() decimal.Decimal {
	return p.EntryPrice.Sub(p.InitialStop).Abs()
}

// TradeRecord is an immutable closed trade appended to the trade log
type TradeRecord struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	DayKey         string          `json:"day_key"`
	Side           market.Side     `json:"side"`
	EntryTime      time.Time       `json:"entry_time"`
	ExitTime       time.Time       `json:"exit_time"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	ExitPrice      decimal.Decimal `json:"exit_price"`
	StopLoss       decimal.Decimal `json:"stop_loss"`
	TakeProfit     decimal.Decimal `json:"take_profit"`
	PositionSize   decimal.Decimal `json:"position_size"`
	Reason         string          `json:"reason"`
	ExitReason     ExitReason      `json:"exit_reason"`
	GrossPnLUSDT   decimal.Decimal `json:"gross_pnl_usdt"`
	CommissionUSDT decimal.Decimal `json:"commission_usdt"`
	SlippageUSDT   decimal.Decimal `json:"slippage_usdt"`
	PnLUSDT        decimal.Decimal `json:"pnl_usdt"`
	RMultiple      decimal.Decimal `json:"r_multiple"`
}

// DaySummary aggregates one local calendar day of the run
type DaySummary struct {
	Day    string          `json:"day"`
	Trades int             `json:"trades"`
	PnL    decimal.Decimal `json:"pnl"`
}

// Result is the complete output of a run: the ordered trade log plus the
// per-day summaries in day order
type Result struct {
	Symbol string
	Trades []TradeRecord
	Days   []DaySummary
}
