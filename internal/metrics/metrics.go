package metrics

import (
	"math"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/shopspring/decimal"
)

// Summary is the reduction of a trade log into aggregate statistics. Money
// amounts stay decimal; unit-free ratios are float64 so the profit factor can
// represent the +Inf all-win edge case. MaxDrawdown is reported as a
// non-negative magnitude.
type Summary struct {
	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	WinRate     float64         `json:"win_rate"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	GrossLoss   decimal.Decimal `json:"gross_loss"`

	// ProfitFactor can be +Inf (all-win log), which encoding/json rejects;
	// serialized separately as a string by the report/api layers
	ProfitFactor         float64         `json:"-"`
	Expectancy           decimal.Decimal `json:"expectancy"`
	AvgRMultiple         float64         `json:"avg_r_multiple"`
	MaxConsecutiveLosses int             `json:"max_consecutive_losses"`
	MaxDrawdown          decimal.Decimal `json:"max_drawdown"`
	GreenDaysPct         float64         `json:"green_days_pct"`
}

// Compute reduces a trade log (read-only) into a Summary
func Compute(trades []engine.TradeRecord) *Summary {
	s := &Summary{
		TotalTrades: len(trades),
		TotalPnL:    decimal.Zero,
		GrossProfit: decimal.Zero,
		GrossLoss:   decimal.Zero,
		Expectancy:  decimal.Zero,
		MaxDrawdown: decimal.Zero,
	}

	if len(trades) == 0 {
		return s
	}

	var (
		rSum          float64
		consecutive   int
		cumulative    = decimal.Zero
		peak          = decimal.Zero
		dayPnL        = make(map[string]decimal.Decimal)
		dayOrderCount int
	)

	for _, trade := range trades {
		s.TotalPnL = s.TotalPnL.Add(trade.PnLUSDT)

		if trade.PnLUSDT.GreaterThan(decimal.Zero) {
			s.WinningTrades++
			s.GrossProfit = s.GrossProfit.Add(trade.PnLUSDT)
		} else {
			s.LosingTrades++
			s.GrossLoss = s.GrossLoss.Add(trade.PnLUSDT.Abs())
		}

		// Longest run of strictly negative trades
		if trade.PnLUSDT.IsNegative() {
			consecutive++
			if consecutive > s.MaxConsecutiveLosses {
				s.MaxConsecutiveLosses = consecutive
			}
		} else {
			consecutive = 0
		}

		// Drawdown over the cumulative-PnL series in trade order
		cumulative = cumulative.Add(trade.PnLUSDT)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(s.MaxDrawdown) {
			s.MaxDrawdown = dd
		}

		r, _ := trade.RMultiple.Float64()
		rSum += r

		if _, ok := dayPnL[trade.DayKey]; !ok {
			dayOrderCount++
		}
		dayPnL[trade.DayKey] = dayPnL[trade.DayKey].Add(trade.PnLUSDT)
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	s.Expectancy = s.TotalPnL.Div(decimal.NewFromInt(int64(s.TotalTrades)))
	s.AvgRMultiple = rSum / float64(s.TotalTrades)
	s.ProfitFactor = profitFactor(s.GrossProfit, s.GrossLoss)

	greenDays := 0
	for _, pnl := range dayPnL {
		if pnl.GreaterThan(decimal.Zero) {
			greenDays++
		}
	}
	if dayOrderCount > 0 {
		s.GreenDaysPct = float64(greenDays) / float64(dayOrderCount) * 100
	}

	return s
}

// profitFactor is gross profit over gross loss, +Inf for all-win logs and 0
// when there is neither profit nor loss
func profitFactor(grossProfit, grossLoss decimal.Decimal) float64 {
	if grossLoss.IsPositive() {
		ratio, _ := grossProfit.Div(grossLoss).Float64()
		return ratio
	}
	if grossProfit.IsPositive() {
		return math.Inf(1)
	}
	return 0
}
