package report

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// InvertResult rewrites a run as if every signal had been mirrored: sides
// flip, stop and target reflect about the entry, the gross move changes sign,
// and the cost legs stay as paid. A display transform only; the engine never
// sees inverted trades.
func InvertResult(result *engine.Result) *engine.Result {
	inverted := &engine.Result{
		Symbol: result.Symbol,
		Trades: make([]engine.TradeRecord, len(result.Trades)),
	}

	dayPnL := make(map[string]decimal.Decimal, len(result.Days))
	for i, t := range result.Trades {
		it := invertTrade(t)
		inverted.Trades[i] = it
		dayPnL[it.DayKey] = dayPnL[it.DayKey].Add(it.PnLUSDT)
	}

	inverted.Days = make([]engine.DaySummary, len(result.Days))
	for i, d := range result.Days {
		inverted.Days[i] = engine.DaySummary{
			Day:    d.Day,
			Trades: d.Trades,
			PnL:    dayPnL[d.Day],
		}
	}

	return inverted
}

func invertTrade(t engine.TradeRecord) engine.TradeRecord {
	it := t

	if t.Side == market.SideLong {
		it.Side = market.SideShort
	} else {
		it.Side = market.SideLong
	}

	// Reflect the levels about the entry
	it.StopLoss = t.EntryPrice.Add(t.EntryPrice.Sub(t.StopLoss))
	it.TakeProfit = t.EntryPrice.Add(t.EntryPrice.Sub(t.TakeProfit))

	it.GrossPnLUSDT = t.GrossPnLUSDT.Neg()
	it.PnLUSDT = it.GrossPnLUSDT.Sub(t.CommissionUSDT).Sub(t.SlippageUSDT)

	riskAmount := t.EntryPrice.Sub(t.StopLoss).Abs().Mul(t.PositionSize)
	if riskAmount.IsPositive() {
		it.RMultiple = it.PnLUSDT.Div(riskAmount)
	} else {
		it.RMultiple = decimal.Zero
	}

	switch t.ExitReason {
	case engine.ExitTakeProfit:
		it.ExitReason = engine.ExitStopLoss
	case engine.ExitStopLoss:
		it.ExitReason = engine.ExitTakeProfit
	}

	return it
}
