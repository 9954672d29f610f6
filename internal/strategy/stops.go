package strategy

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/indicators"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

var maxStopDrift = decimal.NewFromFloat(0.01)

// ATRValue returns the latest ATR over candles[:idx+1], falling back to a
// rolling high-low range proxy when the ATR is unavailable or zero, and to 2%
// of the close as a last resort. Degraded values are logged, never raised.
func ATRValue(candles []market.Candle, idx int, period int) decimal.Decimal {
	if idx < 0 || idx >= len(candles) {
		return decimal.Zero
	}

	window := candles[:idx+1]
	highs := make([]decimal.Decimal, len(window))
	lows := make([]decimal.Decimal, len(window))
	closes := make([]decimal.Decimal, len(window))
	for i, c := range window {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	atr := indicators.ATR(highs, lows, closes, period)
	if len(atr) > 0 && atr[len(atr)-1].IsPositive() {
		return atr[len(atr)-1]
	}

	// Proxy: rolling high-low range over the last period bars, divided by period
	start := idx + 1 - period
	if start < 0 {
		start = 0
	}
	high := candles[start].High
	low := candles[start].Low
	for _, c := range candles[start : idx+1] {
		if c.High.GreaterThan(high) {
			high = c.High
		}
		if c.Low.LessThan(low) {
			low = c.Low
		}
	}
	proxy := high.Sub(low).Div(decimal.NewFromInt(int64(period)))
	if proxy.IsPositive() {
		logger.Component("strategy").Debug("ATR unavailable, using range proxy",
			"index", idx, "proxy", proxy.String())
		return proxy
	}

	// Synthetic ATR: 2% of price
	fallback := candles[idx].Close.Mul(decimal.NewFromFloat(0.02))
	logger.Component("strategy").Fallback(map[string]any{
		"what":  "atr",
		"index": idx,
		"close": candles[idx].Close.String(),
		"value": fallback.String(),
	})
	return fallback
}

// DeriveStops computes the stop and target for an entry. The stop sits one
// ATR multiple away; the target is recomputed from the realized risk times the
// target R-multiple so the R contract holds even under floating-point drift.
// A discrepancy above 0.01 between the naive target and the risk-derived
// target is corrected by overwriting the target.
func DeriveStops(entry decimal.Decimal, side market.Side, atr, atrMult, targetR decimal.Decimal) (stop, takeProfit decimal.Decimal) {
	offset := atr.Mul(atrMult)

	if side == market.SideLong {
		stop = entry.Sub(offset)
	} else {
		stop = entry.Add(offset)
	}

	risk := entry.Sub(stop).Abs()

	var naive, fromRisk decimal.Decimal
	if side == market.SideLong {
		naive = entry.Add(offset.Mul(targetR))
		fromRisk = entry.Add(risk.Mul(targetR))
	} else {
		naive = entry.Sub(offset.Mul(targetR))
		fromRisk = entry.Sub(risk.Mul(targetR))
	}

	takeProfit = naive
	if naive.Sub(fromRisk).Abs().GreaterThan(maxStopDrift) {
		logger.Component("strategy").Debug("take profit corrected to honor target R",
			"naive", naive.String(), "corrected", fromRisk.String())
		takeProfit = fromRisk
	}

	return stop, takeProfit
}

// PositionSize computes the risk-based position size capped by the
// capital/leverage constraint. A zero result means the candidate entry must
// be rejected (treated as no signal, not an error).
func PositionSize(entry, stop, riskUSDT, initialCapital, leverage decimal.Decimal) decimal.Decimal {
	riskPerUnit := entry.Sub(stop).Abs()
	if riskPerUnit.IsZero() || !entry.IsPositive() {
		logger.Component("strategy").Fallback(map[string]any{
			"what":  "position_size",
			"entry": entry.String(),
			"stop":  stop.String(),
		})
		return decimal.Zero
	}

	size := riskUSDT.Div(riskPerUnit)

	// Capital/leverage cap always wins if more restrictive
	maxSize := initialCapital.Mul(leverage).Div(entry)
	if maxSize.LessThan(size) {
		size = maxSize
	}

	if !size.IsPositive() {
		return decimal.Zero
	}
	return size
}
