package engine

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// ResolveSameBarConflict decides which level fired first when a single bar
// breaches both the stop and the target. The level closer to the bar's open
// is deemed to have been touched first; on an exact tie the take profit wins.
func ResolveSameBarConflict(open, stopLoss, takeProfit decimal.Decimal, side market.Side) ExitReason {
	stopDistance := stopLoss.Sub(open).Abs()
	targetDistance := takeProfit.Sub(open).Abs()

	if stopDistance.LessThan(targetDistance) {
		return ExitStopLoss
	}
	return ExitTakeProfit
}
