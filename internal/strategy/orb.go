package strategy

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/indicators"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// Signal reason tags produced by the ORB generator
const (
	ReasonORBLong       = "orb_breakout_long"
	ReasonORBShort      = "orb_breakout_short"
	ReasonPullbackLong  = "ema_pullback_long"
	ReasonPullbackShort = "ema_pullback_short"
)

type orbLevels struct {
	high  decimal.Decimal
	low   decimal.Decimal
	found bool
}

// ORB implements the opening-range breakout rule with an optional EMA-pullback
// fallback entry when force_one_trade is enabled. Range levels are computed
// once per local day and cached on the instance; nothing is shared between
// concurrent runs.
type ORB struct {
	cfg    *config.Config
	loc    *time.Location
	levels map[string]orbLevels
}

// NewORB creates an ORB generator
func NewORB(cfg *config.Config) *ORB {
	return &ORB{
		cfg:    cfg,
		loc:    market.Location(cfg.Timezone),
		levels: make(map[string]orbLevels),
	}
}

// Name returns the strategy name
func (o *ORB) Name() string { return config.StrategyORB }

// Evaluate checks the current bar for a breakout of the opening range, or, in
// the last entry hour with force_one_trade set, for an EMA-pullback fallback.
func (o *ORB) Evaluate(candles []market.Candle, idx int) *Signal {
	c := candles[idx]
	hour := market.LocalHour(c.Timestamp, o.loc)

	if hour < o.cfg.ORBWindow.End {
		return NoSignal("orb_range_forming")
	}
	if !o.cfg.EntryWindow.Contains(hour) {
		return NoSignal("outside_entry_window")
	}

	levels := o.rangeFor(candles, idx)
	if !levels.found {
		if o.fallbackDue(hour) {
			return o.pullback(candles, idx)
		}
		return NoSignal("orb_range_unavailable")
	}

	// Breakouts are strict: touching the level does not trigger.
	// Long is checked first when a single bar could trigger either side.
	if c.High.GreaterThan(levels.high) {
		entry := c.Open
		if levels.high.GreaterThan(entry) {
			entry = levels.high
		}
		return o.breakoutSignal(candles, idx, market.SideLong, entry, ReasonORBLong)
	}
	if c.Low.LessThan(levels.low) {
		entry := c.Open
		if levels.low.LessThan(entry) {
			entry = levels.low
		}
		return o.breakoutSignal(candles, idx, market.SideShort, entry, ReasonORBShort)
	}

	if o.cfg.ForceOneTrade && o.fallbackDue(hour) {
		return o.pullback(candles, idx)
	}

	return NoSignal("no_breakout")
}

// fallbackDue reports whether the bar sits in the last hour of the entry
// window, the cutoff after which the forced fallback entry is considered
func (o *ORB) fallbackDue(hour int) bool {
	return o.cfg.ForceOneTrade && hour == o.cfg.EntryWindow.End-1
}

// rangeFor returns the cached opening-range levels for the bar's local day,
// computing them on first use
func (o *ORB) rangeFor(candles []market.Candle, idx int) orbLevels {
	day := market.DayKey(candles[idx].Timestamp, o.loc)
	if cached, ok := o.levels[day]; ok {
		return cached
	}

	levels := orbLevels{}
	for i := idx; i >= 0; i-- {
		c := candles[i]
		if market.DayKey(c.Timestamp, o.loc) != day {
			break
		}
		if !o.cfg.ORBWindow.Contains(market.LocalHour(c.Timestamp, o.loc)) {
			continue
		}
		if !levels.found {
			levels = orbLevels{high: c.High, low: c.Low, found: true}
			continue
		}
		if c.High.GreaterThan(levels.high) {
			levels.high = c.High
		}
		if c.Low.LessThan(levels.low) {
			levels.low = c.Low
		}
	}

	o.levels[day] = levels
	if levels.found {
		logger.Strategy(o.Name()).Debug("opening range computed",
			"day", day, "high", levels.high.String(), "low", levels.low.String())
	}
	return levels
}

func (o *ORB) breakoutSignal(candles []market.Candle, idx int, side market.Side, entry decimal.Decimal, reason string) *Signal {
	atr := ATRValue(candles, idx, o.cfg.ATRPeriod)
	stop, takeProfit := DeriveStops(entry, side, atr, o.cfg.ATRMultiplier, o.cfg.TargetRMultiple)

	sig := &Signal{
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Reason:     reason,
		Valid:      true,
	}
	if err := sig.CheckLevels(); err != nil {
		logger.Strategy(o.Name()).WithError(err).Warn("rejecting breakout candidate")
		return NoSignal("invalid_levels")
	}
	return sig
}

// pullback is the fallback entry: price sitting within 0.1% of the pullback
// EMA qualifies, long side checked first
func (o *ORB) pullback(candles []market.Candle, idx int) *Signal {
	closes := make([]decimal.Decimal, idx+1)
	for i := 0; i <= idx; i++ {
		closes[i] = candles[i].Close
	}

	ema := indicators.EMA(closes, o.cfg.EMAPullbackPeriod)
	if len(ema) == 0 {
		return NoSignal("pullback_ema_unavailable")
	}

	current := ema[len(ema)-1]
	close := candles[idx].Close

	band := decimal.NewFromFloat(0.001)
	upper := current.Mul(decimal.NewFromInt(1).Add(band))
	lower := current.Mul(decimal.NewFromInt(1).Sub(band))

	switch {
	case close.LessThanOrEqual(upper):
		return o.pullbackSignal(candles, idx, market.SideLong, close, ReasonPullbackLong)
	case close.GreaterThanOrEqual(lower):
		return o.pullbackSignal(candles, idx, market.SideShort, close, ReasonPullbackShort)
	}

	return NoSignal("no_pullback")
}

func (o *ORB) pullbackSignal(candles []market.Candle, idx int, side market.Side, entry decimal.Decimal, reason string) *Signal {
	atr := ATRValue(candles, idx, o.cfg.ATRPeriod)
	stop, takeProfit := DeriveStops(entry, side, atr, o.cfg.ATRMultiplier, o.cfg.TargetRMultiple)

	sig := &Signal{
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Reason:     reason,
		Valid:      true,
	}
	if err := sig.CheckLevels(); err != nil {
		logger.Strategy(o.Name()).WithError(err).Warn("rejecting pullback candidate")
		return NoSignal("invalid_levels")
	}
	return sig
}
