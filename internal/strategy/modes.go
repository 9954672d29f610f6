package strategy

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/indicators"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// indicatorSet bundles the columns the mode generators share
type indicatorSet struct {
	closes  []decimal.Decimal
	highs   []decimal.Decimal
	lows    []decimal.Decimal
	volumes []decimal.Decimal
}

func columnsOf(window []market.Candle) indicatorSet {
	set := indicatorSet{
		closes:  make([]decimal.Decimal, len(window)),
		highs:   make([]decimal.Decimal, len(window)),
		lows:    make([]decimal.Decimal, len(window)),
		volumes: make([]decimal.Decimal, len(window)),
	}
	for i, c := range window {
		set.closes[i] = c.Close
		set.highs[i] = c.High
		set.lows[i] = c.Low
		set.volumes[i] = c.Volume
	}
	return set
}

// modeSignal assembles and validates a signal for the mode generators
func modeSignal(cfg *config.Config, name string, candles []market.Candle, idx int, side market.Side, reason string) *Signal {
	entry := candles[idx].Close
	atr := ATRValue(candles, idx, cfg.ATRPeriod)
	stop, takeProfit := DeriveStops(entry, side, atr, cfg.ATRMultiplier, cfg.TargetRMultiple)

	sig := &Signal{
		Side:       side,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Reason:     reason,
		Valid:      true,
	}
	if err := sig.CheckLevels(); err != nil {
		logger.Strategy(name).WithError(err).Warn("rejecting candidate")
		return NoSignal("invalid_levels")
	}
	return sig
}

// MeanReversion fades Bollinger-band excursions confirmed by RSI extremes
type MeanReversion struct {
	cfg *config.Config
}

// NewMeanReversion creates a mean-reversion generator
func NewMeanReversion(cfg *config.Config) *MeanReversion {
	return &MeanReversion{cfg: cfg}
}

// Name returns the strategy name
func (s *MeanReversion) Name() string { return config.StrategyMeanReversion }

// Evaluate checks for a band excursion with an RSI extreme
func (s *MeanReversion) Evaluate(candles []market.Candle, idx int) *Signal {
	window := candles[:idx+1]
	if len(window) < s.cfg.BollingerPeriod+1 {
		return NoSignal("insufficient_history")
	}
	cols := columnsOf(window)

	upper, _, lower := indicators.BollingerBands(cols.closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)
	rsi := indicators.RSI(cols.closes, s.cfg.RSIPeriod)
	if len(upper) == 0 || len(rsi) == 0 {
		return NoSignal("indicators_unavailable")
	}

	close := cols.closes[len(cols.closes)-1]
	currentRSI, _ := rsi[len(rsi)-1].Float64()

	if close.LessThan(lower[len(lower)-1]) && currentRSI < s.cfg.RSIOversold {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideLong, "mean_reversion_long")
	}
	if close.GreaterThan(upper[len(upper)-1]) && currentRSI > s.cfg.RSIOverbought {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideShort, "mean_reversion_short")
	}

	return NoSignal("no_band_excursion")
}

// TrendFollowing trades EMA crossovers confirmed by ADX strength and the
// Heikin-Ashi candle direction
type TrendFollowing struct {
	cfg *config.Config
}

// NewTrendFollowing creates a trend-following generator
func NewTrendFollowing(cfg *config.Config) *TrendFollowing {
	return &TrendFollowing{cfg: cfg}
}

// Name returns the strategy name
func (s *TrendFollowing) Name() string { return config.StrategyTrendFollowing }

// Evaluate checks for an aligned EMA crossover with trend strength
func (s *TrendFollowing) Evaluate(candles []market.Candle, idx int) *Signal {
	window := candles[:idx+1]
	if len(window) < 2*s.cfg.ADXPeriod+1 || len(window) < s.cfg.EMASlowPeriod+1 {
		return NoSignal("insufficient_history")
	}
	cols := columnsOf(window)

	fastEMA := indicators.EMA(cols.closes, s.cfg.EMAFastPeriod)
	slowEMA := indicators.EMA(cols.closes, s.cfg.EMASlowPeriod)
	adx := indicators.ADX(cols.highs, cols.lows, cols.closes, s.cfg.ADXPeriod)
	ha := indicators.HeikinAshi(window)
	if len(fastEMA) == 0 || len(slowEMA) == 0 || len(adx) == 0 {
		return NoSignal("indicators_unavailable")
	}

	adxValue, _ := adx[len(adx)-1].Float64()
	if adxValue < s.cfg.ADXThreshold {
		return NoSignal("trend_too_weak")
	}

	fast := fastEMA[len(fastEMA)-1]
	slow := slowEMA[len(slowEMA)-1]
	haCandle := ha[len(ha)-1]
	haBullish := haCandle.Close.GreaterThan(haCandle.Open)

	if fast.GreaterThan(slow) && haBullish {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideLong, "trend_following_long")
	}
	if fast.LessThan(slow) && !haBullish {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideShort, "trend_following_short")
	}

	return NoSignal("no_aligned_trend")
}

// BreakoutFade fades Bollinger-extreme breakouts that come with an RSI
// extreme and a volume spike
type BreakoutFade struct {
	cfg *config.Config
}

// NewBreakoutFade creates a breakout-fade generator
func NewBreakoutFade(cfg *config.Config) *BreakoutFade {
	return &BreakoutFade{cfg: cfg}
}

// Name returns the strategy name
func (s *BreakoutFade) Name() string { return config.StrategyBreakoutFade }

// Evaluate checks for an exhausted breakout to fade
func (s *BreakoutFade) Evaluate(candles []market.Candle, idx int) *Signal {
	window := candles[:idx+1]
	if len(window) < s.cfg.BollingerPeriod+1 {
		return NoSignal("insufficient_history")
	}
	cols := columnsOf(window)

	upper, _, lower := indicators.BollingerBands(cols.closes, s.cfg.BollingerPeriod, s.cfg.BollingerStdDev)
	rsi := indicators.RSI(cols.closes, s.cfg.RSIPeriod)
	volAvg := indicators.SMA(cols.volumes, s.cfg.VolumeAvgPeriod)
	if len(upper) == 0 || len(rsi) == 0 || len(volAvg) == 0 {
		return NoSignal("indicators_unavailable")
	}

	close := cols.closes[len(cols.closes)-1]
	currentRSI, _ := rsi[len(rsi)-1].Float64()
	volume := cols.volumes[len(cols.volumes)-1]
	spike := volume.GreaterThan(volAvg[len(volAvg)-1].Mul(decimal.NewFromFloat(1.5)))

	if !spike {
		return NoSignal("no_volume_spike")
	}

	if close.GreaterThan(upper[len(upper)-1]) && currentRSI > s.cfg.RSIOverbought {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideShort, "breakout_fade_short")
	}
	if close.LessThan(lower[len(lower)-1]) && currentRSI < s.cfg.RSIOversold {
		return modeSignal(s.cfg, s.Name(), candles, idx, market.SideLong, "breakout_fade_long")
	}

	return NoSignal("no_exhausted_breakout")
}
