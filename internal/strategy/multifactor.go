package strategy

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/indicators"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// Factor weights of the multifactor reliability score
const (
	weightEMAAlignment = 0.25
	weightADXStrength  = 0.20
	weightRSIExtreme   = 0.15
	weightMACDTrend    = 0.20
	weightVolume       = 0.10
	weightVWAP         = 0.10
)

// Multifactor scores a weighted set of indicator confirmations and fires only
// when the aggregate reliability clears the configured minimum and the
// directional votes (EMA, MACD, RSI) are unanimous.
type Multifactor struct {
	cfg *config.Config
}

// NewMultifactor creates a multifactor generator
func NewMultifactor(cfg *config.Config) *Multifactor {
	return &Multifactor{cfg: cfg}
}

// Name returns the strategy name
func (m *Multifactor) Name() string { return config.StrategyMultifactor }

// Evaluate scores the current bar
func (m *Multifactor) Evaluate(candles []market.Candle, idx int) *Signal {
	window := candles[:idx+1]
	if len(window) < m.cfg.EMASlowPeriod+1 {
		return NoSignal("insufficient_history")
	}

	closes := make([]decimal.Decimal, len(window))
	highs := make([]decimal.Decimal, len(window))
	lows := make([]decimal.Decimal, len(window))
	volumes := make([]decimal.Decimal, len(window))
	for i, c := range window {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	fastEMA := indicators.EMA(closes, m.cfg.EMAFastPeriod)
	slowEMA := indicators.EMA(closes, m.cfg.EMASlowPeriod)
	rsi := indicators.RSI(closes, m.cfg.RSIPeriod)
	macdLine, signalLine, _ := indicators.MACD(closes, m.cfg.MACDFastPeriod, m.cfg.MACDSlowPeriod, m.cfg.MACDSignalPeriod)
	adx := indicators.ADX(highs, lows, closes, m.cfg.ADXPeriod)
	volAvg := indicators.SMA(volumes, m.cfg.VolumeAvgPeriod)
	vwap := indicators.VWAP(window)

	if len(fastEMA) == 0 || len(slowEMA) == 0 || len(rsi) == 0 || len(macdLine) == 0 || len(signalLine) == 0 {
		return NoSignal("indicators_unavailable")
	}

	fast := fastEMA[len(fastEMA)-1]
	slow := slowEMA[len(slowEMA)-1]
	currentRSI, _ := rsi[len(rsi)-1].Float64()
	macd := macdLine[len(macdLine)-1]
	macdSignal := signalLine[len(signalLine)-1]
	close := window[len(window)-1].Close

	// Directional votes
	emaVote := compareVote(fast, slow)
	macdVote := compareVote(macd, macdSignal)
	rsiVote := 0
	if currentRSI < m.cfg.RSIOversold {
		rsiVote = 1
	} else if currentRSI > m.cfg.RSIOverbought {
		rsiVote = -1
	}

	voteSum := emaVote + macdVote + rsiVote
	unanimous := emaVote != 0 && macdVote != 0 && rsiVote != 0 &&
		emaVote == macdVote && macdVote == rsiVote
	if voteSum == 0 || !unanimous {
		return NoSignal("votes_not_unanimous")
	}

	side := market.SideLong
	if voteSum < 0 {
		side = market.SideShort
	}

	score := 0.0
	if emaVote != 0 {
		score += weightEMAAlignment
	}
	if macdVote != 0 {
		score += weightMACDTrend
	}
	if rsiVote != 0 {
		score += weightRSIExtreme
	}
	if len(adx) > 0 {
		if v, _ := adx[len(adx)-1].Float64(); v >= m.cfg.ADXThreshold {
			score += weightADXStrength
		}
	}
	if len(volAvg) > 0 && window[len(window)-1].Volume.GreaterThan(volAvg[len(volAvg)-1]) {
		score += weightVolume
	}
	if len(vwap) > 0 && vwapConfirms(close, vwap[len(vwap)-1], side) {
		score += weightVWAP
	}

	logger.Strategy(m.Name()).Debug("reliability score",
		"score", score,
		"side", string(side),
		"ema_vote", emaVote,
		"macd_vote", macdVote,
		"rsi_vote", rsiVote,
		"rsi", currentRSI)

	if score < m.cfg.MinReliabilityScore {
		return NoSignal("score_below_minimum")
	}

	atr := ATRValue(candles, idx, m.cfg.ATRPeriod)
	stop, takeProfit := DeriveStops(close, side, atr, m.cfg.ATRMultiplier, m.cfg.TargetRMultiple)

	sig := &Signal{
		Side:       side,
		EntryPrice: close,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Reason:     "multifactor_" + string(side),
		Valid:      true,
	}
	if err := sig.CheckLevels(); err != nil {
		logger.Strategy(m.Name()).WithError(err).Warn("rejecting multifactor candidate")
		return NoSignal("invalid_levels")
	}
	return sig
}

// compareVote returns +1/-1/0 for a greater-than/less-than/equal comparison
func compareVote(a, b decimal.Decimal) int {
	switch {
	case a.GreaterThan(b):
		return 1
	case a.LessThan(b):
		return -1
	default:
		return 0
	}
}

// vwapConfirms reports whether the close deviates from VWAP in the trade
// direction (price above VWAP supports longs, below supports shorts)
func vwapConfirms(close, vwap decimal.Decimal, side market.Side) bool {
	if vwap.IsZero() {
		return false
	}
	if side == market.SideLong {
		return close.GreaterThan(vwap)
	}
	return close.LessThan(vwap)
}
