package strategy

import (
	"fmt"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// Signal is an ephemeral entry decision. Invalid signals carry a Reason tag
// describing why no entry qualified; they are never errors.
type Signal struct {
	Side       market.Side
	EntryPrice decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
	Reason     string
	Valid      bool
}

// NoSignal returns an invalid signal with a reason tag
func NoSignal(reason string) *Signal {
	return &Signal{Valid: false, Reason: reason}
}

// CheckLevels verifies the stop/target ordering invariant:
// long requires stop < entry < target, short the reverse.
func (s *Signal) CheckLevels() error {
	if !s.Valid {
		return nil
	}
	switch s.Side {
	case market.SideLong:
		if !s.StopLoss.LessThan(s.EntryPrice) || !s.EntryPrice.LessThan(s.TakeProfit) {
			return fmt.Errorf("long signal levels out of order: sl=%s entry=%s tp=%s",
				s.StopLoss, s.EntryPrice, s.TakeProfit)
		}
	case market.SideShort:
		if !s.StopLoss.GreaterThan(s.EntryPrice) || !s.EntryPrice.GreaterThan(s.TakeProfit) {
			return fmt.Errorf("short signal levels out of order: sl=%s entry=%s tp=%s",
				s.StopLoss, s.EntryPrice, s.TakeProfit)
		}
	default:
		return fmt.Errorf("unknown side %q", s.Side)
	}
	return nil
}

// Generator produces directional entry candidates with stop and target.
// Evaluate receives the candle series up to and including idx and returns a
// Signal; generators never look past idx.
type Generator interface {
	Name() string
	Evaluate(candles []market.Candle, idx int) *Signal
}

// New builds the generator selected by the configuration
func New(cfg *config.Config) (Generator, error) {
	switch cfg.Strategy {
	case config.StrategyORB:
		return NewORB(cfg), nil
	case config.StrategyMultifactor:
		return NewMultifactor(cfg), nil
	case config.StrategyMeanReversion:
		return NewMeanReversion(cfg), nil
	case config.StrategyTrendFollowing:
		return NewTrendFollowing(cfg), nil
	case config.StrategyBreakoutFade:
		return NewBreakoutFade(cfg), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}
