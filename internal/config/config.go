package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Strategy names selectable via configuration
const (
	StrategyORB            = "orb"
	StrategyMultifactor    = "multifactor"
	StrategyMeanReversion  = "mean_reversion"
	StrategyTrendFollowing = "trend_following"
	StrategyBreakoutFade   = "breakout_fade"
)

// HourWindow is a [Start, End) local-hour window
type HourWindow struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Contains reports whether a local hour falls inside the window
func (w HourWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Config holds the full backtester configuration. It is validated at engine
// construction and never mutated afterwards.
type Config struct {
	Symbol   string `yaml:"symbol"`
	Timezone string `yaml:"timezone"`

	// Risk sizing
	RiskUSDT       decimal.Decimal `yaml:"risk_usdt"`
	InitialCapital decimal.Decimal `yaml:"initial_capital"`
	Leverage       decimal.Decimal `yaml:"leverage"`

	// Cost model: round-trip totals, split evenly between entry and exit legs
	CommissionRate decimal.Decimal `yaml:"commission_rate"`
	SlippageRate   decimal.Decimal `yaml:"slippage_rate"`

	// Session windows (local hours)
	ORBWindow      HourWindow `yaml:"orb_window"`
	EntryWindow    HourWindow `yaml:"entry_window"`
	ExitWindow     HourWindow `yaml:"exit_window"`
	FullDayTrading bool       `yaml:"full_day_trading"`

	// Daily limits
	DailyTarget    decimal.Decimal `yaml:"daily_target"`
	DailyMaxLoss   decimal.Decimal `yaml:"daily_max_loss"` // negative threshold, e.g. -150
	MaxDailyTrades int             `yaml:"max_daily_trades"`

	// Strategy selection
	Strategy                  string          `yaml:"strategy"`
	ForceOneTrade             bool            `yaml:"force_one_trade"`
	AllowReentryOnTrendChange bool            `yaml:"allow_reentry_on_trend_change"`
	TargetRMultiple           decimal.Decimal `yaml:"target_r_multiple"`

	// Indicator parameters
	EMAFastPeriod       int             `yaml:"ema_fast_period"`
	EMASlowPeriod       int             `yaml:"ema_slow_period"`
	EMAPullbackPeriod   int             `yaml:"ema_pullback_period"`
	ATRPeriod           int             `yaml:"atr_period"`
	ATRMultiplier       decimal.Decimal `yaml:"atr_multiplier"`
	ADXPeriod           int             `yaml:"adx_period"`
	ADXThreshold        float64         `yaml:"adx_threshold"`
	RSIPeriod           int             `yaml:"rsi_period"`
	RSIOversold         float64         `yaml:"rsi_oversold"`
	RSIOverbought       float64         `yaml:"rsi_overbought"`
	MACDFastPeriod      int             `yaml:"macd_fast_period"`
	MACDSlowPeriod      int             `yaml:"macd_slow_period"`
	MACDSignalPeriod    int             `yaml:"macd_signal_period"`
	BollingerPeriod     int             `yaml:"bollinger_period"`
	BollingerStdDev     float64         `yaml:"bollinger_std_dev"`
	VolumeAvgPeriod     int             `yaml:"volume_avg_period"`
	MinReliabilityScore float64         `yaml:"min_reliability_score"`

	// Validation thresholds for the metrics aggregator
	Thresholds Thresholds `yaml:"thresholds"`
}

// Thresholds are the minimum acceptance criteria for a backtest run.
// Win rate, PnL, and average R are hard criteria; trade count and profit
// factor are soft.
type Thresholds struct {
	MinWinRate      float64         `yaml:"min_win_rate"`
	MinTotalPnL     decimal.Decimal `yaml:"min_total_pnl"`
	MinAvgRMultiple float64         `yaml:"min_avg_r_multiple"`
	MinTrades       int             `yaml:"min_trades"`
	MinProfitFactor float64         `yaml:"min_profit_factor"`
}

// Default returns the default backtester configuration
func Default() *Config {
	return &Config{
		Symbol:   "BTC/USDT",
		Timezone: "America/Argentina/Buenos_Aires",

		RiskUSDT:       decimal.NewFromFloat(20),
		InitialCapital: decimal.NewFromFloat(1000),
		Leverage:       decimal.NewFromInt(1),

		CommissionRate: decimal.NewFromFloat(0.001),  // 0.1% round trip
		SlippageRate:   decimal.NewFromFloat(0.0005), // 0.05% round trip

		ORBWindow:      HourWindow{Start: 11, End: 12},
		EntryWindow:    HourWindow{Start: 11, End: 14},
		ExitWindow:     HourWindow{Start: 14, End: 20},
		FullDayTrading: false,

		DailyTarget:    decimal.NewFromFloat(50),
		DailyMaxLoss:   decimal.NewFromFloat(-150),
		MaxDailyTrades: 1,

		Strategy:        StrategyORB,
		ForceOneTrade:   true,
		TargetRMultiple: decimal.NewFromFloat(1.5),

		EMAFastPeriod:       9,
		EMASlowPeriod:       21,
		EMAPullbackPeriod:   15,
		ATRPeriod:           14,
		ATRMultiplier:       decimal.NewFromFloat(1.5),
		ADXPeriod:           14,
		ADXThreshold:        25.0,
		RSIPeriod:           14,
		RSIOversold:         30.0,
		RSIOverbought:       70.0,
		MACDFastPeriod:      12,
		MACDSlowPeriod:      26,
		MACDSignalPeriod:    9,
		BollingerPeriod:     20,
		BollingerStdDev:     2.0,
		VolumeAvgPeriod:     20,
		MinReliabilityScore: 0.6,

		Thresholds: Thresholds{
			MinWinRate:      50.0,
			MinTotalPnL:     decimal.Zero,
			MinAvgRMultiple: 0.0,
			MinTrades:       10,
			MinProfitFactor: 1.0,
		},
	}
}

// LoadFile loads configuration from a YAML file layered over the defaults
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides selected fields from environment variables
func (c *Config) ApplyEnv() {
	if symbol := os.Getenv("ONETRADE_SYMBOL"); symbol != "" {
		c.Symbol = symbol
	}
	if tz := os.Getenv("ONETRADE_TIMEZONE"); tz != "" {
		c.Timezone = tz
	}
	if name := os.Getenv("ONETRADE_STRATEGY"); name != "" {
		c.Strategy = name
	}
	if value := os.Getenv("ONETRADE_RISK_USDT"); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && parsed.IsPositive() {
			c.RiskUSDT = parsed
		}
	}
	if value := os.Getenv("ONETRADE_INITIAL_CAPITAL"); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && parsed.IsPositive() {
			c.InitialCapital = parsed
		}
	}
	if value := os.Getenv("ONETRADE_LEVERAGE"); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && parsed.IsPositive() {
			c.Leverage = parsed
		}
	}
	if value := os.Getenv("ONETRADE_MAX_DAILY_TRADES"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			c.MaxDailyTrades = parsed
		}
	}
	if value := os.Getenv("ONETRADE_TARGET_R"); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil && parsed.IsPositive() {
			c.TargetRMultiple = parsed
		}
	}
	if value := os.Getenv("ONETRADE_FORCE_ONE_TRADE"); value != "" {
		c.ForceOneTrade = value == "true" || value == "1"
	}
	if value := os.Getenv("ONETRADE_FULL_DAY"); value != "" {
		c.FullDayTrading = value == "true" || value == "1"
	}
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if !c.RiskUSDT.IsPositive() {
		return fmt.Errorf("risk_usdt must be positive, got %s", c.RiskUSDT)
	}
	if !c.InitialCapital.IsPositive() {
		return fmt.Errorf("initial_capital must be positive, got %s", c.InitialCapital)
	}
	if !c.Leverage.IsPositive() {
		return fmt.Errorf("leverage must be positive, got %s", c.Leverage)
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission_rate must be in [0,1), got %s", c.CommissionRate)
	}
	if c.SlippageRate.IsNegative() || c.SlippageRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("slippage_rate must be in [0,1), got %s", c.SlippageRate)
	}
	for _, w := range []struct {
		name   string
		window HourWindow
	}{
		{"orb_window", c.ORBWindow},
		{"entry_window", c.EntryWindow},
		{"exit_window", c.ExitWindow},
	} {
		if w.window.Start < 0 || w.window.Start > 23 || w.window.End < 1 || w.window.End > 24 {
			return fmt.Errorf("%s hours out of range: %d-%d", w.name, w.window.Start, w.window.End)
		}
		if w.window.Start >= w.window.End {
			return fmt.Errorf("%s start must precede end: %d-%d", w.name, w.window.Start, w.window.End)
		}
	}
	if c.MaxDailyTrades < 1 {
		return fmt.Errorf("max_daily_trades must be at least 1, got %d", c.MaxDailyTrades)
	}
	if c.DailyMaxLoss.IsPositive() {
		return fmt.Errorf("daily_max_loss must be zero or negative, got %s", c.DailyMaxLoss)
	}
	if !c.TargetRMultiple.IsPositive() {
		return fmt.Errorf("target_r_multiple must be positive, got %s", c.TargetRMultiple)
	}
	if !c.ATRMultiplier.IsPositive() {
		return fmt.Errorf("atr_multiplier must be positive, got %s", c.ATRMultiplier)
	}
	switch c.Strategy {
	case StrategyORB, StrategyMultifactor, StrategyMeanReversion, StrategyTrendFollowing, StrategyBreakoutFade:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.MinReliabilityScore < 0 || c.MinReliabilityScore > 1 {
		return fmt.Errorf("min_reliability_score must be in [0,1], got %f", c.MinReliabilityScore)
	}
	return nil
}
