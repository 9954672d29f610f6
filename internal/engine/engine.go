package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/indicators"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/quota"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Engine walks a candle series in a single forward pass, managing at most one
// open position at a time under the daily quota. Each run owns its position,
// quota state, and trade log exclusively; nothing is shared between runs.
type Engine struct {
	cfg       *config.Config
	generator strategy.Generator
	quota     *quota.Controller
	loc       *time.Location
	log       *logger.Logger

	position   *OpenPosition
	trades     []TradeRecord
	days       map[string]*DaySummary
	currentDay string

	onTrade func(*TradeRecord)
}

// New creates an engine for a validated configuration
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	generator, err := strategy.New(cfg)
	if err != nil {
		return nil, err
	}

	controller := quota.NewController(quota.Config{
		MaxDailyTrades: cfg.MaxDailyTrades,
		DailyTarget:    cfg.DailyTarget,
		DailyMaxLoss:   cfg.DailyMaxLoss,
		Timezone:       cfg.Timezone,
	})

	return &Engine{
		cfg:       cfg,
		generator: generator,
		quota:     controller,
		loc:       controller.Location(),
		log:       logger.Component("engine").Strategy(generator.Name()),
		trades:    make([]TradeRecord, 0),
		days:      make(map[string]*DaySummary),
	}, nil
}

// SetOnTrade sets the callback invoked after each closed trade
func (e *Engine) SetOnTrade(callback func(*TradeRecord)) {
	e.onTrade = callback
}

// Run executes the backtest over a validated candle series. Either the full
// pass completes and a Result is returned, or a precondition error aborts
// before any trade is recorded.
func (e *Engine) Run(series *market.Series) (*Result, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("series precondition failed: %w", err)
	}

	candles := series.Candles

	for i := range candles {
		c := candles[i]

		day := market.DayKey(c.Timestamp, e.loc)
		if e.currentDay != "" && day != e.currentDay {
			e.logDaySummary(e.currentDay)
		}
		e.currentDay = day
		e.quota.Observe(c.Timestamp)

		if e.position != nil {
			e.checkExit(candles, i)
		}

		if e.position == nil && e.quota.CanTrade() &&
			e.cfg.EntryWindow.Contains(market.LocalHour(c.Timestamp, e.loc)) {
			e.tryEntry(series.Symbol, candles, i)
		}
	}

	if e.position != nil {
		last := candles[len(candles)-1]
		e.closePosition(last.Timestamp, last.Close, ExitEndOfData)
	}
	if e.currentDay != "" {
		e.logDaySummary(e.currentDay)
	}

	return &Result{
		Symbol: series.Symbol,
		Trades: e.trades,
		Days:   e.daySummaries(),
	}, nil
}

// tryEntry asks the signal generator for an entry candidate and opens a
// position if it qualifies and sizes to a positive amount
func (e *Engine) tryEntry(symbol string, candles []market.Candle, idx int) {
	sig := e.generator.Evaluate(candles, idx)
	if sig == nil || !sig.Valid {
		return
	}

	size := strategy.PositionSize(sig.EntryPrice, sig.StopLoss,
		e.cfg.RiskUSDT, e.cfg.InitialCapital, e.cfg.Leverage)
	if !size.IsPositive() {
		e.log.Debug("entry rejected by sizing",
			"reason", sig.Reason,
			"entry", sig.EntryPrice.String(),
			"stop", sig.StopLoss.String())
		return
	}

	c := candles[idx]
	e.position = &OpenPosition{
		Symbol:       symbol,
		Side:         sig.Side,
		EntryTime:    c.Timestamp,
		EntryPrice:   sig.EntryPrice,
		StopLoss:     sig.StopLoss,
		InitialStop:  sig.StopLoss,
		TakeProfit:   sig.TakeProfit,
		PositionSize: size,
		Reason:       sig.Reason,
		DayKey:       market.DayKey(c.Timestamp, e.loc),
	}
	e.quota.RecordEntry()

	e.log.Trade(map[string]any{
		"event":  "open",
		"side":   string(sig.Side),
		"reason": sig.Reason,
		"entry":  sig.EntryPrice.String(),
		"stop":   sig.StopLoss.String(),
		"target": sig.TakeProfit.String(),
		"size":   size.String(),
		"time":   c.Timestamp,
	})
}

// checkExit evaluates exit conditions for the open position against one bar,
// in priority order: day rollover, stop/target breach (with the same-bar
// conflict resolver), session cutoff or 24h limit, trend flip. If nothing
// fires, the stop may move to break-even once the bar shows +1R unrealized.
func (e *Engine) checkExit(candles []market.Candle, idx int) {
	c := candles[idx]
	p := e.position

	// Day rollover while still holding (full-day mode holds through midnight
	// and uses the 24h limit instead)
	if !e.cfg.FullDayTrading && market.DayKey(c.Timestamp, e.loc) != p.DayKey {
		e.closePosition(c.Timestamp, c.Close, ExitSessionRollover)
		return
	}

	stopHit, targetHit := e.levelsBreached(c)
	if stopHit && targetHit {
		reason := ResolveSameBarConflict(c.Open, p.StopLoss, p.TakeProfit, p.Side)
		if reason == ExitStopLoss {
			e.closeAtStop(c.Timestamp)
		} else {
			e.closePosition(c.Timestamp, p.TakeProfit, ExitTakeProfit)
		}
		return
	}
	if stopHit {
		e.closeAtStop(c.Timestamp)
		return
	}
	if targetHit {
		e.closePosition(c.Timestamp, p.TakeProfit, ExitTakeProfit)
		return
	}

	if e.cfg.FullDayTrading {
		if !c.Timestamp.Before(p.EntryTime.Add(24 * time.Hour)) {
			e.closePosition(c.Timestamp, c.Close, ExitTimeLimit24h)
			return
		}
	} else if market.LocalHour(c.Timestamp, e.loc) >= e.cfg.ExitWindow.End {
		e.closePosition(c.Timestamp, c.Close, ExitSessionClose)
		return
	}

	if e.cfg.AllowReentryOnTrendChange && e.trendFlipped(candles, idx) {
		e.closePosition(c.Timestamp, c.Close, ExitTrendFlip)
		return
	}

	e.maybeMoveToBreakEven(c)
}

// levelsBreached reports whether the bar touched the stop and/or the target
func (e *Engine) levelsBreached(c market.Candle) (stopHit, targetHit bool) {
	p := e.position
	if p.Side == market.SideLong {
		stopHit = c.Low.LessThanOrEqual(p.StopLoss)
		targetHit = c.High.GreaterThanOrEqual(p.TakeProfit)
	} else {
		stopHit = c.High.GreaterThanOrEqual(p.StopLoss)
		targetHit = c.Low.LessThanOrEqual(p.TakeProfit)
	}
	return stopHit, targetHit
}

// closeAtStop closes at the current stop level, distinguishing a break-even
// exit from a genuine stop-loss
func (e *Engine) closeAtStop(ts time.Time) {
	reason := ExitStopLoss
	if e.position.BreakEvenSet && e.position.StopLoss.Equal(e.position.EntryPrice) {
		reason = ExitBreakEven
	}
	e.closePosition(ts, e.position.StopLoss, reason)
}

// trendFlipped detects an EMA slope reversal (or ADX fading) against the
// position after entry
func (e *Engine) trendFlipped(candles []market.Candle, idx int) bool {
	closes := make([]decimal.Decimal, idx+1)
	for i := 0; i <= idx; i++ {
		closes[i] = candles[i].Close
	}

	ema := indicators.EMA(closes, e.cfg.EMAPullbackPeriod)
	if len(ema) < 2 {
		return false
	}
	current, previous := ema[len(ema)-1], ema[len(ema)-2]

	if e.position.Side == market.SideLong && current.LessThan(previous) {
		return true
	}
	if e.position.Side == market.SideShort && current.GreaterThan(previous) {
		return true
	}

	highs := make([]decimal.Decimal, idx+1)
	lows := make([]decimal.Decimal, idx+1)
	for i := 0; i <= idx; i++ {
		highs[i] = candles[i].High
		lows[i] = candles[i].Low
	}
	adx := indicators.ADX(highs, lows, closes, e.cfg.ADXPeriod)
	if len(adx) >= 2 && adx[len(adx)-1].LessThan(adx[len(adx)-2]) {
		return true
	}

	return false
}

// maybeMoveToBreakEven moves the stop to the entry price once the bar shows
// at least +1R of unrealized profit
func (e *Engine) maybeMoveToBreakEven(c market.Candle) {
	p := e.position
	if p.BreakEvenSet {
		return
	}

	risk := p.RiskPerUnit()
	if risk.IsZero() {
		return
	}

	reached := false
	if p.Side == market.SideLong {
		reached = c.High.GreaterThanOrEqual(p.EntryPrice.Add(risk))
	} else {
		reached = c.Low.LessThanOrEqual(p.EntryPrice.Sub(risk))
	}

	if reached {
		p.StopLoss = p.EntryPrice
		p.BreakEvenSet = true
		e.log.Debug("stop moved to break-even",
			"entry", p.EntryPrice.String(),
			"time", c.Timestamp)
	}
}

// closePosition converts the open position into a TradeRecord with costs and
// R-multiple and returns the engine to the flat state
func (e *Engine) closePosition(exitTime time.Time, exitPrice decimal.Decimal, reason ExitReason) {
	p := e.position

	var gross decimal.Decimal
	if p.Side == market.SideLong {
		gross = exitPrice.Sub(p.EntryPrice).Mul(p.PositionSize)
	} else {
		gross = p.EntryPrice.Sub(exitPrice).Mul(p.PositionSize)
	}

	// Round-trip rates split evenly between the entry and exit legs
	entryNotional := p.EntryPrice.Mul(p.PositionSize)
	exitNotional := exitPrice.Mul(p.PositionSize)
	commission := entryNotional.Add(exitNotional).Mul(e.cfg.CommissionRate.Div(two))
	slippage := entryNotional.Add(exitNotional).Mul(e.cfg.SlippageRate.Div(two))

	net := gross.Sub(commission).Sub(slippage)

	riskAmount := p.RiskPerUnit().Mul(p.PositionSize)
	rMultiple := decimal.Zero
	if riskAmount.IsPositive() {
		rMultiple = net.Div(riskAmount)
	}

	record := TradeRecord{
		ID:             uuid.New().String(),
		Symbol:         p.Symbol,
		DayKey:         p.DayKey,
		Side:           p.Side,
		EntryTime:      p.EntryTime,
		ExitTime:       exitTime,
		EntryPrice:     p.EntryPrice,
		ExitPrice:      exitPrice,
		StopLoss:       p.InitialStop,
		TakeProfit:     p.TakeProfit,
		PositionSize:   p.PositionSize,
		Reason:         p.Reason,
		ExitReason:     reason,
		GrossPnLUSDT:   gross,
		CommissionUSDT: commission,
		SlippageUSDT:   slippage,
		PnLUSDT:        net,
		RMultiple:      rMultiple,
	}

	e.trades = append(e.trades, record)
	e.quota.RecordPnL(net)

	summary, ok := e.days[p.DayKey]
	if !ok {
		summary = &DaySummary{Day: p.DayKey}
		e.days[p.DayKey] = summary
	}
	summary.Trades++
	summary.PnL = summary.PnL.Add(net)

	e.log.Trade(map[string]any{
		"event":       "close",
		"side":        string(p.Side),
		"exit_reason": string(reason),
		"exit":        exitPrice.String(),
		"pnl":         net.String(),
		"r_multiple":  rMultiple.StringFixed(4),
		"time":        exitTime,
	})

	if e.onTrade != nil {
		e.onTrade(&record)
	}

	e.position = nil
}

// logDaySummary emits the summary event for the day that just ended
func (e *Engine) logDaySummary(day string) {
	trades := 0
	pnl := decimal.Zero
	if summary, ok := e.days[day]; ok {
		trades = summary.Trades
		pnl = summary.PnL
	}
	e.log.Info("daily summary", "day", day, "trades", trades, "pnl", pnl.String())
}

// daySummaries returns the per-day summaries ordered by day key
func (e *Engine) daySummaries() []DaySummary {
	keys := make([]string, 0, len(e.days))
	for k := range e.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DaySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, *e.days[k])
	}
	return out
}
