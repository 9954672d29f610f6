package quota

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// State is the observable state of the controller
type State string

const (
	StateCanTrade State = "CAN_TRADE"
	StateBlocked  State = "BLOCKED"
)

// Config holds the daily limits
type Config struct {
	MaxDailyTrades int
	DailyTarget    decimal.Decimal // blocks once daily PnL reaches this
	DailyMaxLoss   decimal.Decimal // negative threshold; blocks once daily PnL falls to it
	Timezone       string
}

// Controller tracks the per-local-day trade count and PnL and blocks entries
// once a limit is hit. It never looks ahead; it reacts only to the bars the
// engine presents in order.
type Controller struct {
	cfg Config
	loc *time.Location

	day         string
	tradesTaken int
	dailyPnL    decimal.Decimal
}

// NewController creates a controller for the configured limits
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg: cfg,
		loc: market.Location(cfg.Timezone),
	}
}

// Location returns the resolved local timezone
func (c *Controller) Location() *time.Location { return c.loc }

// Observe advances the controller to the bar's local day. It returns true
// when the bar opens a new local day, which resets the counters.
func (c *Controller) Observe(t time.Time) bool {
	day := market.DayKey(t, c.loc)
	if day == c.day {
		return false
	}

	rolled := c.day != ""
	if rolled {
		logger.Component("quota").Debug("daily reset",
			"previous_day", c.day,
			"new_day", day,
			"trades", c.tradesTaken,
			"pnl", c.dailyPnL.String())
	}

	c.day = day
	c.tradesTaken = 0
	c.dailyPnL = decimal.Zero
	return rolled
}

// State returns CAN_TRADE or BLOCKED for the currently tracked day
func (c *Controller) State() State {
	if c.tradesTaken >= c.cfg.MaxDailyTrades {
		return StateBlocked
	}
	if c.cfg.DailyTarget.IsPositive() && c.dailyPnL.GreaterThanOrEqual(c.cfg.DailyTarget) {
		return StateBlocked
	}
	if c.cfg.DailyMaxLoss.IsNegative() && c.dailyPnL.LessThanOrEqual(c.cfg.DailyMaxLoss) {
		return StateBlocked
	}
	return StateCanTrade
}

// CanTrade reports whether a new entry is allowed
func (c *Controller) CanTrade() bool {
	return c.State() == StateCanTrade
}

// RecordEntry counts a new trade against the daily quota
func (c *Controller) RecordEntry() {
	c.tradesTaken++
}

// RecordPnL accumulates realized PnL into the daily total
func (c *Controller) RecordPnL(pnl decimal.Decimal) {
	c.dailyPnL = c.dailyPnL.Add(pnl)
}

// Day returns the currently tracked local date key
func (c *Controller) Day() string { return c.day }

// TradesTaken returns the number of trades taken today
func (c *Controller) TradesTaken() int { return c.tradesTaken }

// DailyPnL returns today's realized PnL
func (c *Controller) DailyPnL() decimal.Decimal { return c.dailyPnL }
