package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/LautaroIbanez/One-Trade-sub000/pkg/utils"
)

// DefaultTimezone is the IANA zone used for daily boundaries when none is configured
const DefaultTimezone = "America/Argentina/Buenos_Aires"

// DayKeyLayout is the format of a local calendar date key
const DayKeyLayout = "2006-01-02"

var (
	// ErrEmptySeries indicates a backtest was requested on zero candles
	ErrEmptySeries = errors.New("candle series is empty")
	// ErrUnorderedSeries indicates timestamps are not strictly increasing
	ErrUnorderedSeries = errors.New("candle timestamps are not strictly increasing")
	// ErrInvalidBar indicates a candle violates the OHLC invariant
	ErrInvalidBar = errors.New("candle violates OHLC invariant")
)

// Location resolves an IANA timezone name, falling back to UTC if it fails
func Location(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Component("market").WithError(err).Warn("timezone not resolved, falling back to UTC",
			"timezone", name)
		return time.UTC
	}
	return loc
}

// DayKey returns the local calendar date string a timestamp belongs to
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// LocalHour returns the local hour of day of a timestamp
func LocalHour(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour()
}

// Validate checks the preconditions the lifecycle engine requires before a run:
// non-empty series, strictly increasing timestamps, positive OHLC with
// low <= min(open,close) <= max(open,close) <= high, non-negative volume.
func (s *Series) Validate() error {
	if len(s.Candles) == 0 {
		return ErrEmptySeries
	}

	for i, c := range s.Candles {
		if i > 0 && !c.Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("%w: index %d (%s) not after index %d (%s)",
				ErrUnorderedSeries, i, c.Timestamp, i-1, s.Candles[i-1].Timestamp)
		}
		if err := validateCandle(c); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}

func validateCandle(c Candle) error {
	if !c.Open.IsPositive() || !c.High.IsPositive() || !c.Low.IsPositive() || !c.Close.IsPositive() {
		return fmt.Errorf("%w: non-positive OHLC at %s", ErrInvalidBar, c.Timestamp)
	}
	if c.Volume.IsNegative() {
		return fmt.Errorf("%w: negative volume at %s", ErrInvalidBar, c.Timestamp)
	}

	bodyLow := utils.MinDecimal(c.Open, c.Close)
	bodyHigh := utils.MaxDecimal(c.Open, c.Close)
	if c.Low.GreaterThan(bodyLow) || c.High.LessThan(bodyHigh) {
		return fmt.Errorf("%w: low=%s open=%s close=%s high=%s at %s",
			ErrInvalidBar, c.Low, c.Open, c.Close, c.High, c.Timestamp)
	}

	return nil
}
