package strategy

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/testutils"
	"github.com/shopspring/decimal"
)

func orbConfig() *config.Config {
	cfg := config.Default()
	cfg.Timezone = "UTC"
	return cfg
}

// orbDay builds the opening-range bar at local hour 11 plus one follow-up bar
// at hour 12 with the given extremes.
func orbDay(high12, low12, open12 float64) []market.Candle {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), open12, high12, low12, (open12+high12)/2, 1000),
	}
}

func TestORB_BreakoutLong(t *testing.T) {
	cfg := orbConfig()
	gen := NewORB(cfg)

	candles := orbDay(50200, 50000, 50050)
	sig := gen.Evaluate(candles, 1)

	testutils.AssertTrue(t, sig.Valid, "close above the range high should fire")
	testutils.AssertEqual(t, market.SideLong, sig.Side, "breakout side")
	testutils.AssertEqual(t, ReasonORBLong, sig.Reason, "breakout reason")
	// Entry clamps to the range high when the open gapped below it
	testutils.AssertDecimalEqual(t, decimal.NewFromInt(50100), sig.EntryPrice, "entry at the range high")
	testutils.AssertNoError(t, sig.CheckLevels(), "levels must be ordered")
	testutils.AssertTrue(t, sig.StopLoss.LessThan(sig.EntryPrice), "long stop below entry")
	testutils.AssertTrue(t, sig.TakeProfit.GreaterThan(sig.EntryPrice), "long target above entry")
}

func TestORB_BreakoutShort(t *testing.T) {
	cfg := orbConfig()
	gen := NewORB(cfg)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 49950, 49960, 49800, 49850, 1000),
	}
	sig := gen.Evaluate(candles, 1)

	testutils.AssertTrue(t, sig.Valid, "drop below the range low should fire")
	testutils.AssertEqual(t, market.SideShort, sig.Side, "breakout side")
	testutils.AssertDecimalEqual(t, decimal.NewFromInt(49900), sig.EntryPrice, "entry at the range low")
	testutils.AssertNoError(t, sig.CheckLevels(), "levels must be ordered")
}

func TestORB_TouchDoesNotTrigger(t *testing.T) {
	cfg := orbConfig()
	gen := NewORB(cfg)

	// High exactly equals the range high: strict comparison, no entry
	candles := orbDay(50100, 50000, 50050)
	sig := gen.Evaluate(candles, 1)

	testutils.AssertFalse(t, sig.Valid, "touching the level must not trigger")
	testutils.AssertEqual(t, "no_breakout", sig.Reason, "reason tag")
}

func TestORB_BeforeRangeComplete(t *testing.T) {
	cfg := orbConfig()
	gen := NewORB(cfg)

	candles := orbDay(50200, 50000, 50050)
	sig := gen.Evaluate(candles, 0) // hour 11, range still forming

	testutils.AssertFalse(t, sig.Valid, "no signal while the range forms")
	testutils.AssertEqual(t, "orb_range_forming", sig.Reason, "reason tag")
}

func TestORB_OutsideEntryWindow(t *testing.T) {
	cfg := orbConfig()
	gen := NewORB(cfg)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(15*time.Hour), 50050, 50300, 50000, 50200, 1000),
	}
	sig := gen.Evaluate(candles, 1)

	testutils.AssertFalse(t, sig.Valid, "hour 15 is past the entry window")
	testutils.AssertEqual(t, "outside_entry_window", sig.Reason, "reason tag")
}

func TestORB_PullbackFallback(t *testing.T) {
	cfg := orbConfig()
	cfg.EMAPullbackPeriod = 2
	gen := NewORB(cfg)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Range [49900, 50100]; hours 12 and 13 stay inside it, price hugging
	// the short EMA. Hour 13 is the last entry hour, so the fallback fires.
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 50000, 50050, 49950, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour), 50000, 50050, 49950, 50000, 1000),
	}
	sig := gen.Evaluate(candles, 2)

	testutils.AssertTrue(t, sig.Valid, "forced fallback should fire in the last entry hour")
	testutils.AssertEqual(t, ReasonPullbackLong, sig.Reason, "long side checked first at the EMA")
	testutils.AssertNoError(t, sig.CheckLevels(), "levels must be ordered")
}

func TestORB_NoFallbackWhenDisabled(t *testing.T) {
	cfg := orbConfig()
	cfg.EMAPullbackPeriod = 2
	cfg.ForceOneTrade = false
	gen := NewORB(cfg)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour), 50000, 50050, 49950, 50000, 1000),
	}
	sig := gen.Evaluate(candles, 1)

	testutils.AssertFalse(t, sig.Valid, "no forced entry when force_one_trade is off")
}

func TestORB_RangeSpansConfiguredWindow(t *testing.T) {
	cfg := orbConfig()
	cfg.ORBWindow = config.HourWindow{Start: 11, End: 13}
	cfg.EntryWindow = config.HourWindow{Start: 11, End: 15}
	gen := NewORB(cfg)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 50000, 50250, 49850, 50100, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour), 50100, 50400, 50090, 50300, 1000),
	}
	sig := gen.Evaluate(candles, 2)

	testutils.AssertTrue(t, sig.Valid, "break of the widest range bar should fire")
	// The widened window folds hour 12 into the range: high 50250
	testutils.AssertDecimalEqual(t, decimal.NewFromInt(50250), sig.EntryPrice,
		"entry clamps to the wider range high")
}
