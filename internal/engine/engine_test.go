package engine

import (
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/testutils"
	"github.com/shopspring/decimal"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Timezone = "UTC"
	// Deep capital so the risk-based size is not capped, and near-zero costs
	// so level assertions are not dominated by fees
	cfg.InitialCapital = decimal.NewFromInt(1000000)
	cfg.CommissionRate = decimal.NewFromFloat(0.00002)
	cfg.SlippageRate = decimal.NewFromFloat(0.00001)
	return cfg
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// breakoutDay builds one local day: the opening-range bar at hour 11, a
// breakout bar at hour 12, and a follow-up bar at hour 13 with the given
// extremes.
func breakoutDay(day time.Time, high13, low13 float64) []market.Candle {
	return []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 50050, 50200, 50000, 50150, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour), 50150, high13, low13, (high13+low13)/2, 1000),
	}
}

func TestEngineRun_BreakoutToTakeProfit(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New should accept the default config")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := &market.Series{Symbol: "BTC/USDT", Candles: breakoutDay(day, 50400, 50100)}

	result, err := eng.Run(series)
	testutils.AssertNoError(t, err, "Run should succeed")
	testutils.AssertEqual(t, 1, len(result.Trades), "exactly one trade")

	trade := result.Trades[0]
	testutils.AssertEqual(t, market.SideLong, trade.Side, "long breakout")
	testutils.AssertEqual(t, "orb_breakout_long", trade.Reason, "entry reason")
	testutils.AssertEqual(t, ExitTakeProfit, trade.ExitReason, "target reached on the next bar")
	testutils.AssertDecimalEqual(t, decimal.NewFromInt(50100), trade.EntryPrice, "entry at the range high")
	testutils.AssertDecimalEqual(t, trade.TakeProfit, trade.ExitPrice, "fills at the target level")
	testutils.AssertTrue(t, trade.PnLUSDT.IsPositive(), "net PnL positive after costs")
	testutils.AssertTrue(t, trade.RMultiple.LessThan(d(1.5)), "costs pull the R below the 1.5 target")
	testutils.AssertTrue(t, trade.RMultiple.GreaterThan(d(1)), "R stays near the target")

	testutils.AssertEqual(t, 1, len(result.Days), "one trading day")
	testutils.AssertEqual(t, 1, result.Days[0].Trades, "day counts the trade")
	testutils.AssertDecimalEqual(t, trade.PnLUSDT, result.Days[0].PnL, "day PnL matches the trade")
}

func TestEngineRun_StopLoss(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Follow-up bar collapses well below any plausible stop, staying under
	// the target so only the stop is in play
	series := &market.Series{Symbol: "BTC/USDT", Candles: breakoutDay(day, 50140, 49500)}

	result, err := eng.Run(series)
	testutils.AssertNoError(t, err, "Run")
	testutils.AssertEqual(t, 1, len(result.Trades), "one trade")

	trade := result.Trades[0]
	testutils.AssertEqual(t, ExitStopLoss, trade.ExitReason, "stop fires on the collapse")
	testutils.AssertDecimalEqual(t, trade.StopLoss, trade.ExitPrice, "fills at the stop level")
	testutils.AssertTrue(t, trade.PnLUSDT.IsNegative(), "loss after costs")
}

func TestEngineRun_OneTradePerDay(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := breakoutDay(day, 50400, 50100)
	// Another clean breakout bar later the same day; the quota must block it
	candles = append(candles,
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour+30*time.Minute), 50250, 50600, 50200, 50500, 1000))

	result, err := eng.Run(&market.Series{Symbol: "BTC/USDT", Candles: candles})
	testutils.AssertNoError(t, err, "Run")
	testutils.AssertEqual(t, 1, len(result.Trades), "daily quota holds at one trade")
}

func TestEngineRun_SessionRollover(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 50050, 50200, 50000, 50150, 1000),
		// Next bar is already the following local day; neither level was hit
		testutils.CandleOHLC("BTC/USDT", day.Add(34*time.Hour), 50150, 50160, 50140, 50150, 1000),
	}

	result, err := eng.Run(&market.Series{Symbol: "BTC/USDT", Candles: candles})
	testutils.AssertNoError(t, err, "Run")
	testutils.AssertEqual(t, 1, len(result.Trades), "one trade")
	testutils.AssertEqual(t, ExitSessionRollover, result.Trades[0].ExitReason,
		"held position closes on the day change")
	testutils.AssertEqual(t, "2024-03-01", result.Trades[0].DayKey,
		"trade belongs to its entry day")
}

func TestEngineRun_EndOfData(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{
		testutils.CandleOHLC("BTC/USDT", day.Add(11*time.Hour), 50000, 50100, 49900, 50000, 1000),
		testutils.CandleOHLC("BTC/USDT", day.Add(12*time.Hour), 50050, 50200, 50000, 50150, 1000),
	}

	result, err := eng.Run(&market.Series{Symbol: "BTC/USDT", Candles: candles})
	testutils.AssertNoError(t, err, "Run")
	testutils.AssertEqual(t, 1, len(result.Trades), "one trade")

	trade := result.Trades[0]
	testutils.AssertEqual(t, ExitEndOfData, trade.ExitReason, "series end forces the close")
	testutils.AssertDecimalEqual(t, d(50150), trade.ExitPrice, "closes at the last bar's close")
}

func TestEngineRun_RejectsInvalidSeries(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	_, err = eng.Run(&market.Series{Symbol: "BTC/USDT"})
	testutils.AssertError(t, err, "empty series must abort before any trade")
}

func TestEngineRun_Deterministic(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := market.GenerateSample("BTC/USDT", day, 24*10, 50000, time.Hour)

	run := func() *Result {
		eng, err := New(testConfig())
		testutils.AssertNoError(t, err, "New")
		result, err := eng.Run(series)
		testutils.AssertNoError(t, err, "Run")
		return result
	}

	first := run()
	second := run()

	testutils.AssertEqual(t, len(first.Trades), len(second.Trades), "same trade count")
	for i := range first.Trades {
		a, b := first.Trades[i], second.Trades[i]
		testutils.AssertDecimalEqual(t, a.EntryPrice, b.EntryPrice, "entry matches")
		testutils.AssertDecimalEqual(t, a.ExitPrice, b.ExitPrice, "exit matches")
		testutils.AssertDecimalEqual(t, a.PnLUSDT, b.PnLUSDT, "PnL matches")
		testutils.AssertEqual(t, a.ExitReason, b.ExitReason, "exit reason matches")
	}
}

func TestClosePosition_CostModel(t *testing.T) {
	cfg := testConfig()
	cfg.CommissionRate = d(0.001) // 0.1% round trip
	cfg.SlippageRate = d(0.0005)  // 0.05% round trip
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	entryTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	eng.position = &OpenPosition{
		Symbol:       "BTC/USDT",
		Side:         market.SideLong,
		EntryTime:    entryTime,
		EntryPrice:   d(5000),
		StopLoss:     d(4950),
		InitialStop:  d(4950),
		TakeProfit:   d(5100),
		PositionSize: d(1),
		Reason:       "orb_breakout_long",
		DayKey:       "2024-03-01",
	}

	eng.closePosition(entryTime.Add(time.Hour), d(5100), ExitTakeProfit)

	testutils.AssertEqual(t, 1, len(eng.trades), "one recorded trade")
	trade := eng.trades[0]

	// Round-trip rates split per leg over both notionals:
	// commission (5000+5100) * 0.001/2 = 5.05, slippage (5000+5100) * 0.00025 = 2.525
	testutils.AssertDecimalEqual(t, d(100), trade.GrossPnLUSDT, "gross move")
	testutils.AssertDecimalEqual(t, d(5.05), trade.CommissionUSDT, "commission split per leg")
	testutils.AssertDecimalEqual(t, d(2.525), trade.SlippageUSDT, "slippage split per leg")
	testutils.AssertDecimalEqual(t, d(92.425), trade.PnLUSDT, "net after costs")

	// R = net / (|entry-initialStop| * size) = 92.425 / 50
	testutils.AssertDecimalEqual(t, d(1.8485), trade.RMultiple, "R uses the initial stop")
	testutils.AssertDecimalEqual(t, d(4950), trade.StopLoss, "record keeps the initial stop")
	testutils.AssertTrue(t, eng.position == nil, "engine returns to flat")
}

func TestCheckExit_BreakEven(t *testing.T) {
	cfg := testConfig()
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entryTime := day.Add(12 * time.Hour)
	eng.position = &OpenPosition{
		Symbol:       "BTC/USDT",
		Side:         market.SideLong,
		EntryTime:    entryTime,
		EntryPrice:   d(50000),
		StopLoss:     d(49900),
		InitialStop:  d(49900),
		TakeProfit:   d(50500),
		PositionSize: d(1),
		DayKey:       "2024-03-01",
	}

	candles := []market.Candle{
		// +1R excursion without touching stop or target
		testutils.CandleOHLC("BTC/USDT", day.Add(13*time.Hour), 50050, 50120, 49950, 50080, 1000),
		// Retrace to the entry hits the relocated stop
		testutils.CandleOHLC("BTC/USDT", day.Add(14*time.Hour), 50080, 50090, 49990, 50000, 1000),
	}

	eng.checkExit(candles, 0)
	testutils.AssertNotNil(t, eng.position, "position survives the excursion bar")
	testutils.AssertTrue(t, eng.position.BreakEvenSet, "stop relocates after +1R")
	testutils.AssertDecimalEqual(t, d(50000), eng.position.StopLoss, "stop now at entry")

	eng.checkExit(candles, 1)
	testutils.AssertEqual(t, 1, len(eng.trades), "retrace closes the trade")

	trade := eng.trades[0]
	testutils.AssertEqual(t, ExitBreakEven, trade.ExitReason, "break-even exit, not a stop loss")
	testutils.AssertDecimalEqual(t, d(50000), trade.ExitPrice, "fills at the entry")
	testutils.AssertDecimalEqual(t, decimal.Zero, trade.GrossPnLUSDT, "flat gross")
	testutils.AssertTrue(t, trade.PnLUSDT.IsNegative(), "costs make the net slightly negative")
	testutils.AssertDecimalEqual(t, d(49900), trade.StopLoss, "record keeps the initial stop")
}

func TestCheckExit_TimeLimitFullDay(t *testing.T) {
	cfg := testConfig()
	cfg.FullDayTrading = true
	eng, err := New(cfg)
	testutils.AssertNoError(t, err, "New")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entryTime := day.Add(12 * time.Hour)
	eng.position = &OpenPosition{
		Symbol:       "BTC/USDT",
		Side:         market.SideLong,
		EntryTime:    entryTime,
		EntryPrice:   d(50000),
		StopLoss:     d(49000),
		InitialStop:  d(49000),
		TakeProfit:   d(52000),
		PositionSize: d(1),
		DayKey:       "2024-03-01",
	}

	candles := []market.Candle{
		// 23h59m held: no exit yet even though the local day changed
		testutils.CandleOHLC("BTC/USDT", entryTime.Add(24*time.Hour-time.Minute), 50050, 50100, 49900, 50000, 1000),
		// 24h mark
		testutils.CandleOHLC("BTC/USDT", entryTime.Add(24*time.Hour), 50000, 50100, 49900, 50050, 1000),
	}

	eng.checkExit(candles, 0)
	testutils.AssertNotNil(t, eng.position, "full-day mode holds through midnight")

	eng.checkExit(candles, 1)
	testutils.AssertEqual(t, 1, len(eng.trades), "24h limit closes the trade")
	testutils.AssertEqual(t, ExitTimeLimit24h, eng.trades[0].ExitReason, "time limit reason")
}

func TestResolveSameBarConflict(t *testing.T) {
	// Stop nearer the open: assume it was touched first
	reason := ResolveSameBarConflict(d(100), d(98), d(105), market.SideLong)
	testutils.AssertEqual(t, ExitStopLoss, reason, "nearer stop wins")

	// Target nearer the open
	reason = ResolveSameBarConflict(d(100), d(95), d(102), market.SideLong)
	testutils.AssertEqual(t, ExitTakeProfit, reason, "nearer target wins")

	// Exact tie goes to the target
	reason = ResolveSameBarConflict(d(100), d(98), d(102), market.SideLong)
	testutils.AssertEqual(t, ExitTakeProfit, reason, "tie resolves to take profit")

	// Short side uses the same distance rule
	reason = ResolveSameBarConflict(d(100), d(101), d(90), market.SideShort)
	testutils.AssertEqual(t, ExitStopLoss, reason, "short nearer stop wins")
}
