package report

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
	"github.com/shopspring/decimal"
)

func thresholds() config.Thresholds {
	return config.Default().Thresholds
}

func sampleResult() *engine.Result {
	entry := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &engine.Result{
		Symbol: "BTC/USDT",
		Trades: []engine.TradeRecord{
			{
				ID:             "t-1",
				Symbol:         "BTC/USDT",
				DayKey:         "2024-03-01",
				Side:           market.SideLong,
				EntryTime:      entry,
				ExitTime:       entry.Add(2 * time.Hour),
				EntryPrice:     decimal.NewFromInt(50000),
				ExitPrice:      decimal.NewFromInt(50300),
				StopLoss:       decimal.NewFromInt(49800),
				TakeProfit:     decimal.NewFromInt(50300),
				PositionSize:   decimal.NewFromFloat(0.1),
				Reason:         "orb_breakout_long",
				ExitReason:     engine.ExitTakeProfit,
				GrossPnLUSDT:   decimal.NewFromInt(30),
				CommissionUSDT: decimal.NewFromFloat(5),
				SlippageUSDT:   decimal.NewFromFloat(2.5),
				PnLUSDT:        decimal.NewFromFloat(22.5),
				RMultiple:      decimal.NewFromFloat(1.125),
			},
		},
		Days: []engine.DaySummary{
			{Day: "2024-03-01", Trades: 1, PnL: decimal.NewFromFloat(22.5)},
		},
	}
}

func TestGenerateReport(t *testing.T) {
	result := sampleResult()
	summary := metrics.Compute(result.Trades)
	validation := metrics.Validate(summary, thresholds())

	report := NewReporter().GenerateReport(result, summary, validation)

	for _, want := range []string{
		"BACKTEST REPORT",
		"BTC/USDT",
		"Total Trades:         1",
		"2024-03-01",
		"orb_breakout_long",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestFormatProfitFactor(t *testing.T) {
	if got := formatProfitFactor(math.Inf(1)); got != "∞" {
		t.Fatalf("expected ∞, got %s", got)
	}
	if got := formatProfitFactor(1.5); got != "1.50" {
		t.Fatalf("expected 1.50, got %s", got)
	}
}

func TestWriteTradesCSV(t *testing.T) {
	result := sampleResult()
	path := filepath.Join(t.TempDir(), "trades.csv")

	if err := WriteTradesCSV(path, result.Trades); err != nil {
		t.Fatalf("WriteTradesCSV failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one trade, got %d rows", len(rows))
	}
	if rows[0][0] != "day_key" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != "long" {
		t.Fatalf("unexpected side column: %v", rows[1])
	}
}

func TestWriteResultsJSON_InfSurvives(t *testing.T) {
	result := sampleResult() // single winning trade: profit factor is +Inf
	summary := metrics.Compute(result.Trades)
	validation := metrics.Validate(summary, thresholds())
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteResultsJSON(path, result, summary, validation); err != nil {
		t.Fatalf("WriteResultsJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("results document is not valid JSON: %v", err)
	}
	if doc["profit_factor"] != "inf" {
		t.Fatalf("expected profit_factor \"inf\", got %v", doc["profit_factor"])
	}
}

func TestInvertResult(t *testing.T) {
	result := sampleResult()
	inverted := InvertResult(result)

	trade := inverted.Trades[0]
	if trade.Side != market.SideShort {
		t.Fatalf("expected side flipped to short, got %s", trade.Side)
	}
	if !trade.GrossPnLUSDT.Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("expected gross negated, got %s", trade.GrossPnLUSDT)
	}
	// Costs stay as paid: net = -30 - 5 - 2.5
	if !trade.PnLUSDT.Equal(decimal.NewFromFloat(-37.5)) {
		t.Fatalf("expected net -37.5, got %s", trade.PnLUSDT)
	}
	// Levels reflect about the entry: stop 49800 -> 50200
	if !trade.StopLoss.Equal(decimal.NewFromInt(50200)) {
		t.Fatalf("expected mirrored stop 50200, got %s", trade.StopLoss)
	}
	if trade.ExitReason != engine.ExitStopLoss {
		t.Fatalf("expected take profit to mirror into stop loss, got %s", trade.ExitReason)
	}
	if !inverted.Days[0].PnL.Equal(decimal.NewFromFloat(-37.5)) {
		t.Fatalf("expected day PnL recomputed, got %s", inverted.Days[0].PnL)
	}

	// The original is untouched
	if result.Trades[0].Side != market.SideLong {
		t.Fatal("input result must not be mutated")
	}
}
