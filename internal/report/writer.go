package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
)

// csvHeader is the flat-table shape of a serialized trade log
var csvHeader = []string{
	"day_key", "entry_time", "exit_time", "side",
	"entry_price", "exit_price", "sl", "tp",
	"pnl_usdt", "r_multiple", "reason", "exit_reason", "position_size",
}

// WriteTradesCSV writes the trade log as a flat CSV table
func WriteTradesCSV(path string, trades []engine.TradeRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trade log file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range trades {
		record := []string{
			t.DayKey,
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			string(t.Side),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.StopLoss.String(),
			t.TakeProfit.String(),
			t.PnLUSDT.String(),
			t.RMultiple.String(),
			t.Reason,
			string(t.ExitReason),
			t.PositionSize.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	return nil
}

// resultsDocument is the on-disk JSON shape of a completed run
type resultsDocument struct {
	Symbol     string                    `json:"symbol"`
	Summary    *metrics.Summary          `json:"summary"`
	Validation *metrics.ValidationResult `json:"validation,omitempty"`
	Days       []engine.DaySummary       `json:"days"`
	Trades     []engine.TradeRecord      `json:"trades"`

	// ProfitFactor repeated as a string so the +Inf edge case survives JSON
	ProfitFactor string `json:"profit_factor"`
}

// WriteResultsJSON writes the full results document as JSON
func WriteResultsJSON(path string, result *engine.Result, summary *metrics.Summary, validation *metrics.ValidationResult) error {
	pf := fmt.Sprintf("%g", summary.ProfitFactor)
	if math.IsInf(summary.ProfitFactor, 1) {
		pf = "inf"
	}

	doc := resultsDocument{
		Symbol:       result.Symbol,
		Summary:      summary,
		Validation:   validation,
		Days:         result.Days,
		Trades:       result.Trades,
		ProfitFactor: pf,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	return nil
}
