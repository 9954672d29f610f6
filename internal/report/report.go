package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
	"github.com/shopspring/decimal"
)

// Reporter generates human-readable reports from backtest results
type Reporter struct{}

// NewReporter creates a new reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// GenerateReport generates a formatted text report
func (r *Reporter) GenerateReport(result *engine.Result, summary *metrics.Summary, validation *metrics.ValidationResult) string {
	var sb strings.Builder

	sb.WriteString("═══════════════════════════════════════════════════════\n")
	sb.WriteString("            ONE TRADE PER DAY - BACKTEST REPORT\n")
	sb.WriteString("═══════════════════════════════════════════════════════\n\n")

	sb.WriteString("📈 TRADE STATISTICS\n")
	sb.WriteString("───────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Symbol:               %s\n", result.Symbol))
	sb.WriteString(fmt.Sprintf("Total Trades:         %d\n", summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("Winning Trades:       %d\n", summary.WinningTrades))
	sb.WriteString(fmt.Sprintf("Losing Trades:        %d\n", summary.LosingTrades))
	sb.WriteString(fmt.Sprintf("Win Rate:             %.2f%%\n", summary.WinRate))
	sb.WriteString(fmt.Sprintf("Green Days:           %.2f%%\n\n", summary.GreenDaysPct))

	sb.WriteString("💰 PROFIT/LOSS ANALYSIS\n")
	sb.WriteString("───────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Total PnL:            $%s\n", summary.TotalPnL.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Gross Profit:         $%s\n", summary.GrossProfit.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Gross Loss:           $%s\n", summary.GrossLoss.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Profit Factor:        %s\n", formatProfitFactor(summary.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("Expectancy:           $%s\n", summary.Expectancy.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Avg R-Multiple:       %.3f\n", summary.AvgRMultiple))
	sb.WriteString(fmt.Sprintf("Max Drawdown:         $%s\n", summary.MaxDrawdown.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Max Consec. Losses:   %d\n\n", summary.MaxConsecutiveLosses))

	if len(result.Days) > 0 {
		sb.WriteString("📅 DAILY SUMMARY\n")
		sb.WriteString("───────────────────────────────────────────────────────\n")
		for _, day := range result.Days {
			sb.WriteString(fmt.Sprintf("%s  trades=%d  pnl=$%s\n",
				day.Day, day.Trades, day.PnL.StringFixed(2)))
		}
		sb.WriteString("\n")
	}

	if len(result.Trades) > 0 {
		sb.WriteString("📋 RECENT TRADES (Last 10)\n")
		sb.WriteString("───────────────────────────────────────────────────────\n")

		start := len(result.Trades) - 10
		if start < 0 {
			start = 0
		}

		for i := start; i < len(result.Trades); i++ {
			trade := result.Trades[i]
			symbol := "📈"
			if trade.PnLUSDT.LessThan(decimal.Zero) {
				symbol = "📉"
			}
			sb.WriteString(fmt.Sprintf("%s %s %s: Entry=$%s Exit=$%s PnL=$%s R=%s %s\n",
				symbol,
				trade.EntryTime.Format("01-02 15:04"),
				trade.Side,
				trade.EntryPrice.StringFixed(2),
				trade.ExitPrice.StringFixed(2),
				trade.PnLUSDT.StringFixed(2),
				trade.RMultiple.StringFixed(2),
				trade.ExitReason,
			))
		}
		sb.WriteString("\n")
	}

	if validation != nil {
		sb.WriteString("✅ VALIDATION\n")
		sb.WriteString("───────────────────────────────────────────────────────\n")
		if validation.Passed {
			sb.WriteString("Result: PASSED\n")
		} else {
			sb.WriteString("Result: FAILED\n")
		}
		for _, failure := range validation.Failures {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", failure))
		}
		for _, warning := range validation.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", warning))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("═══════════════════════════════════════════════════════\n")

	return sb.String()
}

// GenerateSummary generates a short one-line summary
func (r *Reporter) GenerateSummary(summary *metrics.Summary) string {
	return fmt.Sprintf(
		"PnL: $%s | Trades: %d | Win Rate: %.2f%% | Max DD: $%s | Profit Factor: %s | Avg R: %.3f",
		summary.TotalPnL.StringFixed(2),
		summary.TotalTrades,
		summary.WinRate,
		summary.MaxDrawdown.StringFixed(2),
		formatProfitFactor(summary.ProfitFactor),
		summary.AvgRMultiple,
	)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}
