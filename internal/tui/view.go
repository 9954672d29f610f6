package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	successColor = lipgloss.Color("#00FF87")
	errorColor   = lipgloss.Color("#FF5555")
	mutedColor   = lipgloss.Color("#6272A4")

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// View renders the dashboard
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.activeView {
	case ViewSummary:
		content = m.renderSummary()
	case ViewTrades:
		content = m.renderTrades()
	case ViewDays:
		content = m.renderDays()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderHelp(),
	)
}

func (m Model) renderHeader() string {
	verdict := successStyle.Render("PASSED")
	if !m.validation.Passed {
		verdict = errorStyle.Render("FAILED")
	}
	title := fmt.Sprintf("One Trade Backtest · %s · %s · %s",
		m.result.Symbol, m.strategy, verdict)
	return headerStyle.Render(title)
}

func (m Model) renderSummary() string {
	s := m.summary

	var b strings.Builder
	b.WriteString(headerStyle.Render("Performance"))
	b.WriteString("\n\n")
	b.WriteString(statLine("Trades", fmt.Sprintf("%d (%d W / %d L)",
		s.TotalTrades, s.WinningTrades, s.LosingTrades)))
	b.WriteString(statLine("Win rate", fmt.Sprintf("%.1f%%", s.WinRate)))
	b.WriteString(statLine("Net PnL", pnlString(s.TotalPnL)))
	b.WriteString(statLine("Gross profit", s.GrossProfit.StringFixed(2)))
	b.WriteString(statLine("Gross loss", s.GrossLoss.StringFixed(2)))
	b.WriteString(statLine("Profit factor", profitFactorString(s.ProfitFactor)))
	b.WriteString(statLine("Expectancy", s.Expectancy.StringFixed(2)))
	b.WriteString(statLine("Avg R", fmt.Sprintf("%.2f", s.AvgRMultiple)))
	b.WriteString(statLine("Max drawdown", s.MaxDrawdown.StringFixed(2)))
	b.WriteString(statLine("Max consec losses", fmt.Sprintf("%d", s.MaxConsecutiveLosses)))
	b.WriteString(statLine("Green days", fmt.Sprintf("%.1f%%", s.GreenDaysPct)))

	if len(m.validation.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Failures"))
		b.WriteString("\n")
		for _, f := range m.validation.Failures {
			b.WriteString("  ✗ " + f + "\n")
		}
	}
	if len(m.validation.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Warnings"))
		b.WriteString("\n")
		for _, w := range m.validation.Warnings {
			b.WriteString("  ! " + w + "\n")
		}
	}

	return boxStyle.Render(b.String())
}

func (m Model) renderTrades() string {
	trades := m.result.Trades
	if len(trades) == 0 {
		return boxStyle.Render(mutedStyle.Render("No trades taken"))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Trade Log (%d-%d of %d)",
		m.tradeTop+1, minInt(m.tradeTop+tradePageSize, len(trades)), len(trades))))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-12s %-5s %10s %10s %10s %8s  %s",
		"DAY", "SIDE", "ENTRY", "EXIT", "PNL", "R", "EXIT REASON")))
	b.WriteString("\n")

	end := minInt(m.tradeTop+tradePageSize, len(trades))
	for _, t := range trades[m.tradeTop:end] {
		b.WriteString(renderTradeRow(t))
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

func renderTradeRow(t engine.TradeRecord) string {
	row := fmt.Sprintf("%-12s %-5s %10s %10s %10s %8s  %s",
		t.DayKey,
		t.Side,
		t.EntryPrice.StringFixed(2),
		t.ExitPrice.StringFixed(2),
		t.PnLUSDT.StringFixed(2),
		t.RMultiple.StringFixed(2),
		t.ExitReason,
	)
	if t.PnLUSDT.IsNegative() {
		return errorStyle.Render(row)
	}
	return successStyle.Render(row)
}

func (m Model) renderDays() string {
	days := m.result.Days
	if len(days) == 0 {
		return boxStyle.Render(mutedStyle.Render("No trading days"))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Daily Summary"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-12s %8s %12s", "DAY", "TRADES", "PNL")))
	b.WriteString("\n")
	for _, d := range days {
		row := fmt.Sprintf("%-12s %8d %12s", d.Day, d.Trades, d.PnL.StringFixed(2))
		if d.PnL.IsNegative() {
			b.WriteString(errorStyle.Render(row))
		} else {
			b.WriteString(successStyle.Render(row))
		}
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

func (m Model) renderHelp() string {
	return helpStyle.Render("1 summary · 2 trades · 3 days · tab next · ↑/↓ scroll · q quit")
}

func statLine(label, value string) string {
	return fmt.Sprintf("%s %s\n", mutedStyle.Render(fmt.Sprintf("%-20s", label)), value)
}

func pnlString(pnl decimal.Decimal) string {
	if pnl.IsNegative() {
		return errorStyle.Render(pnl.StringFixed(2) + " USDT")
	}
	return successStyle.Render("+" + pnl.StringFixed(2) + " USDT")
}

func profitFactorString(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
