// Package tui renders backtest results as an interactive terminal dashboard
package tui

import (
	"github.com/LautaroIbanez/One-Trade-sub000/internal/engine"
	"github.com/LautaroIbanez/One-Trade-sub000/internal/metrics"
	tea "github.com/charmbracelet/bubbletea"
)

// View represents the active view
type View int

const (
	ViewSummary View = iota
	ViewTrades
	ViewDays
)

// tradePageSize is how many trades one screen of the trade log shows
const tradePageSize = 15

// Model represents the results dashboard model
type Model struct {
	result     *engine.Result
	summary    *metrics.Summary
	validation *metrics.ValidationResult
	strategy   string

	width      int
	height     int
	activeView View
	tradeTop   int
}

// NewModel creates a dashboard model over a completed run
func NewModel(result *engine.Result, summary *metrics.Summary, validation *metrics.ValidationResult, strategy string) Model {
	return Model{
		result:     result,
		summary:    summary,
		validation: validation,
		strategy:   strategy,
		activeView: ViewSummary,
	}
}

// Init initializes the dashboard
func (m Model) Init() tea.Cmd {
	return nil
}

// Run starts the dashboard and blocks until the user quits
func Run(result *engine.Result, summary *metrics.Summary, validation *metrics.ValidationResult, strategy string) error {
	program := tea.NewProgram(
		NewModel(result, summary, validation, strategy),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}
