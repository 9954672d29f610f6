package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "1", "s":
		m.activeView = ViewSummary
	case "2", "t":
		m.activeView = ViewTrades
	case "3", "d":
		m.activeView = ViewDays

	case "tab":
		m.activeView = (m.activeView + 1) % 3
		m.tradeTop = 0

	case "up", "k":
		if m.activeView == ViewTrades && m.tradeTop > 0 {
			m.tradeTop--
		}

	case "down", "j":
		if m.activeView == ViewTrades && m.tradeTop < m.maxTradeTop() {
			m.tradeTop++
		}
	}

	return m, nil
}

func (m Model) maxTradeTop() int {
	max := len(m.result.Trades) - tradePageSize
	if max < 0 {
		return 0
	}
	return max
}
