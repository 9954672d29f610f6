package metrics

import (
	"fmt"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/config"
)

// ValidationResult is the verdict of comparing a Summary against thresholds.
// Failures are hard criteria (win rate, PnL, average R); warnings are soft
// (trade count, profit factor).
type ValidationResult struct {
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validate compares a summary against the configured minimum thresholds
func Validate(s *Summary, t config.Thresholds) *ValidationResult {
	result := &ValidationResult{Passed: true}

	if s.WinRate < t.MinWinRate {
		result.Failures = append(result.Failures,
			fmt.Sprintf("win rate %.2f%% below minimum %.2f%%", s.WinRate, t.MinWinRate))
	}
	if s.TotalPnL.LessThan(t.MinTotalPnL) {
		result.Failures = append(result.Failures,
			fmt.Sprintf("total PnL %s below minimum %s", s.TotalPnL.StringFixed(2), t.MinTotalPnL.StringFixed(2)))
	}
	if s.AvgRMultiple < t.MinAvgRMultiple {
		result.Failures = append(result.Failures,
			fmt.Sprintf("average R %.3f below minimum %.3f", s.AvgRMultiple, t.MinAvgRMultiple))
	}

	if s.TotalTrades < t.MinTrades {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("only %d trades, minimum %d expected", s.TotalTrades, t.MinTrades))
	}
	if s.ProfitFactor < t.MinProfitFactor {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("profit factor %.2f below minimum %.2f", s.ProfitFactor, t.MinProfitFactor))
	}

	result.Passed = len(result.Failures) == 0
	return result
}
