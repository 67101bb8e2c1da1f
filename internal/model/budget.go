package model

import (
	"errors"
	"fmt"
)

// Default thresholds, in percent of the monthly limit.
const (
	DefaultWarningThreshold = 80.0
	DefaultAlertThreshold   = 95.0
)

// ErrInvalidBudgetConfig reports a budget rejected at construction time.
var ErrInvalidBudgetConfig = errors.New("invalid budget configuration")

// BudgetInfo holds a monthly spending limit and its alerting thresholds.
// A zero MonthlyLimit means "no limit configured": percentage-based checks
// are undefined and report false rather than dividing by zero.
type BudgetInfo struct {
	MonthlyLimit     float64 `json:"monthly_limit" yaml:"monthly_limit"`
	Currency         string  `json:"currency" yaml:"currency"`
	WarningThreshold float64 `json:"warning_threshold" yaml:"warning_threshold"`
	AlertThreshold   float64 `json:"alert_threshold" yaml:"alert_threshold"`
}

// NewBudgetInfo creates a budget with the default 80/95 thresholds.
func NewBudgetInfo(monthlyLimit float64, currency string) (*BudgetInfo, error) {
	b := &BudgetInfo{
		MonthlyLimit:     monthlyLimit,
		Currency:         currency,
		WarningThreshold: DefaultWarningThreshold,
		AlertThreshold:   DefaultAlertThreshold,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate rejects negative limits and thresholds outside [0,100].
func (b *BudgetInfo) Validate() error {
	if b.MonthlyLimit < 0 {
		return fmt.Errorf("%w: monthly limit %.2f is negative", ErrInvalidBudgetConfig, b.MonthlyLimit)
	}
	if b.WarningThreshold < 0 || b.WarningThreshold > 100 {
		return fmt.Errorf("%w: warning threshold %.1f outside [0,100]", ErrInvalidBudgetConfig, b.WarningThreshold)
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return fmt.Errorf("%w: alert threshold %.1f outside [0,100]", ErrInvalidBudgetConfig, b.AlertThreshold)
	}
	return nil
}

// UsagePercentage returns spent as a percentage of the monthly limit.
// ok is false iff no limit is configured (MonthlyLimit == 0).
func (b *BudgetInfo) UsagePercentage(spent float64) (pct float64, ok bool) {
	if b.MonthlyLimit == 0 {
		return 0, false
	}
	return spent / b.MonthlyLimit * 100, true
}

// IsBudgetExceeded reports whether spent is strictly over the limit.
func (b *BudgetInfo) IsBudgetExceeded(spent float64) bool {
	if b.MonthlyLimit == 0 {
		return false
	}
	return spent > b.MonthlyLimit
}

// IsWarningExceeded reports whether spending reached the warning
// threshold. Always false with no limit configured.
func (b *BudgetInfo) IsWarningExceeded(spent float64) bool {
	pct, ok := b.UsagePercentage(spent)
	return ok && pct >= b.WarningThreshold
}

// IsAlertExceeded reports whether spending reached the alert threshold.
// Always false with no limit configured.
func (b *BudgetInfo) IsAlertExceeded(spent float64) bool {
	pct, ok := b.UsagePercentage(spent)
	return ok && pct >= b.AlertThreshold
}
