package analysis

import (
	"time"

	"github.com/zhaobenny/ccledger/internal/model"
)

// BudgetAnalysis reports spending against a monthly budget, with a naive
// projection of the month-end total from the daily average so far.
type BudgetAnalysis struct {
	BudgetLimit          float64  `json:"budget_limit"`
	CurrentUsage         float64  `json:"current_usage"`
	UsagePercentage      *float64 `json:"usage_percentage,omitempty"`
	BudgetExceeded       bool     `json:"budget_exceeded"`
	WarningExceeded      bool     `json:"warning_exceeded"`
	AlertExceeded        bool     `json:"alert_exceeded"`
	DailyAverageCost     float64  `json:"daily_average_cost"`
	ProjectedMonthlyCost float64  `json:"projected_monthly_cost"`
	UsagePeriodDays      int      `json:"usage_period_days"`
	DaysRemainingInMonth int      `json:"days_remaining_in_month"`
	Currency             string   `json:"currency"`
}

// EvaluateBudget compares the records' total cost to the budget and
// projects month-end spend. now anchors the days-remaining computation.
// UsagePercentage is nil when no limit is configured.
func EvaluateBudget(records []model.UsageRecord, budget *model.BudgetInfo, now time.Time) BudgetAnalysis {
	var totalCost float64
	var first, last time.Time
	for i := range records {
		r := &records[i]
		totalCost += r.Cost
		if first.IsZero() || r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	periodDays := 0
	if !first.IsZero() {
		periodDays = int(model.DateOf(last, time.UTC).Sub(model.DateOf(first, time.UTC)).Hours()/24) + 1
	}
	dailyAvg := 0.0
	if periodDays > 0 {
		dailyAvg = totalCost / float64(periodDays)
	}
	remaining := daysRemainingInMonth(now)

	ba := BudgetAnalysis{
		BudgetLimit:          budget.MonthlyLimit,
		CurrentUsage:         totalCost,
		BudgetExceeded:       budget.IsBudgetExceeded(totalCost),
		WarningExceeded:      budget.IsWarningExceeded(totalCost),
		AlertExceeded:        budget.IsAlertExceeded(totalCost),
		DailyAverageCost:     dailyAvg,
		ProjectedMonthlyCost: totalCost + dailyAvg*float64(remaining),
		UsagePeriodDays:      periodDays,
		DaysRemainingInMonth: remaining,
		Currency:             budget.Currency,
	}
	if pct, ok := budget.UsagePercentage(totalCost); ok {
		ba.UsagePercentage = &pct
	}
	return ba
}

// daysRemainingInMonth counts the days after now's date through the end
// of its calendar month.
func daysRemainingInMonth(now time.Time) int {
	year, month, day := now.Date()
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	return lastDay - day
}
