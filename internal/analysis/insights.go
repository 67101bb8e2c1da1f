package analysis

import (
	"fmt"
	"sort"

	"github.com/zhaobenny/ccledger/internal/model"
)

// Insight trigger levels: a model dominating half the spend, a 50% cost
// rise over the period, and 15% of traffic in a single off-peak hour.
const (
	dominantModelShare  = 50.0
	rapidGrowthRate     = 50.0
	offHoursShare       = 15.0
	offHoursEveningFrom = 22
	offHoursMorningTo   = 6
)

// GenerateInsights distills the stats, trends, and budget position into
// short human-readable notes, most urgent first. The budget may be nil.
func GenerateInsights(stats UsageStats, trends model.UsageTrends, budget *model.BudgetInfo) []string {
	var insights []string

	if budget != nil {
		if pct, ok := budget.UsagePercentage(stats.TotalCost); ok {
			switch {
			case budget.IsAlertExceeded(stats.TotalCost):
				insights = append(insights, fmt.Sprintf(
					"Budget alert: %.1f%% of the monthly limit used (%.2f of %.2f %s)",
					pct, stats.TotalCost, budget.MonthlyLimit, budget.Currency))
			case budget.IsWarningExceeded(stats.TotalCost):
				insights = append(insights, fmt.Sprintf(
					"Budget warning: %.1f%% of the monthly limit used (%.2f of %.2f %s)",
					pct, stats.TotalCost, budget.MonthlyLimit, budget.Currency))
			}
		}
	}

	if trends.CostGrowthRate != nil && *trends.CostGrowthRate > rapidGrowthRate {
		insights = append(insights, fmt.Sprintf(
			"Costs grew %.1f%% over the period; review recent usage", *trends.CostGrowthRate))
	}

	if name, share := dominantModel(stats); share > dominantModelShare {
		insights = append(insights, fmt.Sprintf(
			"%s accounts for %.1f%% of total cost; cheaper models may fit simpler tasks", name, share))
	}

	if stats.PeakUsageHour != nil {
		hour := *stats.PeakUsageHour
		share := float64(stats.HourlyDistribution[hour]) / float64(stats.TotalRequests) * 100
		if share > offHoursShare && (hour >= offHoursEveningFrom || hour <= offHoursMorningTo) {
			insights = append(insights, fmt.Sprintf(
				"%.1f%% of requests land at %02d:00; consider moving batch work into regular hours", share, hour))
		}
	}

	return insights
}

// dominantModel returns the model with the largest cost share, ties
// resolved by name so the pick is deterministic.
func dominantModel(stats UsageStats) (string, float64) {
	if stats.TotalCost == 0 {
		return "", 0
	}
	names := make([]string, 0, len(stats.ModelUsage))
	for name := range stats.ModelUsage {
		names = append(names, name)
	}
	sort.Strings(names)

	var bestName string
	var bestCost float64
	for _, name := range names {
		if cost := stats.ModelUsage[name].TotalCost; cost > bestCost {
			bestName, bestCost = name, cost
		}
	}
	return bestName, bestCost / stats.TotalCost * 100
}
