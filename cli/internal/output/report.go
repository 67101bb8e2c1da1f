package output

import (
	"fmt"
	"sort"

	"github.com/zhaobenny/ccledger/internal/analysis"
	"github.com/zhaobenny/ccledger/internal/model"
)

// PrintStats renders the flat statistics report.
func PrintStats(stats analysis.UsageStats, opts TableOptions) {
	fmt.Println()
	fmt.Printf("Requests:       %s\n", FormatNumber(int64(stats.TotalRequests)))
	fmt.Printf("Input tokens:   %s\n", FormatNumber(stats.TotalInputTokens))
	fmt.Printf("Output tokens:  %s\n", FormatNumber(stats.TotalOutputTokens))
	fmt.Printf("Total cost:     %s\n", FormatCost(stats.TotalCost, opts.Currency))
	fmt.Printf("Avg cost/req:   %s\n", FormatCost(stats.AvgCostPerRequest, opts.Currency))
	fmt.Printf("Avg tokens/req: %.0f\n", stats.AvgTokensPerRequest)
	if stats.PeakUsageHour != nil {
		fmt.Printf("Peak hour:      %02d:00\n", *stats.PeakUsageHour)
	}
	fmt.Println()

	if len(stats.ModelUsage) == 0 {
		return
	}
	names := make([]string, 0, len(stats.ModelUsage))
	for name := range stats.ModelUsage {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("By model:")
	for _, name := range names {
		ms := stats.ModelUsage[name]
		fmt.Printf("  %-24s %6.1f%%  %8s reqs  %10s\n",
			ShortenModelName(name), ms.UsagePercentage,
			FormatNumber(int64(ms.RequestCount)),
			FormatCost(ms.TotalCost, opts.Currency))
	}
	fmt.Println()
}

// PrintBudget renders a budget evaluation.
func PrintBudget(ba analysis.BudgetAnalysis, opts TableOptions) {
	fmt.Println()
	fmt.Printf("Budget:          %s\n", FormatCost(ba.BudgetLimit, ba.Currency))
	fmt.Printf("Spent:           %s\n", FormatCost(ba.CurrentUsage, ba.Currency))
	if ba.UsagePercentage != nil {
		fmt.Printf("Used:            %.1f%%\n", *ba.UsagePercentage)
	} else {
		fmt.Println("Used:            n/a (no limit configured)")
	}
	fmt.Printf("Daily average:   %s\n", FormatCost(ba.DailyAverageCost, ba.Currency))
	fmt.Printf("Projected month: %s (%d days left)\n",
		FormatCost(ba.ProjectedMonthlyCost, ba.Currency), ba.DaysRemainingInMonth)

	switch {
	case ba.BudgetExceeded:
		fmt.Println("Status:          OVER BUDGET")
	case ba.AlertExceeded:
		fmt.Println("Status:          alert threshold exceeded")
	case ba.WarningExceeded:
		fmt.Println("Status:          warning threshold exceeded")
	default:
		fmt.Println("Status:          on track")
	}
	fmt.Println()
}

// PrintAnalysis renders a full period analysis report.
func PrintAnalysis(results *model.AnalysisResults, opts TableOptions) {
	start, end := results.Period.Range()
	fmt.Println()
	fmt.Printf("Period:         %s to %s (%s)\n", FormatDate(start), FormatDate(end), results.Period.Kind)
	fmt.Printf("Requests:       %s across %d sessions\n",
		FormatNumber(int64(results.RequestCount)), results.SessionCount)
	fmt.Printf("Tokens:         %s\n", FormatNumber(results.TotalTokens))
	fmt.Printf("Total cost:     %s\n", FormatCost(results.TotalCost, opts.Currency))
	if results.Trends.CostGrowthRate != nil {
		fmt.Printf("Cost growth:    %+.1f%%\n", *results.Trends.CostGrowthRate)
	}

	if len(results.CostByModel) > 0 {
		names := make([]string, 0, len(results.CostByModel))
		for name := range results.CostByModel {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println()
		fmt.Println("Cost by model:")
		for _, name := range names {
			fmt.Printf("  %-24s %10s\n", ShortenModelName(name), FormatCost(results.CostByModel[name], opts.Currency))
		}
	}

	if len(results.Insights) > 0 {
		fmt.Println()
		fmt.Println("Insights:")
		for _, insight := range results.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
	fmt.Println()
}
