package analysis

import (
	"time"

	"github.com/zhaobenny/ccledger/internal/aggregator"
	"github.com/zhaobenny/ccledger/internal/model"
)

// Analyzer orchestrates a period analysis: filter records to the period,
// price them, aggregate, and derive trends and insights.
type Analyzer struct {
	Aggregator *aggregator.Aggregator
	Budget     *model.BudgetInfo
}

// NewAnalyzer creates an analyzer over the given aggregator. budget may
// be nil when none is configured.
func NewAnalyzer(agg *aggregator.Aggregator, budget *model.BudgetInfo) *Analyzer {
	return &Analyzer{Aggregator: agg, Budget: budget}
}

// Analyze produces the report for one period. now stamps the result.
// Skipped records are reported alongside; under FailFast the first
// invalid record aborts with its error.
func (a *Analyzer) Analyze(records []model.UsageRecord, period model.AnalysisPeriod, now time.Time) (*model.AnalysisResults, []aggregator.Skipped, error) {
	start, end := period.Range()
	inPeriod := aggregator.FilterRecords(records, start, end)

	priced, skipped, err := a.Aggregator.PriceRecords(inPeriod)
	if err != nil {
		return nil, nil, err
	}

	// priced records are pre-validated, so these folds cannot skip more
	dailies, _, err := a.Aggregator.Daily(priced)
	if err != nil {
		return nil, nil, err
	}
	sessions, _, err := a.Aggregator.Sessions(priced)
	if err != nil {
		return nil, nil, err
	}

	stats := CalculateUsageStats(priced, a.Aggregator.Location)
	trends := BuildTrends(dailies)

	costByModel := make(map[string]float64, len(stats.ModelUsage))
	for name, ms := range stats.ModelUsage {
		costByModel[name] = ms.TotalCost
	}

	results := &model.AnalysisResults{
		Timestamp:           now,
		Period:              period,
		TotalCost:           stats.TotalCost,
		TotalTokens:         stats.TotalTokens,
		RequestCount:        stats.TotalRequests,
		SessionCount:        len(sessions),
		AvgCostPerRequest:   stats.AvgCostPerRequest,
		AvgTokensPerRequest: stats.AvgTokensPerRequest,
		CostByModel:         costByModel,
		Trends:              trends,
		Insights:            GenerateInsights(stats, trends, a.Budget),
	}
	return results, skipped, nil
}
