package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/ccledger/internal/aggregator"
	"github.com/zhaobenny/ccledger/internal/model"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(id, modelName string, at time.Time, in, out int64, cost float64) model.UsageRecord {
	return model.UsageRecord{
		ID:           id,
		Timestamp:    at,
		Model:        modelName,
		InputTokens:  in,
		OutputTokens: out,
		Cost:         cost,
	}
}

func TestCalculateUsageStats(t *testing.T) {
	records := []model.UsageRecord{
		rec("r1", "claude-3-sonnet", ts("2024-08-01T09:00:00Z"), 1000, 500, 0.015),
		rec("r2", "claude-3-sonnet", ts("2024-08-01T09:30:00Z"), 2000, 1000, 0.030),
		rec("r3", "claude-3-opus", ts("2024-08-02T14:00:00Z"), 1500, 750, 0.045),
	}

	stats := CalculateUsageStats(records, nil)

	assert.Equal(t, 3, stats.TotalRequests)
	assert.EqualValues(t, 4500, stats.TotalInputTokens)
	assert.EqualValues(t, 2250, stats.TotalOutputTokens)
	assert.EqualValues(t, 6750, stats.TotalTokens)
	assert.InDelta(t, 0.09, stats.TotalCost, 1e-9)
	assert.InDelta(t, 2250, stats.AvgTokensPerRequest, 1e-9)
	assert.InDelta(t, 0.03, stats.AvgCostPerRequest, 1e-9)

	require.Len(t, stats.ModelUsage, 2)
	sonnet := stats.ModelUsage["claude-3-sonnet"]
	assert.Equal(t, 2, sonnet.RequestCount)
	assert.InDelta(t, 0.045, sonnet.TotalCost, 1e-9)
	assert.InDelta(t, 100.0*2/3, sonnet.UsagePercentage, 1e-9)

	require.NotNil(t, stats.PeakUsageHour)
	assert.Equal(t, 9, *stats.PeakUsageHour)
	require.NotNil(t, stats.LowestUsageHour)
	assert.Equal(t, 14, *stats.LowestUsageHour)
	assert.Equal(t, 2, stats.HourlyDistribution[9])
	assert.Len(t, stats.DailyDistribution, 2)
}

func TestCalculateUsageStatsEmpty(t *testing.T) {
	stats := CalculateUsageStats(nil, nil)

	assert.Zero(t, stats.TotalRequests)
	assert.Zero(t, stats.AvgCostPerRequest)
	assert.Nil(t, stats.PeakUsageHour)
	assert.Empty(t, stats.ModelUsage)
}

func TestStatsAgreeWithDailyTotals(t *testing.T) {
	var records []model.UsageRecord
	base := ts("2024-08-01T00:00:00Z")
	for i := 0; i < 120; i++ {
		records = append(records, rec(fmt.Sprintf("r%d", i), fmt.Sprintf("model-%d", i%3),
			base.Add(time.Duration(i)*9*time.Hour), int64(100+i), int64(50+i), float64(i)*0.25))
	}

	stats := CalculateUsageStats(records, nil)
	dailies, _, err := aggregator.New(nil).Daily(records)
	require.NoError(t, err)

	var dailyCost float64
	var dailyTokens int64
	dailyRequests := 0
	for _, d := range dailies {
		dailyCost += d.TotalCost
		dailyTokens += d.TotalInputTokens + d.TotalOutputTokens
		dailyRequests += d.RequestCount
	}
	assert.InDelta(t, stats.TotalCost, dailyCost, 1e-6)
	assert.Equal(t, stats.TotalTokens, dailyTokens)
	assert.Equal(t, stats.TotalRequests, dailyRequests)
}

func TestGrowthRate(t *testing.T) {
	rate, err := GrowthRate(100, 150)
	require.NoError(t, err)
	assert.InDelta(t, 50, rate, 1e-9)

	rate, err = GrowthRate(100, 50)
	require.NoError(t, err)
	assert.InDelta(t, -50, rate, 1e-9)

	_, err = GrowthRate(0, 50)
	assert.ErrorIs(t, err, ErrZeroBaseline)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 4}, MovingAverage([]float64{1, 2, 3, 4, 5}, 3))
	// window clamped to data length
	assert.Equal(t, []float64{2}, MovingAverage([]float64{1, 2, 3}, 10))
	assert.Nil(t, MovingAverage(nil, 3))
	assert.Nil(t, MovingAverage([]float64{1}, 0))
}

func TestBuildTrends(t *testing.T) {
	agg := aggregator.New(nil)
	records := []model.UsageRecord{
		rec("r1", "model-a", ts("2024-08-01T10:00:00Z"), 100, 50, 10),
		rec("r2", "model-a", ts("2024-08-02T10:00:00Z"), 200, 100, 15),
		rec("r3", "model-b", ts("2024-08-02T11:00:00Z"), 300, 150, 5),
	}
	dailies, _, err := agg.Daily(records)
	require.NoError(t, err)

	trends := BuildTrends(dailies)

	require.Len(t, trends.DailyCosts, 2)
	assert.InDelta(t, 10, trends.DailyCosts[0].Cost, 1e-9)
	assert.InDelta(t, 20, trends.DailyCosts[1].Cost, 1e-9)
	assert.EqualValues(t, 150, trends.DailyTokens[0].Tokens)
	assert.Equal(t, 1, trends.DailyRequests[0].Requests)
	assert.Equal(t, 2, trends.DailyRequests[1].Requests)

	// every model series spans every period, absent days as zero points
	require.Len(t, trends.ModelTrends, 2)
	b := trends.ModelTrends["model-b"]
	require.Len(t, b, 2)
	assert.InDelta(t, 0, b[0].Cost, 1e-9)
	assert.InDelta(t, 5, b[1].Cost, 1e-9)

	require.NotNil(t, trends.CostGrowthRate)
	assert.InDelta(t, 100, *trends.CostGrowthRate, 1e-9)
	// tokens go 150 -> 750 across the two days
	require.NotNil(t, trends.TokenGrowthRate)
	assert.InDelta(t, 400, *trends.TokenGrowthRate, 1e-9)
}

func TestBuildTrendsZeroBaseGrowth(t *testing.T) {
	agg := aggregator.New(nil)
	records := []model.UsageRecord{
		rec("r1", "model-a", ts("2024-08-01T10:00:00Z"), 0, 0, 0),
		rec("r2", "model-a", ts("2024-08-02T10:00:00Z"), 100, 50, 50),
	}
	dailies, _, err := agg.Daily(records)
	require.NoError(t, err)

	trends := BuildTrends(dailies)
	assert.Nil(t, trends.CostGrowthRate)
	assert.Nil(t, trends.TokenGrowthRate)
}

func TestEvaluateBudget(t *testing.T) {
	budget, err := model.NewBudgetInfo(100, "USD")
	require.NoError(t, err)

	records := []model.UsageRecord{
		rec("r1", "m", ts("2024-08-01T10:00:00Z"), 100, 50, 40),
		rec("r2", "m", ts("2024-08-05T10:00:00Z"), 100, 50, 45),
	}
	now := ts("2024-08-10T12:00:00Z")

	ba := EvaluateBudget(records, budget, now)

	assert.InDelta(t, 85, ba.CurrentUsage, 1e-9)
	require.NotNil(t, ba.UsagePercentage)
	assert.InDelta(t, 85, *ba.UsagePercentage, 1e-6)
	assert.True(t, ba.WarningExceeded)
	assert.False(t, ba.AlertExceeded)
	assert.False(t, ba.BudgetExceeded)
	assert.Equal(t, 5, ba.UsagePeriodDays)
	assert.InDelta(t, 17, ba.DailyAverageCost, 1e-9)
	assert.Equal(t, 21, ba.DaysRemainingInMonth)
	assert.InDelta(t, 85+17*21, ba.ProjectedMonthlyCost, 1e-9)
	assert.Equal(t, "USD", ba.Currency)
}

func TestEvaluateBudgetNoLimit(t *testing.T) {
	budget := &model.BudgetInfo{Currency: "USD", WarningThreshold: 80, AlertThreshold: 95}
	records := []model.UsageRecord{rec("r1", "m", ts("2024-08-01T10:00:00Z"), 100, 50, 500)}

	ba := EvaluateBudget(records, budget, ts("2024-08-10T12:00:00Z"))

	assert.Nil(t, ba.UsagePercentage)
	assert.False(t, ba.BudgetExceeded)
	assert.False(t, ba.WarningExceeded)
	assert.False(t, ba.AlertExceeded)
}

func TestGenerateInsights(t *testing.T) {
	budget, err := model.NewBudgetInfo(100, "USD")
	require.NoError(t, err)

	records := []model.UsageRecord{
		rec("r1", "claude-3-opus", ts("2024-08-01T10:00:00Z"), 1000, 500, 30),
		rec("r2", "claude-3-opus", ts("2024-08-02T10:00:00Z"), 1000, 500, 60),
		rec("r3", "claude-3-sonnet", ts("2024-08-02T11:00:00Z"), 1000, 500, 6),
	}
	stats := CalculateUsageStats(records, nil)
	dailies, _, err := aggregator.New(nil).Daily(records)
	require.NoError(t, err)
	trends := BuildTrends(dailies)

	insights := GenerateInsights(stats, trends, budget)
	require.NotEmpty(t, insights)

	// 96% of a 100 budget trips the alert, which sorts first
	assert.Contains(t, insights[0], "Budget alert")
	joined := fmt.Sprint(insights)
	assert.Contains(t, joined, "claude-3-opus")
	assert.Contains(t, joined, "Costs grew")
}

func TestGenerateInsightsQuietData(t *testing.T) {
	records := []model.UsageRecord{
		rec("r1", "model-a", ts("2024-08-01T10:00:00Z"), 100, 50, 1),
		rec("r2", "model-b", ts("2024-08-01T11:00:00Z"), 100, 50, 1),
	}
	stats := CalculateUsageStats(records, nil)

	insights := GenerateInsights(stats, model.UsageTrends{}, nil)
	assert.Empty(t, insights)
}

func TestAnalyze(t *testing.T) {
	budget, err := model.NewBudgetInfo(1000, "USD")
	require.NoError(t, err)
	analyzer := NewAnalyzer(aggregator.New(nil), budget)

	records := []model.UsageRecord{
		{ID: "r1", Timestamp: ts("2024-08-01T10:00:00Z"), Model: "model-a", InputTokens: 100, OutputTokens: 50, Cost: 10, SessionID: "s1"},
		{ID: "r2", Timestamp: ts("2024-08-02T10:00:00Z"), Model: "model-b", InputTokens: 200, OutputTokens: 100, Cost: 20, SessionID: "s2"},
		// outside the custom period
		{ID: "r3", Timestamp: ts("2024-09-15T10:00:00Z"), Model: "model-a", InputTokens: 100, OutputTokens: 50, Cost: 99},
	}
	period := model.AnalysisPeriod{
		Kind:  model.PeriodCustom,
		Start: ts("2024-08-01T00:00:00Z"),
		End:   ts("2024-08-31T23:59:59Z"),
	}
	now := ts("2024-09-01T00:00:00Z")

	results, skipped, err := analyzer.Analyze(records, period, now)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	assert.Equal(t, now, results.Timestamp)
	assert.InDelta(t, 30, results.TotalCost, 1e-9)
	assert.EqualValues(t, 450, results.TotalTokens)
	assert.Equal(t, 2, results.RequestCount)
	assert.Equal(t, 2, results.SessionCount)
	assert.InDelta(t, 10, results.CostByModel["model-a"], 1e-9)
	assert.InDelta(t, 20, results.CostByModel["model-b"], 1e-9)
	assert.Len(t, results.Trends.DailyCosts, 2)
}

func TestAnalyzeMonthlyPeriodRange(t *testing.T) {
	period := model.AnalysisPeriod{Kind: model.PeriodMonthly, Year: 2024, Month: time.August}
	start, end := period.Range()
	assert.Equal(t, ts("2024-08-01T00:00:00Z"), start)
	assert.Equal(t, time.August, end.Month())
	assert.Equal(t, 31, end.Day())
}
