package analysis

import (
	"errors"
	"sort"

	"github.com/zhaobenny/ccledger/internal/model"
)

// ErrZeroBaseline reports a growth rate requested from a zero base, which
// is undefined rather than infinite.
var ErrZeroBaseline = errors.New("growth not computable from zero baseline")

// Cost moving averages use up to a week of buckets.
const movingAverageWindow = 7

// GrowthRate returns the percentage change from first to last.
func GrowthRate(first, last float64) (float64, error) {
	if first == 0 {
		return 0, ErrZeroBaseline
	}
	return (last - first) / first * 100, nil
}

// MovingAverage returns the simple moving average of data with the given
// window, one value per full window position. Empty input or a zero
// window yields nil; a window longer than the data is clamped.
func MovingAverage(data []float64, window int) []float64 {
	if len(data) == 0 || window <= 0 {
		return nil
	}
	if window > len(data) {
		window = len(data)
	}

	out := make([]float64, 0, len(data)-window+1)
	var sum float64
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// BuildTrends derives the trend series from date-ordered daily summaries.
// Growth rates compare the first bucket to the last and are left nil when
// there are fewer than two buckets or the base is zero. Every per-model
// series spans the full period sequence, with explicit zero points where
// a model is absent, so series across models zip index-for-index.
func BuildTrends(dailies []*model.DailySummary) model.UsageTrends {
	trends := model.UsageTrends{
		ModelTrends: make(map[string][]model.TrendPoint),
	}
	if len(dailies) == 0 {
		return trends
	}

	names := make(map[string]struct{})
	costs := make([]float64, 0, len(dailies))
	for _, d := range dailies {
		tokens := d.TotalInputTokens + d.TotalOutputTokens
		trends.DailyCosts = append(trends.DailyCosts, model.TrendPoint{Date: d.Date, Cost: d.TotalCost})
		trends.DailyTokens = append(trends.DailyTokens, model.TrendPoint{Date: d.Date, Tokens: tokens})
		trends.DailyRequests = append(trends.DailyRequests, model.TrendPoint{Date: d.Date, Requests: d.RequestCount})
		costs = append(costs, d.TotalCost)
		for name := range d.ModelBreakdown {
			names[name] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		series := make([]model.TrendPoint, 0, len(dailies))
		for _, d := range dailies {
			point := model.TrendPoint{Date: d.Date}
			if mu, ok := d.ModelBreakdown[name]; ok {
				point.Cost = mu.TotalCost
				point.Tokens = mu.TotalInputTokens + mu.TotalOutputTokens
				point.Requests = mu.RequestCount
			}
			series = append(series, point)
		}
		trends.ModelTrends[name] = series
	}

	trends.CostMovingAverage = MovingAverage(costs, movingAverageWindow)

	if len(dailies) >= 2 {
		first, last := dailies[0], dailies[len(dailies)-1]
		if rate, err := GrowthRate(first.TotalCost, last.TotalCost); err == nil {
			trends.CostGrowthRate = &rate
		}
		firstTokens := float64(first.TotalInputTokens + first.TotalOutputTokens)
		lastTokens := float64(last.TotalInputTokens + last.TotalOutputTokens)
		if rate, err := GrowthRate(firstTokens, lastTokens); err == nil {
			trends.TokenGrowthRate = &rate
		}
	}

	return trends
}
