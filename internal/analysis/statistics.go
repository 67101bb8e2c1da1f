// Package analysis computes flat statistics, trends, budget evaluations,
// and period reports from usage records and their summaries.
package analysis

import (
	"time"

	"github.com/zhaobenny/ccledger/internal/model"
)

// ModelStats holds per-model statistics within one flat aggregation.
type ModelStats struct {
	RequestCount        int     `json:"request_count"`
	TotalTokens         int64   `json:"total_tokens"`
	TotalCost           float64 `json:"total_cost"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	AvgCostPerRequest   float64 `json:"avg_cost_per_request"`
	UsagePercentage     float64 `json:"usage_percentage"`
}

// UsageStats is the flat, non-bucketed aggregate over a record set. Its
// totals agree exactly with the sum of the daily summaries covering the
// same records.
type UsageStats struct {
	TotalRequests           int                   `json:"total_requests"`
	TotalInputTokens        int64                 `json:"total_input_tokens"`
	TotalOutputTokens       int64                 `json:"total_output_tokens"`
	TotalTokens             int64                 `json:"total_tokens"`
	TotalCost               float64               `json:"total_cost"`
	AvgTokensPerRequest     float64               `json:"avg_tokens_per_request"`
	AvgCostPerRequest       float64               `json:"avg_cost_per_request"`
	AvgCostPerToken         float64               `json:"avg_cost_per_token"`
	RequestFrequencyPerHour float64               `json:"request_frequency_per_hour"`
	PeakUsageHour           *int                  `json:"peak_usage_hour,omitempty"`
	LowestUsageHour         *int                  `json:"lowest_usage_hour,omitempty"`
	HourlyDistribution      map[int]int           `json:"hourly_distribution"`
	DailyDistribution       map[time.Time]int     `json:"daily_distribution"`
	ModelUsage              map[string]ModelStats `json:"model_usage"`
}

// CalculateUsageStats folds records once into a flat aggregate. A nil
// location means UTC; it controls hour and date bucketing only.
func CalculateUsageStats(records []model.UsageRecord, loc *time.Location) UsageStats {
	stats := UsageStats{
		HourlyDistribution: make(map[int]int),
		DailyDistribution:  make(map[time.Time]int),
		ModelUsage:         make(map[string]ModelStats),
	}
	if len(records) == 0 {
		return stats
	}
	if loc == nil {
		loc = time.UTC
	}

	var earliest, latest time.Time
	for i := range records {
		r := &records[i]
		stats.TotalRequests++
		stats.TotalInputTokens += r.InputTokens
		stats.TotalOutputTokens += r.OutputTokens
		stats.TotalCost += r.Cost

		stats.HourlyDistribution[r.Timestamp.In(loc).Hour()]++
		stats.DailyDistribution[model.DateOf(r.Timestamp, loc)]++

		ms := stats.ModelUsage[r.Model]
		ms.RequestCount++
		ms.TotalTokens += r.TotalTokens()
		ms.TotalCost += r.Cost
		stats.ModelUsage[r.Model] = ms

		if earliest.IsZero() || r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	stats.TotalTokens = stats.TotalInputTokens + stats.TotalOutputTokens

	n := float64(stats.TotalRequests)
	stats.AvgTokensPerRequest = float64(stats.TotalTokens) / n
	stats.AvgCostPerRequest = stats.TotalCost / n
	if stats.TotalTokens > 0 {
		stats.AvgCostPerToken = stats.TotalCost / float64(stats.TotalTokens)
	}

	for name, ms := range stats.ModelUsage {
		ms.AvgTokensPerRequest = float64(ms.TotalTokens) / float64(ms.RequestCount)
		ms.AvgCostPerRequest = ms.TotalCost / float64(ms.RequestCount)
		ms.UsagePercentage = float64(ms.RequestCount) / n * 100
		stats.ModelUsage[name] = ms
	}

	stats.PeakUsageHour, stats.LowestUsageHour = hourExtremes(stats.HourlyDistribution)

	spanHours := latest.Sub(earliest).Hours()
	if spanHours <= 0 {
		spanHours = 1
	}
	stats.RequestFrequencyPerHour = n / spanHours

	return stats
}

// hourExtremes picks the busiest and quietest hours among those with any
// requests. Ties resolve to the lowest hour so the result is independent
// of map iteration order.
func hourExtremes(dist map[int]int) (peak, lowest *int) {
	for hour := 0; hour < 24; hour++ {
		count, ok := dist[hour]
		if !ok {
			continue
		}
		if peak == nil || count > dist[*peak] {
			h := hour
			peak = &h
		}
		if lowest == nil || count < dist[*lowest] {
			h := hour
			lowest = &h
		}
	}
	return peak, lowest
}
