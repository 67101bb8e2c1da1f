package model

import "time"

// PeriodKind discriminates the analysis period variants.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodCustom  PeriodKind = "custom"
)

// AnalysisPeriod describes the time window an analysis covers.
type AnalysisPeriod struct {
	Kind      PeriodKind `json:"kind"`
	Date      time.Time  `json:"date,omitempty"`       // daily
	WeekStart time.Time  `json:"week_start,omitempty"` // weekly
	Year      int        `json:"year,omitempty"`       // monthly
	Month     time.Month `json:"month,omitempty"`      // monthly
	Start     time.Time  `json:"start,omitempty"`      // custom
	End       time.Time  `json:"end,omitempty"`        // custom
}

// Range returns the inclusive [start, end] instant range of the period.
func (p AnalysisPeriod) Range() (time.Time, time.Time) {
	switch p.Kind {
	case PeriodDaily:
		return p.Date, p.Date.AddDate(0, 0, 1).Add(-time.Nanosecond)
	case PeriodWeekly:
		return p.WeekStart, p.WeekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case PeriodMonthly:
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	default:
		return p.Start, p.End
	}
}

// TrendPoint is one bucket's contribution to a trend series.
type TrendPoint struct {
	Date     time.Time `json:"date"`
	Cost     float64   `json:"cost"`
	Tokens   int64     `json:"tokens"`
	Requests int       `json:"requests"`
}

// UsageTrends holds period-ordered cost/token series and growth rates.
// Growth rates compare the first bucket to the last one and are nil when
// not computable (zero base or fewer than two buckets).
//
// ModelTrends carries one series per model over the same period sequence;
// periods where a model is absent contribute an explicit zero point, so
// every series has equal length and can be zipped across models.
type UsageTrends struct {
	DailyCosts        []TrendPoint            `json:"daily_costs"`
	DailyTokens       []TrendPoint            `json:"daily_tokens"`
	DailyRequests     []TrendPoint            `json:"daily_requests"`
	ModelTrends       map[string][]TrendPoint `json:"model_trends"`
	CostMovingAverage []float64               `json:"cost_moving_average,omitempty"`
	CostGrowthRate    *float64                `json:"cost_growth_rate,omitempty"`
	TokenGrowthRate   *float64                `json:"token_growth_rate,omitempty"`
}

// AnalysisResults is the top-level output of a period analysis.
type AnalysisResults struct {
	Timestamp           time.Time          `json:"timestamp"`
	Period              AnalysisPeriod     `json:"period"`
	TotalCost           float64            `json:"total_cost"`
	TotalTokens         int64              `json:"total_tokens"`
	RequestCount        int                `json:"request_count"`
	SessionCount        int                `json:"session_count"`
	AvgCostPerRequest   float64            `json:"avg_cost_per_request"`
	AvgTokensPerRequest float64            `json:"avg_tokens_per_request"`
	CostByModel         map[string]float64 `json:"cost_by_model"`
	Trends              UsageTrends        `json:"trends"`
	Insights            []string           `json:"insights"`
}
