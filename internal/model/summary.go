package model

import "time"

// ModelUsage holds running totals for a single model within one
// aggregation scope.
type ModelUsage struct {
	Model             string  `json:"model"`
	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	RequestCount      int     `json:"request_count"`
	AvgCostPerRequest float64 `json:"avg_cost_per_request"`
}

// NewModelUsage creates an empty usage entry for a model.
func NewModelUsage(model string) *ModelUsage {
	return &ModelUsage{Model: model}
}

// AddRecord folds a record into the model totals.
func (m *ModelUsage) AddRecord(r *UsageRecord) {
	m.TotalCost += r.Cost
	m.TotalInputTokens += r.InputTokens
	m.TotalOutputTokens += r.OutputTokens
	m.RequestCount++
}

// CalculateAvgCost sets AvgCostPerRequest from the current totals,
// 0 when there are no requests.
func (m *ModelUsage) CalculateAvgCost() {
	if m.RequestCount == 0 {
		m.AvgCostPerRequest = 0
		return
	}
	m.AvgCostPerRequest = m.TotalCost / float64(m.RequestCount)
}

// Merge adds another partial's totals for the same model into m.
func (m *ModelUsage) Merge(other *ModelUsage) {
	m.TotalCost += other.TotalCost
	m.TotalInputTokens += other.TotalInputTokens
	m.TotalOutputTokens += other.TotalOutputTokens
	m.RequestCount += other.RequestCount
}

// DailySummary aggregates all usage for one calendar date.
type DailySummary struct {
	Date              time.Time              `json:"date"`
	TotalCost         float64                `json:"total_cost"`
	TotalInputTokens  int64                  `json:"total_input_tokens"`
	TotalOutputTokens int64                  `json:"total_output_tokens"`
	RequestCount      int                    `json:"request_count"`
	SessionCount      int                    `json:"session_count"`
	MostUsedModel     string                 `json:"most_used_model,omitempty"`
	PeakHour          *int                   `json:"peak_hour,omitempty"`
	AvgCostPerRequest float64                `json:"avg_cost_per_request"`
	HourCounts        [24]int                `json:"hour_counts"`
	ModelBreakdown    map[string]*ModelUsage `json:"model_breakdown"`
}

// NewDailySummary creates an empty summary for the given date.
func NewDailySummary(date time.Time) *DailySummary {
	return &DailySummary{
		Date:           date,
		ModelBreakdown: make(map[string]*ModelUsage),
	}
}

// AddRecord folds one record into the summary. The caller owns
// deduplication: adding the same record twice double-counts it.
// MostUsedModel and PeakHour are recomputed after every insertion.
func (d *DailySummary) AddRecord(r *UsageRecord, loc *time.Location) {
	d.TotalCost += r.Cost
	d.TotalInputTokens += r.InputTokens
	d.TotalOutputTokens += r.OutputTokens
	d.RequestCount++

	if loc == nil {
		loc = time.UTC
	}
	d.HourCounts[r.Timestamp.In(loc).Hour()]++

	mu, ok := d.ModelBreakdown[r.Model]
	if !ok {
		mu = NewModelUsage(r.Model)
		d.ModelBreakdown[r.Model] = mu
	}
	mu.AddRecord(r)

	d.recomputePicks()
}

// CalculateAvgCost sets AvgCostPerRequest from the current totals. It is
// an explicit step, not run automatically on insertion.
func (d *DailySummary) CalculateAvgCost() {
	if d.RequestCount == 0 {
		d.AvgCostPerRequest = 0
		return
	}
	d.AvgCostPerRequest = d.TotalCost / float64(d.RequestCount)
}

// recomputePicks rederives MostUsedModel and PeakHour. Ties resolve by a
// total order (lexicographically smallest model name, lowest hour) so the
// result never depends on insertion or partition order.
func (d *DailySummary) recomputePicks() {
	d.MostUsedModel = ""
	best := 0
	for name, mu := range d.ModelBreakdown {
		if mu.RequestCount > best || (mu.RequestCount == best && best > 0 && name < d.MostUsedModel) {
			best = mu.RequestCount
			d.MostUsedModel = name
		}
	}

	d.PeakHour = nil
	bestCount := 0
	for hour, count := range d.HourCounts {
		if count > bestCount {
			bestCount = count
			h := hour
			d.PeakHour = &h
		}
	}
}

// Merge combines another partial summary for the same date into d and
// rederives the picks. The combine is associative and commutative.
func (d *DailySummary) Merge(other *DailySummary) {
	d.TotalCost += other.TotalCost
	d.TotalInputTokens += other.TotalInputTokens
	d.TotalOutputTokens += other.TotalOutputTokens
	d.RequestCount += other.RequestCount
	d.SessionCount += other.SessionCount
	for hour, count := range other.HourCounts {
		d.HourCounts[hour] += count
	}
	for name, mu := range other.ModelBreakdown {
		if existing, ok := d.ModelBreakdown[name]; ok {
			existing.Merge(mu)
		} else {
			cp := *mu
			d.ModelBreakdown[name] = &cp
		}
	}
	d.recomputePicks()
}

// Clone returns a deep copy, so rollups never alias the child's breakdown.
func (d *DailySummary) Clone() DailySummary {
	cp := *d
	if d.PeakHour != nil {
		h := *d.PeakHour
		cp.PeakHour = &h
	}
	cp.ModelBreakdown = make(map[string]*ModelUsage, len(d.ModelBreakdown))
	for name, mu := range d.ModelBreakdown {
		u := *mu
		cp.ModelBreakdown[name] = &u
	}
	return cp
}

// WeeklySummary aggregates the daily summaries of one Monday-based week.
type WeeklySummary struct {
	WeekStart         time.Time      `json:"week_start"`
	WeekEnd           time.Time      `json:"week_end"`
	TotalCost         float64        `json:"total_cost"`
	TotalInputTokens  int64          `json:"total_input_tokens"`
	TotalOutputTokens int64          `json:"total_output_tokens"`
	RequestCount      int            `json:"request_count"`
	SessionCount      int            `json:"session_count"`
	DailyBreakdown    []DailySummary `json:"daily_breakdown"`
	AvgDailyCost      float64        `json:"avg_daily_cost"`
	MostExpensiveDay  *time.Time     `json:"most_expensive_day,omitempty"`
}

// NewWeeklySummary creates an empty summary for the week starting at
// weekStart; the week end is six days later.
func NewWeeklySummary(weekStart time.Time) *WeeklySummary {
	return &WeeklySummary{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 6),
	}
}

// AddDailySummary appends a copy of daily and recomputes every total from
// the full breakdown list. The recompute-from-children strategy keeps the
// totals correct regardless of insertion order or later child mutation.
func (w *WeeklySummary) AddDailySummary(daily *DailySummary) {
	w.DailyBreakdown = append(w.DailyBreakdown, daily.Clone())
	w.recomputeTotals()
}

func (w *WeeklySummary) recomputeTotals() {
	w.TotalCost = 0
	w.TotalInputTokens = 0
	w.TotalOutputTokens = 0
	w.RequestCount = 0
	w.SessionCount = 0
	for i := range w.DailyBreakdown {
		d := &w.DailyBreakdown[i]
		w.TotalCost += d.TotalCost
		w.TotalInputTokens += d.TotalInputTokens
		w.TotalOutputTokens += d.TotalOutputTokens
		w.RequestCount += d.RequestCount
		w.SessionCount += d.SessionCount
	}
}

// CalculateAvgDailyCost sets AvgDailyCost over the days that have data and
// selects the most expensive day, earliest date winning ties.
func (w *WeeklySummary) CalculateAvgDailyCost() {
	if len(w.DailyBreakdown) == 0 {
		w.AvgDailyCost = 0
		w.MostExpensiveDay = nil
		return
	}
	w.AvgDailyCost = w.TotalCost / float64(len(w.DailyBreakdown))

	var best *DailySummary
	for i := range w.DailyBreakdown {
		d := &w.DailyBreakdown[i]
		if best == nil || d.TotalCost > best.TotalCost ||
			(d.TotalCost == best.TotalCost && d.Date.Before(best.Date)) {
			best = d
		}
	}
	day := best.Date
	w.MostExpensiveDay = &day
}

// Clone returns a deep copy of the weekly summary.
func (w *WeeklySummary) Clone() WeeklySummary {
	cp := *w
	if w.MostExpensiveDay != nil {
		d := *w.MostExpensiveDay
		cp.MostExpensiveDay = &d
	}
	cp.DailyBreakdown = make([]DailySummary, len(w.DailyBreakdown))
	for i := range w.DailyBreakdown {
		cp.DailyBreakdown[i] = w.DailyBreakdown[i].Clone()
	}
	return cp
}

// MonthlySummary aggregates the weekly summaries of one calendar month.
type MonthlySummary struct {
	Year              int             `json:"year"`
	Month             time.Month      `json:"month"`
	TotalCost         float64         `json:"total_cost"`
	TotalInputTokens  int64           `json:"total_input_tokens"`
	TotalOutputTokens int64           `json:"total_output_tokens"`
	RequestCount      int             `json:"request_count"`
	SessionCount      int             `json:"session_count"`
	WeeklyBreakdown   []WeeklySummary `json:"weekly_breakdown"`
	AvgWeeklyCost     float64         `json:"avg_weekly_cost"`
	MostExpensiveWeek *time.Time      `json:"most_expensive_week,omitempty"`
	Budget            *BudgetInfo     `json:"budget,omitempty"`
}

// NewMonthlySummary creates an empty summary for the given month.
func NewMonthlySummary(year int, month time.Month) *MonthlySummary {
	return &MonthlySummary{Year: year, Month: month}
}

// AddWeeklySummary appends a copy of weekly and recomputes totals from the
// full breakdown, mirroring WeeklySummary.AddDailySummary.
func (m *MonthlySummary) AddWeeklySummary(weekly *WeeklySummary) {
	m.WeeklyBreakdown = append(m.WeeklyBreakdown, weekly.Clone())
	m.recomputeTotals()
}

func (m *MonthlySummary) recomputeTotals() {
	m.TotalCost = 0
	m.TotalInputTokens = 0
	m.TotalOutputTokens = 0
	m.RequestCount = 0
	m.SessionCount = 0
	for i := range m.WeeklyBreakdown {
		w := &m.WeeklyBreakdown[i]
		m.TotalCost += w.TotalCost
		m.TotalInputTokens += w.TotalInputTokens
		m.TotalOutputTokens += w.TotalOutputTokens
		m.RequestCount += w.RequestCount
		m.SessionCount += w.SessionCount
	}
}

// CalculateAvgWeeklyCost sets AvgWeeklyCost over the contained weeks and
// selects the most expensive week, earliest start winning ties.
func (m *MonthlySummary) CalculateAvgWeeklyCost() {
	if len(m.WeeklyBreakdown) == 0 {
		m.AvgWeeklyCost = 0
		m.MostExpensiveWeek = nil
		return
	}
	m.AvgWeeklyCost = m.TotalCost / float64(len(m.WeeklyBreakdown))

	var best *WeeklySummary
	for i := range m.WeeklyBreakdown {
		w := &m.WeeklyBreakdown[i]
		if best == nil || w.TotalCost > best.TotalCost ||
			(w.TotalCost == best.TotalCost && w.WeekStart.Before(best.WeekStart)) {
			best = w
		}
	}
	week := best.WeekStart
	m.MostExpensiveWeek = &week
}
