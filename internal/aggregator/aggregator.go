// Package aggregator folds usage records into sessions, daily summaries,
// and the weekly/monthly rollups built on top of them.
package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/zhaobenny/ccledger/internal/model"
	"github.com/zhaobenny/ccledger/internal/pricing"
)

// Policy controls how an aggregation pass treats invalid records.
type Policy int

const (
	// SkipInvalid drops invalid records and reports them as skipped.
	SkipInvalid Policy = iota
	// FailFast aborts the pass on the first invalid record.
	FailFast
)

// InvalidRecordError identifies a record an aggregation pass could not use.
type InvalidRecordError struct {
	RecordID string
	Err      error
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record %s: %v", e.RecordID, e.Err)
}

func (e *InvalidRecordError) Unwrap() error { return e.Err }

// Skipped reports one record dropped under the SkipInvalid policy.
type Skipped struct {
	RecordID string
	Err      error
}

// Aggregator holds the pricing snapshot and policies shared by one
// aggregation pass. The zero Location means UTC. Budget, when set, is
// attached to every monthly summary the pass produces.
type Aggregator struct {
	Pricing  *pricing.Table
	Policy   Policy
	Location *time.Location
	Budget   *model.BudgetInfo
}

// New creates an aggregator with the given pricing snapshot, the
// SkipInvalid policy, and UTC dates.
func New(table *pricing.Table) *Aggregator {
	return &Aggregator{Pricing: table}
}

func (a *Aggregator) loc() *time.Location {
	if a.Location == nil {
		return time.UTC
	}
	return a.Location
}

// prepare validates r and fills in its cost. A record that already
// carries a positive cost keeps it; otherwise the cost comes from the
// pricing snapshot, and a missing price is an error, never silently zero.
func (a *Aggregator) prepare(r *model.UsageRecord) error {
	if err := validate(r); err != nil {
		return &InvalidRecordError{RecordID: r.ID, Err: err}
	}
	if r.Cost > 0 || a.Pricing == nil {
		return nil
	}
	cost, err := a.Pricing.CostOf(r)
	if err != nil {
		return &InvalidRecordError{RecordID: r.ID, Err: err}
	}
	r.Cost = cost
	return nil
}

func validate(r *model.UsageRecord) error {
	switch {
	case r.Timestamp.IsZero():
		return fmt.Errorf("missing timestamp")
	case r.Model == "":
		return fmt.Errorf("missing model")
	case r.InputTokens < 0 || r.OutputTokens < 0:
		return fmt.Errorf("negative token count")
	case r.Cost < 0:
		return fmt.Errorf("negative cost %.6f", r.Cost)
	}
	return nil
}

// PriceRecords returns a copy of records with every cost populated from
// the pricing snapshot. Under SkipInvalid the unpriceable records are
// dropped and reported; under FailFast the first one aborts the pass.
func (a *Aggregator) PriceRecords(records []model.UsageRecord) ([]model.UsageRecord, []Skipped, error) {
	out := make([]model.UsageRecord, 0, len(records))
	var skipped []Skipped
	for i := range records {
		r := records[i]
		if err := a.prepare(&r); err != nil {
			if a.Policy == FailFast {
				return nil, nil, err
			}
			skipped = append(skipped, Skipped{RecordID: r.ID, Err: err})
			continue
		}
		out = append(out, r)
	}
	return out, skipped, nil
}

// FilterRecords returns the records whose timestamps fall in [start, end].
func FilterRecords(records []model.UsageRecord, start, end time.Time) []model.UsageRecord {
	var out []model.UsageRecord
	for i := range records {
		if records[i].WithinRange(start, end) {
			out = append(out, records[i])
		}
	}
	return out
}

// Daily buckets records by calendar date and returns the summaries in
// date order. Session counts are per-day distinct session ids.
func (a *Aggregator) Daily(records []model.UsageRecord) ([]*model.DailySummary, []Skipped, error) {
	p := newDailyPartial()
	if err := a.foldDaily(p, records); err != nil {
		return nil, nil, err
	}
	return finalizeDaily(p), p.skipped, nil
}

// Sessions groups records by session id and returns the sessions ordered
// by most recent activity. Records with no session id share the
// "unknown" session.
func (a *Aggregator) Sessions(records []model.UsageRecord) ([]*model.Session, []Skipped, error) {
	byID := make(map[string]*model.Session)
	var skipped []Skipped
	for i := range records {
		r := records[i]
		if err := a.prepare(&r); err != nil {
			if a.Policy == FailFast {
				return nil, nil, err
			}
			skipped = append(skipped, Skipped{RecordID: r.ID, Err: err})
			continue
		}

		id := r.SessionID
		if id == "" {
			id = "unknown"
		}
		s, ok := byID[id]
		if !ok {
			s = model.NewSession(id, r.Timestamp, r.UserID)
			byID[id] = s
		}
		if r.Timestamp.Before(s.StartTime) {
			s.StartTime = r.Timestamp
		}
		s.AddRecord(&r)
	}

	out := make([]*model.Session, 0, len(byID))
	for _, s := range byID {
		s.CalculateDuration()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ei, ej := *out[i].EndTime, *out[j].EndTime
		if !ei.Equal(ej) {
			return ei.After(ej)
		}
		return out[i].ID < out[j].ID
	})
	return out, skipped, nil
}

// Weekly rolls daily summaries up into Monday-based weeks, ordered by
// week start.
func (a *Aggregator) Weekly(dailies []*model.DailySummary) []*model.WeeklySummary {
	byWeek := make(map[time.Time]*model.WeeklySummary)
	for _, d := range dailies {
		start := model.WeekStartOf(d.Date)
		w, ok := byWeek[start]
		if !ok {
			w = model.NewWeeklySummary(start)
			byWeek[start] = w
		}
		w.AddDailySummary(d)
	}

	out := make([]*model.WeeklySummary, 0, len(byWeek))
	for _, w := range byWeek {
		w.CalculateAvgDailyCost()
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

// Monthly rolls weekly summaries up into calendar months, ordered
// chronologically. A week that spans a month boundary counts toward the
// month its Monday falls in.
func (a *Aggregator) Monthly(weeklies []*model.WeeklySummary) []*model.MonthlySummary {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*model.MonthlySummary)
	for _, w := range weeklies {
		k := key{year: w.WeekStart.Year(), month: w.WeekStart.Month()}
		m, ok := byMonth[k]
		if !ok {
			m = model.NewMonthlySummary(k.year, k.month)
			byMonth[k] = m
		}
		m.AddWeeklySummary(w)
	}

	out := make([]*model.MonthlySummary, 0, len(byMonth))
	for _, m := range byMonth {
		m.CalculateAvgWeeklyCost()
		m.Budget = a.Budget
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// dailyPartial is the mergeable state of one daily fold. Session ids are
// tracked as sets so counts stay exact when partials from different
// partitions see the same session.
type dailyPartial struct {
	byDate   map[time.Time]*model.DailySummary
	sessions map[time.Time]map[string]struct{}
	skipped  []Skipped
}

func newDailyPartial() *dailyPartial {
	return &dailyPartial{
		byDate:   make(map[time.Time]*model.DailySummary),
		sessions: make(map[time.Time]map[string]struct{}),
	}
}

func (a *Aggregator) foldDaily(p *dailyPartial, records []model.UsageRecord) error {
	for i := range records {
		r := records[i]
		if err := a.prepare(&r); err != nil {
			if a.Policy == FailFast {
				return err
			}
			p.skipped = append(p.skipped, Skipped{RecordID: r.ID, Err: err})
			continue
		}

		date := model.DateOf(r.Timestamp, a.loc())
		d, ok := p.byDate[date]
		if !ok {
			d = model.NewDailySummary(date)
			p.byDate[date] = d
			p.sessions[date] = make(map[string]struct{})
		}
		d.AddRecord(&r, a.loc())
		if r.SessionID != "" {
			p.sessions[date][r.SessionID] = struct{}{}
		}
	}
	return nil
}

// merge folds other into p. The combine is associative and commutative,
// so partition order never affects the result.
func (p *dailyPartial) merge(other *dailyPartial) {
	for date, d := range other.byDate {
		if existing, ok := p.byDate[date]; ok {
			existing.Merge(d)
		} else {
			cp := d.Clone()
			p.byDate[date] = &cp
		}
	}
	for date, set := range other.sessions {
		dst, ok := p.sessions[date]
		if !ok {
			dst = make(map[string]struct{}, len(set))
			p.sessions[date] = dst
		}
		for id := range set {
			dst[id] = struct{}{}
		}
	}
	p.skipped = append(p.skipped, other.skipped...)
}

func finalizeDaily(p *dailyPartial) []*model.DailySummary {
	out := make([]*model.DailySummary, 0, len(p.byDate))
	for date, d := range p.byDate {
		d.SessionCount = len(p.sessions[date])
		d.CalculateAvgCost()
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
