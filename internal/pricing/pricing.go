// Package pricing resolves a record's model and timestamp to an applicable
// price and computes its cost. The table is a read-only snapshot: a cost
// calculation pass never mutates it, and refreshing pricing means building
// a new table for a new pass.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zhaobenny/ccledger/internal/model"
)

// ErrNoPricing reports that no applicable pricing entry exists for a model
// at a given time. Callers must surface it, never default to zero cost.
var ErrNoPricing = errors.New("no applicable pricing")

// Info is one versioned pricing entry for a model. Multiple entries may
// exist per model; the applicable one is the latest active entry whose
// effective date is not after the record timestamp.
type Info struct {
	Model           string    `json:"model"`
	InputCostPer1K  float64   `json:"input_cost_per_1k"`
	OutputCostPer1K float64   `json:"output_cost_per_1k"`
	Currency        string    `json:"currency"`
	EffectiveDate   time.Time `json:"effective_date"`
	IsActive        bool      `json:"is_active"`
}

// CalculateCost prices the given token counts with this entry.
func (p *Info) CalculateCost(inputTokens, outputTokens int64) float64 {
	inputCost := float64(inputTokens) / 1000 * p.InputCostPer1K
	outputCost := float64(outputTokens) / 1000 * p.OutputCostPer1K
	return inputCost + outputCost
}

// ValidForDate reports whether this entry can price usage at the given time.
func (p *Info) ValidForDate(at time.Time) bool {
	return p.IsActive && !p.EffectiveDate.After(at)
}

// Table is an immutable pricing snapshot keyed by model name.
type Table struct {
	byModel map[string][]Info
}

// NewTable builds a snapshot from the given entries. Per-model entries are
// kept sorted by effective date so resolution scans newest-first.
func NewTable(entries []Info) *Table {
	byModel := make(map[string][]Info)
	for _, e := range entries {
		byModel[e.Model] = append(byModel[e.Model], e)
	}
	for _, list := range byModel {
		sort.Slice(list, func(i, j int) bool {
			return list[i].EffectiveDate.Before(list[j].EffectiveDate)
		})
	}
	return &Table{byModel: byModel}
}

// Models returns the model names present in the table, sorted.
func (t *Table) Models() []string {
	names := make([]string, 0, len(t.byModel))
	for name := range t.byModel {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the applicable pricing entry for model at the given
// time: the latest active entry with effective date <= at. Falls back to
// a normalized-name match before giving up with ErrNoPricing.
func (t *Table) Resolve(modelName string, at time.Time) (*Info, error) {
	if p := t.resolveExact(modelName, at); p != nil {
		return p, nil
	}

	normalized := normalizeModelName(modelName)
	for name := range t.byModel {
		if normalizeModelName(name) == normalized {
			if p := t.resolveExact(name, at); p != nil {
				return p, nil
			}
		}
	}

	return nil, fmt.Errorf("%w for model %s at %s", ErrNoPricing, modelName, at.Format(time.RFC3339))
}

func (t *Table) resolveExact(modelName string, at time.Time) *Info {
	list := t.byModel[modelName]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ValidForDate(at) {
			p := list[i]
			return &p
		}
	}
	return nil
}

// CostOf resolves the record's pricing and returns its computed cost.
func (t *Table) CostOf(r *model.UsageRecord) (float64, error) {
	p, err := t.Resolve(r.Model, r.Timestamp)
	if err != nil {
		return 0, err
	}
	return p.CalculateCost(r.InputTokens, r.OutputTokens), nil
}

// normalizeModelName lowers the name and strips separators so aliases like
// claude-3-5-sonnet and claude_3_5_sonnet match.
func normalizeModelName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}
