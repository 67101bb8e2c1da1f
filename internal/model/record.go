// Package model defines the core data structures for usage records,
// sessions, time-bucketed summaries, and budgets.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// UsageRecord represents a single normalized usage entry (one model
// invocation). Records are immutable once created; aggregators read them
// but never modify them.
type UsageRecord struct {
	ID           string               `json:"id"`
	Timestamp    time.Time            `json:"timestamp"`
	Model        string               `json:"model"`
	InputTokens  int64                `json:"input_tokens"`
	OutputTokens int64                `json:"output_tokens"`
	Cost         float64              `json:"cost"`
	SessionID    string               `json:"session_id,omitempty"`
	UserID       string               `json:"user_id,omitempty"`
	Metadata     map[string]MetaValue `json:"metadata,omitempty"`
}

// TotalTokens returns input plus output tokens.
func (r *UsageRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// CostPerToken returns the cost divided by total tokens, or 0 for a
// zero-token record.
func (r *UsageRecord) CostPerToken() float64 {
	total := r.TotalTokens()
	if total == 0 {
		return 0
	}
	return r.Cost / float64(total)
}

// OnDate reports whether the record falls on the given calendar date.
func (r *UsageRecord) OnDate(date time.Time, loc *time.Location) bool {
	return DateOf(r.Timestamp, loc).Equal(date)
}

// WithinRange reports whether the record's timestamp is in [start, end].
func (r *UsageRecord) WithinRange(start, end time.Time) bool {
	return !r.Timestamp.Before(start) && !r.Timestamp.After(end)
}

// DateOf truncates t to its calendar date in loc. The result is stored as
// midnight UTC so dates compare with Equal regardless of source zone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the Monday of the week containing date.
func WeekStartOf(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return date.AddDate(0, 0, -offset)
}

// MetaKind discriminates the variants of a MetaValue.
type MetaKind int

const (
	MetaString MetaKind = iota
	MetaNumber
	MetaBool
	MetaMap
)

// MetaValue is a small tagged union for free-form record metadata:
// string, number, bool, or a nested map.
type MetaValue struct {
	Kind MetaKind
	Str  string
	Num  float64
	Bool bool
	Map  map[string]MetaValue
}

// StringValue wraps a string as metadata.
func StringValue(s string) MetaValue { return MetaValue{Kind: MetaString, Str: s} }

// NumberValue wraps a number as metadata.
func NumberValue(n float64) MetaValue { return MetaValue{Kind: MetaNumber, Num: n} }

// BoolValue wraps a bool as metadata.
func BoolValue(b bool) MetaValue { return MetaValue{Kind: MetaBool, Bool: b} }

// MapValue wraps a nested map as metadata.
func MapValue(m map[string]MetaValue) MetaValue { return MetaValue{Kind: MetaMap, Map: m} }

// MarshalJSON encodes the underlying value, not the union wrapper.
func (v MetaValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetaString:
		return json.Marshal(v.Str)
	case MetaNumber:
		return json.Marshal(v.Num)
	case MetaBool:
		return json.Marshal(v.Bool)
	case MetaMap:
		return json.Marshal(v.Map)
	default:
		return nil, fmt.Errorf("model: unknown metadata kind %d", int(v.Kind))
	}
}

// UnmarshalJSON decodes a JSON scalar or object into the matching variant.
func (v *MetaValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mv, err := metaFromAny(raw)
	if err != nil {
		return err
	}
	*v = mv
	return nil
}

func metaFromAny(raw any) (MetaValue, error) {
	switch x := raw.(type) {
	case string:
		return StringValue(x), nil
	case float64:
		return NumberValue(x), nil
	case bool:
		return BoolValue(x), nil
	case map[string]any:
		m := make(map[string]MetaValue, len(x))
		for k, val := range x {
			mv, err := metaFromAny(val)
			if err != nil {
				return MetaValue{}, err
			}
			m[k] = mv
		}
		return MapValue(m), nil
	default:
		return MetaValue{}, fmt.Errorf("model: unsupported metadata value %T", raw)
	}
}
