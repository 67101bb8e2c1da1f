package pricing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhaobenny/ccledger/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCalculateCost(t *testing.T) {
	info := Info{Model: "claude-3-5-sonnet", InputCostPer1K: 0.003, OutputCostPer1K: 0.015}

	assert.InDelta(t, 0.0105, info.CalculateCost(1000, 500), 1e-9)
	assert.InDelta(t, 0, info.CalculateCost(0, 0), 1e-9)
}

func TestResolvePicksLatestEffectiveEntry(t *testing.T) {
	table := NewTable([]Info{
		entry("claude-3-5-sonnet", 0.003, 0.015, "2024-06-20"),
		entry("claude-3-5-sonnet", 0.004, 0.020, "2024-10-22"),
	})

	p, err := table.Resolve("claude-3-5-sonnet", date("2024-08-01"))
	require.NoError(t, err)
	assert.InDelta(t, 0.003, p.InputCostPer1K, 1e-9)

	p, err = table.Resolve("claude-3-5-sonnet", date("2024-11-01"))
	require.NoError(t, err)
	assert.InDelta(t, 0.004, p.InputCostPer1K, 1e-9)

	// usage predates every entry
	_, err = table.Resolve("claude-3-5-sonnet", date("2024-01-01"))
	assert.ErrorIs(t, err, ErrNoPricing)
}

func TestResolveSkipsInactiveEntries(t *testing.T) {
	retired := entry("claude-3-opus", 0.015, 0.075, "2024-02-29")
	retired.IsActive = false
	table := NewTable([]Info{retired})

	_, err := table.Resolve("claude-3-opus", date("2024-06-01"))
	assert.ErrorIs(t, err, ErrNoPricing)
}

func TestResolveNormalizedNameFallback(t *testing.T) {
	table := NewTable([]Info{entry("claude-3-5-sonnet", 0.003, 0.015, "2024-06-20")})

	p, err := table.Resolve("claude_3_5_sonnet", date("2024-08-01"))
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet", p.Model)

	_, err = table.Resolve("gpt-4o", date("2024-08-01"))
	assert.ErrorIs(t, err, ErrNoPricing)
}

func TestCostOf(t *testing.T) {
	table := NewTable([]Info{entry("claude-3-5-sonnet", 0.003, 0.015, "2024-06-20")})
	r := &model.UsageRecord{
		Timestamp:    date("2024-08-01"),
		Model:        "claude-3-5-sonnet",
		InputTokens:  1000,
		OutputTokens: 500,
	}

	cost, err := table.CostOf(r)
	require.NoError(t, err)
	assert.InDelta(t, 0.0105, cost, 1e-9)
}

func TestEmbeddedTableCoversKnownModels(t *testing.T) {
	table := EmbeddedTable()

	for _, name := range []string{"claude-3-5-sonnet-20240620", "claude-3-opus-20240229", "claude-3-5-haiku-20241022"} {
		_, err := table.Resolve(name, date("2025-01-01"))
		assert.NoError(t, err, name)
	}
}

func TestParseFeed(t *testing.T) {
	feed := []byte(`{
		"claude-3-5-sonnet-20240620": {
			"input_cost_per_token": 0.000003,
			"output_cost_per_token": 0.000015,
			"litellm_provider": "anthropic"
		},
		"gpt-4o": {
			"input_cost_per_token": 0.0000025,
			"output_cost_per_token": 0.00001,
			"litellm_provider": "openai"
		},
		"claude-free-tier": {"litellm_provider": "anthropic"}
	}`)

	entries := ParseFeed(feed)
	require.Len(t, entries, 1)
	assert.Equal(t, "claude-3-5-sonnet-20240620", entries[0].Model)
	assert.InDelta(t, 0.003, entries[0].InputCostPer1K, 1e-9)
	assert.InDelta(t, 0.015, entries[0].OutputCostPer1K, 1e-9)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	data := `[{"model":"custom-model","input_cost_per_1k":0.001,"output_cost_per_1k":0.002,"currency":"USD","effective_date":"2024-01-01T00:00:00Z","is_active":true}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)

	p, err := table.Resolve("custom-model", date("2024-06-01"))
	require.NoError(t, err)
	assert.InDelta(t, 0.001, p.InputCostPer1K, 1e-9)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
