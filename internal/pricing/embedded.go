package pricing

import "time"

// entry builds an active USD pricing entry effective from the given date.
func entry(model string, inputPer1K, outputPer1K float64, effective string) Info {
	date, _ := time.Parse("2006-01-02", effective)
	return Info{
		Model:           model,
		InputCostPer1K:  inputPer1K,
		OutputCostPer1K: outputPer1K,
		Currency:        "USD",
		EffectiveDate:   date,
		IsActive:        true,
	}
}

// EmbeddedEntries returns the fallback pricing data shipped with the
// binary, used when no pricing feed or file is available. Effective dates
// follow the model release dates so snapshot versioning still applies.
func EmbeddedEntries() []Info {
	return []Info{
		// Opus
		entry("claude-3-opus-20240229", 0.015, 0.075, "2024-02-29"),
		entry("claude-opus-4-20250514", 0.015, 0.075, "2025-05-14"),
		entry("claude-opus-4-1-20250805", 0.015, 0.075, "2025-08-05"),
		entry("claude-opus-4-1", 0.015, 0.075, "2025-08-05"),
		// Sonnet
		entry("claude-3-5-sonnet-20240620", 0.003, 0.015, "2024-06-20"),
		entry("claude-3-5-sonnet-20241022", 0.003, 0.015, "2024-10-22"),
		entry("claude-3-7-sonnet-20250219", 0.003, 0.015, "2025-02-19"),
		entry("claude-sonnet-4-20250514", 0.003, 0.015, "2025-05-14"),
		entry("claude-sonnet-4-5-20250929", 0.003, 0.015, "2025-09-29"),
		entry("claude-sonnet-4-5", 0.003, 0.015, "2025-09-29"),
		// Haiku
		entry("claude-3-haiku-20240307", 0.00025, 0.00125, "2024-03-07"),
		entry("claude-3-5-haiku-20241022", 0.0008, 0.004, "2024-10-22"),
		entry("claude-haiku-4-5-20251001", 0.001, 0.005, "2025-10-01"),
		entry("claude-haiku-4-5", 0.001, 0.005, "2025-10-01"),
	}
}

// EmbeddedTable returns a snapshot built from the embedded entries.
func EmbeddedTable() *Table {
	return NewTable(EmbeddedEntries())
}
