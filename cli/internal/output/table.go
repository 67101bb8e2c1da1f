// Package output renders summaries, statistics, and reports as terminal
// tables or JSON. The engine packages never format; everything printable
// passes through here.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	defaultWidth     = 120
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
	Currency     string
}

// terminalWidth returns the usable terminal width, honoring COLUMNS.
func terminalWidth() int {
	if cols := os.Getenv("COLUMNS"); cols != "" {
		var width int
		if _, err := fmt.Sscanf(cols, "%d", &width); err == nil && width > 0 {
			return width
		}
	}
	return probeTerminalWidth()
}

// shouldUseCompact determines if compact mode should be used
func shouldUseCompact(opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return terminalWidth() < compactThreshold
}

// FormatNumber formats a number with thousand separators
func FormatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	str := fmt.Sprintf("%d", n)
	negative := n < 0
	if negative {
		str = str[1:]
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}

	if negative {
		return "-" + result
	}
	return result
}

// FormatCost formats a cost value as currency
func FormatCost(cost float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", cost)
	}
	return fmt.Sprintf("%.2f %s", cost, currency)
}

// ShortenModelName converts full model names to short form
// claude-sonnet-4-5-20250929 -> sonnet-4-5
// claude-opus-4-20250514 -> opus-4
func ShortenModelName(name string) string {
	re := regexp.MustCompile(`^claude-(\w+)-([\d-]+)-(\d{8})$`)
	if matches := re.FindStringSubmatch(name); matches != nil {
		return fmt.Sprintf("%s-%s", matches[1], matches[2])
	}

	re2 := regexp.MustCompile(`^claude-(\w+)-([\d-]+)$`)
	if matches := re2.FindStringSubmatch(name); matches != nil {
		return fmt.Sprintf("%s-%s", matches[1], matches[2])
	}

	re3 := regexp.MustCompile(`^anthropic/claude-(\w+)-([\d.]+)$`)
	if matches := re3.FindStringSubmatch(name); matches != nil {
		return fmt.Sprintf("%s-%s", matches[1], matches[2])
	}

	return name
}

// shortenSessionID truncates session UUID to first 8 chars
func shortenSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Row is one rendered line of a report table. The CLI builds rows from
// whatever summary level it aggregated.
type Row struct {
	Key      string
	Input    int64
	Output   int64
	Requests int
	Cost     float64
	Models   []string
}

// PrintTable prints report rows as a formatted table
func PrintTable(rows []Row, title string, showTotal bool, opts TableOptions) {
	if len(rows) == 0 {
		fmt.Println("No usage data found.")
		return
	}

	compact := shouldUseCompact(opts)
	isSessionView := title == "Session"

	keyWidth := len(title)
	for _, r := range rows {
		key := r.Key
		if isSessionView && compact {
			key = shortenSessionID(key)
		}
		if len(key) > keyWidth {
			keyWidth = len(key)
		}
	}
	if keyWidth < 10 {
		keyWidth = 10
	}
	if compact && keyWidth > 12 {
		keyWidth = 12
	}

	fmt.Println()

	var total Row
	for _, r := range rows {
		total.Input += r.Input
		total.Output += r.Output
		total.Requests += r.Requests
		total.Cost += r.Cost
	}

	if compact {
		rule := strings.Repeat("─", keyWidth+2+12+2+12+2+10)
		fmt.Printf("%-*s  %12s  %12s  %10s\n", keyWidth, title, "Input", "Output", "Cost")
		fmt.Println(rule)

		for _, r := range rows {
			key := r.Key
			if isSessionView {
				key = shortenSessionID(key)
			}
			if len(key) > keyWidth {
				key = key[:keyWidth]
			}
			fmt.Printf("%-*s  %12s  %12s  %10s\n",
				keyWidth, key,
				FormatNumber(r.Input),
				FormatNumber(r.Output),
				FormatCost(r.Cost, opts.Currency))
		}

		if showTotal && len(rows) > 1 {
			fmt.Println(rule)
			fmt.Printf("%-*s  %12s  %12s  %10s\n",
				keyWidth, "Total",
				FormatNumber(total.Input),
				FormatNumber(total.Output),
				FormatCost(total.Cost, opts.Currency))
		}

		fmt.Println()
		fmt.Println("(Compact mode - expand terminal for full view)")
		return
	}

	rule := strings.Repeat("─", keyWidth+2+12+2+12+2+10+2+10)
	fmt.Printf("%-*s  %12s  %12s  %10s  %10s\n", keyWidth, title, "Input", "Output", "Requests", "Cost")
	fmt.Println(rule)

	for _, r := range rows {
		key := r.Key
		if isSessionView {
			key = shortenSessionID(key)
		}
		fmt.Printf("%-*s  %12s  %12s  %10s  %10s\n",
			keyWidth, key,
			FormatNumber(r.Input),
			FormatNumber(r.Output),
			FormatNumber(int64(r.Requests)),
			FormatCost(r.Cost, opts.Currency))
	}

	if showTotal && len(rows) > 1 {
		fmt.Println(rule)
		fmt.Printf("%-*s  %12s  %12s  %10s  %10s\n",
			keyWidth, "Total",
			FormatNumber(total.Input),
			FormatNumber(total.Output),
			FormatNumber(int64(total.Requests)),
			FormatCost(total.Cost, opts.Currency))
	}

	fmt.Println()
}

// PrintTableWithBreakdown prints the table plus the models it covers
func PrintTableWithBreakdown(rows []Row, title string, opts TableOptions) {
	PrintTable(rows, title, true, opts)

	modelsMap := make(map[string]bool)
	for _, r := range rows {
		for _, m := range r.Models {
			modelsMap[ShortenModelName(m)] = true
		}
	}
	if len(modelsMap) == 0 {
		return
	}

	var models []string
	for m := range modelsMap {
		models = append(models, m)
	}
	sort.Strings(models)

	fmt.Println("Models used:")
	for _, m := range models {
		fmt.Printf("  - %s\n", m)
	}
	fmt.Println()
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatDate renders a bucket date for table keys
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
