package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/zhaobenny/ccledger/cli/internal/config"
	"github.com/zhaobenny/ccledger/cli/internal/output"
	"github.com/zhaobenny/ccledger/internal/aggregator"
	"github.com/zhaobenny/ccledger/internal/analysis"
	"github.com/zhaobenny/ccledger/internal/loader"
	"github.com/zhaobenny/ccledger/internal/model"
	"github.com/zhaobenny/ccledger/internal/pricing"
)

const version = "0.1.0"

// splitCommand extracts the subcommand from args, leaving the remaining
// flags for the flag set. The input slice is never mutated.
func splitCommand(args []string) (string, []string) {
	for i, arg := range args {
		switch arg {
		case "daily", "weekly", "monthly", "session", "stats", "analyze", "budget", "config":
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return arg, rest
		}
	}
	return "daily", args
}

func main() {
	command, filteredArgs := splitCommand(os.Args[1:])

	if command == "config" {
		runConfig(filteredArgs)
		return
	}

	fs := flag.NewFlagSet("ccledger", flag.ExitOnError)

	var (
		since     string
		until     string
		timezone  string
		period    string
		file      string
		limit     float64
		jsonOut   bool
		breakdown bool
		compact   bool
		offline   bool
		verbose   bool
		showHelp  bool
		showVer   bool
	)

	fs.StringVar(&since, "since", "", "Start date filter (YYYYMMDD)")
	fs.StringVar(&until, "until", "", "End date filter (YYYYMMDD)")
	fs.StringVar(&timezone, "timezone", "", "Timezone for date grouping (e.g., America/New_York)")
	fs.StringVar(&period, "period", "monthly", "Analysis period: daily, weekly, monthly, custom")
	fs.StringVar(&file, "file", "", "Load usage from a single .jsonl/.json/.csv file")
	fs.Float64Var(&limit, "limit", 0, "Budget limit override")
	fs.BoolVar(&jsonOut, "json", false, "Output as JSON")
	fs.BoolVar(&breakdown, "breakdown", false, "Show per-model breakdown")
	fs.BoolVar(&compact, "compact", false, "Force compact table output")
	fs.BoolVar(&compact, "c", false, "Force compact table output")
	fs.BoolVar(&offline, "offline", false, "Use embedded pricing data (no network)")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&showHelp, "help", false, "Show help")
	fs.BoolVar(&showHelp, "h", false, "Show help")
	fs.BoolVar(&showVer, "version", false, "Show version")
	fs.BoolVar(&showVer, "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ccledger - Claude Code usage ledger

Usage: ccledger [command] [options]

Commands:
  daily     Show daily usage report (default)
  weekly    Show weekly usage report
  monthly   Show monthly usage report
  session   Show usage by session
  stats     Show flat usage statistics
  analyze   Analyze a period with trends and insights
  budget    Evaluate spending against the configured budget
  config    Show or update configuration

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  ccledger                       Show daily usage
  ccledger daily --since 20250101
  ccledger monthly --json
  ccledger stats --file export.csv
  ccledger session --breakdown
  ccledger analyze --period weekly
  ccledger budget --limit 500
  ccledger config --show
`)
	}

	fs.Parse(filteredArgs)

	if showVer {
		fmt.Printf("ccledger version %s\n", version)
		return
	}
	if showHelp {
		fs.Usage()
		return
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if limit > 0 {
		budget, err := model.NewBudgetInfo(limit, cfg.Currency)
		if err != nil {
			logger.Error("invalid budget limit", "err", err)
			os.Exit(1)
		}
		cfg.Budget = budget
	}

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			logger.Error("invalid timezone", "timezone", timezone)
			os.Exit(1)
		}
	}

	start, end, err := parseRange(since, until)
	if err != nil {
		logger.Error("invalid date range", "err", err)
		os.Exit(1)
	}

	records := loadRecords(cfg, file, logger)
	if len(records) == 0 {
		fmt.Println("No usage data found in ~/.claude/projects/")
		return
	}
	if !start.IsZero() || !end.IsZero() {
		if end.IsZero() {
			end = time.Now().AddDate(1, 0, 0)
		}
		records = aggregator.FilterRecords(records, start, end)
		if len(records) == 0 {
			fmt.Println("No usage data found for the specified date range.")
			return
		}
	}

	agg := aggregator.New(loadPricing(cfg, offline, logger))
	agg.Policy = cfg.Policy()
	agg.Location = loc
	agg.Budget = cfg.Budget

	priced, skipped, err := agg.PriceRecords(records)
	if err != nil {
		logger.Error("aggregation aborted", "err", err)
		os.Exit(1)
	}
	reportSkipped(skipped, logger)

	opts := output.TableOptions{ForceCompact: compact, Currency: cfg.Currency}

	switch command {
	case "daily", "weekly", "monthly", "session":
		runReport(command, agg, priced, jsonOut, breakdown, opts, logger)
	case "stats":
		stats := analysis.CalculateUsageStats(priced, loc)
		if jsonOut {
			output.PrintJSON(stats)
			return
		}
		output.PrintStats(stats, opts)
	case "analyze":
		runAnalyze(agg, cfg, priced, period, start, end, jsonOut, opts, logger)
	case "budget":
		runBudget(cfg, priced, jsonOut, opts, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		fs.Usage()
		os.Exit(1)
	}
}

// loadRecords reads every configured data source. An explicit --file
// bypasses the configured sources and is a hard error when unreadable.
func loadRecords(cfg *config.Config, file string, logger *slog.Logger) []model.UsageRecord {
	if file != "" {
		records, err := loader.LoadFile(file)
		if err != nil {
			logger.Error("failed to load file", "path", file, "err", err)
			os.Exit(1)
		}
		return records
	}

	sources := cfg.DataDirs
	if len(sources) == 0 {
		defaults, err := loader.DefaultDataDirs()
		if err != nil {
			logger.Error("cannot resolve home directory", "err", err)
			os.Exit(1)
		}
		sources = defaults
	}

	records, failed := loader.LoadAll(sources)
	for _, path := range failed {
		logger.Warn("skipped unreadable file", "path", path)
	}
	logger.Debug("loaded usage records", "count", len(records), "sources", sources)
	return records
}

// loadPricing picks the pricing source: local file, embedded, or feed.
func loadPricing(cfg *config.Config, offline bool, logger *slog.Logger) *pricing.Table {
	if cfg.PricingFile != "" {
		table, err := pricing.LoadFile(cfg.PricingFile)
		if err != nil {
			logger.Error("failed to load pricing file", "path", cfg.PricingFile, "err", err)
			os.Exit(1)
		}
		return table
	}
	if offline || cfg.Offline {
		return pricing.EmbeddedTable()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return pricing.NewFetcher().Snapshot(ctx)
}

func reportSkipped(skipped []aggregator.Skipped, logger *slog.Logger) {
	if len(skipped) == 0 {
		return
	}
	ids := make([]string, 0, 3)
	for _, s := range skipped {
		if len(ids) == 3 {
			break
		}
		ids = append(ids, s.RecordID)
	}
	logger.Warn("skipped invalid records", "count", len(skipped), "first", ids)
}

func parseRange(since, until string) (time.Time, time.Time, error) {
	var start, end time.Time
	if since != "" {
		t, err := time.Parse("20060102", since)
		if err != nil {
			return start, end, fmt.Errorf("invalid --since date, use YYYYMMDD")
		}
		start = t
	}
	if until != "" {
		t, err := time.Parse("20060102", until)
		if err != nil {
			return start, end, fmt.Errorf("invalid --until date, use YYYYMMDD")
		}
		// Include the entire day
		end = t.Add(24*time.Hour - time.Second)
	}
	return start, end, nil
}

// runReport renders the bucket or session table for one command.
func runReport(command string, agg *aggregator.Aggregator, records []model.UsageRecord, jsonOut, breakdown bool, opts output.TableOptions, logger *slog.Logger) {
	var rows []output.Row
	var title string
	var raw any

	var dailies []*model.DailySummary
	if command != "session" {
		var err error
		dailies, _, err = agg.Daily(records)
		if err != nil {
			logger.Error("aggregation aborted", "err", err)
			os.Exit(1)
		}
	}

	switch command {
	case "daily":
		title = "Date"
		raw = dailies
		for _, d := range dailies {
			rows = append(rows, dailyRow(d))
		}
	case "weekly":
		title = "Week"
		weeks := agg.Weekly(dailies)
		raw = weeks
		for _, w := range weeks {
			rows = append(rows, weeklyRow(w))
		}
	case "monthly":
		title = "Month"
		months := agg.Monthly(agg.Weekly(dailies))
		raw = months
		for _, m := range months {
			rows = append(rows, monthlyRow(m))
		}
	case "session":
		title = "Session"
		sessions, _, err := agg.Sessions(records)
		if err != nil {
			logger.Error("aggregation aborted", "err", err)
			os.Exit(1)
		}
		raw = sessions
		for _, s := range sessions {
			rows = append(rows, output.Row{
				Key:      s.ID,
				Input:    s.TotalInputTokens,
				Output:   s.TotalOutputTokens,
				Requests: s.RequestCount,
				Cost:     s.TotalCost,
			})
		}
	}

	if jsonOut {
		output.PrintJSON(raw)
		return
	}
	if breakdown {
		output.PrintTableWithBreakdown(rows, title, opts)
		return
	}
	output.PrintTable(rows, title, true, opts)
}

func dailyRow(d *model.DailySummary) output.Row {
	row := output.Row{
		Key:      output.FormatDate(d.Date),
		Input:    d.TotalInputTokens,
		Output:   d.TotalOutputTokens,
		Requests: d.RequestCount,
		Cost:     d.TotalCost,
	}
	for name := range d.ModelBreakdown {
		row.Models = append(row.Models, name)
	}
	return row
}

func weeklyRow(w *model.WeeklySummary) output.Row {
	row := output.Row{
		Key:      output.FormatDate(w.WeekStart),
		Input:    w.TotalInputTokens,
		Output:   w.TotalOutputTokens,
		Requests: w.RequestCount,
		Cost:     w.TotalCost,
	}
	for i := range w.DailyBreakdown {
		for name := range w.DailyBreakdown[i].ModelBreakdown {
			row.Models = append(row.Models, name)
		}
	}
	return row
}

func monthlyRow(m *model.MonthlySummary) output.Row {
	row := output.Row{
		Key:      fmt.Sprintf("%04d-%02d", m.Year, m.Month),
		Input:    m.TotalInputTokens,
		Output:   m.TotalOutputTokens,
		Requests: m.RequestCount,
		Cost:     m.TotalCost,
	}
	for i := range m.WeeklyBreakdown {
		for j := range m.WeeklyBreakdown[i].DailyBreakdown {
			for name := range m.WeeklyBreakdown[i].DailyBreakdown[j].ModelBreakdown {
				row.Models = append(row.Models, name)
			}
		}
	}
	return row
}

// runAnalyze produces the period analysis report.
func runAnalyze(agg *aggregator.Aggregator, cfg *config.Config, records []model.UsageRecord, periodName string, start, end time.Time, jsonOut bool, opts output.TableOptions, logger *slog.Logger) {
	now := time.Now()
	var period model.AnalysisPeriod
	switch periodName {
	case "daily":
		period = model.AnalysisPeriod{Kind: model.PeriodDaily, Date: model.DateOf(now, agg.Location)}
	case "weekly":
		period = model.AnalysisPeriod{Kind: model.PeriodWeekly, WeekStart: model.WeekStartOf(model.DateOf(now, agg.Location))}
	case "monthly":
		period = model.AnalysisPeriod{Kind: model.PeriodMonthly, Year: now.Year(), Month: now.Month()}
	case "custom":
		if start.IsZero() || end.IsZero() {
			logger.Error("custom period needs --since and --until")
			os.Exit(1)
		}
		period = model.AnalysisPeriod{Kind: model.PeriodCustom, Start: start, End: end}
	default:
		logger.Error("unknown period", "period", periodName)
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(agg, cfg.Budget)
	results, skipped, err := analyzer.Analyze(records, period, now)
	if err != nil {
		logger.Error("analysis aborted", "err", err)
		os.Exit(1)
	}
	reportSkipped(skipped, logger)

	if jsonOut {
		output.PrintJSON(results)
		return
	}
	output.PrintAnalysis(results, opts)
}

// runBudget evaluates the current month against the configured budget.
func runBudget(cfg *config.Config, records []model.UsageRecord, jsonOut bool, opts output.TableOptions, logger *slog.Logger) {
	if cfg.Budget == nil {
		fmt.Println("No budget configured. Set one with 'ccledger config --limit <amount>' or pass --limit.")
		return
	}

	now := time.Now()
	period := model.AnalysisPeriod{Kind: model.PeriodMonthly, Year: now.Year(), Month: now.Month()}
	start, end := period.Range()
	month := aggregator.FilterRecords(records, start, end)

	ba := analysis.EvaluateBudget(month, cfg.Budget, now)
	if jsonOut {
		output.PrintJSON(ba)
		return
	}
	output.PrintBudget(ba, opts)
}

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	var (
		currency  string
		limit     float64
		onInvalid string
		show      bool
	)
	fs.StringVar(&currency, "currency", "", "Display currency code")
	fs.Float64Var(&limit, "limit", 0, "Monthly budget limit")
	fs.StringVar(&onInvalid, "on-invalid", "", "Invalid record policy: skip or fail")
	fs.BoolVar(&show, "show", false, "Show current configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ccledger config [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  ccledger config --limit 500 --currency USD
  ccledger config --on-invalid fail
  ccledger config --show
`)
	}

	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if show {
		fmt.Printf("Currency:   %s\n", cfg.Currency)
		if cfg.Budget != nil {
			fmt.Printf("Budget:     %.2f %s (warn %.0f%%, alert %.0f%%)\n",
				cfg.Budget.MonthlyLimit, cfg.Budget.Currency,
				cfg.Budget.WarningThreshold, cfg.Budget.AlertThreshold)
		} else {
			fmt.Println("Budget:     not configured")
		}
		if cfg.PricingFile != "" {
			fmt.Printf("Pricing:    %s\n", cfg.PricingFile)
		}
		fmt.Printf("Offline:    %v\n", cfg.Offline)
		fmt.Printf("On invalid: %s\n", cfg.OnInvalid)
		return
	}

	if currency == "" && limit == 0 && onInvalid == "" {
		fs.Usage()
		return
	}

	if currency != "" {
		cfg.Currency = currency
	}
	if limit > 0 {
		budget, err := model.NewBudgetInfo(limit, cfg.Currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Budget = budget
	}
	if onInvalid != "" {
		cfg.OnInvalid = onInvalid
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration saved.")
}
