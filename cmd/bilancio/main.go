package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	var (
		owner   = flag.String("owner", "", "owner to report on (required)")
		asOfArg = flag.String("as-of", "", "reference day, YYYY-MM-DD (default today)")
		fromArg = flag.String("from", "", "window start, YYYY-MM-DD (optional)")
		toArg   = flag.String("to", "", "window end, YYYY-MM-DD (optional)")
	)
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: bilancio -owner <name> [-as-of YYYY-MM-DD] [-from YYYY-MM-DD] [-to YYYY-MM-DD]")
		os.Exit(2)
	}

	asOf, window, err := parseDates(*asOfArg, *fromArg, *toArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.Create(backend.Config{
		Type:          backend.Type(cfg.DataBackend),
		SQLiteDBPath:  cfg.SQLiteDBPath,
		DataDirectory: cfg.DataDirectory,
		LimitsFile:    cfg.LimitsFile,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer result.Cleanup()

	svc := services.NewMetricsService(result.Store, nil, nil)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx, *owner, asOf)
	if err != nil {
		logger.Error("Failed to compute metrics", "error", err, "owner", *owner)
		os.Exit(1)
	}
	report, err := svc.LimitsReport(ctx, *owner, asOf, window)
	if err != nil {
		logger.Error("Failed to compute limits report", "error", err, "owner", *owner)
		os.Exit(1)
	}

	printReport(os.Stdout, *owner, asOf, snap, engine.ProjectCategoryTotals(snap.Metrics, window), report)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func parseDates(asOfArg, fromArg, toArg string) (core.Date, engine.Window, error) {
	asOf := core.DateOf(nowUTC())
	if asOfArg != "" {
		d, err := core.ParseDay(asOfArg)
		if err != nil {
			return core.Date{}, engine.Window{}, fmt.Errorf("invalid -as-of %q", asOfArg)
		}
		asOf = d
	}

	var window engine.Window
	if fromArg != "" {
		d, err := core.ParseDay(fromArg)
		if err != nil {
			return core.Date{}, engine.Window{}, fmt.Errorf("invalid -from %q", fromArg)
		}
		window.From = d
	}
	if toArg != "" {
		d, err := core.ParseDay(toArg)
		if err != nil {
			return core.Date{}, engine.Window{}, fmt.Errorf("invalid -to %q", toArg)
		}
		window.To = d
	}
	return asOf, window, nil
}

func printReport(out *os.File, owner string, asOf core.Date, snap services.Snapshot, totals []engine.CategoryTotal, violations []engine.LimitViolation) {
	m := snap.Metrics

	fmt.Fprintf(out, "Metrics for %s as of %s\n\n", owner, asOf.Key())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Balance\t%.2f\n", m.Balance.Units())
	fmt.Fprintf(w, "Total income\t%.2f\n", m.TotalIncome.Units())
	fmt.Fprintf(w, "Total expense\t%.2f\n", m.TotalExpense.Units())
	fmt.Fprintf(w, "Monthly avg income\t%.2f\n", m.MonthlyAverages.Income/100)
	fmt.Fprintf(w, "Monthly avg expense\t%.2f\n", m.MonthlyAverages.Expense/100)
	fmt.Fprintf(w, "Monthly avg balance\t%.2f\n", m.MonthlyAverages.Balance/100)
	fmt.Fprintf(w, "Savings rate\t%.1f%%\n", m.SavingsRate)
	w.Flush()

	if len(totals) > 0 {
		fmt.Fprintf(out, "\nExpenses by category\n")
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, ct := range totals {
			fmt.Fprintf(w, "%s\t%.2f\n", ct.Category, ct.Total.Units())
		}
		w.Flush()
	}

	if len(violations) > 0 {
		fmt.Fprintf(out, "\nBudget limit violations\n")
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "category\tlimit\tspent\tover\n")
		for _, v := range violations {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", v.Category, v.Limit.Units(), v.Total.Units(), v.Overage.Units())
		}
		w.Flush()
	}

	if len(snap.Anomalies) > 0 {
		fmt.Fprintf(out, "\nWarnings\n")
		for _, a := range snap.Anomalies {
			fmt.Fprintf(out, "  %s\n", a)
		}
	}
}
