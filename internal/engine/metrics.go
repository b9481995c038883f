// Package engine implements the financial metrics aggregation pipeline:
// recurrence expansion, aggregation into a Metrics snapshot, chart-ready
// projections, and budget-limit reporting.
//
// Every function in this package is pure: inputs are never mutated, results
// are freshly allocated, and the reference instant (asOf) is an explicit
// parameter rather than an ambient clock. This makes the engine safe to call
// concurrently for different owners and deterministic in tests.
package engine

import (
	"time"

	"bilancio/internal/core"
)

type (
	// DayTotals is one day of summed income and expense amounts.
	DayTotals struct {
		Date     core.Date
		Incomes  core.Money
		Expenses core.Money
	}

	// CategoryTotal is a per-category expense sum for a reporting window.
	CategoryTotal struct {
		Category core.Category
		Total    core.Money
	}

	// MonthlyAverages holds per-active-month averages in fractional cents.
	MonthlyAverages struct {
		Income  float64
		Expense float64
		Balance float64
	}

	// categoryDay is a per-day per-category expense total. Metrics keeps
	// these so windowed projections can re-sum without the original
	// transactions.
	categoryDay struct {
		date     core.Date
		category core.Category
		cents    int64
	}

	// Metrics is the derived analytics snapshot for one owner. It is a value
	// object: recomputed on every aggregation call, it holds no reference to
	// the transactions that produced it and is read-only once returned.
	Metrics struct {
		// AsOf is the reference instant the snapshot was computed for. The
		// limits reporter uses its calendar month as the default window.
		AsOf core.Date

		// Balance is the signed total: income minus expense. The two totals
		// are the same sums, unsigned.
		Balance      core.Money
		TotalIncome  core.Money
		TotalExpense core.Money

		MonthlyAverages MonthlyAverages

		// SavingsRate is a percentage of income kept, unclamped. Zero income
		// resolves to 0, never NaN.
		SavingsRate float64

		// ByCategory contains every configured category, zero totals
		// included, so consumers need no existence checks.
		ByCategory map[core.Category]core.Money

		// ByDate has one entry per distinct day with at least one
		// transaction, ascending.
		ByDate []DayTotals

		categoryDays []categoryDay
	}

	// Window is an optional date range filter, inclusive on both bounds at
	// day granularity. A zero bound leaves that side open; the zero Window
	// means unfiltered.
	Window struct {
		From core.Date
		To   core.Date
	}
)

// IsZero reports whether no bound is set.
func (w Window) IsZero() bool {
	return w.From.IsEmpty() && w.To.IsEmpty()
}

// Contains reports whether a day falls inside the window.
func (w Window) Contains(d core.Date) bool {
	if !w.From.IsEmpty() && d.Before(w.From.Time) {
		return false
	}
	if !w.To.IsEmpty() && d.After(w.To.Time) {
		return false
	}
	return true
}

// MonthWindow returns the calendar month of d as a window.
func MonthWindow(d core.Date) Window {
	first := core.NewDate(d.Year(), d.Month(), 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}
	return Window{From: first, To: last}
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
