package engine

import (
	"fmt"
	"sort"

	"bilancio/internal/core"
)

// Aggregate reduces an expanded transaction list to a Metrics snapshot.
// Transactions dated after asOf are left out: the snapshot covers activity up
// to the reference instant only.
//
// Bad records never abort the computation. Malformed transactions (negative
// amount, expense without a category) are skipped and flagged; expenses with
// a category outside the fixed enumeration still count toward the totals and
// the daily series but are kept out of ByCategory, since no limit can track
// them. The result is deterministic regardless of input order.
func Aggregate(txns []core.Transaction, asOf core.Date) (Metrics, []core.Anomaly) {
	m := Metrics{
		AsOf:       asOf,
		ByCategory: make(map[core.Category]core.Money, len(core.Categories())),
	}
	for _, c := range core.Categories() {
		m.ByCategory[c] = core.Money{}
	}

	var anomalies []core.Anomaly
	days := make(map[string]*DayTotals)
	months := make(map[string]struct{})
	catDays := make(map[string]*categoryDay)

	for _, t := range txns {
		if t.Amount.Cents < 0 {
			anomalies = append(anomalies, core.Anomaly{
				Reason:        core.AnomalyMalformedTransaction,
				TransactionID: t.ID,
				Detail:        fmt.Sprintf("negative amount %d", t.Amount.Cents),
			})
			continue
		}
		if !t.Kind.Valid() {
			anomalies = append(anomalies, core.Anomaly{
				Reason:        core.AnomalyMalformedTransaction,
				TransactionID: t.ID,
				Detail:        fmt.Sprintf("unknown kind %q", t.Kind),
			})
			continue
		}
		if t.Kind == core.Expense && t.Category == "" {
			anomalies = append(anomalies, core.Anomaly{
				Reason:        core.AnomalyMalformedTransaction,
				TransactionID: t.ID,
				Detail:        "expense without category",
			})
			continue
		}
		if t.Date.IsEmpty() || t.Date.After(asOf.Time) {
			continue
		}

		day := dayEntry(days, t.Date)
		months[t.Date.MonthKey()] = struct{}{}

		switch t.Kind {
		case core.Income:
			m.TotalIncome.Cents += t.Amount.Cents
			day.Incomes.Cents += t.Amount.Cents
		case core.Expense:
			m.TotalExpense.Cents += t.Amount.Cents
			day.Expenses.Cents += t.Amount.Cents
			if !t.Category.Valid() {
				anomalies = append(anomalies, core.Anomaly{
					Reason:        core.AnomalyUnknownCategory,
					TransactionID: t.ID,
					Detail:        fmt.Sprintf("category %q is not configured", t.Category),
				})
				continue
			}
			m.ByCategory[t.Category] = m.ByCategory[t.Category].Add(t.Amount)
			key := t.Date.Key() + "|" + string(t.Category)
			if cd, ok := catDays[key]; ok {
				cd.cents += t.Amount.Cents
			} else {
				catDays[key] = &categoryDay{date: t.Date, category: t.Category, cents: t.Amount.Cents}
			}
		}
	}

	m.Balance = m.TotalIncome.Sub(m.TotalExpense)

	m.ByDate = make([]DayTotals, 0, len(days))
	for _, d := range days {
		m.ByDate = append(m.ByDate, *d)
	}
	sort.Slice(m.ByDate, func(i, j int) bool {
		return m.ByDate[i].Date.Before(m.ByDate[j].Date.Time)
	})

	m.categoryDays = make([]categoryDay, 0, len(catDays))
	for _, cd := range catDays {
		m.categoryDays = append(m.categoryDays, *cd)
	}
	sort.Slice(m.categoryDays, func(i, j int) bool {
		a, b := m.categoryDays[i], m.categoryDays[j]
		if !a.date.Equal(b.date.Time) {
			return a.date.Before(b.date.Time)
		}
		return a.category < b.category
	})

	// A brand-new account with no history is a valid state: both ratios
	// resolve to zero rather than dividing by it.
	if n := len(months); n > 0 {
		m.MonthlyAverages = MonthlyAverages{
			Income:  float64(m.TotalIncome.Cents) / float64(n),
			Expense: float64(m.TotalExpense.Cents) / float64(n),
			Balance: float64(m.Balance.Cents) / float64(n),
		}
	}
	if m.TotalIncome.Cents > 0 {
		m.SavingsRate = float64(m.Balance.Cents) / float64(m.TotalIncome.Cents) * 100
	}

	return m, anomalies
}

func dayEntry(days map[string]*DayTotals, d core.Date) *DayTotals {
	key := d.Key()
	if entry, ok := days[key]; ok {
		return entry
	}
	entry := &DayTotals{Date: d}
	days[key] = entry
	return entry
}
