package engine

import "bilancio/internal/core"

// ProjectCategoryTotals re-sums per-category expenses inside the window,
// suitable for a pie view. Categories whose filtered total is zero are
// omitted (unlike Metrics.ByCategory, which always carries the full
// enumeration). Entries follow the fixed category order, not amount order.
func ProjectCategoryTotals(m Metrics, w Window) []CategoryTotal {
	sums := make(map[core.Category]int64)
	for _, cd := range m.categoryDays {
		if w.Contains(cd.date) {
			sums[cd.category] += cd.cents
		}
	}

	var out []CategoryTotal
	for _, c := range core.Categories() {
		if cents := sums[c]; cents > 0 {
			out = append(out, CategoryTotal{Category: c, Total: core.Money{Cents: cents}})
		}
	}
	return out
}

// ProjectDailySeries filters the daily series to the window and fills every
// calendar gap between the first and last included day with zero entries, so
// an area chart gets a continuous time axis. An empty filtered set yields an
// empty series: no synthetic range is invented without data.
func ProjectDailySeries(m Metrics, w Window) []DayTotals {
	byKey := make(map[string]DayTotals)
	var first, last core.Date
	for _, dt := range m.ByDate {
		if !w.Contains(dt.Date) {
			continue
		}
		byKey[dt.Date.Key()] = dt
		if first.IsEmpty() {
			first = dt.Date
		}
		last = dt.Date
	}
	if first.IsEmpty() {
		return nil
	}

	var out []DayTotals
	for d := first; !d.After(last.Time); d = (core.Date{Time: d.AddDate(0, 0, 1)}) {
		if dt, ok := byKey[d.Key()]; ok {
			out = append(out, dt)
		} else {
			out = append(out, DayTotals{Date: d})
		}
	}
	return out
}
