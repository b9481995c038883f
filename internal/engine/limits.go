package engine

import (
	"sort"

	"bilancio/internal/core"
)

// LimitViolation reports one category whose windowed expense total strictly
// exceeds its configured cap.
type LimitViolation struct {
	Category core.Category
	Limit    core.Money
	Total    core.Money
	Overage  core.Money
}

// Report compares windowed per-category expense totals against the configured
// caps. Limits are inherently monthly budgets, so the zero window defaults to
// the calendar month of the snapshot's reference instant. Categories without
// a cap, or within their cap, produce no entry; a nil or empty limits map
// yields an empty report.
//
// Violations are ordered by overage descending, ties in the fixed category
// order.
func Report(m Metrics, limits core.Limits, w Window) []LimitViolation {
	if len(limits) == 0 {
		return nil
	}
	if w.IsZero() {
		w = MonthWindow(m.AsOf)
	}

	totals := make(map[core.Category]core.Money)
	for _, ct := range ProjectCategoryTotals(m, w) {
		totals[ct.Category] = ct.Total
	}

	var out []LimitViolation
	for _, c := range core.Categories() {
		limit, ok := limits[c]
		if !ok {
			continue
		}
		total := totals[c]
		if total.Cents <= limit.Cents {
			continue
		}
		out = append(out, LimitViolation{
			Category: c,
			Limit:    limit,
			Total:    total,
			Overage:  total.Sub(limit),
		})
	}

	// Built in category order, so a stable sort keeps ties in that order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Overage.Cents > out[j].Overage.Cents
	})
	return out
}
