package engine

import (
	"reflect"
	"testing"

	"bilancio/internal/core"
)

func chartFixture(t *testing.T) Metrics {
	t.Helper()
	txns := []core.Transaction{
		tx("i1", core.Income, "", 5000, core.NewDate(2024, 3, 1)),
		tx("e1", core.Expense, core.Food, 1000, core.NewDate(2024, 3, 1)),
		tx("e2", core.Expense, core.Food, 1000, core.NewDate(2024, 3, 5)),
		tx("e3", core.Expense, core.Housing, 2000, core.NewDate(2024, 4, 2)),
	}
	m, anomalies := Aggregate(txns, core.NewDate(2024, 5, 1))
	if len(anomalies) != 0 {
		t.Fatalf("fixture should be clean, got %v", anomalies)
	}
	return m
}

func TestProjectCategoryTotals(t *testing.T) {
	m := chartFixture(t)

	t.Run("zero window is unfiltered", func(t *testing.T) {
		got := ProjectCategoryTotals(m, Window{})
		want := []CategoryTotal{
			{Category: core.Housing, Total: core.Money{Cents: 2000}},
			{Category: core.Food, Total: core.Money{Cents: 2000}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("window filters and re-sums", func(t *testing.T) {
		got := ProjectCategoryTotals(m, Window{
			From: core.NewDate(2024, 3, 1),
			To:   core.NewDate(2024, 3, 31),
		})
		// Housing's only expense is in April: no zero-valued entry appears.
		want := []CategoryTotal{
			{Category: core.Food, Total: core.Money{Cents: 2000}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("half-open bounds", func(t *testing.T) {
		fromOnly := ProjectCategoryTotals(m, Window{From: core.NewDate(2024, 4, 1)})
		if len(fromOnly) != 1 || fromOnly[0].Category != core.Housing {
			t.Errorf("from-only window: got %+v", fromOnly)
		}
		toOnly := ProjectCategoryTotals(m, Window{To: core.NewDate(2024, 3, 31)})
		if len(toOnly) != 1 || toOnly[0].Category != core.Food {
			t.Errorf("to-only window: got %+v", toOnly)
		}
	})

	t.Run("empty window match", func(t *testing.T) {
		got := ProjectCategoryTotals(m, Window{
			From: core.NewDate(2025, 1, 1),
			To:   core.NewDate(2025, 1, 31),
		})
		if len(got) != 0 {
			t.Errorf("expected no entries, got %+v", got)
		}
	})
}

func TestProjectDailySeries_GapFilling(t *testing.T) {
	// Two expenses on 03-01 and 03-05: the series over that window has five
	// entries, one per calendar day, with zeros for the quiet days.
	txns := []core.Transaction{
		tx("e1", core.Expense, core.Food, 1000, core.NewDate(2024, 3, 1)),
		tx("e2", core.Expense, core.Food, 1000, core.NewDate(2024, 3, 5)),
	}
	m, _ := Aggregate(txns, core.NewDate(2024, 5, 1))

	got := ProjectDailySeries(m, Window{
		From: core.NewDate(2024, 3, 1),
		To:   core.NewDate(2024, 3, 5),
	})

	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for i, entry := range got {
		wantDate := core.NewDate(2024, 3, 1+i)
		if !entry.Date.Equal(wantDate.Time) {
			t.Errorf("entry %d: want %s, got %s", i, wantDate.Key(), entry.Date.Key())
		}
		switch i {
		case 0, 4:
			if entry.Expenses.Cents != 1000 {
				t.Errorf("entry %d: want expenses 1000, got %d", i, entry.Expenses.Cents)
			}
		default:
			if entry.Expenses.Cents != 0 || entry.Incomes.Cents != 0 {
				t.Errorf("filled day %d should be zero, got %+v", i, entry)
			}
		}
	}
}

func TestProjectDailySeries(t *testing.T) {
	m := chartFixture(t)

	t.Run("zero window is unfiltered", func(t *testing.T) {
		got := ProjectDailySeries(m, Window{})
		if len(got) == 0 {
			t.Fatal("expected entries")
		}
		first, last := got[0].Date, got[len(got)-1].Date
		if first.Key() != "2024-03-01" || last.Key() != "2024-04-02" {
			t.Errorf("range %s..%s, want 2024-03-01..2024-04-02", first.Key(), last.Key())
		}
		// One entry per day, strictly ascending, no duplicates.
		for i := 1; i < len(got); i++ {
			if !got[i].Date.Equal(got[i-1].Date.AddDate(0, 0, 1)) {
				t.Fatalf("series is not continuous at index %d", i)
			}
		}
	})

	t.Run("empty filtered set yields empty series", func(t *testing.T) {
		got := ProjectDailySeries(m, Window{
			From: core.NewDate(2025, 1, 1),
			To:   core.NewDate(2025, 1, 31),
		})
		if len(got) != 0 {
			t.Errorf("expected empty series, got %+v", got)
		}
	})

	t.Run("does not mutate the snapshot", func(t *testing.T) {
		before := make([]DayTotals, len(m.ByDate))
		copy(before, m.ByDate)
		_ = ProjectDailySeries(m, Window{})
		_ = ProjectCategoryTotals(m, Window{})
		if !reflect.DeepEqual(before, m.ByDate) {
			t.Error("projection mutated Metrics.ByDate")
		}
	})
}
