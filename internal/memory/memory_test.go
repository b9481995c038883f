package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bilancio/internal/core"
)

func TestAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.AppendTransaction(ctx, core.Transaction{
		Owner: "alice", Kind: core.Expense, Category: core.Food,
		Amount: core.Money{Cents: 1250}, Date: core.NewDate(2024, 3, 1),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id == "" {
		t.Fatal("append should assign an id")
	}

	got, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != id {
		t.Fatalf("expected the appended transaction, got %+v", got)
	}

	other, err := s.ListTransactions(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("owner scoping broken: %+v", other)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.AppendTransaction(context.Background(), core.Transaction{
		Owner: "alice", Kind: core.Expense, /* no category */
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 3, 1),
	})
	if !errors.Is(err, core.ErrMissingCategory) {
		t.Fatalf("want ErrMissingCategory, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.AppendTransaction(ctx, core.Transaction{
		Owner: "alice", Kind: core.Income,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 3, 1),
	})

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, id); err == nil {
		t.Fatal("double delete should fail")
	}
	got, _ := s.ListTransactions(ctx, "alice")
	if len(got) != 0 {
		t.Errorf("transaction still listed after delete: %+v", got)
	}
}

func TestLimitsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	got, err := s.GetLimits(ctx, "alice")
	if err != nil || got != nil {
		t.Fatalf("unconfigured owner should get nil limits, got %v (%v)", got, err)
	}

	limits := core.Limits{core.Food: {Cents: 50000}}
	if err := s.SetLimits(ctx, "alice", limits); err != nil {
		t.Fatalf("set limits: %v", err)
	}
	got, err = s.GetLimits(ctx, "alice")
	if err != nil {
		t.Fatalf("get limits: %v", err)
	}
	if got[core.Food].Cents != 50000 {
		t.Errorf("limits round trip failed: %+v", got)
	}

	// The returned map is a copy.
	got[core.Food] = core.Money{Cents: 1}
	again, _ := s.GetLimits(ctx, "alice")
	if again[core.Food].Cents != 50000 {
		t.Error("GetLimits leaked internal state")
	}
}

func TestListOwners(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.AppendTransaction(ctx, core.Transaction{
		Owner: "carol", Kind: core.Income,
		Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1),
	})
	s.SetLimits(ctx, "alice", core.Limits{core.Food: {Cents: 100}})

	owners, err := s.ListOwners(ctx)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	want := []string{"alice", "carol"}
	if len(owners) != 2 || owners[0] != want[0] || owners[1] != want[1] {
		t.Errorf("want %v, got %v", want, owners)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	seed := `[
  {"id": "t1", "owner": "alice", "amount": "1200.50", "kind": "income", "date": "2024-01-05"},
  {"owner": "alice", "amount": "80,25", "kind": "expense", "category": "food", "date": "2024-01-10",
   "recurrence": {"every": "monthly", "until": "2024-06-10"}}
]`
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}
	limitsPath := filepath.Join(dir, "limits.yaml")
	if err := os.WriteFile(limitsPath, []byte("alice:\n  food: \"400\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFromFiles(dir, limitsPath)
	if err != nil {
		t.Fatalf("NewFromFiles: %v", err)
	}

	ctx := context.Background()
	txns, _ := s.ListTransactions(ctx, "alice")
	if len(txns) != 2 {
		t.Fatalf("expected 2 seeded transactions, got %d", len(txns))
	}
	if txns[0].Amount.Cents != 120050 {
		t.Errorf("amount parsing: got %d", txns[0].Amount.Cents)
	}
	if txns[1].Recurrence == nil || txns[1].Recurrence.Every != core.Monthly {
		t.Errorf("recurrence not seeded: %+v", txns[1].Recurrence)
	}
	if txns[1].ID == "" {
		t.Error("missing ids should be assigned")
	}

	limits, _ := s.GetLimits(ctx, "alice")
	if limits[core.Food].Cents != 40000 {
		t.Errorf("limits not seeded: %+v", limits)
	}
}

func TestNewFromFiles_MissingFiles(t *testing.T) {
	s, err := NewFromFiles(t.TempDir(), "")
	if err != nil {
		t.Fatalf("missing seeds should not fail: %v", err)
	}
	owners, _ := s.ListOwners(context.Background())
	if len(owners) != 0 {
		t.Errorf("expected empty store, got %v", owners)
	}
}

func TestNewFromFiles_BadSeed(t *testing.T) {
	dir := t.TempDir()
	bad := `[{"owner": "alice", "amount": "-5", "kind": "income", "date": "2024-01-05"}]`
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir, ""); err == nil {
		t.Fatal("negative seed amount should fail the load")
	}
}
