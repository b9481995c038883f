package services

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/memory"
)

type fakePublisher struct {
	published []*amqp.LimitAlertMessage
}

func (f *fakePublisher) PublishLimitAlert(_ context.Context, msg *amqp.LimitAlertMessage) error {
	f.published = append(f.published, msg)
	return nil
}

type fakeLedger struct {
	seen map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: make(map[string]bool)}
}

func (f *fakeLedger) key(owner string, c core.Category, period string) string {
	return owner + "|" + string(c) + "|" + period
}

func (f *fakeLedger) WasAlerted(_ context.Context, owner string, c core.Category, period string) (bool, error) {
	return f.seen[f.key(owner, c, period)], nil
}

func (f *fakeLedger) MarkAlerted(_ context.Context, owner string, c core.Category, period string) error {
	f.seen[f.key(owner, c, period)] = true
	return nil
}

func alertFixture(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	if _, err := store.AppendTransaction(ctx, core.Transaction{
		ID: "e1", Owner: "alice", Kind: core.Expense, Category: core.Food,
		Amount: core.Money{Cents: 20000}, Date: core.NewDate(2024, 3, 10),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.SetLimits(ctx, "alice", core.Limits{core.Food: {Cents: 5000}}); err != nil {
		t.Fatalf("limits: %v", err)
	}
	return store
}

func TestAlertProcessor_PublishesViolations(t *testing.T) {
	store := alertFixture(t)
	pub := &fakePublisher{}
	processor := NewAlertProcessor(store, NewMetricsService(store, nil, nil), newFakeLedger(), pub)

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	count, err := processor.ProcessAlerts(context.Background(), now)
	if err != nil {
		t.Fatalf("process alerts: %v", err)
	}

	if count != 1 || len(pub.published) != 1 {
		t.Fatalf("expected 1 alert, got count=%d published=%d", count, len(pub.published))
	}
	msg := pub.published[0]
	if msg.Owner != "alice" || msg.Category != "food" || msg.Period != "2024-03" {
		t.Errorf("alert fields wrong: %+v", msg)
	}
	if msg.OverageCents != 15000 || msg.LimitCents != 5000 || msg.TotalCents != 20000 {
		t.Errorf("alert amounts wrong: %+v", msg)
	}
}

func TestAlertProcessor_DedupesWithinPeriod(t *testing.T) {
	store := alertFixture(t)
	pub := &fakePublisher{}
	ledger := newFakeLedger()
	processor := NewAlertProcessor(store, NewMetricsService(store, nil, nil), ledger, pub)
	ctx := context.Background()

	march := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if _, err := processor.ProcessAlerts(ctx, march); err != nil {
		t.Fatalf("first run: %v", err)
	}
	count, err := processor.ProcessAlerts(ctx, march.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if count != 0 || len(pub.published) != 1 {
		t.Errorf("same-month violation re-alerted: count=%d published=%d", count, len(pub.published))
	}
}

func TestAlertProcessor_SkipsOwnersWithoutLimits(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	if _, err := store.AppendTransaction(ctx, core.Transaction{
		ID: "e1", Owner: "bob", Kind: core.Expense, Category: core.Food,
		Amount: core.Money{Cents: 99999}, Date: core.NewDate(2024, 3, 1),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pub := &fakePublisher{}
	processor := NewAlertProcessor(store, NewMetricsService(store, nil, nil), newFakeLedger(), pub)
	count, err := processor.ProcessAlerts(ctx, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("process alerts: %v", err)
	}
	if count != 0 || len(pub.published) != 0 {
		t.Errorf("owner without limits should not alert: count=%d", count)
	}
}

func TestAlertProcessor_NilPublisher(t *testing.T) {
	store := alertFixture(t)
	processor := NewAlertProcessor(store, NewMetricsService(store, nil, nil), newFakeLedger(), nil)

	// No publisher configured: the run completes without alerts or errors.
	count, err := processor.ProcessAlerts(context.Background(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("process alerts: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 published, got %d", count)
	}
}
