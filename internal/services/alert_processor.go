package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/core"
	"bilancio/internal/engine"
)

// AlertPublisher delivers limit-violation alerts to downstream consumers.
type AlertPublisher interface {
	PublishLimitAlert(ctx context.Context, msg *amqp.LimitAlertMessage) error
}

// AlertLedger remembers which violations were already alerted, keyed by
// owner, category and period, so a violation alerts once per month even if
// the overage keeps growing.
type AlertLedger interface {
	WasAlerted(ctx context.Context, owner string, category core.Category, period string) (bool, error)
	MarkAlerted(ctx context.Context, owner string, category core.Category, period string) error
}

// AlertProcessor periodically checks every owner's current-month spending
// against their configured limits and publishes an alert per new violation.
type AlertProcessor struct {
	store   backend.Store
	metrics *MetricsService
	ledger  AlertLedger
	pub     AlertPublisher
}

// NewAlertProcessor creates a new limit-alert processor. The ledger may be
// nil, in which case every run re-alerts current violations.
func NewAlertProcessor(store backend.Store, metrics *MetricsService, ledger AlertLedger, pub AlertPublisher) *AlertProcessor {
	return &AlertProcessor{
		store:   store,
		metrics: metrics,
		ledger:  ledger,
		pub:     pub,
	}
}

// ProcessAlerts evaluates all owners as of now and returns the number of
// alerts published. Per-owner failures are logged and skipped; the run keeps
// going.
func (p *AlertProcessor) ProcessAlerts(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.metrics == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	asOf := core.DateOf(now)
	owners, err := p.store.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}

	slog.InfoContext(ctx, "Processing limit alerts",
		"owners", len(owners),
		"as_of", asOf.Key())

	published := 0
	for _, owner := range owners {
		n, err := p.processOwner(ctx, owner, asOf)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to process owner",
				"owner", owner,
				"error", err)
			continue
		}
		published += n
	}

	slog.InfoContext(ctx, "Limit alert processing complete",
		"published", published,
		"owners_checked", len(owners))

	return published, nil
}

func (p *AlertProcessor) processOwner(ctx context.Context, owner string, asOf core.Date) (int, error) {
	limits, err := p.store.GetLimits(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("get limits: %w", err)
	}
	if len(limits) == 0 {
		return 0, nil
	}

	snap, err := p.metrics.Snapshot(ctx, owner, asOf)
	if err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}

	// Zero window: the report defaults to the snapshot's calendar month,
	// which is the budget period limits are defined over.
	violations := engine.Report(snap.Metrics, limits, engine.Window{})
	if len(violations) == 0 {
		return 0, nil
	}

	period := asOf.MonthKey()
	published := 0
	for _, v := range violations {
		if p.ledger != nil {
			alerted, err := p.ledger.WasAlerted(ctx, owner, v.Category, period)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to check alert ledger",
					"owner", owner,
					"category", string(v.Category),
					"error", err)
				continue
			}
			if alerted {
				continue
			}
		}

		if p.pub == nil {
			slog.WarnContext(ctx, "Alert publisher not available, skipping alert",
				"owner", owner,
				"category", string(v.Category))
			continue
		}

		msg := &amqp.LimitAlertMessage{
			Owner:        owner,
			Category:     string(v.Category),
			Period:       period,
			LimitCents:   v.Limit.Cents,
			TotalCents:   v.Total.Cents,
			OverageCents: v.Overage.Cents,
		}
		if err := p.pub.PublishLimitAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish limit alert",
				"owner", owner,
				"category", string(v.Category),
				"error", err)
			continue
		}

		if p.ledger != nil {
			if err := p.ledger.MarkAlerted(ctx, owner, v.Category, period); err != nil {
				slog.ErrorContext(ctx, "Failed to update alert ledger",
					"owner", owner,
					"category", string(v.Category),
					"error", err)
				// Alert went out; worst case it repeats next run
			}
		}
		published++
	}

	return published, nil
}
