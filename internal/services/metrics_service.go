// Package services orchestrates the metrics engine over the storage
// collaborators: fetching raw transactions and limits, running the pure
// pipeline, caching snapshots, and publishing limit alerts.
package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/backend"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	applog "bilancio/internal/log"
)

// Snapshot bundles a Metrics value with the anomalies its computation
// reported. It is what gets cached: aggregation is pure, so for a fixed
// (owner, asOf) the snapshot cannot go stale within its TTL except through
// writes, which callers handle by invalidation.
type Snapshot struct {
	Metrics   engine.Metrics
	Anomalies []core.Anomaly
}

// MetricsService computes metrics snapshots for owners on demand.
type MetricsService struct {
	store  backend.Store
	cache  *cache.LRUCache[Snapshot]
	logger *applog.Logger
}

func NewMetricsService(store backend.Store, snapshots *cache.LRUCache[Snapshot], logger *applog.Logger) *MetricsService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &MetricsService{
		store:  store,
		cache:  snapshots,
		logger: logger.WithComponent(applog.ComponentService),
	}
}

// Snapshot returns the metrics snapshot for one owner as of the given day,
// expanding recurring templates first. Results are cached per (owner, asOf).
func (s *MetricsService) Snapshot(ctx context.Context, owner string, asOf core.Date) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, fmt.Errorf("metrics service not properly initialized")
	}

	key := owner + "|" + asOf.Key()
	if s.cache != nil {
		if snap, ok := s.cache.Get(key); ok {
			return snap, nil
		}
	}

	start := time.Now()
	txns, err := s.store.ListTransactions(ctx, owner)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}

	expanded, expandAnomalies := engine.Expand(txns, asOf)
	metrics, aggAnomalies := engine.Aggregate(expanded, asOf)

	snap := Snapshot{
		Metrics:   metrics,
		Anomalies: append(expandAnomalies, aggAnomalies...),
	}

	for _, a := range snap.Anomalies {
		s.logger.WarnContext(ctx, "Metrics anomaly",
			applog.FieldOwner, owner,
			"reason", string(a.Reason),
			"transaction_id", a.TransactionID,
			"detail", a.Detail)
	}
	s.logger.DebugContext(ctx, "Computed metrics snapshot",
		applog.FieldOwner, owner,
		applog.FieldAsOf, asOf.Key(),
		"transactions", len(txns),
		"occurrences", len(expanded),
		applog.FieldAnomalies, len(snap.Anomalies),
		applog.FieldDuration, time.Since(start).Milliseconds())

	if s.cache != nil {
		s.cache.Set(key, snap)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot for one owner and day, typically after
// a write through the CRUD layer.
func (s *MetricsService) Invalidate(owner string, asOf core.Date) {
	if s.cache != nil {
		s.cache.Delete(owner + "|" + asOf.Key())
	}
}

// CategoryTotals returns the windowed per-category expense totals for charts.
func (s *MetricsService) CategoryTotals(ctx context.Context, owner string, asOf core.Date, w engine.Window) ([]engine.CategoryTotal, error) {
	snap, err := s.Snapshot(ctx, owner, asOf)
	if err != nil {
		return nil, err
	}
	return engine.ProjectCategoryTotals(snap.Metrics, w), nil
}

// DailySeries returns the windowed, gap-filled daily series for charts.
func (s *MetricsService) DailySeries(ctx context.Context, owner string, asOf core.Date, w engine.Window) ([]engine.DayTotals, error) {
	snap, err := s.Snapshot(ctx, owner, asOf)
	if err != nil {
		return nil, err
	}
	return engine.ProjectDailySeries(snap.Metrics, w), nil
}

// LimitsReport returns the owner's budget violations for the window, using
// the owner's stored limits.
func (s *MetricsService) LimitsReport(ctx context.Context, owner string, asOf core.Date, w engine.Window) ([]engine.LimitViolation, error) {
	snap, err := s.Snapshot(ctx, owner, asOf)
	if err != nil {
		return nil, err
	}
	limits, err := s.store.GetLimits(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get limits: %w", err)
	}
	return engine.Report(snap.Metrics, limits, w), nil
}
