package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"expensetrack/internal/cache"
	"expensetrack/internal/core"
	"expensetrack/internal/identity"
	applog "expensetrack/internal/log"
	"expensetrack/internal/source"
)

const (
	// DefaultTTL bounds how long a snapshot or derived result is served
	// without refetching.
	DefaultTTL = 2 * time.Minute
	// DefaultPageLimit is the page size requested from the raw feed.
	DefaultPageLimit = 500

	snapshotSlot  = "snapshot"
	reportSlot    = "report:"
	dashboardSlot = "dashboard:"
)

// Engine turns the raw paginated feed into dashboard statistics and report
// summaries, memoizing one snapshot and the per-period derived results.
// Reads are single-flighted per cache slot: concurrent callers of a cold
// slot share one fetch. A failed fetch leaves its slot empty so the next
// read starts clean. All cached state is private to the engine; derived
// results are always computed from an immutable snapshot.
type Engine struct {
	fetcher   source.PageFetcher
	identity  identity.Provider
	ttl       time.Duration
	pageLimit int
	now       func() time.Time
	logger    *slog.Logger

	flight     singleflight.Group
	snapshots  *cache.Store[*core.Snapshot]
	reports    *cache.Store[*core.ReportSummary]
	dashboards *cache.Store[*core.DashboardStats]
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithPageLimit overrides the raw feed page size.
func WithPageLimit(limit int) Option {
	return func(e *Engine) { e.pageLimit = limit }
}

// WithClock injects the time source, used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine over the given feed and identity source.
func NewEngine(fetcher source.PageFetcher, id identity.Provider, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		identity:  id,
		ttl:       DefaultTTL,
		pageLimit: DefaultPageLimit,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snapshots = cache.New[*core.Snapshot](e.ttl)
	e.reports = cache.New[*core.ReportSummary](e.ttl)
	e.dashboards = cache.New[*core.DashboardStats](e.ttl)
	return e
}

// RegisterCaches adds the engine's stores to a cleanup manager.
func (e *Engine) RegisterCaches(m *cache.Manager) {
	m.Register(e.snapshots)
	m.Register(e.reports)
	m.Register(e.dashboards)
}

// GetSnapshot returns the cached snapshot, fetching and materializing a
// fresh one when the cache is cold, stale, token-bound to another identity,
// or forceRefresh is set.
func (e *Engine) GetSnapshot(ctx context.Context, forceRefresh bool) (*core.Snapshot, error) {
	token := e.cacheToken()
	if forceRefresh {
		e.logger.DebugContext(ctx, "Bypassing snapshot cache", applog.FieldForceRefresh, true)
	} else {
		if snap, ok := e.snapshots.Get(snapshotSlot, token, e.now()); ok {
			return snap, nil
		}
	}

	v, err, _ := e.flight.Do(snapshotSlot, func() (any, error) {
		snap, err := e.buildSnapshot(ctx)
		if err != nil {
			e.snapshots.Delete(snapshotSlot)
			e.logger.WarnContext(ctx, "Snapshot fetch failed, slot cleared",
				applog.FieldCacheSlot, snapshotSlot,
				applog.FieldError, err.Error())
			return nil, err
		}
		e.snapshots.Set(snapshotSlot, snap, token, e.now())
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Snapshot), nil
}

// GetReportSummary returns the full-period summary for a rolling period,
// serving the per-period derived cache when fresh.
func (e *Engine) GetReportSummary(ctx context.Context, period core.Period, forceRefresh bool) (*core.ReportSummary, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("report summary: %w: %q", core.ErrInvalidPeriod, period)
	}

	token := e.cacheToken()
	key := string(period)
	if !forceRefresh {
		if summary, ok := e.reports.Get(key, token, e.now()); ok {
			return summary, nil
		}
	}

	v, err, _ := e.flight.Do(reportSlot+key, func() (any, error) {
		snap, err := e.GetSnapshot(ctx, forceRefresh)
		if err != nil {
			e.reports.Delete(key)
			return nil, err
		}
		summary := BuildReportSummary(snap.Transactions, snap.Categories, period, snap.Currency, e.now())
		e.reports.Set(key, summary, token, e.now())
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.ReportSummary), nil
}

// GetDashboardStats returns the rolling-window dashboard statistics. An
// empty period defaults to month.
func (e *Engine) GetDashboardStats(ctx context.Context, forceRefresh bool, period core.Period) (*core.DashboardStats, error) {
	if period == "" {
		period = core.Month
	}
	if !period.Valid() {
		return nil, fmt.Errorf("dashboard stats: %w: %q", core.ErrInvalidPeriod, period)
	}

	token := e.cacheToken()
	key := string(period)
	if !forceRefresh {
		if stats, ok := e.dashboards.Get(key, token, e.now()); ok {
			return stats, nil
		}
	}

	v, err, _ := e.flight.Do(dashboardSlot+key, func() (any, error) {
		snap, err := e.GetSnapshot(ctx, forceRefresh)
		if err != nil {
			e.dashboards.Delete(key)
			return nil, err
		}
		stats := BuildDashboardStats(snap.Transactions, snap.CategoryCount, snap.Currency, period, e.now())
		e.dashboards.Set(key, stats, token, e.now())
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.DashboardStats), nil
}

// GetFilteredSummary computes a filtered report over the cached snapshot,
// fetching one first if none is held. Filtered results are recomputed per
// call; only the snapshot underneath is cached.
func (e *Engine) GetFilteredSummary(ctx context.Context, query core.AnalyticsQuery) (*core.ReportSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("filtered summary: %w", err)
	}
	snap, err := e.GetSnapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return BuildFilteredReportSummary(snap, query, e.now()), nil
}

// Invalidate clears every cached snapshot and derived result. Callers must
// invoke it after any mutation (create/update/delete, CSV import) or the
// engine keeps serving the pre-mutation snapshot until TTL expiry.
func (e *Engine) Invalidate() {
	e.snapshots.Clear()
	e.reports.Clear()
	e.dashboards.Clear()
	e.logger.Debug("Analytics caches invalidated", applog.FieldOperation, applog.OpInvalidate)
}

// buildSnapshot pages through the raw feed and materializes one snapshot.
// Transactions accumulate in cursor order; categories come from the first
// page with a non-empty list, currency from the first page that supplies
// one, falling back to the identity provider's preference.
func (e *Engine) buildSnapshot(ctx context.Context) (*core.Snapshot, error) {
	var (
		transactions []core.RawTransaction
		categories   []core.RawCategory
		currency     string
		cursor       string
		pages        int
	)

	for {
		page, err := e.fetcher.FetchPage(ctx, e.pageLimit, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch analytics page %d: %w", pages+1, err)
		}
		pages++
		e.logger.DebugContext(ctx, "Fetched analytics page",
			applog.FieldCursor, cursor,
			applog.FieldPages, pages)
		transactions = append(transactions, page.Transactions...)
		if len(categories) == 0 && len(page.Categories) > 0 {
			categories = page.Categories
		}
		if currency == "" {
			currency = page.Currency
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if currency == "" {
		currency = e.identity.PreferredCurrency()
	}

	snap := NewSnapshot(transactions, categories, currency)
	e.logger.InfoContext(ctx, "Analytics snapshot materialized",
		applog.FieldOperation, applog.OpSnapshot,
		applog.FieldPages, pages,
		applog.FieldTxCount, len(snap.Transactions),
		applog.FieldCatCount, snap.CategoryCount,
		applog.FieldCurrency, snap.Currency)
	return snap, nil
}

// cacheToken binds cache entries to the identity they were fetched under.
func (e *Engine) cacheToken() string {
	currency := e.identity.PreferredCurrency()
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return e.identity.Token() + "::" + currency
}
