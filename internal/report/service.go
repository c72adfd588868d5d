// Package report orchestrates the reporting pipeline: load raw records,
// normalize, resolve the current and previous windows, and serve KPIs,
// tables, charts, insights, and drill-downs. Computed views are memoized by
// (data version, filter state, reference date): every stage below is a pure
// function, so a cache hit is exactly equivalent to recomputing.
package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/raw"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/insight"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	LoadSnapshot(ctx context.Context) (*raw.Snapshot, error)
}

type Service struct {
	repo   Repository
	policy config.Policy

	mu          sync.Mutex
	cache       map[uint64]*computed
	cacheVer    int64
	maxCacheLen int
}

func NewService(repo Repository, policy config.Policy) *Service {
	return &Service{
		repo:        repo,
		policy:      policy,
		cache:       make(map[uint64]*computed),
		maxCacheLen: 64,
	}
}

// Overview is the headline report: KPI deltas, top insights, and data
// completeness advisories for the resolved window.
type Overview struct {
	Window         period.Window                 `json:"window"`
	PreviousWindow period.Window                 `json:"previousWindow"`
	KPIs           map[string]metric.KPIValue    `json:"kpis"`
	Insights       []insight.Insight             `json:"insights"`
	Issues         []normalize.CompletenessIssue `json:"issues"`
}

// computed is one memoized pipeline run.
type computed struct {
	store    *normalize.Store
	window   period.Window
	previous period.Window

	current      []normalize.Appointment
	previousSet  []normalize.Appointment
	currentTxns  []normalize.Transaction
	previousTxns []normalize.Transaction

	recentAppointments int
}

// Overview computes (or recalls) the report view for the given filters and
// reference date.
func (s *Service) Overview(ctx context.Context, f period.Filters, ref time.Time) (*Overview, error) {
	c, err := s.compute(ctx, f, ref)
	if err != nil {
		return nil, err
	}

	kpis := s.kpis(c)

	insights := insight.Generate(insight.Input{
		Current:            c.current,
		Previous:           c.previousSet,
		CurrentTxns:        c.currentTxns,
		PreviousTxns:       c.previousTxns,
		Inventory:          c.store.Inventory,
		Messages:           c.store.Messages,
		Staff:              c.store.StaffByID,
		RecentAppointments: c.recentAppointments,
		Window:             c.window,
		Policy:             s.policy,
	})

	return &Overview{
		Window:         c.window,
		PreviousWindow: c.previous,
		KPIs:           kpis,
		Insights:       insights,
		Issues:         c.store.Issues,
	}, nil
}

// Table aggregates the current window by the requested dimension.
func (s *Service) Table(ctx context.Context, f period.Filters, dim aggregate.Dimension, ref time.Time) ([]aggregate.Row, error) {
	c, err := s.compute(ctx, f, ref)
	if err != nil {
		return nil, err
	}

	return aggregate.ByDimension(c.current, dim, s.aggContext(c, f)), nil
}

// Chart aggregates both windows by dimension and pairs them into chart
// points for one metric.
func (s *Service) Chart(ctx context.Context, f period.Filters, dim aggregate.Dimension, metricID string, ref time.Time) ([]aggregate.ChartPoint, error) {
	if _, ok := metric.Lookup(metricID); !ok {
		return nil, fmt.Errorf("unknown metric %q", metricID)
	}

	c, err := s.compute(ctx, f, ref)
	if err != nil {
		return nil, err
	}

	actx := s.aggContext(c, f)
	current := aggregate.ByDimension(c.current, dim, actx)
	previous := aggregate.ByDimension(c.previousSet, dim, actx)

	return aggregate.ChartSeries(current, previous, metricID), nil
}

// Drill resolves a drill key against the current window's rows. Unknown
// keys resolve to an empty result, not an error.
func (s *Service) Drill(ctx context.Context, f period.Filters, key drill.Key, ref time.Time) (drill.Result, error) {
	c, err := s.compute(ctx, f, ref)
	if err != nil {
		return drill.Result{}, err
	}

	basis := f.TimeBasis

	demandWindow := s.policy.DemandWindowDays
	if demandWindow <= 0 {
		demandWindow = 30
	}

	return drill.Resolve(key, c.store, c.current, drill.Options{
		Staff:             c.store.StaffByID,
		TxnByAppt:         c.store.TxnByAppt,
		Basis:             basis.EffectiveDate,
		DailyAppointments: float64(c.recentAppointments) / float64(demandWindow),
		LowSupplyDays:     s.policy.LowSupplyDays,
	}), nil
}

// Definitions lists every registry entry, sorted by metric id, for the
// definitions/help surface.
func (s *Service) Definitions() []metric.Definition {
	defs := make([]metric.Definition, 0, len(metric.Registry))
	for _, d := range metric.Registry {
		defs = append(defs, d)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	return defs
}

func (s *Service) kpis(c *computed) map[string]metric.KPIValue {
	cur, prev := c.current, c.previousSet
	staff := c.store.StaffByID
	pol := s.policy

	return map[string]metric.KPIValue{
		"appointments":          metric.WithDelta(metric.Appointments(cur), metric.Appointments(prev), metric.FormatNumber),
		"completedAppointments": metric.WithDelta(metric.CompletedAppointments(cur), metric.CompletedAppointments(prev), metric.FormatNumber),
		"totalSales":            metric.WithDelta(metric.TotalSalesCents(cur), metric.TotalSalesCents(prev), metric.FormatMoney),
		"netSales":              metric.WithDelta(metric.NetSalesCents(cur), metric.NetSalesCents(prev), metric.FormatMoney),
		"averageTicket":         metric.WithDelta(metric.AverageTicketCents(cur), metric.AverageTicketCents(prev), metric.FormatMoney),
		"discounts":             metric.WithDelta(metric.DiscountsCents(cur), metric.DiscountsCents(prev), metric.FormatMoney),
		"tips":                  metric.WithDelta(metric.TipsCents(cur), metric.TipsCents(prev), metric.FormatMoney),
		"noShowRate":            metric.WithDelta(metric.NoShowRate(cur), metric.NoShowRate(prev), metric.FormatPercent),
		"lateCancelRate":        metric.WithDelta(metric.LateCancelRate(cur), metric.LateCancelRate(prev), metric.FormatPercent),
		"rebookRate7d":          metric.WithDelta(metric.RebookRate7d(cur), metric.RebookRate7d(prev), metric.FormatPercent),
		"rebookRate30d":         metric.WithDelta(metric.RebookRate30d(cur), metric.RebookRate30d(prev), metric.FormatPercent),
		"newClientRate":         metric.WithDelta(metric.NewClientRate(cur), metric.NewClientRate(prev), metric.FormatPercent),
		"averageDuration":       metric.WithDelta(metric.AverageDurationMinutes(cur), metric.AverageDurationMinutes(prev), metric.FormatMinutes),
		"revenuePerHour":        metric.WithDelta(metric.RevenuePerHourCents(cur), metric.RevenuePerHourCents(prev), metric.FormatMoney),
		"reminderCoverage":      metric.WithDelta(metric.ReminderCoverage(cur), metric.ReminderCoverage(prev), metric.FormatPercent),
		"processingFees":        metric.WithDelta(metric.ProcessingFeesCents(c.currentTxns), metric.ProcessingFeesCents(c.previousTxns), metric.FormatMoney),
		"refunds":               metric.WithDelta(metric.RefundsCents(c.currentTxns), metric.RefundsCents(c.previousTxns), metric.FormatMoney),
		"netToBank":             metric.WithDelta(metric.NetToBankCents(c.currentTxns), metric.NetToBankCents(c.previousTxns), metric.FormatMoney),
		"laborCost":             metric.WithDelta(metric.LaborCostCents(cur, staff, pol), metric.LaborCostCents(prev, staff, pol), metric.FormatMoney),
		"productCost":           metric.WithDelta(metric.ProductCostCents(cur, pol), metric.ProductCostCents(prev, pol), metric.FormatMoney),
		"contributionMargin":    metric.WithDelta(metric.ContributionMarginCents(cur, c.currentTxns, staff, pol), metric.ContributionMarginCents(prev, c.previousTxns, staff, pol), metric.FormatMoney),
		"contributionMarginPct": metric.WithDelta(metric.ContributionMarginPercent(cur, c.currentTxns, staff, pol), metric.ContributionMarginPercent(prev, c.previousTxns, staff, pol), metric.FormatPercent),
	}
}

func (s *Service) aggContext(c *computed, f period.Filters) aggregate.Context {
	basis := f.TimeBasis

	return aggregate.Context{
		Staff:     c.store.StaffByID,
		TxnByAppt: c.store.TxnByAppt,
		Policy:    s.policy,
		Basis:     basis.EffectiveDate,
	}
}

// compute runs the pipeline, serving from cache when the snapshot version,
// filters, and reference date all match a prior run.
func (s *Service) compute(ctx context.Context, f period.Filters, ref time.Time) (*computed, error) {
	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	key, err := cacheKey(snap.Version, f, ref)
	if err == nil {
		s.mu.Lock()
		if s.cacheVer != snap.Version {
			// Raw data moved; every memoized view is stale.
			s.cache = make(map[uint64]*computed)
			s.cacheVer = snap.Version
		}
		if c, ok := s.cache[key]; ok {
			s.mu.Unlock()
			return c, nil
		}
		s.mu.Unlock()
	}

	store := normalize.Run(snap, ref, s.policy)

	window := f.Resolve(ref)
	previous := window.Previous()

	match := f.Predicate(window)
	prevMatch := f.Predicate(previous)

	c := &computed{store: store, window: window, previous: previous}

	for i := range store.Appointments {
		a := &store.Appointments[i]
		tx := store.TxnByAppt[a.ID]

		if match(a, tx) {
			c.current = append(c.current, f.MoneyView(*a))
		}
		if prevMatch(a, tx) {
			c.previousSet = append(c.previousSet, f.MoneyView(*a))
		}
	}

	txMatch := f.TransactionPredicate(window)
	prevTxMatch := f.TransactionPredicate(previous)
	for i := range store.Transactions {
		tx := &store.Transactions[i]
		if txMatch(tx) {
			c.currentTxns = append(c.currentTxns, f.TransactionMoneyView(*tx))
		}
		if prevTxMatch(tx) {
			c.previousTxns = append(c.previousTxns, f.TransactionMoneyView(*tx))
		}
	}

	demandStart := ref.AddDate(0, 0, -s.policy.DemandWindowDays)
	for i := range store.Appointments {
		d := store.Appointments[i].ServiceDate
		if d.After(demandStart) && !d.After(ref) {
			c.recentAppointments++
		}
	}

	if err == nil {
		s.mu.Lock()
		if len(s.cache) >= s.maxCacheLen {
			s.cache = make(map[uint64]*computed)
		}
		s.cache[key] = c
		s.mu.Unlock()
	}

	return c, nil
}

// cacheKey hashes the inputs a computation depends on. Times are folded in
// as Unix values because hashstructure only sees exported fields.
func cacheKey(version int64, f period.Filters, ref time.Time) (uint64, error) {
	return hashstructure.Hash(struct {
		Version     int64
		RefUnix     int64
		CustomStart int64
		CustomEnd   int64
		Filters     period.Filters
	}{
		Version:     version,
		RefUnix:     ref.Unix(),
		CustomStart: f.CustomStart.Unix(),
		CustomEnd:   f.CustomEnd.Unix(),
		Filters:     f,
	}, hashstructure.FormatV2, nil)
}
