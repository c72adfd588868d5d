// Package aggregate groups normalized appointments by a reporting dimension
// and computes per-bucket metrics with row-level provenance. Buckets keep
// stable ordering: chronological for calendar dimensions, first-seen
// otherwise. Entities with a missing dimension value land in an explicit
// Unassigned/Unknown bucket so bucket totals always reconcile with the
// ungrouped total.
package aggregate

import (
	"sort"
	"time"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

// Dimension names a grouping axis.
type Dimension string

const (
	DimDay           Dimension = "day"
	DimWeek          Dimension = "week"
	DimMonth         Dimension = "month"
	DimStaff         Dimension = "staff"
	DimService       Dimension = "service"
	DimCategory      Dimension = "category"
	DimChannel       Dimension = "channel"
	DimClientType    Dimension = "clientType"
	DimPaymentMethod Dimension = "paymentMethod"
	DimStatus        Dimension = "status"
	DimPetSize       Dimension = "petSize"
	DimDayStaff      Dimension = "dayStaff" // composite day × staff
)

// UnassignedBucket labels rows whose staff reference is empty.
const UnassignedBucket = "Unassigned"

// UnknownBucket labels rows whose categorical value is missing.
const UnknownBucket = "Unknown"

// Row is one aggregation bucket: display value, metric map, the ids of the
// entities that produced it, and a drill key recovering those rows.
type Row struct {
	DimensionValue string             `json:"dimensionValue"`
	Metrics        map[string]float64 `json:"metrics"`
	MatchingIDs    []string           `json:"matchingIds"`
	DrillKey       drill.Key          `json:"drillKey"`
}

// Context supplies the lookups bucket metrics need beyond the appointments
// themselves.
type Context struct {
	Staff     map[string]*normalize.Staff
	TxnByAppt map[string]*normalize.Transaction
	Policy    config.Policy
	Basis     func(*normalize.Appointment) time.Time
}

// ByDimension groups the (already filtered) appointments and computes each
// bucket's metrics over exactly the appointments in that bucket.
func ByDimension(appts []normalize.Appointment, dim Dimension, ctx Context) []Row {
	if ctx.Basis == nil {
		ctx.Basis = func(a *normalize.Appointment) time.Time { return a.ServiceDate }
	}

	buckets := make(map[string][]int)
	order := make([]string, 0)

	for i := range appts {
		key := bucketValue(&appts[i], dim, ctx)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	if isCalendar(dim) {
		sort.Strings(order) // bucket labels are date-sortable strings
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		idxs := buckets[key]

		subset := make([]normalize.Appointment, 0, len(idxs))
		ids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			subset = append(subset, appts[i])
			ids = append(ids, appts[i].ID)
		}

		rows = append(rows, Row{
			DimensionValue: key,
			Metrics:        bucketMetrics(subset, ctx),
			MatchingIDs:    ids,
			DrillKey:       drill.Key{Kind: drillKind(dim), Value: key},
		})
	}

	return rows
}

func bucketMetrics(subset []normalize.Appointment, ctx Context) map[string]float64 {
	txns := make([]normalize.Transaction, 0, len(subset))
	for i := range subset {
		if tx := ctx.TxnByAppt[subset[i].ID]; tx != nil {
			txns = append(txns, *tx)
		}
	}

	return map[string]float64{
		"appointments":          metric.Appointments(subset),
		"completedAppointments": metric.CompletedAppointments(subset),
		"totalSales":            metric.TotalSalesCents(subset),
		"netSales":              metric.NetSalesCents(subset),
		"averageTicket":         metric.AverageTicketCents(subset),
		"discounts":             metric.DiscountsCents(subset),
		"tips":                  metric.TipsCents(subset),
		"noShowCount":           metric.NoShowCount(subset),
		"noShowRate":            metric.NoShowRate(subset),
		"rebookRate7d":          metric.RebookRate7d(subset),
		"newClientRate":         metric.NewClientRate(subset),
		"revenuePerHour":        metric.RevenuePerHourCents(subset),
		"laborCost":             metric.LaborCostCents(subset, ctx.Staff, ctx.Policy),
		"processingFees":        metric.ProcessingFeesCents(txns),
	}
}

func bucketValue(a *normalize.Appointment, dim Dimension, ctx Context) string {
	switch dim {
	case DimDay:
		return ctx.Basis(a).Format(time.DateOnly)
	case DimWeek:
		return weekStart(ctx.Basis(a)).Format(time.DateOnly)
	case DimMonth:
		return ctx.Basis(a).Format("2006-01")
	case DimStaff:
		return staffName(a.StaffID, ctx)
	case DimService:
		// Multi-service visits bucket under their primary (first) line so
		// each appointment lands in exactly one bucket.
		if len(a.Services) > 0 && a.Services[0].Name != "" {
			return a.Services[0].Name
		}
		return UnknownBucket
	case DimCategory:
		if len(a.Services) > 0 && a.Services[0].Category != "" {
			return a.Services[0].Category
		}
		return UnknownBucket
	case DimChannel:
		if a.Channel != "" {
			return a.Channel
		}
		return UnknownBucket
	case DimClientType:
		return string(a.ClientType)
	case DimPaymentMethod:
		if tx := ctx.TxnByAppt[a.ID]; tx != nil {
			return string(tx.PaymentMethod)
		}
		return UnknownBucket
	case DimStatus:
		return string(a.Status)
	case DimPetSize:
		if len(a.Services) > 0 && a.Services[0].PetSize != "" {
			return a.Services[0].PetSize
		}
		return UnknownBucket
	case DimDayStaff:
		return ctx.Basis(a).Format(time.DateOnly) + "|" + staffName(a.StaffID, ctx)
	default:
		return UnknownBucket
	}
}

func staffName(id string, ctx Context) string {
	if id == "" {
		return UnassignedBucket
	}
	if s := ctx.Staff[id]; s != nil && s.Name != "" {
		return s.Name
	}

	return id
}

func isCalendar(dim Dimension) bool {
	switch dim {
	case DimDay, DimWeek, DimMonth, DimDayStaff:
		return true
	}

	return false
}

func drillKind(dim Dimension) drill.Kind {
	switch dim {
	case DimDay:
		return drill.KindDay
	case DimWeek:
		return drill.KindWeek
	case DimMonth:
		return drill.KindMonth
	case DimStaff:
		return drill.KindStaff
	case DimService:
		return drill.KindService
	case DimCategory:
		return drill.KindCategory
	case DimChannel:
		return drill.KindChannel
	case DimClientType:
		return drill.KindClientType
	case DimPaymentMethod:
		return drill.KindPaymentMethod
	case DimStatus:
		return drill.KindStatus
	case DimPetSize:
		return drill.KindPetSize
	case DimDayStaff:
		return drill.KindDayStaff
	default:
		return drill.KindStatus
	}
}

// weekStart returns the preceding Monday (ISO week).
func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	return day.AddDate(0, 0, -offset+1)
}

// ChartPoint is a labeled value for chart display, optionally paired with
// the previous period's value for the same label position.
type ChartPoint struct {
	Label         string   `json:"label"`
	Value         float64  `json:"value"`
	PreviousValue *float64 `json:"previousValue,omitempty"`
}

// ChartSeries converts aggregation rows into chart points for one metric,
// pairing previous-period rows positionally when provided.
func ChartSeries(current, previous []Row, metricID string) []ChartPoint {
	points := make([]ChartPoint, 0, len(current))
	for i, row := range current {
		p := ChartPoint{
			Label: row.DimensionValue,
			Value: row.Metrics[metricID],
		}

		if i < len(previous) {
			prev := previous[i].Metrics[metricID]
			p.PreviousValue = &prev
		}

		points = append(points, p)
	}

	return points
}
