// Package drill recovers the row-level records behind an aggregate number.
// Resolution is a pure filter/lookup: an unknown or empty key yields no rows,
// never an error. Alongside the rows it returns a reconciliation total that
// callers check against the aggregate that produced the key.
package drill

import (
	"strings"
	"time"

	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

// Row is one underlying record justifying an aggregate value.
type Row struct {
	ID        string              `json:"id"`
	Type      metric.DrillRowType `json:"type"`
	Data      any                 `json:"data"`
	Timestamp time.Time           `json:"timestamp"`
}

// Result is the resolved rows plus the reconciliation totals over them.
type Result struct {
	Rows []Row

	// NetCents sums the net sales of appointment rows; TotalCents sums the
	// gross totals of transaction rows. A displayed aggregate must match the
	// corresponding field within one cent.
	NetCents   int64
	TotalCents int64
}

// Options supplies the lookups resolution shares with the aggregator. Basis
// defaults to the service date. DailyAppointments and LowSupplyDays feed the
// inventory at-risk predicate so the "risk" sentinel selects exactly the
// items the inventory insight fired on.
type Options struct {
	Staff     map[string]*normalize.Staff
	TxnByAppt map[string]*normalize.Transaction
	Basis     func(*normalize.Appointment) time.Time

	DailyAppointments float64
	LowSupplyDays     float64
}

// Resolve returns the records addressed by key. appts must be the same
// filtered subset the aggregate was computed over, so that drill totals
// reconcile with the aggregate's.
func Resolve(key Key, store *normalize.Store, appts []normalize.Appointment, opts Options) Result {
	if opts.Basis == nil {
		opts.Basis = func(a *normalize.Appointment) time.Time { return a.ServiceDate }
	}

	switch key.Kind {
	case KindTxn:
		return resolveTxn(key.Value, store)
	case KindCampaign:
		return resolveCampaign(key.Value, store)
	case KindInventory:
		return resolveInventory(key.Value, store, opts)
	case KindService, KindCategory, KindStaff, KindStatus, KindChannel,
		KindClientType, KindPaymentMethod, KindPetSize, KindDay, KindWeek,
		KindMonth, KindDayStaff:
		return resolveAppointments(key, appts, opts)
	default:
		return Result{}
	}
}

func resolveTxn(id string, store *normalize.Store) Result {
	tx, ok := store.TxnByID[id]
	if !ok {
		return Result{}
	}

	return Result{
		Rows: []Row{{
			ID:        tx.ID,
			Type:      metric.RowTransaction,
			Data:      *tx,
			Timestamp: tx.Date,
		}},
		TotalCents: tx.TotalCents,
	}
}

func resolveCampaign(name string, store *normalize.Store) Result {
	var res Result
	for i := range store.Messages {
		m := &store.Messages[i]
		if m.CampaignName != name && m.CampaignID != name {
			continue
		}
		res.Rows = append(res.Rows, Row{
			ID:        m.ID,
			Type:      metric.RowMessage,
			Data:      *m,
			Timestamp: m.SentAt,
		})
		res.TotalCents += m.AttributedRevenueCents
	}

	return res
}

// resolveInventory returns items by name, or every at-risk item for the
// sentinel value "risk".
func resolveInventory(value string, store *normalize.Store, opts Options) Result {
	var res Result
	for i := range store.Inventory {
		item := &store.Inventory[i]

		match := item.Name == value || item.ID == value
		if value == "risk" {
			match = item.AtRisk(opts.DailyAppointments, opts.LowSupplyDays)
		}
		if !match {
			continue
		}

		res.Rows = append(res.Rows, Row{
			ID:   item.ID,
			Type: metric.RowInventory,
			Data: *item,
		})
	}

	return res
}

func resolveAppointments(key Key, appts []normalize.Appointment, opts Options) Result {
	match := apptMatcher(key, opts)
	if match == nil {
		return Result{}
	}

	var res Result
	for i := range appts {
		a := &appts[i]
		if !match(a) {
			continue
		}

		res.Rows = append(res.Rows, Row{
			ID:        a.ID,
			Type:      metric.RowAppointment,
			Data:      *a,
			Timestamp: opts.Basis(a),
		})
		if a.Status == normalize.StatusCompleted {
			res.NetCents += a.NetCents
			res.TotalCents += a.TotalCents
		}
	}

	return res
}

// apptMatcher mirrors the aggregator's bucket assignment so a drill key
// recovers exactly the rows its bucket was computed from.
func apptMatcher(key Key, opts Options) func(*normalize.Appointment) bool {
	v := key.Value

	switch key.Kind {
	case KindService:
		return func(a *normalize.Appointment) bool { return primaryService(a) == v }
	case KindCategory:
		return func(a *normalize.Appointment) bool { return primaryCategory(a) == v }
	case KindPetSize:
		return func(a *normalize.Appointment) bool { return primaryPetSize(a) == v }
	case KindStaff:
		return func(a *normalize.Appointment) bool { return staffName(a.StaffID, opts.Staff) == v }
	case KindStatus:
		return func(a *normalize.Appointment) bool { return string(a.Status) == v }
	case KindChannel:
		return func(a *normalize.Appointment) bool {
			if a.Channel == "" {
				return v == "Unknown"
			}
			return a.Channel == v
		}
	case KindClientType:
		return func(a *normalize.Appointment) bool { return string(a.ClientType) == v }
	case KindPaymentMethod:
		return func(a *normalize.Appointment) bool {
			tx := opts.TxnByAppt[a.ID]
			if tx == nil {
				return v == "Unknown"
			}
			return string(tx.PaymentMethod) == v
		}
	case KindDay:
		return func(a *normalize.Appointment) bool {
			return opts.Basis(a).Format(time.DateOnly) == v
		}
	case KindWeek:
		return func(a *normalize.Appointment) bool {
			return weekStart(opts.Basis(a)).Format(time.DateOnly) == v
		}
	case KindMonth:
		return func(a *normalize.Appointment) bool {
			return opts.Basis(a).Format("2006-01") == v
		}
	case KindDayStaff:
		day, name, found := strings.Cut(v, "|")
		if !found {
			return nil
		}
		return func(a *normalize.Appointment) bool {
			return opts.Basis(a).Format(time.DateOnly) == day && staffName(a.StaffID, opts.Staff) == name
		}
	default:
		return nil
	}
}

func primaryService(a *normalize.Appointment) string {
	if len(a.Services) > 0 && a.Services[0].Name != "" {
		return a.Services[0].Name
	}

	return "Unknown"
}

func primaryCategory(a *normalize.Appointment) string {
	if len(a.Services) > 0 && a.Services[0].Category != "" {
		return a.Services[0].Category
	}

	return "Unknown"
}

func primaryPetSize(a *normalize.Appointment) string {
	if len(a.Services) > 0 && a.Services[0].PetSize != "" {
		return a.Services[0].PetSize
	}

	return "Unknown"
}

func staffName(id string, staff map[string]*normalize.Staff) string {
	if id == "" {
		return "Unassigned"
	}
	if s := staff[id]; s != nil && s.Name != "" {
		return s.Name
	}

	return id
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
