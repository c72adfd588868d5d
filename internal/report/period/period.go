// Package period turns a report filter configuration into concrete
// half-open [start, end) windows and entity predicates. The reference date
// is always passed in by the caller; nothing here reads the clock.
package period

import (
	"time"

	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

// Preset is a named date-range shorthand.
type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetLast7     Preset = "last7"
	PresetThisWeek  Preset = "thisWeek"
	PresetLast30    Preset = "last30"
	PresetLast90    Preset = "last90"
	PresetThisMonth Preset = "thisMonth"
	PresetLastMonth Preset = "lastMonth"
	PresetQuarter   Preset = "quarter"
	PresetYTD       Preset = "ytd"
	PresetCustom    Preset = "custom"
)

// Basis selects which date field places a record inside a window.
type Basis string

const (
	BasisService     Basis = "service"
	BasisCheckout    Basis = "checkout"
	BasisTransaction Basis = "transaction"
)

// EffectiveDate returns the appointment date under this basis.
func (b Basis) EffectiveDate(a *normalize.Appointment) time.Time {
	switch b {
	case BasisCheckout:
		return a.CheckoutDate
	case BasisTransaction:
		return a.TransactionDate
	default:
		return a.ServiceDate
	}
}

// Window is a half-open [Start, End) reporting interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration is the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Previous returns the immediately preceding window of identical duration.
// The result never overlaps the receiver: Previous().End == Start.
func (w Window) Previous() Window {
	d := w.Duration()
	return Window{Start: w.Start.Add(-d), End: w.Start}
}

// Filters is the full report filter configuration. Empty slices place no
// restriction on their dimension.
type Filters struct {
	Preset      Preset
	CustomStart time.Time // used when Preset == PresetCustom
	CustomEnd   time.Time // inclusive date; resolved to an exclusive bound

	TimeBasis Basis

	StaffIDs       []string
	Services       []string
	Categories     []string
	PetSizes       []string
	Channels       []string
	ClientTypes    []normalize.ClientType
	Statuses       []normalize.Status
	PaymentMethods []normalize.PaymentMethod

	IncludeDiscounts           bool
	IncludeRefunds             bool
	IncludeTips                bool
	IncludeTaxes               bool
	IncludeGiftCardRedemptions bool
}

// DefaultFilters returns the configuration used when a report view is opened
// with no explicit selection.
func DefaultFilters() Filters {
	return Filters{
		Preset:           PresetLast30,
		TimeBasis:        BasisService,
		IncludeDiscounts: true,
		IncludeTips:      true,
		IncludeTaxes:     true,
	}
}

// Resolve converts the filter's preset (or custom bounds) into a concrete
// window relative to ref. Custom bounds are normalized so the end date is
// inclusive: [startOfDay(start), startOfDay(end)+24h).
func (f Filters) Resolve(ref time.Time) Window {
	sod := startOfDay(ref)
	tomorrow := sod.AddDate(0, 0, 1)

	switch f.Preset {
	case PresetToday:
		return Window{Start: sod, End: tomorrow}
	case PresetYesterday:
		return Window{Start: sod.AddDate(0, 0, -1), End: sod}
	case PresetLast7:
		return Window{Start: sod.AddDate(0, 0, -6), End: tomorrow}
	case PresetThisWeek:
		return Window{Start: startOfWeek(sod), End: tomorrow}
	case PresetLast30:
		return Window{Start: sod.AddDate(0, 0, -29), End: tomorrow}
	case PresetLast90:
		return Window{Start: sod.AddDate(0, 0, -89), End: tomorrow}
	case PresetThisMonth:
		return Window{Start: startOfMonth(sod), End: tomorrow}
	case PresetLastMonth:
		first := startOfMonth(sod)
		return Window{Start: first.AddDate(0, -1, 0), End: first}
	case PresetQuarter:
		return Window{Start: startOfQuarter(sod), End: tomorrow}
	case PresetYTD:
		return Window{Start: time.Date(sod.Year(), 1, 1, 0, 0, 0, 0, sod.Location()), End: tomorrow}
	case PresetCustom:
		if !f.CustomStart.IsZero() && !f.CustomEnd.IsZero() {
			return Window{
				Start: startOfDay(f.CustomStart),
				End:   startOfDay(f.CustomEnd).AddDate(0, 0, 1),
			}
		}
	}

	// Unknown preset or incomplete custom bounds: default range.
	return Window{Start: sod.AddDate(0, 0, -29), End: tomorrow}
}

// Predicate returns a matcher combining window membership under the filter's
// time basis with every configured dimensional filter. Groups AND together;
// values within a group OR together. tx is the appointment's settled
// transaction and may be nil.
func (f Filters) Predicate(w Window) func(a *normalize.Appointment, tx *normalize.Transaction) bool {
	staff := toSet(f.StaffIDs)
	channels := toSet(f.Channels)
	services := toSet(f.Services)
	categories := toSet(f.Categories)
	petSizes := toSet(f.PetSizes)

	clientTypes := make(map[normalize.ClientType]bool, len(f.ClientTypes))
	for _, v := range f.ClientTypes {
		clientTypes[v] = true
	}
	statuses := make(map[normalize.Status]bool, len(f.Statuses))
	for _, v := range f.Statuses {
		statuses[v] = true
	}
	methods := make(map[normalize.PaymentMethod]bool, len(f.PaymentMethods))
	for _, v := range f.PaymentMethods {
		methods[v] = true
	}

	basis := f.TimeBasis

	return func(a *normalize.Appointment, tx *normalize.Transaction) bool {
		if !w.Contains(basis.EffectiveDate(a)) {
			return false
		}

		if len(staff) > 0 && !staff[a.StaffID] {
			return false
		}
		if len(channels) > 0 && !channels[a.Channel] {
			return false
		}
		if len(clientTypes) > 0 && !clientTypes[a.ClientType] {
			return false
		}
		if len(statuses) > 0 && !statuses[a.Status] {
			return false
		}

		if len(services) > 0 && !anyLine(a, func(s normalize.ServiceLine) bool { return services[s.Name] }) {
			return false
		}
		if len(categories) > 0 && !anyLine(a, func(s normalize.ServiceLine) bool { return categories[s.Category] }) {
			return false
		}
		if len(petSizes) > 0 && !anyLine(a, func(s normalize.ServiceLine) bool { return petSizes[s.PetSize] }) {
			return false
		}

		if len(methods) > 0 {
			if tx == nil || !methods[tx.PaymentMethod] {
				return false
			}
		}

		return true
	}
}

// TransactionPredicate matches standalone transactions against the window
// and the payment-method filter, the only dimensions a transaction carries.
func (f Filters) TransactionPredicate(w Window) func(tx *normalize.Transaction) bool {
	methods := make(map[normalize.PaymentMethod]bool, len(f.PaymentMethods))
	for _, v := range f.PaymentMethods {
		methods[v] = true
	}

	return func(tx *normalize.Transaction) bool {
		if !w.Contains(tx.Date) {
			return false
		}
		if len(methods) > 0 && !methods[tx.PaymentMethod] {
			return false
		}
		if !f.IncludeGiftCardRedemptions && tx.PaymentMethod == normalize.PayGiftCard {
			return false
		}

		return true
	}
}

// MoneyView returns a copy of the appointment with the money components the
// filter excludes stripped out, so every calculator downstream sees one
// consistent view. Excluding discounts reports pre-discount revenue.
func (f Filters) MoneyView(a normalize.Appointment) normalize.Appointment {
	if !f.IncludeTips {
		a.TotalCents -= a.TipCents
		a.TipCents = 0
	}
	if !f.IncludeTaxes {
		a.TotalCents -= a.TaxCents
		a.TaxCents = 0
	}
	if !f.IncludeDiscounts {
		a.NetCents = a.SubtotalCents
		a.TotalCents += a.DiscountCents
		a.DiscountCents = 0
	}

	return a
}

// TransactionMoneyView applies the same component toggles to a standalone
// transaction. Excluding refunds reports gross settlement: the refund is
// added back to the net-to-bank figure.
func (f Filters) TransactionMoneyView(tx normalize.Transaction) normalize.Transaction {
	if !f.IncludeTips {
		tx.TotalCents -= tx.TipCents
		tx.TipCents = 0
	}
	if !f.IncludeTaxes {
		tx.TotalCents -= tx.TaxCents
		tx.TaxCents = 0
	}
	if !f.IncludeDiscounts {
		tx.TotalCents += tx.DiscountCents
		tx.DiscountCents = 0
	}
	if !f.IncludeRefunds {
		tx.NetToBankCents += tx.RefundCents
		tx.RefundCents = 0
	}

	return tx
}

func anyLine(a *normalize.Appointment, match func(normalize.ServiceLine) bool) bool {
	for _, s := range a.Services {
		if match(s) {
			return true
		}
	}

	return false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}

	return set
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the preceding Monday (ISO week).
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}

	return t.AddDate(0, 0, -offset+1)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfQuarter(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
}
