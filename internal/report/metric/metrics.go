// Package metric is the library of pure metric calculators. Every function
// operates on an already-filtered subset (calculators never re-filter) and
// guards degenerate arithmetic, returning 0 instead of NaN or Inf.
package metric

import (
	"math"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

// Appointments counts every appointment in the subset regardless of status.
func Appointments(appts []normalize.Appointment) float64 {
	return float64(len(appts))
}

// CompletedAppointments counts completed visits.
func CompletedAppointments(appts []normalize.Appointment) float64 {
	n := 0
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			n++
		}
	}

	return float64(n)
}

// TotalSalesCents sums gross totals (incl. tax and tip) of completed visits.
func TotalSalesCents(appts []normalize.Appointment) float64 {
	var total int64
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			total += appts[i].TotalCents
		}
	}

	return float64(total)
}

// NetSalesCents sums net sales (subtotal − discount) of completed visits.
func NetSalesCents(appts []normalize.Appointment) float64 {
	var total int64
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			total += appts[i].NetCents
		}
	}

	return float64(total)
}

// DiscountsCents sums discounts given on completed visits.
func DiscountsCents(appts []normalize.Appointment) float64 {
	var total int64
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			total += appts[i].DiscountCents
		}
	}

	return float64(total)
}

// TipsCents sums tips on completed visits.
func TipsCents(appts []normalize.Appointment) float64 {
	var total int64
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			total += appts[i].TipCents
		}
	}

	return float64(total)
}

// AverageTicketCents is net sales per completed visit.
func AverageTicketCents(appts []normalize.Appointment) float64 {
	completed := CompletedAppointments(appts)
	if completed == 0 {
		return 0
	}

	return math.Round(NetSalesCents(appts) / completed)
}

// NoShowCount counts no-show appointments.
func NoShowCount(appts []normalize.Appointment) float64 {
	n := 0
	for i := range appts {
		if appts[i].NoShow {
			n++
		}
	}

	return float64(n)
}

// NoShowRate is no-shows as a percent of concluded appointments (completed,
// cancelled, or no-show; scheduled bookings have not had the chance yet).
func NoShowRate(appts []normalize.Appointment) float64 {
	concluded := 0
	noShows := 0
	for i := range appts {
		switch appts[i].Status {
		case normalize.StatusCompleted, normalize.StatusCancelled, normalize.StatusNoShow:
			concluded++
			if appts[i].NoShow {
				noShows++
			}
		}
	}

	return rate(noShows, concluded)
}

// LateCancelRate is late cancellations as a percent of concluded appointments.
func LateCancelRate(appts []normalize.Appointment) float64 {
	concluded := 0
	late := 0
	for i := range appts {
		switch appts[i].Status {
		case normalize.StatusCompleted, normalize.StatusCancelled, normalize.StatusNoShow:
			concluded++
			if appts[i].LateCancel {
				late++
			}
		}
	}

	return rate(late, concluded)
}

// RebookRate24h is the percent of completed visits rebooked within 24 hours.
func RebookRate24h(appts []normalize.Appointment) float64 {
	return rebookRate(appts, func(a *normalize.Appointment) bool { return a.Rebooked24h })
}

// RebookRate7d is the percent of completed visits rebooked within 7 days.
func RebookRate7d(appts []normalize.Appointment) float64 {
	return rebookRate(appts, func(a *normalize.Appointment) bool { return a.Rebooked7d })
}

// RebookRate30d is the percent of completed visits rebooked within 30 days.
func RebookRate30d(appts []normalize.Appointment) float64 {
	return rebookRate(appts, func(a *normalize.Appointment) bool { return a.Rebooked30d })
}

// NewClientRate is the percent of completed visits from first-time clients.
func NewClientRate(appts []normalize.Appointment) float64 {
	completed := 0
	firstTimers := 0
	for i := range appts {
		if appts[i].Status != normalize.StatusCompleted {
			continue
		}
		completed++
		if appts[i].ClientType == normalize.ClientNew {
			firstTimers++
		}
	}

	return rate(firstTimers, completed)
}

// AverageDurationMinutes is the mean booked duration of completed visits.
func AverageDurationMinutes(appts []normalize.Appointment) float64 {
	completed := 0
	minutes := 0
	for i := range appts {
		if appts[i].Status != normalize.StatusCompleted {
			continue
		}
		completed++
		minutes += appts[i].DurationMinutes()
	}

	if completed == 0 {
		return 0
	}

	return float64(minutes) / float64(completed)
}

// BookedHours is the total service time of completed visits, in hours.
func BookedHours(appts []normalize.Appointment) float64 {
	minutes := 0
	for i := range appts {
		if appts[i].Status == normalize.StatusCompleted {
			minutes += appts[i].DurationMinutes()
		}
	}

	return float64(minutes) / 60
}

// RevenuePerHourCents is net sales per booked service hour.
func RevenuePerHourCents(appts []normalize.Appointment) float64 {
	hours := BookedHours(appts)
	if hours == 0 {
		return 0
	}

	return NetSalesCents(appts) / hours
}

// ProcessingFeesCents sums estimated card fees over a transaction subset.
func ProcessingFeesCents(txns []normalize.Transaction) float64 {
	var total int64
	for i := range txns {
		total += txns[i].ProcessingFeeCents
	}

	return float64(total)
}

// RefundsCents sums refunds over a transaction subset.
func RefundsCents(txns []normalize.Transaction) float64 {
	var total int64
	for i := range txns {
		total += txns[i].RefundCents
	}

	return float64(total)
}

// NetToBankCents sums the amounts expected to settle after fees and refunds.
func NetToBankCents(txns []normalize.Transaction) float64 {
	var total int64
	for i := range txns {
		total += txns[i].NetToBankCents
	}

	return float64(total)
}

// LaborCostCents estimates direct labor for the subset's completed visits.
// Hourly staff cost their rate over the booked duration; commissioned staff
// cost their percent of the visit's net; staff with neither use the policy's
// default commission. Unassigned visits also use the default commission.
func LaborCostCents(appts []normalize.Appointment, staff map[string]*normalize.Staff, pol config.Policy) float64 {
	var total float64

	for i := range appts {
		a := &appts[i]
		if a.Status != normalize.StatusCompleted {
			continue
		}

		s := staff[a.StaffID]
		switch {
		case s != nil && s.HourlyRateCents > 0:
			total += float64(s.HourlyRateCents) * float64(a.DurationMinutes()) / 60
		case s != nil && s.CommissionPercent > 0:
			total += float64(a.NetCents) * s.CommissionPercent / 100
		default:
			total += float64(a.NetCents) * pol.DefaultCommissionPercent / 100
		}
	}

	return math.Round(total)
}

// ProductCostCents estimates cost of goods as a policy percent of net sales.
func ProductCostCents(appts []normalize.Appointment, pol config.Policy) float64 {
	return math.Round(NetSalesCents(appts) * pol.COGSPercent / 100)
}

// ContributionMarginCents is net sales minus estimated product cost,
// processing fees, and direct labor.
func ContributionMarginCents(
	appts []normalize.Appointment,
	txns []normalize.Transaction,
	staff map[string]*normalize.Staff,
	pol config.Policy,
) float64 {
	return NetSalesCents(appts) -
		ProductCostCents(appts, pol) -
		ProcessingFeesCents(txns) -
		LaborCostCents(appts, staff, pol)
}

// ContributionMarginPercent expresses the margin as a percent of net sales.
func ContributionMarginPercent(
	appts []normalize.Appointment,
	txns []normalize.Transaction,
	staff map[string]*normalize.Staff,
	pol config.Policy,
) float64 {
	net := NetSalesCents(appts)
	if net == 0 {
		return 0
	}

	return ContributionMarginCents(appts, txns, staff, pol) / net * 100
}

// ReminderCoverage is the percent of appointments that got a reminder.
func ReminderCoverage(appts []normalize.Appointment) float64 {
	sent := 0
	for i := range appts {
		if appts[i].ReminderSent {
			sent++
		}
	}

	return rate(sent, len(appts))
}

func rebookRate(appts []normalize.Appointment, flag func(*normalize.Appointment) bool) float64 {
	completed := 0
	rebooked := 0
	for i := range appts {
		if appts[i].Status != normalize.StatusCompleted {
			continue
		}
		completed++
		if flag(&appts[i]) {
			rebooked++
		}
	}

	return rate(rebooked, completed)
}

// rate guards the zero-denominator case, per the engine's degenerate
// arithmetic policy.
func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(n) / float64(total) * 100
}
