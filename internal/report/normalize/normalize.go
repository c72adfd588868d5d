// Package normalize rebuilds the reporting entities from raw operational
// records: money converted to integer cents, statuses mapped onto closed
// sets, and cross-record fields (client type, rebooking, visit history)
// derived. Run is pure: same inputs, same reference date, same output.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/raw"
)

// Run converts a raw snapshot into a normalized Store. It never fails:
// unmapped statuses fall back to the most conservative value, missing money
// defaults to zero, and data gaps become CompletenessIssues instead of errors.
//
// ref is the caller-supplied reference date; nothing inside reads the clock.
func Run(snap *raw.Snapshot, ref time.Time, pol config.Policy) *Store {
	store := &Store{
		ApptByID:  make(map[string]*Appointment),
		TxnByID:   make(map[string]*Transaction),
		TxnByAppt: make(map[string]*Transaction),
		StaffByID: make(map[string]*Staff),
	}

	if snap == nil {
		return store
	}

	txnByAppt := normalizeTransactions(snap, pol, store)
	normalizeAppointments(snap, txnByAppt, store)
	deriveClientFields(store, ref)
	normalizeStaff(snap, store)
	deriveClients(snap, store)
	normalizeInventory(snap, store)
	normalizeMessages(snap, store)
	collectIssues(store)

	return store
}

// Cents converts a dollar amount to integer cents, rounding half away from
// zero. Exported because the ingest layer shares the same convention.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

func normalizeTransactions(snap *raw.Snapshot, pol config.Policy, store *Store) map[string]*Transaction {
	store.Transactions = make([]Transaction, 0, len(snap.Transactions))
	byAppt := make(map[string]*Transaction, len(snap.Transactions))

	for _, rt := range snap.Transactions {
		method := mapPaymentMethod(rt.PaymentMethod)

		total := Cents(rt.Total)
		fee := int64(0)
		if method == PayCard && total > 0 {
			fee = int64(math.Round(float64(total)*pol.CardFeePercent/100)) + pol.CardFeeFlatCents
		}

		refund := Cents(rt.Refund)

		tx := Transaction{
			ID:                 rt.ID,
			AppointmentID:      rt.AppointmentID,
			ClientID:           rt.ClientID,
			Date:               rt.Date,
			SubtotalCents:      Cents(rt.Subtotal),
			DiscountCents:      Cents(rt.Discount),
			TaxCents:           Cents(rt.Tax),
			TipCents:           Cents(rt.Tip),
			TotalCents:         total,
			RefundCents:        refund,
			ProcessingFeeCents: fee,
			NetToBankCents:     total - fee - refund,
			PaymentMethod:      method,
			Type:               rt.Type,
		}

		store.Transactions = append(store.Transactions, tx)
	}

	for i := range store.Transactions {
		tx := &store.Transactions[i]
		store.TxnByID[tx.ID] = tx

		if tx.AppointmentID != "" {
			// First transaction wins when an appointment is double-linked.
			if _, seen := byAppt[tx.AppointmentID]; !seen {
				byAppt[tx.AppointmentID] = tx
			}
		}
	}

	store.TxnByAppt = byAppt

	return byAppt
}

func normalizeAppointments(snap *raw.Snapshot, txnByAppt map[string]*Transaction, store *Store) {
	store.Appointments = make([]Appointment, 0, len(snap.Appointments))

	for _, ra := range snap.Appointments {
		status, lateCancel := mapStatus(ra.Status)

		appt := Appointment{
			ID:           ra.ID,
			ClientID:     ra.ClientID,
			PetID:        ra.PetID,
			StaffID:      ra.GroomerID,
			ServiceDate:  ra.Date,
			StartTime:    ra.StartTime,
			EndTime:      ra.EndTime,
			Status:       status,
			Channel:      ra.Channel,
			LateCancel:   lateCancel,
			NoShow:       status == StatusNoShow,
			ReminderSent: ra.ReminderSent,
			CreatedAt:    ra.CreatedAt,
		}

		appt.Services = make([]ServiceLine, 0, len(ra.Services))
		var svcTotal int64
		for _, rs := range ra.Services {
			line := ServiceLine{
				Name:            rs.Name,
				Category:        rs.Category,
				PriceCents:      Cents(rs.Price),
				PetSize:         rs.PetSize,
				DurationMinutes: rs.DurationMinutes,
			}
			svcTotal += line.PriceCents
			appt.Services = append(appt.Services, line)
		}

		// Money comes from the settled transaction when one exists; the
		// booking-time figures are only an estimate until checkout.
		if tx, ok := txnByAppt[ra.ID]; ok {
			appt.SubtotalCents = tx.SubtotalCents
			appt.DiscountCents = tx.DiscountCents
			appt.TaxCents = tx.TaxCents
			appt.TipCents = tx.TipCents
			appt.TotalCents = tx.TotalCents
			appt.TransactionDate = tx.Date
		} else {
			appt.SubtotalCents = svcTotal
			if appt.SubtotalCents == 0 {
				appt.SubtotalCents = Cents(ra.TotalPrice)
			}
			appt.TipCents = Cents(ra.TipAmount)
			appt.TotalCents = appt.SubtotalCents + appt.TipCents
			appt.TransactionDate = ra.Date
		}

		appt.NetCents = appt.SubtotalCents - appt.DiscountCents
		if appt.NetCents < 0 {
			appt.NetCents = 0
		}

		if ra.CheckedOutAt != nil {
			appt.CheckoutDate = *ra.CheckedOutAt
		} else {
			appt.CheckoutDate = ra.Date
		}

		store.Appointments = append(store.Appointments, appt)
	}

	for i := range store.Appointments {
		store.ApptByID[store.Appointments[i].ID] = &store.Appointments[i]
	}
}

// deriveClientFields fills ClientType and the rebooking flags, both of which
// depend on the client's other appointments. Appointments scheduled after the
// reference date are still bookings for rebook purposes but do not make a
// client "returning".
func deriveClientFields(store *Store, ref time.Time) {
	byClient := make(map[string][]*Appointment)
	for i := range store.Appointments {
		a := &store.Appointments[i]
		if a.ClientID != "" {
			byClient[a.ClientID] = append(byClient[a.ClientID], a)
		}
	}

	for _, appts := range byClient {
		sort.SliceStable(appts, func(i, j int) bool {
			return appts[i].ServiceDate.Before(appts[j].ServiceDate)
		})

		for idx, a := range appts {
			a.ClientType = ClientNew
			for _, earlier := range appts[:idx] {
				if earlier.ServiceDate.Before(a.ServiceDate) && !earlier.ServiceDate.After(ref) {
					a.ClientType = ClientReturning
					break
				}
			}

			// Rebooked: the client created another booking within the
			// window following this visit.
			for _, other := range appts {
				if other == a || other.CreatedAt.IsZero() {
					continue
				}
				if !other.CreatedAt.After(a.ServiceDate) {
					continue
				}

				gap := other.CreatedAt.Sub(a.ServiceDate)
				if gap <= 24*time.Hour {
					a.Rebooked24h = true
				}
				if gap <= 7*24*time.Hour {
					a.Rebooked7d = true
				}
				if gap <= 30*24*time.Hour {
					a.Rebooked30d = true
				}
			}
		}
	}

	// Clients without an id still need a deterministic type.
	for i := range store.Appointments {
		if store.Appointments[i].ClientType == "" {
			store.Appointments[i].ClientType = ClientNew
		}
	}
}

func normalizeStaff(snap *raw.Snapshot, store *Store) {
	store.Staff = make([]Staff, 0, len(snap.Staff))

	for _, rs := range snap.Staff {
		store.Staff = append(store.Staff, Staff{
			ID:                rs.ID,
			Name:              rs.Name,
			Role:              rs.Role,
			IsGroomer:         rs.IsGroomer,
			HourlyRateCents:   Cents(rs.HourlyRate),
			CommissionPercent: rs.Commission,
			Status:            mapStaffStatus(rs.Status),
			HireDate:          rs.HireDate,
		})
	}

	for i := range store.Staff {
		store.StaffByID[store.Staff[i].ID] = &store.Staff[i]
	}
}

// deriveClients builds each client's visit history from their completed
// appointments, sorted ascending by service date.
func deriveClients(snap *raw.Snapshot, store *Store) {
	completed := make(map[string][]*Appointment)
	for i := range store.Appointments {
		a := &store.Appointments[i]
		if a.Status == StatusCompleted && a.ClientID != "" {
			completed[a.ClientID] = append(completed[a.ClientID], a)
		}
	}

	store.Clients = make([]Client, 0, len(snap.Clients))

	for _, rc := range snap.Clients {
		c := Client{
			ID:             rc.ID,
			Name:           rc.Name,
			ReferralSource: rc.ReferralSource,
		}

		visits := completed[rc.ID]
		sort.SliceStable(visits, func(i, j int) bool {
			return visits[i].ServiceDate.Before(visits[j].ServiceDate)
		})

		c.TotalVisits = len(visits)
		for _, v := range visits {
			c.TotalSpentCents += v.NetCents
		}

		if len(visits) > 0 {
			first := visits[0].ServiceDate
			last := visits[len(visits)-1].ServiceDate
			c.FirstVisit = &first
			c.LastVisit = &last
		}

		store.Clients = append(store.Clients, c)
	}
}

func normalizeInventory(snap *raw.Snapshot, store *Store) {
	store.Inventory = make([]InventoryItem, 0, len(snap.Inventory))

	for _, ri := range snap.Inventory {
		store.Inventory = append(store.Inventory, InventoryItem{
			ID:            ri.ID,
			Name:          ri.Name,
			Category:      ri.Category,
			OnHand:        ri.Quantity,
			UnitCostCents: Cents(ri.Cost),
			ReorderLevel:  ri.ReorderLevel,
			UsagePerAppt:  ri.UsagePerAppt,
		})
	}
}

func normalizeMessages(snap *raw.Snapshot, store *Store) {
	store.Messages = make([]Message, 0, len(snap.Messages))

	for _, rm := range snap.Messages {
		store.Messages = append(store.Messages, Message{
			ID:                     rm.ID,
			CampaignID:             rm.CampaignID,
			CampaignName:           rm.CampaignName,
			Channel:                rm.Channel,
			ClientID:               rm.ClientID,
			AppointmentID:          rm.AppointmentID,
			SentAt:                 rm.SentAt,
			CostCents:              Cents(rm.Cost),
			AttributedRevenueCents: Cents(rm.AttributedRevenue),
			Confirmed:              rm.Confirmed,
			ShowedUp:               rm.ShowedUp,
		})
	}
}

func collectIssues(store *Store) {
	missingCost := 0
	for _, item := range store.Inventory {
		if item.UnitCostCents == 0 {
			missingCost++
		}
	}
	if missingCost > 0 {
		store.Issues = append(store.Issues, CompletenessIssue{
			Code: IssueInventoryCost,
			Message: fmt.Sprintf("%d inventory item(s) have no unit cost; product cost is treated as zero",
				missingCost),
			AffectedMetrics: []string{"contributionMargin", "productCost"},
		})
	}

	missingPay := 0
	for _, s := range store.Staff {
		if s.IsGroomer && s.HourlyRateCents == 0 && s.CommissionPercent == 0 {
			missingPay++
		}
	}
	if missingPay > 0 {
		store.Issues = append(store.Issues, CompletenessIssue{
			Code: IssueStaffPay,
			Message: fmt.Sprintf("%d groomer(s) have no hourly rate or commission; labor cost uses the default commission",
				missingPay),
			AffectedMetrics: []string{"laborCost", "contributionMargin", "revenuePerHour"},
		})
	}

	unlinked := 0
	for _, tx := range store.Transactions {
		if tx.AppointmentID == "" {
			unlinked++
		}
	}
	if unlinked > 0 {
		store.Issues = append(store.Issues, CompletenessIssue{
			Code: IssueUnlinkedPayments,
			Message: fmt.Sprintf("%d transaction(s) are not linked to an appointment; they count toward sales but not service metrics",
				unlinked),
			AffectedMetrics: []string{"averageTicket", "revenuePerHour"},
		})
	}
}

// canonical lowercases and collapses the separator variants platforms use
// ("No Show", "no_show", "NO-SHOW") onto hyphens.
func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")

	return strings.ReplaceAll(s, " ", "-")
}

func mapStatus(s string) (Status, bool) {
	switch canonical(s) {
	case "completed", "complete", "done", "finished", "checked-out":
		return StatusCompleted, false
	case "cancelled", "canceled", "cancel":
		return StatusCancelled, false
	case "late-cancel", "late-cancelled", "late-cancellation":
		return StatusCancelled, true
	case "no-show", "noshow", "missed":
		return StatusNoShow, false
	case "scheduled", "booked", "confirmed", "pending":
		return StatusScheduled, false
	default:
		// Unmapped statuses take the most conservative reading.
		return StatusScheduled, false
	}
}

func mapPaymentMethod(s string) PaymentMethod {
	switch canonical(s) {
	case "card", "credit", "credit-card", "debit", "debit-card":
		return PayCard
	case "cash":
		return PayCash
	case "gift-card", "giftcard", "gift":
		return PayGiftCard
	default:
		return PayUnknown
	}
}

func mapStaffStatus(s string) StaffStatus {
	switch canonical(s) {
	case "active":
		return StaffActive
	case "on-leave", "leave":
		return StaffOnLeave
	case "inactive", "terminated", "former":
		return StaffInactive
	default:
		return StaffActive
	}
}
