package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/raw"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

var ref = date(2026, 6, 15)

func TestRun_StatusMapping(t *testing.T) {
	type testCase struct {
		name           string
		rawStatus      string
		wantStatus     normalize.Status
		wantLateCancel bool
	}

	tests := []testCase{
		{name: "Completed", rawStatus: "Completed", wantStatus: normalize.StatusCompleted},
		{name: "CheckedOut", rawStatus: "checked_out", wantStatus: normalize.StatusCompleted},
		{name: "Done", rawStatus: "DONE", wantStatus: normalize.StatusCompleted},
		{name: "Cancelled", rawStatus: "canceled", wantStatus: normalize.StatusCancelled},
		{name: "LateCancel", rawStatus: "late_cancel", wantStatus: normalize.StatusCancelled, wantLateCancel: true},
		{name: "NoShow", rawStatus: "No Show ", wantStatus: normalize.StatusNoShow},
		{name: "NoShowUnderscore", rawStatus: "no_show", wantStatus: normalize.StatusNoShow},
		{name: "Booked", rawStatus: "booked", wantStatus: normalize.StatusScheduled},
		{name: "UnmappedFallsBack", rawStatus: "waitlisted??", wantStatus: normalize.StatusScheduled},
		{name: "Empty", rawStatus: "", wantStatus: normalize.StatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &raw.Snapshot{
				Appointments: []raw.Appointment{
					{ID: "a1", ClientID: "c1", Date: date(2026, 6, 1), Status: tt.rawStatus},
				},
			}

			store := normalize.Run(snap, ref, config.DefaultPolicy())
			require.Len(t, store.Appointments, 1)

			assert.Equal(t, tt.wantStatus, store.Appointments[0].Status)
			assert.Equal(t, tt.wantLateCancel, store.Appointments[0].LateCancel)
		})
	}
}

func TestRun_CardProcessingFee(t *testing.T) {
	snap := &raw.Snapshot{
		Transactions: []raw.Transaction{
			{ID: "t1", ClientID: "c1", Date: date(2026, 6, 1), Total: 100.00, PaymentMethod: "card"},
			{ID: "t2", ClientID: "c2", Date: date(2026, 6, 2), Total: 100.00, PaymentMethod: "cash"},
			{ID: "t3", ClientID: "c3", Date: date(2026, 6, 3), Total: 50.00, Refund: 10.00, PaymentMethod: "credit_card"},
		},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())
	require.Len(t, store.Transactions, 3)

	// 2.9% of 10000 cents = 290, plus the 30 cent surcharge.
	assert.Equal(t, int64(320), store.Transactions[0].ProcessingFeeCents)
	assert.Equal(t, int64(10000-320), store.Transactions[0].NetToBankCents)

	// Cash carries no processing fee.
	assert.Equal(t, int64(0), store.Transactions[1].ProcessingFeeCents)
	assert.Equal(t, int64(10000), store.Transactions[1].NetToBankCents)

	// 2.9% of 5000 = 145, +30 = 175; refund comes off net-to-bank.
	assert.Equal(t, int64(175), store.Transactions[2].ProcessingFeeCents)
	assert.Equal(t, int64(5000-175-1000), store.Transactions[2].NetToBankCents)
	assert.Equal(t, normalize.PayCard, store.Transactions[2].PaymentMethod)
}

func TestRun_AppointmentMoney(t *testing.T) {
	type testCase struct {
		name        string
		appt        raw.Appointment
		txns        []raw.Transaction
		wantNet     int64
		wantTotal   int64
		wantTxnDate time.Time
	}

	tests := []testCase{
		{
			name: "LinkedTransactionWins",
			appt: raw.Appointment{
				ID: "a1", ClientID: "c1", Date: date(2026, 6, 1),
				Services:   []raw.Service{{Name: "Full Groom", Price: 80}},
				TotalPrice: 80, Status: "completed",
			},
			txns: []raw.Transaction{
				{ID: "t1", AppointmentID: "a1", ClientID: "c1", Date: date(2026, 6, 2),
					Subtotal: 90, Discount: 10, Tip: 15, Total: 95, PaymentMethod: "cash"},
			},
			wantNet:     8000,
			wantTotal:   9500,
			wantTxnDate: date(2026, 6, 2),
		},
		{
			name: "ServiceLinesWhenUnsettled",
			appt: raw.Appointment{
				ID: "a2", ClientID: "c1", Date: date(2026, 6, 3),
				Services:  []raw.Service{{Name: "Bath", Price: 35.50}, {Name: "Nails", Price: 12.25}},
				TipAmount: 5, Status: "scheduled",
			},
			wantNet:     4775,
			wantTotal:   5275,
			wantTxnDate: date(2026, 6, 3),
		},
		{
			name: "TotalPriceFallback",
			appt: raw.Appointment{
				ID: "a3", ClientID: "c1", Date: date(2026, 6, 4),
				TotalPrice: 60, Status: "completed",
			},
			wantNet:     6000,
			wantTotal:   6000,
			wantTxnDate: date(2026, 6, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &raw.Snapshot{
				Appointments: []raw.Appointment{tt.appt},
				Transactions: tt.txns,
			}

			store := normalize.Run(snap, ref, config.DefaultPolicy())
			require.Len(t, store.Appointments, 1)

			a := store.Appointments[0]
			assert.Equal(t, tt.wantNet, a.NetCents)
			assert.Equal(t, tt.wantTotal, a.TotalCents)
			assert.Equal(t, tt.wantTxnDate, a.TransactionDate)
		})
	}
}

func TestRun_NetNeverNegative(t *testing.T) {
	snap := &raw.Snapshot{
		Appointments: []raw.Appointment{
			{ID: "a1", ClientID: "c1", Date: date(2026, 6, 1), Status: "completed"},
		},
		Transactions: []raw.Transaction{
			// Discount exceeds subtotal (comped visit plus a goodwill credit).
			{ID: "t1", AppointmentID: "a1", ClientID: "c1", Date: date(2026, 6, 1),
				Subtotal: 20, Discount: 35, Total: 0, PaymentMethod: "cash"},
		},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())
	require.Len(t, store.Appointments, 1)
	assert.Equal(t, int64(0), store.Appointments[0].NetCents)
}

func TestRun_ClientType(t *testing.T) {
	snap := &raw.Snapshot{
		Appointments: []raw.Appointment{
			{ID: "a1", ClientID: "c1", Date: date(2026, 5, 1), Status: "completed", CreatedAt: date(2026, 4, 20)},
			{ID: "a2", ClientID: "c1", Date: date(2026, 6, 1), Status: "completed", CreatedAt: date(2026, 5, 1)},
			{ID: "a3", ClientID: "c2", Date: date(2026, 6, 1), Status: "completed", CreatedAt: date(2026, 5, 25)},
		},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())

	assert.Equal(t, normalize.ClientNew, store.ApptByID["a1"].ClientType)
	assert.Equal(t, normalize.ClientReturning, store.ApptByID["a2"].ClientType)
	assert.Equal(t, normalize.ClientNew, store.ApptByID["a3"].ClientType)
}

func TestRun_RebookWindows(t *testing.T) {
	snap := &raw.Snapshot{
		Appointments: []raw.Appointment{
			// Visit on June 1; the next booking is created 5 days later.
			{ID: "a1", ClientID: "c1", Date: date(2026, 6, 1), Status: "completed", CreatedAt: date(2026, 5, 1)},
			{ID: "a2", ClientID: "c1", Date: date(2026, 7, 10), Status: "scheduled", CreatedAt: date(2026, 6, 6)},
		},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())

	a1 := store.ApptByID["a1"]
	assert.False(t, a1.Rebooked24h)
	assert.True(t, a1.Rebooked7d)
	assert.True(t, a1.Rebooked30d)
}

func TestRun_RebookMonotonic(t *testing.T) {
	// Wider windows always contain narrower ones, whatever the gap.
	gaps := []time.Duration{
		6 * time.Hour,
		3 * 24 * time.Hour,
		20 * 24 * time.Hour,
		45 * 24 * time.Hour,
	}

	for _, gap := range gaps {
		visit := date(2026, 6, 1)
		snap := &raw.Snapshot{
			Appointments: []raw.Appointment{
				{ID: "a1", ClientID: "c1", Date: visit, Status: "completed", CreatedAt: date(2026, 5, 1)},
				{ID: "a2", ClientID: "c1", Date: visit.AddDate(0, 2, 0), Status: "scheduled", CreatedAt: visit.Add(gap)},
			},
		}

		store := normalize.Run(snap, ref, config.DefaultPolicy())
		a1 := store.ApptByID["a1"]

		if a1.Rebooked24h {
			assert.True(t, a1.Rebooked7d, "24h rebook must imply 7d (gap %v)", gap)
		}

		if a1.Rebooked7d {
			assert.True(t, a1.Rebooked30d, "7d rebook must imply 30d (gap %v)", gap)
		}
	}
}

func TestRun_ClientVisitHistory(t *testing.T) {
	snap := &raw.Snapshot{
		Appointments: []raw.Appointment{
			{ID: "a1", ClientID: "c1", Date: date(2026, 3, 1), Status: "completed", TotalPrice: 50},
			{ID: "a2", ClientID: "c1", Date: date(2026, 5, 1), Status: "completed", TotalPrice: 70},
			{ID: "a3", ClientID: "c1", Date: date(2026, 6, 1), Status: "no_show"},
		},
		Clients: []raw.Client{{ID: "c1", Name: "Dana"}},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())
	require.Len(t, store.Clients, 1)

	c := store.Clients[0]
	assert.Equal(t, 2, c.TotalVisits)
	assert.Equal(t, int64(12000), c.TotalSpentCents)
	require.NotNil(t, c.FirstVisit)
	require.NotNil(t, c.LastVisit)
	assert.Equal(t, date(2026, 3, 1), *c.FirstVisit)
	assert.Equal(t, date(2026, 5, 1), *c.LastVisit)
}

func TestRun_CompletenessIssues(t *testing.T) {
	snap := &raw.Snapshot{
		Staff: []raw.Staff{
			{ID: "s1", Name: "Alex", IsGroomer: true}, // no pay configured
			{ID: "s2", Name: "Sam", IsGroomer: true, HourlyRate: 22},
		},
		Inventory: []raw.InventoryItem{
			{ID: "i1", Name: "Shampoo", Quantity: 10}, // no unit cost
		},
		Transactions: []raw.Transaction{
			{ID: "t1", ClientID: "c1", Date: date(2026, 6, 1), Total: 40, PaymentMethod: "cash"},
		},
	}

	store := normalize.Run(snap, ref, config.DefaultPolicy())

	codes := make([]string, 0, len(store.Issues))
	for _, issue := range store.Issues {
		codes = append(codes, issue.Code)
	}

	assert.ElementsMatch(t, []string{
		normalize.IssueInventoryCost,
		normalize.IssueStaffPay,
		normalize.IssueUnlinkedPayments,
	}, codes)
}

func TestRun_Idempotent(t *testing.T) {
	snap := &raw.Snapshot{
		Appointments: []raw.Appointment{
			{ID: "a1", ClientID: "c1", GroomerID: "s1", Date: date(2026, 6, 1), Status: "completed",
				Services: []raw.Service{{Name: "Full Groom", Category: "Grooming", Price: 85, DurationMinutes: 90}}},
			{ID: "a2", ClientID: "c2", Date: date(2026, 6, 2), Status: "no_show"},
		},
		Transactions: []raw.Transaction{
			{ID: "t1", AppointmentID: "a1", ClientID: "c1", Date: date(2026, 6, 1), Subtotal: 85, Total: 85, PaymentMethod: "card"},
		},
		Staff:   []raw.Staff{{ID: "s1", Name: "Alex", IsGroomer: true, HourlyRate: 25}},
		Clients: []raw.Client{{ID: "c1", Name: "Dana"}, {ID: "c2", Name: "Robin"}},
	}

	first := normalize.Run(snap, ref, config.DefaultPolicy())
	second := normalize.Run(snap, ref, config.DefaultPolicy())

	assert.Equal(t, first.Appointments, second.Appointments)
	assert.Equal(t, first.Transactions, second.Transactions)
	assert.Equal(t, first.Staff, second.Staff)
	assert.Equal(t, first.Clients, second.Clients)
	assert.Equal(t, first.Issues, second.Issues)
}

func TestRun_NilSnapshot(t *testing.T) {
	store := normalize.Run(nil, ref, config.DefaultPolicy())

	require.NotNil(t, store)
	assert.Empty(t, store.Appointments)
	assert.Empty(t, store.Issues)
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(8550), normalize.Cents(85.50))
	assert.Equal(t, int64(1), normalize.Cents(0.005))
	assert.Equal(t, int64(-1), normalize.Cents(-0.005))
	assert.Equal(t, int64(0), normalize.Cents(0))
}
