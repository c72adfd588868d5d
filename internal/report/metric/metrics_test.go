package metric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

func completed(net, total int64, mins int) normalize.Appointment {
	return normalize.Appointment{
		Status:     normalize.StatusCompleted,
		NetCents:   net,
		TotalCents: total,
		Services:   []normalize.ServiceLine{{DurationMinutes: mins}},
	}
}

func TestSalesMetrics(t *testing.T) {
	appts := []normalize.Appointment{
		completed(8000, 9500, 90),
		completed(4000, 4400, 60),
		{Status: normalize.StatusNoShow, NetCents: 9999, TotalCents: 9999},
		{Status: normalize.StatusScheduled, NetCents: 5000, TotalCents: 5000},
	}

	assert.Equal(t, float64(4), metric.Appointments(appts))
	assert.Equal(t, float64(2), metric.CompletedAppointments(appts))

	// Only completed visits count toward sales.
	assert.Equal(t, float64(13900), metric.TotalSalesCents(appts))
	assert.Equal(t, float64(12000), metric.NetSalesCents(appts))
	assert.Equal(t, float64(6000), metric.AverageTicketCents(appts))
}

func TestRates_ZeroDenominators(t *testing.T) {
	var empty []normalize.Appointment

	assert.Zero(t, metric.NoShowRate(empty))
	assert.Zero(t, metric.AverageTicketCents(empty))
	assert.Zero(t, metric.RebookRate7d(empty))
	assert.Zero(t, metric.NewClientRate(empty))
	assert.Zero(t, metric.RevenuePerHourCents(empty))
	assert.Zero(t, metric.AverageDurationMinutes(empty))
	assert.Zero(t, metric.ReminderCoverage(empty))

	// Scheduled-only subsets have no concluded appointments.
	scheduled := []normalize.Appointment{{Status: normalize.StatusScheduled}}
	assert.Zero(t, metric.NoShowRate(scheduled))
	assert.Zero(t, metric.LateCancelRate(scheduled))
}

func TestNoShowRate_ConcludedDenominator(t *testing.T) {
	appts := []normalize.Appointment{
		{Status: normalize.StatusCompleted},
		{Status: normalize.StatusCompleted},
		{Status: normalize.StatusNoShow, NoShow: true},
		{Status: normalize.StatusCancelled},
		// Scheduled bookings are not concluded and stay out of the denominator.
		{Status: normalize.StatusScheduled},
		{Status: normalize.StatusScheduled},
	}

	assert.InDelta(t, 25.0, metric.NoShowRate(appts), 1e-9)
}

func TestRates_Bounded(t *testing.T) {
	appts := []normalize.Appointment{
		{Status: normalize.StatusCompleted, ClientType: normalize.ClientNew, Rebooked7d: true, Rebooked30d: true, ReminderSent: true, NoShow: false},
		{Status: normalize.StatusNoShow, NoShow: true, ClientType: normalize.ClientNew},
		{Status: normalize.StatusCancelled, LateCancel: true},
	}

	for name, got := range map[string]float64{
		"noShowRate":       metric.NoShowRate(appts),
		"lateCancelRate":   metric.LateCancelRate(appts),
		"rebookRate24h":    metric.RebookRate24h(appts),
		"rebookRate7d":     metric.RebookRate7d(appts),
		"rebookRate30d":    metric.RebookRate30d(appts),
		"newClientRate":    metric.NewClientRate(appts),
		"reminderCoverage": metric.ReminderCoverage(appts),
	} {
		assert.GreaterOrEqual(t, got, 0.0, name)
		assert.LessOrEqual(t, got, 100.0, name)
	}
}

func TestRebookRates_Monotonic(t *testing.T) {
	appts := []normalize.Appointment{
		{Status: normalize.StatusCompleted, Rebooked24h: true, Rebooked7d: true, Rebooked30d: true},
		{Status: normalize.StatusCompleted, Rebooked7d: true, Rebooked30d: true},
		{Status: normalize.StatusCompleted, Rebooked30d: true},
		{Status: normalize.StatusCompleted},
	}

	r24 := metric.RebookRate24h(appts)
	r7 := metric.RebookRate7d(appts)
	r30 := metric.RebookRate30d(appts)

	assert.LessOrEqual(t, r24, r7)
	assert.LessOrEqual(t, r7, r30)
}

func TestRevenuePerHour(t *testing.T) {
	appts := []normalize.Appointment{
		completed(9000, 9000, 90),
		completed(3000, 3000, 30),
	}

	// 12000 cents over 2 booked hours.
	assert.InDelta(t, 6000, metric.RevenuePerHourCents(appts), 1e-9)
	assert.InDelta(t, 2.0, metric.BookedHours(appts), 1e-9)
	assert.InDelta(t, 60.0, metric.AverageDurationMinutes(appts), 1e-9)
}

func TestTransactionMetrics(t *testing.T) {
	txns := []normalize.Transaction{
		{ProcessingFeeCents: 320, RefundCents: 0, NetToBankCents: 9680},
		{ProcessingFeeCents: 0, RefundCents: 1000, NetToBankCents: 4000},
	}

	assert.Equal(t, float64(320), metric.ProcessingFeesCents(txns))
	assert.Equal(t, float64(1000), metric.RefundsCents(txns))
	assert.Equal(t, float64(13680), metric.NetToBankCents(txns))
}

func TestLaborCost(t *testing.T) {
	staff := map[string]*normalize.Staff{
		"hourly":     {ID: "hourly", HourlyRateCents: 2500},
		"commission": {ID: "commission", CommissionPercent: 50},
	}
	pol := config.DefaultPolicy()

	hourly := completed(10000, 10000, 120)
	hourly.StaffID = "hourly"

	commissioned := completed(10000, 10000, 60)
	commissioned.StaffID = "commission"

	unassigned := completed(10000, 10000, 60)

	// 2 hours at $25/h.
	assert.Equal(t, float64(5000), metric.LaborCostCents([]normalize.Appointment{hourly}, staff, pol))
	// 50% of net.
	assert.Equal(t, float64(5000), metric.LaborCostCents([]normalize.Appointment{commissioned}, staff, pol))
	// Default commission (40%) of net.
	assert.Equal(t, float64(4000), metric.LaborCostCents([]normalize.Appointment{unassigned}, staff, pol))
}

func TestContributionMargin(t *testing.T) {
	pol := config.DefaultPolicy()
	staff := map[string]*normalize.Staff{}

	appts := []normalize.Appointment{completed(10000, 10000, 60)}
	txns := []normalize.Transaction{{ProcessingFeeCents: 320}}

	// 10000 − 1200 COGS − 320 fees − 4000 default-commission labor.
	assert.Equal(t, float64(4480), metric.ContributionMarginCents(appts, txns, staff, pol))
	assert.InDelta(t, 44.8, metric.ContributionMarginPercent(appts, txns, staff, pol), 1e-9)

	// Zero net sales yields 0 percent, not NaN.
	assert.Zero(t, metric.ContributionMarginPercent(nil, nil, staff, pol))
}

func TestWithDelta(t *testing.T) {
	type testCase struct {
		name            string
		current         float64
		previous        float64
		wantDelta       float64
		wantDeltaPct    float64
		wantNewFromZero bool
	}

	tests := []testCase{
		{name: "Growth", current: 120, previous: 100, wantDelta: 20, wantDeltaPct: 20},
		{name: "Decline", current: 80, previous: 100, wantDelta: -20, wantDeltaPct: -20},
		{name: "Flat", current: 100, previous: 100, wantDelta: 0, wantDeltaPct: 0},
		{name: "BothZero", current: 0, previous: 0, wantDelta: 0, wantDeltaPct: 0},
		{name: "NewFromZero", current: 50, previous: 0, wantDelta: 50, wantNewFromZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := metric.WithDelta(tt.current, tt.previous, metric.FormatNumber)

			assert.Equal(t, tt.wantDelta, v.Delta)
			assert.Equal(t, tt.wantNewFromZero, v.NewFromZero())

			if !tt.wantNewFromZero {
				assert.InDelta(t, tt.wantDeltaPct, v.DeltaPercent, 1e-9)
				assert.False(t, math.IsNaN(v.DeltaPercent))
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	def, ok := metric.Lookup("noShowRate")
	assert.True(t, ok)
	assert.Equal(t, metric.FormatPercent, def.Format)
	assert.Contains(t, def.DrillRowTypes, metric.RowAppointment)

	_, ok = metric.Lookup("nope")
	assert.False(t, ok)

	for id, def := range metric.Registry {
		assert.Equal(t, id, def.ID, "registry key must match the definition id")
		assert.NotEmpty(t, def.Label, id)
		assert.NotEmpty(t, def.Definition, id)
		assert.NotEmpty(t, def.Format, id)
	}
}
