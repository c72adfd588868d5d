package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testContext() aggregate.Context {
	return aggregate.Context{
		Staff: map[string]*normalize.Staff{
			"s1": {ID: "s1", Name: "Alex"},
			"s2": {ID: "s2", Name: "Sam"},
		},
		TxnByAppt: map[string]*normalize.Transaction{},
		Policy:    config.DefaultPolicy(),
	}
}

func appt(id, staffID, service string, day time.Time, net int64) normalize.Appointment {
	return normalize.Appointment{
		ID:          id,
		StaffID:     staffID,
		ServiceDate: day,
		Status:      normalize.StatusCompleted,
		NetCents:    net,
		TotalCents:  net,
		Services:    []normalize.ServiceLine{{Name: service, Category: "Grooming", DurationMinutes: 60}},
	}
}

func TestByDimension_FirstSeenOrder(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Full Groom", date(2026, 6, 1), 8000),
		appt("a2", "s1", "Bath", date(2026, 6, 2), 3500),
		appt("a3", "s2", "Full Groom", date(2026, 6, 3), 8000),
	}

	rows := aggregate.ByDimension(appts, aggregate.DimService, testContext())
	require.Len(t, rows, 2)

	assert.Equal(t, "Full Groom", rows[0].DimensionValue)
	assert.Equal(t, "Bath", rows[1].DimensionValue)

	assert.ElementsMatch(t, []string{"a1", "a3"}, rows[0].MatchingIDs)
	assert.Equal(t, float64(16000), rows[0].Metrics["netSales"])
	assert.Equal(t, drill.Key{Kind: drill.KindService, Value: "Full Groom"}, rows[0].DrillKey)
}

func TestByDimension_UnassignedStaff(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Full Groom", date(2026, 6, 1), 8000),
		appt("a2", "", "Bath", date(2026, 6, 2), 3500),
		appt("a3", "", "Nails", date(2026, 6, 3), 1500),
	}

	rows := aggregate.ByDimension(appts, aggregate.DimStaff, testContext())
	require.Len(t, rows, 2)

	byValue := make(map[string]aggregate.Row)
	for _, row := range rows {
		byValue[row.DimensionValue] = row
	}

	unassigned, ok := byValue[aggregate.UnassignedBucket]
	require.True(t, ok, "missing staff must produce an explicit bucket")
	assert.Len(t, unassigned.MatchingIDs, 2)
	assert.ElementsMatch(t, []string{"a2", "a3"}, unassigned.MatchingIDs)
	assert.Equal(t, float64(5000), unassigned.Metrics["netSales"])

	assert.Equal(t, float64(8000), byValue["Alex"].Metrics["netSales"])
}

func TestByDimension_TotalsReconcile(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Full Groom", date(2026, 6, 1), 8000),
		appt("a2", "", "Bath", date(2026, 6, 2), 3500),
		appt("a3", "s2", "", date(2026, 6, 3), 1500),
		appt("a4", "s2", "Full Groom", date(2026, 6, 3), 6000),
	}

	for _, dim := range []aggregate.Dimension{
		aggregate.DimStaff,
		aggregate.DimService,
		aggregate.DimDay,
		aggregate.DimChannel,
		aggregate.DimPaymentMethod,
	} {
		rows := aggregate.ByDimension(appts, dim, testContext())

		var count, net float64
		for _, row := range rows {
			count += row.Metrics["appointments"]
			net += row.Metrics["netSales"]
		}

		assert.Equal(t, float64(len(appts)), count, "dimension %s: every appointment lands in exactly one bucket", dim)
		assert.Equal(t, float64(19000), net, "dimension %s: bucket sums must reconcile", dim)
	}
}

func TestByDimension_CalendarOrder(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Bath", date(2026, 6, 9), 3500),
		appt("a2", "s1", "Bath", date(2026, 6, 2), 3500),
		appt("a3", "s1", "Bath", date(2026, 6, 5), 3500),
	}

	rows := aggregate.ByDimension(appts, aggregate.DimDay, testContext())
	require.Len(t, rows, 3)

	assert.Equal(t, "2026-06-02", rows[0].DimensionValue)
	assert.Equal(t, "2026-06-05", rows[1].DimensionValue)
	assert.Equal(t, "2026-06-09", rows[2].DimensionValue)
}

func TestByDimension_WeekBucketsOnMonday(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Bath", date(2026, 6, 2), 3500), // Tuesday
		appt("a2", "s1", "Bath", date(2026, 6, 7), 3500), // Sunday, same ISO week
		appt("a3", "s1", "Bath", date(2026, 6, 8), 3500), // Monday, next week
	}

	rows := aggregate.ByDimension(appts, aggregate.DimWeek, testContext())
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-06-01", rows[0].DimensionValue)
	assert.Len(t, rows[0].MatchingIDs, 2)
	assert.Equal(t, "2026-06-08", rows[1].DimensionValue)
}

func TestByDimension_PaymentMethodViaTransaction(t *testing.T) {
	ctx := testContext()
	ctx.TxnByAppt["a1"] = &normalize.Transaction{ID: "t1", PaymentMethod: normalize.PayCard}

	appts := []normalize.Appointment{
		appt("a1", "s1", "Full Groom", date(2026, 6, 1), 8000),
		appt("a2", "s1", "Bath", date(2026, 6, 2), 3500), // no settled transaction
	}

	rows := aggregate.ByDimension(appts, aggregate.DimPaymentMethod, ctx)
	require.Len(t, rows, 2)

	assert.Equal(t, string(normalize.PayCard), rows[0].DimensionValue)
	assert.Equal(t, aggregate.UnknownBucket, rows[1].DimensionValue)
}

func TestByDimension_DayStaffComposite(t *testing.T) {
	appts := []normalize.Appointment{
		appt("a1", "s1", "Bath", date(2026, 6, 1), 3500),
		appt("a2", "s2", "Bath", date(2026, 6, 1), 4000),
		appt("a3", "s1", "Bath", date(2026, 6, 2), 3500),
	}

	rows := aggregate.ByDimension(appts, aggregate.DimDayStaff, testContext())
	require.Len(t, rows, 3)

	assert.Equal(t, "2026-06-01|Alex", rows[0].DimensionValue)
	assert.Equal(t, "2026-06-01|Sam", rows[1].DimensionValue)
	assert.Equal(t, "2026-06-02|Alex", rows[2].DimensionValue)
}

func TestChartSeries(t *testing.T) {
	current := []aggregate.Row{
		{DimensionValue: "Alex", Metrics: map[string]float64{"netSales": 16000}},
		{DimensionValue: "Sam", Metrics: map[string]float64{"netSales": 9000}},
	}
	previous := []aggregate.Row{
		{DimensionValue: "Alex", Metrics: map[string]float64{"netSales": 12000}},
	}

	points := aggregate.ChartSeries(current, previous, "netSales")
	require.Len(t, points, 2)

	assert.Equal(t, "Alex", points[0].Label)
	assert.Equal(t, float64(16000), points[0].Value)
	require.NotNil(t, points[0].PreviousValue)
	assert.Equal(t, float64(12000), *points[0].PreviousValue)

	assert.Nil(t, points[1].PreviousValue, "no previous bucket at this position")
}
