package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/raw"
	"github.com/pawprint-labs/pawprint/internal/report"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

var ref = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func snapshot(version int64, apptCount int) *raw.Snapshot {
	snap := &raw.Snapshot{Version: version}
	for i := 0; i < apptCount; i++ {
		snap.Appointments = append(snap.Appointments, raw.Appointment{
			ID:        "a" + string(rune('1'+i)),
			ClientID:  "c1",
			GroomerID: "s1",
			Date:      ref.AddDate(0, 0, -(i + 1)),
			Status:    "completed",
			Services: []raw.Service{
				{Name: "Full Groom", Category: "Grooming", Price: 80, DurationMinutes: 90},
			},
			TotalPrice: 80,
		})
	}
	snap.Staff = append(snap.Staff, raw.Staff{ID: "s1", Name: "Alex", IsGroomer: true, Status: "active"})

	return snap
}

func TestService_Overview(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *report.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().
					LoadSnapshot(gomock.Any()).
					Return(snapshot(1, 2), nil)
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().
					LoadSnapshot(gomock.Any()).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := report.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := report.NewService(repo, config.DefaultPolicy())
			got, err := svc.Overview(context.Background(), period.DefaultFilters(), ref)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, period.DefaultFilters().Resolve(ref), got.Window)
			assert.Equal(t, got.Window.Previous(), got.PreviousWindow)
			assert.Equal(t, 2.0, got.KPIs["appointments"].Current)
			assert.Equal(t, float64(16000), got.KPIs["netSales"].Current)
		})
	}
}

func TestService_Overview_MemoizesPerVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snapshot(1, 1), nil),
		// Same version with different contents: the memoized view wins.
		repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snapshot(1, 2), nil),
		// A version bump invalidates every cached view.
		repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snapshot(2, 2), nil),
	)

	svc := report.NewService(repo, config.DefaultPolicy())
	filters := period.DefaultFilters()

	first, err := svc.Overview(context.Background(), filters, ref)
	require.NoError(t, err)
	assert.Equal(t, 1.0, first.KPIs["appointments"].Current)

	cached, err := svc.Overview(context.Background(), filters, ref)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cached.KPIs["appointments"].Current)

	fresh, err := svc.Overview(context.Background(), filters, ref)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fresh.KPIs["appointments"].Current)
}

func TestService_Table(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snapshot(1, 2), nil)

	svc := report.NewService(repo, config.DefaultPolicy())
	rows, err := svc.Table(context.Background(), period.DefaultFilters(), aggregate.DimStaff, ref)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alex", rows[0].DimensionValue)
	assert.Equal(t, 2.0, rows[0].Metrics["appointments"])
}

func TestService_Chart_UnknownMetric(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The metric is validated before the repository is touched.
	repo := report.NewMockRepository(ctrl)

	svc := report.NewService(repo, config.DefaultPolicy())
	_, err := svc.Chart(context.Background(), period.DefaultFilters(), aggregate.DimStaff, "bogus", ref)

	assert.ErrorContains(t, err, "unknown metric")
}

func TestService_Drill(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snapshot(1, 2), nil)

	svc := report.NewService(repo, config.DefaultPolicy())
	res, err := svc.Drill(context.Background(), period.DefaultFilters(), drill.Key{Kind: drill.KindStaff, Value: "Alex"}, ref)

	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, int64(16000), res.NetCents)
}

func TestService_Definitions(t *testing.T) {
	svc := report.NewService(nil, config.DefaultPolicy())

	defs := svc.Definitions()
	require.NotEmpty(t, defs)

	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].ID, defs[i].ID)
	}
}

func TestService_Overview_TipToggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	snap := &raw.Snapshot{Version: 1}
	snap.Appointments = append(snap.Appointments, raw.Appointment{
		ID:       "a1",
		ClientID: "c1",
		Date:     ref.AddDate(0, 0, -1),
		Status:   "completed",
		Services: []raw.Service{
			{Name: "Full Groom", Category: "Grooming", Price: 80, DurationMinutes: 90},
		},
		TotalPrice: 80,
		TipAmount:  20,
	})

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().LoadSnapshot(gomock.Any()).Return(snap, nil).Times(2)

	svc := report.NewService(repo, config.DefaultPolicy())

	withTips, err := svc.Overview(context.Background(), period.DefaultFilters(), ref)
	require.NoError(t, err)
	assert.Equal(t, float64(10000), withTips.KPIs["totalSales"].Current)
	assert.Equal(t, float64(2000), withTips.KPIs["tips"].Current)

	filters := period.DefaultFilters()
	filters.IncludeTips = false

	withoutTips, err := svc.Overview(context.Background(), filters, ref)
	require.NoError(t, err)
	assert.Equal(t, float64(8000), withoutTips.KPIs["totalSales"].Current)
	assert.Zero(t, withoutTips.KPIs["tips"].Current)
}
