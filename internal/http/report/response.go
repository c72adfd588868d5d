package report

import (
	"github.com/pawprint-labs/pawprint/internal/report"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/insight"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/normalize"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

type overviewResponse struct {
	Window         period.Window                 `json:"window"`
	PreviousWindow period.Window                 `json:"previousWindow"`
	KPIs           map[string]kpiResponse        `json:"kpis"`
	Insights       []insight.Insight             `json:"insights"`
	Issues         []normalize.CompletenessIssue `json:"issues"`
}

// kpiResponse is the wire form of a KPI. The zero-previous sentinel is not
// representable in JSON, so DeltaPercent is null and New is set instead.
type kpiResponse struct {
	Current      float64       `json:"current"`
	Previous     float64       `json:"previous"`
	Delta        float64       `json:"delta"`
	DeltaPercent *float64      `json:"deltaPercent"`
	New          bool          `json:"new,omitempty"`
	Format       metric.Format `json:"format"`
}

type tableResponse struct {
	Dimension aggregate.Dimension `json:"dimension"`
	Rows      []aggregate.Row     `json:"rows"`
}

type chartResponse struct {
	Dimension aggregate.Dimension    `json:"dimension"`
	Metric    string                 `json:"metric"`
	Points    []aggregate.ChartPoint `json:"points"`
}

func toOverviewResponse(view *report.Overview) overviewResponse {
	kpis := make(map[string]kpiResponse, len(view.KPIs))
	for id, v := range view.KPIs {
		kpis[id] = toKPIResponse(v)
	}

	return overviewResponse{
		Window:         view.Window,
		PreviousWindow: view.PreviousWindow,
		KPIs:           kpis,
		Insights:       view.Insights,
		Issues:         view.Issues,
	}
}

func toKPIResponse(v metric.KPIValue) kpiResponse {
	resp := kpiResponse{
		Current:  v.Current,
		Previous: v.Previous,
		Delta:    v.Delta,
		Format:   v.Format,
	}

	if v.NewFromZero() {
		resp.New = true
	} else {
		pct := v.DeltaPercent
		resp.DeltaPercent = &pct
	}

	return resp
}
