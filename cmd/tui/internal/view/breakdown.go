package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pawprint-labs/pawprint/internal/report"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/metric"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

type breakdownState int

const (
	breakdownStateTimeframe breakdownState = iota
	breakdownStateDimension
	breakdownStateLoading
	breakdownStateTable
)

type breakdownMsg struct {
	rows []aggregate.Row
	err  error
}

type BreakdownModel struct {
	CommonModel
	svc *report.Service

	state           breakdownState
	timeframePicker TimeframePicker
	filters         period.Filters

	form      *huh.Form
	dimension string
	spinner   spinner.Model

	table table.Model
	rows  []aggregate.Row
	err   error
}

func NewBreakdownModel(svc *report.Service) BreakdownModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "Segment", Width: 24},
		{Title: "Appts", Width: 7},
		{Title: "Net Sales", Width: 12},
		{Title: "Avg Ticket", Width: 12},
		{Title: "No-Show", Width: 9},
		{Title: "Rebook 7d", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(ts)

	return BreakdownModel{
		svc:             svc,
		state:           breakdownStateTimeframe,
		timeframePicker: NewTimeframePicker(),
		filters:         period.DefaultFilters(),
		dimension:       string(aggregate.DimStaff),
		spinner:         s,
		table:           t,
	}
}

func (m BreakdownModel) Title() string { return "Breakdown" }

func (m BreakdownModel) ShortHelp() string {
	switch m.state {
	case breakdownStateTable:
		return "Esc: back | d: change dimension | t: change period"
	case breakdownStateLoading:
		return "Loading..."
	}

	return "Esc: back | Enter: confirm"
}

func (m BreakdownModel) Init() tea.Cmd {
	return nil
}

func (m BreakdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.filters.Preset = tfMsg.Preset
		m.filters.CustomStart = tfMsg.Start
		m.filters.CustomEnd = tfMsg.End
		m.form = m.buildDimensionForm()
		m.state = breakdownStateDimension

		return m, m.form.Init()
	}

	switch m.state {
	case breakdownStateTimeframe:
		return m.updateTimeframe(msg)
	case breakdownStateDimension:
		return m.updateDimension(msg)
	case breakdownStateLoading:
		return m.updateLoading(msg)
	case breakdownStateTable:
		return m.updateTable(msg)
	}

	return m, nil
}

func (m BreakdownModel) buildDimensionForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Group by").
				Options(
					huh.NewOption("Groomer", string(aggregate.DimStaff)),
					huh.NewOption("Service", string(aggregate.DimService)),
					huh.NewOption("Category", string(aggregate.DimCategory)),
					huh.NewOption("Channel", string(aggregate.DimChannel)),
					huh.NewOption("Client type", string(aggregate.DimClientType)),
					huh.NewOption("Payment method", string(aggregate.DimPaymentMethod)),
					huh.NewOption("Pet size", string(aggregate.DimPetSize)),
					huh.NewOption("Day", string(aggregate.DimDay)),
					huh.NewOption("Week", string(aggregate.DimWeek)),
					huh.NewOption("Month", string(aggregate.DimMonth)),
				).
				Value(&m.dimension),
		),
	)
}

func (m BreakdownModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m BreakdownModel) updateDimension(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = breakdownStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = breakdownStateLoading
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.loadTableCmd())
}

func (m BreakdownModel) loadTableCmd() tea.Cmd {
	filters := m.filters
	dim := aggregate.Dimension(m.dimension)

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		rows, err := m.svc.Table(ctx, filters, dim, time.Now())

		return breakdownMsg{rows: rows, err: err}
	}
}

func (m BreakdownModel) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(breakdownMsg); ok {
		m.state = breakdownStateTable
		m.rows = result.rows
		m.err = result.err
		m.refreshTable()

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m *BreakdownModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, row := range m.rows {
		rows = append(rows, table.Row{
			row.DimensionValue,
			fmt.Sprintf("%.0f", row.Metrics["appointments"]),
			FormatMetric(row.Metrics["netSales"], metric.FormatMoney),
			FormatMetric(row.Metrics["averageTicket"], metric.FormatMoney),
			FormatMetric(row.Metrics["noShowRate"], metric.FormatPercent),
			FormatMetric(row.Metrics["rebookRate7d"], metric.FormatPercent),
		})
	}

	m.table.SetRows(rows)
}

func (m BreakdownModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "d":
			m.form = m.buildDimensionForm()
			m.state = breakdownStateDimension

			return m, m.form.Init()
		case "t":
			m.state = breakdownStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BreakdownModel) View() string {
	switch m.state {
	case breakdownStateTimeframe:
		return m.timeframePicker.View()
	case breakdownStateDimension:
		return m.form.View()
	case breakdownStateLoading:
		return fmt.Sprintf("%s Crunching numbers...", m.spinner.View())
	case breakdownStateTable:
		if m.err != nil {
			return fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err)
		}

		return m.table.View()
	}

	return ""
}
