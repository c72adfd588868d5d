package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pawprint-labs/pawprint/internal/report"
	"github.com/pawprint-labs/pawprint/internal/report/insight"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

type dashboardState int

const (
	dashboardStateTimeframe dashboardState = iota
	dashboardStateOptions
	dashboardStateLoading
	dashboardStateResult
)

// headline KPIs shown as cards, in display order.
var dashboardCards = []struct {
	id    string
	label string
}{
	{"totalSales", "Total Sales"},
	{"netSales", "Net Sales"},
	{"appointments", "Appointments"},
	{"averageTicket", "Avg Ticket"},
	{"noShowRate", "No-Show Rate"},
	{"rebookRate7d", "Rebook 7d"},
	{"newClientRate", "New Clients"},
	{"revenuePerHour", "Revenue / Hr"},
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(20)

	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	deltaUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deltaDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	severityStyles = map[insight.Severity]lipgloss.Style{
		insight.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		insight.SeverityWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		insight.SeverityPositive: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		insight.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
)

type overviewMsg struct {
	view *report.Overview
	err  error
}

type DashboardModel struct {
	CommonModel
	svc *report.Service

	state           dashboardState
	timeframePicker TimeframePicker
	filters         period.Filters

	form    *huh.Form
	basis   string
	spinner spinner.Model

	view *report.Overview
	err  error
}

func NewDashboardModel(svc *report.Service) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DashboardModel{
		svc:             svc,
		state:           dashboardStateTimeframe,
		timeframePicker: NewTimeframePicker(),
		filters:         period.DefaultFilters(),
		basis:           string(period.BasisService),
		spinner:         s,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	switch m.state {
	case dashboardStateResult:
		return "Esc: back | t: change period"
	case dashboardStateLoading:
		return "Loading..."
	}

	return "Esc: back | Enter: confirm"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.filters.Preset = tfMsg.Preset
		m.filters.CustomStart = tfMsg.Start
		m.filters.CustomEnd = tfMsg.End
		m.form = m.buildOptionsForm()
		m.state = dashboardStateOptions

		return m, m.form.Init()
	}

	switch m.state {
	case dashboardStateTimeframe:
		return m.updateTimeframe(msg)
	case dashboardStateOptions:
		return m.updateOptions(msg)
	case dashboardStateLoading:
		return m.updateLoading(msg)
	case dashboardStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m DashboardModel) buildOptionsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Date basis").
				Options(
					huh.NewOption("Service date", string(period.BasisService)),
					huh.NewOption("Checkout date", string(period.BasisCheckout)),
					huh.NewOption("Transaction date", string(period.BasisTransaction)),
				).
				Value(&m.basis),
			huh.NewConfirm().
				Title("Include tips in sales?").
				Value(&m.filters.IncludeTips),
			huh.NewConfirm().
				Title("Include discounted appointments?").
				Value(&m.filters.IncludeDiscounts),
		),
	)
}

func (m DashboardModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m DashboardModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = dashboardStateTimeframe
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

	m.filters.TimeBasis = period.Basis(m.basis)
	m.state = dashboardStateLoading
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.loadOverviewCmd())
}

func (m DashboardModel) loadOverviewCmd() tea.Cmd {
	filters := m.filters

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		view, err := m.svc.Overview(ctx, filters, time.Now())

		return overviewMsg{view: view, err: err}
	}
}

func (m DashboardModel) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(overviewMsg); ok {
		m.state = dashboardStateResult
		m.view = result.view
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m DashboardModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = dashboardStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	switch m.state {
	case dashboardStateTimeframe:
		return m.timeframePicker.View()
	case dashboardStateOptions:
		return m.form.View()
	case dashboardStateLoading:
		return fmt.Sprintf("%s Crunching numbers...", m.spinner.View())
	case dashboardStateResult:
		return m.resultView()
	}

	return ""
}

func (m DashboardModel) resultView() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err)
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("Period: %s to %s (vs %s to %s)\n\n",
		FormatDate(m.view.Window.Start),
		FormatDate(m.view.Window.End.AddDate(0, 0, -1)),
		FormatDate(m.view.PreviousWindow.Start),
		FormatDate(m.view.PreviousWindow.End.AddDate(0, 0, -1)),
	))

	var cards []string

	for _, card := range dashboardCards {
		v, ok := m.view.KPIs[card.id]
		if !ok {
			continue
		}

		delta := FormatDelta(v)
		switch {
		case v.Delta > 0:
			delta = deltaUpStyle.Render(delta)
		case v.Delta < 0:
			delta = deltaDownStyle.Render(delta)
		}

		cards = append(cards, cardStyle.Render(
			cardLabelStyle.Render(card.label)+"\n"+
				FormatMetric(v.Current, v.Format)+"  "+delta,
		))
	}

	for i := 0; i < len(cards); i += 4 {
		end := min(i+4, len(cards))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
		b.WriteString("\n")
	}

	if len(m.view.Insights) > 0 {
		b.WriteString("\nInsights:\n")

		for _, ins := range m.view.Insights {
			style := severityStyles[ins.Severity]
			b.WriteString(fmt.Sprintf("  %s %s\n    %s\n",
				style.Render("["+string(ins.Severity)+"]"),
				ins.Title,
				ins.Description,
			))
		}
	}

	if len(m.view.Issues) > 0 {
		b.WriteString("\nData completeness:\n")

		for _, issue := range m.view.Issues {
			b.WriteString("  • " + issue.Message + "\n")
		}
	}

	return b.String()
}
