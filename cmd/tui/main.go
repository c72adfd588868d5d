package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/pawprint-labs/pawprint/cmd/tui/internal/view"
	"github.com/pawprint-labs/pawprint/internal/config"
	"github.com/pawprint-labs/pawprint/internal/database"
	rawStore "github.com/pawprint-labs/pawprint/internal/raw/store"
	"github.com/pawprint-labs/pawprint/internal/report"
)

type model struct {
	reportService *report.Service

	currentView View

	dashboardView view.DashboardModel
	breakdownView view.BreakdownModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewBreakdown View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	reportSvc := report.NewService(rawStore.New(db), cfg.Policy)

	return model{
		reportService: reportSvc,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(reportSvc),
		breakdownView: view.NewBreakdownModel(reportSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.reportService)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewBreakdown
				m.breakdownView = view.NewBreakdownModel(m.reportService)

				return m, m.breakdownView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewBreakdown:
		var newModel tea.Model
		newModel, cmd = m.breakdownView.Update(msg)
		m.breakdownView = newModel.(view.BreakdownModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Pawprint\n\n" +
				"1. Dashboard\n" +
				"2. Breakdown by Dimension\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewBreakdown:
		return m.breakdownView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
