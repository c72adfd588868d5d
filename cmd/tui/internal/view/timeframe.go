package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pawprint-labs/pawprint/internal/report/period"
)

// timeframeChoices is the preset order shown in the picker.
var timeframeChoices = []period.Preset{
	period.PresetToday,
	period.PresetLast7,
	period.PresetThisWeek,
	period.PresetLast30,
	period.PresetThisMonth,
	period.PresetLastMonth,
	period.PresetQuarter,
	period.PresetYTD,
	period.PresetCustom,
}

func presetLabel(p period.Preset) string {
	switch p {
	case period.PresetToday:
		return "Today"
	case period.PresetLast7:
		return "Last 7 Days"
	case period.PresetThisWeek:
		return "This Week"
	case period.PresetLast30:
		return "Last 30 Days"
	case period.PresetThisMonth:
		return "This Month"
	case period.PresetLastMonth:
		return "Last Month"
	case period.PresetQuarter:
		return "This Quarter"
	case period.PresetYTD:
		return "Year to Date"
	case period.PresetCustom:
		return "Custom Range"
	}

	return string(p)
}

// TimeframeSelectedMsg is emitted when the user has picked a period.
// Start and End are set only for the custom preset.
type TimeframeSelectedMsg struct {
	Preset period.Preset
	Start  time.Time
	End    time.Time
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a reporting period.
type TimeframePicker struct {
	state    timeframeState
	selected int

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateCustom:
			return m.updateCustom(keyMsg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(timeframeChoices)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		preset := timeframeChoices[m.selected]
		if preset == period.PresetCustom {
			m.state = timeframeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Preset: preset}
		}
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		start, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		end, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		if end.Before(start) {
			m.err = fmt.Errorf("end date precedes start date")
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Preset: period.PresetCustom, Start: start, End: end}
		}

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m, nil
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Period:\n\n"

	for i, p := range timeframeChoices {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, presetLabel(p))
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker is in the preset list state.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = 0
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
