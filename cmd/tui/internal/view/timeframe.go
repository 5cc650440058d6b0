package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/legalprop/propostas/internal/proposal"
)

const inputDate = "02/01/2006"

// Timeframe is a predefined or custom creation-date window.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeToday
	TimeframeThisWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeLast90Days
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeToday:
		return "Today"
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeLast90Days:
		return "Last 90 Days"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// DateRange resolves tf at now into whole days in Brasília time. Weeks start
// on Monday. It reports false for TimeframeAll and TimeframeCustom.
func DateRange(tf Timeframe, now time.Time) (time.Time, time.Time, bool) {
	now = now.In(proposal.Location)

	var start, end time.Time

	switch tf {
	case TimeframeToday:
		start, end = now, now
	case TimeframeThisWeek:
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}

		start, end = now.AddDate(0, 0, -offset+1), now
	case TimeframeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, proposal.Location)
		end = now
	case TimeframeLastMonth:
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, proposal.Location)
		end = start.AddDate(0, 1, -1)
	case TimeframeLast90Days:
		start, end = now.AddDate(0, 0, -89), now
	default:
		return time.Time{}, time.Time{}, false
	}

	return proposal.StartOfDay(start), proposal.EndOfDay(end), true
}

// TimeframeSelectedMsg is emitted once a window is chosen. From and To are nil
// for All Time.
type TimeframeSelectedMsg struct {
	Frame Timeframe
	From  *time.Time
	To    *time.Time
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker selects a date window, either from the presets or typed in.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	now func() time.Time
	err error
}

func NewTimeframePicker(selected Timeframe) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "DD/MM/AAAA"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "DD/MM/AAAA"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   selected,
		startInput: si,
		endInput:   ei,
		now:        time.Now,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeAll {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		selected := TimeframeSelectedMsg{Frame: m.selected}
		if start, end, ok := DateRange(m.selected, m.now()); ok {
			selected.From, selected.To = &start, &end
		}

		return m, func() tea.Msg { return selected }
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
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		start, end, err := parseCustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		selected := TimeframeSelectedMsg{Frame: TimeframeCustom, From: &start, To: &end}

		return m, func() tea.Msg { return selected }

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	var c1, c2 tea.Cmd
	m.startInput, c1 = m.startInput.Update(msg)
	m.endInput, c2 = m.endInput.Update(msg)

	return m, tea.Batch(c1, c2)
}

func parseCustomRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(inputDate, from, proposal.Location)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (DD/MM/AAAA)")
	}

	end, err := time.ParseInLocation(inputDate, to, proposal.Location)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (DD/MM/AAAA)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return proposal.StartOfDay(start), proposal.EndOfDay(end), nil
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Created In:\n\n"
	for i := TimeframeAll; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, i.String())
	}

	return s + "\n(Enter to select, Esc to back)" + errStr
}

// IsSelecting reports whether the picker shows the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}
