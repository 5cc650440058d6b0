package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/report"
)

var periods = []report.Period{report.Week, report.Month, report.Quarter, report.Year}

func periodLabel(p report.Period) string {
	switch p {
	case report.Week:
		return "Last 7 days"
	case report.Month:
		return "Last 30 days"
	case report.Quarter:
		return "Last 90 days"
	case report.Year:
		return "Last 365 days"
	}

	return fmt.Sprintf("Last %d days", p)
}

type ReportModel struct {
	svc Services

	periodIdx int
	report    *report.Report
	loading   bool
	err       error
}

func NewReportModel(svc Services) ReportModel {
	return ReportModel{svc: svc, periodIdx: 1, loading: true}
}

func (m ReportModel) Title() string     { return "Reports" }
func (m ReportModel) ShortHelp() string { return "p: period | r: refresh | Esc: back" }

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p":
			m.periodIdx = (m.periodIdx + 1) % len(periods)
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}

	case reportMsg:
		m.loading = false
		m.report, m.err = msg.report, msg.err
	}

	return m, nil
}

func (m ReportModel) View() string {
	header := fmt.Sprintf("[p] Period: %s", activeStyle(periodLabel(periods[m.periodIdx])))

	var body string

	switch {
	case m.loading:
		body = "Building report..."
	case m.err != nil:
		body = errorStyle(fmt.Sprintf("Error: %v", m.err))
	case m.report != nil:
		body = renderReport(m.report)
	}

	return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + body)
}

var boxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

func renderReport(r *report.Report) string {
	s := r.Stats

	totals := boxStyle.Render(fmt.Sprintf(
		"Proposals:  %d\nApproved:   %d\nPending:    %d\nRejected:   %d\n\nTotal:      %s\nApproved:   %s\nAverage:    %s\nConversion: %.1f%%",
		s.Total, s.Approved, s.Pending, s.Rejected,
		money.Format(s.TotalValue), money.Format(s.ApprovedValue), money.Format(s.AvgValue), s.ConversionRate,
	))

	var monthly strings.Builder
	monthly.WriteString("Month     Sent  Appr.  Value\n")
	for _, b := range r.Monthly {
		fmt.Fprintf(&monthly, "%s/%d  %4d  %5d  %s\n", b.Month, b.Year%100, b.Proposals, b.Approved, money.Format(b.Value))
	}

	var assignees strings.Builder
	assignees.WriteString("Assignee              Sent  Conv.\n")
	for _, a := range r.Assignees {
		fmt.Fprintf(&assignees, "%-20s  %4d  %5.1f%%\n", truncate(a.Name, 20), a.Total, a.ConversionRate)
	}

	if len(r.Assignees) == 0 {
		assignees.WriteString("No proposals in this period.\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		totals,
		boxStyle.Render(strings.TrimRight(monthly.String(), "\n")),
		boxStyle.Render(strings.TrimRight(assignees.String(), "\n")),
	)
}

type reportMsg struct {
	report *report.Report
	err    error
}

func (m ReportModel) loadCmd() tea.Cmd {
	svc := m.svc
	period := periods[m.periodIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := svc.Reports.Build(ctx, svc.Principal, period)

		return reportMsg{report: r, err: err}
	}
}
