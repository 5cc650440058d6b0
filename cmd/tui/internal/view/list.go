package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateTimeframe
	listStateValues
	listStateReassign
	listStateDelete
)

var (
	statusCycle   = []proposal.Status{"", proposal.StatusPending, proposal.StatusApproved, proposal.StatusRejected}
	receiverCycle = []proposal.ReceiverType{"", proposal.ReceiverLawyer, proposal.ReceiverPlaintiff, proposal.ReceiverPrecatorio}
)

// Filters is the filter bar state of the proposal list.
type Filters struct {
	Search      string
	StatusIdx   int
	ReceiverIdx int
	Frame       Timeframe
	From, To    *time.Time
	MinValue    string
	MaxValue    string
}

// Criteria converts the bar into a proposal filter. Amounts that fail to parse
// are left inactive.
func (f Filters) Criteria() proposal.Criteria {
	c := proposal.Criteria{
		Search:   strings.TrimSpace(f.Search),
		DateFrom: f.From,
		DateTo:   f.To,
	}

	if s := statusCycle[f.StatusIdx%len(statusCycle)]; s != "" {
		c.Statuses = []proposal.Status{s}
	}

	if r := receiverCycle[f.ReceiverIdx%len(receiverCycle)]; r != "" {
		c.ReceiverTypes = []proposal.ReceiverType{r}
	}

	c.MinValue = parseAmount(f.MinValue)
	c.MaxValue = parseAmount(f.MaxValue)

	return c
}

func parseAmount(s string) *int64 {
	if !hasDigit(s) {
		return nil
	}

	cents, err := money.Parse(s)
	if err != nil {
		return nil
	}

	return &cents
}

func validAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := money.Parse(s); err != nil || !hasDigit(s) {
		return errors.New("not a valid amount")
	}

	return nil
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

type ListModel struct {
	svc Services

	state     listState
	table     table.Model
	proposals []*proposal.Proposal
	form      *huh.Form
	search    textinput.Model
	picker    TimeframePicker

	filters Filters
	loading bool
	err     error
	status  string

	// huh writes through these pointers, so they must outlive model copies.
	bind *listBindings
}

type listBindings struct {
	assignee string
	confirm  bool
	minValue string
	maxValue string
}

func NewListModel(svc Services) ListModel {
	columns := []table.Column{
		{Title: "Created", Width: 10},
		{Title: "Client", Width: 24},
		{Title: "Process", Width: 22},
		{Title: "Receiver", Width: 10},
		{Title: "Value", Width: 16},
		{Title: "Status", Width: 9},
		{Title: "Assignee", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Placeholder = "client, process or organization"
	si.Prompt = "Search: "
	si.Width = 40

	return ListModel{
		svc:     svc,
		table:   t,
		search:  si,
		picker:  NewTimeframePicker(TimeframeAll),
		loading: true,
		bind:    &listBindings{},
	}
}

func (m ListModel) Title() string { return "Proposals" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateSearch:
		return "Enter: apply | Esc: cancel"
	case listStateTimeframe:
		return "Enter: select | Esc: cancel"
	case listStateValues, listStateReassign, listStateDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | /: search | s: status | t: receiver | d: date | v: value | a: assignee | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.proposals = msg.proposals
			m.refreshTable()
		}

		return m, nil

	case listActionMsg:
		m.status = msg.done
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Error: %v", msg.err))
		}

		m.browse()

		return m, m.loadCmd()

	case TimeframeSelectedMsg:
		m.filters.Frame, m.filters.From, m.filters.To = msg.Frame, msg.From, msg.To
		m.browse()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateSearch:
		return m.updateSearch(msg)
	case listStateTimeframe:
		return m.updateTimeframe(msg)
	case listStateValues, listStateReassign, listStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m *ListModel) browse() {
	m.state = listStateBrowse
	m.form = nil
	m.search.Blur()
	m.table.Focus()
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "/":
			m.state = listStateSearch
			m.table.Blur()
			m.search.SetValue(m.filters.Search)

			return m, m.search.Focus()
		case "s":
			m.filters.StatusIdx = (m.filters.StatusIdx + 1) % len(statusCycle)
			return m, m.loadCmd()
		case "t":
			m.filters.ReceiverIdx = (m.filters.ReceiverIdx + 1) % len(receiverCycle)
			return m, m.loadCmd()
		case "d":
			m.state = listStateTimeframe
			m.picker = NewTimeframePicker(m.filters.Frame)
			m.table.Blur()

			return m, nil
		case "v":
			return m.enterValues()
		case "a":
			return m.enterReassign()
		case "x":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.browse()
			return m, nil
		case tea.KeyEnter:
			m.filters.Search = m.search.Value()
			m.browse()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m ListModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.browse()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *proposal.Proposal {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.proposals) {
		return nil
	}

	return m.proposals[idx]
}

func (m ListModel) enterValues() (tea.Model, tea.Cmd) {
	m.bind.minValue, m.bind.maxValue = m.filters.MinValue, m.filters.MaxValue
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("min_value").
				Title("Minimum value").
				Placeholder("R$ 0,00").
				Value(&m.bind.minValue).
				Validate(validAmount),

			huh.NewInput().
				Key("max_value").
				Title("Maximum value").
				Placeholder("R$ 0,00").
				Value(&m.bind.maxValue).
				Validate(validAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateValues
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterReassign() (tea.Model, tea.Cmd) {
	p := m.selected()
	if p == nil {
		return m, nil
	}

	m.bind.assignee = p.Assignee
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("assignee").
				Title("Assignee").
				Description("Leave blank to unassign").
				Value(&m.bind.assignee),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateReassign
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) enterDelete() (tea.Model, tea.Cmd) {
	p := m.selected()
	if p == nil {
		return m, nil
	}

	m.bind.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete the proposal for %s?", p.ClientName)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.bind.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.browse()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case listStateValues:
		m.filters.MinValue, m.filters.MaxValue = m.bind.minValue, m.bind.maxValue
		m.browse()
		return m, m.loadCmd()
	case listStateReassign:
		return m, m.reassignCmd()
	case listStateDelete:
		if !m.bind.confirm {
			m.browse()
			return m, nil
		}

		return m, m.deleteCmd()
	}

	return m, nil
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading proposals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to back, r to retry)")
	}

	header := fmt.Sprintf(
		"[s] Status: %s | [t] Receiver: %s | [d] Created: %s | [v] Value: %s",
		activeStyle(statusFilterLabel(m.filters.StatusIdx)),
		activeStyle(receiverFilterLabel(m.filters.ReceiverIdx)),
		activeStyle(m.frameLabel()),
		activeStyle(m.valueLabel()),
	)

	if m.filters.Search != "" {
		header += fmt.Sprintf(" | [/] %q", m.filters.Search)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	footer := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d proposals", len(m.proposals)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		footer,
	)

	var panel string

	switch m.state {
	case listStateSearch:
		content = lipgloss.JoinVertical(lipgloss.Left, m.search.View(), content)
	case listStateTimeframe:
		panel = m.picker.View()
	case listStateValues, listStateReassign, listStateDelete:
		if m.form != nil {
			panel = m.form.View()
		}
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			lipgloss.NewStyle().
				Padding(1, 2).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Width(48).
				Render(panel),
		)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func statusFilterLabel(idx int) string {
	if s := statusCycle[idx%len(statusCycle)]; s != "" {
		return string(s)
	}

	return "All"
}

func receiverFilterLabel(idx int) string {
	if r := receiverCycle[idx%len(receiverCycle)]; r != "" {
		return receiverLabel(r)
	}

	return "All"
}

func (m ListModel) frameLabel() string {
	if m.filters.Frame == TimeframeCustom && m.filters.From != nil && m.filters.To != nil {
		return FormatDate(*m.filters.From) + " - " + FormatDate(*m.filters.To)
	}

	return m.filters.Frame.String()
}

func (m ListModel) valueLabel() string {
	c := m.filters.Criteria()

	switch {
	case c.MinValue != nil && c.MaxValue != nil:
		return money.Format(*c.MinValue) + " - " + money.Format(*c.MaxValue)
	case c.MinValue != nil:
		return ">= " + money.Format(*c.MinValue)
	case c.MaxValue != nil:
		return "<= " + money.Format(*c.MaxValue)
	}

	return "Any"
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.proposals))
	for _, p := range m.proposals {
		rows = append(rows, table.Row{
			FormatDate(p.CreatedAt),
			truncate(p.ClientName, 24),
			p.ProcessNumber,
			receiverLabel(p.ReceiverType),
			money.Format(p.ProposalValue),
			string(p.Status),
			truncate(p.Assignee, 16),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	proposals []*proposal.Proposal
	err       error
}

func (m ListModel) loadCmd() tea.Cmd {
	svc := m.svc
	criteria := m.filters.Criteria()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		proposals, err := svc.Proposals.List(ctx, svc.Principal, criteria)

		return loadListMsg{proposals: proposals, err: err}
	}
}

type listActionMsg struct {
	done string
	err  error
}

func (m ListModel) reassignCmd() tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	svc := m.svc
	id, assignee := p.ID, m.bind.assignee

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := svc.Proposals.Reassign(ctx, svc.Principal, id, assignee)

		return listActionMsg{done: "Assignee updated.", err: err}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	svc := m.svc
	id := p.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := svc.Proposals.Delete(ctx, svc.Principal, id)

		return listActionMsg{done: "Proposal deleted.", err: err}
	}
}
