package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/legalprop/propostas/internal/client"
)

type ClientsModel struct {
	svc Services

	searchInput textinput.Model
	table       table.Model
	clients     []*client.Client

	loading bool
	err     error
}

func NewClientsModel(svc Services) ClientsModel {
	ti := textinput.New()
	ti.Placeholder = "name or email"
	ti.Prompt = "Search: "
	ti.Width = 40
	ti.Focus()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Email", Width: 32},
			{Title: "WhatsApp", Width: 18},
			{Title: "Since", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return ClientsModel{
		svc:         svc,
		searchInput: ti,
		table:       t,
		loading:     true,
	}
}

func (m ClientsModel) Title() string     { return "Clients" }
func (m ClientsModel) ShortHelp() string { return "Enter: search | Up/Down: scroll | Esc: back" }

func (m ClientsModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.searchCmd(""))
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			m.loading = true
			return m, m.searchCmd(m.searchInput.Value())
		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)

			return m, cmd
		}

	case clientsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	return m, cmd
}

func (m *ClientsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.clients))
	for _, c := range m.clients {
		rows = append(rows, table.Row{
			truncate(c.FullName(), 30),
			truncate(c.Email, 32),
			c.WhatsApp,
			FormatDate(c.CreatedAt),
		})
	}

	m.table.SetRows(rows)
}

func (m ClientsModel) View() string {
	body := m.table.View()

	switch {
	case m.loading:
		body = "Searching..."
	case m.err != nil:
		body = errorStyle(fmt.Sprintf("Error: %v", m.err))
	case len(m.clients) == 0:
		body = "No clients found."
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.searchInput.View(),
		"",
		body,
		lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("%d clients", len(m.clients))),
	))
}

type clientsMsg struct {
	clients []*client.Client
	err     error
}

func (m ClientsModel) searchCmd(term string) tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, err := svc.Clients.List(ctx, svc.Principal.CompanyID, term)

		return clientsMsg{clients: clients, err: err}
	}
}
