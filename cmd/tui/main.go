package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/legalprop/propostas/cmd/tui/internal/view"
	"github.com/legalprop/propostas/internal/client"
	clientStore "github.com/legalprop/propostas/internal/client/store"
	"github.com/legalprop/propostas/internal/company"
	companyStore "github.com/legalprop/propostas/internal/company/store"
	"github.com/legalprop/propostas/internal/config"
	"github.com/legalprop/propostas/internal/database"
	"github.com/legalprop/propostas/internal/proposal"
	proposalStore "github.com/legalprop/propostas/internal/proposal/store"
	"github.com/legalprop/propostas/internal/report"
)

type model struct {
	services view.Services

	currentView View

	listView    view.ListModel
	createView  view.CreateModel
	clientsView view.ClientsModel
	reportView  view.ReportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewList    View = 1
	ViewCreate  View = 2
	ViewClients View = 3
	ViewReport  View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		slog.Error("TUI_USER_ID must be a user id", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	companies := company.NewService(companyStore.New(db))

	principal, err := companies.Principal(context.Background(), userID)
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		os.Exit(1)
	}

	proposals := proposalStore.New(db)
	clientSvc := client.NewService(clientStore.New(db))
	proposalSvc := proposal.NewService(proposals, proposals, clientSvc,
		proposal.WithValidity(cfg.Proposal.Validity),
		proposal.WithValueCap(cfg.Proposal.EnforceValueCap),
	)

	return model{
		services: view.Services{
			Principal: principal,
			Proposals: proposalSvc,
			Clients:   clientSvc,
			Reports:   report.NewService(proposalSvc),
		},
		currentView: ViewMenu,
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
				m.currentView = ViewList
				m.listView = view.NewListModel(m.services)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewCreate
				m.createView = view.NewCreateModel(m.services)

				return m, m.createView.Init()
			case "3":
				m.currentView = ViewClients
				m.clientsView = view.NewClientsModel(m.services)

				return m, m.clientsView.Init()
			case "4":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.services)

				return m, m.reportView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewCreate:
		var newModel tea.Model
		newModel, cmd = m.createView.Update(msg)
		m.createView = newModel.(view.CreateModel)
	case ViewClients:
		var newModel tea.Model
		newModel, cmd = m.clientsView.Update(msg)
		m.clientsView = newModel.(view.ClientsModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		p := m.services.Principal

		return lipgloss.NewStyle().Padding(2).Render(
			"LegalProp\n" +
				lipgloss.NewStyle().Faint(true).Render(p.FirstName+" "+p.LastName+" ("+string(p.Role)+")") + "\n\n" +
				"1. Proposals\n" +
				"2. New Proposal\n" +
				"3. Clients\n" +
				"4. Reports\n\n" +
				"q. Quit",
		)
	case ViewList:
		return screen(m.listView)
	case ViewCreate:
		return screen(m.createView)
	case ViewClients:
		return screen(m.clientsView)
	case ViewReport:
		return screen(m.reportView)
	}

	return "Unknown View"
}

// screen frames a view with its title and key help.
func screen(v view.View) string {
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
