package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/report"
)

//go:generate mockgen -source=common.go -destination=common_mock.go -package=view

const dbTimeout = 5 * time.Second

// Services is what the screens call into. Every call runs as Principal.
type Services struct {
	Principal auth.Principal
	Proposals ProposalService
	Clients   ClientService
	Reports   ReportService
}

type ProposalService interface {
	Submit(ctx context.Context, principal auth.Principal, form proposal.Form) (*proposal.Proposal, error)
	List(ctx context.Context, principal auth.Principal, c proposal.Criteria) ([]*proposal.Proposal, error)
	Reassign(ctx context.Context, principal auth.Principal, id uuid.UUID, assignee string) (*proposal.Proposal, error)
	Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error
}

type ClientService interface {
	List(ctx context.Context, companyID uuid.UUID, search string) ([]*client.Client, error)
}

type ReportService interface {
	Build(ctx context.Context, principal auth.Principal, period report.Period) (*report.Report, error)
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DbCtx returns a context with a standard timeout for store operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}
