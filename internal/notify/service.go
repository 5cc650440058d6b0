package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/mail"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=notify

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const dateLayout = "02/01/2006"

type CompanyLookup interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error)
}

// Service delivers proposal emails and tells companies when a recipient
// answers.
type Service struct {
	mailer    mail.Mailer
	companies CompanyLookup
	baseURL   string
}

func NewService(mailer mail.Mailer, companies CompanyLookup, baseURL string) *Service {
	return &Service{mailer: mailer, companies: companies, baseURL: baseURL}
}

// SendProposal emails p to the address in c and returns the composed texts.
func (s *Service) SendProposal(ctx context.Context, p *proposal.Proposal, c *proposal.Contact) (Message, error) {
	if c == nil || c.Email == "" {
		return Message{}, proposal.ErrContactUnavailable
	}

	full := p.WithContact(c)
	msg := Compose(full, s.baseURL)

	html, err := render("proposal.html", map[string]any{
		"Subject":       msg.Subject,
		"ClientName":    full.ClientName,
		"Process":       orNA(full.ProcessNumber),
		"Organization":  full.OrganizationName,
		"CedibleValue":  money.Format(full.CedibleValue),
		"ProposalValue": money.Format(full.ProposalValue),
		"ValidUntil":    full.ValidUntil.In(proposal.Location).Format(dateLayout),
		"Link":          msg.ShareURL,
		"Signature":     signature,
	})
	if err != nil {
		return Message{}, err
	}

	err = s.mailer.Send(ctx, mail.Message{
		FromName: s.companyName(ctx, p.CompanyID),
		To:       []string{c.Email},
		Subject:  msg.Subject,
		HTML:     html,
	})
	if err != nil {
		return Message{}, fmt.Errorf("sending proposal: %w", err)
	}

	slog.Info("proposal email sent", "proposal_id", p.ID)

	return msg, nil
}

// OnStatusChange emails the company's responsible address about an answered
// proposal. Companies without one are skipped.
func (s *Service) OnStatusChange(ctx context.Context, p *proposal.Proposal, from proposal.Status) {
	c, err := s.companies.GetCompany(ctx, p.CompanyID)
	if err != nil {
		slog.Error("failed to load company for status notification", "proposal_id", p.ID, "error", err)
		return
	}

	if c.ResponsibleEmail == "" {
		return
	}

	headline, verb := "Proposta aprovada", "aprovou"
	if p.Status == proposal.StatusRejected {
		headline, verb = "Proposta rejeitada", "rejeitou"
	}

	subject := headline + " - " + p.ClientName

	html, err := render("status.html", map[string]any{
		"Subject":       subject,
		"Headline":      headline,
		"Verb":          verb,
		"ClientName":    p.ClientName,
		"ProposalValue": money.Format(p.ProposalValue),
		"Process":       orNA(p.ProcessNumber),
		"Assignee":      orNA(p.Assignee),
		"AnsweredAt":    p.UpdatedAt.In(proposal.Location).Format(dateLayout + " 15:04"),
		"Signature":     signature,
	})
	if err != nil {
		slog.Error("failed to render status notification", "proposal_id", p.ID, "error", err)
		return
	}

	err = s.mailer.Send(ctx, mail.Message{
		FromName: c.Name,
		To:       []string{c.ResponsibleEmail},
		Subject:  subject,
		HTML:     html,
	})
	if err != nil {
		slog.Error("failed to send status notification", "proposal_id", p.ID, "error", err)
		return
	}

	slog.Info("status notification sent", "proposal_id", p.ID, "from", from, "to", p.Status)
}

func (s *Service) companyName(ctx context.Context, id uuid.UUID) string {
	c, err := s.companies.GetCompany(ctx, id)
	if err != nil || c.Name == "" {
		return signature
	}

	return c.Name
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	return buf.String(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}
