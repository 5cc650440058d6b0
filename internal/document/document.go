// Package document renders the printable proposal handed to recipients.
package document

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

//go:generate mockgen -source=document.go -destination=document_mock.go -package=document

// Disclaimer is printed on every document.
const Disclaimer = "A presente proposta não tem força pré-contratual, estando sujeita à aprovação da saúde fiscal do cedente e análise processual."

//go:embed proposal.html
var proposalHTML string

var proposalTemplate = template.Must(template.New("proposal").Parse(proposalHTML))

// Document is an HTML rendering meant to be printed to PDF by the caller.
type Document struct {
	HTML          string
	FileName      string
	ProposalID    uuid.UUID
	ClientName    string
	ProposalValue string
}

// Issuer is the company shown in the footer.
type Issuer struct {
	Name string
	CNPJ string
}

var receiverLabels = map[proposal.ReceiverType]string{
	proposal.ReceiverLawyer:     "Advogado",
	proposal.ReceiverPlaintiff:  "Autor",
	proposal.ReceiverPrecatorio: "Precatório",
}

func FileName(id uuid.UUID) string {
	return "proposta-" + id.String() + ".pdf"
}

// Render builds the document for p. The contact is required; documents are
// never produced without the recipient's details.
func Render(p *proposal.Proposal, c *proposal.Contact, issuer Issuer, now time.Time) (*Document, error) {
	if c == nil {
		return nil, proposal.ErrContactUnavailable
	}

	if issuer.Name == "" {
		issuer.Name = "Empresa"
	}

	receiver, ok := receiverLabels[p.ReceiverType]
	if !ok {
		receiver = string(p.ReceiverType)
	}

	const stamp = "02/01/2006 15:04"

	var buf bytes.Buffer

	err := proposalTemplate.Execute(&buf, map[string]any{
		"ID":            p.ID.String(),
		"ClientName":    p.ClientName,
		"Email":         c.Email,
		"Phone":         c.Phone,
		"ProcessNumber": p.ProcessNumber,
		"Organization":  p.OrganizationName,
		"ReceiverType":  receiver,
		"CedibleValue":  money.Format(p.CedibleValue),
		"ProposalValue": money.Format(p.ProposalValue),
		"Description":   p.Description,
		"Disclaimer":    Disclaimer,
		"Company":       issuer.Name,
		"CNPJ":          issuer.CNPJ,
		"CreatedAt":     p.CreatedAt.In(proposal.Location).Format(stamp),
		"ValidUntil":    p.ValidUntil.In(proposal.Location).Format(stamp),
		"Year":          now.In(proposal.Location).Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	return &Document{
		HTML:          buf.String(),
		FileName:      FileName(p.ID),
		ProposalID:    p.ID,
		ClientName:    p.ClientName,
		ProposalValue: money.Format(p.ProposalValue),
	}, nil
}

type Deliverer interface {
	Deliverable(ctx context.Context, principal auth.Principal, id uuid.UUID) (*proposal.Proposal, *proposal.Contact, error)
}

type CompanyLookup interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error)
}

type Service struct {
	proposals Deliverer
	companies CompanyLookup
	now       func() time.Time
}

func NewService(proposals Deliverer, companies CompanyLookup) *Service {
	return &Service{proposals: proposals, companies: companies, now: time.Now}
}

// Generate renders a company member's proposal. A missing company only
// degrades the footer.
func (s *Service) Generate(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Document, error) {
	p, c, err := s.proposals.Deliverable(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	var issuer Issuer
	if co, err := s.companies.GetCompany(ctx, p.CompanyID); err == nil {
		issuer = Issuer{Name: co.Name, CNPJ: co.CNPJ}
	}

	return Render(p, c, issuer, s.now())
}
