package proposal

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/validation"
)

// Form is the raw proposal submission. The recipient is either an existing
// CRM client, a new client created alongside the proposal, or a name and
// email typed directly.
type Form struct {
	ExistingClientID *uuid.UUID
	NewClient        *NewClient

	ClientName       string
	ClientEmail      string
	ClientPhone      string
	ProcessNumber    string
	OrganizationName string
	// Currency fields are display strings such as "R$ 1.234,56".
	CedibleValue  string
	ProposalValue string
	ReceiverType  ReceiverType
	Description   string
	Assignee      string
}

type NewClient struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	WhatsApp  string `json:"whatsapp" validate:"required,max=30"`
}

func (n *NewClient) params(companyID uuid.UUID) client.CreateParams {
	return client.CreateParams{
		CompanyID: companyID,
		FirstName: n.FirstName,
		LastName:  n.LastName,
		Email:     n.Email,
		WhatsApp:  n.WhatsApp,
	}
}

// ValidateOptions tunes the business rules applied on top of the required
// fields.
type ValidateOptions struct {
	EnforceValueCap bool
}

// Validate reports every problem with the form at once. It never touches
// storage.
func (f *Form) Validate(opts ValidateOptions) error {
	verr := &validation.Error{}

	switch {
	case f.ExistingClientID != nil && f.NewClient != nil:
		verr.Add("client", "choose an existing client or register a new one, not both")
	case f.NewClient != nil:
		verr.Merge("new_client.", validation.Struct(f.NewClient))
	case f.ExistingClientID != nil:
		if *f.ExistingClientID == uuid.Nil {
			verr.Add("existing_client_id", "is invalid")
		}
	default:
		if strings.TrimSpace(f.ClientName) == "" {
			verr.Add("client_name", "is required")
		}

		if strings.TrimSpace(f.ClientEmail) == "" {
			verr.Add("client_email", "is required")
		}
	}

	if email := strings.TrimSpace(f.ClientEmail); email != "" && !validation.Email(email) {
		verr.Add("client_email", "must be a valid email address")
	}

	cedible, cedibleOK := requiredAmount(verr, "cedible_value", f.CedibleValue)
	offered, offeredOK := requiredAmount(verr, "proposal_value", f.ProposalValue)

	if opts.EnforceValueCap && cedibleOK && offeredOK && offered > cedible {
		verr.Add("proposal_value", "must not exceed the cedible value")
	}

	if f.ReceiverType != "" && !f.ReceiverType.Valid() {
		verr.Add("receiver_type", "must be one of: advogado, autor, precatorio")
	}

	return verr.Err()
}

func requiredAmount(verr *validation.Error, field, raw string) (int64, bool) {
	if strings.TrimSpace(raw) == "" {
		verr.Add(field, "is required")
		return 0, false
	}

	cents, err := money.Parse(raw)
	if err != nil {
		verr.Add(field, "is not a valid amount")
		return 0, false
	}

	if cents < 0 {
		verr.Add(field, "must not be negative")
		return 0, false
	}

	return cents, true
}

// applyClient fills the recipient fields from a CRM client where the form left
// them blank.
func (f *Form) applyClient(c *client.Client) {
	if strings.TrimSpace(f.ClientName) == "" {
		f.ClientName = c.FullName()
	}

	if strings.TrimSpace(f.ClientEmail) == "" {
		f.ClientEmail = c.Email
	}

	if strings.TrimSpace(f.ClientPhone) == "" {
		f.ClientPhone = c.WhatsApp
	}
}

// build turns a validated form into a pending proposal and its contact record.
func (f *Form) build(companyID uuid.UUID, now time.Time, validity time.Duration) (*Proposal, *Contact, error) {
	cedible, err := money.Parse(f.CedibleValue)
	if err != nil {
		return nil, nil, err
	}

	offered, err := money.Parse(f.ProposalValue)
	if err != nil {
		return nil, nil, err
	}

	receiver := f.ReceiverType
	if receiver == "" {
		receiver = ReceiverLawyer
	}

	p := &Proposal{
		ID:               uuid.New(),
		CompanyID:        companyID,
		ClientName:       strings.TrimSpace(f.ClientName),
		ProcessNumber:    strings.TrimSpace(f.ProcessNumber),
		OrganizationName: strings.TrimSpace(f.OrganizationName),
		CedibleValue:     cedible,
		ProposalValue:    offered,
		ReceiverType:     receiver,
		Status:           StatusPending,
		Description:      strings.TrimSpace(f.Description),
		Assignee:         strings.TrimSpace(f.Assignee),
		ValidUntil:       now.Add(validity),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	c := &Contact{
		ProposalID: p.ID,
		Email:      strings.ToLower(strings.TrimSpace(f.ClientEmail)),
		Phone:      strings.TrimSpace(f.ClientPhone),
	}

	return p, c, nil
}
