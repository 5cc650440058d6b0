package proposal

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("proposal not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrExpired            = errors.New("proposal expired")
	ErrContactUnavailable = errors.New("proposal contact unavailable")
)

type Status string

const (
	StatusPending  Status = "pendente"
	StatusApproved Status = "aprovada"
	StatusRejected Status = "rejeitada"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}

	return false
}

// Terminal statuses accept no further transition.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ReceiverType identifies who receives the anticipated credit.
type ReceiverType string

const (
	ReceiverLawyer     ReceiverType = "advogado"
	ReceiverPlaintiff  ReceiverType = "autor"
	ReceiverPrecatorio ReceiverType = "precatorio"
)

func (r ReceiverType) Valid() bool {
	switch r {
	case ReceiverLawyer, ReceiverPlaintiff, ReceiverPrecatorio:
		return true
	}

	return false
}

// DefaultValidity is how long a proposal can be answered after creation.
const DefaultValidity = 30 * 24 * time.Hour

// Location is Brasília time, used when rendering dates for people. Brazil has
// not observed daylight saving since 2019.
var Location = time.FixedZone("BRT", -3*60*60)

type Proposal struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	ClientID         *uuid.UUID
	ClientName       string
	ClientEmail      string // only set on privileged reads
	ClientPhone      string // only set on privileged reads
	ProcessNumber    string
	OrganizationName string
	CedibleValue     int64 // Amounts in cents
	ProposalValue    int64
	ReceiverType     ReceiverType
	Status           Status
	Description      string
	Assignee         string
	ValidUntil       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Contact holds the recipient's email and phone. It is stored apart from the
// proposal and only read with elevated privilege.
type Contact struct {
	ProposalID uuid.UUID
	Email      string
	Phone      string
}

// WithContact returns a copy of p carrying c's email and phone.
func (p *Proposal) WithContact(c *Contact) *Proposal {
	out := *p
	if c != nil {
		out.ClientEmail = c.Email
		out.ClientPhone = c.Phone
	}

	return &out
}

// Redacted returns a copy of p without contact data.
func (p *Proposal) Redacted() *Proposal {
	out := *p
	out.ClientEmail = ""
	out.ClientPhone = ""

	return &out
}

// Expired reports whether the proposal can no longer be answered at now.
func (p *Proposal) Expired(now time.Time) bool {
	return !p.ValidUntil.IsZero() && now.After(p.ValidUntil)
}
