// Package team manages company members and email invitations.
package team

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
)

var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrAlreadyMember        = errors.New("user already belongs to a company")
	ErrMemberNotFound       = errors.New("member not found")
	ErrRateLimited          = errors.New("too many invitations, try again later")
)

// DefaultInvitationTTL is how long an invitation link stays valid.
const DefaultInvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

type Invitation struct {
	ID         uuid.UUID        `json:"id"`
	CompanyID  uuid.UUID        `json:"company_id"`
	InvitedBy  uuid.UUID        `json:"invited_by"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	Phone      string           `json:"phone,omitempty"`
	Role       auth.Role        `json:"role"`
	Token      string           `json:"-"`
	Status     InvitationStatus `json:"status"`
	ExpiresAt  time.Time        `json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Usable reports why the invitation cannot be accepted at now, if anything.
func (i *Invitation) Usable(now time.Time) error {
	if i.Status != InvitationPending {
		return ErrInvitationNotPending
	}

	if !now.Before(i.ExpiresAt) {
		return ErrInvitationExpired
	}

	return nil
}

type Member struct {
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
