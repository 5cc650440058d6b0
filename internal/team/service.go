package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/mail"
	"github.com/legalprop/propostas/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=team

type Repository interface {
	CreateInvitation(ctx context.Context, inv *Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*Invitation, error)
	ListInvitations(ctx context.Context, companyID uuid.UUID) ([]*Invitation, error)
	// RevokeInvitation only touches pending invitations.
	RevokeInvitation(ctx context.Context, companyID, id uuid.UUID) error
	BeginAccept(ctx context.Context) (AcceptTx, error)
	ListMembers(ctx context.Context, companyID uuid.UUID) ([]*Member, error)
	UpdateRole(ctx context.Context, companyID, userID uuid.UUID, role auth.Role) error
}

// AcceptTx turns an invitation into a membership atomically.
type AcceptTx interface {
	// LockInvitation loads the invitation for update.
	LockInvitation(ctx context.Context, token string) (*Invitation, error)
	CreateMember(ctx context.Context, companyID uuid.UUID, m *Member) error
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error
	Commit() error
	Rollback() error
}

type CompanyLookup interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error)
}

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Options struct {
	BaseURL string
	TTL     time.Duration
}

type Service struct {
	repo      Repository
	companies CompanyLookup
	mailer    mail.Mailer
	limiter   Limiter
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

func NewService(repo Repository, companies CompanyLookup, mailer mail.Mailer, limiter Limiter, opts Options) *Service {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}

	return &Service{
		repo:      repo,
		companies: companies,
		mailer:    mailer,
		limiter:   limiter,
		baseURL:   opts.BaseURL,
		ttl:       ttl,
		now:       time.Now,
	}
}

type InviteParams struct {
	Email     string    `json:"email" validate:"required,email"`
	FirstName string    `json:"first_name" validate:"required,max=100"`
	LastName  string    `json:"last_name" validate:"required,max=100"`
	Phone     string    `json:"whatsapp_number" validate:"max=30"`
	Role      auth.Role `json:"role" validate:"omitempty,oneof=admin moderator user"`
}

// Invite records a pending invitation and emails its registration link.
// When delivery fails the invitation stays pending and the error is returned.
func (s *Service) Invite(ctx context.Context, principal auth.Principal, params InviteParams) (*Invitation, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)
	params.Phone = strings.TrimSpace(params.Phone)

	if params.Role == "" {
		params.Role = auth.RoleUser
	}

	if err := validation.Struct(params).Err(); err != nil {
		return nil, err
	}

	ok, err := s.limiter.Allow(ctx, principal.UserID.String())
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrRateLimited
	}

	now := s.now()
	inv := &Invitation{
		ID:        uuid.New(),
		CompanyID: principal.CompanyID,
		InvitedBy: principal.UserID,
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Phone:     params.Phone,
		Role:      params.Role,
		Token:     newToken(),
		Status:    InvitationPending,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	companyName := "LegalProp"

	c, err := s.companies.GetCompany(ctx, principal.CompanyID)
	if err != nil {
		slog.Warn("failed to load company for invitation", "company_id", principal.CompanyID, "error", err)
	} else if c.Name != "" {
		companyName = c.Name
	}

	html, err := renderInvitation(inv, principal.DisplayName(), companyName, InvitationLink(s.baseURL, inv.Token), now)
	if err != nil {
		return nil, fmt.Errorf("rendering invitation: %w", err)
	}

	err = s.mailer.Send(ctx, mail.Message{
		FromName: companyName,
		To:       []string{inv.Email},
		Subject:  invitationSubject(companyName),
		HTML:     html,
	})
	if err != nil {
		return inv, fmt.Errorf("sending invitation: %w", err)
	}

	slog.Info("invitation sent", "invitation_id", inv.ID, "company_id", inv.CompanyID)

	return inv, nil
}

// newToken is 32 hex characters backed by a random UUID.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Lookup returns the invitation behind a registration link.
func (s *Service) Lookup(ctx context.Context, token string) (*Invitation, error) {
	inv, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := inv.Usable(s.now()); err != nil {
		return nil, err
	}

	return inv, nil
}

// Accept makes userID a member of the inviting company with the invited role.
func (s *Service) Accept(ctx context.Context, token string, userID uuid.UUID) (*Member, error) {
	atx, err := s.repo.BeginAccept(ctx)
	if err != nil {
		return nil, err
	}
	defer atx.Rollback()

	inv, err := atx.LockInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := inv.Usable(now); err != nil {
		return nil, err
	}

	m := &Member{
		UserID:    userID,
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
		Email:     inv.Email,
		Role:      inv.Role,
		CreatedAt: now,
	}

	if err := atx.CreateMember(ctx, inv.CompanyID, m); err != nil {
		return nil, err
	}

	if err := atx.MarkAccepted(ctx, inv.ID, now); err != nil {
		return nil, err
	}

	if err := atx.Commit(); err != nil {
		return nil, fmt.Errorf("committing acceptance: %w", err)
	}

	return m, nil
}

func (s *Service) Invitations(ctx context.Context, principal auth.Principal) ([]*Invitation, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}

	return s.repo.ListInvitations(ctx, principal.CompanyID)
}

func (s *Service) Revoke(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	if err := auth.RequireAdmin(principal); err != nil {
		return err
	}

	return s.repo.RevokeInvitation(ctx, principal.CompanyID, id)
}

func (s *Service) Members(ctx context.Context, principal auth.Principal) ([]*Member, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, principal.CompanyID)
}

// UpdateRole changes a member's role. Admins cannot change their own role,
// which keeps at least one admin per company.
func (s *Service) UpdateRole(ctx context.Context, principal auth.Principal, userID uuid.UUID, role auth.Role) error {
	if err := auth.RequireAdmin(principal); err != nil {
		return err
	}

	verr := &validation.Error{}
	if !role.Valid() {
		verr.Add("role", "must be one of: admin, moderator, user")
	}

	if userID == principal.UserID {
		verr.Add("user_id", "cannot change your own role")
	}

	if err := verr.Err(); err != nil {
		return err
	}

	if err := s.repo.UpdateRole(ctx, principal.CompanyID, userID, role); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return err
		}

		return fmt.Errorf("updating role: %w", err)
	}

	return nil
}
