package company

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=company

type Repository interface {
	// FindProfile resolves the effective role from user_roles when present.
	FindProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*Company, error)
	UpdateCompany(ctx context.Context, c *Company) error
	UpdateProfileNames(ctx context.Context, userID uuid.UUID, firstName, lastName string, at time.Time) error
	BeginRegistration(ctx context.Context) (RegistrationTx, error)
}

// RegistrationTx creates a company and its first admin together.
type RegistrationTx interface {
	CreateCompany(ctx context.Context, c *Company) error
	CreateProfile(ctx context.Context, p *Profile) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type Registration struct {
	FirstName        string  `json:"first_name" validate:"required,max=100"`
	LastName         string  `json:"last_name" validate:"required,max=100"`
	Email            string  `json:"email" validate:"omitempty,email"`
	CompanyName      string  `json:"company_name" validate:"required,max=200"`
	CNPJ             string  `json:"cnpj" validate:"required,cnpj"`
	ResponsiblePhone string  `json:"responsible_phone" validate:"required,max=30"`
	ResponsibleEmail string  `json:"responsible_email" validate:"required,email"`
	Address          Address `json:"address"`
}

func (r Registration) normalized() Registration {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.CNPJ = strings.TrimSpace(r.CNPJ)
	r.ResponsiblePhone = strings.TrimSpace(r.ResponsiblePhone)
	r.ResponsibleEmail = strings.ToLower(strings.TrimSpace(r.ResponsibleEmail))
	r.Address.State = strings.ToUpper(strings.TrimSpace(r.Address.State))

	return r
}

type RegisterResult struct {
	Company *Company `json:"company"`
	Profile *Profile `json:"profile"`
	Created bool     `json:"created"`
}

// Register creates a company with userID as its admin. A user who already has
// a profile gets it back unchanged, so retried sign-ups are harmless.
func (s *Service) Register(ctx context.Context, userID uuid.UUID, reg Registration) (*RegisterResult, error) {
	reg = reg.normalized()
	if err := validation.Struct(reg).Err(); err != nil {
		return nil, err
	}

	existing, err := s.existing(ctx, userID)
	if err != nil || existing != nil {
		return existing, err
	}

	now := s.now()
	c := &Company{
		ID:               uuid.New(),
		Name:             reg.CompanyName,
		CNPJ:             reg.CNPJ,
		ResponsiblePhone: reg.ResponsiblePhone,
		ResponsibleEmail: reg.ResponsibleEmail,
		Address:          reg.Address,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	p := &Profile{
		UserID:    userID,
		CompanyID: c.ID,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Role:      auth.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rtx, err := s.repo.BeginRegistration(ctx)
	if err != nil {
		return nil, err
	}
	defer rtx.Rollback()

	if err := rtx.CreateCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	if err := rtx.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, ErrProfileExists) {
			// A concurrent registration won; hand back its result.
			rtx.Rollback()
			return s.existing(ctx, userID)
		}

		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err := rtx.Commit(); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}

	return &RegisterResult{Company: c, Profile: p, Created: true}, nil
}

// existing returns nil, nil when userID has no profile yet.
func (s *Service) existing(ctx context.Context, userID uuid.UUID) (*RegisterResult, error) {
	p, err := s.repo.FindProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{Company: c, Profile: p}, nil
}

// Principal resolves userID to its company-scoped identity.
func (s *Service) Principal(ctx context.Context, userID uuid.UUID) (auth.Principal, error) {
	p, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return auth.Principal{}, err
	}

	return p.Principal(), nil
}

func (s *Service) Profile(ctx context.Context, principal auth.Principal) (*Profile, error) {
	return s.repo.FindProfile(ctx, principal.UserID)
}

func (s *Service) Company(ctx context.Context, principal auth.Principal) (*Company, error) {
	return s.repo.GetCompany(ctx, principal.CompanyID)
}

type CompanyUpdate struct {
	Name             string  `json:"name" validate:"required,max=200"`
	CNPJ             string  `json:"cnpj" validate:"required,cnpj"`
	ResponsiblePhone string  `json:"responsible_phone" validate:"required,max=30"`
	ResponsibleEmail string  `json:"responsible_email" validate:"required,email"`
	Address          Address `json:"address"`
}

// UpdateCompany replaces the company's details. Admins only.
func (s *Service) UpdateCompany(ctx context.Context, principal auth.Principal, upd CompanyUpdate) (*Company, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}

	upd.Name = strings.TrimSpace(upd.Name)
	upd.CNPJ = strings.TrimSpace(upd.CNPJ)
	upd.ResponsiblePhone = strings.TrimSpace(upd.ResponsiblePhone)
	upd.ResponsibleEmail = strings.ToLower(strings.TrimSpace(upd.ResponsibleEmail))
	upd.Address.State = strings.ToUpper(strings.TrimSpace(upd.Address.State))

	if err := validation.Struct(upd).Err(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCompany(ctx, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	c.Name = upd.Name
	c.CNPJ = upd.CNPJ
	c.ResponsiblePhone = upd.ResponsiblePhone
	c.ResponsibleEmail = upd.ResponsibleEmail
	c.Address = upd.Address
	c.UpdatedAt = s.now()

	if err := s.repo.UpdateCompany(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

type ProfileUpdate struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

func (s *Service) UpdateProfile(ctx context.Context, principal auth.Principal, upd ProfileUpdate) (*Profile, error) {
	upd.FirstName = strings.TrimSpace(upd.FirstName)
	upd.LastName = strings.TrimSpace(upd.LastName)

	if err := validation.Struct(upd).Err(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfileNames(ctx, principal.UserID, upd.FirstName, upd.LastName, s.now()); err != nil {
		return nil, err
	}

	return s.repo.FindProfile(ctx, principal.UserID)
}
