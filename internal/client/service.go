package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client

type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, companyID, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, companyID uuid.UUID) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, companyID, id uuid.UUID) error
	BeginImport(ctx context.Context, companyID uuid.UUID) (ImportTx, error)
}

// ImportTx is a bulk insert that either lands completely or not at all.
type ImportTx interface {
	ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error)
	CreateClients(ctx context.Context, clients []*Client) error
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

type CreateParams struct {
	CompanyID uuid.UUID `json:"-"`
	FirstName string    `json:"first_name" validate:"required,max=100"`
	LastName  string    `json:"last_name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	WhatsApp  string    `json:"whatsapp" validate:"required,max=30"`
}

func (p CreateParams) normalized() CreateParams {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.WhatsApp = strings.TrimSpace(p.WhatsApp)

	return p
}

// Validate reports every problem in p.
func (p CreateParams) Validate() error {
	return validation.Struct(p.normalized()).Err()
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	params = params.normalized()
	if err := validation.Struct(params).Err(); err != nil {
		return nil, err
	}

	c := &Client{
		ID:        uuid.New(),
		CompanyID: params.CompanyID,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		WhatsApp:  params.WhatsApp,
		CreatedAt: s.now(),
	}

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, companyID, id)
}

// List returns the company's clients matching search, newest first.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, search string) ([]*Client, error) {
	clients, err := s.repo.ListClients(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return Search(clients, search), nil
}

type UpdateParams struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	WhatsApp  *string `json:"whatsapp" validate:"omitempty,max=30"`
}

func (s *Service) Update(ctx context.Context, companyID, id uuid.UUID, params UpdateParams) (*Client, error) {
	if err := validation.Struct(params).Err(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetClient(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if params.FirstName != nil {
		c.FirstName = strings.TrimSpace(*params.FirstName)
	}

	if params.LastName != nil {
		c.LastName = strings.TrimSpace(*params.LastName)
	}

	if params.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*params.Email))
	}

	if params.WhatsApp != nil {
		c.WhatsApp = strings.TrimSpace(*params.WhatsApp)
	}

	verr := &validation.Error{}
	if c.FirstName == "" {
		verr.Add("first_name", "is required")
	}

	if c.LastName == "" {
		verr.Add("last_name", "is required")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, companyID, id)
}

// ImportProblem explains why a spreadsheet line was not imported.
type ImportProblem struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Charset  string
	Imported int
	Skipped  int
	Problems []ImportProblem
}

// Import creates clients from an uploaded spreadsheet. Invalid lines are
// reported and skipped; emails already registered, or repeated within the
// file, are skipped silently.
func (s *Service) Import(ctx context.Context, companyID uuid.UUID, r io.Reader) (*ImportResult, error) {
	rows, charset, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	res := &ImportResult{Charset: charset}

	var (
		valid  []CreateParams
		emails []string
	)

	for _, row := range rows {
		params := row.Params(companyID).normalized()
		if verr := validation.Struct(params); verr.Err() != nil {
			res.Problems = append(res.Problems, ImportProblem{Line: row.Line, Message: verr.Error()})
			continue
		}

		valid = append(valid, params)
		emails = append(emails, params.Email)
	}

	if len(valid) == 0 {
		return res, nil
	}

	itx, err := s.repo.BeginImport(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.ExistingEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("find existing: %w", err)
	}

	now := s.now()
	seen := make(map[string]bool, len(valid))

	var toCreate []*Client

	for _, params := range valid {
		if existing[params.Email] || seen[params.Email] {
			res.Skipped++
			continue
		}

		seen[params.Email] = true

		toCreate = append(toCreate, &Client{
			ID:        uuid.New(),
			CompanyID: companyID,
			FirstName: params.FirstName,
			LastName:  params.LastName,
			Email:     params.Email,
			WhatsApp:  params.WhatsApp,
			CreatedAt: now,
		})
	}

	if len(toCreate) > 0 {
		if err := itx.CreateClients(ctx, toCreate); err != nil {
			return nil, fmt.Errorf("create clients: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	res.Imported = len(toCreate)

	return res, nil
}
