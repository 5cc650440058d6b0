package proposal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=proposal

type Repository interface {
	BeginCreate(ctx context.Context) (CreateTx, error)
	ListProposals(ctx context.Context, companyID uuid.UUID) ([]*Proposal, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*Proposal, error)
	// UpdateStatus moves the proposal only if it is still in status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	UpdateAssignee(ctx context.Context, id uuid.UUID, assignee string, at time.Time) error
	DeleteProposal(ctx context.Context, id uuid.UUID) error
}

// CreateTx writes a proposal and its contact atomically.
type CreateTx interface {
	CreateProposal(ctx context.Context, p *Proposal) error
	CreateContact(ctx context.Context, c *Contact) error
	Commit() error
	Rollback() error
}

// ContactRepository reads contact records with elevated privilege.
type ContactRepository interface {
	GetContact(ctx context.Context, proposalID uuid.UUID) (*Contact, error)
	ListContacts(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]*Contact, error)
}

// ClientDirectory resolves and registers CRM clients during submission.
type ClientDirectory interface {
	Get(ctx context.Context, companyID, id uuid.UUID) (*client.Client, error)
	Create(ctx context.Context, params client.CreateParams) (*client.Client, error)
}

// StatusListener is told about every accepted or rejected proposal. It runs
// after the response has been decided and cannot affect it.
type StatusListener func(ctx context.Context, p *Proposal, from Status)

type Service struct {
	repo      Repository
	contacts  ContactRepository
	clients   ClientDirectory
	listeners []StatusListener
	now       func() time.Time
	validity  time.Duration
	opts      ValidateOptions
	timeout   time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithValidity(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.validity = d
		}
	}
}

// WithValueCap rejects proposals offering more than the cedible value.
func WithValueCap(enforce bool) Option {
	return func(s *Service) { s.opts.EnforceValueCap = enforce }
}

func WithStatusListener(l StatusListener) Option {
	return func(s *Service) { s.listeners = append(s.listeners, l) }
}

func NewService(repo Repository, contacts ContactRepository, clients ClientDirectory, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		contacts: contacts,
		clients:  clients,
		now:      time.Now,
		validity: DefaultValidity,
		timeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit validates the form, registers a new client when one was given, and
// stores the proposal with its contact in one transaction. A client created
// here is kept even if storing the proposal fails.
func (s *Service) Submit(ctx context.Context, principal auth.Principal, form Form) (*Proposal, error) {
	if err := form.Validate(s.opts); err != nil {
		return nil, err
	}

	var clientID *uuid.UUID

	switch {
	case form.ExistingClientID != nil:
		c, err := s.clients.Get(ctx, principal.CompanyID, *form.ExistingClientID)
		if err != nil {
			return nil, fmt.Errorf("resolving client: %w", err)
		}

		form.applyClient(c)
		clientID = &c.ID
	case form.NewClient != nil:
		c, err := s.clients.Create(ctx, form.NewClient.params(principal.CompanyID))
		if err != nil {
			if verr, ok := validation.As(err); ok {
				prefixed := &validation.Error{}
				prefixed.Merge("new_client.", verr)

				return nil, prefixed
			}

			return nil, fmt.Errorf("creating client: %w", err)
		}

		form.applyClient(c)
		clientID = &c.ID
	}

	if strings.TrimSpace(form.Assignee) == "" {
		form.Assignee = principal.DisplayName()
	}

	p, contact, err := form.build(principal.CompanyID, s.now(), s.validity)
	if err != nil {
		return nil, err
	}

	p.ClientID = clientID

	ptx, err := s.repo.BeginCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer ptx.Rollback()

	if err := ptx.CreateProposal(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	if err := ptx.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	if err := ptx.Commit(); err != nil {
		return nil, fmt.Errorf("commit proposal: %w", err)
	}

	return p.WithContact(contact), nil
}

// List returns the company's proposals, newest first, narrowed by c. Admins
// see contact data; everyone else gets redacted records so contact fields
// never take part in their search.
func (s *Service) List(ctx context.Context, principal auth.Principal, c Criteria) ([]*Proposal, error) {
	proposals, err := s.repo.ListProposals(ctx, principal.CompanyID)
	if err != nil {
		return nil, err
	}

	if principal.IsAdmin() {
		contacts, err := s.contacts.ListContacts(ctx, principal.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("listing contacts: %w", err)
		}

		for i, p := range proposals {
			proposals[i] = p.WithContact(contacts[p.ID])
		}
	}

	return Filter(proposals, c), nil
}

// Get returns one of the principal's company proposals.
func (s *Service) Get(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Proposal, error) {
	p, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() {
		return p.Redacted(), nil
	}

	c, err := s.contacts.GetContact(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("getting contact: %w", err)
	}

	return p.WithContact(c), nil
}

// Contact returns the recipient's contact record. Admin only.
func (s *Service) Contact(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Contact, error) {
	if err := auth.RequireAdmin(principal); err != nil {
		return nil, err
	}

	if _, err := s.owned(ctx, principal, id); err != nil {
		return nil, err
	}

	return s.lookupContact(ctx, id)
}

// Deliverable returns a proposal together with its contact for server-side
// delivery (email, document). Any member of the owning company may deliver,
// but the contact itself never leaves the server.
func (s *Service) Deliverable(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Proposal, *Contact, error) {
	p, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, nil, err
	}

	c, err := s.lookupContact(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return p, c, nil
}

func (s *Service) lookupContact(ctx context.Context, id uuid.UUID) (*Contact, error) {
	c, err := s.contacts.GetContact(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrContactUnavailable
		}

		return nil, fmt.Errorf("%w: %w", ErrContactUnavailable, err)
	}

	return c, nil
}

// PublicView is what the recipient sees through the share link.
func (s *Service) PublicView(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	return p.Redacted(), nil
}

// Accept is the recipient approving the proposal through the share link.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.transition(ctx, id, StatusApproved)
}

// Reject is the recipient declining the proposal through the share link.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.transition(ctx, id, StatusRejected)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) (*Proposal, error) {
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := p.Transition(to, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to, p.UpdatedAt); err != nil {
		return nil, err
	}

	s.notify(ctx, p, from)

	return p.Redacted(), nil
}

func (s *Service) notify(ctx context.Context, p *Proposal, from Status) {
	for _, l := range s.listeners {
		snapshot := *p

		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("status listener panicked", "proposal_id", snapshot.ID, "panic", r)
				}
			}()

			lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
			defer cancel()

			l(lctx, &snapshot, from)
		}()
	}
}

// Reassign hands the proposal to another team member.
func (s *Service) Reassign(ctx context.Context, principal auth.Principal, id uuid.UUID, assignee string) (*Proposal, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		verr := &validation.Error{}
		verr.Add("assignee", "is required")

		return nil, verr
	}

	p, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	p.Assignee = assignee
	p.UpdatedAt = s.now()

	if err := s.repo.UpdateAssignee(ctx, id, assignee, p.UpdatedAt); err != nil {
		return nil, err
	}

	return p.Redacted(), nil
}

func (s *Service) Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	if _, err := s.owned(ctx, principal, id); err != nil {
		return err
	}

	return s.repo.DeleteProposal(ctx, id)
}

// owned fetches a proposal and hides it from other companies.
func (s *Service) owned(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Proposal, error) {
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.CompanyID != principal.CompanyID {
		return nil, ErrNotFound
	}

	return p, nil
}
