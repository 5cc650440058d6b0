package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/proposal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProposal reads a proposal row.
// Expected column order matches selectProposalColumns.
func scanProposal(s scanner) (*proposal.Proposal, error) {
	var p proposal.Proposal

	var receiver, status string

	if err := s.Scan(
		&p.ID, &p.CompanyID, &p.ClientID, &p.ClientName, &p.ProcessNumber, &p.OrganizationName,
		&p.CedibleValue, &p.ProposalValue, &receiver, &status, &p.Description, &p.Assignee,
		&p.ValidUntil, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.ReceiverType = proposal.ReceiverType(receiver)
	p.Status = proposal.Status(status)

	return &p, nil
}

const selectProposalColumns = `
	id, company_id, client_id, client_name, process_number, organization_name,
	cedible_value, proposal_value, receiver_type, status, description, assignee,
	valid_until, created_at, updated_at
`

func (s *Store) ListProposals(ctx context.Context, companyID uuid.UUID) ([]*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + `
		FROM proposals
		WHERE company_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*proposal.Proposal

	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}

		proposals = append(proposals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating proposals: %w", err)
	}

	return proposals, nil
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + ` FROM proposals WHERE id = $1`

	p, err := scanProposal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, proposal.ErrNotFound
		}

		return nil, fmt.Errorf("getting proposal: %w", err)
	}

	return p, nil
}

// UpdateStatus is a compare-and-set on status so two recipients answering at
// once cannot both win.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to proposal.Status, at time.Time) error {
	query := `
		UPDATE proposals
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		if _, err := s.GetProposal(ctx, id); err != nil {
			return err
		}

		return fmt.Errorf("%w: no longer %s", proposal.ErrInvalidTransition, from)
	}

	return nil
}

func (s *Store) UpdateAssignee(ctx context.Context, id uuid.UUID, assignee string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE proposals SET assignee = $1, updated_at = $2 WHERE id = $3`,
		assignee, at, id,
	)
	if err != nil {
		return fmt.Errorf("updating assignee: %w", err)
	}

	return expectOne(res)
}

// DeleteProposal removes the proposal; its contact goes with it by cascade.
func (s *Store) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting proposal: %w", err)
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return proposal.ErrNotFound
	}

	return nil
}

func (s *Store) GetContact(ctx context.Context, proposalID uuid.UUID) (*proposal.Contact, error) {
	c := proposal.Contact{ProposalID: proposalID}

	err := s.db.QueryRowContext(ctx,
		`SELECT email, phone FROM client_contacts WHERE proposal_id = $1`, proposalID,
	).Scan(&c.Email, &c.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, proposal.ErrNotFound
		}

		return nil, fmt.Errorf("getting contact: %w", err)
	}

	return &c, nil
}

func (s *Store) ListContacts(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]*proposal.Contact, error) {
	query := `
		SELECT cc.proposal_id, cc.email, cc.phone
		FROM client_contacts cc
		JOIN proposals p ON p.id = cc.proposal_id
		WHERE p.company_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := make(map[uuid.UUID]*proposal.Contact)

	for rows.Next() {
		var c proposal.Contact
		if err := rows.Scan(&c.ProposalID, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}

		contacts[c.ProposalID] = &c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}

	return contacts, nil
}

type createTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCreate(ctx context.Context) (proposal.CreateTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning create tx: %w", err)
	}

	return &createTx{tx: dbTx}, nil
}

func (ptx *createTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *createTx) Rollback() error { return ptx.tx.Rollback() }

func (ptx *createTx) CreateProposal(ctx context.Context, p *proposal.Proposal) error {
	query := `
		INSERT INTO proposals (
			id, company_id, client_id, client_name, process_number, organization_name,
			cedible_value, proposal_value, receiver_type, status, description, assignee,
			valid_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := ptx.tx.ExecContext(ctx, query,
		p.ID, p.CompanyID, p.ClientID, p.ClientName, p.ProcessNumber, p.OrganizationName,
		p.CedibleValue, p.ProposalValue, p.ReceiverType, p.Status, p.Description, p.Assignee,
		p.ValidUntil, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating proposal: %w", err)
	}

	return nil
}

func (ptx *createTx) CreateContact(ctx context.Context, contact *proposal.Contact) error {
	_, err := ptx.tx.ExecContext(ctx,
		`INSERT INTO client_contacts (proposal_id, email, phone) VALUES ($1, $2, $3)`,
		contact.ProposalID, contact.Email, contact.Phone,
	)
	if err != nil {
		return fmt.Errorf("creating contact: %w", err)
	}

	return nil
}
