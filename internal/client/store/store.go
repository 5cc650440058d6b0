package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/database"
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

// Expected column order: id, company_id, first_name, last_name, email, whatsapp, created_at
func scanClient(s scanner) (*client.Client, error) {
	var c client.Client
	if err := s.Scan(&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email, &c.WhatsApp, &c.CreatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

const selectClientColumns = `id, company_id, first_name, last_name, email, whatsapp, created_at`

const insertClient = `
	INSERT INTO clients (id, company_id, first_name, last_name, email, whatsapp, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	_, err := s.db.ExecContext(ctx, insertClient,
		c.ID, c.CompanyID, c.FirstName, c.LastName, c.Email, c.WhatsApp, c.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return client.ErrDuplicateEmail
		}

		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, companyID, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE id = $1 AND company_id = $2`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, companyID uuid.UUID) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE company_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET first_name = $1, last_name = $2, email = $3, whatsapp = $4
		WHERE id = $5 AND company_id = $6
	`

	res, err := s.db.ExecContext(ctx, query, c.FirstName, c.LastName, c.Email, c.WhatsApp, c.ID, c.CompanyID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return client.ErrDuplicateEmail
		}

		return fmt.Errorf("updating client: %w", err)
	}

	return expectOne(res, client.ErrNotFound)
}

func (s *Store) DeleteClient(ctx context.Context, companyID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	return expectOne(res, client.ErrNotFound)
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}

type importTx struct {
	tx        *sql.Tx
	companyID uuid.UUID
}

// BeginImport serializes imports per company so concurrent uploads cannot
// both insert the same email.
func (s *Store) BeginImport(ctx context.Context, companyID uuid.UUID) (client.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "clients:"+companyID.String()); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, companyID: companyID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(emails) == 0 {
		return found, nil
	}

	rows, err := itx.tx.QueryContext(ctx,
		`SELECT lower(email) FROM clients WHERE company_id = $1 AND lower(email) = ANY($2)`,
		itx.companyID, emails,
	)
	if err != nil {
		return nil, fmt.Errorf("finding existing emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}

		found[email] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating emails: %w", err)
	}

	return found, nil
}

func (itx *importTx) CreateClients(ctx context.Context, clients []*client.Client) error {
	for _, c := range clients {
		_, err := itx.tx.ExecContext(ctx, insertClient,
			c.ID, c.CompanyID, c.FirstName, c.LastName, c.Email, c.WhatsApp, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating client %s: %w", c.Email, err)
		}
	}

	return nil
}
