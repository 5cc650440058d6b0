package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCompanyColumns = `id, name, cnpj, responsible_phone, responsible_email,
	street, number, complement, neighborhood, city, state, zip_code, created_at, updated_at`

func scanCompany(s scanner) (*company.Company, error) {
	var c company.Company
	a := &c.Address

	if err := s.Scan(
		&c.ID, &c.Name, &c.CNPJ, &c.ResponsiblePhone, &c.ResponsibleEmail,
		&a.Street, &a.Number, &a.Complement, &a.Neighborhood, &a.City, &a.State, &a.ZipCode,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	query := `SELECT ` + selectCompanyColumns + ` FROM companies WHERE id = $1`

	c, err := scanCompany(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, company.ErrNotFound
		}

		return nil, fmt.Errorf("getting company: %w", err)
	}

	return c, nil
}

func (s *Store) UpdateCompany(ctx context.Context, c *company.Company) error {
	query := `
		UPDATE companies
		SET name = $1, cnpj = $2, responsible_phone = $3, responsible_email = $4,
			street = $5, number = $6, complement = $7, neighborhood = $8, city = $9,
			state = $10, zip_code = $11, updated_at = $12
		WHERE id = $13
	`

	a := c.Address

	res, err := s.db.ExecContext(ctx, query,
		c.Name, c.CNPJ, c.ResponsiblePhone, c.ResponsibleEmail,
		a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode,
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating company: %w", err)
	}

	return expectOne(res, company.ErrNotFound)
}

// The role column on profiles is a fallback for rows created before
// user_roles existed.
const selectProfile = `
	SELECT p.user_id, p.company_id, p.first_name, p.last_name, p.email,
		COALESCE(ur.role, p.role), p.created_at, p.updated_at
	FROM profiles p
	LEFT JOIN user_roles ur ON ur.user_id = p.user_id
`

func scanProfile(s scanner) (*company.Profile, error) {
	var p company.Profile
	if err := s.Scan(&p.UserID, &p.CompanyID, &p.FirstName, &p.LastName, &p.Email, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) FindProfile(ctx context.Context, userID uuid.UUID) (*company.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, selectProfile+` WHERE p.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, company.ErrProfileNotFound
		}

		return nil, fmt.Errorf("finding profile: %w", err)
	}

	return p, nil
}

func (s *Store) UpdateProfileNames(ctx context.Context, userID uuid.UUID, firstName, lastName string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET first_name = $1, last_name = $2, updated_at = $3 WHERE user_id = $4`,
		firstName, lastName, at, userID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	return expectOne(res, company.ErrProfileNotFound)
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

type registrationTx struct {
	tx *sql.Tx
}

func (s *Store) BeginRegistration(ctx context.Context) (company.RegistrationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning registration tx: %w", err)
	}

	return &registrationTx{tx: dbTx}, nil
}

func (rtx *registrationTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *registrationTx) Rollback() error { return rtx.tx.Rollback() }

func (rtx *registrationTx) CreateCompany(ctx context.Context, c *company.Company) error {
	query := `
		INSERT INTO companies (id, name, cnpj, responsible_phone, responsible_email,
			street, number, complement, neighborhood, city, state, zip_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	a := c.Address

	_, err := rtx.tx.ExecContext(ctx, query,
		c.ID, c.Name, c.CNPJ, c.ResponsiblePhone, c.ResponsibleEmail,
		a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating company: %w", err)
	}

	return nil
}

// CreateProfile writes the profile and its role entry.
func (rtx *registrationTx) CreateProfile(ctx context.Context, p *company.Profile) error {
	_, err := rtx.tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, company_id, first_name, last_name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.UserID, p.CompanyID, p.FirstName, p.LastName, p.Email, p.Role, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return company.ErrProfileExists
		}

		return fmt.Errorf("creating profile: %w", err)
	}

	_, err = rtx.tx.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, created_at) VALUES ($1, $2, $3)`,
		p.UserID, p.Role, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user role: %w", err)
	}

	return nil
}
