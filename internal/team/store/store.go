package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/database"
	"github.com/legalprop/propostas/internal/team"
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

const selectInvitationColumns = `id, company_id, invited_by, email, first_name, last_name, phone,
	role, token, status, expires_at, accepted_at, created_at`

func scanInvitation(s scanner) (*team.Invitation, error) {
	var (
		inv        team.Invitation
		acceptedAt sql.NullTime
	)

	if err := s.Scan(
		&inv.ID, &inv.CompanyID, &inv.InvitedBy, &inv.Email, &inv.FirstName, &inv.LastName, &inv.Phone,
		&inv.Role, &inv.Token, &inv.Status, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}

	return &inv, nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *team.Invitation) error {
	query := `
		INSERT INTO team_invitations (id, company_id, invited_by, email, first_name, last_name, phone,
			role, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.CompanyID, inv.InvitedBy, inv.Email, inv.FirstName, inv.LastName, inv.Phone,
		inv.Role, inv.Token, inv.Status, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating invitation: %w", err)
	}

	return nil
}

func (s *Store) GetInvitationByToken(ctx context.Context, token string) (*team.Invitation, error) {
	query := `SELECT ` + selectInvitationColumns + ` FROM team_invitations WHERE token = $1`

	inv, err := scanInvitation(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, team.ErrInvitationNotFound
		}

		return nil, fmt.Errorf("getting invitation: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvitations(ctx context.Context, companyID uuid.UUID) ([]*team.Invitation, error) {
	query := `SELECT ` + selectInvitationColumns + ` FROM team_invitations WHERE company_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*team.Invitation

	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}

		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitations: %w", err)
	}

	return invitations, nil
}

func (s *Store) RevokeInvitation(ctx context.Context, companyID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE team_invitations SET status = 'revoked' WHERE id = $1 AND company_id = $2 AND status = 'pending'`,
		id, companyID,
	)
	if err != nil {
		return fmt.Errorf("revoking invitation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	var exists bool

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM team_invitations WHERE id = $1 AND company_id = $2)`,
		id, companyID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking invitation: %w", err)
	}

	if !exists {
		return team.ErrInvitationNotFound
	}

	return team.ErrInvitationNotPending
}

func (s *Store) ListMembers(ctx context.Context, companyID uuid.UUID) ([]*team.Member, error) {
	query := `
		SELECT p.user_id, p.first_name, p.last_name, p.email, COALESCE(ur.role, p.role), p.created_at
		FROM profiles p
		LEFT JOIN user_roles ur ON ur.user_id = p.user_id
		WHERE p.company_id = $1
		ORDER BY p.first_name, p.last_name
	`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*team.Member

	for rows.Next() {
		var m team.Member
		if err := rows.Scan(&m.UserID, &m.FirstName, &m.LastName, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	return members, nil
}

// UpdateRole upserts the member's user_roles row. Users outside companyID
// are reported as not found.
func (s *Store) UpdateRole(ctx context.Context, companyID, userID uuid.UUID, role auth.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		SELECT user_id, $2 FROM profiles WHERE user_id = $1 AND company_id = $3
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`

	res, err := s.db.ExecContext(ctx, query, userID, role, companyID)
	if err != nil {
		return fmt.Errorf("upserting role: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return team.ErrMemberNotFound
	}

	return nil
}

type acceptTx struct {
	tx *sql.Tx
}

func (s *Store) BeginAccept(ctx context.Context) (team.AcceptTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning accept tx: %w", err)
	}

	return &acceptTx{tx: dbTx}, nil
}

func (atx *acceptTx) Commit() error   { return atx.tx.Commit() }
func (atx *acceptTx) Rollback() error { return atx.tx.Rollback() }

func (atx *acceptTx) LockInvitation(ctx context.Context, token string) (*team.Invitation, error) {
	query := `SELECT ` + selectInvitationColumns + ` FROM team_invitations WHERE token = $1 FOR UPDATE`

	inv, err := scanInvitation(atx.tx.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, team.ErrInvitationNotFound
		}

		return nil, fmt.Errorf("locking invitation: %w", err)
	}

	return inv, nil
}

func (atx *acceptTx) CreateMember(ctx context.Context, companyID uuid.UUID, m *team.Member) error {
	_, err := atx.tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, company_id, first_name, last_name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, m.UserID, companyID, m.FirstName, m.LastName, m.Email, m.Role, m.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return team.ErrAlreadyMember
		}

		return fmt.Errorf("creating member profile: %w", err)
	}

	_, err = atx.tx.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, created_at) VALUES ($1, $2, $3)`,
		m.UserID, m.Role, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating member role: %w", err)
	}

	return nil
}

func (atx *acceptTx) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := atx.tx.ExecContext(ctx,
		`UPDATE team_invitations SET status = 'accepted', accepted_at = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("marking invitation accepted: %w", err)
	}

	return nil
}
