// Package auth verifies bearer tokens and carries the authenticated principal
// through request contexts.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}

	return false
}

// Principal is the authenticated user scoped to their company.
type Principal struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      Role
	FirstName string
	LastName  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// DisplayName is used as the default proposal assignee.
func (p Principal) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// RequireAdmin returns ErrForbidden unless p is an admin.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}

	return nil
}

type ctxKey int

const (
	userIDKey ctxKey = iota
	principalKey
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
