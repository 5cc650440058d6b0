// Package company owns tenants and the user profiles that belong to them.
package company

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
)

var (
	ErrNotFound        = errors.New("company not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

type Address struct {
	Street       string `json:"street" validate:"max=200"`
	Number       string `json:"number" validate:"max=20"`
	Complement   string `json:"complement" validate:"max=100"`
	Neighborhood string `json:"neighborhood" validate:"max=100"`
	City         string `json:"city" validate:"max=100"`
	State        string `json:"state" validate:"omitempty,len=2"`
	ZipCode      string `json:"zip_code" validate:"max=9"`
}

type Company struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	CNPJ             string    `json:"cnpj"`
	ResponsiblePhone string    `json:"responsible_phone"`
	ResponsibleEmail string    `json:"responsible_email"`
	Address          Address   `json:"address"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile is a user's membership in exactly one company.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	CompanyID uuid.UUID `json:"company_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) Principal() auth.Principal {
	return auth.Principal{
		UserID:    p.UserID,
		CompanyID: p.CompanyID,
		Role:      p.Role,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
