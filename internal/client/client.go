package client

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("client not found")
	ErrDuplicateEmail = errors.New("client email already registered")
	ErrInvalidFile    = errors.New("unreadable client spreadsheet")
)

// Client is a CRM record of a person the company negotiates with.
type Client struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	FirstName string
	LastName  string
	Email     string
	WhatsApp  string
	CreatedAt time.Time
}

func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
