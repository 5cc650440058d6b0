package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/client"
)

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	WhatsApp  string    `json:"whatsapp"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		WhatsApp:  c.WhatsApp,
		CreatedAt: c.CreatedAt,
	}
}

func toResponseList(cs []*client.Client) []clientResponse {
	resp := make([]clientResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}

type importResponse struct {
	Charset  string                 `json:"charset"`
	Imported int                    `json:"imported"`
	Skipped  int                    `json:"skipped"`
	Problems []client.ImportProblem `json:"problems"`
}

func toImportResponse(res *client.ImportResult) importResponse {
	problems := res.Problems
	if problems == nil {
		problems = []client.ImportProblem{}
	}

	return importResponse{
		Charset:  res.Charset,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Problems: problems,
	}
}
