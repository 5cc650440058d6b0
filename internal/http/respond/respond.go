// Package respond writes JSON responses and maps domain errors to HTTP status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/settings"
	"github.com/legalprop/propostas/internal/team"
	"github.com/legalprop/propostas/internal/validation"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error    string               `json:"error"`
	Problems []validation.Problem `json:"problems,omitempty"`
}

func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// statuses is checked in order; the first match wins. Its message is the
// sentinel's, so wrapped causes never reach the client.
var statuses = []struct {
	target error
	status int
}{
	{client.ErrInvalidFile, http.StatusBadRequest},
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{proposal.ErrContactUnavailable, http.StatusForbidden},
	{proposal.ErrNotFound, http.StatusNotFound},
	{client.ErrNotFound, http.StatusNotFound},
	{company.ErrNotFound, http.StatusNotFound},
	{company.ErrProfileNotFound, http.StatusNotFound},
	{team.ErrInvitationNotFound, http.StatusNotFound},
	{team.ErrMemberNotFound, http.StatusNotFound},
	{settings.ErrNotFound, http.StatusNotFound},
	{proposal.ErrInvalidTransition, http.StatusConflict},
	{client.ErrDuplicateEmail, http.StatusConflict},
	{company.ErrProfileExists, http.StatusConflict},
	{team.ErrAlreadyMember, http.StatusConflict},
	{team.ErrInvitationNotPending, http.StatusConflict},
	{proposal.ErrExpired, http.StatusGone},
	{team.ErrInvitationExpired, http.StatusGone},
	{team.ErrRateLimited, http.StatusTooManyRequests},
}

// Status returns the HTTP status and client-facing message for err.
func Status(err error) (int, string) {
	if _, ok := validation.As(err); ok {
		return http.StatusBadRequest, "validation failed"
	}

	for _, s := range statuses {
		if errors.Is(err, s.target) {
			return s.status, s.target.Error()
		}
	}

	return http.StatusInternalServerError, "internal error"
}

// Error writes err as a JSON error body. Unexpected errors are logged and
// reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := Status(err)

	resp := errorResponse{Error: msg}
	if verr, ok := validation.As(err); ok {
		resp.Problems = verr.Problems
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	JSON(w, status, resp)
}

// Principal returns the authenticated principal, writing a 401 when there is
// none.
func Principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		Error(w, r, auth.ErrUnauthenticated)
	}

	return p, ok
}

// UserID is Principal for routes reachable before a profile exists.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		Error(w, r, auth.ErrUnauthenticated)
	}

	return id, ok
}
