package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/http/respond"
)

type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// PrincipalResolver turns an authenticated user into a company-scoped
// principal.
type PrincipalResolver interface {
	Principal(ctx context.Context, userID uuid.UUID) (auth.Principal, error)
}

// Authenticate requires a valid bearer token and stores its user id in the
// request context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, r, auth.ErrUnauthenticated)
				return
			}

			userID, err := v.Verify(token)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// LoadPrincipal resolves the caller's profile. Users without one have not
// registered a company or accepted an invitation yet and are refused.
func LoadPrincipal(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := respond.UserID(w, r)
			if !ok {
				return
			}

			principal, err := resolver.Principal(r.Context(), userID)
			if err != nil {
				if errors.Is(err, company.ErrProfileNotFound) {
					err = fmt.Errorf("%w: %w", auth.ErrForbidden, err)
				}

				respond.Error(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
