package settings_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalprop/propostas/internal/auth"
	handler "github.com/legalprop/propostas/internal/http/settings"
	"github.com/legalprop/propostas/internal/settings"
	"github.com/legalprop/propostas/internal/settings/store"
)

func newRouter() http.Handler {
	principal := auth.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: auth.RoleUser}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/settings", handler.NewHandler(settings.NewService(store.NewMemory())).Routes)

	return r
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, "/settings", strings.NewReader(body)))

	return rec
}

func TestHandler_RoundTrip(t *testing.T) {
	h := newRouter()

	rec := serve(h, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got settings.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, settings.Defaults(), got)

	rec = serve(h, http.MethodPut, `{"theme":"dark","notifications":{"weekly_report":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, http.MethodGet, "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, settings.ThemeDark, got.Theme)
	assert.Equal(t, "pt-BR", got.Language)
	assert.True(t, got.Notifications.WeeklyReport)
	assert.True(t, got.Notifications.Email)
}

func TestHandler_UpdateInvalid(t *testing.T) {
	rec := serve(newRouter(), http.MethodPut, `{"language":"fr-FR"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "language")
}
