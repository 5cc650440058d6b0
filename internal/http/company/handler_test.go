package company_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/company"
	apihttp "github.com/legalprop/propostas/internal/http"
	handler "github.com/legalprop/propostas/internal/http/company"
)

const secret = "test-secret"

var (
	userID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	companyID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newRouter(t *testing.T) (*company.MockRepository, *company.MockRegistrationTx, http.Handler) {
	ctrl := gomock.NewController(t)
	repo := company.NewMockRepository(ctrl)
	tx := company.NewMockRegistrationTx(ctrl)

	svc := company.NewService(repo)
	h := handler.NewHandler(svc)
	verifier := auth.NewVerifier(secret, "")

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(apihttp.Authenticate(verifier))
		h.OnboardingRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(apihttp.LoadPrincipal(svc))
			h.Routes(r)
		})
	})

	return repo, tx, r
}

func request(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	token, err := auth.NewVerifier(secret, "").Sign(userID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func profile(role auth.Role) *company.Profile {
	return &company.Profile{UserID: userID, CompanyID: companyID, FirstName: "Paula", LastName: "Lima", Role: role}
}

const registration = `{
	"first_name": "Paula",
	"last_name": "Lima",
	"company_name": "Lima Advogados",
	"cnpj": "11.222.333/0001-81",
	"responsible_phone": "11 3333-4444",
	"responsible_email": "contato@lima.adv.br",
	"address": {"city": "São Paulo", "state": "SP"}
}`

func TestHandler_Register(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		repo, tx, h := newRouter(t)

		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(nil, company.ErrProfileNotFound)
		repo.EXPECT().BeginRegistration(gomock.Any()).Return(tx, nil)
		tx.EXPECT().CreateCompany(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil)

		rec := serve(h, request(t, http.MethodPost, "/profile", registration))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got struct {
			Created bool             `json:"created"`
			Profile *company.Profile `json:"profile"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.True(t, got.Created)
		assert.Equal(t, auth.RoleAdmin, got.Profile.Role)
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		repo, _, h := newRouter(t)

		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(profile(auth.RoleUser), nil)
		repo.EXPECT().GetCompany(gomock.Any(), companyID).Return(&company.Company{ID: companyID, Name: "Lima Advogados"}, nil)

		rec := serve(h, request(t, http.MethodPost, "/profile", registration))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("InvalidCNPJ", func(t *testing.T) {
		_, _, h := newRouter(t)

		rec := serve(h, request(t, http.MethodPost, "/profile", strings.Replace(registration, "0001-81", "0001-82", 1)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "cnpj")
	})

	t.Run("NoToken", func(t *testing.T) {
		_, _, h := newRouter(t)

		rec := serve(h, httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(registration)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_ProfileRequired(t *testing.T) {
	repo, _, h := newRouter(t)
	repo.EXPECT().FindProfile(gomock.Any(), userID).Return(nil, company.ErrProfileNotFound)

	rec := serve(h, request(t, http.MethodGet, "/company", ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_UpdateCompany(t *testing.T) {
	body := `{"name":"Lima & Reis","cnpj":"11222333000181","responsible_phone":"11 3333-4444","responsible_email":"contato@lima.adv.br"}`

	t.Run("Admin", func(t *testing.T) {
		repo, _, h := newRouter(t)

		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(profile(auth.RoleAdmin), nil)
		repo.EXPECT().GetCompany(gomock.Any(), companyID).Return(&company.Company{ID: companyID, Name: "Lima Advogados"}, nil)
		repo.EXPECT().UpdateCompany(gomock.Any(), gomock.Any()).Return(nil)

		rec := serve(h, request(t, http.MethodPut, "/company", body))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got company.Company
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "Lima & Reis", got.Name)
	})

	t.Run("Member", func(t *testing.T) {
		repo, _, h := newRouter(t)
		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(profile(auth.RoleUser), nil)

		rec := serve(h, request(t, http.MethodPut, "/company", body))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandler_UpdateMe(t *testing.T) {
	repo, _, h := newRouter(t)

	updated := profile(auth.RoleUser)
	updated.FirstName = "Paula R."

	gomock.InOrder(
		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(profile(auth.RoleUser), nil),
		repo.EXPECT().UpdateProfileNames(gomock.Any(), userID, "Paula R.", "Lima", gomock.Any()).Return(nil),
		repo.EXPECT().FindProfile(gomock.Any(), userID).Return(updated, nil),
	)

	rec := serve(h, request(t, http.MethodPatch, "/me", `{"first_name":" Paula R. ","last_name":"Lima"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"first_name":"Paula R."`)
}
