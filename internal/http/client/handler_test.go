package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
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
	"github.com/legalprop/propostas/internal/client"
	handler "github.com/legalprop/propostas/internal/http/client"
)

var companyID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func newRouter(t *testing.T) (*client.MockRepository, *client.MockImportTx, chi.Router) {
	ctrl := gomock.NewController(t)
	repo := client.NewMockRepository(ctrl)
	itx := client.NewMockImportTx(ctrl)

	principal := auth.Principal{UserID: uuid.New(), CompanyID: companyID, Role: auth.RoleUser}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/clients", handler.NewHandler(client.NewService(repo)).Routes)

	return repo, itx, r
}

func serve(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func ana() *client.Client {
	return &client.Client{
		ID:        uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		CompanyID: companyID,
		FirstName: "Ana",
		LastName:  "Lima",
		Email:     "ana@example.com",
		WhatsApp:  "(11) 99999-0000",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(repo *client.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"first_name":"Ana","last_name":"Lima","email":"ANA@example.com","whatsapp":"11999990000"}`,
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *client.Client) error {
					assert.Equal(t, companyID, c.CompanyID)
					assert.Equal(t, "ana@example.com", c.Email)
					return nil
				})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Invalid",
			body:       `{"first_name":"Ana","email":"not-an-email"}`,
			setupMock:  func(*client.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Duplicate",
			body: `{"first_name":"Ana","last_name":"Lima","email":"ana@example.com","whatsapp":"11999990000"}`,
			setupMock: func(repo *client.MockRepository) {
				repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(client.ErrDuplicateEmail)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, r := newRouter(t)
			tt.setupMock(repo)

			rec := serve(r, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_List(t *testing.T) {
	repo, _, r := newRouter(t)

	bruno := ana()
	bruno.ID = uuid.New()
	bruno.FirstName, bruno.Email, bruno.WhatsApp = "Bruno", "bruno@example.com", "(21) 98888-1111"

	repo.EXPECT().ListClients(gomock.Any(), companyID).Return([]*client.Client{ana(), bruno}, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/clients?search=bruno", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Bruno Lima", got[0]["full_name"])
}

func TestHandler_GetNotFound(t *testing.T) {
	repo, _, r := newRouter(t)

	id := uuid.New()
	repo.EXPECT().GetClient(gomock.Any(), companyID, id).Return(nil, client.ErrNotFound)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/clients/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Update(t *testing.T) {
	repo, _, r := newRouter(t)

	c := ana()
	repo.EXPECT().GetClient(gomock.Any(), companyID, c.ID).Return(c, nil)
	repo.EXPECT().UpdateClient(gomock.Any(), gomock.Any()).Return(nil)

	rec := serve(r, httptest.NewRequest(http.MethodPatch, "/clients/"+c.ID.String(), strings.NewReader(`{"last_name":"Souza"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"full_name":"Ana Souza"`)
}

func TestHandler_Delete(t *testing.T) {
	repo, _, r := newRouter(t)

	id := uuid.New()
	repo.EXPECT().DeleteClient(gomock.Any(), companyID, id).Return(nil)

	rec := serve(r, httptest.NewRequest(http.MethodDelete, "/clients/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Message(t *testing.T) {
	repo, _, r := newRouter(t)

	c := ana()
	repo.EXPECT().GetClient(gomock.Any(), companyID, c.ID).Return(c, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/clients/"+c.ID.String()+"/message", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Contato - Ana Lima", got["subject"])
	assert.True(t, strings.HasPrefix(got["whatsapp_url"], "https://wa.me/11999990000?"))
}

const sheet = "Nome;Sobrenome;E-mail;WhatsApp\n" +
	"Ana;Lima;ana@example.com;11999990000\n" +
	"Carla;;carla@example.com;11977770000\n"

func TestHandler_Import(t *testing.T) {
	expectImport := func(repo *client.MockRepository, itx *client.MockImportTx) {
		repo.EXPECT().BeginImport(gomock.Any(), companyID).Return(itx, nil)
		itx.EXPECT().ExistingEmails(gomock.Any(), []string{"ana@example.com"}).Return(map[string]bool{}, nil)
		itx.EXPECT().CreateClients(gomock.Any(), gomock.Len(1)).Return(nil)
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)
	}

	check := func(t *testing.T, rec *httptest.ResponseRecorder) {
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got struct {
			Imported int `json:"imported"`
			Problems []struct {
				Line int `json:"line"`
			} `json:"problems"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, 1, got.Imported)
		require.Len(t, got.Problems, 1)
		assert.Equal(t, 3, got.Problems[0].Line)
	}

	t.Run("RawBody", func(t *testing.T) {
		repo, itx, r := newRouter(t)
		expectImport(repo, itx)

		req := httptest.NewRequest(http.MethodPost, "/clients/import", strings.NewReader(sheet))
		req.Header.Set("Content-Type", "text/csv")

		check(t, serve(r, req))
	})

	t.Run("Multipart", func(t *testing.T) {
		repo, itx, r := newRouter(t)
		expectImport(repo, itx)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "clientes.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(sheet))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/clients/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		check(t, serve(r, req))
	})

	t.Run("NoHeader", func(t *testing.T) {
		_, _, r := newRouter(t)

		rec := serve(r, httptest.NewRequest(http.MethodPost, "/clients/import", strings.NewReader("a;b;c\n1;2;3\n")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
