package report_test

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
	handler "github.com/legalprop/propostas/internal/http/report"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/report"
)

var principal = auth.Principal{UserID: uuid.New(), CompanyID: uuid.New(), Role: auth.RoleAdmin}

func newRouter(t *testing.T) (*report.MockLister, http.Handler) {
	lister := report.NewMockLister(gomock.NewController(t))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/reports", handler.NewHandler(report.NewService(lister)).Routes)

	return lister, r
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func recent(status proposal.Status, value int64) *proposal.Proposal {
	return &proposal.Proposal{
		ID:            uuid.New(),
		ClientName:    "Maria Souza",
		ProposalValue: value,
		Status:        status,
		Assignee:      "Paula Lima",
		CreatedAt:     time.Now().Add(-24 * time.Hour),
	}
}

func TestHandler_Build(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		wantPeriod int
		wantStatus int
	}

	tests := []testCase{
		{"Default", "", 30, http.StatusOK},
		{"ByName", "?period=quarter", 90, http.StatusOK},
		{"ByDays", "?period=7", 7, http.StatusOK},
		{"Invalid", "?period=15", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister, h := newRouter(t)

			if tt.wantStatus == http.StatusOK {
				lister.EXPECT().List(gomock.Any(), principal, proposal.Criteria{}).Return([]*proposal.Proposal{
					recent(proposal.StatusApproved, 100000),
					recent(proposal.StatusPending, 50000),
				}, nil)
			}

			rec := serve(h, "/reports"+tt.query)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			var got struct {
				Period int          `json:"period"`
				Stats  report.Stats `json:"stats"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantPeriod, got.Period)
			assert.Equal(t, 2, got.Stats.Total)
			assert.Equal(t, int64(100000), got.Stats.ApprovedValue)
		})
	}
}

func TestHandler_Export(t *testing.T) {
	lister, h := newRouter(t)

	lister.EXPECT().
		List(gomock.Any(), principal, proposal.Criteria{Statuses: []proposal.Status{proposal.StatusApproved}}).
		Return([]*proposal.Proposal{recent(proposal.StatusApproved, 100000)}, nil)

	rec := serve(h, "/reports/export.csv?status=aprovada")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="propostas-`))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID;Cliente;"))
	assert.Contains(t, lines[1], "Maria Souza")
}

func TestHandler_ExportBadFilter(t *testing.T) {
	_, h := newRouter(t)

	rec := serve(h, "/reports/export.csv?min_value=1,2,3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
