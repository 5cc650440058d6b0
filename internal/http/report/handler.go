package report

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	proposalhttp "github.com/legalprop/propostas/internal/http/proposal"
	"github.com/legalprop/propostas/internal/http/respond"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.build)
	r.Get("/export.csv", h.export)
}

var periodNames = map[string]report.Period{
	"week":    report.Week,
	"month":   report.Month,
	"quarter": report.Quarter,
	"year":    report.Year,
}

// parsePeriod accepts a name or a day count; blank means the last month.
func parsePeriod(s string) (report.Period, bool) {
	if s == "" {
		return report.Month, true
	}

	if p, ok := periodNames[s]; ok {
		return p, true
	}

	days, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	p := report.Period(days)

	return p, p.Valid()
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	period, ok := parsePeriod(r.URL.Query().Get("period"))
	if !ok {
		respond.BadRequest(w, "period must be one of: week, month, quarter, year, 7, 30, 90, 365")
		return
	}

	rep, err := h.svc.Build(r.Context(), principal, period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, rep)
}

// export takes the same filters as the proposal list.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	c, err := proposalhttp.ParseCriteria(r.URL.Query())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), principal, c, &buf); err != nil {
		respond.Error(w, r, err)
		return
	}

	name := "propostas-" + time.Now().In(proposal.Location).Format(time.DateOnly) + ".csv"

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)

	_, _ = buf.WriteTo(w)
}
