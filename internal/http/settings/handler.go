package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legalprop/propostas/internal/http/respond"
	"github.com/legalprop/propostas/internal/settings"
)

type Handler struct {
	svc *settings.Service
}

func NewHandler(svc *settings.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Get(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, st)
}

// update replaces the caller's settings. Fields left out of the body are
// reset to their defaults.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	st := settings.Defaults()
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	st, err := h.svc.Update(r.Context(), principal, st)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, st)
}
