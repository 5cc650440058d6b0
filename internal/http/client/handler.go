package client

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/client"
	"github.com/legalprop/propostas/internal/http/respond"
	"github.com/legalprop/propostas/internal/notify"
)

const maxUpload = 10 << 20

type Handler struct {
	svc *client.Service
}

func NewHandler(svc *client.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/message", h.message)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	var params client.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	params.CompanyID = principal.CompanyID

	c, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	cs, err := h.svc.List(r.Context(), principal.CompanyID, r.URL.Query().Get("search"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(cs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), principal.CompanyID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	var params client.UpdateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	c, err := h.svc.Update(r.Context(), principal.CompanyID, id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), principal.CompanyID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// importCSV accepts the spreadsheet as a multipart "file" field or as the raw
// request body.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	body := io.Reader(r.Body)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			respond.BadRequest(w, "failed to parse form")
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			respond.BadRequest(w, "file field is required")
			return
		}
		defer file.Close()

		body = file
	}

	res, err := h.svc.Import(r.Context(), principal.CompanyID, body)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toImportResponse(res))
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), principal.CompanyID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, notify.ComposeClient(c))
}

func principalAndID(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return principal, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return principal, uuid.Nil, false
	}

	return principal, id, true
}
