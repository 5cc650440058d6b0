package company

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/company"
	"github.com/legalprop/propostas/internal/http/respond"
)

type Handler struct {
	svc *company.Service
}

func NewHandler(svc *company.Service) *Handler {
	return &Handler{svc: svc}
}

// OnboardingRoutes need only an authenticated user; the caller may not have a
// profile yet.
func (h *Handler) OnboardingRoutes(r chi.Router) {
	r.Get("/profile", h.profile)
	r.Post("/profile", h.register)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/company", h.getCompany)
	r.Put("/company", h.updateCompany)
	r.Get("/me", h.me)
	r.Patch("/me", h.updateMe)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.UserID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Profile(r.Context(), auth.Principal{UserID: userID})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}

// register answers 201 when the company was created and 200 when the caller
// already had a profile.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.UserID(w, r)
	if !ok {
		return
	}

	var req company.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.svc.Register(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}

	respond.JSON(w, status, res)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Company(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	var req company.CompanyUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	c, err := h.svc.UpdateCompany(r.Context(), principal, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Profile(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	var req company.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), principal, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, p)
}
