package team

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/http/respond"
	"github.com/legalprop/propostas/internal/team"
)

type Handler struct {
	svc *team.Service
}

func NewHandler(svc *team.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes are the admin team-management routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/members", h.members)
	r.Patch("/members/{userID}/role", h.updateRole)
	r.Get("/invitations", h.invitations)
	r.Post("/invitations", h.invite)
	r.Delete("/invitations/{id}", h.revoke)
}

// Lookup shows a pending invitation to whoever holds its link.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, inv)
}

// Accept joins the authenticated user to the inviting company. The user has
// no profile yet, so only the token subject is needed.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := respond.UserID(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Accept(r.Context(), chi.URLParam(r, "token"), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, m)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	ms, err := h.svc.Members(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, nonNil(ms))
}

type updateRoleRequest struct {
	Role auth.Role `json:"role"`
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respond.BadRequest(w, "invalid user id")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	if err := h.svc.UpdateRole(r.Context(), principal, userID, req.Role); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invitations(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	invs, err := h.svc.Invitations(r.Context(), principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, nonNil(invs))
}

type inviteResponse struct {
	*team.Invitation
	EmailSent bool `json:"email_sent"`
}

// invite answers 201 even when the email could not be delivered; the
// invitation exists and can be resent or shared by other means.
func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	var params team.InviteParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	inv, err := h.svc.Invite(r.Context(), principal, params)
	if err != nil && inv == nil {
		respond.Error(w, r, err)
		return
	}

	if err != nil {
		slog.Warn("invitation created without email", "invitation_id", inv.ID, "error", err)
	}

	respond.JSON(w, http.StatusCreated, inviteResponse{Invitation: inv, EmailSent: err == nil})
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Revoke(r.Context(), principal, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
