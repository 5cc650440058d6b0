package proposal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/document"
	"github.com/legalprop/propostas/internal/http/respond"
	"github.com/legalprop/propostas/internal/notify"
	"github.com/legalprop/propostas/internal/proposal"
)

type Handler struct {
	svc       *proposal.Service
	notifier  *notify.Service
	documents *document.Service
	baseURL   string
}

func NewHandler(svc *proposal.Service, notifier *notify.Service, documents *document.Service, baseURL string) *Handler {
	return &Handler{svc: svc, notifier: notifier, documents: documents, baseURL: baseURL}
}

// Routes are the authenticated company routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/contact", h.contact)
	r.Patch("/{id}/assignee", h.reassign)
	r.Get("/{id}/message", h.message)
	r.Post("/{id}/send-email", h.sendEmail)
	r.Post("/{id}/document", h.document)
}

// PublicRoutes serve the recipient's share link and need no token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/{id}", h.publicView)
	r.Post("/{id}/accept", h.accept)
	r.Post("/{id}/reject", h.reject)
}

type submitRequest struct {
	ExistingClientID *uuid.UUID          `json:"existing_client_id"`
	NewClient        *proposal.NewClient `json:"new_client"`

	ClientName       string                `json:"client_name"`
	ClientEmail      string                `json:"client_email"`
	ClientPhone      string                `json:"client_phone"`
	ProcessNumber    string                `json:"process_number"`
	OrganizationName string                `json:"organization_name"`
	CedibleValue     string                `json:"cedible_value"`
	ProposalValue    string                `json:"proposal_value"`
	ReceiverType     proposal.ReceiverType `json:"receiver_type"`
	Description      string                `json:"description"`
	Assignee         string                `json:"assignee"`
}

func (req submitRequest) form() proposal.Form {
	return proposal.Form{
		ExistingClientID: req.ExistingClientID,
		NewClient:        req.NewClient,
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		ClientPhone:      req.ClientPhone,
		ProcessNumber:    req.ProcessNumber,
		OrganizationName: req.OrganizationName,
		CedibleValue:     req.CedibleValue,
		ProposalValue:    req.ProposalValue,
		ReceiverType:     req.ReceiverType,
		Description:      req.Description,
		Assignee:         req.Assignee,
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Submit(r.Context(), principal, req.form())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ps, err := h.svc.List(r.Context(), principal, c)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), principal, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Contact(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, contactResponse{ProposalID: c.ProposalID, Email: c.Email, Phone: c.Phone})
}

type reassignRequest struct {
	Assignee string `json:"assignee"`
}

func (h *Handler) reassign(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Reassign(r.Context(), principal, id, req.Assignee)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

// message returns the prepared email and WhatsApp texts. Contact fields are
// filled only for callers allowed to see them.
func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, notify.Compose(p, h.baseURL))
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	p, c, err := h.svc.Deliverable(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if _, err := h.notifier.SendProposal(r.Context(), p, c); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	principal, id, ok := principalAndID(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Generate(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDocumentResponse(doc))
}

type publicResponse struct {
	proposalResponse
	Expired bool `json:"expired"`
}

func (h *Handler) publicView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.PublicView(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, publicResponse{proposalResponse: toResponse(p), Expired: p.Expired(time.Now())})
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, h.svc.Accept)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, h.svc.Reject)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := transition(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

func principalAndID(w http.ResponseWriter, r *http.Request) (principal auth.Principal, id uuid.UUID, ok bool) {
	if principal, ok = respond.Principal(w, r); !ok {
		return principal, uuid.Nil, false
	}

	id, ok = parseID(w, r)

	return principal, id, ok
}
