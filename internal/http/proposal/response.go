package proposal

import (
	"time"

	"github.com/google/uuid"

	"github.com/legalprop/propostas/internal/document"
	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

type proposalResponse struct {
	ID                   uuid.UUID             `json:"id"`
	ClientID             *uuid.UUID            `json:"client_id,omitempty"`
	ClientName           string                `json:"client_name"`
	ClientEmail          string                `json:"client_email,omitempty"`
	ClientPhone          string                `json:"client_phone,omitempty"`
	ProcessNumber        string                `json:"process_number"`
	OrganizationName     string                `json:"organization_name"`
	CedibleValue         int64                 `json:"cedible_value"`
	CedibleValueDisplay  string                `json:"cedible_value_display"`
	ProposalValue        int64                 `json:"proposal_value"`
	ProposalValueDisplay string                `json:"proposal_value_display"`
	ReceiverType         proposal.ReceiverType `json:"receiver_type"`
	Status               proposal.Status       `json:"status"`
	Description          string                `json:"description"`
	Assignee             string                `json:"assignee"`
	ValidUntil           time.Time             `json:"valid_until"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

func toResponse(p *proposal.Proposal) proposalResponse {
	return proposalResponse{
		ID:                   p.ID,
		ClientID:             p.ClientID,
		ClientName:           p.ClientName,
		ClientEmail:          p.ClientEmail,
		ClientPhone:          p.ClientPhone,
		ProcessNumber:        p.ProcessNumber,
		OrganizationName:     p.OrganizationName,
		CedibleValue:         p.CedibleValue,
		CedibleValueDisplay:  money.Format(p.CedibleValue),
		ProposalValue:        p.ProposalValue,
		ProposalValueDisplay: money.Format(p.ProposalValue),
		ReceiverType:         p.ReceiverType,
		Status:               p.Status,
		Description:          p.Description,
		Assignee:             p.Assignee,
		ValidUntil:           p.ValidUntil,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func toResponseList(ps []*proposal.Proposal) []proposalResponse {
	resp := make([]proposalResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

type contactResponse struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
}

type documentResponse struct {
	Success     bool             `json:"success"`
	HTMLContent string           `json:"html_content"`
	FileName    string           `json:"file_name"`
	Proposal    documentProposal `json:"proposal"`
}

type documentProposal struct {
	ID            uuid.UUID `json:"id"`
	ClientName    string    `json:"client_name"`
	ProposalValue string    `json:"proposal_value"`
}

func toDocumentResponse(d *document.Document) documentResponse {
	return documentResponse{
		Success:     true,
		HTMLContent: d.HTML,
		FileName:    d.FileName,
		Proposal: documentProposal{
			ID:            d.ProposalID,
			ClientName:    d.ClientName,
			ProposalValue: d.ProposalValue,
		},
	}
}
