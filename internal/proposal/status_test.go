package proposal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalprop/propostas/internal/proposal"
)

func TestTransition(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)

	type testCase struct {
		name    string
		from    proposal.Status
		to      proposal.Status
		wantErr error
	}

	tests := []testCase{
		{name: "PendingToApproved", from: proposal.StatusPending, to: proposal.StatusApproved},
		{name: "PendingToRejected", from: proposal.StatusPending, to: proposal.StatusRejected},
		{name: "PendingToPending", from: proposal.StatusPending, to: proposal.StatusPending, wantErr: proposal.ErrInvalidTransition},
		{name: "ApprovedToRejected", from: proposal.StatusApproved, to: proposal.StatusRejected, wantErr: proposal.ErrInvalidTransition},
		{name: "RejectedToApproved", from: proposal.StatusRejected, to: proposal.StatusApproved, wantErr: proposal.ErrInvalidTransition},
		{name: "ApprovedToPending", from: proposal.StatusApproved, to: proposal.StatusPending, wantErr: proposal.ErrInvalidTransition},
		{name: "UnknownTarget", from: proposal.StatusPending, to: "arquivada", wantErr: proposal.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &proposal.Proposal{
				Status:     tt.from,
				CreatedAt:  created,
				UpdatedAt:  created,
				ValidUntil: created.Add(proposal.DefaultValidity),
			}

			err := p.Transition(tt.to, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, p.Status)
				assert.Equal(t, created, p.UpdatedAt)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, p.Status)
			assert.Equal(t, now, p.UpdatedAt)
		})
	}
}

func TestTransition_Expired(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := &proposal.Proposal{
		Status:     proposal.StatusPending,
		CreatedAt:  created,
		ValidUntil: created.Add(proposal.DefaultValidity),
	}

	err := p.Transition(proposal.StatusApproved, created.Add(31*24*time.Hour))
	assert.ErrorIs(t, err, proposal.ErrExpired)
	assert.Equal(t, proposal.StatusPending, p.Status)
}

func TestContactCopies(t *testing.T) {
	p := &proposal.Proposal{ClientName: "Ana"}

	hydrated := p.WithContact(&proposal.Contact{Email: "ana@example.com", Phone: "11"})
	assert.Equal(t, "ana@example.com", hydrated.ClientEmail)
	assert.Empty(t, p.ClientEmail, "original must not be mutated")

	redacted := hydrated.Redacted()
	assert.Empty(t, redacted.ClientEmail)
	assert.Empty(t, redacted.ClientPhone)
	assert.Equal(t, "Ana", redacted.ClientName)
}
