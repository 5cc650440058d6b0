package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/legalprop/propostas/internal/auth"
	"github.com/legalprop/propostas/internal/proposal"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=report

type Lister interface {
	List(ctx context.Context, principal auth.Principal, c proposal.Criteria) ([]*proposal.Proposal, error)
}

type Service struct {
	proposals Lister
	now       func() time.Time
}

func NewService(proposals Lister) *Service {
	return &Service{proposals: proposals, now: time.Now}
}

func (s *Service) Build(ctx context.Context, principal auth.Principal, period Period) (*Report, error) {
	proposals, err := s.proposals.List(ctx, principal, proposal.Criteria{})
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}

	return Build(proposals, period, s.now()), nil
}

// Export writes the proposals matching c as CSV.
func (s *Service) Export(ctx context.Context, principal auth.Principal, c proposal.Criteria, w io.Writer) error {
	proposals, err := s.proposals.List(ctx, principal, c)
	if err != nil {
		return fmt.Errorf("listing proposals: %w", err)
	}

	return WriteCSV(w, proposals)
}
