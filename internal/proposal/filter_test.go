package proposal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/legalprop/propostas/internal/proposal"
)

func day(d, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

func sampleProposals() []*proposal.Proposal {
	return []*proposal.Proposal{
		{
			ClientName: "Ana Lima", ClientEmail: "ana@example.com", ProcessNumber: "0001234-56.2020.8.26.0100",
			OrganizationName: "TJSP", ProposalValue: 500000, ReceiverType: proposal.ReceiverLawyer,
			Status: proposal.StatusPending, CreatedAt: day(10, 9),
		},
		{
			ClientName: "Bruno Reis", ProcessNumber: "0009999-00.2019.5.02.0001",
			OrganizationName: "TRT2", ProposalValue: 1500000, ReceiverType: proposal.ReceiverPlaintiff,
			Status: proposal.StatusApproved, CreatedAt: day(15, 18),
		},
		{
			ClientName: "Carla Souza", ProposalValue: 2500000, ReceiverType: proposal.ReceiverPrecatorio,
			Status: proposal.StatusRejected, CreatedAt: day(20, 12),
		},
	}
}

func names(ps []*proposal.Proposal) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ClientName)
	}

	return out
}

func TestFilter(t *testing.T) {
	type testCase struct {
		name     string
		criteria proposal.Criteria
		want     []string
	}

	tests := []testCase{
		{
			name:     "EmptyCriteriaIsIdentity",
			criteria: proposal.Criteria{},
			want:     []string{"Ana Lima", "Bruno Reis", "Carla Souza"},
		},
		{
			name:     "SearchCaseInsensitiveName",
			criteria: proposal.Criteria{Search: "BRUNO"},
			want:     []string{"Bruno Reis"},
		},
		{
			name:     "SearchEmail",
			criteria: proposal.Criteria{Search: "example.com"},
			want:     []string{"Ana Lima"},
		},
		{
			name:     "SearchProcessNumber",
			criteria: proposal.Criteria{Search: "2019.5.02"},
			want:     []string{"Bruno Reis"},
		},
		{
			name:     "SearchOrganization",
			criteria: proposal.Criteria{Search: "tjsp"},
			want:     []string{"Ana Lima"},
		},
		{
			name:     "StatusSet",
			criteria: proposal.Criteria{Statuses: []proposal.Status{proposal.StatusApproved, proposal.StatusRejected}},
			want:     []string{"Bruno Reis", "Carla Souza"},
		},
		{
			name:     "ReceiverType",
			criteria: proposal.Criteria{ReceiverTypes: []proposal.ReceiverType{proposal.ReceiverPrecatorio}},
			want:     []string{"Carla Souza"},
		},
		{
			name:     "DateToIncludesWholeDay",
			criteria: proposal.Criteria{DateTo: new(day(15, 0))},
			want:     []string{"Ana Lima", "Bruno Reis"},
		},
		{
			name:     "DateFromStartsAtMidnight",
			criteria: proposal.Criteria{DateFrom: new(day(15, 23))},
			want:     []string{"Bruno Reis", "Carla Souza"},
		},
		{
			name:     "ValueRangeInclusive",
			criteria: proposal.Criteria{MinValue: new(int64(500000)), MaxValue: new(int64(1500000))},
			want:     []string{"Ana Lima", "Bruno Reis"},
		},
		{
			name:     "MinEqualsMax",
			criteria: proposal.Criteria{MinValue: new(int64(1500000)), MaxValue: new(int64(1500000))},
			want:     []string{"Bruno Reis"},
		},
		{
			name: "AllPredicatesAnded",
			criteria: proposal.Criteria{
				Search:   "r",
				Statuses: []proposal.Status{proposal.StatusPending, proposal.StatusApproved},
				MinValue: new(int64(1000000)),
			},
			want: []string{"Bruno Reis"},
		},
		{
			name:     "NoMatch",
			criteria: proposal.Criteria{Search: "zzz"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(proposal.Filter(sampleProposals(), tt.criteria)))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	c := proposal.Criteria{Search: "a", DateTo: new(day(20, 0))}

	once := proposal.Filter(sampleProposals(), c)
	twice := proposal.Filter(once, c)

	assert.Equal(t, once, twice)
}

func TestFilter_EmptyInput(t *testing.T) {
	assert.Empty(t, proposal.Filter(nil, proposal.Criteria{Search: "x"}))
}

func TestEndOfDay(t *testing.T) {
	got := proposal.EndOfDay(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 15, 23, 59, 59, 999000000, time.UTC), got)
}

func TestFilter_DateToLateEvening(t *testing.T) {
	ps := []*proposal.Proposal{
		{ClientName: "Late", CreatedAt: day(15, 23)},
		{ClientName: "Next day", CreatedAt: day(16, 0)},
	}

	got := proposal.Filter(ps, proposal.Criteria{DateFrom: new(day(15, 0)), DateTo: new(day(15, 0))})

	assert.Equal(t, []string{"Late"}, names(got))
}
