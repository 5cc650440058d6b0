package proposal

import (
	"slices"
	"strings"
	"time"
)

// Criteria narrows a proposal list. Zero-valued fields are inactive.
type Criteria struct {
	Search        string
	Statuses      []Status
	ReceiverTypes []ReceiverType
	DateFrom      *time.Time
	DateTo        *time.Time
	MinValue      *int64 // cents, over ProposalValue
	MaxValue      *int64
}

// Filter returns the proposals matching every active criterion, preserving
// input order.
func Filter(proposals []*Proposal, c Criteria) []*Proposal {
	if len(proposals) == 0 {
		return proposals
	}

	m := newMatcher(c)

	out := make([]*Proposal, 0, len(proposals))
	for _, p := range proposals {
		if m.match(p) {
			out = append(out, p)
		}
	}

	return out
}

type matcher struct {
	Criteria
	search string
	from   time.Time
	to     time.Time
}

func newMatcher(c Criteria) matcher {
	m := matcher{Criteria: c, search: strings.ToLower(strings.TrimSpace(c.Search))}

	if c.DateFrom != nil {
		m.from = StartOfDay(*c.DateFrom)
	}

	if c.DateTo != nil {
		m.to = EndOfDay(*c.DateTo)
	}

	return m
}

func (m matcher) match(p *Proposal) bool {
	if m.search != "" && !matchesSearch(p, m.search) {
		return false
	}

	if len(m.Statuses) > 0 && !slices.Contains(m.Statuses, p.Status) {
		return false
	}

	if len(m.ReceiverTypes) > 0 && !slices.Contains(m.ReceiverTypes, p.ReceiverType) {
		return false
	}

	if m.DateFrom != nil && p.CreatedAt.Before(m.from) {
		return false
	}

	if m.DateTo != nil && p.CreatedAt.After(m.to) {
		return false
	}

	if m.MinValue != nil && p.ProposalValue < *m.MinValue {
		return false
	}

	if m.MaxValue != nil && p.ProposalValue > *m.MaxValue {
		return false
	}

	return true
}

func matchesSearch(p *Proposal, term string) bool {
	for _, field := range []string{p.ClientName, p.ClientEmail, p.ProcessNumber, p.OrganizationName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}

	return false
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
