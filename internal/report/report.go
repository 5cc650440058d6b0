// Package report aggregates a company's proposals into dashboard figures.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
)

// Period is a trailing window in days.
type Period int

const (
	Week    Period = 7
	Month   Period = 30
	Quarter Period = 90
	Year    Period = 365
)

func (p Period) Valid() bool {
	switch p {
	case Week, Month, Quarter, Year:
		return true
	}

	return false
}

// MonthsShown is how many calendar months the monthly series covers.
const MonthsShown = 6

const unassigned = "Sem responsável"

var monthLabels = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

type Stats struct {
	Total          int     `json:"total_proposals"`
	Approved       int     `json:"approved_proposals"`
	Pending        int     `json:"pending_proposals"`
	Rejected       int     `json:"rejected_proposals"`
	TotalValue     int64   `json:"total_value"`
	ApprovedValue  int64   `json:"approved_value"`
	AvgValue       int64   `json:"avg_value"`
	ConversionRate float64 `json:"conversion_rate"`
}

func (s *Stats) add(p *proposal.Proposal) {
	s.Total++
	s.TotalValue += p.ProposalValue

	switch p.Status {
	case proposal.StatusApproved:
		s.Approved++
		s.ApprovedValue += p.ProposalValue
	case proposal.StatusRejected:
		s.Rejected++
	default:
		s.Pending++
	}
}

// finish derives the average (rounded to the cent) and the conversion rate
// (percent, one decimal place).
func (s *Stats) finish() {
	if s.Total == 0 {
		return
	}

	total := decimal.NewFromInt(int64(s.Total))

	s.AvgValue = money.ToCents(money.ToDecimal(s.TotalValue).Div(total))
	s.ConversionRate, _ = decimal.NewFromInt(int64(s.Approved)).
		Mul(decimal.NewFromInt(100)).
		Div(total).
		Round(1).
		Float64()
}

type MonthBucket struct {
	Month     string `json:"month"`
	Year      int    `json:"year"`
	Proposals int    `json:"proposals"`
	Approved  int    `json:"approved"`
	Value     int64  `json:"value"`
}

type AssigneeStats struct {
	Name string `json:"name"`
	Stats
}

type Report struct {
	Period    Period          `json:"period"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Stats     Stats           `json:"stats"`
	Monthly   []MonthBucket   `json:"monthly"`
	Assignees []AssigneeStats `json:"assignees"`
}

// Build computes the report at now. Totals and the assignee ranking cover the
// trailing period; the monthly series always covers the last MonthsShown
// calendar months, the current one included.
func Build(proposals []*proposal.Proposal, period Period, now time.Time) *Report {
	if !period.Valid() {
		period = Month
	}

	now = now.In(proposal.Location)
	from := now.AddDate(0, 0, -int(period))

	r := &Report{Period: period, From: from, To: now}

	byAssignee := make(map[string]*AssigneeStats)

	for _, p := range proposals {
		if p.CreatedAt.Before(from) || p.CreatedAt.After(now) {
			continue
		}

		r.Stats.add(p)

		name := p.Assignee
		if name == "" {
			name = unassigned
		}

		a, ok := byAssignee[name]
		if !ok {
			a = &AssigneeStats{Name: name}
			byAssignee[name] = a
		}

		a.add(p)
	}

	r.Stats.finish()

	r.Assignees = make([]AssigneeStats, 0, len(byAssignee))
	for _, a := range byAssignee {
		a.finish()
		r.Assignees = append(r.Assignees, *a)
	}

	slices.SortFunc(r.Assignees, func(a, b AssigneeStats) int {
		return cmp.Or(
			cmp.Compare(b.ApprovedValue, a.ApprovedValue),
			cmp.Compare(b.Total, a.Total),
			cmp.Compare(a.Name, b.Name),
		)
	})

	r.Monthly = monthly(proposals, now)

	return r
}

func monthly(proposals []*proposal.Proposal, now time.Time) []MonthBucket {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(MonthsShown - 1), 0)

	buckets := make([]MonthBucket, MonthsShown)
	for i := range buckets {
		m := first.AddDate(0, i, 0)
		buckets[i] = MonthBucket{Month: monthLabels[m.Month()-1], Year: m.Year()}
	}

	for _, p := range proposals {
		created := p.CreatedAt.In(now.Location())
		if created.Before(first) || created.After(now) {
			continue
		}

		i := (created.Year()-first.Year())*12 + int(created.Month()-first.Month())

		buckets[i].Proposals++
		buckets[i].Value += p.ProposalValue

		if p.Status == proposal.StatusApproved {
			buckets[i].Approved++
		}
	}

	return buckets
}
