package proposal

import (
	"net/url"
	"strings"
	"time"

	"github.com/legalprop/propostas/internal/money"
	"github.com/legalprop/propostas/internal/proposal"
	"github.com/legalprop/propostas/internal/validation"
)

// ParseCriteria reads list filters from a query string. Statuses and receiver
// types may repeat or be comma separated; dates are YYYY-MM-DD in Brasília
// time; values use the display format ("R$ 1.000,00" or "1000").
func ParseCriteria(q url.Values) (proposal.Criteria, error) {
	verr := &validation.Error{}

	c := proposal.Criteria{Search: strings.TrimSpace(q.Get("search"))}

	for _, s := range list(q, "status") {
		st := proposal.Status(s)
		if !st.Valid() {
			verr.Add("status", "must be one of: pendente, aprovada, rejeitada")
			continue
		}

		c.Statuses = append(c.Statuses, st)
	}

	for _, s := range list(q, "receiver_type") {
		rt := proposal.ReceiverType(s)
		if !rt.Valid() {
			verr.Add("receiver_type", "must be one of: advogado, autor, precatorio")
			continue
		}

		c.ReceiverTypes = append(c.ReceiverTypes, rt)
	}

	c.DateFrom = date(verr, q, "date_from")
	c.DateTo = date(verr, q, "date_to")
	c.MinValue = amount(verr, q, "min_value")
	c.MaxValue = amount(verr, q, "max_value")

	if err := verr.Err(); err != nil {
		return proposal.Criteria{}, err
	}

	return c, nil
}

func list(q url.Values, key string) []string {
	var out []string

	for _, v := range q[key] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

func date(verr *validation.Error, q url.Values, key string) *time.Time {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, proposal.Location)
	if err != nil {
		verr.Add(key, "must be a date in YYYY-MM-DD format")
		return nil
	}

	return &t
}

func amount(verr *validation.Error, q url.Values, key string) *int64 {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil
	}

	cents, err := money.Parse(s)
	if err != nil {
		verr.Add(key, "is not a valid amount")
		return nil
	}

	return &cents
}
