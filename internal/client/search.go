package client

import "strings"

// Search keeps the clients whose names or email contain term, ignoring case,
// or whose WhatsApp number contains it. A blank term keeps everything.
func Search(clients []*Client, term string) []*Client {
	term = strings.TrimSpace(term)
	if term == "" {
		return clients
	}

	lower := strings.ToLower(term)

	// "(11) 98765-4321" should find "+5511987654321"
	digits := onlyDigits(term)
	phoneLike := digits != "" && digits == strings.Map(dropFormatting, term)

	out := make([]*Client, 0, len(clients))

	for _, c := range clients {
		switch {
		case strings.Contains(strings.ToLower(c.FirstName), lower),
			strings.Contains(strings.ToLower(c.LastName), lower),
			strings.Contains(strings.ToLower(c.FullName()), lower),
			strings.Contains(strings.ToLower(c.Email), lower),
			strings.Contains(c.WhatsApp, term),
			phoneLike && strings.Contains(onlyDigits(c.WhatsApp), digits):
			out = append(out, c)
		}
	}

	return out
}

// dropFormatting removes the punctuation people type around phone numbers.
func dropFormatting(r rune) rune {
	switch r {
	case ' ', '(', ')', '-', '+', '.':
		return -1
	}

	return r
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
}
