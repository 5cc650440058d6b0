// Package money converts between integer cents and Brazilian real display strings.
//
// Amounts travel through the system as int64 cents. Display strings follow the
// pt-BR convention: "R$ 1.234,56".
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const symbol = "R$"

var ErrInvalidAmount = errors.New("invalid amount")

var printer = message.NewPrinter(language.BrazilianPortuguese)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// Format renders cents as a BRL display string.
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%s %s,%02d", sign, symbol, printer.Sprintf("%d", cents/100), cents%100)
}

// FormatDigits is the keystroke formatter: every digit in raw is kept, in order,
// and the result is read as cents. Input without digits, or with more digits
// than fit in int64, renders R$ 0,00.
func FormatDigits(raw string) string {
	cents, err := ParseDigits(raw)
	if err != nil {
		return Format(0)
	}

	return Format(cents)
}

// ParseDigits reads the digits of raw, in order, as cents. Input without
// digits is zero.
func ParseDigits(raw string) (int64, error) {
	digits := onlyDigits(raw)
	if digits == "" {
		return 0, nil
	}

	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	return cents, nil
}

// Parse reads a display string back into cents. Only digits and the decimal
// comma are significant; grouping dots, the currency symbol and spaces are
// discarded. An empty or digit-less string is zero.
func Parse(display string) (int64, error) {
	var b strings.Builder

	commas := 0

	for _, r := range display {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			commas++

			b.WriteRune('.')
		}
	}

	clean := b.String()
	if commas > 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, display)
	}

	if strings.Trim(clean, ".") == "" {
		return 0, nil
	}

	clean = strings.TrimSuffix(clean, ".")
	if strings.HasPrefix(clean, ".") {
		clean = "0" + clean
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, display)
	}

	if d.Mul(hundred).Round(0).Cmp(maxCents) > 0 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, display)
	}

	return ToCents(d), nil
}

// ToCents converts a decimal amount in reais to cents, rounding half away from zero.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// ToDecimal converts cents to a decimal amount in reais.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func onlyDigits(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
