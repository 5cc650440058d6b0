package validation

import "github.com/go-playground/validator/v10"

// CNPJ reports whether s is a valid Brazilian company registration number.
// Punctuation is ignored; the two check digits are verified.
func CNPJ(s string) bool {
	d := make([]int, 0, 14)

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			d = append(d, int(r-'0'))
		case r == '.' || r == '/' || r == '-' || r == ' ':
		default:
			return false
		}
	}

	if len(d) != 14 {
		return false
	}

	same := true
	for _, v := range d[1:] {
		if v != d[0] {
			same = false
			break
		}
	}

	if same {
		return false
	}

	return checkDigit(d[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == d[12] &&
		checkDigit(d[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == d[13]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, v := range digits {
		sum += v * weights[i]
	}

	if rem := sum % 11; rem >= 2 {
		return 11 - rem
	}

	return 0
}

func validateCNPJ(fl validator.FieldLevel) bool {
	return CNPJ(fl.Field().String())
}
