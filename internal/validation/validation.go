// Package validation aggregates input problems into a single error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Problem is one rejected field.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects every problem found in an input so the caller can report
// them all at once.
type Error struct {
	Problems []Problem
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+" "+p.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem.
func (e *Error) Add(field, message string) {
	e.Problems = append(e.Problems, Problem{Field: field, Message: message})
}

// Merge appends the problems of other, prefixing each field.
func (e *Error) Merge(prefix string, other *Error) {
	if other == nil {
		return
	}

	for _, p := range other.Problems {
		e.Add(prefix+p.Field, p.Message)
	}
}

// Has reports whether a problem was recorded for field.
func (e *Error) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}

	return false
}

// Err returns e when it holds problems and nil otherwise.
func (e *Error) Err() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}

	return e
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}

	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		if name == "" {
			return f.Name
		}

		return name
	})
	_ = v.RegisterValidation("cnpj", validateCNPJ)

	return v
}

// Struct validates the `validate` tags of s. Field names in the result are the
// json names of the offending fields.
func Struct(s any) *Error {
	err := validate.Struct(s)
	if err == nil {
		return &Error{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Problems: []Problem{{Field: "", Message: err.Error()}}}
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), describe(fe.Tag(), fe.Param()))
	}

	return out
}

// Email reports whether s is a syntactically valid address.
func Email(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func describe(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	case "numeric":
		return "must contain only digits"
	case "cnpj":
		return "must be a valid CNPJ"
	default:
		return "is invalid (" + tag + ")"
	}
}
