package guestmap

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/guestmap/internal/domain"
)

// MaxFieldLength is the maximum length of a name or message in UTF-16 code units.
const MaxFieldLength = 500

// FieldError describes a single rejected draft field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a draft message is rejected. It matches
// domain.ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "ValidationError: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

// Validator checks drafts before anything is sent to the message API.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their JSON name.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("jsmin", func(fl validator.FieldLevel) bool {
		return checkLength(fl, func(n, limit int) bool { return n >= limit })
	})
	_ = v.RegisterValidation("jsmax", func(fl validator.FieldLevel) bool {
		return checkLength(fl, func(n, limit int) bool { return n <= limit })
	})
	return &Validator{validate: v}
}

// JSLength is the length of s as a browser counts it, in UTF-16 code units.
// Characters outside the Basic Multilingual Plane, such as most emoji,
// count twice.
func JSLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func checkLength(fl validator.FieldLevel, ok func(n, limit int) bool) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return ok(JSLength(fl.Field().String()), limit)
}

// Validate checks that both fields hold 1 to 500 characters, counted in
// UTF-16 code units as the message API counts them. The draft is checked as
// typed and never rewritten.
func (v *Validator) Validate(draft domain.DraftMessage) error {
	err := v.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate draft: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is not allowed to be empty", fe.Field())
	case "min", "jsmin":
		return fmt.Sprintf("%q length must be at least %s characters long", fe.Field(), fe.Param())
	case "max", "jsmax":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}
