// Package intake implements the resume intake wizard: field predicates,
// skill editing, summary presets and the three-step form state machine.
package intake

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-builder/internal/types"
)

// ValidEmail is the structural email check used by the intake form: no
// commas or whitespace, exactly one @ with a non-empty local part, and a
// domain containing a dot whose last label is at least two ASCII letters.
func ValidEmail(email string) bool {
	if email == "" || strings.ContainsRune(email, ',') || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}
	at := strings.IndexByte(email, '@')
	local, domain := email[:at], email[at+1:]
	if local == "" {
		return false
	}

	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 {
		return false
	}
	tld := domain[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for i := 0; i < len(tld); i++ {
		c := tld[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// ValidPhone reports whether phone holds exactly ten digits once all
// non-digit characters are removed
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits == 10
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the intake tags registered:
// resume_email and resume_phone
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("resume_email", func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("resume_phone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// FieldError is one failing intake field
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every failing field of a UserData
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field, fe.Rule))
	}
	return "invalid intake data: " + strings.Join(parts, ", ")
}

// Validate checks data with the validator tags on types.UserData
func Validate(data types.UserData) error {
	return ValidateStruct(data)
}

// ValidateStruct checks any tagged struct with the shared validator and
// collects every failing field
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		out.Errors = append(out.Errors, FieldError{Field: fieldName(fe), Rule: fe.Tag()})
	}
	return out
}

// fieldName turns "UserData.skills[0]" into "skills[0]"
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}
