// Package validation turns validator struct tags into apperr.ValidationError
// messages keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"cvportal/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	monthYearRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)
	yearRe      = regexp.MustCompile(`^\d{4}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("monthyear", func(fl validator.FieldLevel) bool {
		return monthYearRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		return yearRe.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates s and returns a *apperr.ValidationError, or nil.
func Struct(s any) error {
	return Into(apperr.NewValidation(), s).Err()
}

// Into adds the failures of s to ve and returns ve, so callers can merge tag
// checks with their own.
func Into(ve *apperr.ValidationError, s any) *apperr.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return ve
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("body", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fieldName(fe), message(fe))
	}
	return ve
}

// RequireString records a missing or blank required string.
func RequireString(ve *apperr.ValidationError, field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		ve.Add(field, "is required")
	}
}

// fieldName drops the root struct from the namespace:
// "cvInput.workExperiences[0].startDate" becomes "workExperiences[0].startDate".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if kindOf(fe) == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if kindOf(fe) == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "monthyear":
		return "must be in MM/YYYY format"
	case "year":
		return "must be a 4-digit year"
	}
	return "is invalid"
}

func kindOf(fe validator.FieldError) reflect.Kind {
	k := fe.Kind()
	if k == reflect.Ptr {
		if t := fe.Type(); t != nil {
			return t.Elem().Kind()
		}
	}
	return k
}
