package validation

import (
	"errors"
	"fmt"
	"strings"

	"go-recruiting-platform/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// Struct validates s and converts failures into a Validation AppError whose
// details hold one message per field.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperror.Internal(err)
	}
	return apperror.Validation("Validation failed", FormatValidationErrors(err)...)
}

// FormatValidationErrors converts validator.ValidationErrors to readable messages.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	field := fieldPath(e)
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s: must be at least %s", field, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s: must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s: must be exactly %s characters", field, param)
	case "gte":
		return fmt.Sprintf("%s: must be %s or greater", field, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s: invalid email format", field)
	case "url":
		return fmt.Sprintf("%s: invalid URL format", field)
	case "hexcolor":
		return fmt.Sprintf("%s: must be a hex color such as #3b82f6", field)
	case "alpha":
		return fmt.Sprintf("%s: must contain letters only", field)
	case "slug":
		return fmt.Sprintf("%s: only lowercase letters, digits and hyphens are allowed", field)
	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and common punctuation (. ' - /) are allowed", field)
	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (7-15 digits, optional +)", field)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or symbols", field)
	default:
		return fmt.Sprintf("%s: failed %s validation", field, e.Tag())
	}
}

// fieldPath drops the top-level struct name from the namespace,
// e.g. "CreateJobInput.salaryRange.min" becomes "salaryRange.min".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
