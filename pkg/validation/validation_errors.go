package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationErrors converts validator.ValidationErrors to readable messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Summary joins the formatted messages into one line.
func Summary(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

// formatSingleError formats a single validation error
func formatSingleError(e validator.FieldError) string {
	field := e.Field()
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

	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))

	case "email":
		return fmt.Sprintf("%s: invalid email format", field)

	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and common punctuation (. ' - /) are allowed", field)

	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (7-15 digits, optional +)", field)

	case "valid_slug":
		return fmt.Sprintf("%s: must be lower-case words joined by hyphens", field)

	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", field)

	case "not_future":
		return fmt.Sprintf("%s: must not be in the future", field)

	case "gtefield":
		return fmt.Sprintf("%s: must not be less than %s", field, param)

	default:
		return fmt.Sprintf("%s: failed validation (%s)", field, e.Tag())
	}
}
