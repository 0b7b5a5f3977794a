package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,email"`)
// - Implement Validate() error that runs validator.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for rules tags cannot express)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// payload must be a pointer to a struct. Bind failures (malformed JSON,
// type mismatches) and validation failures both come back as 400s.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		msg, fieldErrors := ExtractValidationError(err)
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindErrorMessage pulls the client-facing part out of echo's bind error.
func bindErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request body"
}

// ExtractValidationError converts validator and custom errors into field errors.
// Unknown error types produce a generic message and no field errors.
func ExtractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed: " + err.Error(), nil
	}

	for _, fe := range validationErrors {
		field := fieldName(fe)
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: tagMessage(fe, field),
		})
	}

	return "Validation failed", fieldErrors
}

// fieldName returns the dotted path below the root struct, e.g. "delivery.date".
func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	// Embedded structs keep their Go name in the namespace; json names are lower case.
	kept := parts[:0]
	for i, p := range parts {
		if i < len(parts)-1 && p != "" && p[0] >= 'A' && p[0] <= 'Z' {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return strings.ToLower(fe.Field())
	}
	return strings.ToLower(strings.Join(kept, "."))
}

func tagMessage(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "min":
		// min/max mean length for strings and slices, value for numbers.
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		default:
			return fmt.Sprintf("must be at least %s", fe.Param())
		}

	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		default:
			return fmt.Sprintf("must not exceed %s", fe.Param())
		}

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number with country code"
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", dateLayoutHint(fe.Param()))
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	}

	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", field, fe.Tag())
}

func dateLayoutHint(layout string) string {
	if layout == "2006-01-02" {
		return "YYYY-MM-DD"
	}
	return layout
}
