// Package validation binds request payloads and turns validator failures
// into field-level errors the client can act on.
//
// Struct tags (`validate:"required,email"`) cover most rules; payloads return
// CustomValidationErrors for anything tags cannot express.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json name.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			// Fall back to the binding tag for path and query parameters.
			for _, tag := range []string{"param", "query"} {
				if n := fld.Tag.Get(tag); n != "" {
					return n
				}
			}
		}
		return name
	})
	return v
}
