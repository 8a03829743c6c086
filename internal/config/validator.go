// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load()` coerces each provided value to its field's kind and then runs the
// field's rule through `validateValue`.  Two project rules are registered on
// top of the built-ins:
//
//   - identifier: letter first, then letters, digits, `_` or `-`.
//   - basename:   a file name with no directory separators.
package config

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("basename", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
	})
	return val
}

// validateValue returns the first rule violation for val, or nil.
func validateValue(val any, rule string) error {
	if rule == "" {
		return nil
	}
	return v.Var(val, rule)
}
