package config

import "fmt"

// SettingsValidationError reports a provided value that violates its field's
// rule.  Missing values never produce one; defaults cover them.
type SettingsValidationError struct {
	Field  string // dotted key, e.g. log.level
	Value  string // raw input as supplied
	Rule   string // validator tag or kind (bool, int, duration)
	Source Source
	Origin string // env variable name or override file path
	Err    error
}

func (e *SettingsValidationError) Error() string {
	msg := fmt.Sprintf("setting %s: value %q from %s", e.Field, e.Value, e.Source)
	if e.Origin != "" {
		msg += " " + e.Origin
	}
	msg += " violates " + e.Rule
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SettingsValidationError) Unwrap() error { return e.Err }
