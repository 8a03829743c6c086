// internal/config/loader.go
//
// Settings loader.
//
/*
Context
--------
`Load()` builds one Settings value from three layers (highest precedence
first):

 1. environment variables  (Sources.Env),
 2. the override file      (Sources.File),
 3. schema defaults        (Schema[i].Default, or Derive for path kinds).

The first layer that defines a key supplies its whole value; lower layers
are ignored for that key.  Each provided value is coerced to its kind and
checked against its rule.  Every failure is collected and returned joined,
so one run shows the user all bad lines at once.  Nothing is returned
unless every field is valid.

Instrumentation
---------------
  - DEBUG: one line per non-default key with its origin.
  - ERROR: each validation failure.
  - Logs use the global sugared logger (`zap.S()`) because this runs before
    the file logger exists.
*/
package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/mim3/salesdash/internal/paths"
)

// Load merges src over the schema defaults, validates, and returns the
// result.  rp supplies path-valued settings.
func Load(src Sources, rp *paths.ResolvedPaths) (*Settings, error) {
	if rp == nil {
		return nil, errors.New("config: load requires resolved paths")
	}

	values := make(map[string]any, len(Schema))
	origins := make(map[string]Source, len(Schema))
	var errs []error

	for _, f := range Schema {
		raw, from, provided := src.lookup(f.Key)
		origins[f.Key] = from

		if provided {
			if err := checkProvided(f, raw, from, src); err != nil {
				zap.S().Errorw("config validation failed", "key", f.Key, "err", err)
				errs = append(errs, err)
				continue
			}
			zap.S().Debugw("config value", "key", f.Key, "source", from.String())
		}

		switch {
		case f.Kind == KindPath:
			values[f.Key] = f.Derive(rp)
		case provided:
			values[f.Key], _ = f.coerce(raw)
		default:
			values[f.Key] = f.Default
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, fmt.Errorf("config: merge: %w", err)
	}
	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	s.Mode = rp.Mode
	s.sources = origins
	s.values = values
	return &s, nil
}

// checkProvided coerces raw and applies the field rule.
func checkProvided(f Field, raw any, from Source, src Sources) error {
	fail := func(rule string, err error) error {
		return &SettingsValidationError{
			Field:  f.Key,
			Value:  fmt.Sprint(raw),
			Rule:   rule,
			Source: from,
			Origin: src.origin(f.Key, from),
			Err:    err,
		}
	}

	if isSection(raw) {
		return fail("kind", fmt.Errorf("expected a %s value, found nested keys", f.Kind))
	}

	// Path kinds were validated by the resolver; only their rule (if any)
	// applies to the raw text.
	if f.Kind == KindPath {
		if err := validateValue(fmt.Sprint(raw), f.Rule); err != nil {
			return fail(f.Rule, nil)
		}
		return nil
	}

	val, err := f.coerce(raw)
	if err != nil {
		return fail(f.Kind.String(), err)
	}
	if err := validateValue(val, f.Rule); err != nil {
		return fail(f.Rule, nil)
	}
	return nil
}
