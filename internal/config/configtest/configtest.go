// Package configtest builds validated Settings for tests in other packages
// without touching the process environment or the facade cache.
package configtest

import (
	"testing"

	"github.com/mim3/salesdash/internal/config"
	"github.com/mim3/salesdash/internal/paths"
)

// New resolves a test-mode layout under t.TempDir and loads settings from
// values, a flat map of dotted keys treated as environment input.
func New(t testing.TB, values map[string]any) (*config.Settings, *paths.ResolvedPaths) {
	t.Helper()

	src, err := config.NewSources(values, nil)
	if err != nil {
		t.Fatalf("configtest: sources: %v", err)
	}

	r := paths.NewResolver()
	r.Base = t.TempDir()
	r.Overrides = src.PathOverrides()
	rp, err := r.Resolve(paths.ModeTest)
	if err != nil {
		t.Fatalf("configtest: resolve: %v", err)
	}

	s, err := config.Load(src, rp)
	if err != nil {
		t.Fatalf("configtest: load: %v", err)
	}
	return s, rp
}
