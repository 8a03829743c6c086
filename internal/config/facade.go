// internal/config/facade.go
//
// Process-wide access point for settings and paths.
//
/*
Context
--------
`Get()` and `ResolvedPaths()` are the only way the rest of the program
obtains configuration.  The first call runs the whole pipeline:

	DetectMode -> BaseDir -> ReadSources -> Resolve -> Load

and caches the outcome, error included, in an atomic.Pointer.  Later calls
are a lock-free load.  Concurrent first callers meet at a singleflight
barrier; exactly one runs the pipeline and all receive the same pointers.

`Reset()` drops the cache so the next call re-resolves.  When the cached
layout sits in a temp base that bootstrap created (test mode without
SALESDASH_BASE_DIR), Reset removes it.  Tests only; it must not race with
in-flight Get calls.
*/
package config

import (
	"errors"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mim3/salesdash/internal/metrics"
	"github.com/mim3/salesdash/internal/paths"
)

type snapshot struct {
	settings *Settings
	paths    *paths.ResolvedPaths
	err      error
	tempBase string // created by bootstrap; removed by Reset
}

var (
	current atomic.Pointer[snapshot]
	sfg     singleflight.Group
)

const flightKey = "config"

// Get returns the process settings, resolving them on first use.  An error
// is fatal and sticky until Reset.
func Get() (*Settings, error) {
	s := load()
	return s.settings, s.err
}

// ResolvedPaths returns the process layout, resolving it on first use.
func ResolvedPaths() (*paths.ResolvedPaths, error) {
	s := load()
	return s.paths, s.err
}

// MustGet is Get for callers that cannot continue without configuration.
func MustGet() *Settings {
	s, err := Get()
	if err != nil {
		panic("config: " + err.Error())
	}
	return s
}

// Reset clears the cache.  Test-only; not safe concurrently with Get.
func Reset() {
	if s := current.Swap(nil); s != nil && s.tempBase != "" {
		if err := os.RemoveAll(s.tempBase); err != nil {
			zap.S().Warnw("remove temp base", "dir", s.tempBase, "err", err)
		}
	}
	sfg.Forget(flightKey)
}

func load() *snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	v, _, _ := sfg.Do(flightKey, func() (any, error) {
		// Double-check after singleflight barrier.
		if s := current.Load(); s != nil {
			return s, nil
		}
		s := bootstrap()
		current.Store(s)
		return s, nil
	})
	return v.(*snapshot)
}

// bootstrap runs the resolve -> load pipeline once.
func bootstrap() *snapshot {
	start := time.Now()
	r := paths.NewResolver()

	mode, err := r.DetectMode()
	if err != nil {
		return failed("paths", err)
	}
	zap.S().Debugw("install mode detected", "mode", mode)

	base, err := r.BaseDir(mode)
	if err != nil {
		return failed("paths", err)
	}
	zap.S().Debugw("config root resolved", "root", base)
	tmp := r.TempBase()

	src, err := ReadSources(base)
	if err != nil {
		return failed("source", err).owning(tmp)
	}

	r.Base = base
	r.Overrides = src.PathOverrides()
	rp, err := r.Resolve(mode)
	if err != nil {
		return failed("paths", err).owning(tmp)
	}

	s, err := Load(src, rp)
	if err != nil {
		return failed("settings", err).owning(tmp)
	}

	metrics.ConfigLoadsTotal.Inc()
	metrics.ConfigInfo.WithLabelValues(string(mode), s.App.Env).Set(1)
	metrics.ConfigLoadSeconds.Observe(time.Since(start).Seconds())

	zap.S().Infow("config loaded",
		"install_mode", mode,
		"base_dir", rp.BaseDir,
		"database", rp.DatabasePath,
		"log_dir", rp.LogDir,
		"log_level", s.Log.Level,
		"override_file", src.FilePath,
	)
	return &snapshot{settings: s, paths: rp, tempBase: tmp}
}

func failed(kind string, err error) *snapshot {
	metrics.ConfigLoadErrorsTotal.WithLabelValues(kind).Inc()
	zap.S().Errorw("config bootstrap failed", "stage", kind, "err", err)
	return &snapshot{err: err}
}

func (s *snapshot) owning(dir string) *snapshot {
	s.tempBase = dir
	return s
}

// IsConfigError reports whether err came from path resolution or settings
// validation, the two fatal startup classes.
func IsConfigError(err error) bool {
	var pe *paths.PathResolutionError
	var ve *SettingsValidationError
	return errors.As(err, &pe) || errors.As(err, &ve)
}
