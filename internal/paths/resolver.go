// internal/paths/resolver.go
//
// Canonical filesystem layout for one installation.
//
/*
Context
--------
`Resolve()` turns an InstallMode into one immutable ResolvedPaths value:

	base_dir/            packaged: executable dir (or its parent when named bin)
	  data/              development: project root
	    sales_dashboard.db  test: fresh temp dir per process
	  logs/

SALESDASH_BASE_DIR replaces the base heuristics in every mode.  The data
dir, log dir, and database file may each be overridden; an override is
validated for the running OS, made absolute against base_dir, has its
symlinks followed, and is then used verbatim.  Defaults must stay inside
base_dir.

Directories are created once here.  A failed MkdirAll is returned as a
PathResolutionError; there is no fallback location.

Notes
-----
  - All OS-specific rules live in this package (see validate.go).  Callers
    never branch on runtime.GOOS.
  - Hooks (getenv, executable, ...) exist so tests can fake a packaged
    layout without building a binary.
*/
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Process-level variables read by the resolver.
const (
	EnvBaseDir     = "SALESDASH_BASE_DIR"
	EnvInstallMode = "SALESDASH_INSTALL_MODE"
)

// Default layout names.
const (
	DefaultAppName = "sales_dashboard"
	DataDirName    = "data"
	LogDirName     = "logs"
)

const dirPerm = 0o755

// ResolvedPaths is the immutable set of absolute locations for the process.
// Treat it as read-only; only the config facade hands these out.
type ResolvedPaths struct {
	Mode         InstallMode `json:"install_mode" yaml:"install_mode"`
	BaseDir      string      `json:"base_dir" yaml:"base_dir"`
	DataDir      string      `json:"data_dir" yaml:"data_dir"`
	DatabasePath string      `json:"database_path" yaml:"database_path"`
	LogDir       string      `json:"log_dir" yaml:"log_dir"`
}

// Overrides carries explicit locations supplied by configuration sources.
// Empty fields fall back to the default layout.
type Overrides struct {
	DataDir      string
	LogDir       string
	DatabasePath string
}

// Resolver computes ResolvedPaths.  The zero value is not usable; call
// NewResolver.
type Resolver struct {
	// AppName is the database file stem.
	AppName string
	// Base, when non-empty, skips base-directory discovery.
	Base      string
	Overrides Overrides
	// GOOS selects the path rules; defaults to runtime.GOOS.
	GOOS string

	getenv     func(string) string
	executable func() (string, error)
	getwd      func() (string, error)
	mkdirTemp  func(dir, pattern string) (string, error)
	testing    func() bool

	tempBase string
}

// NewResolver returns a Resolver wired to the real process.
func NewResolver() *Resolver {
	return &Resolver{
		AppName:    DefaultAppName,
		GOOS:       runtime.GOOS,
		getenv:     os.Getenv,
		executable: os.Executable,
		getwd:      os.Getwd,
		mkdirTemp:  os.MkdirTemp,
		testing:    testing.Testing,
	}
}

// Resolve computes, validates, and creates the layout for mode.
func (r *Resolver) Resolve(mode InstallMode) (*ResolvedPaths, error) {
	base := r.Base
	if base == "" {
		b, err := r.BaseDir(mode)
		if err != nil {
			return nil, err
		}
		base = b
	}
	base, err := r.canonical("base_dir", base, "")
	if err != nil {
		return nil, err
	}

	out := &ResolvedPaths{Mode: mode, BaseDir: base}

	if out.DataDir, err = r.dir("data_dir", r.Overrides.DataDir, base, DataDirName); err != nil {
		return nil, err
	}
	if out.LogDir, err = r.dir("log_dir", r.Overrides.LogDir, base, LogDirName); err != nil {
		return nil, err
	}

	if db := r.Overrides.DatabasePath; db != "" {
		if strings.HasSuffix(db, "/") || strings.HasSuffix(db, `\`) {
			return nil, &PathResolutionError{Name: "database_path", Path: db,
				Err: errors.New("names a directory, not a file")}
		}
		if out.DatabasePath, err = r.canonical("database_path", db, base); err != nil {
			return nil, err
		}
	} else {
		out.DatabasePath = filepath.Join(out.DataDir, r.AppName+".db")
	}

	for _, d := range []struct{ name, path string }{
		{"data_dir", out.DataDir},
		{"log_dir", out.LogDir},
		{"database_path", filepath.Dir(out.DatabasePath)},
	} {
		if err := ensureDir(d.name, d.path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// BaseDir discovers the base directory for mode.  In test mode every call
// creates a new temp directory; the caller owns its removal.
func (r *Resolver) BaseDir(mode InstallMode) (string, error) {
	if b := r.getenv(EnvBaseDir); b != "" {
		wd, err := r.getwd()
		if err != nil {
			return "", &PathResolutionError{Name: "base_dir", Path: b, Err: err}
		}
		return r.canonical("base_dir", b, wd)
	}

	switch mode {
	case ModePackaged:
		exe, err := r.executable()
		if err != nil {
			return "", &PathResolutionError{Name: "base_dir", Err: fmt.Errorf("locate executable: %w", err)}
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		if filepath.Base(dir) == "bin" {
			dir = filepath.Dir(dir)
		}
		return dir, nil

	case ModeDevelopment:
		wd, err := r.getwd()
		if err != nil {
			return "", &PathResolutionError{Name: "base_dir", Err: fmt.Errorf("working directory: %w", err)}
		}
		if root, ok := findProjectRoot(wd); ok {
			return root, nil
		}
		return wd, nil

	case ModeTest:
		dir, err := r.mkdirTemp("", r.AppName+"-test-*")
		if err != nil {
			return "", &PathResolutionError{Name: "base_dir", Err: fmt.Errorf("create temp base: %w", err)}
		}
		r.tempBase = dir
		return dir, nil
	}
	return "", &PathResolutionError{Name: "base_dir", Path: string(mode), Err: errors.New("unknown install mode")}
}

// TempBase is the directory BaseDir created for test mode, or "" when the
// base was pinned or discovered.
func (r *Resolver) TempBase() string { return r.tempBase }

// dir returns the override (normalised) or base/def, the latter checked for
// containment.
func (r *Resolver) dir(name, override, base, def string) (string, error) {
	if override != "" {
		return r.canonical(name, override, base)
	}
	p := filepath.Join(base, def)
	if !within(base, p) {
		return "", &PathResolutionError{Name: name, Path: p, Err: fmt.Errorf("escapes base dir %s", base)}
	}
	return p, nil
}

// canonical validates raw for the OS, anchors it at relTo when relative, and
// follows symlinks along the longest existing prefix.
func (r *Resolver) canonical(name, raw, relTo string) (string, error) {
	if err := ValidateSyntax(r.GOOS, raw); err != nil {
		return "", &PathResolutionError{Name: name, Path: raw, Err: err}
	}

	p := expandHome(raw)
	if !filepath.IsAbs(p) && relTo != "" {
		p = filepath.Join(relTo, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", &PathResolutionError{Name: name, Path: raw, Err: err}
	}

	resolved, err := evalExisting(abs)
	if err != nil {
		return "", &PathResolutionError{Name: name, Path: raw, Err: err}
	}
	return resolved, nil
}

// evalExisting resolves symlinks in the part of p that exists and re-joins
// the rest.
func evalExisting(p string) (string, error) {
	var rest []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func ensureDir(name, dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err == nil && !fi.IsDir():
		return &PathResolutionError{Name: name, Path: dir, Err: errors.New("exists and is not a directory")}
	case err == nil:
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &PathResolutionError{Name: name, Path: dir, Err: err}
	}
	return nil
}

// within reports whether p is base or a descendant of it.  Both paths are
// compared exactly as canonicalised; case folding is left to the filesystem
// that produced them.
func within(base, p string) bool {
	base, p = filepath.Clean(base), filepath.Clean(p)
	if p == base {
		return true
	}
	if !strings.HasSuffix(base, string(filepath.Separator)) {
		base += string(filepath.Separator)
	}
	return strings.HasPrefix(p, base)
}
