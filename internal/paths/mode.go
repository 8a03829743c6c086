// internal/paths/mode.go
//
// Install-mode detection.
//
// Context
// -------
// The resolver needs to know which of three layouts it is looking at before
// it can pick a base directory:
//
//   - development: a source checkout, recognised by a go.mod declaring
//     ModulePath (or a `.salesdash-root` marker) above the working directory,
//     or by an executable that `go run` dropped into the build cache.
//   - packaged: a single-folder distribution next to the executable.
//   - test: any process started by `go test`.
//
// SALESDASH_INSTALL_MODE short-circuits the heuristics.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InstallMode is the operating context of the running process.
type InstallMode string

const (
	ModeDevelopment InstallMode = "development"
	ModePackaged    InstallMode = "packaged"
	ModeTest        InstallMode = "test"
)

// ModulePath identifies a development checkout of this repository.
const ModulePath = "github.com/mim3/salesdash"

// RootMarker is an empty file that marks a project root without a go.mod.
const RootMarker = ".salesdash-root"

// ParseInstallMode maps a case-insensitive name onto an InstallMode.
func ParseInstallMode(s string) (InstallMode, error) {
	switch m := InstallMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDevelopment, ModePackaged, ModeTest:
		return m, nil
	}
	return "", fmt.Errorf("unknown install mode %q (want development, packaged, or test)", s)
}

func (m InstallMode) String() string { return string(m) }

// DetectMode inspects environment markers once.  An invalid explicit
// SALESDASH_INSTALL_MODE is a PathResolutionError: guessing would put the
// database somewhere the user did not ask for.
func (r *Resolver) DetectMode() (InstallMode, error) {
	if raw := r.getenv(EnvInstallMode); raw != "" {
		m, err := ParseInstallMode(raw)
		if err != nil {
			return "", &PathResolutionError{Name: "install_mode", Path: raw, Err: err}
		}
		return m, nil
	}

	if r.testing() {
		return ModeTest, nil
	}

	if exe, err := r.executable(); err == nil && isGoRunBinary(exe) {
		return ModeDevelopment, nil
	}

	if wd, err := r.getwd(); err == nil {
		if _, ok := findProjectRoot(wd); ok {
			return ModeDevelopment, nil
		}
	}
	return ModePackaged, nil
}

// isGoRunBinary reports whether exe lives in a go-build temp directory.
func isGoRunBinary(exe string) bool {
	dir := filepath.ToSlash(filepath.Dir(exe))
	return strings.Contains(dir, "/go-build")
}

// findProjectRoot climbs from dir until it sees RootMarker or a go.mod that
// declares ModulePath.
func findProjectRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil {
			return dir, true
		}
		if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
			if declaresModule(string(data)) {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			return "", false
		}
		dir = parent
	}
}

func declaresModule(gomod string) bool {
	for _, line := range strings.Split(gomod, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "module" && strings.Trim(fields[1], `"`) == ModulePath {
			return true
		}
	}
	return false
}
