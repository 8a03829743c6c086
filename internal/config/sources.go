// internal/config/sources.go
//
// Raw configuration sources.
//
/*
Context
--------
Two sources feed the loader, each held in its own Koanf instance so the
origin of every key stays known:

 1. the process environment, variables prefixed `SALESDASH_` where `__`
    maps to "." (e.g., `SALESDASH_LOG__LEVEL -> log.level`);
 2. an optional override file, `<base_dir>/.env` unless
    SALESDASH_CONFIG_FILE names another.  Dotenv syntax by default, YAML
    when the name ends in .yaml or .yml.  Dotenv files use the same
    variable names as the environment so users can copy lines between them.

Defaults are not a source here; they live in the schema.

Notes
-----
  - The override file is read once.  Absence of the default file is not an
    error; absence of an explicitly named one is.
  - Blank values count as unset.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/mim3/salesdash/internal/paths"
)

// Environment conventions.
const (
	EnvPrefix           = "SALESDASH_"
	EnvConfigFile       = "SALESDASH_CONFIG_FILE"
	DefaultOverrideFile = ".env"
)

// Sources holds the raw layers in precedence order (Env over File).
type Sources struct {
	Env      *koanf.Koanf
	File     *koanf.Koanf
	FilePath string // empty when no override file was read
}

// EnvKey maps SALESDASH_LOG__LEVEL to log.level.  Names without the prefix
// map to "".
func EnvKey(name string) string {
	rest, ok := strings.CutPrefix(name, EnvPrefix)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(rest, "__", "."))
}

// EnvName maps log.level to SALESDASH_LOG__LEVEL.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// ReadSources loads the environment and the override file for baseDir.
func ReadSources(baseDir string) (Sources, error) {
	src := Sources{Env: koanf.New("."), File: koanf.New(".")}

	path, explicit := os.Getenv(EnvConfigFile), true
	if path == "" {
		path, explicit = filepath.Join(baseDir, DefaultOverrideFile), false
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := src.File.Load(file.Provider(path), parserFor(path)); err != nil {
			zap.S().Errorw("override file parse failed", "file", path, "err", err)
			return Sources{}, &paths.PathResolutionError{Name: "config_file", Path: path, Err: err}
		}
		src.FilePath = path
		zap.S().Debugw("override file loaded", "file", path, "keys", len(src.File.Keys()))
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		zap.S().Debugw("no override file", "file", path)
	default:
		return Sources{}, &paths.PathResolutionError{Name: "config_file", Path: path, Err: err}
	}

	if err := src.Env.Load(env.Provider(EnvPrefix, ".", EnvKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return Sources{}, err
	}
	return src, nil
}

// NewSources builds Sources from flat dotted-key maps.  Either map may be nil.
func NewSources(envValues, fileValues map[string]any) (Sources, error) {
	if envValues == nil {
		envValues = map[string]any{}
	}
	if fileValues == nil {
		fileValues = map[string]any{}
	}
	src := Sources{Env: koanf.New("."), File: koanf.New(".")}
	if err := src.Env.Load(confmap.Provider(envValues, "."), nil); err != nil {
		return Sources{}, err
	}
	if err := src.File.Load(confmap.Provider(fileValues, "."), nil); err != nil {
		return Sources{}, err
	}
	if len(fileValues) > 0 {
		src.FilePath = "(memory)"
	}
	return src, nil
}

// lookup returns the highest-precedence non-blank value for key.  A layer
// that nests keys below a leaf (SALESDASH_LOG__LEVEL__X) still counts as
// providing it; the loader rejects the map.
func (s Sources) lookup(key string) (any, Source, bool) {
	for _, layer := range []struct {
		k   *koanf.Koanf
		src Source
	}{{s.Env, SourceEnv}, {s.File, SourceFile}} {
		if layer.k == nil || !layer.k.Exists(key) {
			continue
		}
		v := layer.k.Get(key)
		if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		return v, layer.src, true
	}
	return nil, SourceDefault, false
}

// origin names where a value came from, for error messages.
func (s Sources) origin(key string, src Source) string {
	switch src {
	case SourceEnv:
		return EnvName(key)
	case SourceFile:
		return s.FilePath
	}
	return ""
}

// PathOverrides extracts the locations the resolver must honour.  A
// database.path wins over a database.url naming a file.
func (s Sources) PathOverrides() paths.Overrides {
	str := func(key string) string {
		v, _, ok := s.lookup(key)
		if !ok || isSection(v) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}

	o := paths.Overrides{
		DataDir:      str(KeyDataDir),
		LogDir:       str(KeyLogDir),
		DatabasePath: str(KeyDatabasePath),
	}
	if o.DatabasePath == "" {
		if p, ok := PathFromSQLiteURL(str(KeyDatabaseURL)); ok {
			o.DatabasePath = p
		}
	}
	return o
}

func isSection(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

/*──────────────────────────── dotenv parser ───────────────────────────────*/

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	}
	return dotenvParser{}
}

// dotenvParser adapts godotenv to koanf.Parser.  Only SALESDASH_ names are
// kept; other lines are ignored.
type dotenvParser struct{}

func (dotenvParser) Unmarshal(b []byte) (map[string]any, error) {
	vals, err := godotenv.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	flat := make(map[string]any, len(vals))
	for name, v := range vals {
		if key := EnvKey(name); key != "" {
			flat[key] = v
		}
	}
	return maps.Unflatten(flat, "."), nil
}

func (dotenvParser) Marshal(m map[string]any) ([]byte, error) {
	flat, _ := maps.Flatten(m, nil, ".")
	out := make(map[string]string, len(flat))
	for k, v := range flat {
		out[EnvName(k)] = fmt.Sprint(v)
	}
	s, err := godotenv.Marshal(out)
	return []byte(s), err
}
