// internal/config/schema.go
//
// Declarative settings schema.
//
// Context
// -------
// Every recognised option is one Field: a dotted key, a kind, a default,
// and a go-playground/validator rule.  The loader walks this table in order,
// so it is also the order of diagnostics output and of validation errors.
//
// Path-kind fields never take their value from a source directly.  The
// resolver has already applied (and canonicalised) any override, so the
// value is read back from ResolvedPaths and only the origin is recorded.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mim3/salesdash/internal/paths"
)

// Kind selects how a raw source value is coerced.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindDuration
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDuration:
		return "duration"
	case KindPath:
		return "path"
	}
	return "string"
}

// Field describes one recognised option.
type Field struct {
	Key     string
	Kind    Kind
	Default any
	// Rule is a validator tag applied to provided values after coercion.
	Rule string
	// Upper folds string input to upper case before validation.
	Upper bool
	// Derive computes the value of path-kind fields.
	Derive func(*paths.ResolvedPaths) any
}

// Keys shared with the path resolver.
const (
	KeyDataDir      = "paths.data_dir"
	KeyLogDir       = "paths.log_dir"
	KeyDatabasePath = "database.path"
	KeyDatabaseURL  = "database.url"
)

// LogLevels is the closed set accepted by log.level.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Schema lists every option.  Unknown keys in any source are ignored.
var Schema = []Field{
	{Key: "app.name", Kind: KindString, Default: paths.DefaultAppName, Rule: "required,identifier"},
	{Key: "app.env", Kind: KindString, Default: "production", Rule: "oneof=development production test"},
	{Key: "app.debug", Kind: KindBool, Default: false},
	{Key: "app.title", Kind: KindString, Default: "SDP IM3 Report System", Rule: "required"},

	{Key: "log.level", Kind: KindString, Default: "INFO", Rule: "oneof=" + strings.Join(LogLevels, " "), Upper: true},
	{Key: "log.filename", Kind: KindString, Default: "sdp_dashboard.log", Rule: "required,basename"},
	{Key: "log.max_size_mb", Kind: KindInt, Default: 1, Rule: "min=1"},
	{Key: "log.max_backups", Kind: KindInt, Default: 7, Rule: "min=0"},
	{Key: "log.max_age_days", Kind: KindInt, Default: 7, Rule: "min=0"},
	{Key: "log.compress", Kind: KindBool, Default: true},
	{Key: "log.console", Kind: KindBool, Default: false},

	{Key: KeyDatabasePath, Kind: KindPath, Derive: func(rp *paths.ResolvedPaths) any { return rp.DatabasePath }},
	{Key: KeyDatabaseURL, Kind: KindPath, Rule: "startswith=sqlite:///", Derive: func(rp *paths.ResolvedPaths) any {
		return SQLiteURL(rp.DatabasePath)
	}},
	{Key: "database.timeout", Kind: KindDuration, Default: 30 * time.Second, Rule: "min=1s"},
	{Key: "database.pool_size", Kind: KindInt, Default: 10, Rule: "min=1,max=100"},

	{Key: KeyDataDir, Kind: KindPath, Derive: func(rp *paths.ResolvedPaths) any { return rp.DataDir }},
	{Key: KeyLogDir, Kind: KindPath, Derive: func(rp *paths.ResolvedPaths) any { return rp.LogDir }},

	{Key: "server.listen_addr", Kind: KindString, Default: "127.0.0.1:8501", Rule: "hostname_port"},

	{Key: "session.timeout", Kind: KindDuration, Default: 8 * time.Hour, Rule: "min=1m"},

	{Key: "auth.max_login_attempts", Kind: KindInt, Default: 5, Rule: "min=1"},
	{Key: "auth.lockout", Kind: KindDuration, Default: 15 * time.Minute, Rule: "min=0"},
	{Key: "auth.min_password_length", Kind: KindInt, Default: 6, Rule: "min=4,max=128"},

	{Key: "dashboard.theme", Kind: KindString, Default: "Light", Rule: "oneof=Light Dark Auto"},
	{Key: "dashboard.sidebar_expanded", Kind: KindBool, Default: true},
	{Key: "dashboard.cache_ttl", Kind: KindDuration, Default: 5 * time.Minute, Rule: "min=0"},
}

// FieldByKey returns the schema entry for key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range Schema {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// SQLiteURL renders an absolute database path as a sqlite:/// URL.
func SQLiteURL(dbPath string) string {
	return "sqlite:///" + filepath.ToSlash(dbPath)
}

// PathFromSQLiteURL is the inverse of SQLiteURL.
func PathFromSQLiteURL(u string) (string, bool) {
	rest, ok := strings.CutPrefix(u, "sqlite:///")
	if !ok || rest == "" {
		return "", false
	}
	return filepath.FromSlash(rest), true
}

/*──────────────────────────── coercion ────────────────────────────────────*/

var (
	truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "on": true, "t": true}
	falsy  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "off": true, "f": true}
)

// coerce converts a raw source value into the field's Go type.  Sources
// deliver strings (env, dotenv) or YAML scalars.
func (f Field) coerce(raw any) (any, error) {
	switch f.Kind {
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return ParseBool(fmt.Sprint(raw))

	case KindInt:
		if n, ok := raw.(int); ok {
			return n, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(raw)))
		if err != nil {
			return nil, fmt.Errorf("not an integer")
		}
		return n, nil

	case KindDuration:
		s := strings.TrimSpace(fmt.Sprint(raw))
		// A bare number is seconds.
		if n, err := strconv.Atoi(s); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("not a duration (e.g. 30s, 15m, 8h)")
		}
		return d, nil
	}

	s := strings.TrimSpace(fmt.Sprint(raw))
	if f.Upper {
		s = strings.ToUpper(s)
	}
	return s, nil
}

// ParseBool accepts true/1/yes/y/on/t and false/0/no/n/off/f in any case.
func ParseBool(s string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case truthy[v]:
		return true, nil
	case falsy[v]:
		return false, nil
	}
	return false, fmt.Errorf("not a boolean (use true/false, yes/no, 1/0, on/off)")
}
