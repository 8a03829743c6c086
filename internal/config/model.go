// internal/config/model.go
//
// Typed settings model.
//
// Context
// -------
// These structs are the shape `Load()` unmarshals into after every value has
// been coerced and validated against Schema.  Section and field tags use
// `koanf:"…"` and mirror the dotted schema keys one-to-one.
//
// A Settings value is built once per process and then shared read-only.
// Callers get it from `Get()`; nothing else constructs one.
package config

import (
	"fmt"
	"time"

	"github.com/mim3/salesdash/internal/paths"
)

// App holds identity and mode flags.
type App struct {
	Name  string `koanf:"name"`
	Env   string `koanf:"env"`
	Debug bool   `koanf:"debug"`
	Title string `koanf:"title"`
}

// Log holds file-logger tunables.  The directory comes from Paths.LogDir.
type Log struct {
	Level      string `koanf:"level"`
	Filename   string `koanf:"filename"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
	Console    bool   `koanf:"console"`
}

// Database describes the embedded SQLite file.
type Database struct {
	Path     string        `koanf:"path"`
	URL      string        `koanf:"url"`
	Timeout  time.Duration `koanf:"timeout"`
	PoolSize int           `koanf:"pool_size"`
}

// PathSettings mirrors the resolved data and log directories.
type PathSettings struct {
	DataDir string `koanf:"data_dir"`
	LogDir  string `koanf:"log_dir"`
}

// Server holds the local HTTP listener address.
type Server struct {
	ListenAddr string `koanf:"listen_addr"`
}

type Session struct {
	Timeout time.Duration `koanf:"timeout"`
}

type Auth struct {
	MaxLoginAttempts  int           `koanf:"max_login_attempts"`
	Lockout           time.Duration `koanf:"lockout"`
	MinPasswordLength int           `koanf:"min_password_length"`
}

// Dashboard holds options the UI layer reads.
type Dashboard struct {
	Theme           string        `koanf:"theme"`
	SidebarExpanded bool          `koanf:"sidebar_expanded"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
}

// Settings is the validated aggregate returned by Load.
type Settings struct {
	App       App          `koanf:"app"`
	Log       Log          `koanf:"log"`
	Database  Database     `koanf:"database"`
	Paths     PathSettings `koanf:"paths"`
	Server    Server       `koanf:"server"`
	Session   Session      `koanf:"session"`
	Auth      Auth         `koanf:"auth"`
	Dashboard Dashboard    `koanf:"dashboard"`

	Mode paths.InstallMode `koanf:"-"`

	sources map[string]Source
	values  map[string]any
}

// Source reports where key's value came from.  Unknown keys report
// SourceDefault.
func (s *Settings) Source(key string) Source { return s.sources[key] }

// Sources returns a copy of the per-key origin map.
func (s *Settings) Sources() map[string]Source {
	out := make(map[string]Source, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}

// Entry is one row of diagnostics output.
type Entry struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Source Source `json:"source" yaml:"source"`
	Env    string `json:"env" yaml:"env"`
}

// Entries lists every schema key with its effective value and origin, in
// schema order.
func (s *Settings) Entries() []Entry {
	out := make([]Entry, 0, len(Schema))
	for _, f := range Schema {
		out = append(out, Entry{
			Key:    f.Key,
			Value:  fmt.Sprint(s.values[f.Key]),
			Source: s.sources[f.Key],
			Env:    EnvName(f.Key),
		})
	}
	return out
}
