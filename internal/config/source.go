package config

import "fmt"

// Source tags the origin of a setting.  Diagnostics only; no behaviour
// branches on it.
type Source int

const (
	SourceDefault Source = iota
	SourceFile
	SourceEnv
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "override file"
	case SourceEnv:
		return "environment"
	case SourceDefault:
		return "default"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// MarshalText renders the source by name in JSON and YAML output.
func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts the names MarshalText produces.
func (s *Source) UnmarshalText(b []byte) error {
	for _, c := range []Source{SourceDefault, SourceFile, SourceEnv} {
		if string(b) == c.String() {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("config: unknown source %q", b)
}
