package paths

import "fmt"

// PathResolutionError reports a location that could not be determined,
// validated, or created.  It is fatal at startup.
type PathResolutionError struct {
	Name string // base_dir, data_dir, log_dir, database_path, install_mode, config_file
	Path string // raw input, empty when nothing was supplied
	Err  error
}

func (e *PathResolutionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("resolve %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("resolve %s %q: %v", e.Name, e.Path, e.Err)
}

func (e *PathResolutionError) Unwrap() error { return e.Err }
