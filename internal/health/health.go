// internal/health/health.go
//
// Startup and liveness self-check.
//
// Context
// -------
// `Check` answers "can this process do its job right now?" by pinging the
// database and proving the data and log directories are writable.  The
// report is served on /healthz and printed by `salesdash paths --check`.
//
// Notes
// -----
// • Each probe is independent; one failure never hides another.
// • Overall status is "ok" only when every probe passes.
package health

import (
	"context"
	"os"
	"time"

	"github.com/mim3/salesdash/internal/metrics"
	"github.com/mim3/salesdash/internal/paths"
)

const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Probe is one line of the report.
type Probe struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the JSON body of /healthz.
type Report struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	InstallMode paths.InstallMode `json:"install_mode"`
	CheckedAt   time.Time         `json:"checked_at"`
	Probes      []Probe           `json:"probes"`
}

// OK reports whether every probe passed.
func (r Report) OK() bool { return r.Status == StatusOK }

// Check runs all probes.  db may be nil, in which case the database probe
// is skipped.
func Check(ctx context.Context, db Pinger, rp *paths.ResolvedPaths, version string) Report {
	rep := Report{
		Status:      StatusOK,
		Version:     version,
		InstallMode: rp.Mode,
		CheckedAt:   time.Now().UTC(),
	}

	add := func(name string, err error) {
		p := Probe{Name: name, Status: StatusOK}
		if err != nil {
			p.Status, p.Error = StatusFail, err.Error()
			rep.Status = StatusFail
		}
		rep.Probes = append(rep.Probes, p)
	}

	if db != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		add("database", db.PingContext(pctx))
		cancel()
	}
	add("data_dir", writable(rp.DataDir))
	add("log_dir", writable(rp.LogDir))

	metrics.HealthChecksTotal.WithLabelValues(rep.Status).Inc()
	return rep
}

func writable(dir string) error {
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
