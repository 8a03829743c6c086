// internal/server/router.go
//
// Route table for the local dashboard process.
//
/*
Context
--------
The UI itself is rendered elsewhere; this process only exposes operational
endpoints on the loopback listener:

	GET /healthz        health.Report as JSON (503 when any probe fails)
	GET /metrics        Prometheus exposition
	GET /debug/config   effective settings with origins (app.debug only)

Every route passes through RequestID, Recoverer, AccessLog, and Security.
*/
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mim3/salesdash/internal/config"
	"github.com/mim3/salesdash/internal/health"
	"github.com/mim3/salesdash/internal/middleware"
	"github.com/mim3/salesdash/internal/paths"
)

// Deps are the collaborators the router needs.  DB may be nil.
type Deps struct {
	Settings *config.Settings
	Paths    *paths.ResolvedPaths
	DB       *sqlx.DB
	Version  string
}

// Router builds the HTTP handler tree.
func Router(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.AccessLog, middleware.Security)

	r.Get("/healthz", d.healthz)
	r.Handle("/metrics", promhttp.Handler())
	if d.Settings.App.Debug {
		r.Get("/debug/config", d.debugConfig)
	}
	return r
}

func (d Deps) healthz(w http.ResponseWriter, r *http.Request) {
	var db health.Pinger
	if d.DB != nil {
		db = d.DB
	}
	rep := health.Check(r.Context(), db, d.Paths, d.Version)

	status := http.StatusOK
	if !rep.OK() {
		status = http.StatusServiceUnavailable
		zap.S().Warnw("health check failed", "probes", rep.Probes)
	}
	writeJSON(w, status, rep)
}

// configDump is the /debug/config body.
type configDump struct {
	Paths    *paths.ResolvedPaths `json:"paths"`
	Settings []config.Entry       `json:"settings"`
}

func (d Deps) debugConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configDump{Paths: d.Paths, Settings: d.Settings.Entries()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		zap.S().Errorw("encode response", "err", err)
	}
}
