// Package metrics holds Prometheus instruments that are used across the
// dashboard.  All collectors are registered with the global registry, so
// importing this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigLoadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salesdash_config_loads_total",
			Help: "Cumulative number of successful configuration bootstraps.",
		})

	ConfigLoadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_config_load_errors_total",
			Help: "Cumulative number of failed configuration bootstraps by stage.",
		}, []string{"stage"})

	ConfigLoadSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "salesdash_config_load_seconds",
			Help:    "Time spent resolving paths and loading settings.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		})

	ConfigInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salesdash_config_info",
			Help: "Constant 1, labelled with the active install mode and environment.",
		}, []string{"install_mode", "env"})

	HealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_health_checks_total",
			Help: "Health checks run, by overall status.",
		}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		ConfigLoadsTotal,
		ConfigLoadErrorsTotal,
		ConfigLoadSeconds,
		ConfigInfo,
		HealthChecksTotal,
	)
}
