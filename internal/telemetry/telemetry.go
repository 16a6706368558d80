// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package telemetry exposes the daemon's Prometheus gauges: neighbor
// liveness, LSDB/RIB/FIB sizes, and per-neighbor queue delay.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every gauge the daemon publishes.
type Metrics struct {
	NeighborsUp       prometheus.Gauge
	NeighborsDown     prometheus.Gauge
	LSDBSize          prometheus.Gauge
	RIBSize           prometheus.Gauge
	FIBSize           prometheus.Gauge
	QueueDelayMs      *prometheus.GaugeVec
	RoutesInstalled   prometheus.Counter
	ApplyFailures     prometheus.Counter
}

// NewMetrics builds the daemon's gauge set and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NeighborsUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irpd_neighbors_up",
			Help: "Number of neighbors currently considered up.",
		}),
		NeighborsDown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irpd_neighbors_down",
			Help: "Number of configured neighbors currently considered down.",
		}),
		LSDBSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irpd_lsdb_records",
			Help: "Number of origin records held in the link-state database.",
		}),
		RIBSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irpd_rib_routes",
			Help: "Number of candidate routes held in the RIB across all protocols.",
		}),
		FIBSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "irpd_fib_entries",
			Help: "Number of selected forwarding entries in the FIB.",
		}),
		QueueDelayMs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "irpd_neighbor_queue_delay_ms",
			Help: "Estimated queue delay in milliseconds toward each neighbor.",
		}, []string{"neighbor"}),
		RoutesInstalled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irpd_routes_installed_total",
			Help: "Total number of FIB changes applied to the kernel routing table.",
		}),
		ApplyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "irpd_apply_failures_total",
			Help: "Total number of forwarding-applier errors.",
		}),
	}
	reg.MustRegister(m.NeighborsUp, m.NeighborsDown, m.LSDBSize, m.RIBSize, m.FIBSize, m.QueueDelayMs, m.RoutesInstalled, m.ApplyFailures)
	return m
}
