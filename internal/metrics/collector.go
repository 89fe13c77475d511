// Package metrics provides Prometheus metrics for the Stacklume launcher.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var sessionStates = []string{"unstarted", "spawning", "running", "terminating", "terminated"}

// Collector owns the launcher's metric instruments.
type Collector struct {
	info         *prometheus.GaugeVec
	sessionState *prometheus.GaugeVec
	assignedPort prometheus.Gauge

	spawnsTotal        prometheus.Counter
	spawnFailuresTotal prometheus.Counter
	terminationsTotal  prometheus.Counter
	healthProbesTotal  prometheus.Counter

	readinessSeconds prometheus.Gauge
	probeRTTSeconds  *prometheus.GaugeVec
	outcome          *prometheus.GaugeVec
}

// NewCollector creates a Collector registered with the default registry.
func NewCollector(version string) *Collector {
	return NewCollectorWithRegistry(version, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a Collector registered with a custom
// registry. Used by tests to avoid duplicate-registration panics.
func NewCollectorWithRegistry(version string, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stacklume_launcher_info",
				Help: "Information about the launcher (value always 1)",
			},
			[]string{"version"},
		),
		sessionState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stacklume_session_state",
				Help: "Current server session state (1 for the active state)",
			},
			[]string{"state"},
		),
		assignedPort: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stacklume_assigned_port",
				Help: "Port assigned to the embedded server",
			},
		),
		spawnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stacklume_spawns_total",
				Help: "Server spawn attempts that produced a process",
			},
		),
		spawnFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stacklume_spawn_failures_total",
				Help: "Server spawn attempts rejected by the OS",
			},
		),
		terminationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stacklume_terminations_total",
				Help: "Explicit server terminations",
			},
		),
		healthProbesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stacklume_health_probes_total",
				Help: "Health probes issued while waiting for readiness",
			},
		),
		readinessSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stacklume_readiness_seconds",
				Help: "Seconds from spawn to first healthy response",
			},
		),
		probeRTTSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stacklume_health_probe_rtt_seconds",
				Help: "Health probe round-trip quantiles",
			},
			[]string{"quantile"},
		),
		outcome: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stacklume_readiness_outcome",
				Help: "Terminal readiness outcome (1 for the emitted kind)",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		c.info,
		c.sessionState,
		c.assignedPort,
		c.spawnsTotal,
		c.spawnFailuresTotal,
		c.terminationsTotal,
		c.healthProbesTotal,
		c.readinessSeconds,
		c.probeRTTSeconds,
		c.outcome,
	)

	c.info.WithLabelValues(version).Set(1)
	c.SetSessionState("unstarted")
	return c
}

// SetSessionState marks the given state active and clears the others.
func (c *Collector) SetSessionState(state string) {
	for _, s := range sessionStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		c.sessionState.WithLabelValues(s).Set(v)
	}
}

// SetAssignedPort records the allocated port.
func (c *Collector) SetAssignedPort(port int) {
	c.assignedPort.Set(float64(port))
}

// SpawnSucceeded increments the spawn counter.
func (c *Collector) SpawnSucceeded() {
	c.spawnsTotal.Inc()
}

// SpawnFailed increments the spawn-failure counter.
func (c *Collector) SpawnFailed() {
	c.spawnFailuresTotal.Inc()
}

// Terminated increments the termination counter.
func (c *Collector) Terminated() {
	c.terminationsTotal.Inc()
}

// HealthProbe counts one issued health probe.
func (c *Collector) HealthProbe() {
	c.healthProbesTotal.Inc()
}

// RecordReadiness records the spawn-to-healthy duration.
func (c *Collector) RecordReadiness(d time.Duration) {
	c.readinessSeconds.Set(d.Seconds())
}

// RecordProbeRTT records a probe round-trip quantile.
func (c *Collector) RecordProbeRTT(quantile string, d time.Duration) {
	c.probeRTTSeconds.WithLabelValues(quantile).Set(d.Seconds())
}

// RecordOutcome marks the terminal readiness outcome kind.
func (c *Collector) RecordOutcome(kind string) {
	c.outcome.WithLabelValues(kind).Set(1)
}
