// Package health polls the embedded server's health endpoint until it
// answers or the attempt budget runs out.
package health

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultInterval is the pause between consecutive health probes.
	DefaultInterval = 500 * time.Millisecond

	// DefaultAttempts caps the probe count: 80 attempts at 500ms is the
	// 40-second startup ceiling.
	DefaultAttempts = 80

	// requestTimeout bounds a single probe so a wedged accept queue cannot
	// absorb the whole budget in one request.
	requestTimeout = 2 * time.Second
)

// Poller issues repeated GET requests against a health endpoint.
//
// Classification: any response with status below 500 counts as healthy; the
// server may legitimately answer 4xx early in boot. Connection errors and 5xx
// responses mean not-yet-ready and are retried, never treated as fatal.
type Poller struct {
	Client   *http.Client
	Interval time.Duration
	Attempts int
	Logger   *slog.Logger

	// OnProbe, when set, is invoked once per attempt, unreachable probes
	// included. Hook for the metrics collector.
	OnProbe func()

	latency *LatencyDigest
}

// NewPoller creates a Poller with the default probe budget.
func NewPoller(logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		Client:   &http.Client{Timeout: requestTimeout},
		Interval: DefaultInterval,
		Attempts: DefaultAttempts,
		Logger:   logger,
		latency:  NewLatencyDigest(),
	}
}

// Wait polls url until a probe succeeds or the attempt budget is exhausted.
// It always runs to completion; there is no mid-poll cancellation. Returns
// true if the endpoint became healthy.
func (p *Poller) Wait(url string) bool {
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(p.Interval)
		}
		if p.OnProbe != nil {
			p.OnProbe()
		}

		start := time.Now()
		resp, err := p.Client.Get(url)
		if err != nil {
			p.Logger.Debug("health_probe_unreachable", "attempt", attempt+1, "error", err)
			continue
		}
		rtt := time.Since(start)
		_ = resp.Body.Close()

		if p.latency != nil {
			p.latency.Record(rtt)
		}

		if resp.StatusCode < http.StatusInternalServerError {
			p.Logger.Debug("health_probe_ok",
				"attempt", attempt+1,
				"status", resp.StatusCode,
				"rtt", rtt.String(),
			)
			return true
		}

		p.Logger.Debug("health_probe_not_ready", "attempt", attempt+1, "status", resp.StatusCode)
	}

	return false
}

// Latency returns the probe round-trip digest, for reporting after the poll.
func (p *Poller) Latency() *LatencyDigest {
	return p.latency
}
