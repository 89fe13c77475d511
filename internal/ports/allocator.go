// Package ports selects a local TCP port for the embedded server.
package ports

import (
	"fmt"
	"log/slog"
	"net"
)

// DefaultCandidates is the ordered list of ports tried at startup.
var DefaultCandidates = []int{3001, 3002, 3003, 3004, 3005, 3006, 3007, 3008}

// DefaultPort is returned when every candidate is occupied. The server will
// fail to bind and the health poll will surface the failure with logs, which
// is more actionable for the user than an opaque allocation error here.
const DefaultPort = 3001

// Allocator probes candidate ports for availability.
type Allocator struct {
	Host       string // bind host for probing, defaults to 127.0.0.1
	Candidates []int
	Fallback   int
	Logger     *slog.Logger
}

// NewAllocator creates an Allocator with the default candidate list.
func NewAllocator(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		Host:       "127.0.0.1",
		Candidates: DefaultCandidates,
		Fallback:   DefaultPort,
		Logger:     logger,
	}
}

// Pick returns the first candidate port on which a local bind succeeds.
// The probe listener is closed immediately; only availability is tested.
// If no candidate is free, the fallback port is returned without error.
func (a *Allocator) Pick() int {
	for _, port := range a.Candidates {
		l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", a.Host, port))
		if err != nil {
			a.Logger.Debug("port_occupied", "port", port)
			continue
		}
		_ = l.Close()
		return port
	}

	a.Logger.Warn("no_free_port_candidate", "fallback", a.Fallback)
	return a.Fallback
}
