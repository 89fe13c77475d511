package health

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// LatencyDigest accumulates health-probe round-trip times in a t-digest so
// the launcher can report startup latency percentiles without storing every
// sample.
type LatencyDigest struct {
	mu     sync.Mutex // TDigest is not thread-safe
	digest *tdigest.TDigest
	count  int64
}

// NewLatencyDigest creates an empty digest.
func NewLatencyDigest() *LatencyDigest {
	return &LatencyDigest{
		digest: tdigest.NewWithCompression(100), // ~100 centroids, ~10KB
	}
}

// Record adds one round-trip sample.
func (d *LatencyDigest) Record(rtt time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.digest.Add(float64(rtt.Nanoseconds()), 1)
	d.count++
}

// Quantile returns the q-th latency quantile, or 0 when no samples exist.
func (d *LatencyDigest) Quantile(q float64) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.count == 0 {
		return 0
	}
	return time.Duration(d.digest.Quantile(q))
}

// Count returns the number of recorded samples.
func (d *LatencyDigest) Count() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}
