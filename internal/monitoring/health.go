// internal/monitoring/health.go
package monitoring

import (
	"runtime"
	"time"
)

// HealthStatus represents the reported health of the service.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthSnapshot is the payload of the health endpoint.
type HealthSnapshot struct {
	Status     HealthStatus `json:"status"`
	Service    string       `json:"service"`
	Version    string       `json:"version"`
	Profile    string       `json:"profile"`
	Timestamp  time.Time    `json:"timestamp"`
	Uptime     string       `json:"uptime"`
	Goroutines int          `json:"goroutines"`
	MemoryMB   uint64       `json:"memory_mb"`
	InFlight   int          `json:"in_flight"`
}

// HealthReporter produces health snapshots. It tracks service start
// time and the number of requests currently in flight.
type HealthReporter struct {
	service string
	version string
	profile string
	started time.Time

	inFlight func() int
}

// NewHealthReporter creates a reporter. inFlight may be nil when the
// caller does not track request concurrency.
func NewHealthReporter(service, version, profile string, inFlight func() int) *HealthReporter {
	return &HealthReporter{
		service:  service,
		version:  version,
		profile:  profile,
		started:  time.Now(),
		inFlight: inFlight,
	}
}

// Snapshot returns the current health payload.
func (h *HealthReporter) Snapshot() HealthSnapshot {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	inFlight := 0
	if h.inFlight != nil {
		inFlight = h.inFlight()
	}

	return HealthSnapshot{
		Status:     HealthStatusHealthy,
		Service:    h.service,
		Version:    h.version,
		Profile:    h.profile,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   stats.HeapAlloc / 1024 / 1024,
		InFlight:   inFlight,
	}
}
