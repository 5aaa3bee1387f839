package lifecycle

import "sync/atomic"

// Status is the value reported by the health endpoint.
type Status string

const (
	StatusHealthy      Status = "healthy"
	StatusDegraded     Status = "degraded"
	StatusShuttingDown Status = "shutting-down"
)

// State tracks whether the process is draining. The zero value is ready to use.
type State struct {
	draining atomic.Bool
}

// BeginDrain marks the process as shutting down. Call when SIGTERM/SIGINT is received.
func (s *State) BeginDrain() {
	s.draining.Store(true)
}

// Draining reports whether BeginDrain has been called.
func (s *State) Draining() bool {
	return s.draining.Load()
}

// Evaluate picks the health status. Draining wins over a failed store check.
func (s *State) Evaluate(storeErr error) Status {
	switch {
	case s.Draining():
		return StatusShuttingDown
	case storeErr != nil:
		return StatusDegraded
	}
	return StatusHealthy
}
