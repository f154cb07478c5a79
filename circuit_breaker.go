package servicepoint

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the sends to one display. *gobreaker.CircuitBreaker[bool]
// implements it.
type CircuitBreaker interface {
	Execute(req func() (bool, error)) (bool, error)
	State() gobreaker.State
}

// CircuitBreakerState is the state reported in DisplayStats.
type CircuitBreakerState = gobreaker.State

// NewCircuitBreakerConfig returns a Config.NewCircuitBreaker function that
// opens the breaker of a display once at least 3 sends were made and 60% of
// them failed.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) CircuitBreaker {
	return func(addr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[bool](settings)
	}
}
