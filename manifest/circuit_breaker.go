package manifest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/git-pkgs/resolve"
)

// CircuitBreakerSource wraps a Source with per-host circuit breakers, so a
// failing manifest host stops being hammered while others stay reachable.
type CircuitBreakerSource struct {
	source   Source
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerSource creates a circuit breaker wrapper for a source.
func NewCircuitBreakerSource(s Source) *CircuitBreakerSource {
	return &CircuitBreakerSource{
		source:   s,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates a circuit breaker for the given host.
func (cbs *CircuitBreakerSource) getBreaker(host string) *circuit.Breaker {
	cbs.mu.RLock()
	breaker, exists := cbs.breakers[host]
	cbs.mu.RUnlock()

	if exists {
		return breaker
	}

	cbs.mu.Lock()
	defer cbs.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := cbs.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, reopening on an exponential
	// schedule.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	cbs.breakers[host] = breaker
	return breaker
}

// Fetch wraps the underlying source's Fetch with circuit breaker logic.
func (cbs *CircuitBreakerSource) Fetch(ctx context.Context, manifestURL string) (*resolve.CentralVersionMap, error) {
	host := extractHost(manifestURL)
	breaker := cbs.getBreaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for host %s: %w", host, ErrUnavailable)
	}

	var central *resolve.CentralVersionMap
	err := breaker.Call(func() error {
		var fetchErr error
		central, fetchErr = cbs.source.Fetch(ctx, manifestURL)
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}

	return central, nil
}

// extractHost extracts a host identifier from a URL for breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		// Fallback to simple truncation
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// States returns the current state of all circuit breakers, keyed by host.
func (cbs *CircuitBreakerSource) States() map[string]string {
	cbs.mu.RLock()
	defer cbs.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range cbs.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
