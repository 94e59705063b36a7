package distance

import (
	"context"
	"fmt"
	"sync"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"
)

// MockEstimator is a deterministic in-memory RouteEstimator for tests.
// It records how often each district was looked up.
type MockEstimator struct {
	mu        sync.Mutex
	estimates map[string]domain.RouteEstimate
	failures  map[string]error
	calls     map[string]int
}

func NewMockEstimator() *MockEstimator {
	return &MockEstimator{
		estimates: make(map[string]domain.RouteEstimate),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (m *MockEstimator) Set(district string, km, minutes float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimates[district] = domain.RouteEstimate{DistanceKm: km, DurationMinutes: minutes}
}

// FailWith makes lookups for a district return the given error.
func (m *MockEstimator) FailWith(district string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[district] = err
}

func (m *MockEstimator) Estimate(ctx context.Context, district string) (domain.RouteEstimate, error) {
	// Real lookups fail at request time once the run deadline has passed.
	if err := ctx.Err(); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("mock estimator: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[district]++

	if err, ok := m.failures[district]; ok {
		return domain.RouteEstimate{}, err
	}
	if est, ok := m.estimates[district]; ok {
		return est, nil
	}
	return domain.RouteEstimate{}, fmt.Errorf("mock estimator: no estimate for %q: %w", district, ports.ErrLookupUnavailable)
}

// CallCount returns how many times a district was looked up.
func (m *MockEstimator) CallCount(district string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[district]
}
