package cache

import (
	"context"
	"sync"

	"fleet-breakeven-service/internal/domain"
)

// MemoryEstimateCache is a run-scoped in-memory estimate cache.
// Create one per analysis run; it must not be shared across runs so the
// model stays pure and external data changes are picked up next run.
type MemoryEstimateCache struct {
	mu        sync.RWMutex
	estimates map[string]domain.RouteEstimate
}

func NewMemoryEstimateCache() *MemoryEstimateCache {
	return &MemoryEstimateCache{estimates: make(map[string]domain.RouteEstimate)}
}

func (m *MemoryEstimateCache) GetMany(ctx context.Context, districts []string) (map[string]domain.RouteEstimate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]domain.RouteEstimate, len(districts))
	for _, d := range districts {
		if est, ok := m.estimates[d]; ok {
			out[d] = est
		}
	}
	return out, nil
}

func (m *MemoryEstimateCache) PutMany(ctx context.Context, estimates map[string]domain.RouteEstimate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for d, est := range estimates {
		m.estimates[d] = est
	}
	return nil
}
