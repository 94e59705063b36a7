package ports

import (
	"context"

	"fleet-breakeven-service/internal/domain"
)

// Cache of district -> route estimate mappings.
// The engine consults a cache before the estimator so each district is
// looked up externally at most once. Keys are normalized districts.
type EstimateCache interface {
	// GetMany returns cached estimates for the given districts.
	// Missing districts are simply absent from the result map.
	GetMany(ctx context.Context, districts []string) (map[string]domain.RouteEstimate, error)
	// PutMany stores estimates for later runs.
	PutMany(ctx context.Context, estimates map[string]domain.RouteEstimate) error
}
