package ports

import (
	"context"
	"errors"

	"fleet-breakeven-service/internal/domain"
)

// Returned (possibly wrapped) when the external estimate service failed,
// was rate-limited, or the daily request budget is spent. Callers exclude
// the affected district and continue.
var ErrLookupUnavailable = errors.New("route lookup unavailable")

// Contract for resolving travel distance and time from the depot to a
// postcode district. Implementations may call external services and fail
// per district; a failure never aborts a run.
type RouteEstimator interface {
	// Estimate returns the depot -> district route estimate.
	Estimate(ctx context.Context, district string) (domain.RouteEstimate, error)
}
