package services

import (
	"context"
	"sort"
	"sync"

	"fleet-breakeven-service/internal/domain"

	"golang.org/x/sync/errgroup"
)

// resolveEstimates maps each district to a route estimate, consulting the
// persistent cache first and fanning out estimator calls for the misses with
// bounded concurrency. Each district is estimated at most once.
//
// Failures are not fatal: failed districts are returned in the flagged list,
// sorted, and excluded from the estimate map. A run-level deadline simply
// flags whatever was still unresolved when it expired.
func (e *Engine) resolveEstimates(ctx context.Context, districts []string) (map[string]domain.RouteEstimate, []string) {
	resolved := make(map[string]domain.RouteEstimate, len(districts))

	if e.Cache != nil && len(districts) > 0 {
		hits, err := e.Cache.GetMany(ctx, districts)
		if err != nil {
			// A broken cache degrades to estimator-only resolution.
			if e.Log != nil {
				e.Log.Warnw("estimate cache read failed", "err", err)
			}
		} else {
			for d, est := range hits {
				resolved[d] = est
			}
		}
	}

	misses := make([]string, 0, len(districts))
	for _, d := range districts {
		if _, ok := resolved[d]; !ok {
			misses = append(misses, d)
		}
	}

	var (
		mu      sync.Mutex
		fresh   = make(map[string]domain.RouteEstimate, len(misses))
		flagged = make(map[string]struct{})
	)

	limit := e.LookupConcurrency
	if limit <= 0 {
		limit = DefaultLookupConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, d := range misses {
		g.Go(func() error {
			est, err := e.Estimator.Estimate(gctx, d)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if e.Log != nil {
					e.Log.Warnw("route estimate failed", "district", d, "err", err)
				}
				flagged[d] = struct{}{}
				return nil
			}
			fresh[d] = est
			return nil
		})
	}

	// Goroutines swallow lookup errors, so Wait only propagates panics.
	_ = g.Wait()

	if e.Cache != nil && len(fresh) > 0 {
		if err := e.Cache.PutMany(ctx, fresh); err != nil && e.Log != nil {
			e.Log.Warnw("estimate cache write failed", "err", err)
		}
	}

	for d, est := range fresh {
		resolved[d] = est
	}

	flaggedList := make([]string, 0, len(flagged))
	for d := range flagged {
		flaggedList = append(flaggedList, d)
	}
	sort.Strings(flaggedList)

	return resolved, flaggedList
}
