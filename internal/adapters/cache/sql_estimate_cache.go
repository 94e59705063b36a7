package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQLEstimateCache is a Postgres-backed cache of district route estimates,
// persistent across runs. Districts are expected to be normalized by the
// caller.
type SQLEstimateCache struct {
	DB  *sql.DB
	Log *zap.SugaredLogger
}

func NewSQLEstimateCache(db *sql.DB, log *zap.SugaredLogger) *SQLEstimateCache {
	return &SQLEstimateCache{DB: db, Log: log}
}

// Fetch cached estimates for multiple districts.
func (s *SQLEstimateCache) GetMany(ctx context.Context, districts []string) (_ map[string]domain.RouteEstimate, err error) {
	defer obs.Time(s.Log, "estimate.cache.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("estimate cache: db is nil")
	}

	uniq := dedupeDistricts(districts)
	if len(uniq) == 0 {
		return map[string]domain.RouteEstimate{}, nil
	}

	q := `
	SELECT district, distance_km, duration_minutes
    FROM estimate_cache
    WHERE district = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get estimate cache: query estimate_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.RouteEstimate, len(uniq))
	for rows.Next() {
		var district string
		var km, minutes float64
		if err := rows.Scan(&district, &km, &minutes); err != nil {
			return nil, fmt.Errorf("get estimate cache: scan rows: %w", err)
		}
		out[district] = domain.RouteEstimate{
			DistanceKm:      km,
			DurationMinutes: minutes,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get estimate cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many district estimates in one transaction.
func (s *SQLEstimateCache) PutMany(ctx context.Context, estimates map[string]domain.RouteEstimate) error {
	if s.DB == nil {
		return errors.New("estimate cache: db is nil")
	}

	if len(estimates) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert estimate cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO estimate_cache (district, distance_km, duration_minutes)
    VALUES ($1, $2, $3)
	ON CONFLICT (district) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_minutes = EXCLUDED.duration_minutes,
		fetched_at = now();
	`)
	if err != nil {
		return fmt.Errorf("insert estimate cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for d, est := range estimates {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("insert estimate cache: empty district key")
		}

		if _, err := stmt.ExecContext(ctx, d, est.DistanceKm, est.DurationMinutes); err != nil {
			return fmt.Errorf("insert estimate cache district=%q: %w", d, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert estimate cache commit: %w", err)
	}

	return nil
}
