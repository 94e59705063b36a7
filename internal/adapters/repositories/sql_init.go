package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-breakeven-service/internal/domain"
)

// InitSchema creates the tables the service needs. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS delivery_records (
		order_id TEXT PRIMARY KEY,
		postcode TEXT NOT NULL,
		district TEXT NOT NULL,
		courier_cost NUMERIC(10, 2) NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 1,
		delivery_date DATE
	);
	`

	createEstimateCacheQuery := `
	CREATE TABLE IF NOT EXISTS estimate_cache (
		district TEXT PRIMARY KEY,
		distance_km DOUBLE PRECISION NOT NULL,
		duration_minutes DOUBLE PRECISION NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		run_id TEXT PRIMARY KEY,
		ran_at TIMESTAMPTZ NOT NULL,
		area TEXT NOT NULL,
		pool_size INTEGER NOT NULL,
		selected_orders INTEGER NOT NULL,
		van_cost NUMERIC(10, 2) NOT NULL,
		courier_saving NUMERIC(10, 2) NOT NULL,
		net_profit NUMERIC(10, 2) NOT NULL,
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_records_district
    ON delivery_records(district);
	`

	statements := []string{
		createRecordsQuery,
		createEstimateCacheQuery,
		createRunsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// ImportRecords upserts manifest records into the delivery_records table.
func ImportRecords(ctx context.Context, db *sql.DB, records []domain.DeliveryRecord) error {
	if db == nil {
		return errors.New("import records: DB is nil")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import records: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO delivery_records (
		order_id, postcode, district, courier_cost,
		weight_kg, volume_m3, quantity, delivery_date
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '0001-01-01'::date))
	ON CONFLICT (order_id) DO UPDATE
	SET postcode = EXCLUDED.postcode,
		district = EXCLUDED.district,
		courier_cost = EXCLUDED.courier_cost,
		weight_kg = EXCLUDED.weight_kg,
		volume_m3 = EXCLUDED.volume_m3,
		quantity = EXCLUDED.quantity,
		delivery_date = EXCLUDED.delivery_date;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("import records: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(
			ctx,
			rec.OrderID, rec.Postcode, rec.District, rec.CourierCost,
			rec.WeightKg, rec.VolumeM3, rec.Quantity, rec.DeliveryDate,
		); err != nil {
			return fmt.Errorf("import records: insert order_id=%q: %w", rec.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import records: commit tx: %w", err)
	}

	return nil
}
