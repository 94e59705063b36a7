package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-breakeven-service/internal/ports"
)

// Postgres-backed append-only log of analysis run outcomes.
type SQLRunHistory struct{ DB *sql.DB }

func NewSQLRunHistory(db *sql.DB) *SQLRunHistory {
	return &SQLRunHistory{DB: db}
}

func (s *SQLRunHistory) Append(ctx context.Context, entry ports.RunEntry) error {
	if s.DB == nil {
		return errors.New("run history: DB is nil")
	}

	if entry.RunID == "" {
		return errors.New("run history: run id must be non-empty")
	}

	query := `
	INSERT INTO analysis_runs (
		run_id, ran_at, area, pool_size, selected_orders,
		van_cost, courier_saving, net_profit, status, note
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := s.DB.ExecContext(
		ctx, query,
		entry.RunID, entry.RanAt, entry.Area, entry.PoolSize, entry.SelectedOrders,
		entry.VanCost, entry.CourierSaving, entry.NetProfit, entry.Status, entry.Note,
	)
	if err != nil {
		return fmt.Errorf("run history: insert run_id=%q: %w", entry.RunID, err)
	}

	return nil
}
