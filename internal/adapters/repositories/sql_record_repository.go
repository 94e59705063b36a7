package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-breakeven-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Postgres-backed implementation of the DeliveryRecordRepository port.
type SQLRecordRepository struct{ DB *sql.DB }

func NewSQLRecordRepository(db *sql.DB) *SQLRecordRepository {
	return &SQLRecordRepository{DB: db}
}

// ListRecords returns records for one postcode area (or all of them when
// area is empty), in stable order-ID order, capped at limit when limit > 0.
func (s *SQLRecordRepository) ListRecords(ctx context.Context, area string, limit int) ([]domain.DeliveryRecord, error) {
	if s.DB == nil {
		return nil, errors.New("record repository: DB is nil")
	}

	query := `
	SELECT
		order_id,
		postcode,
		district,
		courier_cost,
		weight_kg,
		volume_m3,
		quantity,
		delivery_date
	FROM delivery_records
	WHERE ($1 = '' OR district LIKE $1 || '%')
	ORDER BY order_id
	LIMIT CASE WHEN $2 > 0 THEN $2 ELSE NULL END;
	`
	rows, err := s.DB.QueryContext(ctx, query, domain.NormalizePostcode(area), limit)
	if err != nil {
		return nil, fmt.Errorf("list records: query delivery_records table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.DeliveryRecord, 0, 64)
	for rows.Next() {
		var (
			rec      domain.DeliveryRecord
			cost     string
			delivery sql.NullTime
		)
		err := rows.Scan(
			&rec.OrderID,
			&rec.Postcode,
			&rec.District,
			&cost,
			&rec.WeightKg,
			&rec.VolumeM3,
			&rec.Quantity,
			&delivery,
		)
		if err != nil {
			return nil, fmt.Errorf("list records: scan row: %w", err)
		}

		rec.CourierCost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("list records: parse cost for order_id=%q: %w", rec.OrderID, err)
		}
		if delivery.Valid {
			rec.DeliveryDate = delivery.Time.UTC().Truncate(24 * time.Hour)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: row iteration: %w", err)
	}

	return records, nil
}
