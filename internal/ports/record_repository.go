package ports

import (
	"context"

	"fleet-breakeven-service/internal/domain"
)

// Port: a boundary for retrieving delivery records from a data source.
type DeliveryRecordRepository interface {
	// ListRecords returns records whose district starts with the given
	// postcode area (empty area matches everything), capped at limit
	// records when limit > 0.
	ListRecords(ctx context.Context, area string, limit int) ([]domain.DeliveryRecord, error)
}
