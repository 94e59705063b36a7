package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome of one analysis run, recorded for day-over-day tracking.
type RunEntry struct {
	RunID          string
	RanAt          time.Time
	Area           string
	PoolSize       int
	SelectedOrders int
	VanCost        decimal.Decimal
	CourierSaving  decimal.Decimal
	NetProfit      decimal.Decimal
	Status         string // "USED" or "REJECTED"
	Note           string
}

// Append-only log of analysis run outcomes.
type RunHistory interface {
	Append(ctx context.Context, entry RunEntry) error
}
