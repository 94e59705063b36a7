package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// A single delivery order taken from a carrier manifest.
// Records are immutable inputs: the analysis never mutates them and they
// hold no identity beyond a single run.
type DeliveryRecord struct {
	OrderID      string
	Postcode     string // raw destination postcode as found in the manifest
	District     string // normalized outward district, e.g. "SW1A"
	CourierCost  decimal.Decimal // recorded 3PL charge, GBP
	WeightKg     float64
	VolumeM3     float64
	Quantity     int
	DeliveryDate time.Time
}

// Distance and travel time from the depot to a postcode district.
// Looked up at most once per distinct district per run.
type RouteEstimate struct {
	DistanceKm      float64
	DurationMinutes float64
}
