package services

import (
	"math"
	"slices"

	"fleet-breakeven-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Average miles between nearby drops on a UK urban round.
const dropMiles = 1.2

// Average speed assumed for shift-time estimates, mph.
const averageSpeedMph = 25.0

// Handling time per stop, hours (3 minutes).
const dropHandlingHours = 0.05

// Legal daily driving limit for a single driver, hours.
const maxDrivingHours = 9.0

// A concrete day plan for one van serving a postcode area.
type LoadPlan struct {
	Orders        []domain.DeliveryRecord
	TotalWeightKg float64
	TotalVolumeM3 float64

	// Stem (depot to area and back) plus local drop loop.
	RouteMiles float64
	ShiftHours float64

	HasLondonStop    bool
	OverDrivingLimit bool

	CourierSaving decimal.Decimal
	VanCost       decimal.Decimal
	NetProfit     decimal.Decimal
	// True when sending the van beats paying the courier.
	Viable bool
}

// SelectVanLoad picks the orders a single van should carry.
//
// Orders are taken highest 3PL charge first (those are the most valuable to
// pull off the courier) until volume or weight capacity is hit. Orders whose
// district has no estimate are ignored. The resulting mileage uses the
// stem-and-loop model: twice the distance to the area's furthest district
// plus a fixed per-drop allowance.
func SelectVanLoad(
	records []domain.DeliveryRecord,
	estimates map[string]domain.RouteEstimate,
	van domain.VanCostParameters,
) LoadPlan {
	routed := make([]domain.DeliveryRecord, 0, len(records))
	anchorMiles := 0.0
	for _, rec := range records {
		est, ok := estimates[rec.District]
		if !ok {
			continue
		}
		routed = append(routed, rec)
		if miles := est.DistanceKm * domain.MilesPerKm; miles > anchorMiles {
			anchorMiles = miles
		}
	}

	if len(routed) == 0 {
		return LoadPlan{
			CourierSaving: decimal.Zero,
			VanCost:       decimal.Zero,
			NetProfit:     decimal.Zero,
		}
	}

	// Highest charge first; order ID breaks ties deterministically.
	slices.SortFunc(routed, func(a, b domain.DeliveryRecord) int {
		if c := b.CourierCost.Cmp(a.CourierCost); c != 0 {
			return c
		}
		if a.OrderID < b.OrderID {
			return -1
		}
		if a.OrderID > b.OrderID {
			return 1
		}
		return 0
	})

	plan := LoadPlan{Orders: make([]domain.DeliveryRecord, 0, len(routed))}
	maxVol := van.UsableVolumeM3()

	for _, rec := range routed {
		if plan.TotalVolumeM3+rec.VolumeM3 > maxVol {
			continue
		}
		if plan.TotalWeightKg+rec.WeightKg > van.CapacityKg {
			continue
		}

		plan.Orders = append(plan.Orders, rec)
		plan.TotalVolumeM3 += rec.VolumeM3
		plan.TotalWeightKg += rec.WeightKg
	}

	stops := len(plan.Orders)
	plan.RouteMiles = math.Round((anchorMiles*2+float64(stops)*dropMiles)*100) / 100
	plan.ShiftHours = plan.RouteMiles/averageSpeedMph + float64(stops)*dropHandlingHours
	plan.OverDrivingLimit = plan.ShiftHours > maxDrivingHours

	saving := decimal.Zero
	for _, rec := range plan.Orders {
		saving = saving.Add(rec.CourierCost)
		if domain.IsLondonDistrict(rec.District) {
			plan.HasLondonStop = true
		}
	}

	plan.CourierSaving = saving
	plan.VanCost = van.OperatingCost(plan.RouteMiles, plan.HasLondonStop)
	plan.NetProfit = saving.Sub(plan.VanCost)
	plan.Viable = plan.NetProfit.IsPositive()

	return plan
}
