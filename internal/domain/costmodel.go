package domain

import "github.com/shopspring/decimal"

// Litres per imperial gallon, used to derive fuel cost from pump price.
const litresPerGallon = 4.546

// MilesPerKm converts route distances to the imperial units the van cost
// model is quoted in.
const MilesPerKm = 0.621371

// Per-unit running costs of an in-house delivery vehicle.
// These are external configuration, never derived from manifest data.
type CostModelParameters struct {
	FuelPerKm         float64 // GBP per km
	WagePerMinute     float64 // GBP per minute of transit
	DepreciationPerKm float64 // GBP per km
}

// PerOrderCost models the variable in-house cost of serving one order in a
// district: distance x fuel + time x wage + distance x depreciation.
func (p CostModelParameters) PerOrderCost(e RouteEstimate) float64 {
	return e.DistanceKm*p.FuelPerKm +
		e.DurationMinutes*p.WagePerMinute +
		e.DistanceKm*p.DepreciationPerKm
}

// Fixed daily costs and physical constraints of running one van.
type VanCostParameters struct {
	DriverDailyRate   decimal.Decimal
	InsuranceDaily    decimal.Decimal
	MaintenanceBuffer decimal.Decimal
	LondonSurcharge   decimal.Decimal
	SafetyMargin      float64 // multiplier applied to the total, e.g. 1.10

	DieselPerLitre float64 // GBP, pump price
	VanMPG         float64

	CapacityM3       float64
	CapacityKg       float64
	UtilizationRatio float64 // usable share of nominal volume
}

// DefaultVanCostParameters mirrors the rates used for the Kettering depot
// fleet model.
func DefaultVanCostParameters() VanCostParameters {
	return VanCostParameters{
		DriverDailyRate:   decimal.NewFromInt(140),
		InsuranceDaily:    decimal.NewFromInt(15),
		MaintenanceBuffer: decimal.NewFromInt(10),
		LondonSurcharge:   decimal.NewFromInt(15),
		SafetyMargin:      1.10,
		DieselPerLitre:    1.45,
		VanMPG:            30.0,
		CapacityM3:        12.0,
		CapacityKg:        1500.0,
		UtilizationRatio:  0.80,
	}
}

// FuelPerMile derives the running fuel cost from the current pump price.
func (v VanCostParameters) FuelPerMile() float64 {
	if v.VanMPG <= 0 {
		return 0
	}
	return v.DieselPerLitre * litresPerGallon / v.VanMPG
}

// FuelPerKm is FuelPerMile converted to metric, for use as the
// CostModelParameters fuel rate.
func (v VanCostParameters) FuelPerKm() float64 {
	return v.FuelPerMile() * MilesPerKm
}

// UsableVolumeM3 applies the utilization ratio to nominal capacity;
// manifests never pack a van to its rated volume.
func (v VanCostParameters) UsableVolumeM3() float64 {
	return v.CapacityM3 * v.UtilizationRatio
}

// FixedDailyCost is the volume-independent cost of putting one van on the
// road for a day.
func (v VanCostParameters) FixedDailyCost() decimal.Decimal {
	return v.DriverDailyRate.Add(v.InsuranceDaily).Add(v.MaintenanceBuffer)
}

// OperatingCost is the full daily van cost for a route of the given length,
// including the safety margin and the London surcharge when any stop falls
// inside the central zone.
func (v VanCostParameters) OperatingCost(totalMiles float64, hasLondonStop bool) decimal.Decimal {
	fuel := decimal.NewFromFloat(totalMiles * v.FuelPerMile())
	total := v.FixedDailyCost().Add(fuel)
	if hasLondonStop {
		total = total.Add(v.LondonSurcharge)
	}
	margin := v.SafetyMargin
	if margin <= 0 {
		margin = 1
	}
	return total.Mul(decimal.NewFromFloat(margin)).Round(2)
}
