package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPerOrderCost(t *testing.T) {
	params := CostModelParameters{
		FuelPerKm:         1.0,
		WagePerMinute:     0.5,
		DepreciationPerKm: 0.2,
	}
	est := RouteEstimate{DistanceKm: 5, DurationMinutes: 15}

	// 5*1 + 15*0.5 + 5*0.2 = 13.5
	assert.InDelta(t, 13.5, params.PerOrderCost(est), 1e-9)
}

func TestVanFuelRates(t *testing.T) {
	van := DefaultVanCostParameters()

	// 1.45 * 4.546 / 30
	assert.InDelta(t, 0.21972, van.FuelPerMile(), 1e-4)
	assert.InDelta(t, van.FuelPerMile()*0.621371, van.FuelPerKm(), 1e-9)
	assert.InDelta(t, 9.6, van.UsableVolumeM3(), 1e-9)
}

func TestOperatingCost(t *testing.T) {
	van := DefaultVanCostParameters()
	van.SafetyMargin = 1.0
	van.DieselPerLitre = 0 // isolate fixed costs

	cost := van.OperatingCost(100, false)
	assert.True(t, cost.Equal(decimal.NewFromInt(165)), "got %s", cost)

	withLondon := van.OperatingCost(100, true)
	assert.True(t, withLondon.Equal(decimal.NewFromInt(180)), "got %s", withLondon)
}
