package services

import (
	"testing"

	"fleet-breakeven-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRec(orderID, district string, cost int64, volM3, kg float64) domain.DeliveryRecord {
	return domain.DeliveryRecord{
		OrderID:     orderID,
		District:    district,
		Postcode:    district + " 1AA",
		CourierCost: decimal.NewFromInt(cost),
		VolumeM3:    volM3,
		WeightKg:    kg,
		Quantity:    1,
	}
}

func TestSelectVanLoadPrefersExpensiveOrders(t *testing.T) {
	van := domain.DefaultVanCostParameters()
	van.CapacityM3 = 1.25 // usable 1.0 m3: room for two 0.5 m3 orders
	van.CapacityKg = 1000

	records := []domain.DeliveryRecord{
		loadRec("ORD-CHEAP", "B37", 5, 0.5, 10),
		loadRec("ORD-MID", "B37", 12, 0.5, 10),
		loadRec("ORD-DEAR", "B37", 30, 0.5, 10),
	}
	estimates := map[string]domain.RouteEstimate{
		"B37": {DistanceKm: 80.4672, DurationMinutes: 70}, // 50 miles
	}

	plan := SelectVanLoad(records, estimates, van)

	require.Len(t, plan.Orders, 2)
	assert.Equal(t, "ORD-DEAR", plan.Orders[0].OrderID)
	assert.Equal(t, "ORD-MID", plan.Orders[1].OrderID)

	// stem 100 miles + 2 drops * 1.2
	assert.InDelta(t, 102.4, plan.RouteMiles, 0.01)
	assert.True(t, plan.CourierSaving.Equal(decimal.NewFromInt(42)))
	assert.False(t, plan.HasLondonStop)
}

func TestSelectVanLoadRespectsWeightLimit(t *testing.T) {
	van := domain.DefaultVanCostParameters()
	van.CapacityKg = 25

	records := []domain.DeliveryRecord{
		loadRec("ORD-1", "B37", 20, 0.1, 20),
		loadRec("ORD-2", "B37", 10, 0.1, 20),
	}
	estimates := map[string]domain.RouteEstimate{
		"B37": {DistanceKm: 10, DurationMinutes: 15},
	}

	plan := SelectVanLoad(records, estimates, van)

	require.Len(t, plan.Orders, 1)
	assert.Equal(t, "ORD-1", plan.Orders[0].OrderID)
}

func TestSelectVanLoadLondonSurchargeAndViability(t *testing.T) {
	van := domain.DefaultVanCostParameters()

	records := []domain.DeliveryRecord{
		loadRec("ORD-1", "EC2A", 300, 0.5, 10),
		loadRec("ORD-2", "EC2A", 250, 0.5, 10),
	}
	estimates := map[string]domain.RouteEstimate{
		"EC2A": {DistanceKm: 120, DurationMinutes: 140},
	}

	plan := SelectVanLoad(records, estimates, van)

	assert.True(t, plan.HasLondonStop)
	assert.True(t, plan.Viable, "net profit %s", plan.NetProfit)
	assert.True(t, plan.NetProfit.Equal(plan.CourierSaving.Sub(plan.VanCost)))
}

func TestSelectVanLoadIgnoresUnroutedDistricts(t *testing.T) {
	van := domain.DefaultVanCostParameters()

	records := []domain.DeliveryRecord{
		loadRec("ORD-1", "B37", 20, 0.1, 5),
		loadRec("ORD-2", "ZZ9", 50, 0.1, 5),
	}
	estimates := map[string]domain.RouteEstimate{
		"B37": {DistanceKm: 10, DurationMinutes: 15},
	}

	plan := SelectVanLoad(records, estimates, van)

	require.Len(t, plan.Orders, 1)
	assert.Equal(t, "ORD-1", plan.Orders[0].OrderID)
}

func TestSelectVanLoadEmptyInput(t *testing.T) {
	plan := SelectVanLoad(nil, nil, domain.DefaultVanCostParameters())

	assert.Empty(t, plan.Orders)
	assert.False(t, plan.Viable)
	assert.True(t, plan.NetProfit.IsZero())
}

func TestTopAreas(t *testing.T) {
	records := []domain.DeliveryRecord{
		loadRec("ORD-1", "", 10, 0, 0), // postcode B37 1AA -> area B... district empty, postcode used
		loadRec("ORD-2", "NW10", 40, 0, 0),
		loadRec("ORD-3", "NW1", 25, 0, 0),
		loadRec("ORD-4", "B37", 12, 0, 0),
	}
	records[0].Postcode = "B1 1AA"

	stats := TopAreas(records, 2)

	require.Len(t, stats, 2)
	assert.Equal(t, "NW", stats[0].Area)
	assert.Equal(t, 2, stats[0].OrderCount)
	assert.True(t, stats[0].CourierValue.Equal(decimal.NewFromInt(65)))
	assert.Equal(t, "B", stats[1].Area)
}
