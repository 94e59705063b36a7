package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleet-breakeven-service/internal/adapters/cache"
	"fleet-breakeven-service/internal/adapters/distance"
	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testParams() domain.CostModelParameters {
	return domain.CostModelParameters{
		FuelPerKm:         1.0,
		WagePerMinute:     0.5,
		DepreciationPerKm: 0.2,
	}
}

func rec(orderID, postcode string, cost int64) domain.DeliveryRecord {
	return domain.DeliveryRecord{
		OrderID:     orderID,
		Postcode:    postcode,
		CourierCost: decimal.NewFromInt(cost),
		Quantity:    1,
	}
}

func TestAnalyzeFavorableDistrict(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "SW1A 2BB", 22),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	s := res.Summaries[0]

	assert.Equal(t, "SW1A", s.District)
	assert.Equal(t, 2, s.OrderCount)
	// 5*1 + 15*0.5 + 5*0.2 = 13.5 per order
	assert.True(t, s.PerOrderInHouse.Equal(decimal.NewFromFloat(13.5)), "per order = %s", s.PerOrderInHouse)
	assert.True(t, s.InHouseCost.Equal(decimal.NewFromInt(27)), "in-house = %s", s.InHouseCost)
	assert.True(t, s.CourierCost.Equal(decimal.NewFromInt(42)), "courier = %s", s.CourierCost)
	assert.True(t, s.Favorable)

	assert.Equal(t, domain.VerdictInsource, res.Recommendation.Verdict)
	assert.Equal(t, []string{"SW1A"}, res.Recommendation.FavorableDistricts)
}

func TestAnalyzeUnfavorableOnEqualCost(t *testing.T) {
	est := distance.NewMockEstimator()
	// per-order in-house cost = 10*1 + 20*0.5 + 10*0.2 = 22
	est.Set("B37", 10, 20)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{rec("ORD-1", "B37 7GT", 22)},
		Params:  testParams(),
		Van:     domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	// equal cost is not favorable: the comparison is strict
	assert.False(t, res.Summaries[0].Favorable)
	assert.Equal(t, domain.VerdictStay, res.Recommendation.Verdict)
}

func TestAnalyzeFlagsFailedLookups(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)
	est.FailWith("EH1", ports.ErrLookupUnavailable)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "EH1 2NG", 15),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "SW1A", res.Summaries[0].District)
	assert.Equal(t, []string{"EH1"}, res.FlaggedDistricts)
}

func TestAnalyzeIndeterminateWhenNothingResolves(t *testing.T) {
	est := distance.NewMockEstimator()
	est.FailWith("EH1", ports.ErrLookupUnavailable)
	est.FailWith("G1", ports.ErrLookupUnavailable)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "EH1 2NG", 15),
			rec("ORD-2", "G1 1AA", 18),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Summaries)
	assert.Equal(t, domain.VerdictIndeterminate, res.Recommendation.Verdict)
	assert.Equal(t, []string{"EH1", "G1"}, res.FlaggedDistricts)
}

func TestAnalyzeExpiredDeadlineYieldsPartialResult(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)
	est.Set("EH1", 300, 280)

	// SW1A is already cached, so only EH1 needs a live lookup.
	persistent := cache.NewMemoryEstimateCache()
	require.NoError(t, persistent.PutMany(context.Background(), map[string]domain.RouteEstimate{
		"SW1A": {DistanceKm: 5, DurationMinutes: 15},
	}))

	engine := NewEngine(est, persistent, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	res, err := engine.Analyze(ctx, AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "EH1 2NG", 15),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "SW1A", res.Summaries[0].District)
	assert.Equal(t, []string{"EH1"}, res.FlaggedDistricts)
}

func TestAnalyzeExpiredDeadlineFlagsEverythingUnresolved(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)
	est.Set("EH1", 300, 280)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	res, err := engine.Analyze(ctx, AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "EH1 2NG", 15),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Summaries)
	assert.Equal(t, domain.VerdictIndeterminate, res.Recommendation.Verdict)
	assert.Equal(t, []string{"EH1", "SW1A"}, res.FlaggedDistricts)
}

// trackingEstimator records the peak number of in-flight lookups.
type trackingEstimator struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (te *trackingEstimator) Estimate(ctx context.Context, district string) (domain.RouteEstimate, error) {
	te.mu.Lock()
	te.inFlight++
	if te.inFlight > te.peak {
		te.peak = te.inFlight
	}
	te.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	te.mu.Lock()
	te.inFlight--
	te.mu.Unlock()

	return domain.RouteEstimate{DistanceKm: 5, DurationMinutes: 15}, nil
}

func TestAnalyzeBoundsLookupConcurrency(t *testing.T) {
	est := &trackingEstimator{}

	engine := NewEngine(est, nil, zap.NewNop().Sugar())
	engine.LookupConcurrency = 2

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "EH1 2NG", 15),
			rec("ORD-3", "G1 1AA", 18),
			rec("ORD-4", "B37 7GT", 12),
			rec("ORD-5", "NW1 4RY", 25),
			rec("ORD-6", "LS1 4DY", 19),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	assert.Len(t, res.Summaries, 6)
	assert.LessOrEqual(t, est.peak, 2)
	assert.Positive(t, est.peak)
}

func TestAnalyzeSkipsMalformedRecords(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	res, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "not a postcode", 10),
			rec("ORD-3", "", 12),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.SkippedRecords)

	// valid record count equals the sum of per-district order counts
	total := 0
	for _, s := range res.Summaries {
		total += s.OrderCount
	}
	assert.Equal(t, 1, total)
}

func TestAnalyzeLooksUpEachDistrictOnce(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)
	est.Set("B37", 40, 55)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	records := []domain.DeliveryRecord{
		rec("ORD-1", "SW1A 1AA", 20),
		rec("ORD-2", "SW1A 2BB", 22),
		rec("ORD-3", "SW1A 3CC", 18),
		rec("ORD-4", "B37 7GT", 9),
	}

	_, err := engine.Analyze(context.Background(), AnalyzeRequest{
		Records: records,
		Params:  testParams(),
		Van:     domain.DefaultVanCostParameters(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, est.CallCount("SW1A"))
	assert.Equal(t, 1, est.CallCount("B37"))
}

func TestAnalyzeUsesPersistentCache(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)

	persistent := cache.NewMemoryEstimateCache()
	engine := NewEngine(est, persistent, zap.NewNop().Sugar())

	req := AnalyzeRequest{
		Records: []domain.DeliveryRecord{rec("ORD-1", "SW1A 1AA", 20)},
		Params:  testParams(),
		Van:     domain.DefaultVanCostParameters(),
	}

	_, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	_, err = engine.Analyze(context.Background(), req)
	require.NoError(t, err)

	// second run is served from the cache
	assert.Equal(t, 1, est.CallCount("SW1A"))
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)
	est.Set("NW10", 90, 110)

	engine := NewEngine(est, nil, zap.NewNop().Sugar())

	req := AnalyzeRequest{
		Records: []domain.DeliveryRecord{
			rec("ORD-1", "SW1A 1AA", 20),
			rec("ORD-2", "NW10 4UX", 31),
		},
		Params: testParams(),
		Van:    domain.DefaultVanCostParameters(),
	}

	first, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBreakevenVolume(t *testing.T) {
	// avg charge 20, variable cost 13.5 -> margin 6.5/order
	// fixed 165 / 6.5 = 25.38... -> 26 orders
	got := breakevenVolume(
		decimal.NewFromInt(40),
		decimal.NewFromInt(2),
		decimal.NewFromFloat(13.5),
		decimal.NewFromInt(165),
	)
	assert.Equal(t, 26, got)

	// negative margin: breakeven unreachable
	got = breakevenVolume(
		decimal.NewFromInt(10),
		decimal.NewFromInt(1),
		decimal.NewFromFloat(13.5),
		decimal.NewFromInt(165),
	)
	assert.Equal(t, 0, got)
}
