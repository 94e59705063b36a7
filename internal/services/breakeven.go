package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default cap on concurrent external route lookups.
const DefaultLookupConcurrency = 5

// Size of a realistic morning manifest pool; larger inputs are truncated
// by the callers that load them.
const DefaultPoolLimit = 400

// Engine computes per-district insourcing comparisons.
//
// It coordinates:
//   - Grouping records by postcode district
//   - Deduplicated route estimate resolution (one lookup per district)
//   - The per-order in-house cost model
//   - Breakeven volume extrapolation
//
// The engine is a pure batch transform: it never mutates input records and
// every output is recomputed per run.
type Engine struct {
	Estimator ports.RouteEstimator
	// Optional persistent cache consulted before the estimator.
	Cache ports.EstimateCache
	Log   *zap.SugaredLogger

	// Max concurrent estimator calls; DefaultLookupConcurrency when zero.
	LookupConcurrency int
}

func NewEngine(estimator ports.RouteEstimator, cache ports.EstimateCache, log *zap.SugaredLogger) *Engine {
	return &Engine{
		Estimator: estimator,
		Cache:     cache,
		Log:       log,
	}
}

type AnalyzeRequest struct {
	Records []domain.DeliveryRecord
	Params  domain.CostModelParameters
	Van     domain.VanCostParameters
}

// Analyze runs the breakeven comparison for one batch of records.
//
// Malformed records are skipped and counted; districts whose estimate cannot
// be resolved are excluded and flagged. Neither is fatal: the only
// "all failed" signal is an indeterminate recommendation.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error) {
	if e.Estimator == nil {
		return nil, errors.New("analyze: estimator must be non-nil")
	}

	byDistrict, skipped := groupByDistrict(req.Records, e.Log)

	districts := make([]string, 0, len(byDistrict))
	for d := range byDistrict {
		districts = append(districts, d)
	}
	sort.Strings(districts)

	estimates, flagged := e.resolveEstimates(ctx, districts)

	summaries := make([]domain.DistrictSummary, 0, len(estimates))
	totalCourier := decimal.Zero
	totalInHouse := decimal.Zero
	favorable := make([]string, 0)

	for _, d := range districts {
		est, ok := estimates[d]
		if !ok {
			continue
		}

		s := summarizeDistrict(d, byDistrict[d], est, req.Params, req.Van)
		summaries = append(summaries, s)

		totalCourier = totalCourier.Add(s.CourierCost)
		totalInHouse = totalInHouse.Add(s.InHouseCost)
		if s.Favorable {
			favorable = append(favorable, d)
		}
	}

	rec := domain.Recommendation{
		Verdict:            domain.VerdictStay,
		FavorableDistricts: favorable,
		TotalCourierCost:   totalCourier,
		TotalInHouseCost:   totalInHouse,
	}
	switch {
	case len(summaries) == 0:
		rec.Verdict = domain.VerdictIndeterminate
	case len(favorable) > 0:
		rec.Verdict = domain.VerdictInsource
	}

	return &domain.AnalysisResult{
		Summaries:        summaries,
		Recommendation:   rec,
		SkippedRecords:   skipped,
		FlaggedDistricts: flagged,
	}, nil
}

// groupByDistrict buckets records under their normalized outward district.
// Records whose postcode cannot be normalized are dropped and counted.
func groupByDistrict(records []domain.DeliveryRecord, log *zap.SugaredLogger) (map[string][]domain.DeliveryRecord, int) {
	out := make(map[string][]domain.DeliveryRecord)
	skipped := 0

	for _, rec := range records {
		district := rec.District
		if district == "" {
			d, err := domain.OutwardDistrict(rec.Postcode)
			if err != nil {
				skipped++
				if log != nil {
					log.Debugw("record skipped", "order_id", rec.OrderID, "postcode", rec.Postcode, "err", err)
				}
				continue
			}
			district = d
		}
		out[district] = append(out[district], rec)
	}

	return out, skipped
}

func summarizeDistrict(
	district string,
	records []domain.DeliveryRecord,
	est domain.RouteEstimate,
	params domain.CostModelParameters,
	van domain.VanCostParameters,
) domain.DistrictSummary {
	count := decimal.NewFromInt(int64(len(records)))

	perOrder := decimal.NewFromFloat(params.PerOrderCost(est))
	inHouse := perOrder.Mul(count)

	courier := decimal.Zero
	for _, rec := range records {
		courier = courier.Add(rec.CourierCost)
	}

	return domain.DistrictSummary{
		District:        district,
		OrderCount:      len(records),
		CourierCost:     courier,
		InHouseCost:     inHouse,
		PerOrderInHouse: perOrder,
		Favorable:       inHouse.LessThan(courier),
		BreakevenVolume: breakevenVolume(courier, count, perOrder, van.FixedDailyCost()),
		Estimate:        est,
	}
}

// breakevenVolume extrapolates linearly: each order saves the average 3PL
// charge and costs the variable per-order amount, so the fixed daily van
// cost is covered after fixed / (avg charge - variable cost) orders.
// Returns 0 when the margin is not positive (breakeven unreachable).
func breakevenVolume(courierTotal, count, perOrder, fixedDaily decimal.Decimal) int {
	if count.IsZero() {
		return 0
	}

	avgCharge := courierTotal.Div(count)
	margin := avgCharge.Sub(perOrder)
	if !margin.IsPositive() {
		return 0
	}

	return int(fixedDaily.Div(margin).Ceil().IntPart())
}

// FormatVerdict renders a recommendation for logs and console reports.
func FormatVerdict(rec domain.Recommendation) string {
	switch rec.Verdict {
	case domain.VerdictInsource:
		return fmt.Sprintf("insource %d district(s): in-house %s vs 3PL %s",
			len(rec.FavorableDistricts),
			rec.TotalInHouseCost.StringFixed(2),
			rec.TotalCourierCost.StringFixed(2),
		)
	case domain.VerdictIndeterminate:
		return "indeterminate: no district could be resolved"
	default:
		return fmt.Sprintf("stay with 3PL: in-house %s vs 3PL %s",
			rec.TotalInHouseCost.StringFixed(2),
			rec.TotalCourierCost.StringFixed(2),
		)
	}
}
