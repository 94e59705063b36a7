package domain

import "github.com/shopspring/decimal"

// Overall verdict of an analysis run.
type Verdict string

const (
	// At least one district is cheaper to serve in-house at observed volume.
	VerdictInsource Verdict = "insource"
	// Every resolvable district is cheaper with the 3PL.
	VerdictStay Verdict = "stay"
	// No district could be resolved; the run produced no evidence either way.
	VerdictIndeterminate Verdict = "indeterminate"
)

// Aggregated comparison for one postcode district.
// Summaries are derived values, recomputed on every run from the records,
// the route estimate, and the cost parameters.
type DistrictSummary struct {
	District        string
	OrderCount      int
	CourierCost     decimal.Decimal // sum of recorded 3PL charges
	InHouseCost     decimal.Decimal // modeled variable cost for the observed volume
	PerOrderInHouse decimal.Decimal
	Favorable       bool // InHouseCost strictly below CourierCost
	BreakevenVolume int  // orders/day needed to cover fixed van cost; 0 when unreachable
	Estimate        RouteEstimate
}

// Recommendation is the run-level outcome across all resolvable districts.
type Recommendation struct {
	Verdict            Verdict
	FavorableDistricts []string
	TotalCourierCost   decimal.Decimal
	TotalInHouseCost   decimal.Decimal
}

// AnalysisResult is the complete output of one breakeven run.
type AnalysisResult struct {
	Summaries      []DistrictSummary
	Recommendation Recommendation
	// Input records dropped because they could not be normalized.
	SkippedRecords int
	// Districts excluded because their route estimate could not be resolved.
	FlaggedDistricts []string
}
