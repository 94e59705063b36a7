package dto

type AnalyzeRequest struct {
	// Postcode area to analyze, e.g. "NW"; empty analyzes everything.
	Area string `json:"area"`
	// Cap on records pulled into the run; defaults to the morning pool size.
	PoolLimit int `json:"pool_limit"`

	// Cost model overrides; defaults come from service configuration.
	FuelPerKm         *float64 `json:"fuel_per_km"`
	WagePerMinute     *float64 `json:"wage_per_minute"`
	DepreciationPerKm *float64 `json:"depreciation_per_km"`
	// Today's pump price, feeding the van cost model.
	DieselPerLitre *float64 `json:"diesel_per_litre"`
}

type RouteEstimateResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

type DistrictSummaryResponse struct {
	District        string                `json:"district"`
	OrderCount      int                   `json:"order_count"`
	CourierCost     string                `json:"courier_cost_gbp"`
	InHouseCost     string                `json:"in_house_cost_gbp"`
	PerOrderInHouse string                `json:"per_order_in_house_gbp"`
	Favorable       bool                  `json:"favorable"`
	BreakevenVolume int                   `json:"breakeven_volume"`
	Estimate        RouteEstimateResponse `json:"estimate"`
}

type RecommendationResponse struct {
	Verdict            string   `json:"verdict"`
	FavorableDistricts []string `json:"favorable_districts"`
	TotalCourierCost   string   `json:"total_courier_cost_gbp"`
	TotalInHouseCost   string   `json:"total_in_house_cost_gbp"`
}

type AnalyzeResponse struct {
	Summaries        []DistrictSummaryResponse `json:"summaries"`
	Recommendation   RecommendationResponse    `json:"recommendation"`
	SkippedRecords   int                       `json:"skipped_records"`
	FlaggedDistricts []string                  `json:"flagged_districts"`
}
