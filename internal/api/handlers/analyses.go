package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"fleet-breakeven-service/internal/api/dto"
	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"
	"fleet-breakeven-service/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied when an analysis request omits cost parameters.
type AnalysisDefaults struct {
	Params domain.CostModelParameters
	Van    domain.VanCostParameters
	// Upper bound on one analysis run; districts unresolved when it
	// expires are flagged in the partial result.
	RunTimeout time.Duration
}

// AnalysisHandler runs the breakeven comparison over stored records.
type AnalysisHandler struct {
	Repo     ports.DeliveryRecordRepository
	Engine   *services.Engine
	History  ports.RunHistory // optional, nil disables run logging
	Defaults AnalysisDefaults
	Log      *zap.SugaredLogger
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, h.Log, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.AnalyzeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, h.Log, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	poolLimit := req.PoolLimit
	if poolLimit == 0 {
		poolLimit = services.DefaultPoolLimit
	}
	if poolLimit < 1 || poolLimit > 2000 {
		writeError(w, r, h.Log, http.StatusBadRequest, "pool_limit must be between 1 and 2000")
		return
	}

	params := h.Defaults.Params
	van := h.Defaults.Van
	if req.DieselPerLitre != nil {
		if *req.DieselPerLitre <= 0 {
			writeError(w, r, h.Log, http.StatusBadRequest, "diesel_per_litre must be positive")
			return
		}
		van.DieselPerLitre = *req.DieselPerLitre
		// Pump price drives the model's fuel rate unless overridden below.
		params.FuelPerKm = van.FuelPerKm()
	}
	if req.FuelPerKm != nil {
		params.FuelPerKm = *req.FuelPerKm
	}
	if req.WagePerMinute != nil {
		params.WagePerMinute = *req.WagePerMinute
	}
	if req.DepreciationPerKm != nil {
		params.DepreciationPerKm = *req.DepreciationPerKm
	}
	if params.FuelPerKm < 0 || params.WagePerMinute < 0 || params.DepreciationPerKm < 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "cost rates must be non-negative")
		return
	}

	records, err := h.Repo.ListRecords(r.Context(), req.Area, poolLimit)
	if err != nil {
		h.Log.Errorw("list records failed", "area", req.Area, "err", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx := r.Context()
	if h.Defaults.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Defaults.RunTimeout)
		defer cancel()
	}

	result, err := h.Engine.Analyze(ctx, services.AnalyzeRequest{
		Records: records,
		Params:  params,
		Van:     van,
	})
	if err != nil {
		h.Log.Errorw("analysis failed", "area", req.Area, "err", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	h.recordRun(r.Context(), req.Area, len(records), result)

	writeJSON(w, r, h.Log, http.StatusOK, toAnalyzeResponse(result))
}

// recordRun logs the outcome to the run history. Failures are reported but
// never fail the request.
func (h *AnalysisHandler) recordRun(ctx context.Context, area string, poolSize int, result *domain.AnalysisResult) {
	if h.History == nil {
		return
	}

	analysed := 0
	for _, s := range result.Summaries {
		analysed += s.OrderCount
	}

	entry := ports.RunEntry{
		RunID:          uuid.NewString(),
		RanAt:          time.Now(),
		Area:           area,
		PoolSize:       poolSize,
		SelectedOrders: analysed,
		VanCost:        result.Recommendation.TotalInHouseCost,
		CourierSaving:  result.Recommendation.TotalCourierCost,
		NetProfit:      result.Recommendation.TotalCourierCost.Sub(result.Recommendation.TotalInHouseCost),
		Status:         string(result.Recommendation.Verdict),
	}
	if err := h.History.Append(ctx, entry); err != nil {
		h.Log.Warnw("record analysis run failed", "run_id", entry.RunID, "err", err)
	}
}

func toAnalyzeResponse(result *domain.AnalysisResult) dto.AnalyzeResponse {
	res := dto.AnalyzeResponse{
		Summaries: make([]dto.DistrictSummaryResponse, 0, len(result.Summaries)),
		Recommendation: dto.RecommendationResponse{
			Verdict:            string(result.Recommendation.Verdict),
			FavorableDistricts: result.Recommendation.FavorableDistricts,
			TotalCourierCost:   result.Recommendation.TotalCourierCost.StringFixed(2),
			TotalInHouseCost:   result.Recommendation.TotalInHouseCost.StringFixed(2),
		},
		SkippedRecords:   result.SkippedRecords,
		FlaggedDistricts: result.FlaggedDistricts,
	}

	for _, s := range result.Summaries {
		res.Summaries = append(res.Summaries, dto.DistrictSummaryResponse{
			District:        s.District,
			OrderCount:      s.OrderCount,
			CourierCost:     s.CourierCost.StringFixed(2),
			InHouseCost:     s.InHouseCost.StringFixed(2),
			PerOrderInHouse: s.PerOrderInHouse.StringFixed(2),
			Favorable:       s.Favorable,
			BreakevenVolume: s.BreakevenVolume,
			Estimate: dto.RouteEstimateResponse{
				DistanceKm:      s.Estimate.DistanceKm,
				DurationMinutes: s.Estimate.DurationMinutes,
			},
		})
	}

	return res
}
