package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-breakeven-service/internal/adapters/distance"
	"fleet-breakeven-service/internal/api/dto"
	"fleet-breakeven-service/internal/api/handlers"
	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"
	"fleet-breakeven-service/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	records []domain.DeliveryRecord
}

func (s *stubRepo) ListRecords(ctx context.Context, area string, limit int) ([]domain.DeliveryRecord, error) {
	out := make([]domain.DeliveryRecord, 0, len(s.records))
	for _, rec := range s.records {
		if area != "" && domain.PostcodeArea(rec.District) != area {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type memHistory struct {
	entries []ports.RunEntry
}

func (m *memHistory) Append(ctx context.Context, entry ports.RunEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *memHistory) {
	t.Helper()

	repo := &stubRepo{records: []domain.DeliveryRecord{
		{OrderID: "ORD-1", Postcode: "SW1A 1AA", District: "SW1A", CourierCost: decimal.NewFromInt(20), Quantity: 1},
		{OrderID: "ORD-2", Postcode: "SW1A 2BB", District: "SW1A", CourierCost: decimal.NewFromInt(22), Quantity: 1},
	}}

	est := distance.NewMockEstimator()
	est.Set("SW1A", 5, 15)

	log := zap.NewNop().Sugar()
	engine := services.NewEngine(est, nil, log)

	defaults := handlers.AnalysisDefaults{
		Params: domain.CostModelParameters{
			FuelPerKm:         1.0,
			WagePerMinute:     0.5,
			DepreciationPerKm: 0.2,
		},
		Van:        domain.DefaultVanCostParameters(),
		RunTimeout: 5 * time.Second,
	}

	history := &memHistory{}
	return NewRouter(repo, engine, history, defaults, log), history
}

func TestAnalysesEndpoint(t *testing.T) {
	router, history := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"area": "SW"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "SW1A", res.Summaries[0].District)
	assert.Equal(t, "42.00", res.Summaries[0].CourierCost)
	assert.Equal(t, "27.00", res.Summaries[0].InHouseCost)
	assert.True(t, res.Summaries[0].Favorable)
	assert.Equal(t, "insource", res.Recommendation.Verdict)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.NotEmpty(t, entry.RunID)
	assert.Equal(t, "SW", entry.Area)
	assert.Equal(t, 2, entry.PoolSize)
	assert.Equal(t, 2, entry.SelectedOrders)
	assert.Equal(t, "insource", entry.Status)
	assert.Equal(t, "15.00", entry.NetProfit.StringFixed(2))
}

func TestAnalysesRejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"bogus": true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysesRejectsGet(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/analyses", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
