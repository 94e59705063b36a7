package handlers

import (
	"net/http"
	"strconv"

	"fleet-breakeven-service/internal/api/dto"
	"fleet-breakeven-service/internal/ports"

	"go.uber.org/zap"
)

// RecordHandler exposes read-only delivery record retrieval.
type RecordHandler struct {
	Repo ports.DeliveryRecordRepository
	Log  *zap.SugaredLogger
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, h.Log, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	area := r.URL.Query().Get("area")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, h.Log, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.Repo.ListRecords(r.Context(), area, limit)
	if err != nil {
		h.Log.Errorw("list records failed", "err", err)
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRecordsResponse{
		Records: make([]dto.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		out := dto.RecordResponse{
			OrderID:     rec.OrderID,
			Postcode:    rec.Postcode,
			District:    rec.District,
			CourierCost: rec.CourierCost.StringFixed(2),
			WeightKg:    rec.WeightKg,
			VolumeM3:    rec.VolumeM3,
			Quantity:    rec.Quantity,
		}
		if !rec.DeliveryDate.IsZero() {
			d := rec.DeliveryDate
			out.DeliveryDate = &d
		}
		res.Records = append(res.Records, out)
	}

	writeJSON(w, r, h.Log, http.StatusOK, res)
}
