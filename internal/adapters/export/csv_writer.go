// Package export renders analysis output as CSV for drivers and
// day-over-day tracking.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"
)

// WriteDispatchList writes the driver-facing order list for a van load.
func WriteDispatchList(w io.Writer, orders []domain.DeliveryRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"order_id", "postcode", "weight_kg", "volume_m3", "quantity"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write dispatch header: %w", err)
	}

	for _, rec := range orders {
		row := []string{
			rec.OrderID,
			rec.Postcode,
			strconv.FormatFloat(rec.WeightKg, 'f', 2, 64),
			strconv.FormatFloat(rec.VolumeM3, 'f', 3, 64),
			strconv.Itoa(rec.Quantity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write dispatch row order_id=%q: %w", rec.OrderID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDistrictSummaries writes the per-district comparison table.
func WriteDistrictSummaries(w io.Writer, summaries []domain.DistrictSummary) error {
	cw := csv.NewWriter(w)

	header := []string{
		"district", "order_count", "courier_cost_gbp", "in_house_cost_gbp",
		"per_order_in_house_gbp", "favorable", "breakeven_volume",
		"distance_km", "duration_minutes",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	for _, s := range summaries {
		row := []string{
			s.District,
			strconv.Itoa(s.OrderCount),
			s.CourierCost.StringFixed(2),
			s.InHouseCost.StringFixed(2),
			s.PerOrderInHouse.StringFixed(2),
			strconv.FormatBool(s.Favorable),
			strconv.Itoa(s.BreakevenVolume),
			strconv.FormatFloat(s.Estimate.DistanceKm, 'f', 2, 64),
			strconv.FormatFloat(s.Estimate.DurationMinutes, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write summary row district=%q: %w", s.District, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var historyHeader = []string{
	"date", "run_id", "area", "pool_size", "selected_orders",
	"van_cost", "courier_saving", "net_profit", "status", "note",
}

// AppendRunHistory appends one run outcome to a CSV history file, writing
// the header when the file is new. This is the DB-less counterpart of the
// analysis_runs table.
func AppendRunHistory(path string, entry ports.RunEntry) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file %q: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if newFile {
		if err := cw.Write(historyHeader); err != nil {
			return fmt.Errorf("write history header: %w", err)
		}
	}

	row := []string{
		entry.RanAt.Format("2006-01-02"),
		entry.RunID,
		entry.Area,
		strconv.Itoa(entry.PoolSize),
		strconv.Itoa(entry.SelectedOrders),
		entry.VanCost.StringFixed(2),
		entry.CourierSaving.StringFixed(2),
		entry.NetProfit.StringFixed(2),
		entry.Status,
		entry.Note,
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write history row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
