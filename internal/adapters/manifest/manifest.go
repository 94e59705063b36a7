// Package manifest loads carrier delivery manifests into DeliveryRecords.
//
// UK carriers disagree on almost everything: column names differ per
// carrier, weights arrive in grams or kilograms, and a single row can
// represent several parcels. The readers normalize all of that so the
// analysis only ever sees one record shape.
package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleet-breakeven-service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyManifest  = errors.New("manifest has no rows")
	ErrMissingColumns = errors.New("manifest is missing required columns")
)

// Canonical column names and the carrier spellings they appear under
// (DX, EVRi and common variations). Matching is case-insensitive on
// trimmed headers; the first alias present wins.
var headerAliases = map[string][]string{
	"order_id":         {"order_id", "order id", "consignment number", "barcode", "tracking number", "manifest number"},
	"courier_cost_gbp": {"courier_cost_gbp", "consignment price", "total rate", "charge", "price", "invoice rate"},
	"postcode":         {"postcode", "delivery post code", "destination postcode", "delivery postcode"},
	"weight_kg":        {"weight_kg", "consignment weight", "weight", "parcel weight", "actual weight"},
	"volume_m3":        {"volume_m3", "volume"},
	"quantity":         {"quantity", "number of items", "pieces", "qty", "count", "item count"},
	"delivery_date":    {"delivery_date", "date", "delivery date", "despatch date", "collection date"},
}

// Weights above this are assumed to be grams (typical for DX manifests).
const gramsThreshold = 500.0

// Volume assumed for a parcel when the manifest carries none.
const defaultVolumeM3 = 0.1

// LoadResult is a parsed manifest plus the count of rows that had to be
// dropped because a required field was missing or unparseable.
type LoadResult struct {
	Records []domain.DeliveryRecord
	Skipped int
}

// mapHeaders resolves each canonical column to its index in the header row.
func mapHeaders(header []string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		normalized[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(map[string]int)
	for std, aliases := range headerAliases {
		for _, alias := range aliases {
			if i, ok := normalized[alias]; ok {
				cols[std] = i
				break
			}
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// buildRecords turns raw manifest rows into DeliveryRecords.
//
// Rows missing an order ID, a parseable postcode, or a parseable charge are
// skipped and counted. Weight and volume are per-unit in the file and get
// scaled by quantity; a file whose maximum weight exceeds the grams
// threshold has all weights converted from grams.
func buildRecords(header []string, rows [][]string) (*LoadResult, error) {
	cols := mapHeaders(header)

	for _, required := range []string{"order_id", "postcode", "courier_cost_gbp"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("map manifest columns: no column for %q: %w", required, ErrMissingColumns)
		}
	}

	type parsedRow struct {
		rec        domain.DeliveryRecord
		unitWeight float64
		unitVolume float64
	}

	parsed := make([]parsedRow, 0, len(rows))
	skipped := 0
	maxWeight := 0.0

	for _, row := range rows {
		orderID := cell(row, cols["order_id"])
		if orderID == "" {
			skipped++
			continue
		}

		rawPostcode := cell(row, cols["postcode"])
		district, err := domain.OutwardDistrict(rawPostcode)
		if err != nil {
			skipped++
			continue
		}

		cost, err := decimal.NewFromString(strings.TrimPrefix(cell(row, cols["courier_cost_gbp"]), "£"))
		if err != nil {
			skipped++
			continue
		}

		quantity := 1
		if idx, ok := cols["quantity"]; ok {
			if q, err := strconv.Atoi(cell(row, idx)); err == nil && q > 0 {
				quantity = q
			}
		}

		unitWeight := 0.0
		if idx, ok := cols["weight_kg"]; ok {
			if w, err := strconv.ParseFloat(cell(row, idx), 64); err == nil && w > 0 {
				unitWeight = w
			}
		}
		if unitWeight > maxWeight {
			maxWeight = unitWeight
		}

		unitVolume := defaultVolumeM3
		if idx, ok := cols["volume_m3"]; ok {
			if v, err := strconv.ParseFloat(cell(row, idx), 64); err == nil && v > 0 {
				unitVolume = v
			}
		}

		var deliveryDate time.Time
		if idx, ok := cols["delivery_date"]; ok {
			deliveryDate = parseManifestDate(cell(row, idx))
		}

		parsed = append(parsed, parsedRow{
			rec: domain.DeliveryRecord{
				OrderID:      orderID,
				Postcode:     domain.NormalizePostcode(rawPostcode),
				District:     district,
				CourierCost:  cost,
				Quantity:     quantity,
				DeliveryDate: deliveryDate,
			},
			unitWeight: unitWeight,
			unitVolume: unitVolume,
		})
	}

	if len(parsed) == 0 && skipped == 0 {
		return nil, ErrEmptyManifest
	}

	gramsFile := maxWeight > gramsThreshold

	records := make([]domain.DeliveryRecord, 0, len(parsed))
	for _, p := range parsed {
		w := p.unitWeight
		if gramsFile {
			w /= 1000
		}

		rec := p.rec
		rec.WeightKg = w * float64(rec.Quantity)
		rec.VolumeM3 = p.unitVolume * float64(rec.Quantity)
		records = append(records, rec)
	}

	return &LoadResult{Records: records, Skipped: skipped}, nil
}

var manifestDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// parseManifestDate is best-effort: the date is optional, so unparseable
// values yield the zero time rather than a skipped record.
func parseManifestDate(s string) time.Time {
	for _, layout := range manifestDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
