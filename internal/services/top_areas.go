package services

import (
	"slices"

	"fleet-breakeven-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Per-postcode-area rollup of a manifest pool.
type AreaStat struct {
	Area         string
	OrderCount   int
	CourierValue decimal.Decimal
}

// TopAreas ranks postcode areas by total 3PL value so an operator can see
// which regional clusters are worth targeting. Records without a resolvable
// district are ignored. Returns at most top entries, highest value first.
func TopAreas(records []domain.DeliveryRecord, top int) []AreaStat {
	byArea := make(map[string]*AreaStat)

	for _, rec := range records {
		district := rec.District
		if district == "" {
			d, err := domain.OutwardDistrict(rec.Postcode)
			if err != nil {
				continue
			}
			district = d
		}

		area := domain.PostcodeArea(district)
		stat, ok := byArea[area]
		if !ok {
			stat = &AreaStat{Area: area, CourierValue: decimal.Zero}
			byArea[area] = stat
		}
		stat.OrderCount++
		stat.CourierValue = stat.CourierValue.Add(rec.CourierCost)
	}

	stats := make([]AreaStat, 0, len(byArea))
	for _, s := range byArea {
		stats = append(stats, *s)
	}

	slices.SortFunc(stats, func(a, b AreaStat) int {
		if c := b.CourierValue.Cmp(a.CourierValue); c != 0 {
			return c
		}
		if a.Area < b.Area {
			return -1
		}
		if a.Area > b.Area {
			return 1
		}
		return 0
	})

	if top > 0 && len(stats) > top {
		stats = stats[:top]
	}

	return stats
}
