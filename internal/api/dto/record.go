package dto

import "time"

type RecordResponse struct {
	OrderID      string     `json:"order_id"`
	Postcode     string     `json:"postcode"`
	District     string     `json:"district"`
	CourierCost  string     `json:"courier_cost_gbp"`
	WeightKg     float64    `json:"weight_kg"`
	VolumeM3     float64    `json:"volume_m3"`
	Quantity     int        `json:"quantity"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

type ListRecordsResponse struct {
	Records []RecordResponse `json:"records"`
}
