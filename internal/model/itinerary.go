package model

import "math"

// metersPerMile converts provider meters to display miles.
const metersPerMile = 1609.34

// Destination pairs a selected customer with its routable address. The
// distance field is populated during out-and-back ordering only.
type Destination struct {
	CustomerID             string  `json:"customer_id"`
	Address                string  `json:"address"`
	DistanceFromHomeMeters float64 `json:"distance_from_home_meters,omitempty"`
}

// Leg is one point-to-point segment of a computed route, passed through
// from the provider for display.
type Leg struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Itinerary is the engine's output: the visiting order plus trip totals.
// Totals are stored already converted for display and are never re-derived
// from a provider call.
type Itinerary struct {
	Mode               RouteMode  `json:"mode"`
	OrderedCustomers   []Customer `json:"ordered_customers"`
	TotalDistanceMiles float64    `json:"total_distance_miles"`
	TotalTimeMinutes   int        `json:"total_time_minutes"`
	Legs               []Leg      `json:"legs"`
}

// NewItinerary sums the per-leg distances and durations and stores the
// converted display totals: miles rounded to one decimal place, minutes
// rounded to the nearest whole minute.
func NewItinerary(mode RouteMode, ordered []Customer, legs []Leg) *Itinerary {
	var meters, seconds float64
	for _, leg := range legs {
		meters += leg.DistanceMeters
		seconds += leg.DurationSeconds
	}
	return &Itinerary{
		Mode:               mode,
		OrderedCustomers:   ordered,
		TotalDistanceMiles: math.Round(meters/metersPerMile*10) / 10,
		TotalTimeMinutes:   int(math.Round(seconds / 60)),
		Legs:               legs,
	}
}

// StopKind distinguishes home-base markers from customer visits.
type StopKind string

const (
	StopStart    StopKind = "start"
	StopCustomer StopKind = "customer"
	StopEnd      StopKind = "end"
)

// Stop is one point on the rendered itinerary.
type Stop struct {
	Kind     StopKind  `json:"kind"`
	Position int       `json:"position"` // 0 for start/end markers, 1-based for customer stops
	Address  string    `json:"address"`
	Customer *Customer `json:"customer,omitempty"`
}
