package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// RouteMode selects the ordering strategy for a planned trip.
type RouteMode string

const (
	// ModeOutAndBack visits the furthest stop first and works back toward
	// home, ending at the stop closest to home.
	ModeOutAndBack RouteMode = "out_and_back"
	// ModeRoundTrip asks the routing provider for an optimized loop that
	// starts and ends at the home address.
	ModeRoundTrip RouteMode = "round_trip"
)

// ParseRouteMode accepts common spellings of the two modes.
func ParseRouteMode(s string) (RouteMode, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "-", ""), "_", "")) {
	case "outandback":
		return ModeOutAndBack, true
	case "roundtrip":
		return ModeRoundTrip, true
	}
	return "", false
}

// FilterAll is the sentinel meaning "no filtering" for the state, city and
// lead-stage filters.
const FilterAll = "All"

// Selection is the working set of customer IDs chosen for a route.
// Membership is a set: duplicates are impossible by construction and no
// ordering is guaranteed.
type Selection map[string]struct{}

// NewSelection builds a selection from the given IDs.
func NewSelection(ids ...string) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle adds the ID when absent and removes it when present.
func (s Selection) Toggle(id string) {
	if _, ok := s[id]; ok {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// IDs returns the members in sorted order for deterministic output.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the selection as a sorted array of IDs.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of IDs, dropping duplicates.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSelection(ids...)
	return nil
}

// RouteRequest is one planning session's input: the trip origin, the
// strategy, the selected customers and the filter triple that produced the
// eligible list.
type RouteRequest struct {
	HomeAddress string    `json:"home_address"`
	Mode        RouteMode `json:"mode"`
	Selected    Selection `json:"selected_customer_ids"`
	StateFilter string    `json:"state_filter"`
	CityFilter  string    `json:"city_filter"`
	StageFilter string    `json:"stage_filter"`
}

// NewRouteRequest returns a request with all filters open and an empty
// selection.
func NewRouteRequest(home string, mode RouteMode) RouteRequest {
	return RouteRequest{
		HomeAddress: home,
		Mode:        mode,
		Selected:    NewSelection(),
		StateFilter: FilterAll,
		CityFilter:  FilterAll,
		StageFilter: FilterAll,
	}
}

// SetStateFilter changes the state filter. Changing state always resets the
// city filter back to All, because city choices are scoped to the selected
// state. The reset happens even when the previously chosen city would still
// be valid under the new state.
func (r *RouteRequest) SetStateFilter(state string) {
	if r.StateFilter == state {
		return
	}
	r.StateFilter = state
	r.CityFilter = FilterAll
}
