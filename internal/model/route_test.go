package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRouteMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want RouteMode
		ok   bool
	}{
		{"out_and_back", ModeOutAndBack, true},
		{"out-and-back", ModeOutAndBack, true},
		{"OutAndBack", ModeOutAndBack, true},
		{"roundtrip", ModeRoundTrip, true},
		{"round_trip", ModeRoundTrip, true},
		{"Round-Trip", ModeRoundTrip, true},
		{"shortest", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseRouteMode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelection_Toggle(t *testing.T) {
	t.Parallel()

	s := NewSelection("a", "b")

	s.Toggle("c")
	assert.True(t, s.Has("c"))

	s.Toggle("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, []string{"b", "c"}, s.IDs())
}

func TestSelection_DoubleToggleRestoresSet(t *testing.T) {
	t.Parallel()

	s := NewSelection("a", "b", "c")
	before := s.IDs()

	s.Toggle("b")
	s.Toggle("b")
	assert.Equal(t, before, s.IDs())

	// Same holds for an ID not in the set.
	s.Toggle("z")
	s.Toggle("z")
	assert.Equal(t, before, s.IDs())
}

func TestSelection_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSelection("beta", "alpha", "alpha")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["alpha","beta"]`, string(data))

	var got Selection
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &got))
	assert.Equal(t, []string{"x", "y"}, got.IDs())
}

func TestRouteRequest_StateChangeResetsCity(t *testing.T) {
	t.Parallel()

	req := NewRouteRequest("Canton, SD", ModeOutAndBack)
	req.SetStateFilter("SD")
	req.CityFilter = "Sioux Falls"

	// Changing state resets city even if the old city also exists in the
	// new state.
	req.SetStateFilter("IA")
	assert.Equal(t, "IA", req.StateFilter)
	assert.Equal(t, FilterAll, req.CityFilter)
}

func TestRouteRequest_SameStateKeepsCity(t *testing.T) {
	t.Parallel()

	req := NewRouteRequest("Canton, SD", ModeOutAndBack)
	req.SetStateFilter("SD")
	req.CityFilter = "Harrisburg"

	req.SetStateFilter("SD")
	assert.Equal(t, "Harrisburg", req.CityFilter)
}

func TestNewSavedRoute_Validation(t *testing.T) {
	t.Parallel()

	req := NewRouteRequest("Canton, SD", ModeRoundTrip)

	tests := []struct {
		name    string
		route   string
		wantErr bool
	}{
		{"valid", "Tuesday loop", false},
		{"trimmed valid", "  west side  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", string(make([]byte, 51)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sr, err := NewSavedRoute(tt.route, req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, sr.ID)
			assert.False(t, sr.CreatedAt.IsZero())
		})
	}
}

func TestNewSavedRoute_SnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	req := NewRouteRequest("Canton, SD", ModeRoundTrip)
	req.Selected.Toggle("cust-1")

	sr, err := NewSavedRoute("loop", req)
	require.NoError(t, err)

	// Mutating the live request must not leak into the snapshot.
	req.Selected.Toggle("cust-2")
	assert.Equal(t, []string{"cust-1"}, sr.Request.Selected.IDs())
}

func TestNewItinerary_UnitConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		legs        []Leg
		wantMiles   float64
		wantMinutes int
	}{
		{
			name:        "ten miles ninety minutes",
			legs:        []Leg{{DistanceMeters: 16093.4, DurationSeconds: 5400}},
			wantMiles:   10.0,
			wantMinutes: 90,
		},
		{
			name: "summed legs",
			legs: []Leg{
				{DistanceMeters: 20000, DurationSeconds: 1800},
				{DistanceMeters: 20000, DurationSeconds: 1800},
			},
			wantMiles:   24.9, // 40000 / 1609.34 = 24.85, one decimal
			wantMinutes: 60,
		},
		{
			name:        "rounds minutes to nearest",
			legs:        []Leg{{DistanceMeters: 1000, DurationSeconds: 89}},
			wantMiles:   0.6,
			wantMinutes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it := NewItinerary(ModeOutAndBack, nil, tt.legs)
			assert.InDelta(t, tt.wantMiles, it.TotalDistanceMiles, 1e-9)
			assert.Equal(t, tt.wantMinutes, it.TotalTimeMinutes)
		})
	}
}

func TestParseLeadStage(t *testing.T) {
	t.Parallel()

	got, ok := ParseLeadStage("hot")
	require.True(t, ok)
	assert.Equal(t, StageHot, got)

	got, ok = ParseLeadStage("SCOUTING")
	require.True(t, ok)
	assert.Equal(t, StageScouting, got)

	_, ok = ParseLeadStage("tepid")
	assert.False(t, ok)
}
