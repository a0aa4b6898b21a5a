package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/planner"
)

func TestFormatItineraryOutAndBack(t *testing.T) {
	it := model.NewItinerary(model.ModeOutAndBack,
		[]model.Customer{
			{ID: "c1", Name: "Far Co", City: "Worthing", State: "SD",
				Contacts: []model.Contact{{Name: "Pat Doe", Phone: "605-555-0100"}}},
			{ID: "c2", Name: "Near Co", City: "Tea", State: "SD"},
		},
		[]model.Leg{
			{DistanceMeters: 30000, DurationSeconds: 1800},
			{DistanceMeters: 10000, DurationSeconds: 1800},
		},
	)
	stops := planner.BuildStopList(it, "Sioux Falls, SD")

	var buf strings.Builder
	formatItinerary(&buf, it, stops)
	out := buf.String()

	assert.Contains(t, out, "Out and back: 24.9 mi, 60 min, 2 stops")
	assert.Contains(t, out, "START")
	assert.Contains(t, out, "Far Co")
	assert.Contains(t, out, "Pat Doe 605-555-0100")
	assert.NotContains(t, out, "END")

	// Furthest stop is listed before the near one.
	assert.Less(t, strings.Index(out, "Far Co"), strings.Index(out, "Near Co"))
}

func TestFormatItineraryRoundTripHasEndMarker(t *testing.T) {
	it := model.NewItinerary(model.ModeRoundTrip,
		[]model.Customer{{ID: "c1", Name: "Loop Co", City: "Canton", State: "SD"}},
		[]model.Leg{
			{DistanceMeters: 20000, DurationSeconds: 1200},
			{DistanceMeters: 20000, DurationSeconds: 1200},
		},
	)
	stops := planner.BuildStopList(it, "Sioux Falls, SD")

	var buf strings.Builder
	formatItinerary(&buf, it, stops)
	out := buf.String()

	assert.Contains(t, out, "Round trip")
	assert.Contains(t, out, "END")
}

func TestFormatCustomersList(t *testing.T) {
	followUp := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	var buf strings.Builder
	formatCustomersList(&buf, []model.Customer{
		{ID: "0193b2f4-aaaa-bbbb-cccc-ddddeeeeffff", Name: "Acme Feed",
			City: " canton ", State: "SD", LeadStage: model.StageHot, FollowUpOn: &followUp},
	})
	out := buf.String()

	assert.Contains(t, out, "0193b2f4")
	assert.NotContains(t, out, "ddddeeeeffff")
	assert.Contains(t, out, "Canton")
	assert.Contains(t, out, "2026-04-01")
}

func TestOrAll(t *testing.T) {
	assert.Equal(t, model.FilterAll, orAll(""))
	assert.Equal(t, "SD", orAll("SD"))
}
