package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/store"
	"github.com/sells-group/fieldrep-cli/pkg/routing"
)

// stubRouteProvider serves canned distances and a single-leg route.
type stubRouteProvider struct {
	distances []float64
}

func (p *stubRouteProvider) DistanceMatrix(_ context.Context, _ string, destinations []string) ([]routing.MatrixEntry, error) {
	entries := make([]routing.MatrixEntry, len(destinations))
	for i := range destinations {
		d := 10000.0
		if i < len(p.distances) {
			d = p.distances[i]
		}
		entries[i] = routing.MatrixEntry{DistanceMeters: d, Found: true}
	}
	return entries, nil
}

func (p *stubRouteProvider) Route(_ context.Context, params routing.RouteParams) (*routing.RouteResult, error) {
	legs := make([]routing.Leg, len(params.Waypoints)+1)
	for i := range legs {
		legs[i] = routing.Leg{DistanceMeters: 8046.7, DurationSeconds: 600}
	}
	return &routing.RouteResult{Legs: legs}, nil
}

func newServeTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestServeMuxHealth(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), &stubRouteProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeMuxCustomers(t *testing.T) {
	st := newServeTestStore(t)
	mux := newServeMux(st, &stubRouteProvider{})

	_, err := st.CreateCustomer(context.Background(), model.Customer{
		Active: true, Name: "Acme Feed", City: "Canton", State: "SD", LeadStage: model.StageHot,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var customers []model.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Acme Feed", customers[0].Name)
}

func TestServeMuxCustomersEmptyIsArray(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), &stubRouteProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestServeMuxPlanRoute(t *testing.T) {
	st := newServeTestStore(t)
	mux := newServeMux(st, &stubRouteProvider{distances: []float64{15000, 5000}})

	a, err := st.CreateCustomer(context.Background(), model.Customer{
		Active: true, Name: "Far Co", City: "Worthing", State: "SD",
	})
	require.NoError(t, err)
	b, err := st.CreateCustomer(context.Background(), model.Customer{
		Active: true, Name: "Near Co", City: "Tea", State: "SD",
	})
	require.NoError(t, err)

	body := `{"home_address":"Sioux Falls, SD","mode":"out_and_back","selected_customer_ids":["` +
		a.ID + `","` + b.ID + `"]}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/plan", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Itinerary model.Itinerary `json:"itinerary"`
		Stops     []model.Stop    `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Itinerary.OrderedCustomers, 2)
	assert.Equal(t, "Far Co", resp.Itinerary.OrderedCustomers[0].Name)
	assert.Equal(t, 20, resp.Itinerary.TotalTimeMinutes)
	assert.InDelta(t, 10.0, resp.Itinerary.TotalDistanceMiles, 0.001)
	// Start marker plus two numbered stops; out-and-back has no end marker.
	require.Len(t, resp.Stops, 3)
	assert.Equal(t, model.StopStart, resp.Stops[0].Kind)
}

func TestServeMuxPlanRouteEmptySelection(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), &stubRouteProvider{})

	body := `{"home_address":"Sioux Falls, SD","mode":"out_and_back","selected_customer_ids":[]}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/plan", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeMuxPlanRouteBadBody(t *testing.T) {
	mux := newServeMux(newServeTestStore(t), &stubRouteProvider{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/routes/plan", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
