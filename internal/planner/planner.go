// Package planner turns a route request and the customer book into an
// ordered itinerary with trip totals, delegating pairwise distances and
// directions to an external routing provider.
package planner

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/selection"
	"github.com/sells-group/fieldrep-cli/pkg/routing"
)

// Planner is the route strategy engine. It holds no mutable state; every
// computation works on snapshots and returns a fresh itinerary.
type Planner struct {
	provider routing.Provider
}

// New creates a Planner backed by the given provider.
func New(provider routing.Provider) *Planner {
	return &Planner{provider: provider}
}

// ComputeRoute orders the selected customers according to the request's
// mode and derives trip totals. Stale or inactive selected IDs are silently
// skipped; a selection that resolves to zero routable customers is
// ErrInvalidSelection and the provider is never called. Any provider
// failure aborts with no itinerary produced.
func (p *Planner) ComputeRoute(ctx context.Context, req model.RouteRequest, customers []model.Customer) (*model.Itinerary, error) {
	if p.provider == nil {
		return nil, ErrProviderUnavailable
	}
	if req.HomeAddress == "" {
		return nil, eris.Wrap(ErrInvalidSelection, "home address must be non-empty")
	}

	selected := selection.Resolve(req.Selected, customers)
	if len(selected) == 0 {
		return nil, ErrInvalidSelection
	}

	dests := make([]model.Destination, len(selected))
	for i, c := range selected {
		dests[i] = model.Destination{
			CustomerID: c.ID,
			Address:    selection.ResolveAddress(c),
		}
	}

	switch req.Mode {
	case model.ModeRoundTrip:
		return p.roundTrip(ctx, req.HomeAddress, selected, dests)
	default:
		return p.outAndBack(ctx, req.HomeAddress, selected, dests)
	}
}

// outAndBack visits the furthest customer first and works back toward
// home: destinations are sorted by driving distance from home descending
// (stable, so equal distances keep their input order), every stop but the
// closest becomes a mandatory non-reorderable waypoint, and the single
// closest-to-home stop is the route's final destination.
func (p *Planner) outAndBack(ctx context.Context, home string, selected []model.Customer, dests []model.Destination) (*model.Itinerary, error) {
	addrs := make([]string, len(dests))
	for i, d := range dests {
		addrs[i] = d.Address
	}

	entries, err := p.provider.DistanceMatrix(ctx, home, addrs)
	if err != nil {
		return nil, eris.Wrap(ErrDistanceLookupFailed, err.Error())
	}
	if len(entries) != len(dests) {
		return nil, eris.Wrapf(ErrDistanceLookupFailed, "expected %d entries, got %d", len(dests), len(entries))
	}

	// A missing entry is a defined fallback of zero meters, not an error.
	for i, e := range entries {
		if e.Found {
			dests[i].DistanceFromHomeMeters = e.DistanceMeters
		}
	}

	sort.SliceStable(dests, func(i, j int) bool {
		return dests[i].DistanceFromHomeMeters > dests[j].DistanceFromHomeMeters
	})

	last := dests[len(dests)-1]
	waypoints := make([]string, 0, len(dests)-1)
	for _, d := range dests[:len(dests)-1] {
		waypoints = append(waypoints, d.Address)
	}

	res, err := p.provider.Route(ctx, routing.RouteParams{
		Origin:      home,
		Destination: last.Address,
		Waypoints:   waypoints,
		Optimize:    false,
	})
	if err != nil {
		return nil, eris.Wrap(ErrRouteComputationFailed, err.Error())
	}

	ordered := customersInDestinationOrder(selected, dests)
	it := model.NewItinerary(model.ModeOutAndBack, ordered, convertLegs(res.Legs))

	zap.L().Debug("computed out-and-back route",
		zap.Int("stops", len(ordered)),
		zap.Float64("miles", it.TotalDistanceMiles),
		zap.Int("minutes", it.TotalTimeMinutes),
	)
	return it, nil
}

// roundTrip requests a single provider-optimized loop that starts and ends
// at home, then maps the returned permutation back to customer records. The
// provider's ordering is trusted as-is.
func (p *Planner) roundTrip(ctx context.Context, home string, selected []model.Customer, dests []model.Destination) (*model.Itinerary, error) {
	waypoints := make([]string, len(dests))
	for i, d := range dests {
		waypoints[i] = d.Address
	}

	res, err := p.provider.Route(ctx, routing.RouteParams{
		Origin:      home,
		Destination: home,
		Waypoints:   waypoints,
		Optimize:    true,
	})
	if err != nil {
		return nil, eris.Wrap(ErrRouteComputationFailed, err.Error())
	}

	perm := res.WaypointOrder
	if perm == nil {
		perm = make([]int, len(dests))
		for i := range perm {
			perm[i] = i
		}
	}
	if len(perm) != len(dests) {
		return nil, eris.Wrapf(ErrRouteComputationFailed, "permutation length %d does not match %d stops", len(perm), len(dests))
	}

	orderedDests := make([]model.Destination, len(dests))
	for pos, idx := range perm {
		if idx < 0 || idx >= len(dests) {
			return nil, eris.Wrapf(ErrRouteComputationFailed, "permutation index %d out of range", idx)
		}
		orderedDests[pos] = dests[idx]
	}

	ordered := customersInDestinationOrder(selected, orderedDests)
	it := model.NewItinerary(model.ModeRoundTrip, ordered, convertLegs(res.Legs))

	zap.L().Debug("computed round-trip route",
		zap.Int("stops", len(ordered)),
		zap.Float64("miles", it.TotalDistanceMiles),
		zap.Int("minutes", it.TotalTimeMinutes),
	)
	return it, nil
}

// customersInDestinationOrder maps ordered destinations back to their
// customer records. Every destination originated from exactly one selected
// customer, so the result has the same length as the selection.
func customersInDestinationOrder(selected []model.Customer, dests []model.Destination) []model.Customer {
	byID := make(map[string]model.Customer, len(selected))
	for _, c := range selected {
		byID[c.ID] = c
	}
	out := make([]model.Customer, len(dests))
	for i, d := range dests {
		out[i] = byID[d.CustomerID]
	}
	return out
}

func convertLegs(legs []routing.Leg) []model.Leg {
	out := make([]model.Leg, len(legs))
	for i, l := range legs {
		out[i] = model.Leg{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds}
	}
	return out
}
