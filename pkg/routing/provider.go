// Package routing provides the routing-provider boundary used by the route
// planner: one-to-many driving distances and multi-stop driving routes, with
// optional provider-side stop reordering.
package routing

import "context"

// MatrixEntry is one distance result from a one-to-many lookup. Found is
// false when the provider could not route to that destination; callers
// treat such entries as zero distance rather than an error.
type MatrixEntry struct {
	DistanceMeters float64
	Found          bool
}

// Leg is one segment of a computed route.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// RouteParams describes a single route request. When Optimize is false the
// waypoints are mandatory stops visited in the given order; when true the
// provider may reorder them for minimum total trip cost.
type RouteParams struct {
	Origin      string
	Destination string
	Waypoints   []string
	Optimize    bool
}

// RouteResult is the provider's answer. WaypointOrder is present only for
// optimized requests and gives the permutation applied to the input
// waypoints; a nil order means identity.
type RouteResult struct {
	Legs          []Leg
	WaypointOrder []int
}

// Provider is a remote driving-directions backend. Both calls may fail with
// a provider-specific error; callers map failures to their own taxonomy.
type Provider interface {
	// DistanceMatrix returns the driving distance from origin to every
	// destination, one entry per destination in input order.
	DistanceMatrix(ctx context.Context, origin string, destinations []string) ([]MatrixEntry, error)

	// Route computes a driving route through the given stops.
	Route(ctx context.Context, params RouteParams) (*RouteResult, error)
}
