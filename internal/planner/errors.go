package planner

import "github.com/rotisserie/eris"

// Planner failure taxonomy. Provider-specific errors never escape the
// engine; every failure surfaces as exactly one of these, wrapped with
// context.
var (
	// ErrInvalidSelection means zero routable customers were selected at
	// computation time. The provider is never called in this case.
	ErrInvalidSelection = eris.New("planner: no customers selected")

	// ErrProviderUnavailable means no routing provider was configured or
	// reachable; the caller should defer the action and retry.
	ErrProviderUnavailable = eris.New("planner: routing provider unavailable")

	// ErrDistanceLookupFailed means the distance-matrix call returned a
	// non-success status. No partial itinerary is produced.
	ErrDistanceLookupFailed = eris.New("planner: distance lookup failed")

	// ErrRouteComputationFailed means the route or optimize call returned a
	// non-success status. No partial itinerary is produced.
	ErrRouteComputationFailed = eris.New("planner: routing failed")
)
