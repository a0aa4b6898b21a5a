package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// RouteBook manages saved route snapshots on top of a Store's load-all /
// replace-all persistence. The persisted list is the sole source of truth;
// every mutation reads, edits, and writes back the full set.
type RouteBook struct {
	store Store
}

// NewRouteBook wraps a Store with saved-route operations.
func NewRouteBook(store Store) *RouteBook {
	return &RouteBook{store: store}
}

// Save snapshots the request under the given name and appends it to the
// persisted set.
func (b *RouteBook) Save(ctx context.Context, name string, req model.RouteRequest) (*model.SavedRoute, error) {
	sr, err := model.NewSavedRoute(name, req)
	if err != nil {
		return nil, err
	}

	routes, err := b.store.ListSavedRoutes(ctx)
	if err != nil {
		return nil, err
	}
	routes = append(routes, *sr)
	if err := b.store.ReplaceSavedRoutes(ctx, routes); err != nil {
		return nil, err
	}
	return sr, nil
}

// List returns all saved routes in creation order.
func (b *RouteBook) List(ctx context.Context) ([]model.SavedRoute, error) {
	return b.store.ListSavedRoutes(ctx)
}

// Load returns the stored snapshot verbatim. Customer IDs in the snapshot
// are not validated against the current book; stale IDs are tolerated and
// skipped later at planning time.
func (b *RouteBook) Load(ctx context.Context, id string) (*model.SavedRoute, error) {
	routes, err := b.store.ListSavedRoutes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range routes {
		if routes[i].ID == id {
			return &routes[i], nil
		}
	}
	return nil, eris.Errorf("store: saved route %s not found", id)
}

// Delete removes the entry with the given id. Confirmation is the caller's
// concern; Delete itself is unconditional.
func (b *RouteBook) Delete(ctx context.Context, id string) error {
	routes, err := b.store.ListSavedRoutes(ctx)
	if err != nil {
		return err
	}

	kept := routes[:0]
	found := false
	for _, sr := range routes {
		if sr.ID == id {
			found = true
			continue
		}
		kept = append(kept, sr)
	}
	if !found {
		return eris.Errorf("store: saved route %s not found", id)
	}
	return b.store.ReplaceSavedRoutes(ctx, kept)
}
