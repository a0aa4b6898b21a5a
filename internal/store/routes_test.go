package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

func newTestRouteBook(t *testing.T) *RouteBook {
	t.Helper()
	return NewRouteBook(newTestSQLiteStore(t))
}

func planningRequest(home string, ids ...string) model.RouteRequest {
	req := model.NewRouteRequest(home, model.ModeOutAndBack)
	for _, id := range ids {
		req.Selected.Toggle(id)
	}
	return req
}

func TestRouteBookSaveAndList(t *testing.T) {
	t.Parallel()
	book := newTestRouteBook(t)
	ctx := context.Background()

	first, err := book.Save(ctx, "Monday loop", planningRequest("Sioux Falls, SD", "c1", "c2"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := book.Save(ctx, "Friday sweep", planningRequest("Sioux Falls, SD", "c3"))
	require.NoError(t, err)

	routes, err := book.List(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, first.ID, routes[0].ID)
	assert.Equal(t, second.ID, routes[1].ID)
}

func TestRouteBookSaveRejectsBlankName(t *testing.T) {
	t.Parallel()
	book := newTestRouteBook(t)

	_, err := book.Save(context.Background(), "   ", planningRequest("Sioux Falls, SD", "c1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty")
}

func TestRouteBookLoadReturnsSnapshotVerbatim(t *testing.T) {
	t.Parallel()
	book := newTestRouteBook(t)
	ctx := context.Background()

	// IDs in a snapshot are not checked against the customer book, so a
	// route referencing customers that were later removed still loads.
	saved, err := book.Save(ctx, "Stale run", planningRequest("Sioux Falls, SD", "gone-1", "gone-2"))
	require.NoError(t, err)

	loaded, err := book.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stale run", loaded.Name)
	assert.True(t, loaded.Request.Selected.Has("gone-1"))
	assert.True(t, loaded.Request.Selected.Has("gone-2"))
	assert.Equal(t, "Sioux Falls, SD", loaded.Request.HomeAddress)
}

func TestRouteBookLoadMissing(t *testing.T) {
	t.Parallel()
	book := newTestRouteBook(t)

	_, err := book.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRouteBookDelete(t *testing.T) {
	t.Parallel()
	book := newTestRouteBook(t)
	ctx := context.Background()

	keep, err := book.Save(ctx, "Keep", planningRequest("Sioux Falls, SD", "c1"))
	require.NoError(t, err)
	drop, err := book.Save(ctx, "Drop", planningRequest("Sioux Falls, SD", "c2"))
	require.NoError(t, err)

	require.NoError(t, book.Delete(ctx, drop.ID))

	routes, err := book.List(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, keep.ID, routes[0].ID)

	err = book.Delete(ctx, drop.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
