package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// maxSavedRouteName caps user-supplied route names.
const maxSavedRouteName = 50

// SavedRoute is a named snapshot of a planning configuration, kept for
// reuse. The snapshot is replayed verbatim on load; it is not validated
// against the current customer book, so stale customer IDs are possible and
// tolerated downstream.
type SavedRoute struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Request   RouteRequest `json:"request"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewSavedRoute snapshots the given request under a trimmed, validated name.
// The ID is derived from the creation timestamp.
func NewSavedRoute(name string, req RouteRequest) (*SavedRoute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, eris.New("saved route: name must be non-empty")
	}
	if len(name) > maxSavedRouteName {
		return nil, eris.Errorf("saved route: name exceeds %d characters", maxSavedRouteName)
	}

	now := time.Now().UTC()
	snapshot := req
	snapshot.Selected = req.Selected.Clone()

	return &SavedRoute{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		Name:      name,
		Request:   snapshot,
		CreatedAt: now,
	}, nil
}
