package store

import (
	"context"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// CustomerFilter narrows ListCustomers results. Zero values mean no
// filtering; active/inactive filtering is left to the selection layer,
// which needs inactive records for display.
type CustomerFilter struct {
	State string `json:"state,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store is the persistence boundary. The core never touches storage
// directly; it receives and returns value snapshots through this interface.
// Saved routes deliberately use load-all / replace-all semantics: the
// persisted collection is the sole source of truth and is swapped
// atomically on every mutation.
type Store interface {
	// Customers
	CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, c model.Customer) error
	DeactivateCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]model.Customer, error)
	ReplaceCustomers(ctx context.Context, customers []model.Customer) error

	// Deliveries
	CreateDelivery(ctx context.Context, d model.Delivery) (*model.Delivery, error)
	MarkDelivered(ctx context.Context, id string) error
	ListPendingDeliveries(ctx context.Context) ([]model.Delivery, error)

	// Saved routes
	ListSavedRoutes(ctx context.Context) ([]model.SavedRoute, error)
	ReplaceSavedRoutes(ctx context.Context, routes []model.SavedRoute) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
