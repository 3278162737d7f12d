package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// ListFilter narrows the admin order listing
type ListFilter struct {
	shared.Filter
	Status Status
	UserID int64
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)

	// Create inserts new orders and assigns their IDs
	Create(ctx context.Context, orders ...*Order) error

	// UpdateStatus persists a status change guarded by the order version.
	// Returns shared.ErrConcurrencyConflict when the version no longer matches.
	UpdateStatus(ctx context.Context, o *Order) error

	// FindViewByID returns the joined view of a single order
	FindViewByID(ctx context.Context, id int64) (*View, error)

	// ListViews returns one page of joined order views, newest first
	ListViews(ctx context.Context, filter ListFilter) ([]View, int64, error)

	// ExistsForProduct reports whether any order references the product
	ExistsForProduct(ctx context.Context, productID int64) (bool, error)
}
