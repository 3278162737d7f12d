package cart

import "context"

// CartRepository defines the interface for cart line persistence
type CartRepository interface {
	FindByID(ctx context.Context, id int64) (*CartLine, error)

	// FindByUserAndProduct returns shared.ErrNotFound when the user has no line for the product
	FindByUserAndProduct(ctx context.Context, userID, productID int64) (*CartLine, error)

	// ListItems returns the user's lines joined with current product data
	ListItems(ctx context.Context, userID int64) ([]Item, error)

	Save(ctx context.Context, line *CartLine) error

	Delete(ctx context.Context, id int64) error

	// ClearForUser deletes every line of the user and returns how many were removed
	ClearForUser(ctx context.Context, userID int64) (int64, error)
}
