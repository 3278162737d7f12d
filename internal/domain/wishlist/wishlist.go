// Package wishlist holds products a customer saved for later.
package wishlist

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var ErrAlreadyInWishlist = shared.NewDomainError("ALREADY_IN_WISHLIST", "Product already in wishlist")

// Item is a saved (user, product) pair
type Item struct {
	ID        int64
	UserID    int64
	ProductID int64
	AddedAt   time.Time
}

// NewItem creates a wishlist entry
func NewItem(userID, productID int64) *Item {
	return &Item{UserID: userID, ProductID: productID, AddedAt: time.Now()}
}

// View is a wishlist entry joined with product data
type View struct {
	ID        int64
	ProductID int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Stock     int
	ImageKey  string
	AddedAt   time.Time
}

// Repository defines the interface for wishlist persistence
type Repository interface {
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	Save(ctx context.Context, item *Item) error
	// Delete removes the entry only if it belongs to userID
	Delete(ctx context.Context, userID, id int64) (bool, error)
	// List returns the user's entries, most recently added first
	List(ctx context.Context, userID int64) ([]View, error)
	ProductIDs(ctx context.Context, userID int64) ([]int64, error)
}
