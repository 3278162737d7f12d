package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductSort is a named sort order for product browsing
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceLow  ProductSort = "price_low"
	SortPriceHigh ProductSort = "price_high"
	SortName      ProductSort = "name"
)

// IsValid reports whether s is a known sort order
func (s ProductSort) IsValid() bool {
	switch s {
	case SortNewest, SortPriceLow, SortPriceHigh, SortName:
		return true
	}
	return false
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	shared.Filter
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     ProductSort
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns one page of products matching filter and the total match count
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// Categories returns the distinct product categories, sorted
	Categories(ctx context.Context) ([]string, error)

	// FindLowStock returns products with stock below threshold, lowest first
	FindLowStock(ctx context.Context, threshold, limit int) ([]Product, error)

	Save(ctx context.Context, product *Product) error

	// UpdateDetails writes everything but stock for an existing product
	UpdateDetails(ctx context.Context, product *Product) error

	// SetStock replaces the stock level (admin edit)
	SetStock(ctx context.Context, id int64, stock int) error

	Delete(ctx context.Context, id int64) error

	// DecrementStock removes qty units only if at least qty are available.
	// Returns ErrStockUnderflow when the guarded update matched no row.
	DecrementStock(ctx context.Context, id int64, qty int) error
}
