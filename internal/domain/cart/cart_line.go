// Package cart models a customer's pending purchase: one line per product,
// owned by exactly one user, destroyed on checkout or explicit removal.
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Cart errors
var (
	ErrStockLimitReached = shared.NewDomainError("STOCK_LIMIT_REACHED", "Cannot add more, stock limit reached")
	ErrInvalidQuantity   = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
)

// CartLine is a (user, product, quantity) record. Quantity is always >= 1.
type CartLine struct {
	shared.BaseEntity
	UserID    int64
	ProductID int64
	Quantity  int
}

// NewCartLine creates a line with quantity 1
func NewCartLine(userID, productID int64) (*CartLine, error) {
	if userID <= 0 || productID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "User and product are required")
	}
	return &CartLine{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   1,
	}, nil
}

// Increment adds one unit, refusing to go above available stock
func (l *CartLine) Increment(available int) error {
	if l.Quantity >= available {
		return ErrStockLimitReached
	}
	l.Quantity++
	l.Touch()
	return nil
}

// Decrement removes one unit. It returns true when the line reached zero and
// must be deleted.
func (l *CartLine) Decrement() bool {
	l.Quantity--
	l.Touch()
	return l.Quantity <= 0
}

// BelongsTo reports whether the line is owned by userID
func (l *CartLine) BelongsTo(userID int64) bool {
	return l.UserID == userID
}

// Item is a cart line joined with the product's current name, price and stock
type Item struct {
	LineID    int64
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Stock     int
	ImageKey  string
	Quantity  int
}

// Subtotal returns quantity × current price
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the read model of a user's cart
type Cart struct {
	UserID int64
	Items  []Item
}

// Total returns the sum of all line subtotals at current prices
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
