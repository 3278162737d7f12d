package checkout

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// ErrEmptyCart is returned when checkout is attempted with no cart lines
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Your cart is empty")

// Shortage describes one cart line that asks for more than is in stock
type Shortage struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError lists every cart line that cannot be fulfilled.
// It matches shared.ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Products []Shortage
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, len(e.Products))
	for i, p := range e.Products {
		names[i] = p.Name
	}
	return fmt.Sprintf("Insufficient stock for: %s", strings.Join(names, ", "))
}

func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}
