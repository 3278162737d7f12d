package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Catalog errors
var (
	// ErrStockUnderflow is returned when a conditional decrement lost a race
	// with another writer. Callers may re-read stock and retry.
	ErrStockUnderflow = shared.NewDomainError("STOCK_UNDERFLOW", "Stock changed concurrently and would go negative; please retry")
	ErrOutOfStock     = shared.NewDomainError("OUT_OF_STOCK", "Product out of stock")
	ErrInvalidPrice   = shared.NewDomainError("INVALID_PRICE", "Price must be a non-negative amount")
	ErrInvalidStock   = shared.NewDomainError("INVALID_STOCK", "Stock must be a non-negative integer")
	ErrProductInUse   = shared.NewDomainError("PRODUCT_IN_USE", "Product has orders and cannot be deleted")
)

// Product is a sellable item in the catalog
type Product struct {
	shared.BaseEntity
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Description string
	ImageKey    string
}

// NewProduct creates a new product after validating name, category, price and stock
func NewProduct(name, category string, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{BaseEntity: shared.NewBaseEntity()}
	if err := p.Update(name, category, p.Description); err != nil {
		return nil, err
	}
	if err := p.SetPrice(price); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, category, description string) error {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	p.Name = name
	p.Category = category
	p.Description = description
	p.Touch()
	return nil
}

// SetPrice sets the unit price. Existing orders keep the price they were placed at.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	p.Price = price
	p.Touch()
	return nil
}

// SetStock sets the absolute stock level (admin edit)
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// SetImageKey sets the object storage key of the product image
func (p *Product) SetImageKey(key string) {
	p.ImageKey = strings.TrimSpace(key)
	p.Touch()
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// CanFulfil reports whether qty units can be taken from current stock
func (p *Product) CanFulfil(qty int) bool {
	return qty > 0 && qty <= p.Stock
}

// LineTotal returns qty × unit price
func (p *Product) LineTotal(qty int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(qty)))
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateCategory(category string) error {
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	return nil
}
