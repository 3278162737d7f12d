package cart

import (
	"github.com/shopspring/decimal"
)

// AddItemRequest adds one unit of a product to the caller's cart
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// CartItemResponse is one cart line with current product data
type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is the caller's cart with its running total
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}

// LineResult reports the state of a line after a cart mutation.
// Removed is true when the line no longer exists.
type LineResult struct {
	LineID    int64 `json:"line_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Removed   bool  `json:"removed"`
}
