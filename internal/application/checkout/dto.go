package checkout

import "github.com/shopspring/decimal"

// CheckoutCommand places orders for every line of a user's cart
type CheckoutCommand struct {
	UserID        int64
	PaymentMethod string
}

// CheckoutResult summarises the orders created by a checkout
type CheckoutResult struct {
	OrderIDs      []int64         `json:"order_ids"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod string          `json:"payment_method"`
}
