package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// TransitionResult reports the status change applied to an order
type TransitionResult struct {
	OrderID   int64        `json:"order_id"`
	OldStatus order.Status `json:"old_status"`
	NewStatus order.Status `json:"new_status"`
}

// ListFilter represents filter options for the admin order list
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,order_status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductImage  string          `json:"product_image,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        string          `json:"status"`
	NextStatuses  []string        `json:"next_statuses"`
	PaymentMethod string          `json:"payment_method"`
	OrderDate     time.Time       `json:"order_date"`
}

// ToOrderResponse converts an order view to OrderResponse
func ToOrderResponse(v order.View) OrderResponse {
	next := v.Status.NextStatuses()
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = s.String()
	}
	return OrderResponse{
		ID:            v.ID,
		UserID:        v.UserID,
		ProductID:     v.ProductID,
		ProductName:   v.ProductName,
		ProductImage:  v.ProductImage,
		CustomerName:  v.CustomerName,
		CustomerEmail: v.CustomerEmail,
		Quantity:      v.Quantity,
		UnitPrice:     v.UnitPrice,
		TotalPrice:    v.TotalPrice,
		Status:        v.Status.String(),
		NextStatuses:  names,
		PaymentMethod: v.PaymentMethod,
		OrderDate:     v.OrderDate,
	}
}

// ToOrderResponses converts a slice of views
func ToOrderResponses(views []order.View) []OrderResponse {
	out := make([]OrderResponse, len(views))
	for i, v := range views {
		out[i] = ToOrderResponse(v)
	}
	return out
}
