package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrPaymentMethodRequired is returned when an order is placed without a payment method
var ErrPaymentMethodRequired = shared.NewDomainError("PAYMENT_METHOD_REQUIRED", "Please select a payment method")

// Order is one purchased cart line. Everything except Status is frozen at
// checkout time; orders are never deleted.
type Order struct {
	shared.BaseAggregateRoot
	UserID        int64
	ProductID     int64
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	Status        Status
	PaymentMethod string
}

// NewConfirmedOrder creates an order for qty units at the given unit price.
// TotalPrice is computed once here and never recalculated.
func NewConfirmedOrder(userID, productID int64, qty int, unitPrice decimal.Decimal, paymentMethod string) (*Order, error) {
	if userID <= 0 || productID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "User and product are required")
	}
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, ErrPaymentMethodRequired
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ProductID:         productID,
		Quantity:          qty,
		UnitPrice:         unitPrice,
		TotalPrice:        unitPrice.Mul(decimal.NewFromInt(int64(qty))),
		Status:            StatusConfirmed,
		PaymentMethod:     paymentMethod,
	}, nil
}

// OrderDate returns when the order was placed
func (o *Order) OrderDate() time.Time {
	return o.CreatedAt
}

// TransitionTo moves the order to target and records an OrderStatusChanged event.
// When enforce is false only the enumeration is checked, not the transition table.
func (o *Order) TransitionTo(target Status, enforce bool) (Status, error) {
	if !target.IsValid() {
		return o.Status, shared.NewDomainError(ErrInvalidStatus.Code, fmt.Sprintf("Invalid order status: %s", target))
	}
	if enforce && !o.Status.CanTransitionTo(target) {
		return o.Status, shared.NewDomainError(ErrIllegalTransition.Code,
			fmt.Sprintf("Order #%d cannot move from %s to %s", o.ID, o.Status, target))
	}

	old := o.Status
	o.Status = target
	o.Touch()
	o.Changed(NewOrderStatusChangedEvent(o, old))

	return old, nil
}

// BelongsTo reports whether the order was placed by userID
func (o *Order) BelongsTo(userID int64) bool {
	return o.UserID == userID
}

// View is an order joined with product and customer display data
type View struct {
	ID            int64
	UserID        int64
	ProductID     int64
	ProductName   string
	ProductImage  string
	CustomerName  string
	CustomerEmail string
	Quantity      int
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	Status        Status
	PaymentMethod string
	OrderDate     time.Time
}
