package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
)

// CartLineModel is the persistence model for a cart line.
// A user holds at most one line per product.
type CartLineModel struct {
	BaseModel
	UserID    int64 `gorm:"not null;uniqueIndex:idx_cart_user_product,priority:1"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_user_product,priority:2;index"`
	Quantity  int   `gorm:"not null;check:chk_cart_lines_quantity,quantity >= 1"`

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// ToDomain converts the persistence model to a domain CartLine
func (m *CartLineModel) ToDomain() *cart.CartLine {
	return &cart.CartLine{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
	}
}

// FromDomain populates the persistence model from a domain CartLine
func (m *CartLineModel) FromDomain(l *cart.CartLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.UserID = l.UserID
	m.ProductID = l.ProductID
	m.Quantity = l.Quantity
}

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	UserID        int64           `gorm:"not null;index"`
	ProductID     int64           `gorm:"not null;index"`
	Quantity      int             `gorm:"not null;check:chk_orders_quantity,quantity >= 1"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        order.Status    `gorm:"type:varchar(20);not null;index"`
	PaymentMethod string          `gorm:"type:varchar(50);not null"`

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		TotalPrice:        m.TotalPrice,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.ProductID = o.ProductID
	m.Quantity = o.Quantity
	m.UnitPrice = o.UnitPrice
	m.TotalPrice = o.TotalPrice
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
}
