package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Totals holds store-wide counters for the admin dashboard
type Totals struct {
	Products int64           `json:"products"`
	Orders   int64           `json:"orders"`
	Users    int64           `json:"users"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DailySales is the revenue and order count for one calendar day
type DailySales struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// CategorySales is the revenue attributed to one product category
type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DashboardRepository defines the read queries behind the admin dashboard
type DashboardRepository interface {
	// Totals counts products, orders and customers and sums order revenue
	Totals(ctx context.Context) (*Totals, error)

	// DailySales returns per-day revenue for orders placed at or after since, oldest first
	DailySales(ctx context.Context, since time.Time) ([]DailySales, error)

	// CategorySales returns revenue per category, highest first
	CategorySales(ctx context.Context) ([]CategorySales, error)
}
