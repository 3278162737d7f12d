// Package report builds the admin dashboard.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/domain/shared"
)

// DashboardConfig controls the dashboard widgets
type DashboardConfig struct {
	LowStockThreshold int
	LowStockLimit     int
	RecentOrders      int
	SalesDays         int
}

// DefaultDashboardConfig returns the default dashboard settings
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		LowStockThreshold: 10,
		LowStockLimit:     5,
		RecentOrders:      10,
		SalesDays:         7,
	}
}

// LowStockItem is a product running out
type LowStockItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// RecentOrder is a compact order row for the dashboard
type RecentOrder struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Status       string          `json:"status"`
	OrderDate    time.Time       `json:"order_date"`
}

// DailyPoint is the sales of one day
type DailyPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// Dashboard is the admin landing page payload
type Dashboard struct {
	Totals        report.Totals          `json:"totals"`
	RecentOrders  []RecentOrder          `json:"recent_orders"`
	LowStock      []LowStockItem         `json:"low_stock"`
	DailySales    []DailyPoint           `json:"daily_sales"`
	CategorySales []report.CategorySales `json:"category_sales"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// DashboardService assembles the admin dashboard
type DashboardService struct {
	reports  report.DashboardRepository
	products catalog.ProductRepository
	orders   order.OrderRepository
	config   DashboardConfig
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	reports report.DashboardRepository,
	products catalog.ProductRepository,
	orders order.OrderRepository,
	config DashboardConfig,
) *DashboardService {
	def := DefaultDashboardConfig()
	if config.LowStockThreshold <= 0 {
		config.LowStockThreshold = def.LowStockThreshold
	}
	if config.LowStockLimit <= 0 {
		config.LowStockLimit = def.LowStockLimit
	}
	if config.RecentOrders <= 0 {
		config.RecentOrders = def.RecentOrders
	}
	if config.SalesDays <= 0 {
		config.SalesDays = def.SalesDays
	}
	return &DashboardService{
		reports:  reports,
		products: products,
		orders:   orders,
		config:   config,
		now:      time.Now,
	}
}

// Get builds the dashboard
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	totals, err := s.reports.Totals(ctx)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.orders.ListViews(ctx, order.ListFilter{
		Filter: shared.Filter{Page: 1, PageSize: s.config.RecentOrders},
	})
	if err != nil {
		return nil, err
	}

	low, err := s.products.FindLowStock(ctx, s.config.LowStockThreshold, s.config.LowStockLimit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := today.AddDate(0, 0, -(s.config.SalesDays - 1))
	daily, err := s.reports.DailySales(ctx, since)
	if err != nil {
		return nil, err
	}

	categories, err := s.reports.CategorySales(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Totals:        *totals,
		RecentOrders:  make([]RecentOrder, len(recent)),
		LowStock:      make([]LowStockItem, len(low)),
		DailySales:    fillDays(since, s.config.SalesDays, daily),
		CategorySales: categories,
		GeneratedAt:   now,
	}
	for i, v := range recent {
		d.RecentOrders[i] = RecentOrder{
			ID:           v.ID,
			CustomerName: v.CustomerName,
			ProductName:  v.ProductName,
			Quantity:     v.Quantity,
			TotalPrice:   v.TotalPrice,
			Status:       v.Status.String(),
			OrderDate:    v.OrderDate,
		}
	}
	for i, p := range low {
		d.LowStock[i] = LowStockItem{ID: p.ID, Name: p.Name, Category: p.Category, Stock: p.Stock}
	}
	return d, nil
}

// fillDays returns one point per day starting at since, zero-filled where
// no orders were placed
func fillDays(since time.Time, days int, sales []report.DailySales) []DailyPoint {
	byDay := make(map[string]report.DailySales, len(sales))
	for _, s := range sales {
		byDay[s.Date.Format(time.DateOnly)] = s
	}

	points := make([]DailyPoint, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format(time.DateOnly)
		p := DailyPoint{Date: day, Revenue: decimal.Zero}
		if s, ok := byDay[day]; ok {
			p.Revenue = s.Revenue
			p.Orders = s.Orders
		}
		points[i] = p
	}
	return points
}
