package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDashboardRepository implements report.DashboardRepository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Totals counts products, orders and users and sums revenue over all orders
func (r *GormDashboardRepository) Totals(ctx context.Context) (*report.Totals, error) {
	db := r.db.WithContext(ctx)
	t := &report.Totals{}

	if err := db.Model(&models.ProductModel{}).Count(&t.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.OrderModel{}).Count(&t.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.UserModel{}).Count(&t.Users).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.OrderModel{}).Select("SUM(total_price)").Row().Scan(&revenue); err != nil {
		return nil, err
	}
	t.Revenue = revenue.Decimal
	return t, nil
}

// CountLowStock counts products with fewer than threshold units left
func (r *GormDashboardRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("stock < ?", threshold).
		Count(&count).Error
	return count, err
}

// DailySales groups orders placed since the cutoff by calendar day
func (r *GormDashboardRepository) DailySales(ctx context.Context, since time.Time) ([]report.DailySales, error) {
	day := r.dayExpr("created_at")
	var rows []struct {
		Day     string
		Revenue decimal.Decimal
		Orders  int64
	}
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select(day+" AS day, SUM(total_price) AS revenue, COUNT(*) AS orders").
		Where("created_at >= ?", since).
		Group(day).
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]report.DailySales, 0, len(rows))
	for _, row := range rows {
		d, err := time.ParseInLocation("2006-01-02", row.Day, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse sales day %q: %w", row.Day, err)
		}
		out = append(out, report.DailySales{Date: d, Revenue: row.Revenue, Orders: row.Orders})
	}
	return out, nil
}

// CategorySales sums order revenue per product category, highest first
func (r *GormDashboardRepository) CategorySales(ctx context.Context) ([]report.CategorySales, error) {
	var rows []report.CategorySales
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("p.category AS category, SUM(o.total_price) AS revenue").
		Joins("JOIN products p ON p.id = o.product_id").
		Group("p.category").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

// dayExpr formats a timestamp column as YYYY-MM-DD in the active dialect
func (r *GormDashboardRepository) dayExpr(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
	}
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
}

var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
