package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Totals(ctx context.Context) (*report.Totals, error) {
	args := m.Called(ctx)
	return args.Get(0).(*report.Totals), args.Error(1)
}

func (m *MockDashboardRepository) DailySales(ctx context.Context, since time.Time) ([]report.DailySales, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]report.DailySales), args.Error(1)
}

func (m *MockDashboardRepository) CategorySales(ctx context.Context) ([]report.CategorySales, error) {
	args := m.Called(ctx)
	return args.Get(0).([]report.CategorySales), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
	catalog.ProductRepository
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, threshold, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, threshold, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
	order.OrderRepository
}

func (m *MockOrderRepository) ListViews(ctx context.Context, filter order.ListFilter) ([]order.View, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.View), args.Get(1).(int64), args.Error(2)
}

func TestDashboardService_Get(t *testing.T) {
	ctx := context.Background()
	reports := new(MockDashboardRepository)
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)

	svc := NewDashboardService(reports, products, orders, DashboardConfig{})
	fixed := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	since := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	reports.On("Totals", ctx).Return(&report.Totals{Products: 3, Orders: 2, Users: 4, Revenue: decimal.NewFromInt(50)}, nil)
	orders.On("ListViews", ctx, mock.MatchedBy(func(f order.ListFilter) bool { return f.PageSize == 10 })).
		Return([]order.View{{ID: 2, CustomerName: "Ada", Status: order.StatusConfirmed}}, int64(2), nil)
	products.On("FindLowStock", ctx, 10, 5).Return([]catalog.Product{{Name: "Lamp", Stock: 1}}, nil)
	reports.On("DailySales", ctx, since).Return([]report.DailySales{
		{Date: time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), Revenue: decimal.NewFromInt(20), Orders: 1},
	}, nil)
	reports.On("CategorySales", ctx).Return([]report.CategorySales{{Category: "Home", Revenue: decimal.NewFromInt(50)}}, nil)

	d, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), d.Totals.Users)
	require.Len(t, d.RecentOrders, 1)
	assert.Equal(t, "confirmed", d.RecentOrders[0].Status)
	assert.Equal(t, "Lamp", d.LowStock[0].Name)

	require.Len(t, d.DailySales, 7)
	assert.Equal(t, "2026-05-04", d.DailySales[0].Date)
	assert.Equal(t, "2026-05-10", d.DailySales[6].Date)
	assert.True(t, d.DailySales[5].Revenue.Equal(decimal.NewFromInt(20)))
	assert.True(t, d.DailySales[0].Revenue.IsZero())
	assert.Len(t, d.CategorySales, 1)
}
