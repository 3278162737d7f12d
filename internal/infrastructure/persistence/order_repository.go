package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the orders in one statement and writes the generated IDs back
func (r *GormOrderRepository) Create(ctx context.Context, orders ...*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]*models.OrderModel, len(orders))
	for i, o := range orders {
		rows[i] = &models.OrderModel{}
		rows[i].FromDomain(o)
	}
	if err := r.db.WithContext(ctx).Omit("User", "Product").Create(&rows).Error; err != nil {
		return err
	}
	for i, o := range orders {
		o.ID = rows[i].ID
	}
	return nil
}

// UpdateStatus writes the new status if the stored version is still the one
// the caller loaded (the aggregate's version minus the increment made by the
// transition).
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"status":     o.Status,
			"version":    o.Version,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindViewByID returns a single order joined with product and customer data
func (r *GormOrderRepository) FindViewByID(ctx context.Context, id int64) (*order.View, error) {
	var rows []orderViewRow
	if err := r.joined(ctx).Select(orderViewColumns).Where("o.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	v := rows[0].toView()
	return &v, nil
}

// ListViews returns one page of joined order views. A zero PageSize returns every match.
func (r *GormOrderRepository) ListViews(ctx context.Context, filter order.ListFilter) ([]order.View, int64, error) {
	query := r.joined(ctx)
	if filter.Status != "" {
		query = query.Where("o.status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		query = query.Where("o.user_id = ?", filter.UserID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(p.name) LIKE ?)", like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	page := query.Select(orderViewColumns).Order("o." + field + " " + dir).Order("o.id " + dir)
	if filter.PageSize > 0 {
		page = page.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []orderViewRow
	if err := page.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	views := make([]order.View, len(rows))
	for i := range rows {
		views[i] = rows[i].toView()
	}
	return views, total, nil
}

// ExistsForProduct reports whether any order references the product
func (r *GormOrderRepository) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}

const orderViewColumns = `o.id, o.user_id, o.product_id, p.name AS product_name,
	p.image_key AS product_image, u.name AS customer_name, u.email AS customer_email,
	o.quantity, o.unit_price, o.total_price, o.status, o.payment_method, o.created_at`

func (r *GormOrderRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders AS o").
		Joins("JOIN products p ON p.id = o.product_id").
		Joins("JOIN users u ON u.id = o.user_id")
}

type orderViewRow struct {
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
	Status        order.Status
	PaymentMethod string
	CreatedAt     time.Time
}

func (row orderViewRow) toView() order.View {
	return order.View{
		ID:            row.ID,
		UserID:        row.UserID,
		ProductID:     row.ProductID,
		ProductName:   row.ProductName,
		ProductImage:  row.ProductImage,
		CustomerName:  row.CustomerName,
		CustomerEmail: row.CustomerEmail,
		Quantity:      row.Quantity,
		UnitPrice:     row.UnitPrice,
		TotalPrice:    row.TotalPrice,
		Status:        row.Status,
		PaymentMethod: row.PaymentMethod,
		OrderDate:     row.CreatedAt,
	}
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
