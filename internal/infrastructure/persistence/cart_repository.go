package persistence

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart line by ID
func (r *GormCartRepository) FindByID(ctx context.Context, id int64) (*cart.CartLine, error) {
	var model models.CartLineModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserAndProduct finds the user's line for a product
func (r *GormCartRepository) FindByUserAndProduct(ctx context.Context, userID, productID int64) (*cart.CartLine, error) {
	var model models.CartLineModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListItems returns the user's lines joined with live product name, price and stock
func (r *GormCartRepository) ListItems(ctx context.Context, userID int64) ([]cart.Item, error) {
	var items []cart.Item
	err := r.db.WithContext(ctx).
		Table("cart_lines AS c").
		Select("c.id AS line_id, c.product_id, p.name, p.price, p.stock, p.image_key, c.quantity").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save inserts or updates a cart line
func (r *GormCartRepository) Save(ctx context.Context, line *cart.CartLine) error {
	model := &models.CartLineModel{}
	model.FromDomain(line)
	if err := r.db.WithContext(ctx).Omit("User", "Product").Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_IN_CART", "Product is already in the cart")
		}
		return err
	}
	line.ID = model.ID
	return nil
}

// Delete removes a cart line
func (r *GormCartRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.CartLineModel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearForUser deletes every line of the user
func (r *GormCartRepository) ClearForUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLineModel{})
	return result.RowsAffected, result.Error
}

var _ cart.CartRepository = (*GormCartRepository)(nil)
