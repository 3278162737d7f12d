package persistence

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/wishlist"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWishlistRepository implements wishlist.Repository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Exists reports whether the product is on the user's wishlist
func (r *GormWishlistRepository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WishlistItemModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a wishlist entry
func (r *GormWishlistRepository) Save(ctx context.Context, item *wishlist.Item) error {
	model := &models.WishlistItemModel{}
	model.FromDomain(item)
	if err := r.db.WithContext(ctx).Omit("User", "Product").Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return wishlist.ErrAlreadyInWishlist
		}
		return err
	}
	item.ID = model.ID
	return nil
}

// Delete removes an entry owned by userID; false means nothing matched
func (r *GormWishlistRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.WishlistItemModel{})
	return result.RowsAffected > 0, result.Error
}

// List returns the user's entries joined with product data, newest first
func (r *GormWishlistRepository) List(ctx context.Context, userID int64) ([]wishlist.View, error) {
	var views []wishlist.View
	err := r.db.WithContext(ctx).
		Table("wishlist_items AS w").
		Select("w.id, w.product_id, p.name, p.category, p.price, p.stock, p.image_key, w.added_at").
		Joins("JOIN products p ON p.id = w.product_id").
		Where("w.user_id = ?", userID).
		Order("w.added_at DESC").Order("w.id DESC").
		Scan(&views).Error
	return views, err
}

// ProductIDs returns the IDs of every wishlisted product
func (r *GormWishlistRepository) ProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.WishlistItemModel{}).
		Where("user_id = ?", userID).
		Pluck("product_id", &ids).Error
	return ids, err
}

var _ wishlist.Repository = (*GormWishlistRepository)(nil)
