package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/review"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Exists reports whether the user already reviewed the product
func (r *GormReviewRepository) Exists(ctx context.Context, productID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a review
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	model := &models.ReviewModel{}
	model.FromDomain(rv)
	if err := r.db.WithContext(ctx).Omit("User", "Product").Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return review.ErrAlreadyReviewed
		}
		return err
	}
	rv.ID = model.ID
	return nil
}

// ListForProduct returns the product's reviews with author names, newest first
func (r *GormReviewRepository) ListForProduct(ctx context.Context, productID int64) ([]review.View, error) {
	var rows []struct {
		ID        int64
		ProductID int64
		UserID    int64
		UserName  string
		Rating    int
		Comment   string
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Table("reviews AS r").
		Select("r.id, r.product_id, r.user_id, u.name AS user_name, r.rating, r.comment, r.created_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.product_id = ?", productID).
		Order("r.created_at DESC").Order("r.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	views := make([]review.View, len(rows))
	for i, row := range rows {
		views[i] = review.View(row)
	}
	return views, nil
}

// AverageRating returns the mean rating, 0 when unrated
func (r *GormReviewRepository) AverageRating(ctx context.Context, productID int64) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("AVG(rating)").
		Where("product_id = ?", productID).
		Row().Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

var _ review.Repository = (*GormReviewRepository)(nil)
