package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/review"
	"github.com/storefront/backend/internal/domain/wishlist"
)

// ReviewModel is the persistence model for a product review
type ReviewModel struct {
	BaseModel
	ProductID int64  `gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:2"`
	Rating    int    `gorm:"not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5"`
	Comment   string `gorm:"type:text"`

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// FromDomain populates the persistence model from a domain Review
func (m *ReviewModel) FromDomain(r *review.Review) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ProductID = r.ProductID
	m.UserID = r.UserID
	m.Rating = r.Rating
	m.Comment = r.Comment
}

// WishlistItemModel is the persistence model for a wishlist entry
type WishlistItemModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2"`
	AddedAt   time.Time `gorm:"not null"`

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}

// FromDomain populates the persistence model from a domain wishlist Item
func (m *WishlistItemModel) FromDomain(i *wishlist.Item) {
	m.ID = i.ID
	m.UserID = i.UserID
	m.ProductID = i.ProductID
	m.AddedAt = i.AddedAt
}
