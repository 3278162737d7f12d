// Package wishlist implements the customer's saved-for-later list.
package wishlist

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/wishlist"
)

// AddRequest saves a product to the caller's wishlist
type AddRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// ItemResponse is one wishlist entry with product data
type ItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	InStock   bool            `json:"in_stock"`
	ImageURL  string          `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// WishlistService handles wishlist operations
type WishlistService struct {
	repo        wishlist.Repository
	productRepo catalog.ProductRepository
	images      appcatalog.ImageResolver
}

// NewWishlistService creates a new WishlistService. images may be nil.
func NewWishlistService(repo wishlist.Repository, productRepo catalog.ProductRepository, images appcatalog.ImageResolver) *WishlistService {
	return &WishlistService{repo: repo, productRepo: productRepo, images: images}
}

// Add saves the product; a product already on the list is rejected
func (s *WishlistService) Add(ctx context.Context, userID, productID int64) (*ItemResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, wishlist.ErrAlreadyInWishlist
	}

	item := wishlist.NewItem(userID, productID)
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return &ItemResponse{
		ID:        item.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		InStock:   product.InStock(),
		ImageURL:  s.imageURL(ctx, product.ImageKey),
		AddedAt:   item.AddedAt,
	}, nil
}

// Remove deletes one of the user's entries
func (s *WishlistService) Remove(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotFound
	}
	return nil
}

// List returns the user's wishlist, most recent first
func (s *WishlistService) List(ctx context.Context, userID int64) ([]ItemResponse, error) {
	views, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(views))
	for i, v := range views {
		out[i] = ItemResponse{
			ID:        v.ID,
			ProductID: v.ProductID,
			Name:      v.Name,
			Category:  v.Category,
			Price:     v.Price,
			InStock:   v.Stock > 0,
			ImageURL:  s.imageURL(ctx, v.ImageKey),
			AddedAt:   v.AddedAt,
		}
	}
	return out, nil
}

// ProductIDs returns the IDs on the user's wishlist
func (s *WishlistService) ProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ProductIDs(ctx, userID)
}

func (s *WishlistService) imageURL(ctx context.Context, key string) string {
	if s.images == nil || key == "" {
		return ""
	}
	return s.images.ImageURL(ctx, key)
}
