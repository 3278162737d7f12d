// Package cart implements the customer's cart operations.
package cart

import (
	"context"
	"errors"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService handles cart mutations for one user at a time. The user is
// always passed in explicitly; a line owned by someone else is reported as
// not found.
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	txScope     checkout.TransactionScope
	images      appcatalog.ImageResolver
}

// NewCartService creates a new CartService. images may be nil.
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	txScope checkout.TransactionScope,
	images appcatalog.ImageResolver,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		txScope:     txScope,
		images:      images,
	}
}

// Get returns the user's cart with current prices and the total
func (s *CartService) Get(ctx context.Context, userID int64) (*CartResponse, error) {
	items, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := cart.Cart{UserID: userID, Items: items}

	resp := &CartResponse{
		Items:     make([]CartItemResponse, len(items)),
		ItemCount: len(items),
		Total:     c.Total(),
	}
	for i, it := range items {
		resp.Items[i] = CartItemResponse{
			ID:        it.LineID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Stock:     it.Stock,
			ImageURL:  s.imageURL(ctx, it.ImageKey),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		}
	}
	return resp, nil
}

// AddItem puts one unit of the product in the cart, or one more unit when a
// line already exists. The quantity never exceeds current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64) (*LineResult, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.InStock() {
		return nil, catalog.ErrOutOfStock
	}

	line, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		line, err = cart.NewCartLine(userID, productID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := line.Increment(product.Stock); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.Save(ctx, line); err != nil {
		return nil, err
	}
	return &LineResult{LineID: line.ID, ProductID: line.ProductID, Quantity: line.Quantity}, nil
}

// Increment adds one unit to a line, capped at current stock
func (s *CartService) Increment(ctx context.Context, userID, lineID int64) (*LineResult, error) {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if err := line.Increment(product.Stock); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, line); err != nil {
		return nil, err
	}
	return &LineResult{LineID: line.ID, ProductID: line.ProductID, Quantity: line.Quantity}, nil
}

// Decrement removes one unit from a line, deleting the line at zero
func (s *CartService) Decrement(ctx context.Context, userID, lineID int64) (*LineResult, error) {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	result := &LineResult{LineID: line.ID, ProductID: line.ProductID}

	if line.Decrement() {
		if err := s.cartRepo.Delete(ctx, line.ID); err != nil {
			return nil, err
		}
		result.Removed = true
		return result, nil
	}
	if err := s.cartRepo.Save(ctx, line); err != nil {
		return nil, err
	}
	result.Quantity = line.Quantity
	return result, nil
}

// Remove deletes a line regardless of quantity
func (s *CartService) Remove(ctx context.Context, userID, lineID int64) error {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(ctx, line.ID)
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID int64) (int64, error) {
	return s.cartRepo.ClearForUser(ctx, userID)
}

// BuyNow replaces the whole cart with a single unit of the product
func (s *CartService) BuyNow(ctx context.Context, userID, productID int64) (*LineResult, error) {
	var result *LineResult
	err := s.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.InStock() {
			return catalog.ErrOutOfStock
		}
		if _, err := repos.CartRepo().ClearForUser(ctx, userID); err != nil {
			return err
		}
		line, err := cart.NewCartLine(userID, productID)
		if err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, line); err != nil {
			return err
		}
		result = &LineResult{LineID: line.ID, ProductID: productID, Quantity: line.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CartService) ownedLine(ctx context.Context, userID, lineID int64) (*cart.CartLine, error) {
	line, err := s.cartRepo.FindByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if !line.BelongsTo(userID) {
		return nil, shared.ErrNotFound
	}
	return line, nil
}

func (s *CartService) imageURL(ctx context.Context, key string) string {
	if s.images == nil || key == "" {
		return ""
	}
	return s.images.ImageURL(ctx, key)
}
