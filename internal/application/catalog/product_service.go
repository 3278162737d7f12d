// Package catalog implements product browsing and back-office product management.
package catalog

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	orderRepo   order.OrderRepository
	images      ImageResolver
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	orderRepo order.OrderRepository,
	images ImageResolver,
	logger *zap.Logger,
) *ProductService {
	if images == nil {
		images = noImages{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		images:      images,
		logger:      logger,
	}
}

// Get returns a single product
func (s *ProductService) Get(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(ctx, p, s.images)
	return &resp, nil
}

// List returns a page of products matching the filter
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	f := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   strings.TrimSpace(filter.Search),
		},
		Category: strings.TrimSpace(filter.Category),
		Sort:     catalog.ProductSort(filter.Sort),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if !f.Sort.IsValid() {
		f.Sort = catalog.SortNewest
	}
	if filter.MinPrice != nil {
		v := decimal.NewFromFloat(*filter.MinPrice)
		f.MinPrice = &v
	}
	if filter.MaxPrice != nil {
		v := decimal.NewFromFloat(*filter.MaxPrice)
		f.MaxPrice = &v
	}

	products, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = toProductResponse(ctx, &products[i], s.images)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Categories returns the distinct category names
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

// LowStock returns products with fewer than threshold units, lowest first
func (s *ProductService) LowStock(ctx context.Context, threshold, limit int) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, threshold, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = toProductResponse(ctx, &products[i], s.images)
	}
	return items, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.Category, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(product.Name, product.Category, req.Description); err != nil {
			return nil, err
		}
	}
	product.SetImageKey(req.ImageKey)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	resp := toProductResponse(ctx, product, s.images)
	return &resp, nil
}

// Update applies the non-nil fields of req. A stock value replaces the
// current level outright; other edits never touch stock.
func (s *ProductService) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, category, description := product.Name, product.Category, product.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := product.Update(name, category, description); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.ImageKey != nil {
		product.SetImageKey(*req.ImageKey)
	}

	if err := s.productRepo.UpdateDetails(ctx, product); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if err := s.productRepo.SetStock(ctx, id, *req.Stock); err != nil {
			return nil, err
		}
		s.logger.Info("Product stock set", zap.Int64("product_id", id), zap.Int("stock", *req.Stock))
	}

	// Re-read so the response carries the stock as it is now
	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(ctx, updated, s.images)
	return &resp, nil
}

// Delete removes a product that no order references
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.orderRepo.ExistsForProduct(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return catalog.ErrProductInUse
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// ErrImageUploadUnavailable is returned when no object storage is configured
var ErrImageUploadUnavailable = shared.NewDomainError("IMAGE_UPLOAD_UNAVAILABLE", "Image upload is not configured")

// PrepareImageUpload reserves a fresh storage key under products/ and
// returns a presigned upload URL for it
func (s *ProductService) PrepareImageUpload(ctx context.Context, req ImageUploadRequest) (*ImageUploadResponse, error) {
	uploader, ok := s.images.(ImageUploader)
	if !ok {
		return nil, ErrImageUploadUnavailable
	}

	key := "products/" + uuid.NewString() + strings.ToLower(path.Ext(req.Filename))
	url, expiresAt, err := uploader.UploadURL(ctx, key, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to presign image upload", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &ImageUploadResponse{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}
