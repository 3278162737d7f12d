package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ImageResolver turns a stored image key into a URL a browser can load
type ImageResolver interface {
	ImageURL(ctx context.Context, key string) string
}

// ImageUploader issues presigned upload URLs for new product images
type ImageUploader interface {
	UploadURL(ctx context.Context, key, contentType string) (string, time.Time, error)
}

type noImages struct{}

func (noImages) ImageURL(context.Context, string) string { return "" }

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Category    string          `json:"category" binding:"required,min=1,max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	Description string          `json:"description" binding:"max=5000"`
	ImageKey    string          `json:"image_key" binding:"max=500"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Category    *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	ImageKey    *string          `json:"image_key" binding:"omitempty,max=500"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string   `form:"search"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,min=0"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=newest price_low price_high name"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	PageSize int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ImageUploadRequest asks for an upload slot for a product image
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=200"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUploadResponse tells the client where to PUT the image and which key
// to store on the product afterwards
type ImageUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
	Description string          `json:"description"`
	ImageKey    string          `json:"image_key,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductResponse(ctx context.Context, p *catalog.Product, images ImageResolver) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Description: p.Description,
		ImageKey:    p.ImageKey,
		ImageURL:    images.ImageURL(ctx, p.ImageKey),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
