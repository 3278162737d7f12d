package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductUseCase is the catalog service surface used by ProductHandler
type ProductUseCase interface {
	Get(ctx context.Context, id int64) (*appcatalog.ProductResponse, error)
	List(ctx context.Context, filter appcatalog.ProductListFilter) (shared.Paginated[appcatalog.ProductResponse], error)
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context, threshold, limit int) ([]appcatalog.ProductResponse, error)
	Create(ctx context.Context, req appcatalog.CreateProductRequest) (*appcatalog.ProductResponse, error)
	Update(ctx context.Context, id int64, req appcatalog.UpdateProductRequest) (*appcatalog.ProductResponse, error)
	Delete(ctx context.Context, id int64) error
	PrepareImageUpload(ctx context.Context, req appcatalog.ImageUploadRequest) (*appcatalog.ImageUploadResponse, error)
}

// ProductHandler handles catalog browsing and product administration
type ProductHandler struct {
	BaseHandler
	productService    ProductUseCase
	lowStockThreshold int
	lowStockLimit     int
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService ProductUseCase, lowStockThreshold, lowStockLimit int) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		lowStockThreshold: lowStockThreshold,
		lowStockLimit:     lowStockLimit,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Paginated catalog with search, category and price filters
// @Tags         products
// @Produce      json
// @Param        search query string false "Name or description contains"
// @Param        category query string false "Exact category"
// @Param        min_price query number false "Minimum price"
// @Param        max_price query number false "Maximum price"
// @Param        sort query string false "newest, price_low, price_high or name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter appcatalog.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Categories godoc
// @ID           listProductCategories
// @Summary      List product categories
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Security     BearerAuth
// @Router       /products/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} APIResponse[appcatalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Description  Only the supplied fields change
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Product ID"
// @Param        request body appcatalog.UpdateProductRequest true "Fields to change"
// @Success      200 {object} APIResponse[appcatalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Refused with PRODUCT_IN_USE once any order references the product
// @Tags         admin
// @Param        id path int true "Product ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LowStock godoc
// @ID           listLowStockProducts
// @Summary      Products running low
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[[]appcatalog.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.productService.LowStock(c.Request.Context(), h.lowStockThreshold, h.lowStockLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// ImageUploadURL godoc
// @ID           createProductImageUploadURL
// @Summary      Presign a product image upload
// @Description  Returns a URL to PUT the image to and the key to store on the product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.ImageUploadRequest true "File details"
// @Success      200 {object} APIResponse[appcatalog.ImageUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/images/upload-url [post]
func (h *ProductHandler) ImageUploadURL(c *gin.Context) {
	var req appcatalog.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	resp, err := h.productService.PrepareImageUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
