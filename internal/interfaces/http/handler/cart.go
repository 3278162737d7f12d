package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appcart "github.com/storefront/backend/internal/application/cart"
)

// CartUseCase is the cart service surface used by CartHandler
type CartUseCase interface {
	Get(ctx context.Context, userID int64) (*appcart.CartResponse, error)
	AddItem(ctx context.Context, userID, productID int64) (*appcart.LineResult, error)
	Increment(ctx context.Context, userID, lineID int64) (*appcart.LineResult, error)
	Decrement(ctx context.Context, userID, lineID int64) (*appcart.LineResult, error)
	Remove(ctx context.Context, userID, lineID int64) error
	BuyNow(ctx context.Context, userID, productID int64) (*appcart.LineResult, error)
}

// CartHandler handles the caller's cart
type CartHandler struct {
	BaseHandler
	cartService CartUseCase
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService CartUseCase) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @ID           getCart
// @Summary      Get the cart
// @Description  Lines with current prices, the line count and the total
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[appcart.CartResponse]
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(c.Request.Context(), principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add one unit of a product
// @Description  Creates the line or increments it, capped at current stock
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appcart.AddItemRequest true "Product"
// @Success      200 {object} APIResponse[appcart.LineResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	line, err := h.cartService.AddItem(c.Request.Context(), principal.UserID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// Increment godoc
// @ID           incrementCartItem
// @Summary      Add one unit to a cart line
// @Tags         cart
// @Produce      json
// @Param        id path int true "Cart line ID"
// @Success      200 {object} APIResponse[appcart.LineResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/{id}/increment [post]
func (h *CartHandler) Increment(c *gin.Context) {
	h.adjust(c, h.cartService.Increment)
}

// Decrement godoc
// @ID           decrementCartItem
// @Summary      Remove one unit from a cart line
// @Description  The line is deleted when its quantity reaches zero
// @Tags         cart
// @Produce      json
// @Param        id path int true "Cart line ID"
// @Success      200 {object} APIResponse[appcart.LineResult]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/{id}/decrement [post]
func (h *CartHandler) Decrement(c *gin.Context) {
	h.adjust(c, h.cartService.Decrement)
}

func (h *CartHandler) adjust(c *gin.Context, op func(ctx context.Context, userID, lineID int64) (*appcart.LineResult, error)) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	line, err := op(c.Request.Context(), principal.UserID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// Remove godoc
// @ID           removeCartItem
// @Summary      Remove a cart line
// @Tags         cart
// @Param        id path int true "Cart line ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.cartService.Remove(c.Request.Context(), principal.UserID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BuyNow godoc
// @ID           buyNow
// @Summary      Replace the cart with one unit of a product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appcart.AddItemRequest true "Product"
// @Success      200 {object} APIResponse[appcart.LineResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/buy-now [post]
func (h *CartHandler) BuyNow(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	line, err := h.cartService.BuyNow(c.Request.Context(), principal.UserID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}
