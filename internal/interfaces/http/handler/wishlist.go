package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/wishlist"
)

// WishlistUseCase is the wishlist service surface used by WishlistHandler
type WishlistUseCase interface {
	Add(ctx context.Context, userID, productID int64) (*wishlist.ItemResponse, error)
	Remove(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64) ([]wishlist.ItemResponse, error)
}

// WishlistHandler handles the caller's wishlist
type WishlistHandler struct {
	BaseHandler
	wishlistService WishlistUseCase
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService WishlistUseCase) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// List godoc
// @ID           listWishlist
// @Summary      List wishlist items
// @Tags         wishlist
// @Produce      json
// @Success      200 {object} APIResponse[[]wishlist.ItemResponse]
// @Security     BearerAuth
// @Router       /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	items, err := h.wishlistService.List(c.Request.Context(), principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Add godoc
// @ID           addWishlistItem
// @Summary      Add a product to the wishlist
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        request body wishlist.AddRequest true "Product"
// @Success      201 {object} APIResponse[wishlist.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req wishlist.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	item, err := h.wishlistService.Add(c.Request.Context(), principal.UserID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Remove godoc
// @ID           removeWishlistItem
// @Summary      Remove a wishlist item
// @Tags         wishlist
// @Param        id path int true "Wishlist item ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /wishlist/{id} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.wishlistService.Remove(c.Request.Context(), principal.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
