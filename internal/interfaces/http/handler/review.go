package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/review"
)

// ReviewUseCase is the review service surface used by ReviewHandler
type ReviewUseCase interface {
	Add(ctx context.Context, userID, productID int64, req review.AddReviewRequest) (*review.ReviewResponse, error)
	ListForProduct(ctx context.Context, userID, productID int64) (*review.ProductReviews, error)
}

// ReviewHandler handles product reviews
type ReviewHandler struct {
	BaseHandler
	reviewService ReviewUseCase
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// @ID           listProductReviews
// @Summary      List a product's reviews
// @Description  Includes the average rating and whether the caller already reviewed
// @Tags         reviews
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} APIResponse[review.ProductReviews]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListForProduct(c.Request.Context(), principal.UserID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// Add godoc
// @ID           addProductReview
// @Summary      Review a product
// @Description  One review per user and product
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id path int true "Product ID"
// @Param        request body review.AddReviewRequest true "Rating and comment"
// @Success      201 {object} APIResponse[review.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) Add(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req review.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	created, err := h.reviewService.Add(c.Request.Context(), principal.UserID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}
