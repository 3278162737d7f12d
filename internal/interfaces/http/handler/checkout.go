package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/checkout"
)

// CheckoutUseCase places orders from the caller's cart
type CheckoutUseCase interface {
	Checkout(ctx context.Context, cmd checkout.CheckoutCommand) (*checkout.CheckoutResult, error)
}

// CheckoutRequest carries the payment method chosen at checkout
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"max=50"`
}

// CheckoutHandler handles checkout
type CheckoutHandler struct {
	BaseHandler
	checkoutService CheckoutUseCase
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout godoc
// @ID           checkout
// @Summary      Check out the cart
// @Description  Creates one confirmed order per cart line at the current price, takes
// @Description  the stock and empties the cart, all or nothing. A 422 INSUFFICIENT_STOCK
// @Description  response lists every short product in data.products.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Payment method"
// @Success      201 {object} APIResponse[checkout.CheckoutResult]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), checkout.CheckoutCommand{
		UserID:        principal.UserID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
