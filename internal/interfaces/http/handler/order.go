package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderUseCase is the order service surface used by OrderHandler
type OrderUseCase interface {
	ListForUser(ctx context.Context, userID int64) ([]apporder.OrderResponse, error)
	GetForUser(ctx context.Context, userID, orderID int64) (*apporder.OrderResponse, error)
	Get(ctx context.Context, orderID int64) (*apporder.OrderResponse, error)
	ListAll(ctx context.Context, filter apporder.ListFilter) (shared.Paginated[apporder.OrderResponse], error)
	TransitionStatus(ctx context.Context, orderID int64, raw string) (*apporder.TransitionResult, error)
	ExportCSV(ctx context.Context, w io.Writer, status string) error
	Invoice(ctx context.Context, userID, orderID int64) (*apporder.Invoice, error)
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderHandler handles order history and back-office order management
type OrderHandler struct {
	BaseHandler
	orderService OrderUseCase
	now          func() time.Time
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderUseCase) *OrderHandler {
	return &OrderHandler{orderService: orderService, now: time.Now}
}

// ListMine godoc
// @ID           listMyOrders
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]apporder.OrderResponse]
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetMine godoc
// @ID           getMyOrder
// @Summary      Get one of the caller's orders
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.GetForUser(c.Request.Context(), principal.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Invoice godoc
// @ID           downloadInvoice
// @Summary      Download the PDF invoice for one of the caller's orders
// @Tags         orders
// @Produce      application/pdf
// @Param        id path int true "Order ID"
// @Success      200 {file} file
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	inv, err := h.orderService.Invoice(c.Request.Context(), principal.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+inv.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", inv.PDF)
}

// ListAll godoc
// @ID           listAllOrders
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Param        status query string false "pending, confirmed, shipped, delivered or cancelled"
// @Param        search query string false "Customer, email or product contains"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apporder.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	var filter apporder.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindError(c, err)
		return
	}
	page, err := h.orderService.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get any order
// @Tags         admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} APIResponse[apporder.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Change an order's status
// @Description  Unknown statuses fail with INVALID_STATUS. With transition enforcement
// @Description  on, moves outside the lifecycle fail with ILLEGAL_STATUS_TRANSITION.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body UpdateStatusRequest true "Target status"
// @Success      200 {object} APIResponse[apporder.TransitionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	result, err := h.orderService.TransitionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export godoc
// @ID           exportOrders
// @Summary      Export orders as CSV
// @Tags         admin
// @Produce      text/csv
// @Param        status query string false "Only orders in this status"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/export [get]
func (h *OrderHandler) Export(c *gin.Context) {
	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.orderService.ExportCSV(c.Request.Context(), &buf, c.Query("status")); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := "orders-" + h.now().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
