package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderHandler(svc *MockOrderService) *OrderHandler {
	h := NewOrderHandler(svc)
	h.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC) }
	return h
}

func TestOrderHandler_Customer(t *testing.T) {
	svc := new(MockOrderService)
	h := newOrderHandler(svc)
	r := newRouter(customer)
	r.GET("/orders", h.ListMine)
	r.GET("/orders/:id", h.GetMine)

	svc.On("ListForUser", mock.Anything, int64(5)).Return([]apporder.OrderResponse{
		{ID: 1, UserID: 5, Quantity: 2, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(20), Status: "confirmed"},
	}, nil)
	svc.On("GetForUser", mock.Anything, int64(5), int64(99)).Return(nil, shared.ErrNotFound)

	rec := perform(r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)

	rec = perform(r, http.MethodGet, "/orders/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_ListAll(t *testing.T) {
	svc := new(MockOrderService)
	h := newOrderHandler(svc)
	r := newRouter(admin)
	r.GET("/admin/orders", h.ListAll)

	t.Run("filters and meta", func(t *testing.T) {
		svc.On("ListAll", mock.Anything, apporder.ListFilter{Status: "shipped", Page: 2, PageSize: 10}).
			Return(shared.Paginated[apporder.OrderResponse]{
				Items: []apporder.OrderResponse{{ID: 3}}, Total: 11, Page: 2, PageSize: 10, TotalPages: 2,
			}, nil).Once()

		rec := perform(r, http.MethodGet, "/admin/orders?status=shipped&page=2&page_size=10", "")
		require.Equal(t, http.StatusOK, rec.Code)
		env := decode(t, rec)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(11), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.TotalPages)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/admin/orders?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "status", env.Error.Details[0].Field)
	})

	svc.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := new(MockOrderService)
	h := newOrderHandler(svc)
	r := newRouter(admin)
	r.PUT("/admin/orders/:id/status", h.UpdateStatus)

	tests := []struct {
		name       string
		body       string
		setup      func()
		wantStatus int
		wantCode   string
	}{
		{
			name: "confirmed to shipped",
			body: `{"status":"shipped"}`,
			setup: func() {
				svc.On("TransitionStatus", mock.Anything, int64(4), "shipped").
					Return(&apporder.TransitionResult{OrderID: 4, OldStatus: order.StatusConfirmed, NewStatus: order.StatusShipped}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "illegal transition",
			body: `{"status":"pending"}`,
			setup: func() {
				svc.On("TransitionStatus", mock.Anything, int64(4), "pending").Return(nil, order.ErrIllegalTransition).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeIllegalTransition,
		},
		{
			name: "unknown status",
			body: `{"status":"lost"}`,
			setup: func() {
				svc.On("TransitionStatus", mock.Anything, int64(4), "lost").Return(nil, order.ErrInvalidStatus).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeInvalidStatus,
		},
		{
			name:       "missing status",
			body:       `{}`,
			setup:      func() {},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			rec := perform(r, http.MethodPut, "/admin/orders/4/status", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode(t, rec).Error.Code)
			}
		})
	}
	svc.AssertExpectations(t)
}

func TestOrderHandler_Export(t *testing.T) {
	svc := new(MockOrderService)
	h := newOrderHandler(svc)
	r := newRouter(admin)
	r.GET("/admin/orders/export", h.Export)

	t.Run("csv attachment", func(t *testing.T) {
		svc.On("ExportCSV", mock.Anything, mock.Anything, "").Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(1).(io.Writer), "id,status\n1,confirmed\n")
		}).Return(nil).Once()

		rec := perform(r, http.MethodGet, "/admin/orders/export", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="orders-20240309-140530.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "id,status\n1,confirmed\n", rec.Body.String())
	})

	t.Run("failure stays json", func(t *testing.T) {
		svc.On("ExportCSV", mock.Anything, mock.Anything, "lost").Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(1).(io.Writer), "id,status\n")
		}).Return(order.ErrInvalidStatus).Once()

		rec := perform(r, http.MethodGet, "/admin/orders/export?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, dto.ErrCodeInvalidStatus, decode(t, rec).Error.Code)
	})

	t.Run("internal failure", func(t *testing.T) {
		svc.On("ExportCSV", mock.Anything, mock.Anything, "shipped").Return(errors.New("db down")).Once()

		rec := perform(r, http.MethodGet, "/admin/orders/export?status=shipped", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})

	svc.AssertExpectations(t)
}

type viewOnlyOrders struct {
	order.OrderRepository
	views map[int64]*order.View
}

func (r viewOnlyOrders) FindViewByID(_ context.Context, id int64) (*order.View, error) {
	if v, ok := r.views[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

type fixedPDF struct{ calls int }

func (f *fixedPDF) Render(context.Context, string, string) ([]byte, error) {
	f.calls++
	return []byte("%PDF-1.7 invoice"), nil
}

func TestOrderHandler_Invoice(t *testing.T) {
	repo := viewOnlyOrders{views: map[int64]*order.View{
		12: {ID: 12, UserID: customer.UserID, ProductName: "Lamp", Quantity: 1,
			UnitPrice: decimal.NewFromInt(25), TotalPrice: decimal.NewFromInt(25), Status: order.StatusConfirmed},
		13: {ID: 13, UserID: customer.UserID + 1, ProductName: "Chair", Quantity: 1,
			UnitPrice: decimal.NewFromInt(80), TotalPrice: decimal.NewFromInt(80), Status: order.StatusConfirmed},
	}}
	svc := apporder.NewOrderService(repo, nil, apporder.ServiceConfig{}, nil)
	pdf := &fixedPDF{}
	svc.SetInvoiceRenderer(pdf)
	h := NewOrderHandler(svc)
	r := newRouter(customer)
	r.GET("/orders/:id/invoice", h.Invoice)

	t.Run("own order downloads as pdf", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/orders/12/invoice", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="invoice_12.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.7 invoice", rec.Body.String())
	})

	t.Run("another customer's order is not found", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/orders/13/invoice", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})

	t.Run("bad id", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/orders/abc/invoice", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Equal(t, 1, pdf.calls)
}

func TestOrderHandler_InvoiceUnavailable(t *testing.T) {
	svc := new(MockOrderService)
	h := newOrderHandler(svc)
	r := newRouter(customer)
	r.GET("/orders/:id/invoice", h.Invoice)
	svc.On("Invoice", mock.Anything, customer.UserID, int64(12)).Return(nil, apporder.ErrInvoiceUnavailable)

	rec := perform(r, http.MethodGet, "/orders/12/invoice", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, dto.ErrCodeInvoiceUnavailable, decode(t, rec).Error.Code)
	svc.AssertExpectations(t)
}
