// Package order implements order queries and the status lifecycle.
package order

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ServiceConfig holds lifecycle settings
type ServiceConfig struct {
	// EnforceTransitions restricts status changes to the transition table.
	// When false any known status may follow any other.
	EnforceTransitions bool
}

// TransitionRecorder is told about every committed status change
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, status string)
}

// OrderService handles order reads and status transitions
type OrderService struct {
	orderRepo order.OrderRepository
	txScope   checkout.TransactionScope
	config    ServiceConfig
	logger    *zap.Logger
	recorder  TransitionRecorder
	renderer  DocumentRenderer
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	txScope checkout.TransactionScope,
	config ServiceConfig,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		config:    config,
		logger:    logger,
	}
}

// SetTransitionRecorder installs a recorder for committed transitions
func (s *OrderService) SetTransitionRecorder(r TransitionRecorder) {
	s.recorder = r
}

// TransitionStatus moves an order to the status named by raw.
//
// Unknown statuses fail with INVALID_STATUS and moves outside the transition
// table fail with ILLEGAL_STATUS_TRANSITION; neither touches the order. On
// success the new status and an OrderStatusChanged event are committed together.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID int64, raw string) (*TransitionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "transition",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrOrderStatus, raw,
	)
	defer span.End()

	target, err := order.ParseStatus(raw)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *TransitionResult
	err = s.txScope.Execute(ctx, func(repos checkout.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		old, err := o.TransitionTo(target, s.config.EnforceTransitions)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, o); err != nil {
			return err
		}
		if err := repos.Events().Publish(ctx, o.PendingEvents()...); err != nil {
			return err
		}
		o.EventsPublished()

		result = &TransitionResult{OrderID: o.ID, OldStatus: old, NewStatus: o.Status}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordTransition(ctx, result.NewStatus.String())
	}

	logger.Enrich(ctx, s.logger).Info("Order status updated",
		zap.Int64("order_id", result.OrderID),
		zap.String("old_status", result.OldStatus.String()),
		zap.String("new_status", result.NewStatus.String()),
	)
	return result, nil
}

// ListForUser returns the user's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]OrderResponse, error) {
	views, _, err := s.orderRepo.ListViews(ctx, order.ListFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(views), nil
}

// GetForUser returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID int64) (*OrderResponse, error) {
	v, err := s.orderRepo.FindViewByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(*v)
	return &resp, nil
}

// Get returns any order (admin)
func (s *OrderService) Get(ctx context.Context, orderID int64) (*OrderResponse, error) {
	v, err := s.orderRepo.FindViewByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(*v)
	return &resp, nil
}

// ListAll returns a page of all orders for the back office
func (s *OrderService) ListAll(ctx context.Context, filter ListFilter) (shared.Paginated[OrderResponse], error) {
	f, err := toDomainFilter(filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	views, total, err := s.orderRepo.ListViews(ctx, f)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return shared.NewPaginated(ToOrderResponses(views), total, f.Page, f.PageSize), nil
}

// Recent returns the latest orders across all customers
func (s *OrderService) Recent(ctx context.Context, limit int) ([]OrderResponse, error) {
	f := order.ListFilter{Filter: shared.Filter{Page: 1, PageSize: limit}}
	views, _, err := s.orderRepo.ListViews(ctx, f)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(views), nil
}

var csvHeader = []string{"Order ID", "Customer Name", "Email", "Product", "Quantity", "Total Price", "Status", "Order Date"}

// ExportCSV writes every order matching status (all when empty), newest first
func (s *OrderService) ExportCSV(ctx context.Context, w io.Writer, status string) error {
	f, err := toDomainFilter(ListFilter{Status: status})
	if err != nil {
		return err
	}
	f.PageSize = 0

	views, _, err := s.orderRepo.ListViews(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range views {
		record := []string{
			strconv.FormatInt(v.ID, 10),
			v.CustomerName,
			v.CustomerEmail,
			v.ProductName,
			strconv.Itoa(v.Quantity),
			v.TotalPrice.StringFixed(2),
			v.Status.String(),
			v.OrderDate.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toDomainFilter(filter ListFilter) (order.ListFilter, error) {
	f := order.ListFilter{Filter: shared.DefaultFilter()}
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		st, err := order.ParseStatus(filter.Status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	return f, nil
}
