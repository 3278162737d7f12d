// Package checkout converts a customer's cart into confirmed orders.
package checkout

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Checkout outcomes reported to the metrics recorder
const (
	OutcomeSuccess           = "success"
	OutcomeEmptyCart         = "empty_cart"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeStockUnderflow    = "stock_underflow"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

// MetricsRecorder records checkout attempts
type MetricsRecorder interface {
	RecordCheckout(ctx context.Context, outcome string, orders int, total decimal.Decimal)
}

type noopRecorder struct{}

func (noopRecorder) RecordCheckout(context.Context, string, int, decimal.Decimal) {}

// CheckoutService runs the cart-to-orders transaction
type CheckoutService struct {
	txScope TransactionScope
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. metrics may be nil.
func NewCheckoutService(txScope TransactionScope, metrics MetricsRecorder, logger *zap.Logger) *CheckoutService {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{txScope: txScope, metrics: metrics, logger: logger}
}

// Checkout places one confirmed order per cart line.
//
// Inside a single transaction it loads the cart with current stock and price,
// rejects the whole checkout if any line exceeds stock, decrements stock with a
// guarded update per line, inserts the orders at the loaded price, clears the
// cart and stores an OrderPlaced event in the outbox. Any failure rolls all of
// it back. The confirmation message is delivered later from the outbox.
func (s *CheckoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place",
		telemetry.SpanAttrUserID, cmd.UserID,
		telemetry.SpanAttrPaymentMethod, cmd.PaymentMethod,
	)
	defer span.End()

	log := logger.Enrich(ctx, s.logger).With(zap.Int64("user_id", cmd.UserID))

	paymentMethod := strings.TrimSpace(cmd.PaymentMethod)
	if paymentMethod == "" {
		s.metrics.RecordCheckout(ctx, OutcomeInvalid, 0, decimal.Zero)
		return nil, order.ErrPaymentMethodRequired
	}

	var result *CheckoutResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, err := repos.CartRepo().ListItems(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		if err := validateStock(items); err != nil {
			return err
		}
		// Row locks are taken in product order so two carts holding the
		// same products cannot deadlock each other.
		slices.SortFunc(items, func(a, b cart.Item) int { return cmp.Compare(a.ProductID, b.ProductID) })

		orders := make([]*order.Order, 0, len(items))
		for _, it := range items {
			if err := repos.ProductRepo().DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
			telemetry.AddEvent(span, "stock_taken",
				telemetry.SpanAttrProductID, it.ProductID,
				telemetry.SpanAttrQuantity, it.Quantity)
			o, err := order.NewConfirmedOrder(cmd.UserID, it.ProductID, it.Quantity, it.Price, paymentMethod)
			if err != nil {
				return err
			}
			orders = append(orders, o)
		}

		if err := repos.OrderRepo().Create(ctx, orders...); err != nil {
			return err
		}
		if _, err := repos.CartRepo().ClearForUser(ctx, cmd.UserID); err != nil {
			return err
		}

		placed := make([]order.PlacedItem, len(orders))
		for i, o := range orders {
			placed[i] = order.PlacedItem{
				OrderID:     o.ID,
				ProductID:   o.ProductID,
				ProductName: items[i].Name,
				Quantity:    o.Quantity,
				TotalPrice:  o.TotalPrice,
			}
		}
		evt := order.NewOrderPlacedEvent(cmd.UserID, placed, paymentMethod)
		if err := repos.Events().Publish(ctx, evt); err != nil {
			return err
		}

		result = &CheckoutResult{
			OrderIDs:      evt.OrderIDs(),
			Total:         evt.Total,
			ItemCount:     len(orders),
			PaymentMethod: paymentMethod,
		}
		return nil
	})
	if err != nil {
		outcome := classify(err)
		telemetry.SetAttributes(span, "outcome", outcome)
		if outcome == OutcomeError {
			telemetry.RecordError(span, err)
		}
		s.metrics.RecordCheckout(ctx, outcome, 0, decimal.Zero)
		if outcome == OutcomeError {
			log.Error("Checkout failed", zap.Error(err))
		} else {
			log.Info("Checkout rejected", zap.String("outcome", outcome), zap.Error(err))
		}
		return nil, err
	}

	telemetry.SetAttributes(span,
		"outcome", OutcomeSuccess,
		telemetry.SpanAttrItemCount, result.ItemCount,
		telemetry.SpanAttrAmount, result.Total.StringFixed(2),
	)
	s.metrics.RecordCheckout(ctx, OutcomeSuccess, result.ItemCount, result.Total)
	log.Info("Checkout completed",
		zap.Int64s("order_ids", result.OrderIDs),
		zap.String("total", result.Total.StringFixed(2)),
	)
	return result, nil
}

// validateStock checks every line and reports all shortages at once
func validateStock(items []cart.Item) error {
	var short []Shortage
	for _, it := range items {
		if it.Quantity > it.Stock {
			short = append(short, Shortage{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: it.Stock,
			})
		}
	}
	if len(short) > 0 {
		return &InsufficientStockError{Products: short}
	}
	return nil
}

func classify(err error) string {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return OutcomeEmptyCart
	case errors.As(err, &stockErr):
		return OutcomeInsufficientStock
	case errors.Is(err, catalog.ErrStockUnderflow):
		return OutcomeStockUnderflow
	case errors.Is(err, order.ErrPaymentMethodRequired):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
