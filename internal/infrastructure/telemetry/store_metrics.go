package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LowStockCounter reports how many products are running out
type LowStockCounter interface {
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// StoreMetrics records checkout, order lifecycle and outbox delivery metrics.
// It satisfies the checkout MetricsRecorder and the outbox DeliveryObserver.
type StoreMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	checkoutTotal    *Counter
	ordersPlaced     *Counter
	revenueTotal     metric.Float64Counter
	transitionsTotal *Counter
	outboxDelivered  *Counter
	outboxFailed     *Counter
	lowStockProducts *Gauge

	stopChan chan struct{}
	stopOnce sync.Once
}

// StoreMetricsConfig holds configuration for store metrics
type StoreMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewStoreMetrics creates the store metric instruments
func NewStoreMetrics(cfg StoreMetricsConfig) (*StoreMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &StoreMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	if m.checkoutTotal, err = NewCounter(cfg.Meter,
		"shop_checkout_total", "Checkout attempts by outcome", "{checkouts}"); err != nil {
		return nil, err
	}
	if m.ordersPlaced, err = NewCounter(cfg.Meter,
		"shop_orders_placed_total", "Orders created by successful checkouts", "{orders}"); err != nil {
		return nil, err
	}
	if m.revenueTotal, err = cfg.Meter.Float64Counter("shop_revenue_total",
		metric.WithDescription("Revenue of placed orders"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.transitionsTotal, err = NewCounter(cfg.Meter,
		"shop_order_transitions_total", "Order status changes by target status", "{transitions}"); err != nil {
		return nil, err
	}
	if m.outboxDelivered, err = NewCounter(cfg.Meter,
		"shop_outbox_delivered_total", "Outbox events delivered to handlers", "{events}"); err != nil {
		return nil, err
	}
	if m.outboxFailed, err = NewCounter(cfg.Meter,
		"shop_outbox_failed_total", "Failed outbox delivery attempts", "{events}"); err != nil {
		return nil, err
	}
	if m.lowStockProducts, err = NewGauge(cfg.Meter,
		"shop_low_stock_products", "Products below the low stock threshold", "{products}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCheckout counts one checkout attempt. orders and total are only
// meaningful for successful checkouts.
func (m *StoreMetrics) RecordCheckout(ctx context.Context, outcome string, orders int, total decimal.Decimal) {
	m.checkoutTotal.Inc(ctx, AttrOutcome.String(outcome))
	if orders > 0 {
		m.ordersPlaced.Add(ctx, int64(orders))
		m.revenueTotal.Add(ctx, total.InexactFloat64())
	}
}

// RecordTransition counts an order moving to a new status
func (m *StoreMetrics) RecordTransition(ctx context.Context, status string) {
	m.transitionsTotal.Inc(ctx, AttrOrderStatus.String(status))
}

// OutboxDelivered counts a delivered outbox event
func (m *StoreMetrics) OutboxDelivered(ctx context.Context, eventType string) {
	m.outboxDelivered.Inc(ctx, AttrEventType.String(eventType))
}

// OutboxFailed counts a failed delivery attempt
func (m *StoreMetrics) OutboxFailed(ctx context.Context, eventType string, dead bool) {
	m.outboxFailed.Inc(ctx, AttrEventType.String(eventType), AttrDead.Bool(dead))
}

// StartLowStockCollection samples the low stock count every interval until
// Stop is called or ctx ends
func (m *StoreMetrics) StartLowStockCollection(ctx context.Context, counter LowStockCounter, threshold int, interval time.Duration) {
	if counter == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.collectLowStock(ctx, counter, threshold)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.collectLowStock(ctx, counter, threshold)
			}
		}
	}()
}

func (m *StoreMetrics) collectLowStock(ctx context.Context, counter LowStockCounter, threshold int) {
	n, err := counter.CountLowStock(ctx, threshold)
	if err != nil {
		m.logger.Warn("Failed to collect low stock metric", zap.Error(err))
		return
	}
	m.lowStockProducts.Record(ctx, n, attribute.Int("threshold", threshold))
}

// Stop stops the periodic collection
func (m *StoreMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil
var ErrMeterNil = &MetricsError{Op: "NewStoreMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
