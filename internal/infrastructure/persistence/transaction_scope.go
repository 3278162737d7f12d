package persistence

import (
	"context"

	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Events published through the scope are written to the outbox by saver
// using the same *gorm.DB transaction.
type GormTransactionScope struct {
	db    *gorm.DB
	saver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, saver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, saver: saver}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcheckout.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, saver: s.saver})
	})
}

type gormTransactionalRepositories struct {
	tx    *gorm.DB
	saver shared.OutboxEventSaver
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) CartRepo() cart.CartRepository {
	return NewGormCartRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Events() shared.EventPublisher {
	return (*txEventPublisher)(r)
}

// txEventPublisher adapts the outbox saver to EventPublisher for one transaction
type txEventPublisher gormTransactionalRepositories

func (p *txEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if p.saver == nil || len(events) == 0 {
		return nil
	}
	return p.saver.SaveEvents(ctx, p.tx, events...)
}

var (
	_ appcheckout.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcheckout.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
