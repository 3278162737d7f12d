package checkout

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// TransactionScope runs a unit of work atomically. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories taking part in a
// transaction. Everything returned shares the same underlying transaction.
//
// Events publishes into the outbox table inside the transaction, so an event
// is stored if and only if the business write commits.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	CartRepo() cart.CartRepository
	OrderRepo() order.OrderRepository
	Events() shared.EventPublisher
}

// NoOpTransactionScope calls fn directly with fixed repositories. For tests.
type NoOpTransactionScope struct {
	Products catalog.ProductRepository
	Carts    cart.CartRepository
	Orders   order.OrderRepository
	Outbox   shared.EventPublisher
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.Products }
func (s *NoOpTransactionScope) CartRepo() cart.CartRepository          { return s.Carts }
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository       { return s.Orders }
func (s *NoOpTransactionScope) Events() shared.EventPublisher          { return s.Outbox }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
