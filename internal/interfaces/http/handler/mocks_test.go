package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/event"
	appidentity "github.com/storefront/backend/internal/application/identity"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, req appidentity.RegisterRequest) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req appidentity.LoginRequest) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, req appidentity.RefreshRequest) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, principal identity.Principal) (*appidentity.UserInfo, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserInfo), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, principal identity.Principal, req appidentity.ChangePasswordRequest) error {
	return m.Called(ctx, principal, req).Error(0)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, principal identity.Principal, req appidentity.UpdateProfileRequest) (*appidentity.UserInfo, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserInfo), args.Error(1)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) Get(ctx context.Context, userID int64) (*appcart.CartResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.CartResponse), args.Error(1)
}

func (m *MockCartService) line(args mock.Arguments) (*appcart.LineResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.LineResult), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID int64) (*appcart.LineResult, error) {
	return m.line(m.Called(ctx, userID, productID))
}

func (m *MockCartService) Increment(ctx context.Context, userID, lineID int64) (*appcart.LineResult, error) {
	return m.line(m.Called(ctx, userID, lineID))
}

func (m *MockCartService) Decrement(ctx context.Context, userID, lineID int64) (*appcart.LineResult, error) {
	return m.line(m.Called(ctx, userID, lineID))
}

func (m *MockCartService) Remove(ctx context.Context, userID, lineID int64) error {
	return m.Called(ctx, userID, lineID).Error(0)
}

func (m *MockCartService) BuyNow(ctx context.Context, userID, productID int64) (*appcart.LineResult, error) {
	return m.line(m.Called(ctx, userID, productID))
}

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) Checkout(ctx context.Context, cmd checkout.CheckoutCommand) (*checkout.CheckoutResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.CheckoutResult), args.Error(1)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) ListForUser(ctx context.Context, userID int64) ([]apporder.OrderResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID int64) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID int64) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, filter apporder.ListFilter) (shared.Paginated[apporder.OrderResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[apporder.OrderResponse]), args.Error(1)
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, orderID int64, raw string) (*apporder.TransitionResult, error) {
	args := m.Called(ctx, orderID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.TransitionResult), args.Error(1)
}

func (m *MockOrderService) ExportCSV(ctx context.Context, w io.Writer, status string) error {
	return m.Called(ctx, w, status).Error(0)
}

func (m *MockOrderService) Invoice(ctx context.Context, userID, orderID int64) (*apporder.Invoice, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.Invoice), args.Error(1)
}

type MockOutboxService struct{ mock.Mock }

func (m *MockOutboxService) GetDeadLetterEntries(ctx context.Context, filter event.OutboxFilter) (*shared.Paginated[event.OutboxEntryDTO], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[event.OutboxEntryDTO]), args.Error(1)
}

func (m *MockOutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*event.OutboxEntryDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.OutboxEntryDTO), args.Error(1)
}

func (m *MockOutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*event.OutboxEntryDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.OutboxEntryDTO), args.Error(1)
}

func (m *MockOutboxService) RetryAllDeadEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxService) GetStats(ctx context.Context) (*event.OutboxStatsDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.OutboxStatsDTO), args.Error(1)
}
