package identity

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, jwtService, blacklist, nil), blacklist
}

func newTestUser(t *testing.T, id int64, password string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("Ada", "ada@example.com", password, role)
	require.NoError(t, err)
	u.ID = id
	return u
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer and issues tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("ExistsByEmail", ctx, "ada@example.com").Return(false, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Role == identity.RoleCustomer && u.PasswordHash != "secret1"
		})).Run(func(args mock.Arguments) { args.Get(1).(*identity.User).ID = 5 }).Return(nil)

		res, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.User.ID)
		assert.Equal(t, "customer", res.User.Role)
		assert.NotEmpty(t, res.AccessToken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("ExistsByEmail", ctx, "ada@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("short password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("ExistsByEmail", ctx, "ada@example.com").Return(false, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "123"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, 3, "secret1", identity.RoleAdmin)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		res, err := svc.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "admin", res.User.Role)
		assert.NotNil(t, user.LastLoginAt)

		principal, _, err := svc.Authenticate(ctx, res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(3), principal.UserID)
		assert.True(t, principal.IsAdmin())
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, "ada@example.com").Return(newTestUser(t, 3, "secret1", identity.RoleCustomer), nil)

		_, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "nope12"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByEmail", ctx, "who@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginRequest{Email: "who@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo)
	user := newTestUser(t, 3, "secret1", identity.RoleCustomer)
	repo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	res, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, claims, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutInput{UserID: 3, TokenJTI: claims.ID, TokenTTL: claims.RemainingTTL()}))

	_, _, err = svc.Authenticate(ctx, res.AccessToken)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TOKEN_REVOKED", domainErr.Code)
}

func TestRefresh_IsSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo)
	user := newTestUser(t, 3, "secret1", identity.RoleCustomer)
	repo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	repo.On("FindByID", ctx, int64(3)).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	res, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: res.RefreshToken})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	principal := identity.Principal{UserID: 3, Role: identity.RoleCustomer}

	t.Run("wrong old password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByID", ctx, int64(3)).Return(newTestUser(t, 3, "secret1", identity.RoleCustomer), nil)

		err := svc.ChangePassword(ctx, principal, ChangePasswordRequest{OldPassword: "bad", NewPassword: "secret2"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalidates existing sessions", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, blacklist := newTestAuthService(repo)
		user := newTestUser(t, 3, "secret1", identity.RoleCustomer)
		repo.On("FindByID", ctx, int64(3)).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		require.NoError(t, svc.ChangePassword(ctx, principal, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))
		assert.True(t, user.VerifyPassword("secret2"))

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, 3, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _ := newTestAuthService(new(MockUserRepository))
		err := svc.ChangePassword(ctx, identity.Principal{}, ChangePasswordRequest{})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	principal := identity.Principal{UserID: 3, Role: identity.RoleCustomer}
	ptr := func(s string) *string { return &s }

	t.Run("merges given fields", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, 3, "secret1", identity.RoleCustomer)
		user.Profile.Address = "1 Old Road"
		repo.On("FindByID", ctx, int64(3)).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		info, err := svc.UpdateProfile(ctx, principal, UpdateProfileRequest{
			DateOfBirth: ptr("1990-07-14"),
			Gender:      ptr("female"),
			Phone:       ptr("555-123-4567"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Ada", info.Name)
		assert.Equal(t, "1990-07-14", info.DateOfBirth)
		assert.Equal(t, "female", info.Gender)
		assert.Equal(t, "555-123-4567", info.Phone)
		assert.Equal(t, "1 Old Road", info.Address)
		repo.AssertExpectations(t)
	})

	t.Run("empty strings clear details", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		user := newTestUser(t, 3, "secret1", identity.RoleCustomer)
		dob := time.Date(1990, 7, 14, 0, 0, 0, 0, time.UTC)
		user.Profile = identity.Profile{DateOfBirth: &dob, Phone: "5551234567", Address: "1 Old Road"}
		repo.On("FindByID", ctx, int64(3)).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		info, err := svc.UpdateProfile(ctx, principal, UpdateProfileRequest{
			Name: ptr("Ada Lovelace"), DateOfBirth: ptr(""), Address: ptr(""),
		})
		require.NoError(t, err)

		assert.Equal(t, "Ada Lovelace", info.Name)
		assert.Empty(t, info.DateOfBirth)
		assert.Empty(t, info.Address)
		assert.Equal(t, "5551234567", info.Phone)
	})

	t.Run("invalid details are not saved", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByID", ctx, int64(3)).Return(newTestUser(t, 3, "secret1", identity.RoleCustomer), nil)

		_, err := svc.UpdateProfile(ctx, principal, UpdateProfileRequest{Phone: ptr("call me")})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PHONE", domainErr.Code)

		_, err = svc.UpdateProfile(ctx, principal, UpdateProfileRequest{DateOfBirth: ptr("14/07/1990")})
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DATE_OF_BIRTH", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _ := newTestAuthService(new(MockUserRepository))
		_, err := svc.UpdateProfile(ctx, identity.Principal{}, UpdateProfileRequest{})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when none exists", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("CountByRole", ctx, identity.RoleAdmin).Return(int64(0), nil)
		repo.On("Save", ctx, mock.MatchedBy(func(u *identity.User) bool { return u.Role == identity.RoleAdmin })).Return(nil)

		created, err := svc.SeedAdmin(ctx, "", "admin@example.com", "admin123")
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("skips when an admin exists", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("CountByRole", ctx, identity.RoleAdmin).Return(int64(1), nil)

		created, err := svc.SeedAdmin(ctx, "", "admin@example.com", "admin123")
		require.NoError(t, err)
		assert.False(t, created)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
