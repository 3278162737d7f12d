package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(svc *MockAuthService, p identity.Principal) *gin.Engine {
	h := NewAuthHandler(svc)
	r := newRouter(p)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", h.Me)
	r.PUT("/auth/password", h.ChangePassword)
	r.PUT("/auth/me", h.UpdateProfile)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, appidentity.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}).
		Return(&appidentity.AuthResult{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer",
			User: appidentity.UserInfo{ID: 3, Email: "ada@example.com", Role: "customer"}}, nil)

	rec := perform(newAuthRouter(svc, identity.Principal{}), http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"a"`)
	svc.AssertExpectations(t)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	svc := new(MockAuthService)
	rec := perform(newAuthRouter(svc, identity.Principal{}), http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada","password":"1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	require.Len(t, env.Error.Details, 2)
	assert.Equal(t, "email", env.Error.Details[0].Field)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_MalformedBody(t *testing.T) {
	rec := perform(newAuthRouter(new(MockAuthService), identity.Principal{}), http.MethodPost, "/auth/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decode(t, rec).Error.Code)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, identity.ErrInvalidCredentials)

	rec := perform(newAuthRouter(svc, identity.Principal{}), http.MethodPost, "/auth/login",
		`{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decode(t, rec).Error.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, mock.MatchedBy(func(in appidentity.LogoutInput) bool {
		return in.UserID == customer.UserID && in.TokenJTI == "jti-1" && in.TokenTTL > 0
	})).Return(nil)

	h := NewAuthHandler(svc)
	r := newRouter(customer)
	r.POST("/auth/logout", func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		}, UserID: customer.UserID})
		h.Logout(c)
	})

	rec := perform(r, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Me(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("CurrentUser", mock.Anything, customer).Return(&appidentity.UserInfo{ID: 5, Name: "Ada"}, nil)

	rec := perform(newAuthRouter(svc, customer), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada"`)

	rec = perform(newAuthRouter(svc, identity.Principal{}), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("ChangePassword", mock.Anything, customer,
		appidentity.ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}).Return(nil)

	rec := perform(newAuthRouter(svc, customer), http.MethodPut, "/auth/password",
		`{"old_password":"secret1","new_password":"secret2"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("UpdateProfile", mock.Anything, customer, mock.MatchedBy(func(req appidentity.UpdateProfileRequest) bool {
		return req.Name == nil && req.Phone != nil && *req.Phone == "5551234567" &&
			req.DateOfBirth != nil && *req.DateOfBirth == "1990-07-14"
	})).Return(&appidentity.UserInfo{ID: 5, Name: "Ada", Phone: "5551234567", DateOfBirth: "1990-07-14"}, nil).Once()

	r := newAuthRouter(svc, customer)
	rec := perform(r, http.MethodPut, "/auth/me", `{"phone":"5551234567","date_of_birth":"1990-07-14"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"date_of_birth":"1990-07-14"`)

	t.Run("rejects malformed fields before the service", func(t *testing.T) {
		for _, body := range []string{
			`{"name":""}`,
			`{"phone":"555 123 4567 555 123 4567"}`,
			`{"date_of_birth":"1990-07-14T00:00:00Z"}`,
		} {
			rec := perform(r, http.MethodPut, "/auth/me", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := perform(newAuthRouter(svc, identity.Principal{}), http.MethodPut, "/auth/me", `{"phone":"5551234567"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	svc.AssertExpectations(t)
}
