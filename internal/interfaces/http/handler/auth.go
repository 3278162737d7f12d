package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthUseCase is the part of the identity service the auth endpoints use
type AuthUseCase interface {
	Register(ctx context.Context, req appidentity.RegisterRequest) (*appidentity.AuthResult, error)
	Login(ctx context.Context, req appidentity.LoginRequest) (*appidentity.AuthResult, error)
	Refresh(ctx context.Context, req appidentity.RefreshRequest) (*appidentity.AuthResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	CurrentUser(ctx context.Context, principal identity.Principal) (*appidentity.UserInfo, error)
	ChangePassword(ctx context.Context, principal identity.Principal, req appidentity.ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, principal identity.Principal, req appidentity.UpdateProfileRequest) (*appidentity.UserInfo, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthUseCase) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @ID           registerAuth
// @Summary      Register a customer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RegisterRequest true "Account details"
// @Success      201 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req appidentity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @ID           loginAuth
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshAuth
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[appidentity.AuthResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req appidentity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logoutAuth
// @Summary      Revoke the current access token
// @Tags         auth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	input := appidentity.LogoutInput{UserID: principal.UserID}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		input.TokenJTI = claims.ID
		input.TokenTTL = claims.RemainingTTL()
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @ID           getAuthMe
// @Summary      Get the current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[appidentity.UserInfo]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile godoc
// @ID           updateAuthMe
// @Summary      Update the current user's profile
// @Description  Omitted fields are kept; an empty string clears a detail
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} APIResponse[appidentity.UserInfo]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req appidentity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @ID           changeAuthPassword
// @Summary      Change password
// @Description  Verifies the old password and signs out every other session
// @Tags         auth
// @Accept       json
// @Param        request body appidentity.ChangePasswordRequest true "Old and new password"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req appidentity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), principal, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
