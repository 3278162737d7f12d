// Package identity implements registration, login and session management.
package identity

import (
	"context"
	"errors"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := identity.NormalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	user, err := identity.NewUser(req.Name, email, req.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	user.RecordLogin()

	// A concurrent registration may still win the unique index; the
	// repository reports that as ErrEmailTaken.
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Login attempt for unknown email")
		return nil, identity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.Int64("user_id", user.ID))
		return nil, identity.ErrInvalidCredentials
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// The login itself succeeded
		s.logger.Error("Failed to record login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new token pair. The role is
// re-read from the account so demotions take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResult, error) {
	claims, err := s.jwtService.Parse(req.RefreshToken, auth.KindRefresh)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Account no longer exists")
	}
	if err != nil {
		return nil, err
	}

	// The old refresh token is single use.
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke used refresh token", zap.Error(err))
	}
	return s.issue(user)
}

// Authenticate validates an access token and returns its principal
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (identity.Principal, *auth.Claims, error) {
	claims, err := s.jwtService.Parse(accessToken, auth.KindAccess)
	if err != nil {
		return identity.Principal{}, nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return identity.Principal{}, nil, err
	}
	return identity.Principal{UserID: claims.UserID, Role: identity.Role(claims.Role)}, claims, nil
}

// Logout revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" || input.TokenTTL <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Int64("user_id", input.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.Int64("user_id", input.UserID))
	return nil
}

// CurrentUser returns the caller's account
func (s *AuthService) CurrentUser(ctx context.Context, principal identity.Principal) (*UserInfo, error) {
	if err := principal.RequireUser(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// UpdateProfile edits the caller's name and personal details
func (s *AuthService) UpdateProfile(ctx context.Context, principal identity.Principal, req UpdateProfileRequest) (*UserInfo, error) {
	if err := principal.RequireUser(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	name, profile, err := req.apply(user)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(name, profile); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User profile updated", zap.Int64("user_id", user.ID))
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword verifies the old password, stores the new one and signs
// out every existing session of the user
func (s *AuthService) ChangePassword(ctx context.Context, principal identity.Principal, req ChangePasswordRequest) error {
	if err := principal.RequireUser(); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(req.OldPassword) {
		return identity.ErrInvalidCredentials
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	if err := s.blacklist.InvalidateUserTokens(ctx, user.ID, s.jwtService.RefreshTTL()); err != nil {
		s.logger.Warn("Failed to invalidate sessions after password change", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	s.logger.Info("User password changed", zap.Int64("user_id", user.ID))
	return nil
}

// SeedAdmin creates the bootstrap administrator unless an admin exists.
// It reports whether an account was created.
func (s *AuthService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	admins, err := s.userRepo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}
	if name == "" {
		name = "Administrator"
	}

	user, err := identity.NewUser(name, email, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Seeded admin account", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Token blacklist lookup failed", zap.Error(err))
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			s.logger.Error("Token invalidation lookup failed", zap.Error(err))
			return err
		}
	}
	if revoked {
		return tokenError(auth.ErrTokenRevoked)
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.Issue(auth.Session{
		UserID: user.ID,
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             "Bearer",
		User:                  toUserInfo(user),
	}, nil
}

// tokenError maps JWT failures to domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}
