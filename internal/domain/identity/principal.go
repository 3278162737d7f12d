package identity

import "github.com/storefront/backend/internal/domain/shared"

// Principal is the authenticated caller of an operation. It is built from the
// access token at the edge and passed explicitly into application services.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal acts with admin rights
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAuthenticated reports whether the principal identifies a user
func (p Principal) IsAuthenticated() bool {
	return p.UserID > 0
}

// RequireUser returns ErrUnauthorized for anonymous principals
func (p Principal) RequireUser() error {
	if !p.IsAuthenticated() {
		return shared.ErrUnauthorized
	}
	return nil
}

// RequireAdmin returns an error unless the principal is an authenticated admin
func (p Principal) RequireAdmin() error {
	if err := p.RequireUser(); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}
	return nil
}
