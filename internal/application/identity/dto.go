package identity

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// RegisterRequest contains the input for account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest contains the input for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest contains the refresh token to exchange
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest contains the input for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UpdateProfileRequest edits the caller's name and personal details.
// Omitted fields keep their value; an empty string clears a detail.
type UpdateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,max=10"`
	Gender      *string `json:"gender" binding:"omitempty,max=10"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	UserID   int64
	TokenJTI string
	TokenTTL time.Duration
}

// UserInfo is the public view of an account
type UserInfo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	DateOfBirth string     `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResult contains the tokens issued on login or registration
type AuthResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

func toUserInfo(u *identity.User) UserInfo {
	info := UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Gender:      string(u.Profile.Gender),
		Phone:       u.Profile.Phone,
		Address:     u.Profile.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Profile.DateOfBirth != nil {
		info.DateOfBirth = u.Profile.DateOfBirth.Format(dateLayout)
	}
	return info
}

const dateLayout = "2006-01-02"

// apply merges the request into the current profile
func (r UpdateProfileRequest) apply(u *identity.User) (string, identity.Profile, error) {
	name := u.Name
	if r.Name != nil {
		name = *r.Name
	}
	p := u.Profile
	if r.DateOfBirth != nil {
		p.DateOfBirth = nil
		if *r.DateOfBirth != "" {
			dob, err := time.Parse(dateLayout, *r.DateOfBirth)
			if err != nil {
				return "", p, shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth must be YYYY-MM-DD")
			}
			p.DateOfBirth = &dob
		}
	}
	if r.Gender != nil {
		p.Gender = identity.Gender(*r.Gender)
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Address != nil {
		p.Address = *r.Address
	}
	return name, p, nil
}
