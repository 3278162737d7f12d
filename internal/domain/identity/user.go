package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role distinguishes customers from back-office administrators
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// bcryptCost is the work factor for password hashes
var bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var phoneRegex = regexp.MustCompile(`^\+?[0-9(][0-9 ()\-]{4,18}[0-9]$`)

// Gender is the self-described gender on a profile. Empty means not given.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// IsValid reports whether g is empty or a known gender
func (g Gender) IsValid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Profile holds the optional personal details of an account
type Profile struct {
	DateOfBirth *time.Time
	Gender      Gender
	Phone       string
	Address     string
}

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials")
	ErrEmailTaken         = shared.NewDomainError("EMAIL_TAKEN", "Email already registered")
)

// User is a customer or administrator account
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Profile      Profile
	LastLoginAt  *time.Time
}

// NewUser creates a user with a hashed password
func NewUser(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	user := &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Role:       role,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// UpdateProfile replaces the display name and personal details
func (u *User) UpdateProfile(name string, p Profile) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	if err := p.validate(time.Now()); err != nil {
		return err
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.UTC().Truncate(24 * time.Hour)
		p.DateOfBirth = &dob
	}
	u.Name = name
	u.Profile = p
	u.Touch()
	return nil
}

func (p Profile) validate(now time.Time) error {
	if !p.Gender.IsValid() {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be male, female or other")
	}
	if p.Phone != "" && !phoneRegex.MatchString(p.Phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	if len(p.Address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if p.DateOfBirth != nil {
		if p.DateOfBirth.After(now) {
			return shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth cannot be in the future")
		}
		if p.DateOfBirth.Year() < 1900 {
			return shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth is too far in the past")
		}
	}
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
