package identity

import "context"

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns shared.ErrNotFound when no account uses the email
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountByRole counts accounts with the given role
	CountByRole(ctx context.Context, role Role) (int64, error)

	Save(ctx context.Context, user *User) error
}
