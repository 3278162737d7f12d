// Package review holds product ratings left by customers.
package review

import (
	"context"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

var (
	ErrInvalidRating   = shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	ErrAlreadyReviewed = shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")
)

// Review is one customer's rating of one product
type Review struct {
	shared.BaseEntity
	ProductID int64
	UserID    int64
	Rating    int
	Comment   string
}

// NewReview creates a review with a rating between 1 and 5
func NewReview(productID, userID int64, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	return &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
	}, nil
}

// View is a review joined with its author's display name
type View struct {
	ID        int64
	ProductID int64
	UserID    int64
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Repository defines the interface for review persistence
type Repository interface {
	Exists(ctx context.Context, productID, userID int64) (bool, error)
	Save(ctx context.Context, r *Review) error
	// ListForProduct returns reviews newest first
	ListForProduct(ctx context.Context, productID int64) ([]View, error)
	// AverageRating returns the mean rating, or 0 when there are no reviews
	AverageRating(ctx context.Context, productID int64) (float64, error)
}
