// Package review implements product reviews.
package review

import (
	"context"
	"math"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/review"
)

// AddReviewRequest is a rating with an optional comment
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductReviews lists a product's reviews with the rounded average rating
type ProductReviews struct {
	ProductID     int64            `json:"product_id"`
	AverageRating float64          `json:"average_rating"`
	Count         int              `json:"count"`
	Reviews       []ReviewResponse `json:"reviews"`
	// Reviewed is true when the calling user has already left a review
	Reviewed bool `json:"reviewed"`
}

// ReviewService handles product reviews
type ReviewService struct {
	reviewRepo  review.Repository
	productRepo catalog.ProductRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo review.Repository, productRepo catalog.ProductRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo}
}

// Add records the user's review of a product. Each user reviews a product once.
func (s *ReviewService) Add(ctx context.Context, userID, productID int64, req AddReviewRequest) (*ReviewResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	r, err := review.NewReview(productID, userID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	exists, err := s.reviewRepo.Exists(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, review.ErrAlreadyReviewed
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	return &ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}, nil
}

// ListForProduct returns reviews newest first and the average rating rounded
// to one decimal
func (s *ReviewService) ListForProduct(ctx context.Context, userID, productID int64) (*ProductReviews, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	views, err := s.reviewRepo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	avg, err := s.reviewRepo.AverageRating(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := &ProductReviews{
		ProductID:     productID,
		AverageRating: math.Round(avg*10) / 10,
		Count:         len(views),
		Reviews:       make([]ReviewResponse, len(views)),
	}
	for i, v := range views {
		out.Reviews[i] = ReviewResponse{
			ID:        v.ID,
			UserID:    v.UserID,
			UserName:  v.UserName,
			Rating:    v.Rating,
			Comment:   v.Comment,
			CreatedAt: v.CreatedAt,
		}
		if v.UserID == userID {
			out.Reviewed = true
		}
	}
	return out, nil
}
