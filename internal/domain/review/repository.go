package review

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for lot reviews.
type Repository interface {
	// FindByID retrieves a review by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// FindByLotID retrieves reviews of a lot with pagination, newest first.
	FindByLotID(ctx context.Context, lotID uuid.UUID, page, limit int) ([]*Review, int64, error)

	// AverageRating returns the mean rating of a lot and the review count.
	AverageRating(ctx context.Context, lotID uuid.UUID) (float64, int64, error)

	// Save persists a new review.
	Save(ctx context.Context, r *Review) error

	// Update persists changes to an existing review.
	Update(ctx context.Context, r *Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id uuid.UUID) error
}
