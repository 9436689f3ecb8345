package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Review is a user's rating of a parking lot.
type Review struct {
	id        uuid.UUID
	lotID     uuid.UUID
	userID    uuid.UUID
	rating    int
	text      string
	createdAt time.Time
	updatedAt time.Time
}

// NewReview creates a review with a rating between 1 and 5.
func NewReview(lotID, userID uuid.UUID, rating int, text string) (*Review, error) {
	if lotID == uuid.Nil {
		return nil, apperr.NewValidationError("lot ID is required")
	}
	if userID == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.NewValidationError("rating must be between 1 and 5")
	}

	now := time.Now().UTC()
	return &Review{
		id:        uuid.New(),
		lotID:     lotID,
		userID:    userID,
		rating:    rating,
		text:      text,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Review from persistence data (no validation).
func Reconstruct(id, lotID, userID uuid.UUID, rating int, text string, createdAt, updatedAt time.Time) *Review {
	return &Review{
		id:        id,
		lotID:     lotID,
		userID:    userID,
		rating:    rating,
		text:      text,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) LotID() uuid.UUID     { return r.lotID }
func (r *Review) UserID() uuid.UUID    { return r.userID }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Text() string         { return r.text }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
func (r *Review) UpdatedAt() time.Time { return r.updatedAt }

// IsAuthoredBy checks if the review was written by the given user.
func (r *Review) IsAuthoredBy(userID uuid.UUID) bool {
	return r.userID == userID
}

// Update replaces the rating and text of the review.
func (r *Review) Update(rating int, text string) error {
	if rating < 1 || rating > 5 {
		return apperr.NewValidationError("rating must be between 1 and 5")
	}
	r.rating = rating
	r.text = text
	r.updatedAt = time.Now().UTC()
	return nil
}
