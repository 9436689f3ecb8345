package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/parking"
	reviewDomain "github.com/parkmate/service-parking/internal/domain/review"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// ReviewRequest holds the data to create or update a lot review.
type ReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text"`
}

// ReviewDTO is the response representation of a lot review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	LotID     uuid.UUID `json:"lot_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewService is the application service for lot reviews.
type ReviewService struct {
	repo    reviewDomain.Repository
	lotRepo parking.LotRepository
	logger  *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo reviewDomain.Repository, lotRepo parking.LotRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, lotRepo: lotRepo, logger: logger}
}

// CreateReview posts a review on a lot.
func (s *ReviewService) CreateReview(ctx context.Context, userID, lotID uuid.UUID, req ReviewRequest) (*ReviewDTO, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, err
	}

	r, err := reviewDomain.NewReview(lotID, userID, req.Rating, req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	dto := toReviewDTO(r)
	return &dto, nil
}

// GetLotReviews retrieves a lot's reviews, newest first.
func (s *ReviewService) GetLotReviews(ctx context.Context, lotID uuid.UUID, page, limit int) (*apperr.PaginatedResult[ReviewDTO], error) {
	reviews, total, err := s.repo.FindByLotID(ctx, lotID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateReview replaces the rating and text of a review written by the
// actor; admins may edit any review.
func (s *ReviewService) UpdateReview(ctx context.Context, actor auth.Actor, reviewID uuid.UUID, req ReviewRequest) (*ReviewDTO, error) {
	r, err := s.authoredReview(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if err := r.Update(req.Rating, req.Text); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	dto := toReviewDTO(r)
	return &dto, nil
}

// DeleteReview removes a review written by the actor; admins may remove
// any review.
func (s *ReviewService) DeleteReview(ctx context.Context, actor auth.Actor, reviewID uuid.UUID) error {
	if _, err := s.authoredReview(ctx, actor, reviewID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, reviewID)
}

// --- Helpers ---

func (s *ReviewService) authoredReview(ctx context.Context, actor auth.Actor, reviewID uuid.UUID) (*reviewDomain.Review, error) {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !r.IsAuthoredBy(actor.AccountID) {
		return nil, apperr.NewForbiddenError("review does not belong to this user")
	}
	return r, nil
}

func toReviewDTO(r *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID(),
		LotID:     r.LotID(),
		UserID:    r.UserID(),
		Rating:    r.Rating(),
		Text:      r.Text(),
		CreatedAt: r.CreatedAt(),
	}
}
