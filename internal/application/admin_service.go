package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	accountDomain "github.com/parkmate/service-parking/internal/domain/account"
	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// OwnerReviewDTO is an entry in the admin verification queue.
type OwnerReviewDTO struct {
	AccountID          uuid.UUID `json:"account_id"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	Pincode            string    `json:"pincode,omitempty"`
	VerificationStatus string    `json:"verification_status"`
}

// AdminService is the application service for owner verification.
type AdminService struct {
	accountRepo accountDomain.Repository
	notifier    notify.Notifier
	logger      *zap.Logger
	eventPublisher
}

// NewAdminService creates a new AdminService.
func NewAdminService(accountRepo accountDomain.Repository, notifier notify.Notifier, producer *kafka.Producer, logger *zap.Logger) *AdminService {
	return &AdminService{
		accountRepo:    accountRepo,
		notifier:       notifier,
		logger:         logger,
		eventPublisher: eventPublisher{producer: producer, logger: logger},
	}
}

// ListOwnersForReview retrieves owner profiles in the given
// verification state, pending by default.
func (s *AdminService) ListOwnersForReview(ctx context.Context, rawStatus string, page, limit int) (*apperr.PaginatedResult[OwnerReviewDTO], error) {
	status := accountDomain.VerificationPending
	if rawStatus != "" {
		status = accountDomain.VerificationStatus(rawStatus)
		if !status.IsValid() {
			return nil, apperr.NewValidationError("unknown verification status: " + rawStatus)
		}
	}

	profiles, total, err := s.accountRepo.ListOwnersByVerification(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]OwnerReviewDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toOwnerReviewDTO(p)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ApproveOwner marks an owner application as approved, letting their
// lots surface in public listings.
func (s *AdminService) ApproveOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerReviewDTO, error) {
	return s.decide(ctx, ownerID, true)
}

// DeclineOwner rejects an owner application.
func (s *AdminService) DeclineOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerReviewDTO, error) {
	return s.decide(ctx, ownerID, false)
}

func (s *AdminService) decide(ctx context.Context, ownerID uuid.UUID, approve bool) (*OwnerReviewDTO, error) {
	profile, err := s.accountRepo.FindOwnerProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if approve {
		err = profile.Approve()
	} else {
		err = profile.Decline()
	}
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateOwnerProfile(ctx, profile); err != nil {
		return nil, err
	}

	decision := string(profile.VerificationStatus())
	s.logger.Info("owner verification decided",
		zap.String("owner_id", ownerID.String()),
		zap.String("decision", decision))

	s.publish(ctx, events.TopicParkingEvents, events.OwnerVerified, events.OwnerEvent{
		OwnerID:  ownerID,
		Decision: decision,
	})
	if approve {
		s.notifier.Notify(ownerID, "info", "your owner account has been approved")
	} else {
		s.notifier.Notify(ownerID, "warning", "your owner application was declined")
	}

	dto := toOwnerReviewDTO(profile)
	return &dto, nil
}

func toOwnerReviewDTO(p *accountDomain.OwnerProfile) OwnerReviewDTO {
	return OwnerReviewDTO{
		AccountID:          p.AccountID(),
		Phone:              p.Phone(),
		Address:            p.Address(),
		Pincode:            p.Pincode(),
		VerificationStatus: string(p.VerificationStatus()),
	}
}
