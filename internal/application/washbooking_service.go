package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/carwash"
	"github.com/parkmate/service-parking/internal/domain/parking"
	paymentDomain "github.com/parkmate/service-parking/internal/domain/payment"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// CreateWashBookingRequest holds the data to schedule a standalone wash.
type CreateWashBookingRequest struct {
	LotID         *uuid.UUID `json:"lot_id"`
	WashTypeID    uuid.UUID  `json:"wash_type_id" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	ScheduledAt   time.Time  `json:"scheduled_at" binding:"required"`
	Notes         string     `json:"notes"`
}

// WashBookingDTO is the response representation of a standalone wash.
type WashBookingDTO struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	LotID          *uuid.UUID `json:"lot_id,omitempty"`
	EmployeeID     *uuid.UUID `json:"employee_id,omitempty"`
	ServiceType    string     `json:"service_type"`
	PriceCents     int64      `json:"price_cents"`
	PaymentMethod  string     `json:"payment_method"`
	PaymentState   string     `json:"payment_state"`
	Status         string     `json:"status"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	AutoCompleteAt *time.Time `json:"auto_complete_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// WashBookingService is the application service for standalone wash
// bookings scheduled against hourly per-lot capacity buckets.
type WashBookingService struct {
	washRepo     carwash.WashBookingRepository
	washTypeRepo carwash.WashTypeRepository
	lotRepo      parking.LotRepository
	policy       *carwash.SchedulePolicy
	notifier     notify.Notifier
	logger       *zap.Logger
	eventPublisher
}

// NewWashBookingService creates a new WashBookingService.
func NewWashBookingService(
	washRepo carwash.WashBookingRepository,
	washTypeRepo carwash.WashTypeRepository,
	lotRepo parking.LotRepository,
	policy *carwash.SchedulePolicy,
	notifier notify.Notifier,
	producer *kafka.Producer,
	logger *zap.Logger,
) *WashBookingService {
	return &WashBookingService{
		washRepo:       washRepo,
		washTypeRepo:   washTypeRepo,
		lotRepo:        lotRepo,
		policy:         policy,
		notifier:       notifier,
		logger:         logger,
		eventPublisher: eventPublisher{producer: producer, logger: logger},
	}
}

// CreateWashBooking schedules a standalone wash. The scheduling window
// and the hourly bucket capacity are checked up front, then rechecked
// under lock when the booking is written. A full bucket surfaces the
// next free hour in the error.
func (s *WashBookingService) CreateWashBooking(ctx context.Context, userID uuid.UUID, req CreateWashBookingRequest) (*WashBookingDTO, error) {
	method, err := paymentDomain.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scheduledAt := req.ScheduledAt.UTC()
	if err := s.policy.ValidateWindow(now, scheduledAt); err != nil {
		return nil, err
	}

	washType, err := s.washTypeRepo.FindByID(ctx, req.WashTypeID)
	if err != nil {
		return nil, err
	}

	var lot *parking.Lot
	if req.LotID != nil {
		lot, err = s.lotRepo.FindByID(ctx, *req.LotID)
		if err != nil {
			return nil, err
		}
		if !lot.WashServiceAvailable() {
			return nil, apperr.NewConflictError("this lot does not offer wash services")
		}

		bucket := carwash.BucketStart(scheduledAt)
		occupied, err := s.washRepo.CountInBucket(ctx, lot.ID(), bucket)
		if err != nil {
			return nil, err
		}
		if !s.policy.HasCapacity(occupied) {
			nextFree, err := s.washRepo.NextFreeBucket(ctx, lot.ID(), bucket, s.policy.BucketCapacity())
			if err != nil {
				return nil, err
			}
			return nil, s.policy.ConflictError(nextFree)
		}
	}

	wb, err := carwash.NewWashBooking(
		userID,
		req.LotID, nil,
		washType.Name(),
		washType.PriceCents(),
		string(method),
		!method.RequiresVerification(),
		scheduledAt,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if wb.PaymentState() == carwash.PaymentStateVerified {
		wb.ArmAutoComplete(now, s.policy.AutoCompleteDelay())
	}

	if err := s.washRepo.CreateScheduled(ctx, wb, s.policy.BucketCapacity()); err != nil {
		return nil, err
	}

	s.logger.Info("wash booking created",
		zap.String("wash_booking_id", wb.ID().String()),
		zap.Time("scheduled_at", wb.ScheduledAt()))

	s.publish(ctx, events.TopicParkingEvents, events.WashScheduled, washEvent(wb))
	if lot != nil {
		s.notifier.Notify(lot.OwnerID(), "info", "a car wash was scheduled at "+lot.Name())
	}

	dto := toWashBookingDTO(wb)
	return &dto, nil
}

// GetWashBooking retrieves a wash booking the actor may see.
func (s *WashBookingService) GetWashBooking(ctx context.Context, actor auth.Actor, id uuid.UUID) (*WashBookingDTO, error) {
	s.sweep(ctx)

	wb, err := s.washRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, wb); err != nil {
		return nil, err
	}
	dto := toWashBookingDTO(wb)
	return &dto, nil
}

// GetUserWashBookings retrieves the actor's own wash bookings.
func (s *WashBookingService) GetUserWashBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*apperr.PaginatedResult[WashBookingDTO], error) {
	s.sweep(ctx)

	items, total, err := s.washRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return washBookingPage(items, total, page, limit), nil
}

// GetOwnerWashBookings retrieves wash bookings across the owner's lots.
func (s *WashBookingService) GetOwnerWashBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*apperr.PaginatedResult[WashBookingDTO], error) {
	s.sweep(ctx)

	lots, err := s.lotRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	lotIDs := make([]uuid.UUID, len(lots))
	for i, l := range lots {
		lotIDs[i] = l.ID()
	}

	items, total, err := s.washRepo.FindByLotIDs(ctx, lotIDs, page, limit)
	if err != nil {
		return nil, err
	}
	return washBookingPage(items, total, page, limit), nil
}

// ListAllWashBookings retrieves every wash booking (admin).
func (s *WashBookingService) ListAllWashBookings(ctx context.Context, page, limit int) (*apperr.PaginatedResult[WashBookingDTO], error) {
	s.sweep(ctx)

	items, total, err := s.washRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return washBookingPage(items, total, page, limit), nil
}

// VerifyPayment marks a cash wash payment as received. Only the lot
// owner or an admin may verify; repeating the call changes nothing.
// Verification arms the auto-complete deadline.
func (s *WashBookingService) VerifyPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*WashBookingDTO, error) {
	if err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}

	var changed bool
	updated, err := s.washRepo.UpdateTx(ctx, id, func(wb *carwash.WashBooking) error {
		var err error
		changed, err = wb.VerifyPayment(time.Now().UTC(), s.policy.AutoCompleteDelay())
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifier.Notify(updated.UserID(), "info", "your car wash payment was verified")
	}

	dto := toWashBookingDTO(updated)
	return &dto, nil
}

// ConfirmWashBooking moves a pending wash to confirmed. The payment
// must already be verified.
func (s *WashBookingService) ConfirmWashBooking(ctx context.Context, actor auth.Actor, id uuid.UUID) (*WashBookingDTO, error) {
	if err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.washRepo.UpdateTx(ctx, id, func(wb *carwash.WashBooking) error {
		return wb.Confirm()
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(updated.UserID(), "info", "your car wash booking was confirmed")

	dto := toWashBookingDTO(updated)
	return &dto, nil
}

// UpdateWashStatus moves a wash booking through its forward-only
// machine. Admins may override the transition table; users may only
// cancel their own booking.
func (s *WashBookingService) UpdateWashStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, rawStatus string) (*WashBookingDTO, error) {
	target, err := carwash.ParseWashStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	existing, err := s.washRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsUser() {
		if existing.UserID() != actor.AccountID {
			return nil, apperr.NewForbiddenError("wash booking does not belong to this user")
		}
		if target != carwash.WashStatusCancelled {
			return nil, apperr.NewForbiddenError("users may only cancel their wash booking")
		}
	} else if !actor.IsAdmin() {
		if err := s.authorizeManage(ctx, actor, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.washRepo.UpdateTx(ctx, id, func(wb *carwash.WashBooking) error {
		return wb.TransitionTo(target, actor.IsAdmin())
	})
	if err != nil {
		return nil, err
	}

	if updated.Status() == carwash.WashStatusCompleted {
		s.publish(ctx, events.TopicParkingEvents, events.WashCompleted, washEvent(updated))
		s.notifier.Notify(updated.UserID(), "info", "your car wash has been completed")
	}

	dto := toWashBookingDTO(updated)
	return &dto, nil
}

// sweep closes wash bookings whose auto-complete deadline has passed.
// Failures are logged and never block the read that triggered them.
func (s *WashBookingService) sweep(ctx context.Context) {
	ids, err := s.washRepo.SweepAutoComplete(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("wash auto-complete sweep failed", zap.Error(err))
		return
	}
	for _, id := range ids {
		wb, err := s.washRepo.FindByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to load auto-completed wash",
				zap.String("wash_booking_id", id.String()),
				zap.Error(err))
			continue
		}
		s.publish(ctx, events.TopicParkingEvents, events.WashCompleted, washEvent(wb))
		s.notifier.Notify(wb.UserID(), "info", "your car wash has been completed")
	}
}

// --- Helpers ---

func (s *WashBookingService) authorizeRead(ctx context.Context, actor auth.Actor, wb *carwash.WashBooking) error {
	if actor.IsAdmin() || wb.UserID() == actor.AccountID {
		return nil
	}
	if wb.LotID() != nil {
		lot, err := s.lotRepo.FindByID(ctx, *wb.LotID())
		if err != nil {
			return err
		}
		if lot.IsOwnedBy(actor.AccountID) {
			return nil
		}
	}
	return apperr.NewForbiddenError("wash booking does not belong to this account")
}

func (s *WashBookingService) authorizeManage(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	wb, err := s.washRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if wb.LotID() == nil {
		return apperr.NewForbiddenError("wash booking is not attached to a lot")
	}
	lot, err := s.lotRepo.FindByID(ctx, *wb.LotID())
	if err != nil {
		return err
	}
	if !lot.IsOwnedBy(actor.AccountID) {
		return apperr.NewForbiddenError("wash booking does not belong to this owner's lot")
	}
	return nil
}

func washBookingPage(items []*carwash.WashBooking, total int64, page, limit int) *apperr.PaginatedResult[WashBookingDTO] {
	dtos := make([]WashBookingDTO, len(items))
	for i, wb := range items {
		dtos[i] = toWashBookingDTO(wb)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func washEvent(wb *carwash.WashBooking) events.WashEvent {
	scheduledAt := wb.ScheduledAt()
	return events.WashEvent{
		WashID:      wb.ID(),
		UserID:      wb.UserID(),
		LotID:       wb.LotID(),
		EmployeeID:  wb.EmployeeID(),
		Status:      wb.Status().String(),
		PriceCents:  wb.PriceCents(),
		ScheduledAt: &scheduledAt,
	}
}

func toWashBookingDTO(wb *carwash.WashBooking) WashBookingDTO {
	return WashBookingDTO{
		ID:             wb.ID(),
		UserID:         wb.UserID(),
		LotID:          wb.LotID(),
		EmployeeID:     wb.EmployeeID(),
		ServiceType:    wb.ServiceType(),
		PriceCents:     wb.PriceCents(),
		PaymentMethod:  wb.PaymentMethod(),
		PaymentState:   string(wb.PaymentState()),
		Status:         wb.Status().String(),
		ScheduledAt:    wb.ScheduledAt(),
		CompletedAt:    wb.CompletedAt(),
		AutoCompleteAt: wb.AutoCompleteAt(),
		Notes:          wb.Notes(),
		CreatedAt:      wb.CreatedAt(),
	}
}
