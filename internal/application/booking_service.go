package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/parking"
	paymentDomain "github.com/parkmate/service-parking/internal/domain/payment"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// CreateBookingRequest holds the data needed to reserve a slot.
type CreateBookingRequest struct {
	SlotID        uuid.UUID  `json:"slot_id" binding:"required"`
	VehicleNumber string     `json:"vehicle_number" binding:"required"`
	Kind          string     `json:"kind" binding:"required"`
	StartTime     *time.Time `json:"start_time"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	SlotID           uuid.UUID  `json:"slot_id"`
	LotID            uuid.UUID  `json:"lot_id"`
	VehicleNumber    string     `json:"vehicle_number"`
	Kind             string     `json:"kind"`
	Status           string     `json:"status"`
	PriceCents       int64      `json:"price_cents"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating the parking
// booking lifecycle.
type BookingService struct {
	repo     bookingDomain.Repository
	slotRepo parking.SlotRepository
	lotRepo  parking.LotRepository
	policy   *bookingDomain.Policy
	notifier notify.Notifier
	logger   *zap.Logger
	eventPublisher
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	slotRepo parking.SlotRepository,
	lotRepo parking.LotRepository,
	policy *bookingDomain.Policy,
	producer *kafka.Producer,
	notifier notify.Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:           repo,
		slotRepo:       slotRepo,
		lotRepo:        lotRepo,
		policy:         policy,
		notifier:       notifier,
		logger:         logger,
		eventPublisher: eventPublisher{producer: producer, logger: logger},
	}
}

// CreateBooking reserves a slot for the user. Electronic payments start
// the parking timer immediately; cash bookings wait for lot owner
// verification before the clock runs.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	method, err := paymentDomain.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	kind := bookingDomain.Kind(req.Kind)
	if !kind.IsValid() {
		return nil, apperr.NewValidationError("booking kind must be instant or advance")
	}

	now := time.Now().UTC()
	startTime := now
	if kind == bookingDomain.KindAdvance {
		if req.StartTime == nil {
			return nil, apperr.NewValidationError("advance bookings require a start time")
		}
		if req.StartTime.Before(now) {
			return nil, apperr.NewValidationError("start time must be in the future")
		}
		startTime = req.StartTime.UTC()
	}

	slot, err := s.slotRepo.FindByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.Available() {
		return nil, apperr.NewConflictError("slot is no longer available")
	}

	bk, err := bookingDomain.NewBooking(
		userID,
		slot.ID(),
		slot.LotID(),
		req.VehicleNumber,
		kind,
		slot.HourlyPriceCents(),
		startTime,
		s.policy.Duration(),
		!method.RequiresVerification(),
	)
	if err != nil {
		return nil, err
	}

	pay, err := paymentDomain.NewPayment(bk.ID(), userID, method, bk.PriceCents(), gatewayReference(method))
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateReserved(ctx, bk, pay); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicParkingEvents, events.BookingCreated, bookingEvent(bk))
	s.notifyLotOwner(ctx, bk.LotID(), "info",
		fmt.Sprintf("slot booked by vehicle %s", bk.VehicleNumber()))

	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, sweeping expired state first so
// the caller never sees a stale active booking.
func (s *BookingService) GetBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	s.Sweep(ctx)

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, bk); err != nil {
		return nil, err
	}

	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings retrieves paginated bookings of a user.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*apperr.PaginatedResult[BookingDTO], error) {
	s.Sweep(ctx)

	bookings, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	result := apperr.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetLotBookings retrieves paginated bookings across an owner's lot.
func (s *BookingService) GetLotBookings(ctx context.Context, actor auth.Actor, lotID uuid.UUID, page, limit int) (*apperr.PaginatedResult[BookingDTO], error) {
	s.Sweep(ctx)

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !lot.IsOwnedBy(actor.AccountID) {
		return nil, apperr.NewForbiddenError("lot does not belong to this owner")
	}

	bookings, total, err := s.repo.FindByLotID(ctx, lotID, page, limit)
	if err != nil {
		return nil, err
	}
	result := apperr.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// CancelBooking cancels an active booking and frees its slot. Only the
// lot owner or an admin may cancel.
func (s *BookingService) CancelBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
		if err != nil {
			return nil, err
		}
		if !lot.IsOwnedBy(actor.AccountID) {
			return nil, apperr.NewForbiddenError("only the lot owner or an admin can cancel a booking")
		}
	}

	var cancelled *bookingDomain.Booking
	err = s.repo.CancelAndRelease(ctx, bookingID, func(b *bookingDomain.Booking) error {
		if err := b.Cancel(); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicParkingEvents, events.BookingCancelled, bookingEvent(cancelled))
	s.notifier.Notify(cancelled.UserID(), "warning", "your parking booking was cancelled")

	result := s.toBookingDTO(cancelled)
	return &result, nil
}

// RenewBooking re-reserves the slot of a finished booking at the
// discounted renewal price. Only the original user or an admin may
// renew, and only once the prior window is over.
func (s *BookingService) RenewBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	prior, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && prior.UserID() != actor.AccountID {
		return nil, apperr.NewForbiddenError("booking does not belong to this user")
	}

	now := time.Now().UTC()
	renewed, err := s.repo.Renew(ctx, bookingID, func(old *bookingDomain.Booking) (*bookingDomain.Booking, *paymentDomain.Payment, error) {
		if !old.CanRenew(now) {
			return nil, nil, apperr.NewConflictError("booking is still active and cannot be renewed yet")
		}

		price := s.policy.RenewalPriceCents(old.PriceCents())
		newBk, err := bookingDomain.NewBooking(
			old.UserID(),
			old.SlotID(),
			old.LotID(),
			old.VehicleNumber(),
			bookingDomain.KindInstant,
			price,
			now,
			s.policy.Duration(),
			true,
		)
		if err != nil {
			return nil, nil, err
		}

		pay, err := paymentDomain.NewPayment(newBk.ID(), old.UserID(), paymentDomain.MethodUPI, price, gatewayReference(paymentDomain.MethodUPI))
		if err != nil {
			return nil, nil, err
		}
		return newBk, pay, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicParkingEvents, events.BookingRenewed, bookingEvent(renewed))
	s.notifier.Notify(renewed.UserID(), "info", "your parking booking was renewed")

	result := s.toBookingDTO(renewed)
	return &result, nil
}

// Sweep closes expired bookings, releasing their slots and wash add-ons.
// It is invoked from read paths and never fails the caller: a broken
// sweep is logged and the read proceeds on existing state.
func (s *BookingService) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	closed, err := s.repo.SweepExpired(ctx, now)
	if err != nil {
		s.logger.Error("booking sweep failed", zap.Error(err))
		return
	}

	for _, id := range closed {
		bk, err := s.repo.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("failed to load swept booking", zap.String("booking_id", id.String()), zap.Error(err))
			continue
		}
		s.publish(ctx, events.TopicParkingEvents, events.BookingExpired, bookingEvent(bk))
		s.notifier.Notify(bk.UserID(), "info", "your parking booking has expired")
	}
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*apperr.PaginatedResult[BookingDTO], error) {
	s.Sweep(ctx)

	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := apperr.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) authorizeRead(ctx context.Context, actor auth.Actor, bk *bookingDomain.Booking) error {
	if actor.IsAdmin() || bk.UserID() == actor.AccountID {
		return nil
	}
	lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
	if err != nil {
		return err
	}
	if !lot.IsOwnedBy(actor.AccountID) {
		return apperr.NewForbiddenError("booking does not belong to this user")
	}
	return nil
}

func (s *BookingService) notifyLotOwner(ctx context.Context, lotID uuid.UUID, level, message string) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		s.logger.Warn("failed to resolve lot owner for notification",
			zap.String("lot_id", lotID.String()), zap.Error(err))
		return
	}
	s.notifier.Notify(lot.OwnerID(), level, message)
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:               bk.ID(),
		UserID:           bk.UserID(),
		SlotID:           bk.SlotID(),
		LotID:            bk.LotID(),
		VehicleNumber:    bk.VehicleNumber(),
		Kind:             string(bk.Kind()),
		Status:           string(bk.Status()),
		PriceCents:       bk.PriceCents(),
		StartTime:        bk.StartTime(),
		EndTime:          bk.EndTime(),
		RemainingSeconds: bk.RemainingSeconds(time.Now().UTC()),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func (s *BookingService) toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}
	return dtos
}

func bookingEvent(bk *bookingDomain.Booking) events.BookingEvent {
	return events.BookingEvent{
		BookingID:     bk.ID(),
		UserID:        bk.UserID(),
		SlotID:        bk.SlotID(),
		LotID:         bk.LotID(),
		VehicleNumber: bk.VehicleNumber(),
		Status:        string(bk.Status()),
		PriceCents:    bk.PriceCents(),
		EndTime:       bk.EndTime(),
	}
}

// gatewayReference fabricates the transaction reference recorded for
// electronic payments. Cash has no gateway leg.
func gatewayReference(method paymentDomain.Method) string {
	if method.RequiresVerification() {
		return ""
	}
	return "txn-" + uuid.NewString()
}
