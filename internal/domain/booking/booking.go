package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Kind distinguishes an immediate reservation from a scheduled one.
type Kind string

const (
	KindInstant Kind = "instant"
	KindAdvance Kind = "advance"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool { return k == KindInstant || k == KindAdvance }

// Booking is the aggregate root for a parking reservation.
//
// The expiry timer is represented by endTime. It is nil while a cash
// payment is pending verification (the timer has not started) and is
// set exactly once; once set it is never moved backwards.
type Booking struct {
	id            uuid.UUID
	userID        uuid.UUID
	slotID        uuid.UUID
	lotID         uuid.UUID
	vehicleNumber string
	kind          Kind
	status        Status
	priceCents    int64
	startTime     time.Time
	endTime       *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a reservation in status booked. startTimer controls
// whether the expiry window opens immediately: electronic payments start
// the timer at creation, cash payments wait for owner verification.
func NewBooking(
	userID, slotID, lotID uuid.UUID,
	vehicleNumber string,
	kind Kind,
	priceCents int64,
	startTime time.Time,
	duration time.Duration,
	startTimer bool,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	if slotID == uuid.Nil {
		return nil, apperr.NewValidationError("slot ID is required")
	}
	if lotID == uuid.Nil {
		return nil, apperr.NewValidationError("lot ID is required")
	}
	if !kind.IsValid() {
		return nil, apperr.NewValidationError("booking kind must be instant or advance")
	}
	if priceCents <= 0 {
		return nil, apperr.NewValidationError("price must be positive")
	}
	number, err := NormalizeVehicleNumber(vehicleNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Booking{
		id:            uuid.New(),
		userID:        userID,
		slotID:        slotID,
		lotID:         lotID,
		vehicleNumber: number,
		kind:          kind,
		status:        StatusBooked,
		priceCents:    priceCents,
		startTime:     startTime.UTC(),
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}
	if startTimer {
		end := b.startTime.Add(duration)
		b.endTime = &end
	}
	return b, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, userID, slotID, lotID uuid.UUID,
	vehicleNumber string,
	kind Kind,
	status Status,
	priceCents int64,
	startTime time.Time,
	endTime *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		userID:        userID,
		slotID:        slotID,
		lotID:         lotID,
		vehicleNumber: vehicleNumber,
		kind:          kind,
		status:        status,
		priceCents:    priceCents,
		startTime:     startTime,
		endTime:       endTime,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID         { return b.id }
func (b *Booking) UserID() uuid.UUID     { return b.userID }
func (b *Booking) SlotID() uuid.UUID     { return b.slotID }
func (b *Booking) LotID() uuid.UUID      { return b.lotID }
func (b *Booking) VehicleNumber() string { return b.vehicleNumber }
func (b *Booking) Kind() Kind            { return b.kind }
func (b *Booking) Status() Status        { return b.status }
func (b *Booking) PriceCents() int64     { return b.priceCents }
func (b *Booking) StartTime() time.Time  { return b.startTime }
func (b *Booking) EndTime() *time.Time   { return b.endTime }
func (b *Booking) Version() int64        { return b.version }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }

// --- Behavior ---

// StartTimer opens the expiry window once a pending payment has been
// verified. It fails if the timer is already running.
func (b *Booking) StartTimer(from time.Time, duration time.Duration) error {
	if b.status != StatusBooked {
		return apperr.NewInvalidStateError(string(b.status), "timer start")
	}
	if b.endTime != nil {
		return apperr.NewConflictError("booking timer is already running")
	}
	start := from.UTC()
	end := start.Add(duration)
	b.startTime = start
	b.endTime = &end
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the booking to completed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return apperr.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled. Calling it on a booking
// that is already terminal fails without side effects.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return apperr.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IsExpired reports whether the expiry window has passed while the
// booking is still nominally booked. A booking with no running timer
// never expires.
func (b *Booking) IsExpired(now time.Time) bool {
	return b.status == StatusBooked && b.endTime != nil && now.After(*b.endTime)
}

// RemainingSeconds returns the seconds until expiry, floored at zero.
func (b *Booking) RemainingSeconds(now time.Time) int64 {
	if b.status != StatusBooked || b.endTime == nil {
		return 0
	}
	remaining := int64(b.endTime.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanRenew reports whether this booking is eligible for renewal: it must
// be terminal or past its expiry window.
func (b *Booking) CanRenew(now time.Time) bool {
	if b.status.IsTerminal() {
		return true
	}
	return b.IsExpired(now)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
