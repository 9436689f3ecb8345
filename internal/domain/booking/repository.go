package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/payment"
)

// Repository defines the persistence contract for booking aggregates.
//
// CreateReserved and the other multi-entity methods run inside a single
// database transaction with row locks on the slot (and, for renewals,
// the prior booking) so that two concurrent requests for the same slot
// cannot both succeed.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserID retrieves bookings belonging to a user with pagination,
	// newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByLotID retrieves bookings for all slots of a lot with pagination
	// (owner dashboard).
	FindByLotID(ctx context.Context, lotID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin stats).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CreateReserved atomically locks the slot, verifies it is still free,
	// rejects a duplicate non-terminal booking for the same user and
	// vehicle, persists the booking with its payment and marks the slot
	// occupied. Returns a conflict error when the slot was taken between
	// read and lock.
	CreateReserved(ctx context.Context, b *Booking, pay *payment.Payment) error

	// CancelAndRelease atomically cancels the booking, frees its slot and
	// terminates any open wash add-on. The mutate callback runs on the
	// locked, freshly-loaded aggregate so the status transition is checked
	// against current state.
	CancelAndRelease(ctx context.Context, bookingID uuid.UUID, mutate func(*Booking) error) error

	// CompleteAndRelease atomically completes the booking, frees its slot
	// and terminates any open wash add-on. SweepExpired routes every
	// per-booking close through it.
	CompleteAndRelease(ctx context.Context, bookingID uuid.UUID, mutate func(*Booking) error) error

	// Renew atomically re-validates renewal eligibility of the old booking
	// under lock, re-occupies the slot and persists the replacement with
	// its payment.
	Renew(ctx context.Context, oldBookingID uuid.UUID, build func(old *Booking) (*Booking, *payment.Payment, error)) (*Booking, error)

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// VerifyCashPayment settles a pending cash payment under lock. The
	// mutate callback receives the payment, its booking and whether the
	// payment is the booking's slot payment (first by creation time), so
	// cash verification can start the parking timer in the same
	// transaction.
	VerifyCashPayment(ctx context.Context, paymentID uuid.UUID, mutate func(p *payment.Payment, b *Booking, isSlotPayment bool) error) (*payment.Payment, error)

	// SweepExpired completes every booked booking whose end time has passed,
	// frees the slots and flips pending wash addons to completed. Returns
	// the IDs of the bookings it closed.
	SweepExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
