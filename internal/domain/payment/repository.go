package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for payments.
type Repository interface {
	// FindByID retrieves a payment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBookingID retrieves payments of a booking ordered by creation
	// time. The first entry is the slot payment.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)

	// FindByUserID retrieves payments made by a user with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Payment, int64, error)

	// FindByLotIDs retrieves payments on bookings across the given lots
	// with pagination (owner view).
	FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, page, limit int) ([]*Payment, int64, error)

	// ListAll retrieves all payments with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Payment, int64, error)

	// FindByTransactionID retrieves a payment by its gateway reference.
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// Save persists a new payment.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment.
	Update(ctx context.Context, p *Payment) error
}
