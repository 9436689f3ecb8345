package carwash

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/payment"
)

// WashTypeRepository defines the persistence contract for the catalog.
type WashTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WashType, error)
	ListAll(ctx context.Context) ([]*WashType, error)
	Save(ctx context.Context, wt *WashType) error
	Update(ctx context.Context, wt *WashType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddonRepository defines the persistence contract for wash add-ons.
//
// PurchaseTx is the whole add-on purchase as one transaction: the parent
// booking row is locked, the no-duplicate rule rechecked under lock, the
// payment and the add-on written together, and the assigned employee's
// workload recalculated. Either everything commits or nothing does.
type AddonRepository interface {
	// FindByID retrieves an add-on by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*WashAddon, error)

	// FindByBookingID retrieves all add-ons of a booking, newest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*WashAddon, error)

	// FindOpenByBookingID retrieves the pending or active add-on of a
	// booking, or a not-found error.
	FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*WashAddon, error)

	// PurchaseTx runs the purchase callback inside a transaction holding a
	// row lock on the booking. The callback receives a transactional view
	// for the duplicate recheck, employee pick and writes.
	PurchaseTx(ctx context.Context, bookingID uuid.UUID, fn func(tx AddonPurchaseTx) error) error

	// UpdateStatusTx transitions the add-on and recalculates the assigned
	// employee's workload within one transaction.
	UpdateStatusTx(ctx context.Context, addonID uuid.UUID, mutate func(*WashAddon) error) (*WashAddon, error)
}

// AddonPurchaseTx is the transactional view handed to the purchase
// callback while the parent booking row is locked.
type AddonPurchaseTx interface {
	// OpenAddonExists reports whether the booking already has a pending or
	// active add-on.
	OpenAddonExists(bookingID uuid.UUID) (bool, error)

	// PickLeastLoadedEmployee locks and returns the available employee of
	// the owner with the fewest current assignments, or nil when none.
	PickLeastLoadedEmployee(ownerID uuid.UUID) (*uuid.UUID, error)

	// SavePayment persists the add-on payment. It never outlives a failed
	// purchase.
	SavePayment(p *payment.Payment) error

	// SaveAddon persists the new add-on.
	SaveAddon(a *WashAddon) error

	// RecalculateWorkload recomputes an employee's assignment count.
	RecalculateWorkload(employeeID uuid.UUID) error
}

// WashBookingRepository defines the persistence contract for standalone
// wash bookings.
type WashBookingRepository interface {
	// FindByID retrieves a wash booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*WashBooking, error)

	// FindByUserID retrieves wash bookings of a user with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*WashBooking, int64, error)

	// FindByLotIDs retrieves wash bookings across the given lots with
	// pagination (owner dashboard).
	FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, page, limit int) ([]*WashBooking, int64, error)

	// ListAll retrieves all wash bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*WashBooking, int64, error)

	// CountInBucket counts non-cancelled wash bookings of a lot scheduled
	// inside the hourly bucket starting at bucketStart.
	CountInBucket(ctx context.Context, lotID uuid.UUID, bucketStart time.Time) (int64, error)

	// NextFreeBucket scans forward from the given bucket and returns the
	// first hourly bucket of the lot with spare capacity.
	NextFreeBucket(ctx context.Context, lotID uuid.UUID, from time.Time, capacity int) (time.Time, error)

	// CreateScheduled atomically rechecks bucket capacity under lock,
	// assigns the least loaded employee of the lot owner and persists the
	// booking with the employee's workload recalculated.
	CreateScheduled(ctx context.Context, wb *WashBooking, capacity int) error

	// UpdateTx reloads the booking under lock, applies the mutation and
	// persists it, recalculating the employee workload when the status
	// reached a terminal state.
	UpdateTx(ctx context.Context, id uuid.UUID, mutate func(*WashBooking) error) (*WashBooking, error)

	// SweepAutoComplete completes every open wash booking whose
	// auto-complete deadline has passed and recalculates the affected
	// employees. Returns the IDs it closed.
	SweepAutoComplete(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
