package parking

import (
	"context"

	"github.com/google/uuid"
)

// LotRepository defines the persistence contract for parking lots.
type LotRepository interface {
	// FindByID retrieves a lot by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByOwnerID retrieves all lots listed by an owner.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Lot, error)

	// ListPublic retrieves lots of approved owners with pagination,
	// optionally filtered by city.
	ListPublic(ctx context.Context, city string, page, limit int) ([]*Lot, int64, error)

	// CountAvailableSlots returns the number of free slots per lot for the
	// given lot IDs. Derived by count, never stored.
	CountAvailableSlots(ctx context.Context, lotIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// SaveWithSlots persists a new lot and its bulk-generated slots in one
	// transaction.
	SaveWithSlots(ctx context.Context, lot *Lot, slots []*Slot) error

	// Update persists changes to an existing lot.
	Update(ctx context.Context, lot *Lot) error

	// Delete removes a lot and its slots. Fails with a conflict error when
	// any slot has a non-terminal booking.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SlotRepository defines the persistence contract for parking slots.
type SlotRepository interface {
	// FindByID retrieves a slot by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Slot, error)

	// FindByLotID retrieves slots of a lot, optionally filtered by vehicle
	// type and availability.
	FindByLotID(ctx context.Context, lotID uuid.UUID, vehicleType VehicleType, onlyAvailable bool) ([]*Slot, error)

	// Save persists a new slot.
	Save(ctx context.Context, slot *Slot) error

	// Update persists changes to an existing slot.
	Update(ctx context.Context, slot *Slot) error
}
