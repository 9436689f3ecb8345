package parking

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// VehicleType categorizes which vehicles fit in a slot.
type VehicleType string

const (
	VehicleTypeHatchback    VehicleType = "hatchback"
	VehicleTypeSedan        VehicleType = "sedan"
	VehicleTypeSUV          VehicleType = "suv"
	VehicleTypeThreeWheeler VehicleType = "three_wheeler"
	VehicleTypeTwoWheeler   VehicleType = "two_wheeler"
)

// IsValid returns true if the vehicle type is recognized.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTypeHatchback, VehicleTypeSedan, VehicleTypeSUV,
		VehicleTypeThreeWheeler, VehicleTypeTwoWheeler:
		return true
	}
	return false
}

// Slot is a single parking space inside a lot. Availability is the
// contended state of the whole system, flipped only inside locked
// transactions by the booking repository.
type Slot struct {
	id               uuid.UUID
	lotID            uuid.UUID
	vehicleType      VehicleType
	hourlyPriceCents int64
	available        bool
	createdAt        time.Time
	updatedAt        time.Time
}

// NewSlot creates an available slot for a lot.
func NewSlot(lotID uuid.UUID, vehicleType VehicleType, hourlyPriceCents int64) (*Slot, error) {
	if lotID == uuid.Nil {
		return nil, apperr.NewValidationError("lot ID is required")
	}
	if !vehicleType.IsValid() {
		return nil, apperr.NewValidationError("unknown vehicle type: " + string(vehicleType))
	}
	if hourlyPriceCents <= 0 {
		return nil, apperr.NewValidationError("hourly price must be positive")
	}

	now := time.Now().UTC()
	return &Slot{
		id:               uuid.New(),
		lotID:            lotID,
		vehicleType:      vehicleType,
		hourlyPriceCents: hourlyPriceCents,
		available:        true,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructSlot rebuilds a Slot from persistence data (no validation).
func ReconstructSlot(
	id, lotID uuid.UUID,
	vehicleType VehicleType,
	hourlyPriceCents int64,
	available bool,
	createdAt, updatedAt time.Time,
) *Slot {
	return &Slot{
		id:               id,
		lotID:            lotID,
		vehicleType:      vehicleType,
		hourlyPriceCents: hourlyPriceCents,
		available:        available,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (s *Slot) ID() uuid.UUID            { return s.id }
func (s *Slot) LotID() uuid.UUID         { return s.lotID }
func (s *Slot) VehicleType() VehicleType { return s.vehicleType }
func (s *Slot) HourlyPriceCents() int64  { return s.hourlyPriceCents }
func (s *Slot) Available() bool          { return s.available }
func (s *Slot) CreatedAt() time.Time     { return s.createdAt }
func (s *Slot) UpdatedAt() time.Time     { return s.updatedAt }

// --- Behavior ---

// Occupy marks the slot taken. Fails if it is already occupied.
func (s *Slot) Occupy() error {
	if !s.available {
		return apperr.NewConflictError("slot is already occupied")
	}
	s.available = false
	s.updatedAt = time.Now().UTC()
	return nil
}

// Release marks the slot free again. Releasing a free slot is a no-op.
func (s *Slot) Release() {
	s.available = true
	s.updatedAt = time.Now().UTC()
}
