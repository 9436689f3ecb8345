package parking

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Indian postal codes are six digits and never start with zero.
var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Lot is the aggregate root for a parking lot listed by an owner.
type Lot struct {
	id                   uuid.UUID
	ownerID              uuid.UUID
	name                 string
	street               string
	locality             string
	city                 string
	state                string
	pincode              string
	latitude             float64
	longitude            float64
	totalSlots           int
	washServiceAvailable bool
	createdAt            time.Time
	updatedAt            time.Time
}

// NewLot creates a parking lot with validated address fields.
func NewLot(
	ownerID uuid.UUID,
	name, street, locality, city, state, pincode string,
	latitude, longitude float64,
	totalSlots int,
	washServiceAvailable bool,
) (*Lot, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, apperr.NewValidationError("lot name is required")
	}
	if city == "" {
		return nil, apperr.NewValidationError("city is required")
	}
	if !pincodePattern.MatchString(pincode) {
		return nil, apperr.NewValidationError("pincode must be 6 digits and not start with 0")
	}
	if totalSlots < 0 {
		return nil, apperr.NewValidationError("total slots cannot be negative")
	}

	now := time.Now().UTC()
	return &Lot{
		id:                   uuid.New(),
		ownerID:              ownerID,
		name:                 name,
		street:               street,
		locality:             locality,
		city:                 city,
		state:                state,
		pincode:              pincode,
		latitude:             latitude,
		longitude:            longitude,
		totalSlots:           totalSlots,
		washServiceAvailable: washServiceAvailable,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// ReconstructLot rebuilds a Lot from persistence data (no validation).
func ReconstructLot(
	id, ownerID uuid.UUID,
	name, street, locality, city, state, pincode string,
	latitude, longitude float64,
	totalSlots int,
	washServiceAvailable bool,
	createdAt, updatedAt time.Time,
) *Lot {
	return &Lot{
		id:                   id,
		ownerID:              ownerID,
		name:                 name,
		street:               street,
		locality:             locality,
		city:                 city,
		state:                state,
		pincode:              pincode,
		latitude:             latitude,
		longitude:            longitude,
		totalSlots:           totalSlots,
		washServiceAvailable: washServiceAvailable,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

func (l *Lot) ID() uuid.UUID              { return l.id }
func (l *Lot) OwnerID() uuid.UUID         { return l.ownerID }
func (l *Lot) Name() string               { return l.name }
func (l *Lot) Street() string             { return l.street }
func (l *Lot) Locality() string           { return l.locality }
func (l *Lot) City() string               { return l.city }
func (l *Lot) State() string              { return l.state }
func (l *Lot) Pincode() string            { return l.pincode }
func (l *Lot) Latitude() float64          { return l.latitude }
func (l *Lot) Longitude() float64         { return l.longitude }
func (l *Lot) TotalSlots() int            { return l.totalSlots }
func (l *Lot) WashServiceAvailable() bool { return l.washServiceAvailable }
func (l *Lot) CreatedAt() time.Time       { return l.createdAt }
func (l *Lot) UpdatedAt() time.Time       { return l.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the lot belongs to the given owner.
func (l *Lot) IsOwnedBy(ownerID uuid.UUID) bool {
	return l.ownerID == ownerID
}

// Update applies partial updates to the lot listing.
func (l *Lot) Update(name, street, locality, city, state, pincode string, washServiceAvailable *bool) error {
	if pincode != "" && !pincodePattern.MatchString(pincode) {
		return apperr.NewValidationError("pincode must be 6 digits and not start with 0")
	}
	if name != "" {
		l.name = name
	}
	if street != "" {
		l.street = street
	}
	if locality != "" {
		l.locality = locality
	}
	if city != "" {
		l.city = city
	}
	if state != "" {
		l.state = state
	}
	if pincode != "" {
		l.pincode = pincode
	}
	if washServiceAvailable != nil {
		l.washServiceAvailable = *washServiceAvailable
	}
	l.updatedAt = time.Now().UTC()
	return nil
}

// AddSlots increases the recorded slot count after new slots are created.
func (l *Lot) AddSlots(n int) {
	l.totalSlots += n
	l.updatedAt = time.Now().UTC()
}
