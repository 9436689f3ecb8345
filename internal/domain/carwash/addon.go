package carwash

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// AddonStatus represents the lifecycle state of a wash add-on attached
// to a parking booking.
type AddonStatus string

const (
	AddonStatusPending   AddonStatus = "pending"
	AddonStatusActive    AddonStatus = "active"
	AddonStatusCompleted AddonStatus = "completed"
	AddonStatusCancelled AddonStatus = "cancelled"
)

var addonTransitions = map[AddonStatus][]AddonStatus{
	AddonStatusPending:   {AddonStatusActive, AddonStatusCompleted, AddonStatusCancelled},
	AddonStatusActive:    {AddonStatusCompleted, AddonStatusCancelled},
	AddonStatusCompleted: {},
	AddonStatusCancelled: {},
}

// IsValid returns true if the status is recognized.
func (s AddonStatus) IsValid() bool {
	_, ok := addonTransitions[s]
	return ok
}

// CanTransitionTo checks whether moving to the target status is allowed.
func (s AddonStatus) CanTransitionTo(target AddonStatus) bool {
	for _, t := range addonTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions exist.
func (s AddonStatus) IsTerminal() bool {
	return len(addonTransitions[s]) == 0
}

func (s AddonStatus) String() string { return string(s) }

// ParseAddonStatus normalizes a raw status string case-insensitively.
func ParseAddonStatus(raw string) (AddonStatus, error) {
	s := AddonStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperr.NewValidationError("unknown addon status: " + raw)
	}
	return s, nil
}

// WashAddon is a wash service attached to an existing parking booking.
// A booking holds at most one add-on in a non-terminal state.
type WashAddon struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	washTypeID uuid.UUID
	employeeID *uuid.UUID
	priceCents int64
	status     AddonStatus
	createdAt  time.Time
	updatedAt  time.Time
}

// NewWashAddon creates an add-on. It starts active when an employee was
// assigned and payment succeeded, otherwise pending.
func NewWashAddon(bookingID, washTypeID uuid.UUID, employeeID *uuid.UUID, priceCents int64, active bool) (*WashAddon, error) {
	if bookingID == uuid.Nil {
		return nil, apperr.NewValidationError("booking ID is required")
	}
	if washTypeID == uuid.Nil {
		return nil, apperr.NewValidationError("wash type ID is required")
	}
	if priceCents <= 0 {
		return nil, apperr.NewValidationError("addon price must be positive")
	}

	status := AddonStatusPending
	if active {
		status = AddonStatusActive
	}
	now := time.Now().UTC()
	return &WashAddon{
		id:         uuid.New(),
		bookingID:  bookingID,
		washTypeID: washTypeID,
		employeeID: employeeID,
		priceCents: priceCents,
		status:     status,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructAddon rebuilds a WashAddon from persistence data.
func ReconstructAddon(
	id, bookingID, washTypeID uuid.UUID,
	employeeID *uuid.UUID,
	priceCents int64,
	status AddonStatus,
	createdAt, updatedAt time.Time,
) *WashAddon {
	return &WashAddon{
		id:         id,
		bookingID:  bookingID,
		washTypeID: washTypeID,
		employeeID: employeeID,
		priceCents: priceCents,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (a *WashAddon) ID() uuid.UUID          { return a.id }
func (a *WashAddon) BookingID() uuid.UUID   { return a.bookingID }
func (a *WashAddon) WashTypeID() uuid.UUID  { return a.washTypeID }
func (a *WashAddon) EmployeeID() *uuid.UUID { return a.employeeID }
func (a *WashAddon) PriceCents() int64      { return a.priceCents }
func (a *WashAddon) Status() AddonStatus    { return a.status }
func (a *WashAddon) CreatedAt() time.Time   { return a.createdAt }
func (a *WashAddon) UpdatedAt() time.Time   { return a.updatedAt }

// TransitionTo moves the add-on through its status machine.
func (a *WashAddon) TransitionTo(target AddonStatus) error {
	if !a.status.CanTransitionTo(target) {
		return apperr.NewInvalidStateError(string(a.status), string(target))
	}
	a.status = target
	a.updatedAt = time.Now().UTC()
	return nil
}

// Terminate closes a non-terminal add-on when its parent booking ends.
// Terminal add-ons are left untouched.
func (a *WashAddon) Terminate() bool {
	if a.status.IsTerminal() {
		return false
	}
	a.status = AddonStatusCompleted
	a.updatedAt = time.Now().UTC()
	return true
}
