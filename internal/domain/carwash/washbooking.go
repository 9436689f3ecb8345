package carwash

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// WashStatus represents the lifecycle state of a standalone wash booking.
type WashStatus string

const (
	WashStatusPending    WashStatus = "pending"
	WashStatusConfirmed  WashStatus = "confirmed"
	WashStatusInProgress WashStatus = "in_progress"
	WashStatusCompleted  WashStatus = "completed"
	WashStatusCancelled  WashStatus = "cancelled"
)

// The machine is forward-only. Cancellation is reachable from every
// non-terminal state; admins may override transitions entirely.
var washTransitions = map[WashStatus][]WashStatus{
	WashStatusPending:    {WashStatusConfirmed, WashStatusInProgress, WashStatusCompleted, WashStatusCancelled},
	WashStatusConfirmed:  {WashStatusInProgress, WashStatusCompleted, WashStatusCancelled},
	WashStatusInProgress: {WashStatusCompleted, WashStatusCancelled},
	WashStatusCompleted:  {},
	WashStatusCancelled:  {},
}

// IsValid returns true if the status is recognized.
func (s WashStatus) IsValid() bool {
	_, ok := washTransitions[s]
	return ok
}

// CanTransitionTo checks whether moving to the target status is allowed.
func (s WashStatus) CanTransitionTo(target WashStatus) bool {
	for _, t := range washTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions exist.
func (s WashStatus) IsTerminal() bool {
	return len(washTransitions[s]) == 0
}

func (s WashStatus) String() string { return string(s) }

// ParseWashStatus normalizes a raw status string case-insensitively.
func ParseWashStatus(raw string) (WashStatus, error) {
	s := WashStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperr.NewValidationError("unknown wash booking status: " + raw)
	}
	return s, nil
}

// PaymentState tracks whether a wash booking's payment has been verified.
type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStateVerified PaymentState = "verified"
)

// WashBooking is the aggregate root for a car wash scheduled on its own,
// without a parking booking.
type WashBooking struct {
	id             uuid.UUID
	userID         uuid.UUID
	lotID          *uuid.UUID
	employeeID     *uuid.UUID
	serviceType    string
	priceCents     int64
	paymentMethod  string
	paymentState   PaymentState
	status         WashStatus
	scheduledAt    time.Time
	completedAt    *time.Time
	autoCompleteAt *time.Time
	notes          string
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewWashBooking creates a standalone wash booking in status pending.
// Electronic payments arrive verified; cash waits for owner verification.
func NewWashBooking(
	userID uuid.UUID,
	lotID, employeeID *uuid.UUID,
	serviceType string,
	priceCents int64,
	paymentMethod string,
	paymentVerified bool,
	scheduledAt time.Time,
	notes string,
) (*WashBooking, error) {
	if userID == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	if serviceType == "" {
		return nil, apperr.NewValidationError("service type is required")
	}
	if priceCents <= 0 {
		return nil, apperr.NewValidationError("price must be positive")
	}

	state := PaymentStatePending
	if paymentVerified {
		state = PaymentStateVerified
	}
	now := time.Now().UTC()
	return &WashBooking{
		id:            uuid.New(),
		userID:        userID,
		lotID:         lotID,
		employeeID:    employeeID,
		serviceType:   serviceType,
		priceCents:    priceCents,
		paymentMethod: paymentMethod,
		paymentState:  state,
		status:        WashStatusPending,
		scheduledAt:   scheduledAt.UTC(),
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructWashBooking rebuilds a WashBooking from persistence data.
func ReconstructWashBooking(
	id, userID uuid.UUID,
	lotID, employeeID *uuid.UUID,
	serviceType string,
	priceCents int64,
	paymentMethod string,
	paymentState PaymentState,
	status WashStatus,
	scheduledAt time.Time,
	completedAt, autoCompleteAt *time.Time,
	notes string,
	version int64,
	createdAt, updatedAt time.Time,
) *WashBooking {
	return &WashBooking{
		id:             id,
		userID:         userID,
		lotID:          lotID,
		employeeID:     employeeID,
		serviceType:    serviceType,
		priceCents:     priceCents,
		paymentMethod:  paymentMethod,
		paymentState:   paymentState,
		status:         status,
		scheduledAt:    scheduledAt,
		completedAt:    completedAt,
		autoCompleteAt: autoCompleteAt,
		notes:          notes,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (w *WashBooking) ID() uuid.UUID              { return w.id }
func (w *WashBooking) UserID() uuid.UUID          { return w.userID }
func (w *WashBooking) LotID() *uuid.UUID          { return w.lotID }
func (w *WashBooking) EmployeeID() *uuid.UUID     { return w.employeeID }
func (w *WashBooking) ServiceType() string        { return w.serviceType }
func (w *WashBooking) PriceCents() int64          { return w.priceCents }
func (w *WashBooking) PaymentMethod() string      { return w.paymentMethod }
func (w *WashBooking) PaymentState() PaymentState { return w.paymentState }
func (w *WashBooking) Status() WashStatus         { return w.status }
func (w *WashBooking) ScheduledAt() time.Time     { return w.scheduledAt }
func (w *WashBooking) CompletedAt() *time.Time    { return w.completedAt }
func (w *WashBooking) AutoCompleteAt() *time.Time { return w.autoCompleteAt }
func (w *WashBooking) Notes() string              { return w.notes }
func (w *WashBooking) Version() int64             { return w.version }
func (w *WashBooking) CreatedAt() time.Time       { return w.createdAt }
func (w *WashBooking) UpdatedAt() time.Time       { return w.updatedAt }

// --- Behavior ---

// ArmAutoComplete schedules the automatic completion deadline. Called at
// creation for verified payments and on verification for cash.
func (w *WashBooking) ArmAutoComplete(now time.Time, delay time.Duration) {
	at := now.UTC().Add(delay)
	w.autoCompleteAt = &at
	w.updatedAt = time.Now().UTC()
}

// VerifyPayment marks a pending payment as verified and arms the
// auto-complete deadline. Verifying twice is a no-op; the bool reports
// whether anything changed.
func (w *WashBooking) VerifyPayment(now time.Time, autoCompleteDelay time.Duration) (bool, error) {
	if w.status.IsTerminal() {
		return false, apperr.NewInvalidStateError(string(w.status), "payment verification")
	}
	if w.paymentState == PaymentStateVerified {
		return false, nil
	}
	w.paymentState = PaymentStateVerified
	w.ArmAutoComplete(now, autoCompleteDelay)
	return true, nil
}

// Confirm moves a pending booking to confirmed. The payment must be
// verified first.
func (w *WashBooking) Confirm() error {
	if w.paymentState != PaymentStateVerified {
		return apperr.NewConflictError("payment must be verified before confirming")
	}
	if !w.status.CanTransitionTo(WashStatusConfirmed) {
		return apperr.NewInvalidStateError(string(w.status), string(WashStatusConfirmed))
	}
	w.status = WashStatusConfirmed
	w.updatedAt = time.Now().UTC()
	return nil
}

// TransitionTo moves the booking through the forward-only machine.
// adminOverride bypasses the transition table, allowing reopening.
func (w *WashBooking) TransitionTo(target WashStatus, adminOverride bool) error {
	if !target.IsValid() {
		return apperr.NewValidationError("unknown wash booking status: " + string(target))
	}
	if !adminOverride && !w.status.CanTransitionTo(target) {
		return apperr.NewInvalidStateError(string(w.status), string(target))
	}
	w.status = target
	now := time.Now().UTC()
	if target == WashStatusCompleted {
		w.completedAt = &now
	}
	w.updatedAt = now
	return nil
}

// ShouldAutoComplete reports whether the auto-complete deadline has
// passed while the booking is still open.
func (w *WashBooking) ShouldAutoComplete(now time.Time) bool {
	return !w.status.IsTerminal() && w.autoCompleteAt != nil && now.After(*w.autoCompleteAt)
}

// AutoComplete closes the booking after its deadline.
func (w *WashBooking) AutoComplete(now time.Time) error {
	if w.status.IsTerminal() {
		return apperr.NewInvalidStateError(string(w.status), string(WashStatusCompleted))
	}
	at := now.UTC()
	w.status = WashStatusCompleted
	w.completedAt = &at
	w.updatedAt = at
	return nil
}

// AssignEmployee binds an employee to the booking.
func (w *WashBooking) AssignEmployee(employeeID uuid.UUID) {
	w.employeeID = &employeeID
	w.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (w *WashBooking) IncrementVersion() {
	w.version++
	w.updatedAt = time.Now().UTC()
}
