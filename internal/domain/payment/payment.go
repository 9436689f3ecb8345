package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Method is how the user paid.
type Method string

const (
	MethodCreditCard Method = "CC"
	MethodCash       Method = "Cash"
	MethodUPI        Method = "UPI"
)

// IsValid returns true if the method is recognized.
func (m Method) IsValid() bool {
	return m == MethodCreditCard || m == MethodCash || m == MethodUPI
}

// RequiresVerification reports whether the method settles only after a
// lot owner confirms receipt.
func (m Method) RequiresVerification() bool { return m == MethodCash }

// ParseMethod normalizes a raw method string case-insensitively.
func ParseMethod(raw string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cc", "credit_card", "creditcard":
		return MethodCreditCard, nil
	case "cash":
		return MethodCash, nil
	case "upi":
		return MethodUPI, nil
	}
	return "", apperr.NewValidationError("unknown payment method: " + raw)
}

// Status tracks the settlement state of a payment. Stored uppercase,
// matching the ledger format reports are built on.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusPending
}

// Payment is a ledger entry tied to a parking booking. The first payment
// of a booking by creation time covers the slot; later ones cover wash
// add-ons.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	userID        uuid.UUID
	method        Method
	amountCents   int64
	status        Status
	transactionID string
	verifiedBy    *uuid.UUID
	verifiedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPayment creates a payment. Electronic methods settle immediately,
// cash opens PENDING until a lot owner verifies it.
func NewPayment(bookingID, userID uuid.UUID, method Method, amountCents int64, transactionID string) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, apperr.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	if !method.IsValid() {
		return nil, apperr.NewValidationError("unknown payment method: " + string(method))
	}
	if amountCents <= 0 {
		return nil, apperr.NewValidationError("payment amount must be positive")
	}

	status := StatusSuccess
	if method.RequiresVerification() {
		status = StatusPending
	}
	now := time.Now().UTC()
	return &Payment{
		id:            uuid.New(),
		bookingID:     bookingID,
		userID:        userID,
		method:        method,
		amountCents:   amountCents,
		status:        status,
		transactionID: transactionID,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID, userID uuid.UUID,
	method Method,
	amountCents int64,
	status Status,
	transactionID string,
	verifiedBy *uuid.UUID,
	verifiedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		userID:        userID,
		method:        method,
		amountCents:   amountCents,
		status:        status,
		transactionID: transactionID,
		verifiedBy:    verifiedBy,
		verifiedAt:    verifiedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID          { return p.id }
func (p *Payment) BookingID() uuid.UUID   { return p.bookingID }
func (p *Payment) UserID() uuid.UUID      { return p.userID }
func (p *Payment) Method() Method         { return p.method }
func (p *Payment) AmountCents() int64     { return p.amountCents }
func (p *Payment) Status() Status         { return p.status }
func (p *Payment) TransactionID() string  { return p.transactionID }
func (p *Payment) VerifiedBy() *uuid.UUID { return p.verifiedBy }
func (p *Payment) VerifiedAt() *time.Time { return p.verifiedAt }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time   { return p.updatedAt }

// --- Behavior ---

// Verify settles a pending cash payment and stamps who confirmed it.
// Verifying an already successful payment is a no-op; the bool reports
// whether anything changed.
func (p *Payment) Verify(verifierID uuid.UUID, now time.Time) (bool, error) {
	if p.status == StatusSuccess {
		return false, nil
	}
	if p.status == StatusFailed {
		return false, apperr.NewInvalidStateError(string(StatusFailed), string(StatusSuccess))
	}
	at := now.UTC()
	p.status = StatusSuccess
	p.verifiedBy = &verifierID
	p.verifiedAt = &at
	p.updatedAt = at
	return true, nil
}

// MarkSuccess settles a pending payment confirmed by the gateway.
func (p *Payment) MarkSuccess() error {
	if p.status == StatusFailed {
		return apperr.NewInvalidStateError(string(StatusFailed), string(StatusSuccess))
	}
	p.status = StatusSuccess
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed records a gateway rejection of a pending payment.
func (p *Payment) MarkFailed() error {
	if p.status == StatusSuccess {
		return apperr.NewInvalidStateError(string(StatusSuccess), string(StatusFailed))
	}
	p.status = StatusFailed
	p.updatedAt = time.Now().UTC()
	return nil
}
