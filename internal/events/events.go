package events

import (
	"time"

	"github.com/google/uuid"
)

// Event source identifier used in published CloudEvents.
const Source = "service-parking"

// Kafka topics.
const (
	TopicParkingEvents = "parking.events"
	TopicPaymentEvents = "payment.events"
)

// Parking event types.
const (
	BookingCreated   = "parking.booking.created"
	BookingCancelled = "parking.booking.cancelled"
	BookingExpired   = "parking.booking.expired"
	BookingRenewed   = "parking.booking.renewed"
	WashAddonCreated = "parking.wash_addon.created"
	WashCompleted    = "parking.wash.completed"
	WashScheduled    = "parking.wash.scheduled"
	OwnerVerified    = "parking.owner.verified"
)

// Payment event types.
const (
	PaymentConfirmed = "payment.confirmed"
	PaymentFailed    = "payment.failed"
	PaymentVerified  = "payment.cash_verified"
)

// BookingEvent is the payload for booking lifecycle events.
type BookingEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	UserID        uuid.UUID  `json:"user_id"`
	SlotID        uuid.UUID  `json:"slot_id"`
	LotID         uuid.UUID  `json:"lot_id"`
	VehicleNumber string     `json:"vehicle_number"`
	Status        string     `json:"status"`
	PriceCents    int64      `json:"price_cents"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

// WashEvent is the payload for wash add-on and standalone wash events.
type WashEvent struct {
	WashID      uuid.UUID  `json:"wash_id"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	UserID      uuid.UUID  `json:"user_id"`
	LotID       *uuid.UUID `json:"lot_id,omitempty"`
	EmployeeID  *uuid.UUID `json:"employee_id,omitempty"`
	Status      string     `json:"status"`
	PriceCents  int64      `json:"price_cents"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// PaymentEvent is the payload for payment events, both published and
// consumed from the gateway.
type PaymentEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	UserID        uuid.UUID `json:"user_id"`
	Method        string    `json:"method"`
	AmountCents   int64     `json:"amount_cents"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
}

// OwnerEvent is the payload for owner verification decisions.
type OwnerEvent struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	Decision string    `json:"decision"`
}
