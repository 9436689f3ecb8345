//go:build integration

package main_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkmate/service-parking/internal/application"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// TestGatewayConfirmed_SettlesPendingPayment exercises the full consumer
// path: a pending electronic payment is settled when the payment gateway
// publishes a confirmation event for its transaction.
func TestGatewayConfirmed_SettlesPendingPayment(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	transactionID := fmt.Sprintf("txn-%s", uuid.New().String()[:8])
	lotID, slotID := seedLotWithSlot(t, infra.DB, uuid.New())
	_, paymentID := seedPendingPayment(t, infra.DB, lotID, slotID, transactionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	defer func() { _ = stack.Consumer.Close() }()
	time.Sleep(5 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment-gateway", events.PaymentConfirmed,
		events.PaymentEvent{
			TransactionID: transactionID,
			Status:        "SUCCESS",
		})

	settled := waitForPaymentStatus(t, infra.DB, paymentID, "SUCCESS", 60*time.Second)
	assert.Equal(t, transactionID, settled.TransactionID)
}

// TestGatewayFailed_MarksPaymentFailed verifies the failure branch of the
// gateway result handler.
func TestGatewayFailed_MarksPaymentFailed(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	transactionID := fmt.Sprintf("txn-%s", uuid.New().String()[:8])
	lotID, slotID := seedLotWithSlot(t, infra.DB, uuid.New())
	_, paymentID := seedPendingPayment(t, infra.DB, lotID, slotID, transactionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	defer func() { _ = stack.Consumer.Close() }()
	time.Sleep(5 * time.Second)

	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment-gateway", events.PaymentFailed,
		events.PaymentEvent{
			TransactionID: transactionID,
			Status:        "FAILED",
		})

	waitForPaymentStatus(t, infra.DB, paymentID, "FAILED", 60*time.Second)
}

// TestCreateBooking_PublishesBookingCreated reserves a slot through the
// application service and asserts the lifecycle event lands on the bus.
func TestCreateBooking_PublishesBookingCreated(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, slotID := seedLotWithSlot(t, infra.DB, uuid.New())
	userID := uuid.New()

	ctx := context.Background()
	dto, err := stack.BookingService.CreateBooking(ctx, userID, application.CreateBookingRequest{
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		Kind:          "instant",
		PaymentMethod: "upi",
	})
	require.NoError(t, err)
	require.Equal(t, "booked", dto.Status)
	require.NotNil(t, dto.EndTime, "electronic payment starts the parking timer")

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicParkingEvents,
		events.BookingCreated, 60*time.Second)
	assert.Equal(t, events.Source, ce.Source)

	var payload events.BookingEvent
	require.NoError(t, ce.ParseData(&payload))
	assert.Equal(t, dto.ID, payload.BookingID)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, "booked", payload.Status)

	// The reserved slot must no longer appear available.
	var available bool
	require.NoError(t, infra.DB.Raw(
		"SELECT available FROM parking_slots WHERE id = ?", slotID).Scan(&available).Error)
	assert.False(t, available)

	// A second booking against the same slot is rejected.
	_, err = stack.BookingService.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		SlotID:        slotID,
		VehicleNumber: "MH14CD5678",
		Kind:          "instant",
		PaymentMethod: "card",
	})
	require.Error(t, err)
}

// TestVerifyCashPayment_StartsTimer checks that owner verification of a
// cash payment starts the parking clock exactly once.
func TestVerifyCashPayment_StartsTimer(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	_, slotID := seedLotWithSlot(t, infra.DB, ownerID)
	userID := uuid.New()

	ctx := context.Background()
	dto, err := stack.BookingService.CreateBooking(ctx, userID, application.CreateBookingRequest{
		SlotID:        slotID,
		VehicleNumber: "KA01ZZ9999",
		Kind:          "instant",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	require.Nil(t, dto.EndTime, "cash booking must not start the timer before verification")

	var paymentID uuid.UUID
	require.NoError(t, infra.DB.Raw(
		"SELECT id FROM payments WHERE booking_id = ?", dto.ID).Scan(&paymentID).Error)

	owner := auth.Actor{AccountID: ownerID, Role: auth.RoleOwner}
	payDTO, err := stack.PaymentService.VerifyCashPayment(ctx, owner, paymentID)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", payDTO.Status)

	refreshed, err := stack.BookingService.GetBooking(ctx, owner, dto.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.EndTime, "verification starts the parking timer")

	// Verification is idempotent.
	again, err := stack.PaymentService.VerifyCashPayment(ctx, owner, paymentID)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", again.Status)
}

// TestPurchaseAddon_ConcurrentSingleWinner fires parallel purchases for
// the same booking and expects exactly one to land; the booking lock and
// the partial unique index on open add-ons reject the rest.
func TestPurchaseAddon_ConcurrentSingleWinner(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	_, slotID := seedLotWithSlot(t, infra.DB, ownerID)
	washTypeID := seedWashType(t, infra.DB)
	seedEmployee(t, infra.DB, ownerID)
	userID := uuid.New()

	ctx := context.Background()
	dto, err := stack.BookingService.CreateBooking(ctx, userID, application.CreateBookingRequest{
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		Kind:          "instant",
		PaymentMethod: "upi",
	})
	require.NoError(t, err)

	const attempts = 6
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = stack.CarwashService.PurchaseAddon(ctx, userID, dto.ID, application.PurchaseAddonRequest{
				WashTypeID:    washTypeID,
				PaymentMethod: "upi",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent purchase may win")

	// A later purchase against the settled state is rejected outright.
	_, err = stack.CarwashService.PurchaseAddon(ctx, userID, dto.ID, application.PurchaseAddonRequest{
		WashTypeID:    washTypeID,
		PaymentMethod: "upi",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has an open wash add-on")

	var openAddons int64
	require.NoError(t, infra.DB.Raw(
		"SELECT count(*) FROM wash_addons WHERE booking_id = ? AND status IN ('pending','active')",
		dto.ID).Scan(&openAddons).Error)
	assert.EqualValues(t, 1, openAddons)

	// Only the winning purchase may leave a payment behind: the slot
	// payment plus one add-on payment.
	var payments int64
	require.NoError(t, infra.DB.Raw(
		"SELECT count(*) FROM payments WHERE booking_id = ?", dto.ID).Scan(&payments).Error)
	assert.EqualValues(t, 2, payments)
}

// TestExpirySweep_ClosesBookingAddonAndWorkload lets an expired booking
// be picked up by the read-path sweep and checks that the slot frees up,
// the open add-on terminates and the employee's workload drops.
func TestExpirySweep_ClosesBookingAddonAndWorkload(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	lotID, slotID := seedLotWithSlot(t, infra.DB, ownerID)
	washTypeID := seedWashType(t, infra.DB)
	employeeID := seedEmployee(t, infra.DB, ownerID)
	bookingID, userID := seedExpiredBooking(t, infra.DB, lotID, slotID)
	addonID := seedActiveAddon(t, infra.DB, bookingID, washTypeID, employeeID)

	ctx := context.Background()
	user := auth.Actor{AccountID: userID, Role: auth.RoleUser}
	dto, err := stack.BookingService.GetBooking(ctx, user, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "completed", dto.Status, "the read path sweeps expired bookings first")

	var available bool
	require.NoError(t, infra.DB.Raw(
		"SELECT available FROM parking_slots WHERE id = ?", slotID).Scan(&available).Error)
	assert.True(t, available, "the swept booking frees its slot")

	var addonStatus string
	require.NoError(t, infra.DB.Raw(
		"SELECT status FROM wash_addons WHERE id = ?", addonID).Scan(&addonStatus).Error)
	assert.Equal(t, "completed", addonStatus, "the open add-on terminates with the booking")

	var assignments int
	require.NoError(t, infra.DB.Raw(
		"SELECT current_assignments FROM employees WHERE id = ?", employeeID).Scan(&assignments).Error)
	assert.Equal(t, 0, assignments, "closing the add-on releases the employee")
}

// TestRenewBooking_ActiveBookingNotRenewable asserts that renewing a
// booking whose window is still running reports the renewal rule, not
// the occupied slot.
func TestRenewBooking_ActiveBookingNotRenewable(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupParkingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	_, slotID := seedLotWithSlot(t, infra.DB, uuid.New())
	userID := uuid.New()

	ctx := context.Background()
	dto, err := stack.BookingService.CreateBooking(ctx, userID, application.CreateBookingRequest{
		SlotID:        slotID,
		VehicleNumber: "MH12AB1234",
		Kind:          "instant",
		PaymentMethod: "upi",
	})
	require.NoError(t, err)
	require.NotNil(t, dto.EndTime)

	user := auth.Actor{AccountID: userID, Role: auth.RoleUser}
	_, err = stack.BookingService.RenewBooking(ctx, user, dto.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be renewed",
		"an active booking holds its own slot; the error must name the renewal rule")
	assert.NotContains(t, err.Error(), "slot is no longer available")
}
