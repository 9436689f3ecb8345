package carwash

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWashBooking(t *testing.T, verified bool) *WashBooking {
	t.Helper()
	lotID := uuid.New()
	wb, err := NewWashBooking(
		uuid.New(), &lotID, nil,
		"premium",
		15000,
		"upi",
		verified,
		time.Now().UTC().Add(time.Hour),
		"",
	)
	require.NoError(t, err)
	return wb
}

func TestNewWashBooking_Validation(t *testing.T) {
	at := time.Now().UTC().Add(time.Hour)

	_, err := NewWashBooking(uuid.Nil, nil, nil, "basic", 5000, "cash", false, at, "")
	assert.Error(t, err, "nil user ID")

	_, err = NewWashBooking(uuid.New(), nil, nil, "", 5000, "cash", false, at, "")
	assert.Error(t, err, "empty service type")

	_, err = NewWashBooking(uuid.New(), nil, nil, "basic", 0, "cash", false, at, "")
	assert.Error(t, err, "non-positive price")

	wb, err := NewWashBooking(uuid.New(), nil, nil, "basic", 5000, "cash", false, at, "gate 3")
	require.NoError(t, err)
	assert.Nil(t, wb.LotID(), "standalone wash without a lot is allowed")
	assert.Equal(t, WashStatusPending, wb.Status())
	assert.Equal(t, PaymentStatePending, wb.PaymentState())
}

func TestWashStatusMachine_ForwardOnly(t *testing.T) {
	assert.True(t, WashStatusPending.CanTransitionTo(WashStatusConfirmed))
	assert.True(t, WashStatusConfirmed.CanTransitionTo(WashStatusInProgress))
	assert.True(t, WashStatusInProgress.CanTransitionTo(WashStatusCompleted))
	assert.True(t, WashStatusConfirmed.CanTransitionTo(WashStatusCancelled))

	assert.False(t, WashStatusConfirmed.CanTransitionTo(WashStatusPending))
	assert.False(t, WashStatusInProgress.CanTransitionTo(WashStatusConfirmed))
	assert.False(t, WashStatusCompleted.CanTransitionTo(WashStatusCancelled))
	assert.False(t, WashStatusCancelled.CanTransitionTo(WashStatusPending))

	assert.True(t, WashStatusCompleted.IsTerminal())
	assert.True(t, WashStatusCancelled.IsTerminal())
	assert.False(t, WashStatusInProgress.IsTerminal())
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	wb := newTestWashBooking(t, false)
	now := time.Now().UTC()

	changed, err := wb.VerifyPayment(now, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PaymentStateVerified, wb.PaymentState())
	require.NotNil(t, wb.AutoCompleteAt())
	first := *wb.AutoCompleteAt()

	changed, err = wb.VerifyPayment(now.Add(time.Minute), 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, changed, "repeat verification is a no-op")
	assert.Equal(t, first, *wb.AutoCompleteAt(), "deadline must not move")
}

func TestVerifyPayment_RejectedOnTerminal(t *testing.T) {
	wb := newTestWashBooking(t, false)
	require.NoError(t, wb.TransitionTo(WashStatusCancelled, false))

	_, err := wb.VerifyPayment(time.Now().UTC(), 5*time.Minute)
	assert.Error(t, err)
}

func TestConfirm_RequiresVerifiedPayment(t *testing.T) {
	cash := newTestWashBooking(t, false)
	assert.Error(t, cash.Confirm(), "unverified cash payment blocks confirmation")

	_, err := cash.VerifyPayment(time.Now().UTC(), 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, cash.Confirm())
	assert.Equal(t, WashStatusConfirmed, cash.Status())

	assert.Error(t, cash.Confirm(), "confirming twice violates the machine")
}

func TestTransitionTo_AdminOverrideReopens(t *testing.T) {
	wb := newTestWashBooking(t, true)
	require.NoError(t, wb.TransitionTo(WashStatusCompleted, false))
	require.NotNil(t, wb.CompletedAt())

	assert.Error(t, wb.TransitionTo(WashStatusInProgress, false))
	require.NoError(t, wb.TransitionTo(WashStatusInProgress, true))
	assert.Equal(t, WashStatusInProgress, wb.Status())

	assert.Error(t, wb.TransitionTo(WashStatus("detailing"), true),
		"override never admits unknown statuses")
}

func TestAutoComplete(t *testing.T) {
	wb := newTestWashBooking(t, true)
	now := time.Now().UTC()

	assert.False(t, wb.ShouldAutoComplete(now), "no deadline armed yet")

	wb.ArmAutoComplete(now, 5*time.Minute)
	assert.False(t, wb.ShouldAutoComplete(now.Add(4*time.Minute)))
	assert.True(t, wb.ShouldAutoComplete(now.Add(6*time.Minute)))

	require.NoError(t, wb.AutoComplete(now.Add(6*time.Minute)))
	assert.Equal(t, WashStatusCompleted, wb.Status())
	require.NotNil(t, wb.CompletedAt())

	assert.False(t, wb.ShouldAutoComplete(now.Add(time.Hour)), "terminal bookings are never swept")
	assert.Error(t, wb.AutoComplete(now.Add(time.Hour)))
}

func TestParseWashStatus(t *testing.T) {
	got, err := ParseWashStatus(" In_Progress ")
	require.NoError(t, err)
	assert.Equal(t, WashStatusInProgress, got)

	_, err = ParseWashStatus("polishing")
	assert.Error(t, err)
}
