package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T, startTimer bool) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(), uuid.New(), uuid.New(),
		"KL-08-AZ-1234",
		KindInstant,
		5000,
		time.Now().UTC(),
		10*time.Minute,
		startTimer,
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking_Validation(t *testing.T) {
	start := time.Now().UTC()

	_, err := NewBooking(uuid.Nil, uuid.New(), uuid.New(), "KL-08-AZ-1234", KindInstant, 5000, start, 10*time.Minute, true)
	assert.Error(t, err, "nil user ID")

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "KL-08-AZ-1234", Kind("weekly"), 5000, start, 10*time.Minute, true)
	assert.Error(t, err, "unknown kind")

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "KL-08-AZ-1234", KindInstant, 0, start, 10*time.Minute, true)
	assert.Error(t, err, "non-positive price")

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "not-a-plate", KindInstant, 5000, start, 10*time.Minute, true)
	assert.Error(t, err, "malformed vehicle number")
}

func TestNewBooking_TimerControl(t *testing.T) {
	electronic := newTestBooking(t, true)
	require.NotNil(t, electronic.EndTime())
	assert.Equal(t, electronic.StartTime().Add(10*time.Minute), *electronic.EndTime())

	cash := newTestBooking(t, false)
	assert.Nil(t, cash.EndTime(), "cash booking waits for verification")
	assert.Equal(t, StatusBooked, cash.Status())
}

func TestStartTimer_RunsExactlyOnce(t *testing.T) {
	bk := newTestBooking(t, false)
	from := time.Now().UTC()

	require.NoError(t, bk.StartTimer(from, 10*time.Minute))
	require.NotNil(t, bk.EndTime())
	assert.Equal(t, from.Add(10*time.Minute), *bk.EndTime())

	err := bk.StartTimer(from.Add(time.Minute), 10*time.Minute)
	assert.Error(t, err, "second start must not move the window")
	assert.Equal(t, from.Add(10*time.Minute), *bk.EndTime())
}

func TestStartTimer_RejectedAfterTerminal(t *testing.T) {
	bk := newTestBooking(t, false)
	require.NoError(t, bk.Cancel())
	assert.Error(t, bk.StartTimer(time.Now().UTC(), 10*time.Minute))
}

func TestIsExpired(t *testing.T) {
	bk := newTestBooking(t, true)
	assert.False(t, bk.IsExpired(bk.StartTime()))
	assert.True(t, bk.IsExpired(bk.StartTime().Add(11*time.Minute)))

	cash := newTestBooking(t, false)
	assert.False(t, cash.IsExpired(time.Now().UTC().Add(24*time.Hour)),
		"a booking with no running timer never expires")
}

func TestRemainingSeconds_FlooredAtZero(t *testing.T) {
	bk := newTestBooking(t, true)
	assert.Equal(t, int64(600), bk.RemainingSeconds(bk.StartTime()))
	assert.Equal(t, int64(0), bk.RemainingSeconds(bk.StartTime().Add(time.Hour)))

	require.NoError(t, bk.Cancel())
	assert.Equal(t, int64(0), bk.RemainingSeconds(bk.StartTime()))
}

func TestCanRenew(t *testing.T) {
	now := time.Now().UTC()

	active := newTestBooking(t, true)
	assert.False(t, active.CanRenew(now), "active booking cannot renew")
	assert.True(t, active.CanRenew(now.Add(11*time.Minute)), "expired booking can renew")

	cancelled := newTestBooking(t, true)
	require.NoError(t, cancelled.Cancel())
	assert.True(t, cancelled.CanRenew(now), "terminal booking can renew")
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusBooked.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusBooked.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusBooked))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCompleted))

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusBooked.IsTerminal())
}

func TestCancel_TerminalIsFinal(t *testing.T) {
	bk := newTestBooking(t, true)
	require.NoError(t, bk.Complete())
	assert.Error(t, bk.Cancel())
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"booked", StatusBooked},
		{"BOOKED", StatusBooked},
		{" completed ", StatusCompleted},
		{"active", StatusBooked},
		{"scheduled", StatusBooked},
		{"cancelled_by_admin", StatusCancelled},
		{"CANCELLED_BY_ADMIN", StatusCancelled},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := ParseStatus("parked")
	assert.Error(t, err)
}

func TestNormalizeVehicleNumber(t *testing.T) {
	valid := []struct {
		raw  string
		want string
	}{
		{"kl-08-az-1234", "KL-08-AZ-1234"},
		{"KA01AB1234", "KA01AB1234"},
		{"mh 12 ab 1", "MH 12 AB 1"},
		{" dl-1-c-1 ", "DL-1-C-1"},
	}
	for _, tc := range valid {
		got, err := NormalizeVehicleNumber(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	invalid := []string{"", "1234", "KLL-08-AZ-1234", "KL-08-AZ-12345", "KL08", "KL-08-AZC-1234"}
	for _, raw := range invalid {
		_, err := NormalizeVehicleNumber(raw)
		assert.Error(t, err, raw)
	}
}

func TestPolicy_RenewalPrice(t *testing.T) {
	policy := DefaultPolicy()
	assert.Equal(t, int64(2500), policy.RenewalPriceCents(5000))
	assert.Equal(t, int64(1), policy.RenewalPriceCents(1), "rounds half up")

	custom, err := NewPolicy(30*time.Minute, 0.3)
	require.NoError(t, err)
	assert.Equal(t, int64(30), custom.RenewalPriceCents(99))
	assert.Equal(t, 30*time.Minute, custom.Duration())
}

func TestNewPolicy_Validation(t *testing.T) {
	_, err := NewPolicy(0, 0.5)
	assert.Error(t, err)

	_, err = NewPolicy(10*time.Minute, 0)
	assert.Error(t, err)

	_, err = NewPolicy(10*time.Minute, 1.5)
	assert.Error(t, err)

	_, err = NewPolicy(10*time.Minute, 1.0)
	assert.NoError(t, err, "factor of exactly 1 is allowed")
}
