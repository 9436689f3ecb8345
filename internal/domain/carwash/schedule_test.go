package carwash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulePolicy_Validation(t *testing.T) {
	_, err := NewSchedulePolicy(-time.Minute, time.Hour, 2, 5*time.Minute)
	assert.Error(t, err, "negative lead time")

	_, err = NewSchedulePolicy(time.Hour, 30*time.Minute, 2, 5*time.Minute)
	assert.Error(t, err, "window shorter than lead time")

	_, err = NewSchedulePolicy(30*time.Minute, time.Hour, 0, 5*time.Minute)
	assert.Error(t, err, "zero capacity")

	_, err = NewSchedulePolicy(30*time.Minute, time.Hour, 2, 0)
	assert.Error(t, err, "zero auto-complete delay")

	p, err := NewSchedulePolicy(30*time.Minute, 7*24*time.Hour, 2, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, p.BucketCapacity())
}

func TestValidateWindow(t *testing.T) {
	policy := DefaultSchedulePolicy()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Error(t, policy.ValidateWindow(now, now.Add(10*time.Minute)),
		"inside the minimum lead time")
	assert.NoError(t, policy.ValidateWindow(now, now.Add(30*time.Minute)),
		"exactly at the lead time boundary")
	assert.NoError(t, policy.ValidateWindow(now, now.Add(3*24*time.Hour)))
	assert.Error(t, policy.ValidateWindow(now, now.Add(8*24*time.Hour)),
		"beyond the advance window")
}

func TestBucketStart(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 37, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), BucketStart(at))

	onTheHour := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, onTheHour, BucketStart(onTheHour))
}

func TestHasCapacity(t *testing.T) {
	policy := DefaultSchedulePolicy()
	assert.True(t, policy.HasCapacity(0))
	assert.True(t, policy.HasCapacity(1))
	assert.False(t, policy.HasCapacity(2))
	assert.False(t, policy.HasCapacity(3))
}

func TestConflictError_CarriesNextFreeHint(t *testing.T) {
	policy := DefaultSchedulePolicy()
	nextFree := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)

	err := policy.ConflictError(nextFree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-03-10T16:00:00Z")
}
