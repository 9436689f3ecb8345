package carwash

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWashAddon(t *testing.T) {
	employeeID := uuid.New()

	active, err := NewWashAddon(uuid.New(), uuid.New(), &employeeID, 8000, true)
	require.NoError(t, err)
	assert.Equal(t, AddonStatusActive, active.Status())
	require.NotNil(t, active.EmployeeID())
	assert.Equal(t, employeeID, *active.EmployeeID())

	pending, err := NewWashAddon(uuid.New(), uuid.New(), nil, 8000, false)
	require.NoError(t, err)
	assert.Equal(t, AddonStatusPending, pending.Status())
	assert.Nil(t, pending.EmployeeID())

	_, err = NewWashAddon(uuid.Nil, uuid.New(), nil, 8000, false)
	assert.Error(t, err, "nil booking ID")

	_, err = NewWashAddon(uuid.New(), uuid.Nil, nil, 8000, false)
	assert.Error(t, err, "nil wash type ID")

	_, err = NewWashAddon(uuid.New(), uuid.New(), nil, -1, false)
	assert.Error(t, err, "negative price")
}

func TestAddonStatusMachine(t *testing.T) {
	assert.True(t, AddonStatusPending.CanTransitionTo(AddonStatusActive))
	assert.True(t, AddonStatusPending.CanTransitionTo(AddonStatusCancelled))
	assert.True(t, AddonStatusActive.CanTransitionTo(AddonStatusCompleted))

	assert.False(t, AddonStatusActive.CanTransitionTo(AddonStatusPending))
	assert.False(t, AddonStatusCompleted.CanTransitionTo(AddonStatusActive))
	assert.False(t, AddonStatusCancelled.CanTransitionTo(AddonStatusCompleted))

	assert.True(t, AddonStatusCompleted.IsTerminal())
	assert.True(t, AddonStatusCancelled.IsTerminal())
	assert.False(t, AddonStatusPending.IsTerminal())
}

func TestAddonTerminate(t *testing.T) {
	addon, err := NewWashAddon(uuid.New(), uuid.New(), nil, 8000, true)
	require.NoError(t, err)

	assert.True(t, addon.Terminate())
	assert.Equal(t, AddonStatusCompleted, addon.Status())

	assert.False(t, addon.Terminate(), "terminating a closed add-on changes nothing")

	cancelled := ReconstructAddon(uuid.New(), uuid.New(), uuid.New(), nil, 8000,
		AddonStatusCancelled, time.Now().UTC(), time.Now().UTC())
	assert.False(t, cancelled.Terminate())
	assert.Equal(t, AddonStatusCancelled, cancelled.Status())
}

func TestParseAddonStatus(t *testing.T) {
	got, err := ParseAddonStatus(" ACTIVE ")
	require.NoError(t, err)
	assert.Equal(t, AddonStatusActive, got)

	_, err = ParseAddonStatus("waxing")
	assert.Error(t, err)
}
