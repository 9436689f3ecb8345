package employee

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmployee(t *testing.T) {
	ownerID := uuid.New()
	emp, err := NewEmployee(&ownerID, "Ravi", "Kumar", "+919876543210", "DL-1420110012345", 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAvailable, emp.Availability())
	assert.Equal(t, 0, emp.CurrentAssignments())
	assert.True(t, emp.IsManagedBy(ownerID))
	assert.False(t, emp.IsManagedBy(uuid.New()))

	_, err = NewEmployee(nil, "", "Kumar", "+919876543210", "", 0, 0)
	assert.Error(t, err, "first name required")

	_, err = NewEmployee(nil, "Ravi", "", "", "", 0, 0)
	assert.Error(t, err, "phone required")
}

func TestIsManagedBy_UnassignedPool(t *testing.T) {
	emp, err := NewEmployee(nil, "Ravi", "", "+919876543210", "", 0, 0)
	require.NoError(t, err)
	assert.False(t, emp.IsManagedBy(uuid.New()), "pool employees belong to nobody")
}

func TestSetWorkload(t *testing.T) {
	emp, err := NewEmployee(nil, "Ravi", "", "+919876543210", "", 0, 0)
	require.NoError(t, err)

	emp.SetWorkload(2, DefaultBusyThreshold)
	assert.Equal(t, 2, emp.CurrentAssignments())
	assert.Equal(t, AvailabilityAvailable, emp.Availability())

	emp.SetWorkload(3, DefaultBusyThreshold)
	assert.Equal(t, AvailabilityBusy, emp.Availability(), "busy exactly at the threshold")

	emp.SetWorkload(1, DefaultBusyThreshold)
	assert.Equal(t, AvailabilityAvailable, emp.Availability(), "freed when work drops below the threshold")

	emp.SetWorkload(-5, DefaultBusyThreshold)
	assert.Equal(t, 0, emp.CurrentAssignments(), "negative counts clamp to zero")
	assert.Equal(t, AvailabilityAvailable, emp.Availability())
}

func TestReassignTo(t *testing.T) {
	first := uuid.New()
	emp, err := NewEmployee(&first, "Ravi", "", "+919876543210", "", 0, 0)
	require.NoError(t, err)

	second := uuid.New()
	emp.ReassignTo(&second)
	assert.True(t, emp.IsManagedBy(second))
	assert.False(t, emp.IsManagedBy(first))

	emp.ReassignTo(nil)
	assert.Nil(t, emp.OwnerID())
}

func TestFullName(t *testing.T) {
	emp, err := NewEmployee(nil, "Ravi", "Kumar", "+919876543210", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", emp.FullName())

	solo, err := NewEmployee(nil, "Ravi", "", "+919876543210", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", solo.FullName())
}

func TestUpdate_PartialFields(t *testing.T) {
	emp, err := NewEmployee(nil, "Ravi", "Kumar", "+919876543210", "", 12.97, 77.59)
	require.NoError(t, err)

	lat := 13.08
	emp.Update("", "", "+911112223334", "", &lat, nil)
	assert.Equal(t, "Ravi", emp.FirstName(), "empty fields are left untouched")
	assert.Equal(t, "+911112223334", emp.Phone())
	assert.Equal(t, 13.08, emp.Latitude())
	assert.Equal(t, 77.59, emp.Longitude())
}
