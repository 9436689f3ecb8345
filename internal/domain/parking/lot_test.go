package parking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLot(t *testing.T) *Lot {
	t.Helper()
	lot, err := NewLot(uuid.New(), "City Center Parking", "MG Road", "Shivajinagar",
		"Pune", "Maharashtra", "411001", 18.53, 73.85, 10, true)
	require.NoError(t, err)
	return lot
}

func TestNewLot_Validation(t *testing.T) {
	_, err := NewLot(uuid.Nil, "Lot", "", "", "Pune", "", "411001", 0, 0, 0, false)
	assert.Error(t, err, "nil owner ID")

	_, err = NewLot(uuid.New(), "", "", "", "Pune", "", "411001", 0, 0, 0, false)
	assert.Error(t, err, "empty name")

	_, err = NewLot(uuid.New(), "Lot", "", "", "", "", "411001", 0, 0, 0, false)
	assert.Error(t, err, "empty city")

	_, err = NewLot(uuid.New(), "Lot", "", "", "Pune", "", "041100", 0, 0, 0, false)
	assert.Error(t, err, "pincode starting with 0")

	_, err = NewLot(uuid.New(), "Lot", "", "", "Pune", "", "411001", 0, 0, -1, false)
	assert.Error(t, err, "negative slot count")
}

func TestLot_IsOwnedBy(t *testing.T) {
	ownerID := uuid.New()
	lot, err := NewLot(ownerID, "Lot", "", "", "Pune", "", "411001", 0, 0, 5, false)
	require.NoError(t, err)

	assert.True(t, lot.IsOwnedBy(ownerID))
	assert.False(t, lot.IsOwnedBy(uuid.New()))
}

func TestLot_Update(t *testing.T) {
	lot := newTestLot(t)

	washOff := false
	require.NoError(t, lot.Update("", "", "", "Mumbai", "", "", &washOff))
	assert.Equal(t, "City Center Parking", lot.Name(), "empty fields are left untouched")
	assert.Equal(t, "Mumbai", lot.City())
	assert.False(t, lot.WashServiceAvailable())

	require.NoError(t, lot.Update("", "", "", "", "", "", nil))
	assert.False(t, lot.WashServiceAvailable(), "nil wash flag leaves the setting alone")

	assert.Error(t, lot.Update("", "", "", "", "", "12345", nil), "short pincode rejected")
}

func TestLot_AddSlots(t *testing.T) {
	lot := newTestLot(t)
	lot.AddSlots(3)
	assert.Equal(t, 13, lot.TotalSlots())
}

func TestNewSlot_Validation(t *testing.T) {
	_, err := NewSlot(uuid.Nil, VehicleTypeSedan, 5000)
	assert.Error(t, err, "nil lot ID")

	_, err = NewSlot(uuid.New(), VehicleType("truck"), 5000)
	assert.Error(t, err, "unknown vehicle type")

	_, err = NewSlot(uuid.New(), VehicleTypeSedan, 0)
	assert.Error(t, err, "non-positive price")

	slot, err := NewSlot(uuid.New(), VehicleTypeTwoWheeler, 1000)
	require.NoError(t, err)
	assert.True(t, slot.Available(), "new slots start free")
}

func TestSlot_OccupyRelease(t *testing.T) {
	slot, err := NewSlot(uuid.New(), VehicleTypeSedan, 5000)
	require.NoError(t, err)

	require.NoError(t, slot.Occupy())
	assert.False(t, slot.Available())
	assert.Error(t, slot.Occupy(), "double occupation is a conflict")

	slot.Release()
	assert.True(t, slot.Available())
	slot.Release()
	assert.True(t, slot.Available(), "releasing a free slot is harmless")
}

func TestVehicleType_IsValid(t *testing.T) {
	for _, v := range []VehicleType{VehicleTypeHatchback, VehicleTypeSedan,
		VehicleTypeSUV, VehicleTypeThreeWheeler, VehicleTypeTwoWheeler} {
		assert.True(t, v.IsValid(), string(v))
	}
	assert.False(t, VehicleType("bus").IsValid())
}
