package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOwnerProfile(t *testing.T) {
	profile, err := NewOwnerProfile(uuid.New(), "+919876543210", "MG Road", "560001")
	require.NoError(t, err)
	assert.Equal(t, VerificationPending, profile.VerificationStatus())
	assert.False(t, profile.IsApproved())

	_, err = NewOwnerProfile(uuid.Nil, "", "", "")
	assert.Error(t, err, "nil account ID")

	_, err = NewOwnerProfile(uuid.New(), "", "", "056001")
	assert.Error(t, err, "pincode cannot start with 0")

	_, err = NewOwnerProfile(uuid.New(), "", "", "5600")
	assert.Error(t, err, "pincode must be 6 digits")

	_, err = NewOwnerProfile(uuid.New(), "", "", "")
	assert.NoError(t, err, "pincode is optional")
}

func TestOwnerReview_ApproveAndDecline(t *testing.T) {
	profile, err := NewOwnerProfile(uuid.New(), "", "", "")
	require.NoError(t, err)

	require.NoError(t, profile.Approve())
	assert.True(t, profile.IsApproved())

	assert.NoError(t, profile.Approve(), "repeating the same decision is a no-op")
	assert.Error(t, profile.Decline(), "reversing a decision is not allowed")
	assert.True(t, profile.IsApproved())
}

func TestOwnerReview_DeclineIsFinal(t *testing.T) {
	profile, err := NewOwnerProfile(uuid.New(), "", "", "")
	require.NoError(t, err)

	require.NoError(t, profile.Decline())
	assert.Equal(t, VerificationDeclined, profile.VerificationStatus())

	assert.NoError(t, profile.Decline())
	assert.Error(t, profile.Approve())
}

func TestOwnerProfile_Update(t *testing.T) {
	profile, err := NewOwnerProfile(uuid.New(), "+911", "Old Street", "560001")
	require.NoError(t, err)

	require.NoError(t, profile.Update("", "New Street", ""))
	assert.Equal(t, "+911", profile.Phone(), "empty fields are left untouched")
	assert.Equal(t, "New Street", profile.Address())
	assert.Equal(t, "560001", profile.Pincode())

	assert.Error(t, profile.Update("", "", "abc123"), "malformed pincode rejected")
}

func TestUserProfile_VehicleNumberNormalized(t *testing.T) {
	profile, err := NewUserProfile(uuid.New(), "+919876543210", " ka-01-ab-1234 ", "car")
	require.NoError(t, err)
	assert.Equal(t, "KA-01-AB-1234", profile.VehicleNumber())

	profile.Update("", "mh12cd5678", "")
	assert.Equal(t, "MH12CD5678", profile.VehicleNumber())
	assert.Equal(t, "car", profile.VehicleType())
}
