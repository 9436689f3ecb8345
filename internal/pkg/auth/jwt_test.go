package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	access, refresh, err := manager.GenerateTokenPair(userID, RoleOwner)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := manager.Validate(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleOwner, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 15*time.Minute, 24*time.Hour)
	verifier := NewJWTManager("secret-b", 15*time.Minute, 24*time.Hour)

	access, _, err := issuer.GenerateTokenPair(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = verifier.Validate(access)
	assert.Error(t, err)
}

func TestValidate_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 24*time.Hour)

	access, _, err := manager.GenerateTokenPair(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, err = manager.Validate(access)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	_, err := manager.Validate("not.a.token")
	assert.Error(t, err)
}

func TestActorRoles(t *testing.T) {
	admin := Actor{AccountID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsOwner())
	assert.False(t, admin.IsUser())

	owner := Actor{AccountID: uuid.New(), Role: RoleOwner}
	assert.True(t, owner.IsOwner())

	user := Actor{AccountID: uuid.New(), Role: RoleUser}
	assert.True(t, user.IsUser())
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleOwner.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("Root").IsValid())
}
