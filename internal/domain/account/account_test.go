package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkmate/service-parking/internal/pkg/auth"
)

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount("ravi", "Ravi@Example.COM", "$2a$10$hash", auth.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "ravi", acc.Username())
	assert.Equal(t, "ravi@example.com", acc.Email(), "email is stored lowercase")
	assert.Equal(t, auth.RoleUser, acc.Role())
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount("  ", "ravi@example.com", "hash", auth.RoleUser)
	assert.Error(t, err, "blank username")

	_, err = NewAccount("ravi", "not-an-email", "hash", auth.RoleUser)
	assert.Error(t, err, "malformed email")

	_, err = NewAccount("ravi", "ravi@example.com", "", auth.RoleUser)
	assert.Error(t, err, "missing password hash")

	_, err = NewAccount("ravi", "ravi@example.com", "hash", auth.Role("Superuser"))
	assert.Error(t, err, "unknown role")
}

func TestChangePassword(t *testing.T) {
	acc, err := NewAccount("ravi", "ravi@example.com", "old-hash", auth.RoleOwner)
	require.NoError(t, err)

	require.NoError(t, acc.ChangePassword("new-hash"))
	assert.Equal(t, "new-hash", acc.PasswordHash())

	assert.Error(t, acc.ChangePassword(""))
	assert.Equal(t, "new-hash", acc.PasswordHash())
}
