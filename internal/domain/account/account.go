package account

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// Account is a login identity. Role-specific data lives in the attached
// user or owner profile.
type Account struct {
	id           uuid.UUID
	username     string
	email        string
	passwordHash string
	role         auth.Role
	createdAt    time.Time
	updatedAt    time.Time
}

// NewAccount creates an account with an already-hashed password.
func NewAccount(username, email, passwordHash string, role auth.Role) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.NewValidationError("username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.NewValidationError("invalid email address")
	}
	if passwordHash == "" {
		return nil, apperr.NewValidationError("password hash is required")
	}
	if role != auth.RoleUser && role != auth.RoleOwner && role != auth.RoleAdmin {
		return nil, apperr.NewValidationError("unknown role: " + string(role))
	}

	now := time.Now().UTC()
	return &Account{
		id:           uuid.New(),
		username:     username,
		email:        strings.ToLower(email),
		passwordHash: passwordHash,
		role:         role,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructAccount rebuilds an Account from persistence data.
func ReconstructAccount(id uuid.UUID, username, email, passwordHash string, role auth.Role, createdAt, updatedAt time.Time) *Account {
	return &Account{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (a *Account) ID() uuid.UUID        { return a.id }
func (a *Account) Username() string     { return a.username }
func (a *Account) Email() string        { return a.email }
func (a *Account) PasswordHash() string { return a.passwordHash }
func (a *Account) Role() auth.Role      { return a.role }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

// ChangePassword swaps in a new password hash.
func (a *Account) ChangePassword(passwordHash string) error {
	if passwordHash == "" {
		return apperr.NewValidationError("password hash is required")
	}
	a.passwordHash = passwordHash
	a.updatedAt = time.Now().UTC()
	return nil
}
