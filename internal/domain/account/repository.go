package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for accounts and their
// role profiles.
type Repository interface {
	// FindByID retrieves an account by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByUsername retrieves an account by username.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// FindByEmail retrieves an account by email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// SaveUser persists a new user account and its driver profile in one
	// transaction. Fails with a conflict error on duplicate username or
	// email.
	SaveUser(ctx context.Context, a *Account, profile *UserProfile) error

	// SaveOwner persists a new owner account and its pending owner profile
	// in one transaction.
	SaveOwner(ctx context.Context, a *Account, profile *OwnerProfile) error

	// FindUserProfile retrieves the driver profile of an account.
	FindUserProfile(ctx context.Context, accountID uuid.UUID) (*UserProfile, error)

	// FindOwnerProfile retrieves the owner profile of an account.
	FindOwnerProfile(ctx context.Context, accountID uuid.UUID) (*OwnerProfile, error)

	// ListOwnersByVerification retrieves owner profiles in the given
	// verification state with pagination (admin review queue).
	ListOwnersByVerification(ctx context.Context, status VerificationStatus, page, limit int) ([]*OwnerProfile, int64, error)

	// UpdateUserProfile persists changes to a driver profile.
	UpdateUserProfile(ctx context.Context, profile *UserProfile) error

	// UpdateOwnerProfile persists changes to an owner profile.
	UpdateOwnerProfile(ctx context.Context, profile *OwnerProfile) error

	// UpdateAccount persists changes to an account.
	UpdateAccount(ctx context.Context, a *Account) error
}
