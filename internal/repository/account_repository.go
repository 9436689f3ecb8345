package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	accountDomain "github.com/parkmate/service-parking/internal/domain/account"
	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// AccountModel is the GORM model for the accounts table.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null;size:60"`
	Email        string    `gorm:"uniqueIndex;not null;size:120"`
	PasswordHash string    `gorm:"not null;size:100"`
	Role         string    `gorm:"not null;size:10"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AccountModel) TableName() string {
	return "accounts"
}

// UserProfileModel is the GORM model for the user_profiles table.
type UserProfileModel struct {
	AccountID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Phone         string    `gorm:"size:20"`
	VehicleNumber string    `gorm:"size:20"`
	VehicleType   string    `gorm:"size:20"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserProfileModel) TableName() string {
	return "user_profiles"
}

// OwnerProfileModel is the GORM model for the owner_profiles table.
type OwnerProfileModel struct {
	AccountID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Phone              string    `gorm:"size:20"`
	Address            string    `gorm:"size:300"`
	Pincode            string    `gorm:"size:6"`
	VerificationStatus string    `gorm:"not null;size:10;default:'pending';index"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (OwnerProfileModel) TableName() string {
	return "owner_profiles"
}

// GormAccountRepository is the GORM-based implementation of the account
// Repository.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository.
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID retrieves an account by its unique identifier.
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*accountDomain.Account, error) {
	return r.findAccount(ctx, "id = ?", id)
}

// FindByUsername retrieves an account by username.
func (r *GormAccountRepository) FindByUsername(ctx context.Context, username string) (*accountDomain.Account, error) {
	return r.findAccount(ctx, "username = ?", username)
}

// FindByEmail retrieves an account by email.
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*accountDomain.Account, error) {
	return r.findAccount(ctx, "email = ?", strings.ToLower(email))
}

func (r *GormAccountRepository) findAccount(ctx context.Context, cond string, arg interface{}) (*accountDomain.Account, error) {
	var model AccountModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Account", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return toDomainAccount(&model), nil
}

// SaveUser persists a new user account and its driver profile in one
// transaction.
func (r *GormAccountRepository) SaveUser(ctx context.Context, a *accountDomain.Account, profile *accountDomain.UserProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toAccountModel(a)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.NewConflictError("username or email is already taken")
			}
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := tx.Create(toUserProfileModel(profile)).Error; err != nil {
			return fmt.Errorf("failed to save user profile: %w", err)
		}
		return nil
	})
}

// SaveOwner persists a new owner account and its pending owner profile
// in one transaction.
func (r *GormAccountRepository) SaveOwner(ctx context.Context, a *accountDomain.Account, profile *accountDomain.OwnerProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toAccountModel(a)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.NewConflictError("username or email is already taken")
			}
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := tx.Create(toOwnerProfileModel(profile)).Error; err != nil {
			return fmt.Errorf("failed to save owner profile: %w", err)
		}
		return nil
	})
}

// FindUserProfile retrieves the driver profile of an account.
func (r *GormAccountRepository) FindUserProfile(ctx context.Context, accountID uuid.UUID) (*accountDomain.UserProfile, error) {
	var model UserProfileModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("UserProfile", accountID.String())
		}
		return nil, fmt.Errorf("failed to find user profile: %w", err)
	}
	return toDomainUserProfile(&model), nil
}

// FindOwnerProfile retrieves the owner profile of an account.
func (r *GormAccountRepository) FindOwnerProfile(ctx context.Context, accountID uuid.UUID) (*accountDomain.OwnerProfile, error) {
	var model OwnerProfileModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("OwnerProfile", accountID.String())
		}
		return nil, fmt.Errorf("failed to find owner profile: %w", err)
	}
	return toDomainOwnerProfile(&model), nil
}

// ListOwnersByVerification retrieves owner profiles in the given
// verification state with pagination.
func (r *GormAccountRepository) ListOwnersByVerification(ctx context.Context, status accountDomain.VerificationStatus, page, limit int) ([]*accountDomain.OwnerProfile, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&OwnerProfileModel{}).
		Where("verification_status = ?", string(status)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner profiles: %w", err)
	}

	var models []OwnerProfileModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("verification_status = ?", string(status)).
		Order("updated_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list owner profiles: %w", err)
	}

	profiles := make([]*accountDomain.OwnerProfile, len(models))
	for i, m := range models {
		profiles[i] = toDomainOwnerProfile(&m)
	}
	return profiles, total, nil
}

// UpdateUserProfile persists changes to a driver profile.
func (r *GormAccountRepository) UpdateUserProfile(ctx context.Context, profile *accountDomain.UserProfile) error {
	result := r.db.WithContext(ctx).
		Model(&UserProfileModel{}).
		Where("account_id = ?", profile.AccountID()).
		Updates(map[string]interface{}{
			"phone":          profile.Phone(),
			"vehicle_number": profile.VehicleNumber(),
			"vehicle_type":   profile.VehicleType(),
			"updated_at":     profile.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("UserProfile", profile.AccountID().String())
	}
	return nil
}

// UpdateOwnerProfile persists changes to an owner profile.
func (r *GormAccountRepository) UpdateOwnerProfile(ctx context.Context, profile *accountDomain.OwnerProfile) error {
	result := r.db.WithContext(ctx).
		Model(&OwnerProfileModel{}).
		Where("account_id = ?", profile.AccountID()).
		Updates(map[string]interface{}{
			"phone":               profile.Phone(),
			"address":             profile.Address(),
			"pincode":             profile.Pincode(),
			"verification_status": string(profile.VerificationStatus()),
			"updated_at":          profile.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update owner profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("OwnerProfile", profile.AccountID().String())
	}
	return nil
}

// UpdateAccount persists changes to an account.
func (r *GormAccountRepository) UpdateAccount(ctx context.Context, a *accountDomain.Account) error {
	result := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ?", a.ID()).
		Updates(map[string]interface{}{
			"password_hash": a.PasswordHash(),
			"updated_at":    a.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Account", a.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toAccountModel(a *accountDomain.Account) *AccountModel {
	return &AccountModel{
		ID:           a.ID(),
		Username:     a.Username(),
		Email:        a.Email(),
		PasswordHash: a.PasswordHash(),
		Role:         string(a.Role()),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
}

func toDomainAccount(m *AccountModel) *accountDomain.Account {
	return accountDomain.ReconstructAccount(
		m.ID,
		m.Username,
		m.Email,
		m.PasswordHash,
		auth.Role(m.Role),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toUserProfileModel(p *accountDomain.UserProfile) *UserProfileModel {
	return &UserProfileModel{
		AccountID:     p.AccountID(),
		Phone:         p.Phone(),
		VehicleNumber: p.VehicleNumber(),
		VehicleType:   p.VehicleType(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomainUserProfile(m *UserProfileModel) *accountDomain.UserProfile {
	return accountDomain.ReconstructUserProfile(
		m.AccountID,
		m.Phone,
		m.VehicleNumber,
		m.VehicleType,
		m.UpdatedAt,
	)
}

func toOwnerProfileModel(p *accountDomain.OwnerProfile) *OwnerProfileModel {
	return &OwnerProfileModel{
		AccountID:          p.AccountID(),
		Phone:              p.Phone(),
		Address:            p.Address(),
		Pincode:            p.Pincode(),
		VerificationStatus: string(p.VerificationStatus()),
		UpdatedAt:          p.UpdatedAt(),
	}
}

func toDomainOwnerProfile(m *OwnerProfileModel) *accountDomain.OwnerProfile {
	return accountDomain.ReconstructOwnerProfile(
		m.AccountID,
		m.Phone,
		m.Address,
		m.Pincode,
		accountDomain.VerificationStatus(m.VerificationStatus),
		m.UpdatedAt,
	)
}
