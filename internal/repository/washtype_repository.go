package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/carwash"
)

// WashTypeModel is the GORM model for the wash_types table.
type WashTypeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null;size:80"`
	Description string    `gorm:"size:500"`
	PriceCents  int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WashTypeModel) TableName() string {
	return "wash_types"
}

// GormWashTypeRepository is the GORM-based implementation of
// WashTypeRepository.
type GormWashTypeRepository struct {
	db *gorm.DB
}

// NewGormWashTypeRepository creates a new GormWashTypeRepository.
func NewGormWashTypeRepository(db *gorm.DB) *GormWashTypeRepository {
	return &GormWashTypeRepository{db: db}
}

// FindByID retrieves a wash type by its unique identifier.
func (r *GormWashTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*carwash.WashType, error) {
	var model WashTypeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("WashType", id.String())
		}
		return nil, fmt.Errorf("failed to find wash type by ID: %w", err)
	}
	return toDomainWashType(&model), nil
}

// ListAll retrieves the full wash catalog.
func (r *GormWashTypeRepository) ListAll(ctx context.Context) ([]*carwash.WashType, error) {
	var models []WashTypeModel
	if err := r.db.WithContext(ctx).Order("price_cents ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list wash types: %w", err)
	}

	types := make([]*carwash.WashType, len(models))
	for i, m := range models {
		types[i] = toDomainWashType(&m)
	}
	return types, nil
}

// Save persists a new wash type.
func (r *GormWashTypeRepository) Save(ctx context.Context, wt *carwash.WashType) error {
	if err := r.db.WithContext(ctx).Create(toWashTypeModel(wt)).Error; err != nil {
		return fmt.Errorf("failed to save wash type: %w", err)
	}
	return nil
}

// Update persists changes to an existing wash type.
func (r *GormWashTypeRepository) Update(ctx context.Context, wt *carwash.WashType) error {
	result := r.db.WithContext(ctx).
		Model(&WashTypeModel{}).
		Where("id = ?", wt.ID()).
		Updates(map[string]interface{}{
			"name":        wt.Name(),
			"description": wt.Description(),
			"price_cents": wt.PriceCents(),
			"updated_at":  wt.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wash type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("WashType", wt.ID().String())
	}
	return nil
}

// Delete removes a wash type from the catalog.
func (r *GormWashTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&WashTypeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete wash type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("WashType", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toWashTypeModel(wt *carwash.WashType) *WashTypeModel {
	return &WashTypeModel{
		ID:          wt.ID(),
		Name:        wt.Name(),
		Description: wt.Description(),
		PriceCents:  wt.PriceCents(),
		CreatedAt:   wt.CreatedAt(),
		UpdatedAt:   wt.UpdatedAt(),
	}
}

func toDomainWashType(m *WashTypeModel) *carwash.WashType {
	return carwash.ReconstructWashType(
		m.ID,
		m.Name,
		m.Description,
		m.PriceCents,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
