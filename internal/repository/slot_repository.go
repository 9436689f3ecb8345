package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/parking"
)

// SlotModel is the GORM model for the parking_slots table.
type SlotModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LotID            uuid.UUID `gorm:"type:uuid;index;not null"`
	VehicleType      string    `gorm:"not null;size:20;index"`
	HourlyPriceCents int64     `gorm:"not null"`
	Available        bool      `gorm:"not null;default:true;index"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SlotModel) TableName() string {
	return "parking_slots"
}

// GormSlotRepository is the GORM-based implementation of SlotRepository.
type GormSlotRepository struct {
	db *gorm.DB
}

// NewGormSlotRepository creates a new GormSlotRepository.
func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

// FindByID retrieves a slot by its unique identifier.
func (r *GormSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*parking.Slot, error) {
	var model SlotModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("ParkingSlot", id.String())
		}
		return nil, fmt.Errorf("failed to find slot by ID: %w", err)
	}
	return toDomainSlot(&model), nil
}

// FindByLotID retrieves slots of a lot, optionally filtered by vehicle
// type and availability.
func (r *GormSlotRepository) FindByLotID(ctx context.Context, lotID uuid.UUID, vehicleType parking.VehicleType, onlyAvailable bool) ([]*parking.Slot, error) {
	query := r.db.WithContext(ctx).Where("lot_id = ?", lotID)
	if vehicleType != "" {
		query = query.Where("vehicle_type = ?", string(vehicleType))
	}
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}

	var models []SlotModel
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find slots by lot: %w", err)
	}

	slots := make([]*parking.Slot, len(models))
	for i, m := range models {
		slots[i] = toDomainSlot(&m)
	}
	return slots, nil
}

// Save persists a new slot.
func (r *GormSlotRepository) Save(ctx context.Context, slot *parking.Slot) error {
	if err := r.db.WithContext(ctx).Create(toSlotModel(slot)).Error; err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// Update persists changes to an existing slot.
func (r *GormSlotRepository) Update(ctx context.Context, slot *parking.Slot) error {
	result := r.db.WithContext(ctx).
		Model(&SlotModel{}).
		Where("id = ?", slot.ID()).
		Updates(map[string]interface{}{
			"vehicle_type":       string(slot.VehicleType()),
			"hourly_price_cents": slot.HourlyPriceCents(),
			"available":          slot.Available(),
			"updated_at":         slot.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("ParkingSlot", slot.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toSlotModel(s *parking.Slot) *SlotModel {
	return &SlotModel{
		ID:               s.ID(),
		LotID:            s.LotID(),
		VehicleType:      string(s.VehicleType()),
		HourlyPriceCents: s.HourlyPriceCents(),
		Available:        s.Available(),
		CreatedAt:        s.CreatedAt(),
		UpdatedAt:        s.UpdatedAt(),
	}
}

func toDomainSlot(m *SlotModel) *parking.Slot {
	return parking.ReconstructSlot(
		m.ID,
		m.LotID,
		parking.VehicleType(m.VehicleType),
		m.HourlyPriceCents,
		m.Available,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
