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

// LotModel is the GORM model for the parking_lots table.
type LotModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID              uuid.UUID `gorm:"type:uuid;index;not null"`
	Name                 string    `gorm:"not null;size:120"`
	Street               string    `gorm:"size:200"`
	Locality             string    `gorm:"size:120"`
	City                 string    `gorm:"not null;size:80;index"`
	State                string    `gorm:"size:80"`
	Pincode              string    `gorm:"not null;size:6"`
	Latitude             float64   `gorm:""`
	Longitude            float64   `gorm:""`
	TotalSlots           int       `gorm:"not null;default:0"`
	WashServiceAvailable bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (LotModel) TableName() string {
	return "parking_lots"
}

// GormLotRepository is the GORM-based implementation of LotRepository.
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository.
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID retrieves a lot by its unique identifier.
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*parking.Lot, error) {
	var model LotModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("ParkingLot", id.String())
		}
		return nil, fmt.Errorf("failed to find lot by ID: %w", err)
	}
	return toDomainLot(&model), nil
}

// FindByOwnerID retrieves all lots listed by an owner.
func (r *GormLotRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*parking.Lot, error) {
	var models []LotModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner lots: %w", err)
	}

	lots := make([]*parking.Lot, len(models))
	for i, m := range models {
		lots[i] = toDomainLot(&m)
	}
	return lots, nil
}

// ListPublic retrieves lots belonging to approved owners with pagination,
// optionally filtered by city.
func (r *GormLotRepository) ListPublic(ctx context.Context, city string, page, limit int) ([]*parking.Lot, int64, error) {
	query := r.db.WithContext(ctx).Model(&LotModel{}).
		Joins("JOIN owner_profiles ON owner_profiles.account_id = parking_lots.owner_id").
		Where("owner_profiles.verification_status = ?", "approved")
	if city != "" {
		query = query.Where("parking_lots.city = ?", city)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count public lots: %w", err)
	}

	var models []LotModel
	offset := (page - 1) * limit
	if err := query.
		Order("parking_lots.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list public lots: %w", err)
	}

	lots := make([]*parking.Lot, len(models))
	for i, m := range models {
		lots[i] = toDomainLot(&m)
	}
	return lots, total, nil
}

// CountAvailableSlots returns the number of free slots per lot.
func (r *GormLotRepository) CountAvailableSlots(ctx context.Context, lotIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(lotIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}

	type lotCount struct {
		LotID uuid.UUID
		Count int64
	}
	var results []lotCount
	if err := r.db.WithContext(ctx).Model(&SlotModel{}).
		Select("lot_id, count(*) as count").
		Where("lot_id IN ? AND available = ?", lotIDs, true).
		Group("lot_id").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count available slots: %w", err)
	}

	counts := make(map[uuid.UUID]int64, len(results))
	for _, lc := range results {
		counts[lc.LotID] = lc.Count
	}
	return counts, nil
}

// SaveWithSlots persists a new lot and its bulk-generated slots in one
// transaction.
func (r *GormLotRepository) SaveWithSlots(ctx context.Context, lot *parking.Lot, slots []*parking.Slot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toLotModel(lot)).Error; err != nil {
			return fmt.Errorf("failed to save lot: %w", err)
		}
		for _, s := range slots {
			if err := tx.Create(toSlotModel(s)).Error; err != nil {
				return fmt.Errorf("failed to save slot: %w", err)
			}
		}
		return nil
	})
}

// Update persists changes to an existing lot.
func (r *GormLotRepository) Update(ctx context.Context, lot *parking.Lot) error {
	result := r.db.WithContext(ctx).
		Model(&LotModel{}).
		Where("id = ?", lot.ID()).
		Updates(map[string]interface{}{
			"name":                   lot.Name(),
			"street":                 lot.Street(),
			"locality":               lot.Locality(),
			"city":                   lot.City(),
			"state":                  lot.State(),
			"pincode":                lot.Pincode(),
			"total_slots":            lot.TotalSlots(),
			"wash_service_available": lot.WashServiceAvailable(),
			"updated_at":             lot.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update lot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("ParkingLot", lot.ID().String())
	}
	return nil
}

// Delete removes a lot and its slots. Fails when any slot still has a
// non-terminal booking.
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&BookingModel{}).
			Where("lot_id = ? AND status = ?", id, "booked").
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to count open bookings: %w", err)
		}
		if open > 0 {
			return apperr.NewConflictError("lot has active bookings and cannot be deleted")
		}
		if err := tx.Where("lot_id = ?", id).Delete(&SlotModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete slots: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&LotModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete lot: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NewNotFoundError("ParkingLot", id.String())
		}
		return nil
	})
}

// --- Conversion Helpers ---

func toLotModel(l *parking.Lot) *LotModel {
	return &LotModel{
		ID:                   l.ID(),
		OwnerID:              l.OwnerID(),
		Name:                 l.Name(),
		Street:               l.Street(),
		Locality:             l.Locality(),
		City:                 l.City(),
		State:                l.State(),
		Pincode:              l.Pincode(),
		Latitude:             l.Latitude(),
		Longitude:            l.Longitude(),
		TotalSlots:           l.TotalSlots(),
		WashServiceAvailable: l.WashServiceAvailable(),
		CreatedAt:            l.CreatedAt(),
		UpdatedAt:            l.UpdatedAt(),
	}
}

func toDomainLot(m *LotModel) *parking.Lot {
	return parking.ReconstructLot(
		m.ID,
		m.OwnerID,
		m.Name,
		m.Street,
		m.Locality,
		m.City,
		m.State,
		m.Pincode,
		m.Latitude,
		m.Longitude,
		m.TotalSlots,
		m.WashServiceAvailable,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
