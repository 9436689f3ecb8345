package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/carwash"
)

// WashBookingModel is the GORM model for the wash_bookings table.
type WashBookingModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	LotID          *uuid.UUID `gorm:"type:uuid;index"`
	EmployeeID     *uuid.UUID `gorm:"type:uuid;index"`
	ServiceType    string     `gorm:"not null;size:80"`
	PriceCents     int64      `gorm:"not null"`
	PaymentMethod  string     `gorm:"not null;size:10"`
	PaymentState   string     `gorm:"not null;size:10"`
	Status         string     `gorm:"not null;size:15;index"`
	ScheduledAt    time.Time  `gorm:"not null;index"`
	CompletedAt    *time.Time `gorm:""`
	AutoCompleteAt *time.Time `gorm:"index"`
	Notes          string     `gorm:"size:500"`
	Version        int64      `gorm:"not null;default:1"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WashBookingModel) TableName() string {
	return "wash_bookings"
}

// GormWashBookingRepository is the GORM-based implementation of
// WashBookingRepository.
type GormWashBookingRepository struct {
	db            *gorm.DB
	busyThreshold int
}

// NewGormWashBookingRepository creates a new GormWashBookingRepository.
func NewGormWashBookingRepository(db *gorm.DB, busyThreshold int) *GormWashBookingRepository {
	return &GormWashBookingRepository{db: db, busyThreshold: busyThreshold}
}

// FindByID retrieves a wash booking by its unique identifier.
func (r *GormWashBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*carwash.WashBooking, error) {
	var model WashBookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("WashBooking", id.String())
		}
		return nil, fmt.Errorf("failed to find wash booking by ID: %w", err)
	}
	return toDomainWashBooking(&model)
}

// FindByUserID retrieves wash bookings of a user with pagination.
func (r *GormWashBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*carwash.WashBooking, int64, error) {
	query := r.db.WithContext(ctx).Model(&WashBookingModel{}).Where("user_id = ?", userID)
	return r.page(query, page, limit)
}

// FindByLotIDs retrieves wash bookings across the given lots with
// pagination.
func (r *GormWashBookingRepository) FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, page, limit int) ([]*carwash.WashBooking, int64, error) {
	if len(lotIDs) == 0 {
		return []*carwash.WashBooking{}, 0, nil
	}
	query := r.db.WithContext(ctx).Model(&WashBookingModel{}).Where("lot_id IN ?", lotIDs)
	return r.page(query, page, limit)
}

// ListAll retrieves all wash bookings with pagination (admin).
func (r *GormWashBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*carwash.WashBooking, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&WashBookingModel{}), page, limit)
}

func (r *GormWashBookingRepository) page(query *gorm.DB, page, limit int) ([]*carwash.WashBooking, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wash bookings: %w", err)
	}

	var models []WashBookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list wash bookings: %w", err)
	}

	bookings := make([]*carwash.WashBooking, len(models))
	for i, m := range models {
		wb, err := toDomainWashBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = wb
	}
	return bookings, total, nil
}

// CountInBucket counts non-cancelled wash bookings of a lot scheduled
// inside the hourly bucket starting at bucketStart.
func (r *GormWashBookingRepository) CountInBucket(ctx context.Context, lotID uuid.UUID, bucketStart time.Time) (int64, error) {
	return countBucket(r.db.WithContext(ctx), lotID, bucketStart)
}

func countBucket(tx *gorm.DB, lotID uuid.UUID, bucketStart time.Time) (int64, error) {
	var count int64
	if err := tx.Model(&WashBookingModel{}).
		Where("lot_id = ? AND status <> ? AND scheduled_at >= ? AND scheduled_at < ?",
			lotID, string(carwash.WashStatusCancelled), bucketStart, bucketStart.Add(time.Hour)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count wash bucket: %w", err)
	}
	return count, nil
}

// NextFreeBucket scans forward from the given bucket and returns the
// first hourly bucket of the lot with spare capacity.
func (r *GormWashBookingRepository) NextFreeBucket(ctx context.Context, lotID uuid.UUID, from time.Time, capacity int) (time.Time, error) {
	bucket := carwash.BucketStart(from)
	// A week of hourly buckets bounds the scan; the booking window is no
	// longer than that anyway.
	for i := 0; i < 24*7; i++ {
		count, err := countBucket(r.db.WithContext(ctx), lotID, bucket)
		if err != nil {
			return time.Time{}, err
		}
		if count < int64(capacity) {
			return bucket, nil
		}
		bucket = bucket.Add(time.Hour)
	}
	return bucket, nil
}

// CreateScheduled atomically rechecks bucket capacity under lock,
// assigns the least loaded employee of the lot owner and persists the
// booking.
func (r *GormWashBookingRepository) CreateScheduled(ctx context.Context, wb *carwash.WashBooking, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if wb.LotID() != nil {
			var lot LotModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", *wb.LotID()).
				First(&lot).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NewNotFoundError("ParkingLot", wb.LotID().String())
				}
				return fmt.Errorf("failed to lock lot: %w", err)
			}

			bucket := carwash.BucketStart(wb.ScheduledAt())
			count, err := countBucket(tx, *wb.LotID(), bucket)
			if err != nil {
				return err
			}
			if count >= int64(capacity) {
				return apperr.NewConflictError("selected hour is fully booked")
			}

			empID, err := pickLeastLoadedEmployee(tx, lot.OwnerID)
			if err != nil {
				return err
			}
			if empID != nil {
				wb.AssignEmployee(*empID)
			}
		}

		if err := tx.Create(toWashBookingModel(wb)).Error; err != nil {
			return fmt.Errorf("failed to save wash booking: %w", err)
		}

		if wb.EmployeeID() != nil {
			return recalcEmployeeWorkload(tx, *wb.EmployeeID(), r.busyThreshold)
		}
		return nil
	})
}

// UpdateTx reloads the booking under lock, applies the mutation and
// persists it with optimistic locking.
func (r *GormWashBookingRepository) UpdateTx(ctx context.Context, id uuid.UUID, mutate func(*carwash.WashBooking) error) (*carwash.WashBooking, error) {
	var updated *carwash.WashBooking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model WashBookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFoundError("WashBooking", id.String())
			}
			return fmt.Errorf("failed to lock wash booking: %w", err)
		}

		wb, err := toDomainWashBooking(&model)
		if err != nil {
			return err
		}
		if err := mutate(wb); err != nil {
			return err
		}
		wb.IncrementVersion()
		if err := updateWashBookingLocked(tx, wb); err != nil {
			return err
		}

		if wb.Status().IsTerminal() && wb.EmployeeID() != nil {
			if err := recalcEmployeeWorkload(tx, *wb.EmployeeID(), r.busyThreshold); err != nil {
				return err
			}
		}
		updated = wb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SweepAutoComplete completes every open wash booking whose
// auto-complete deadline has passed.
func (r *GormWashBookingRepository) SweepAutoComplete(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var candidates []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&WashBookingModel{}).
		Where("status IN ? AND auto_complete_at IS NOT NULL AND auto_complete_at < ?", openWashStatuses, now).
		Pluck("id", &candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find auto-completable wash bookings: %w", err)
	}

	closed := make([]uuid.UUID, 0, len(candidates))
	for _, id := range candidates {
		_, err := r.UpdateTx(ctx, id, func(wb *carwash.WashBooking) error {
			if !wb.ShouldAutoComplete(now) {
				return apperr.NewConflictError("wash booking no longer auto-completable")
			}
			return wb.AutoComplete(now)
		})
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				continue
			}
			return closed, err
		}
		closed = append(closed, id)
	}
	return closed, nil
}

func updateWashBookingLocked(tx *gorm.DB, wb *carwash.WashBooking) error {
	expectedVersion := wb.Version() - 1
	result := tx.Model(&WashBookingModel{}).
		Where("id = ? AND version = ?", wb.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"employee_id":      wb.EmployeeID(),
			"payment_state":    string(wb.PaymentState()),
			"status":           string(wb.Status()),
			"completed_at":     wb.CompletedAt(),
			"auto_complete_at": wb.AutoCompleteAt(),
			"notes":            wb.Notes(),
			"version":          wb.Version(),
			"updated_at":       wb.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wash booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConflictError("wash booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toWashBookingModel(wb *carwash.WashBooking) *WashBookingModel {
	return &WashBookingModel{
		ID:             wb.ID(),
		UserID:         wb.UserID(),
		LotID:          wb.LotID(),
		EmployeeID:     wb.EmployeeID(),
		ServiceType:    wb.ServiceType(),
		PriceCents:     wb.PriceCents(),
		PaymentMethod:  wb.PaymentMethod(),
		PaymentState:   string(wb.PaymentState()),
		Status:         string(wb.Status()),
		ScheduledAt:    wb.ScheduledAt(),
		CompletedAt:    wb.CompletedAt(),
		AutoCompleteAt: wb.AutoCompleteAt(),
		Notes:          wb.Notes(),
		Version:        wb.Version(),
		CreatedAt:      wb.CreatedAt(),
		UpdatedAt:      wb.UpdatedAt(),
	}
}

func toDomainWashBooking(m *WashBookingModel) (*carwash.WashBooking, error) {
	status, err := carwash.ParseWashStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return carwash.ReconstructWashBooking(
		m.ID,
		m.UserID,
		m.LotID,
		m.EmployeeID,
		m.ServiceType,
		m.PriceCents,
		m.PaymentMethod,
		carwash.PaymentState(m.PaymentState),
		status,
		m.ScheduledAt,
		m.CompletedAt,
		m.AutoCompleteAt,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
