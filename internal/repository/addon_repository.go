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
	"github.com/parkmate/service-parking/internal/domain/payment"
)

// WashAddonModel is the GORM model for the wash_addons table. The
// partial unique index backs the one-open-addon-per-booking rule; the
// transactional recheck in PurchaseTx covers databases without it.
type WashAddonModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_open_addon_per_booking,where:status IN ('pending','active')"`
	WashTypeID uuid.UUID  `gorm:"type:uuid;not null"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;index"`
	PriceCents int64      `gorm:"not null"`
	Status     string     `gorm:"not null;size:12;index"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WashAddonModel) TableName() string {
	return "wash_addons"
}

// GormAddonRepository is the GORM-based implementation of
// AddonRepository.
type GormAddonRepository struct {
	db            *gorm.DB
	busyThreshold int
}

// NewGormAddonRepository creates a new GormAddonRepository.
func NewGormAddonRepository(db *gorm.DB, busyThreshold int) *GormAddonRepository {
	return &GormAddonRepository{db: db, busyThreshold: busyThreshold}
}

// FindByID retrieves an add-on by its unique identifier.
func (r *GormAddonRepository) FindByID(ctx context.Context, id uuid.UUID) (*carwash.WashAddon, error) {
	var model WashAddonModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("WashAddon", id.String())
		}
		return nil, fmt.Errorf("failed to find addon by ID: %w", err)
	}
	return toDomainAddon(&model), nil
}

// FindByBookingID retrieves all add-ons of a booking, newest first.
func (r *GormAddonRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*carwash.WashAddon, error) {
	var models []WashAddonModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking addons: %w", err)
	}

	addons := make([]*carwash.WashAddon, len(models))
	for i, m := range models {
		addons[i] = toDomainAddon(&m)
	}
	return addons, nil
}

// FindOpenByBookingID retrieves the pending or active add-on of a
// booking.
func (r *GormAddonRepository) FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*carwash.WashAddon, error) {
	var model WashAddonModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, openAddonStatuses).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("WashAddon", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find open addon: %w", err)
	}
	return toDomainAddon(&model), nil
}

// addonPurchaseTx is the transactional view handed to the purchase
// callback while the parent booking row is locked.
type addonPurchaseTx struct {
	tx            *gorm.DB
	busyThreshold int
}

// OpenAddonExists reports whether the booking already has a pending or
// active add-on.
func (t *addonPurchaseTx) OpenAddonExists(bookingID uuid.UUID) (bool, error) {
	var count int64
	if err := t.tx.Model(&WashAddonModel{}).
		Where("booking_id = ? AND status IN ?", bookingID, openAddonStatuses).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check open addon: %w", err)
	}
	return count > 0, nil
}

// PickLeastLoadedEmployee locks and returns the available employee of
// the owner with the fewest current assignments.
func (t *addonPurchaseTx) PickLeastLoadedEmployee(ownerID uuid.UUID) (*uuid.UUID, error) {
	return pickLeastLoadedEmployee(t.tx, ownerID)
}

// SavePayment persists the add-on payment inside the purchase
// transaction.
func (t *addonPurchaseTx) SavePayment(p *payment.Payment) error {
	if err := t.tx.Create(toPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save addon payment: %w", err)
	}
	return nil
}

// SaveAddon persists the new add-on.
func (t *addonPurchaseTx) SaveAddon(a *carwash.WashAddon) error {
	if err := t.tx.Create(toAddonModel(a)).Error; err != nil {
		return fmt.Errorf("failed to save addon: %w", err)
	}
	return nil
}

// RecalculateWorkload recomputes an employee's assignment count.
func (t *addonPurchaseTx) RecalculateWorkload(employeeID uuid.UUID) error {
	return recalcEmployeeWorkload(t.tx, employeeID, t.busyThreshold)
}

// PurchaseTx locks the booking row and runs the purchase callback
// inside one transaction.
func (r *GormAddonRepository) PurchaseTx(ctx context.Context, bookingID uuid.UUID, fn func(tx carwash.AddonPurchaseTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bk BookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&bk).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFoundError("Booking", bookingID.String())
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}
		return fn(&addonPurchaseTx{tx: tx, busyThreshold: r.busyThreshold})
	})
}

// UpdateStatusTx transitions the add-on and recalculates the assigned
// employee's workload within one transaction.
func (r *GormAddonRepository) UpdateStatusTx(ctx context.Context, addonID uuid.UUID, mutate func(*carwash.WashAddon) error) (*carwash.WashAddon, error) {
	var updated *carwash.WashAddon
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model WashAddonModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", addonID).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFoundError("WashAddon", addonID.String())
			}
			return fmt.Errorf("failed to lock addon: %w", err)
		}

		addon := toDomainAddon(&model)
		if err := mutate(addon); err != nil {
			return err
		}

		if err := tx.Model(&WashAddonModel{}).
			Where("id = ?", addon.ID()).
			Updates(map[string]interface{}{
				"employee_id": addon.EmployeeID(),
				"status":      string(addon.Status()),
				"updated_at":  addon.UpdatedAt(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update addon: %w", err)
		}

		if addon.EmployeeID() != nil {
			if err := recalcEmployeeWorkload(tx, *addon.EmployeeID(), r.busyThreshold); err != nil {
				return err
			}
		}
		updated = addon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// --- Conversion Helpers ---

func toAddonModel(a *carwash.WashAddon) *WashAddonModel {
	return &WashAddonModel{
		ID:         a.ID(),
		BookingID:  a.BookingID(),
		WashTypeID: a.WashTypeID(),
		EmployeeID: a.EmployeeID(),
		PriceCents: a.PriceCents(),
		Status:     string(a.Status()),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
}

func toDomainAddon(m *WashAddonModel) *carwash.WashAddon {
	return carwash.ReconstructAddon(
		m.ID,
		m.BookingID,
		m.WashTypeID,
		m.EmployeeID,
		m.PriceCents,
		carwash.AddonStatus(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
