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
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/payment"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	SlotID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	LotID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	VehicleNumber string     `gorm:"not null;size:20;index"`
	Kind          string     `gorm:"not null;size:10"`
	Status        string     `gorm:"not null;size:20;index"`
	PriceCents    int64      `gorm:"not null"`
	StartTime     time.Time  `gorm:"not null"`
	EndTime       *time.Time `gorm:"index"`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// Repository. busyThreshold feeds the employee workload recalculation
// performed when an expired booking closes its wash add-on.
type GormBookingRepository struct {
	db            *gorm.DB
	busyThreshold int
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB, busyThreshold int) *GormBookingRepository {
	return &GormBookingRepository{db: db, busyThreshold: busyThreshold}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves bookings belonging to a user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "user_id = ?", userID, page, limit)
}

// FindByLotID retrieves bookings of a lot with pagination.
func (r *GormBookingRepository) FindByLotID(ctx context.Context, lotID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "lot_id = ?", lotID, page, limit)
}

func (r *GormBookingRepository) findPage(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CreateReserved atomically locks the slot, verifies it is still free,
// rejects duplicate active bookings for the same user and vehicle, and
// persists the booking with its payment while flipping the slot.
func (r *GormBookingRepository) CreateReserved(ctx context.Context, bk *bookingDomain.Booking, pay *payment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot SlotModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.SlotID()).
			First(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFoundError("ParkingSlot", bk.SlotID().String())
			}
			return fmt.Errorf("failed to lock slot: %w", err)
		}
		if !slot.Available {
			return apperr.NewConflictError("slot is no longer available")
		}

		var dup int64
		if err := tx.Model(&BookingModel{}).
			Where("user_id = ? AND vehicle_number = ? AND status = ?",
				bk.UserID(), bk.VehicleNumber(), string(bookingDomain.StatusBooked)).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("failed to check duplicate booking: %w", err)
		}
		if dup > 0 {
			return apperr.NewConflictError("vehicle already has an active booking")
		}

		if err := tx.Create(toBookingModel(bk)).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		if err := tx.Create(toPaymentModel(pay)).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		return markSlot(tx, bk.SlotID(), false)
	})
}

// CancelAndRelease atomically cancels the booking and frees its slot.
func (r *GormBookingRepository) CancelAndRelease(ctx context.Context, bookingID uuid.UUID, mutate func(*bookingDomain.Booking) error) error {
	return r.closeAndRelease(ctx, bookingID, mutate)
}

// CompleteAndRelease atomically completes the booking and frees its slot.
func (r *GormBookingRepository) CompleteAndRelease(ctx context.Context, bookingID uuid.UUID, mutate func(*bookingDomain.Booking) error) error {
	return r.closeAndRelease(ctx, bookingID, mutate)
}

func (r *GormBookingRepository) closeAndRelease(ctx context.Context, bookingID uuid.UUID, mutate func(*bookingDomain.Booking) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bk, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if err := mutate(bk); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := updateBookingLocked(tx, bk); err != nil {
			return err
		}
		if err := markSlot(tx, bk.SlotID(), true); err != nil {
			return err
		}
		return closeOpenAddons(tx, bk.ID(), r.busyThreshold)
	})
}

// Renew atomically re-validates renewal eligibility under lock,
// re-occupies the slot and persists the replacement booking.
func (r *GormBookingRepository) Renew(ctx context.Context, oldBookingID uuid.UUID, build func(old *bookingDomain.Booking) (*bookingDomain.Booking, *payment.Payment, error)) (*bookingDomain.Booking, error) {
	var renewed *bookingDomain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := lockBooking(tx, oldBookingID)
		if err != nil {
			return err
		}

		var slot SlotModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", old.SlotID()).
			First(&slot).Error; err != nil {
			return fmt.Errorf("failed to lock slot: %w", err)
		}

		// Renewal eligibility is decided before the slot state is
		// consulted: a still-active booking holds its own slot, and
		// that must surface as not-renewable rather than slot-taken.
		newBk, pay, err := build(old)
		if err != nil {
			return err
		}

		// An expired but unswept booking still shows the slot occupied.
		// Completing it here keeps the renewal from racing the sweep.
		if old.IsExpired(time.Now().UTC()) {
			if err := old.Complete(); err != nil {
				return err
			}
			old.IncrementVersion()
			if err := updateBookingLocked(tx, old); err != nil {
				return err
			}
			if err := closeOpenAddons(tx, old.ID(), r.busyThreshold); err != nil {
				return err
			}
		} else if !slot.Available {
			return apperr.NewConflictError("slot is no longer available")
		}

		if err := tx.Create(toBookingModel(newBk)).Error; err != nil {
			return fmt.Errorf("failed to save renewed booking: %w", err)
		}
		if err := tx.Create(toPaymentModel(pay)).Error; err != nil {
			return fmt.Errorf("failed to save renewal payment: %w", err)
		}
		if err := markSlot(tx, newBk.SlotID(), false); err != nil {
			return err
		}
		renewed = newBk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return updateBookingLocked(r.db.WithContext(ctx), bk)
}

// VerifyCashPayment settles a pending cash payment under lock and lets
// the caller start the parking timer in the same transaction.
func (r *GormBookingRepository) VerifyCashPayment(ctx context.Context, paymentID uuid.UUID, mutate func(p *payment.Payment, b *bookingDomain.Booking, isSlotPayment bool) error) (*payment.Payment, error) {
	var verified *payment.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payModel PaymentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", paymentID).
			First(&payModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewNotFoundError("Payment", paymentID.String())
			}
			return fmt.Errorf("failed to lock payment: %w", err)
		}
		pay := toDomainPayment(&payModel)

		bk, err := lockBooking(tx, pay.BookingID())
		if err != nil {
			return err
		}

		var first PaymentModel
		if err := tx.Where("booking_id = ?", pay.BookingID()).
			Order("created_at ASC").
			First(&first).Error; err != nil {
			return fmt.Errorf("failed to find slot payment: %w", err)
		}
		isSlotPayment := first.ID == pay.ID()

		if err := mutate(pay, bk, isSlotPayment); err != nil {
			return err
		}

		if err := updatePayment(tx, pay); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := updateBookingLocked(tx, bk); err != nil {
			return err
		}
		verified = pay
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

// SweepExpired closes every booked booking whose end time has passed.
// Each booking is handled in its own transaction so one conflict does
// not abort the rest of the sweep.
func (r *GormBookingRepository) SweepExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var candidates []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status = ? AND end_time IS NOT NULL AND end_time < ?", string(bookingDomain.StatusBooked), now).
		Pluck("id", &candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired bookings: %w", err)
	}

	closed := make([]uuid.UUID, 0, len(candidates))
	for _, id := range candidates {
		err := r.CompleteAndRelease(ctx, id, func(bk *bookingDomain.Booking) error {
			// Recheck under lock: a concurrent request may have swept or
			// cancelled it already.
			if !bk.IsExpired(now) {
				return apperr.NewConflictError("booking no longer expired")
			}
			return bk.Complete()
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

// closeOpenAddons terminates non-terminal wash add-ons of a booking and
// recalculates the affected employees.
func closeOpenAddons(tx *gorm.DB, bookingID uuid.UUID, busyThreshold int) error {
	var models []WashAddonModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ? AND status IN ?", bookingID, openAddonStatuses).
		Find(&models).Error; err != nil {
		return fmt.Errorf("failed to lock open addons: %w", err)
	}

	for i := range models {
		addon := toDomainAddon(&models[i])
		if !addon.Terminate() {
			continue
		}
		if err := tx.Model(&WashAddonModel{}).
			Where("id = ?", addon.ID()).
			Updates(map[string]interface{}{
				"status":     string(addon.Status()),
				"updated_at": addon.UpdatedAt(),
			}).Error; err != nil {
			return fmt.Errorf("failed to close addon: %w", err)
		}
		if addon.EmployeeID() != nil {
			if err := recalcEmployeeWorkload(tx, *addon.EmployeeID(), busyThreshold); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Locking Helpers ---

func lockBooking(tx *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return toDomainBooking(&model)
}

func updateBookingLocked(tx *gorm.DB, bk *bookingDomain.Booking) error {
	expectedVersion := bk.Version() - 1
	result := tx.Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"start_time": bk.StartTime(),
			"end_time":   bk.EndTime(),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

func markSlot(tx *gorm.DB, slotID uuid.UUID, available bool) error {
	result := tx.Model(&SlotModel{}).
		Where("id = ?", slotID).
		Updates(map[string]interface{}{
			"available":  available,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update slot availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("ParkingSlot", slotID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            bk.ID(),
		UserID:        bk.UserID(),
		SlotID:        bk.SlotID(),
		LotID:         bk.LotID(),
		VehicleNumber: bk.VehicleNumber(),
		Kind:          string(bk.Kind()),
		Status:        string(bk.Status()),
		PriceCents:    bk.PriceCents(),
		StartTime:     bk.StartTime(),
		EndTime:       bk.EndTime(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.UserID,
		m.SlotID,
		m.LotID,
		m.VehicleNumber,
		bookingDomain.Kind(m.Kind),
		status,
		m.PriceCents,
		m.StartTime,
		m.EndTime,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
