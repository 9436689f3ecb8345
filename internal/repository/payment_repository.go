package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	Method        string     `gorm:"not null;size:10"`
	AmountCents   int64      `gorm:"not null"`
	Status        string     `gorm:"not null;size:10;index"`
	TransactionID string     `gorm:"size:100;index"`
	VerifiedBy    *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt    *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of the payment
// Repository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toDomainPayment(&model), nil
}

// FindByBookingID retrieves payments of a booking ordered by creation
// time.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*payment.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking payments: %w", err)
	}

	payments := make([]*payment.Payment, len(models))
	for i, m := range models {
		payments[i] = toDomainPayment(&m)
	}
	return payments, nil
}

// FindByUserID retrieves payments made by a user with pagination.
func (r *GormPaymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*payment.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&PaymentModel{}).Where("user_id = ?", userID)
	return r.page(ctx, query, page, limit)
}

// FindByLotIDs retrieves payments on bookings across the given lots
// with pagination.
func (r *GormPaymentRepository) FindByLotIDs(ctx context.Context, lotIDs []uuid.UUID, page, limit int) ([]*payment.Payment, int64, error) {
	if len(lotIDs) == 0 {
		return []*payment.Payment{}, 0, nil
	}
	query := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.lot_id IN ?", lotIDs)
	return r.page(ctx, query, page, limit)
}

// ListAll retrieves all payments with pagination (admin).
func (r *GormPaymentRepository) ListAll(ctx context.Context, page, limit int) ([]*payment.Payment, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&PaymentModel{}), page, limit)
}

func (r *GormPaymentRepository) page(ctx context.Context, query *gorm.DB, page, limit int) ([]*payment.Payment, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var models []PaymentModel
	offset := (page - 1) * limit
	if err := query.
		Order("payments.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*payment.Payment, len(models))
	for i, m := range models {
		payments[i] = toDomainPayment(&m)
	}
	return payments, total, nil
}

// FindByTransactionID retrieves a payment by its gateway reference.
func (r *GormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Payment", transactionID)
		}
		return nil, fmt.Errorf("failed to find payment by transaction ID: %w", err)
	}
	return toDomainPayment(&model), nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	if err := r.db.WithContext(ctx).Create(toPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes to an existing payment.
func (r *GormPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	return updatePayment(r.db.WithContext(ctx), p)
}

func updatePayment(tx *gorm.DB, p *payment.Payment) error {
	result := tx.Model(&PaymentModel{}).
		Where("id = ?", p.ID()).
		Updates(map[string]interface{}{
			"status":      string(p.Status()),
			"verified_by": p.VerifiedBy(),
			"verified_at": p.VerifiedAt(),
			"updated_at":  p.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Payment", p.ID().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		UserID:        p.UserID(),
		Method:        string(p.Method()),
		AmountCents:   p.AmountCents(),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
		VerifiedBy:    p.VerifiedBy(),
		VerifiedAt:    p.VerifiedAt(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toDomainPayment(m *PaymentModel) *payment.Payment {
	return payment.Reconstruct(
		m.ID,
		m.BookingID,
		m.UserID,
		payment.Method(m.Method),
		m.AmountCents,
		payment.Status(m.Status),
		m.TransactionID,
		m.VerifiedBy,
		m.VerifiedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
