package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	employeeDomain "github.com/parkmate/service-parking/internal/domain/employee"
)

// EmployeeModel is the GORM model for the employees table.
type EmployeeModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID            *uuid.UUID `gorm:"type:uuid;index"`
	FirstName          string     `gorm:"not null;size:60"`
	LastName           string     `gorm:"size:60"`
	Phone              string     `gorm:"not null;size:20"`
	DrivingLicense     string     `gorm:"size:40"`
	Latitude           float64    `gorm:""`
	Longitude          float64    `gorm:""`
	CurrentAssignments int        `gorm:"not null;default:0"`
	Availability       string     `gorm:"not null;size:12;default:'available';index"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (EmployeeModel) TableName() string {
	return "employees"
}

// GormEmployeeRepository is the GORM-based implementation of the
// employee Repository.
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository.
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindByID retrieves an employee by its unique identifier.
func (r *GormEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*employeeDomain.Employee, error) {
	var model EmployeeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Employee", id.String())
		}
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}
	return toDomainEmployee(&model), nil
}

// FindByOwnerID retrieves all employees in an owner's pool.
func (r *GormEmployeeRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*employeeDomain.Employee, error) {
	var models []EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner employees: %w", err)
	}

	employees := make([]*employeeDomain.Employee, len(models))
	for i, m := range models {
		employees[i] = toDomainEmployee(&m)
	}
	return employees, nil
}

// ListAll retrieves all employees with pagination (admin).
func (r *GormEmployeeRepository) ListAll(ctx context.Context, page, limit int) ([]*employeeDomain.Employee, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&EmployeeModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	var models []EmployeeModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}

	employees := make([]*employeeDomain.Employee, len(models))
	for i, m := range models {
		employees[i] = toDomainEmployee(&m)
	}
	return employees, total, nil
}

// Save persists a new employee.
func (r *GormEmployeeRepository) Save(ctx context.Context, e *employeeDomain.Employee) error {
	if err := r.db.WithContext(ctx).Create(toEmployeeModel(e)).Error; err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// Update persists changes to an existing employee.
func (r *GormEmployeeRepository) Update(ctx context.Context, e *employeeDomain.Employee) error {
	result := r.db.WithContext(ctx).
		Model(&EmployeeModel{}).
		Where("id = ?", e.ID()).
		Updates(map[string]interface{}{
			"owner_id":            e.OwnerID(),
			"first_name":          e.FirstName(),
			"last_name":           e.LastName(),
			"phone":               e.Phone(),
			"driving_license":     e.DrivingLicense(),
			"latitude":            e.Latitude(),
			"longitude":           e.Longitude(),
			"current_assignments": e.CurrentAssignments(),
			"availability":        string(e.Availability()),
			"updated_at":          e.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update employee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Employee", e.ID().String())
	}
	return nil
}

// Delete removes an employee from the pool.
func (r *GormEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EmployeeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Employee", id.String())
	}
	return nil
}

// RecalculateWorkload recounts an employee's open wash assignments from
// source inside a locked transaction.
func (r *GormEmployeeRepository) RecalculateWorkload(ctx context.Context, id uuid.UUID, busyThreshold int) (*employeeDomain.Employee, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recalcEmployeeWorkload(tx, id, busyThreshold)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// ReassignTx moves an employee between owner pools and recalculates the
// workload in the same transaction.
func (r *GormEmployeeRepository) ReassignTx(ctx context.Context, id uuid.UUID, newOwnerID *uuid.UUID, busyThreshold int) (*employeeDomain.Employee, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&EmployeeModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"owner_id":   newOwnerID,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reassign employee: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NewNotFoundError("Employee", id.String())
		}
		return recalcEmployeeWorkload(tx, id, busyThreshold)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// --- Conversion Helpers ---

func toEmployeeModel(e *employeeDomain.Employee) *EmployeeModel {
	return &EmployeeModel{
		ID:                 e.ID(),
		OwnerID:            e.OwnerID(),
		FirstName:          e.FirstName(),
		LastName:           e.LastName(),
		Phone:              e.Phone(),
		DrivingLicense:     e.DrivingLicense(),
		Latitude:           e.Latitude(),
		Longitude:          e.Longitude(),
		CurrentAssignments: e.CurrentAssignments(),
		Availability:       string(e.Availability()),
		CreatedAt:          e.CreatedAt(),
		UpdatedAt:          e.UpdatedAt(),
	}
}

func toDomainEmployee(m *EmployeeModel) *employeeDomain.Employee {
	return employeeDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.FirstName,
		m.LastName,
		m.Phone,
		m.DrivingLicense,
		m.Latitude,
		m.Longitude,
		m.CurrentAssignments,
		employeeDomain.Availability(m.Availability),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
