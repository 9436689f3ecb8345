package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

var (
	openAddonStatuses = []string{"pending", "active"}
	openWashStatuses  = []string{"pending", "confirmed", "in_progress"}
)

// recalcEmployeeWorkload recounts an employee's open wash work from
// source under a row lock and stores the derived availability. Counting
// from scratch instead of incrementing keeps the number self-healing.
func recalcEmployeeWorkload(tx *gorm.DB, employeeID uuid.UUID, busyThreshold int) error {
	var emp EmployeeModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", employeeID).
		First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFoundError("Employee", employeeID.String())
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}

	var addonCount int64
	if err := tx.Model(&WashAddonModel{}).
		Where("employee_id = ? AND status IN ?", employeeID, openAddonStatuses).
		Count(&addonCount).Error; err != nil {
		return fmt.Errorf("failed to count addon assignments: %w", err)
	}

	var washCount int64
	if err := tx.Model(&WashBookingModel{}).
		Where("employee_id = ? AND status IN ?", employeeID, openWashStatuses).
		Count(&washCount).Error; err != nil {
		return fmt.Errorf("failed to count wash assignments: %w", err)
	}

	total := int(addonCount + washCount)
	availability := "available"
	if total >= busyThreshold {
		availability = "busy"
	}

	if err := tx.Model(&EmployeeModel{}).
		Where("id = ?", employeeID).
		Updates(map[string]interface{}{
			"current_assignments": total,
			"availability":        availability,
			"updated_at":          time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("failed to update employee workload: %w", err)
	}
	return nil
}

// pickLeastLoadedEmployee locks and returns the ID of the available
// employee in an owner's pool with the fewest assignments, or nil when
// the pool has no available employee.
func pickLeastLoadedEmployee(tx *gorm.DB, ownerID uuid.UUID) (*uuid.UUID, error) {
	var emp EmployeeModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND availability = ?", ownerID, "available").
		Order("current_assignments ASC, created_at ASC").
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pick employee: %w", err)
	}
	id := emp.ID
	return &id, nil
}
