package employee

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for employees.
type Repository interface {
	// FindByID retrieves an employee by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)

	// FindByOwnerID retrieves all employees in an owner's pool.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Employee, error)

	// ListAll retrieves all employees with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Employee, int64, error)

	// Save persists a new employee.
	Save(ctx context.Context, e *Employee) error

	// Update persists changes to an existing employee.
	Update(ctx context.Context, e *Employee) error

	// Delete removes an employee from the pool.
	Delete(ctx context.Context, id uuid.UUID) error

	// RecalculateWorkload recounts an employee's open wash assignments
	// from source inside a locked transaction and stores the derived
	// availability. Returns the updated employee.
	RecalculateWorkload(ctx context.Context, id uuid.UUID, busyThreshold int) (*Employee, error)

	// ReassignTx moves an employee between owner pools and recalculates
	// the workload in the same transaction.
	ReassignTx(ctx context.Context, id uuid.UUID, newOwnerID *uuid.UUID, busyThreshold int) (*Employee, error)
}
