package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/employee"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// CreateEmployeeRequest holds the data to add a wash employee.
type CreateEmployeeRequest struct {
	// OwnerID is honored for admins only; owners always create into
	// their own pool.
	OwnerID        *uuid.UUID `json:"owner_id"`
	FirstName      string     `json:"first_name" binding:"required"`
	LastName       string     `json:"last_name"`
	Phone          string     `json:"phone" binding:"required"`
	DrivingLicense string     `json:"driving_license"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
}

// UpdateEmployeeRequest holds partial employee updates.
type UpdateEmployeeRequest struct {
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Phone          string   `json:"phone"`
	DrivingLicense string   `json:"driving_license"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// ReassignEmployeeRequest moves an employee between owner pools.
type ReassignEmployeeRequest struct {
	OwnerID *uuid.UUID `json:"owner_id"`
}

// EmployeeDTO is the response representation of a wash employee.
type EmployeeDTO struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            *uuid.UUID `json:"owner_id,omitempty"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name,omitempty"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	DrivingLicense     string     `json:"driving_license,omitempty"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	CurrentAssignments int        `json:"current_assignments"`
	Availability       string     `json:"availability"`
	CreatedAt          time.Time  `json:"created_at"`
}

// EmployeeService is the application service for wash employee pools.
type EmployeeService struct {
	repo          employee.Repository
	busyThreshold int
	notifier      notify.Notifier
	logger        *zap.Logger
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(repo employee.Repository, busyThreshold int, notifier notify.Notifier, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		repo:          repo,
		busyThreshold: busyThreshold,
		notifier:      notifier,
		logger:        logger,
	}
}

// CreateEmployee adds an employee. Owners create into their own pool;
// admins may target any pool or leave the employee unassigned.
func (s *EmployeeService) CreateEmployee(ctx context.Context, actor auth.Actor, req CreateEmployeeRequest) (*EmployeeDTO, error) {
	ownerID := req.OwnerID
	if !actor.IsAdmin() {
		id := actor.AccountID
		ownerID = &id
	}

	emp, err := employee.NewEmployee(ownerID, req.FirstName, req.LastName, req.Phone, req.DrivingLicense, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info("employee created", zap.String("employee_id", emp.ID().String()))

	dto := toEmployeeDTO(emp)
	return &dto, nil
}

// GetEmployee retrieves an employee visible to the actor.
func (s *EmployeeService) GetEmployee(ctx context.Context, actor auth.Actor, id uuid.UUID) (*EmployeeDTO, error) {
	emp, err := s.managedEmployee(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(emp)
	return &dto, nil
}

// ListOwnerEmployees retrieves the actor's own employee pool.
func (s *EmployeeService) ListOwnerEmployees(ctx context.Context, ownerID uuid.UUID) ([]EmployeeDTO, error) {
	emps, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	return dtos, nil
}

// ListAllEmployees retrieves every employee (admin).
func (s *EmployeeService) ListAllEmployees(ctx context.Context, page, limit int) (*apperr.PaginatedResult[EmployeeDTO], error) {
	emps, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateEmployee applies partial updates to an employee in the actor's
// pool.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, actor auth.Actor, id uuid.UUID, req UpdateEmployeeRequest) (*EmployeeDTO, error) {
	emp, err := s.managedEmployee(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	emp.Update(req.FirstName, req.LastName, req.Phone, req.DrivingLicense, req.Latitude, req.Longitude)
	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}

	dto := toEmployeeDTO(emp)
	return &dto, nil
}

// DeleteEmployee removes an employee from the pool.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	emp, err := s.managedEmployee(ctx, actor, id)
	if err != nil {
		return err
	}
	if emp.CurrentAssignments() > 0 {
		return apperr.NewConflictError("employee still has open wash assignments")
	}
	return s.repo.Delete(ctx, id)
}

// ReassignEmployee moves an employee to another owner's pool (admin).
// The workload is recounted in the same transaction.
func (s *EmployeeService) ReassignEmployee(ctx context.Context, id uuid.UUID, req ReassignEmployeeRequest) (*EmployeeDTO, error) {
	emp, err := s.repo.ReassignTx(ctx, id, req.OwnerID, s.busyThreshold)
	if err != nil {
		return nil, err
	}

	if req.OwnerID != nil {
		s.notifier.Notify(*req.OwnerID, "info", emp.FullName()+" was added to your employee pool")
	}

	dto := toEmployeeDTO(emp)
	return &dto, nil
}

// RecalculateWorkload recounts an employee's open assignments from
// source and rederives availability.
func (s *EmployeeService) RecalculateWorkload(ctx context.Context, actor auth.Actor, id uuid.UUID) (*EmployeeDTO, error) {
	if _, err := s.managedEmployee(ctx, actor, id); err != nil {
		return nil, err
	}

	emp, err := s.repo.RecalculateWorkload(ctx, id, s.busyThreshold)
	if err != nil {
		return nil, err
	}
	dto := toEmployeeDTO(emp)
	return &dto, nil
}

// --- Helpers ---

func (s *EmployeeService) managedEmployee(ctx context.Context, actor auth.Actor, id uuid.UUID) (*employee.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !emp.IsManagedBy(actor.AccountID) {
		return nil, apperr.NewForbiddenError("employee does not belong to this owner's pool")
	}
	return emp, nil
}

func toEmployeeDTO(e *employee.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                 e.ID(),
		OwnerID:            e.OwnerID(),
		FirstName:          e.FirstName(),
		LastName:           e.LastName(),
		FullName:           e.FullName(),
		Phone:              e.Phone(),
		DrivingLicense:     e.DrivingLicense(),
		Latitude:           e.Latitude(),
		Longitude:          e.Longitude(),
		CurrentAssignments: e.CurrentAssignments(),
		Availability:       string(e.Availability()),
		CreatedAt:          e.CreatedAt(),
	}
}
