package employee

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// Availability reflects whether an employee can take more wash work.
// It is always derived from the assignment count, never set directly.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
)

// DefaultBusyThreshold is the assignment count at which an employee
// stops receiving new work.
const DefaultBusyThreshold = 3

// Employee is a wash worker belonging to a lot owner's pool. A nil
// ownerID means the employee sits in the unassigned pool.
type Employee struct {
	id                 uuid.UUID
	ownerID            *uuid.UUID
	firstName          string
	lastName           string
	phone              string
	drivingLicense     string
	latitude           float64
	longitude          float64
	currentAssignments int
	availability       Availability
	createdAt          time.Time
	updatedAt          time.Time
}

// NewEmployee creates an available employee with zero assignments.
func NewEmployee(ownerID *uuid.UUID, firstName, lastName, phone, drivingLicense string, latitude, longitude float64) (*Employee, error) {
	if firstName == "" {
		return nil, apperr.NewValidationError("first name is required")
	}
	if phone == "" {
		return nil, apperr.NewValidationError("phone is required")
	}

	now := time.Now().UTC()
	return &Employee{
		id:             uuid.New(),
		ownerID:        ownerID,
		firstName:      firstName,
		lastName:       lastName,
		phone:          phone,
		drivingLicense: drivingLicense,
		latitude:       latitude,
		longitude:      longitude,
		availability:   AvailabilityAvailable,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds an Employee from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	ownerID *uuid.UUID,
	firstName, lastName, phone, drivingLicense string,
	latitude, longitude float64,
	currentAssignments int,
	availability Availability,
	createdAt, updatedAt time.Time,
) *Employee {
	return &Employee{
		id:                 id,
		ownerID:            ownerID,
		firstName:          firstName,
		lastName:           lastName,
		phone:              phone,
		drivingLicense:     drivingLicense,
		latitude:           latitude,
		longitude:          longitude,
		currentAssignments: currentAssignments,
		availability:       availability,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (e *Employee) ID() uuid.UUID              { return e.id }
func (e *Employee) OwnerID() *uuid.UUID        { return e.ownerID }
func (e *Employee) FirstName() string          { return e.firstName }
func (e *Employee) LastName() string           { return e.lastName }
func (e *Employee) Phone() string              { return e.phone }
func (e *Employee) DrivingLicense() string     { return e.drivingLicense }
func (e *Employee) Latitude() float64          { return e.latitude }
func (e *Employee) Longitude() float64         { return e.longitude }
func (e *Employee) CurrentAssignments() int    { return e.currentAssignments }
func (e *Employee) Availability() Availability { return e.availability }
func (e *Employee) CreatedAt() time.Time       { return e.createdAt }
func (e *Employee) UpdatedAt() time.Time       { return e.updatedAt }

// FullName joins first and last name for display.
func (e *Employee) FullName() string {
	if e.lastName == "" {
		return e.firstName
	}
	return e.firstName + " " + e.lastName
}

// --- Behavior ---

// IsManagedBy checks if the employee belongs to the given owner's pool.
func (e *Employee) IsManagedBy(ownerID uuid.UUID) bool {
	return e.ownerID != nil && *e.ownerID == ownerID
}

// SetWorkload records a freshly counted assignment total and derives
// availability from it. Negative counts clamp to zero.
func (e *Employee) SetWorkload(count, busyThreshold int) {
	if count < 0 {
		count = 0
	}
	e.currentAssignments = count
	if count >= busyThreshold {
		e.availability = AvailabilityBusy
	} else {
		e.availability = AvailabilityAvailable
	}
	e.updatedAt = time.Now().UTC()
}

// ReassignTo moves the employee to another owner's pool. A nil owner
// returns the employee to the unassigned pool.
func (e *Employee) ReassignTo(ownerID *uuid.UUID) {
	e.ownerID = ownerID
	e.updatedAt = time.Now().UTC()
}

// Update applies partial updates to the employee profile.
func (e *Employee) Update(firstName, lastName, phone, drivingLicense string, latitude, longitude *float64) {
	if firstName != "" {
		e.firstName = firstName
	}
	if lastName != "" {
		e.lastName = lastName
	}
	if phone != "" {
		e.phone = phone
	}
	if drivingLicense != "" {
		e.drivingLicense = drivingLicense
	}
	if latitude != nil {
		e.latitude = *latitude
	}
	if longitude != nil {
		e.longitude = *longitude
	}
	e.updatedAt = time.Now().UTC()
}
