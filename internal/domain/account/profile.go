package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// UserProfile carries driver-specific data for an account with the User
// role.
type UserProfile struct {
	accountID     uuid.UUID
	phone         string
	vehicleNumber string
	vehicleType   string
	updatedAt     time.Time
}

// NewUserProfile creates a driver profile for an account.
func NewUserProfile(accountID uuid.UUID, phone, vehicleNumber, vehicleType string) (*UserProfile, error) {
	if accountID == uuid.Nil {
		return nil, apperr.NewValidationError("account ID is required")
	}
	return &UserProfile{
		accountID:     accountID,
		phone:         phone,
		vehicleNumber: strings.ToUpper(strings.TrimSpace(vehicleNumber)),
		vehicleType:   vehicleType,
		updatedAt:     time.Now().UTC(),
	}, nil
}

// ReconstructUserProfile rebuilds a UserProfile from persistence data.
func ReconstructUserProfile(accountID uuid.UUID, phone, vehicleNumber, vehicleType string, updatedAt time.Time) *UserProfile {
	return &UserProfile{
		accountID:     accountID,
		phone:         phone,
		vehicleNumber: vehicleNumber,
		vehicleType:   vehicleType,
		updatedAt:     updatedAt,
	}
}

func (p *UserProfile) AccountID() uuid.UUID  { return p.accountID }
func (p *UserProfile) Phone() string         { return p.phone }
func (p *UserProfile) VehicleNumber() string { return p.vehicleNumber }
func (p *UserProfile) VehicleType() string   { return p.vehicleType }
func (p *UserProfile) UpdatedAt() time.Time  { return p.updatedAt }

// Update applies partial updates to the driver profile.
func (p *UserProfile) Update(phone, vehicleNumber, vehicleType string) {
	if phone != "" {
		p.phone = phone
	}
	if vehicleNumber != "" {
		p.vehicleNumber = strings.ToUpper(strings.TrimSpace(vehicleNumber))
	}
	if vehicleType != "" {
		p.vehicleType = vehicleType
	}
	p.updatedAt = time.Now().UTC()
}

// VerificationStatus is the admin review state of an owner application.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationDeclined VerificationStatus = "declined"
)

// IsValid returns true if the status is recognized.
func (s VerificationStatus) IsValid() bool {
	return s == VerificationPending || s == VerificationApproved || s == VerificationDeclined
}

// OwnerProfile carries lot-owner data. Owners only appear in public lot
// listings once an admin approves them.
type OwnerProfile struct {
	accountID          uuid.UUID
	phone              string
	address            string
	pincode            string
	verificationStatus VerificationStatus
	updatedAt          time.Time
}

// NewOwnerProfile creates an owner profile awaiting admin verification.
func NewOwnerProfile(accountID uuid.UUID, phone, address, pincode string) (*OwnerProfile, error) {
	if accountID == uuid.Nil {
		return nil, apperr.NewValidationError("account ID is required")
	}
	if pincode != "" && !pincodePattern.MatchString(pincode) {
		return nil, apperr.NewValidationError("pincode must be 6 digits and not start with 0")
	}
	return &OwnerProfile{
		accountID:          accountID,
		phone:              phone,
		address:            address,
		pincode:            pincode,
		verificationStatus: VerificationPending,
		updatedAt:          time.Now().UTC(),
	}, nil
}

// ReconstructOwnerProfile rebuilds an OwnerProfile from persistence data.
func ReconstructOwnerProfile(accountID uuid.UUID, phone, address, pincode string, status VerificationStatus, updatedAt time.Time) *OwnerProfile {
	return &OwnerProfile{
		accountID:          accountID,
		phone:              phone,
		address:            address,
		pincode:            pincode,
		verificationStatus: status,
		updatedAt:          updatedAt,
	}
}

func (p *OwnerProfile) AccountID() uuid.UUID                   { return p.accountID }
func (p *OwnerProfile) Phone() string                          { return p.phone }
func (p *OwnerProfile) Address() string                        { return p.address }
func (p *OwnerProfile) Pincode() string                        { return p.pincode }
func (p *OwnerProfile) VerificationStatus() VerificationStatus { return p.verificationStatus }
func (p *OwnerProfile) UpdatedAt() time.Time                   { return p.updatedAt }

// IsApproved reports whether the owner passed admin review.
func (p *OwnerProfile) IsApproved() bool {
	return p.verificationStatus == VerificationApproved
}

// Approve marks the owner application approved.
func (p *OwnerProfile) Approve() error {
	return p.review(VerificationApproved)
}

// Decline marks the owner application declined.
func (p *OwnerProfile) Decline() error {
	return p.review(VerificationDeclined)
}

func (p *OwnerProfile) review(target VerificationStatus) error {
	if p.verificationStatus == target {
		return nil
	}
	if p.verificationStatus != VerificationPending {
		return apperr.NewInvalidStateError(string(p.verificationStatus), string(target))
	}
	p.verificationStatus = target
	p.updatedAt = time.Now().UTC()
	return nil
}

// Update applies partial updates to the owner profile.
func (p *OwnerProfile) Update(phone, address, pincode string) error {
	if pincode != "" && !pincodePattern.MatchString(pincode) {
		return apperr.NewValidationError("pincode must be 6 digits and not start with 0")
	}
	if phone != "" {
		p.phone = phone
	}
	if address != "" {
		p.address = address
	}
	if pincode != "" {
		p.pincode = pincode
	}
	p.updatedAt = time.Now().UTC()
	return nil
}
