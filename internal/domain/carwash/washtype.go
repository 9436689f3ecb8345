package carwash

import (
	"time"

	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/domain/apperr"
)

// WashType is a catalog entry for a wash service, managed by admins.
type WashType struct {
	id          uuid.UUID
	name        string
	description string
	priceCents  int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewWashType creates a catalog entry with validated fields.
func NewWashType(name, description string, priceCents int64) (*WashType, error) {
	if name == "" {
		return nil, apperr.NewValidationError("wash type name is required")
	}
	if priceCents <= 0 {
		return nil, apperr.NewValidationError("wash type price must be positive")
	}

	now := time.Now().UTC()
	return &WashType{
		id:          uuid.New(),
		name:        name,
		description: description,
		priceCents:  priceCents,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructWashType rebuilds a WashType from persistence data.
func ReconstructWashType(id uuid.UUID, name, description string, priceCents int64, createdAt, updatedAt time.Time) *WashType {
	return &WashType{
		id:          id,
		name:        name,
		description: description,
		priceCents:  priceCents,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (w *WashType) ID() uuid.UUID        { return w.id }
func (w *WashType) Name() string         { return w.name }
func (w *WashType) Description() string  { return w.description }
func (w *WashType) PriceCents() int64    { return w.priceCents }
func (w *WashType) CreatedAt() time.Time { return w.createdAt }
func (w *WashType) UpdatedAt() time.Time { return w.updatedAt }

// Update applies partial updates to the catalog entry.
func (w *WashType) Update(name, description string, priceCents int64) error {
	if priceCents < 0 {
		return apperr.NewValidationError("wash type price cannot be negative")
	}
	if name != "" {
		w.name = name
	}
	if description != "" {
		w.description = description
	}
	if priceCents > 0 {
		w.priceCents = priceCents
	}
	w.updatedAt = time.Now().UTC()
	return nil
}
