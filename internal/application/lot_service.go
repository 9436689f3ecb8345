package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	accountDomain "github.com/parkmate/service-parking/internal/domain/account"
	"github.com/parkmate/service-parking/internal/domain/apperr"
	"github.com/parkmate/service-parking/internal/domain/parking"
	reviewDomain "github.com/parkmate/service-parking/internal/domain/review"
	"github.com/parkmate/service-parking/internal/pkg/auth"
)

// Sweeper closes expired booking state before reads that must reflect
// current availability.
type Sweeper interface {
	Sweep(ctx context.Context)
}

// SlotGroupRequest describes a batch of identical slots generated when
// a lot is listed.
type SlotGroupRequest struct {
	VehicleType      string `json:"vehicle_type" binding:"required"`
	Count            int    `json:"count" binding:"required,min=1"`
	HourlyPriceCents int64  `json:"hourly_price_cents" binding:"required,min=1"`
}

// CreateLotRequest holds the data to list a new parking lot.
type CreateLotRequest struct {
	Name                 string             `json:"name" binding:"required"`
	Street               string             `json:"street"`
	Locality             string             `json:"locality"`
	City                 string             `json:"city" binding:"required"`
	State                string             `json:"state"`
	Pincode              string             `json:"pincode" binding:"required"`
	Latitude             float64            `json:"latitude"`
	Longitude            float64            `json:"longitude"`
	WashServiceAvailable bool               `json:"wash_service_available"`
	SlotGroups           []SlotGroupRequest `json:"slot_groups" binding:"required,min=1,dive"`
}

// UpdateLotRequest holds partial lot updates.
type UpdateLotRequest struct {
	Name                 string `json:"name"`
	Street               string `json:"street"`
	Locality             string `json:"locality"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Pincode              string `json:"pincode"`
	WashServiceAvailable *bool  `json:"wash_service_available"`
}

// AddSlotRequest holds the data to add a single slot to a lot.
type AddSlotRequest struct {
	VehicleType      string `json:"vehicle_type" binding:"required"`
	HourlyPriceCents int64  `json:"hourly_price_cents" binding:"required,min=1"`
}

// LotDTO is the response representation of a parking lot.
type LotDTO struct {
	ID                   uuid.UUID `json:"id"`
	OwnerID              uuid.UUID `json:"owner_id"`
	Name                 string    `json:"name"`
	Street               string    `json:"street,omitempty"`
	Locality             string    `json:"locality,omitempty"`
	City                 string    `json:"city"`
	State                string    `json:"state,omitempty"`
	Pincode              string    `json:"pincode"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	TotalSlots           int       `json:"total_slots"`
	AvailableSlots       int64     `json:"available_slots"`
	WashServiceAvailable bool      `json:"wash_service_available"`
	AverageRating        float64   `json:"average_rating"`
	ReviewCount          int64     `json:"review_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// SlotDTO is the response representation of a parking slot.
type SlotDTO struct {
	ID               uuid.UUID `json:"id"`
	LotID            uuid.UUID `json:"lot_id"`
	VehicleType      string    `json:"vehicle_type"`
	HourlyPriceCents int64     `json:"hourly_price_cents"`
	Available        bool      `json:"available"`
}

// LotService is the application service for lot and slot management.
type LotService struct {
	lotRepo     parking.LotRepository
	slotRepo    parking.SlotRepository
	accountRepo accountDomain.Repository
	reviewRepo  reviewDomain.Repository
	sweeper     Sweeper
	logger      *zap.Logger
}

// NewLotService creates a new LotService.
func NewLotService(
	lotRepo parking.LotRepository,
	slotRepo parking.SlotRepository,
	accountRepo accountDomain.Repository,
	reviewRepo reviewDomain.Repository,
	sweeper Sweeper,
	logger *zap.Logger,
) *LotService {
	return &LotService{
		lotRepo:     lotRepo,
		slotRepo:    slotRepo,
		accountRepo: accountRepo,
		reviewRepo:  reviewRepo,
		sweeper:     sweeper,
		logger:      logger,
	}
}

// CreateLot lists a new parking lot with its bulk-generated slots. The
// owner must have passed admin verification.
func (s *LotService) CreateLot(ctx context.Context, ownerID uuid.UUID, req CreateLotRequest) (*LotDTO, error) {
	profile, err := s.accountRepo.FindOwnerProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsApproved() {
		return nil, apperr.NewForbiddenError("owner account is not verified yet")
	}

	totalSlots := 0
	for _, g := range req.SlotGroups {
		totalSlots += g.Count
	}

	lot, err := parking.NewLot(
		ownerID,
		req.Name, req.Street, req.Locality, req.City, req.State, req.Pincode,
		req.Latitude, req.Longitude,
		totalSlots,
		req.WashServiceAvailable,
	)
	if err != nil {
		return nil, err
	}

	slots := make([]*parking.Slot, 0, totalSlots)
	for _, g := range req.SlotGroups {
		for i := 0; i < g.Count; i++ {
			slot, err := parking.NewSlot(lot.ID(), parking.VehicleType(g.VehicleType), g.HourlyPriceCents)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
	}

	if err := s.lotRepo.SaveWithSlots(ctx, lot, slots); err != nil {
		return nil, err
	}

	s.logger.Info("lot created",
		zap.String("lot_id", lot.ID().String()),
		zap.Int("slots", totalSlots))

	dto, err := s.toLotDTO(ctx, lot)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// GetLot retrieves a lot with derived availability and rating.
func (s *LotService) GetLot(ctx context.Context, lotID uuid.UUID) (*LotDTO, error) {
	s.sweeper.Sweep(ctx)

	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	dto, err := s.toLotDTO(ctx, lot)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// ListPublicLots retrieves lots of verified owners, optionally filtered
// by city.
func (s *LotService) ListPublicLots(ctx context.Context, city string, page, limit int) (*apperr.PaginatedResult[LotDTO], error) {
	s.sweeper.Sweep(ctx)

	lots, total, err := s.lotRepo.ListPublic(ctx, city, page, limit)
	if err != nil {
		return nil, err
	}

	lotIDs := make([]uuid.UUID, len(lots))
	for i, l := range lots {
		lotIDs[i] = l.ID()
	}
	available, err := s.lotRepo.CountAvailableSlots(ctx, lotIDs)
	if err != nil {
		return nil, err
	}

	dtos := make([]LotDTO, len(lots))
	for i, l := range lots {
		avg, count, err := s.reviewRepo.AverageRating(ctx, l.ID())
		if err != nil {
			return nil, err
		}
		dtos[i] = lotDTO(l, available[l.ID()], avg, count)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListOwnerLots retrieves all lots of an owner.
func (s *LotService) ListOwnerLots(ctx context.Context, ownerID uuid.UUID) ([]LotDTO, error) {
	s.sweeper.Sweep(ctx)

	lots, err := s.lotRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]LotDTO, len(lots))
	for i, l := range lots {
		dto, err := s.toLotDTO(ctx, l)
		if err != nil {
			return nil, err
		}
		dtos[i] = dto
	}
	return dtos, nil
}

// UpdateLot applies partial updates to a lot owned by the actor.
func (s *LotService) UpdateLot(ctx context.Context, actor auth.Actor, lotID uuid.UUID, req UpdateLotRequest) (*LotDTO, error) {
	lot, err := s.ownedLot(ctx, actor, lotID)
	if err != nil {
		return nil, err
	}

	if err := lot.Update(req.Name, req.Street, req.Locality, req.City, req.State, req.Pincode, req.WashServiceAvailable); err != nil {
		return nil, err
	}
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}

	dto, err := s.toLotDTO(ctx, lot)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// DeleteLot removes a lot with no active bookings.
func (s *LotService) DeleteLot(ctx context.Context, actor auth.Actor, lotID uuid.UUID) error {
	if _, err := s.ownedLot(ctx, actor, lotID); err != nil {
		return err
	}
	return s.lotRepo.Delete(ctx, lotID)
}

// AddSlot adds a single slot to a lot owned by the actor.
func (s *LotService) AddSlot(ctx context.Context, actor auth.Actor, lotID uuid.UUID, req AddSlotRequest) (*SlotDTO, error) {
	lot, err := s.ownedLot(ctx, actor, lotID)
	if err != nil {
		return nil, err
	}

	slot, err := parking.NewSlot(lotID, parking.VehicleType(req.VehicleType), req.HourlyPriceCents)
	if err != nil {
		return nil, err
	}
	if err := s.slotRepo.Save(ctx, slot); err != nil {
		return nil, err
	}

	lot.AddSlots(1)
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}

	dto := slotDTO(slot)
	return &dto, nil
}

// ListSlots retrieves the slots of a lot. Expired bookings are swept
// first so availability reflects the present moment.
func (s *LotService) ListSlots(ctx context.Context, lotID uuid.UUID, vehicleType string, onlyAvailable bool) ([]SlotDTO, error) {
	s.sweeper.Sweep(ctx)

	if vehicleType != "" && !parking.VehicleType(vehicleType).IsValid() {
		return nil, apperr.NewValidationError("unknown vehicle type: " + vehicleType)
	}

	slots, err := s.slotRepo.FindByLotID(ctx, lotID, parking.VehicleType(vehicleType), onlyAvailable)
	if err != nil {
		return nil, err
	}

	dtos := make([]SlotDTO, len(slots))
	for i, slot := range slots {
		dtos[i] = slotDTO(slot)
	}
	return dtos, nil
}

// --- Helpers ---

func (s *LotService) ownedLot(ctx context.Context, actor auth.Actor, lotID uuid.UUID) (*parking.Lot, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !lot.IsOwnedBy(actor.AccountID) {
		return nil, apperr.NewForbiddenError("lot does not belong to this owner")
	}
	return lot, nil
}

func (s *LotService) toLotDTO(ctx context.Context, lot *parking.Lot) (LotDTO, error) {
	available, err := s.lotRepo.CountAvailableSlots(ctx, []uuid.UUID{lot.ID()})
	if err != nil {
		return LotDTO{}, err
	}
	avg, count, err := s.reviewRepo.AverageRating(ctx, lot.ID())
	if err != nil {
		return LotDTO{}, err
	}
	return lotDTO(lot, available[lot.ID()], avg, count), nil
}

func lotDTO(l *parking.Lot, available int64, avgRating float64, reviewCount int64) LotDTO {
	return LotDTO{
		ID:                   l.ID(),
		OwnerID:              l.OwnerID(),
		Name:                 l.Name(),
		Street:               l.Street(),
		Locality:             l.Locality(),
		City:                 l.City(),
		State:                l.State(),
		Pincode:              l.Pincode(),
		Latitude:             l.Latitude(),
		Longitude:            l.Longitude(),
		TotalSlots:           l.TotalSlots(),
		AvailableSlots:       available,
		WashServiceAvailable: l.WashServiceAvailable(),
		AverageRating:        avgRating,
		ReviewCount:          reviewCount,
		CreatedAt:            l.CreatedAt(),
	}
}

func slotDTO(s *parking.Slot) SlotDTO {
	return SlotDTO{
		ID:               s.ID(),
		LotID:            s.LotID(),
		VehicleType:      string(s.VehicleType()),
		HourlyPriceCents: s.HourlyPriceCents(),
		Available:        s.Available(),
	}
}
