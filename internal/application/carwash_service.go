package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/carwash"
	"github.com/parkmate/service-parking/internal/domain/parking"
	paymentDomain "github.com/parkmate/service-parking/internal/domain/payment"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// WashTypeRequest holds the data to create or update a catalog entry.
type WashTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=1"`
}

// PurchaseAddonRequest holds the data to attach a wash to a booking.
type PurchaseAddonRequest struct {
	WashTypeID    uuid.UUID `json:"wash_type_id" binding:"required"`
	PaymentMethod string    `json:"payment_method" binding:"required"`
}

// WashTypeDTO is the response representation of a catalog entry.
type WashTypeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// WashAddonDTO is the response representation of a wash add-on.
type WashAddonDTO struct {
	ID         uuid.UUID  `json:"id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	WashTypeID uuid.UUID  `json:"wash_type_id"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	PriceCents int64      `json:"price_cents"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CarwashService is the application service for the wash catalog and
// wash add-ons attached to parking bookings.
type CarwashService struct {
	washTypeRepo carwash.WashTypeRepository
	addonRepo    carwash.AddonRepository
	bookingRepo  bookingDomain.Repository
	lotRepo      parking.LotRepository
	notifier     notify.Notifier
	logger       *zap.Logger
	eventPublisher
}

// NewCarwashService creates a new CarwashService.
func NewCarwashService(
	washTypeRepo carwash.WashTypeRepository,
	addonRepo carwash.AddonRepository,
	bookingRepo bookingDomain.Repository,
	lotRepo parking.LotRepository,
	notifier notify.Notifier,
	producer *kafka.Producer,
	logger *zap.Logger,
) *CarwashService {
	return &CarwashService{
		washTypeRepo:   washTypeRepo,
		addonRepo:      addonRepo,
		bookingRepo:    bookingRepo,
		lotRepo:        lotRepo,
		notifier:       notifier,
		logger:         logger,
		eventPublisher: eventPublisher{producer: producer, logger: logger},
	}
}

// --- Wash catalog (admin-managed) ---

// CreateWashType adds a new entry to the wash catalog.
func (s *CarwashService) CreateWashType(ctx context.Context, req WashTypeRequest) (*WashTypeDTO, error) {
	wt, err := carwash.NewWashType(req.Name, req.Description, req.PriceCents)
	if err != nil {
		return nil, err
	}
	if err := s.washTypeRepo.Save(ctx, wt); err != nil {
		return nil, err
	}
	dto := toWashTypeDTO(wt)
	return &dto, nil
}

// UpdateWashType changes an existing catalog entry.
func (s *CarwashService) UpdateWashType(ctx context.Context, id uuid.UUID, req WashTypeRequest) (*WashTypeDTO, error) {
	wt, err := s.washTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := wt.Update(req.Name, req.Description, req.PriceCents); err != nil {
		return nil, err
	}
	if err := s.washTypeRepo.Update(ctx, wt); err != nil {
		return nil, err
	}
	dto := toWashTypeDTO(wt)
	return &dto, nil
}

// DeleteWashType removes a catalog entry.
func (s *CarwashService) DeleteWashType(ctx context.Context, id uuid.UUID) error {
	if _, err := s.washTypeRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.washTypeRepo.Delete(ctx, id)
}

// ListWashTypes retrieves the full wash catalog.
func (s *CarwashService) ListWashTypes(ctx context.Context) ([]WashTypeDTO, error) {
	types, err := s.washTypeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]WashTypeDTO, len(types))
	for i, wt := range types {
		dtos[i] = toWashTypeDTO(wt)
	}
	return dtos, nil
}

// --- Wash add-ons ---

// PurchaseAddon attaches a wash service to an open parking booking. The
// payment, the add-on and the employee assignment are written in one
// transaction while the booking row is locked, so a failed purchase
// never leaves a stray payment behind.
func (s *CarwashService) PurchaseAddon(ctx context.Context, userID, bookingID uuid.UUID, req PurchaseAddonRequest) (*WashAddonDTO, error) {
	method, err := paymentDomain.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != userID {
		return nil, apperr.NewForbiddenError("booking does not belong to this user")
	}
	if bk.Status() != bookingDomain.StatusBooked {
		return nil, apperr.NewConflictError("wash services can only be added to an active booking")
	}
	if bk.IsExpired(time.Now().UTC()) {
		return nil, apperr.NewConflictError("the booking has already expired")
	}

	washType, err := s.washTypeRepo.FindByID(ctx, req.WashTypeID)
	if err != nil {
		return nil, err
	}

	lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
	if err != nil {
		return nil, err
	}
	if !lot.WashServiceAvailable() {
		return nil, apperr.NewConflictError("this lot does not offer wash services")
	}

	// Rechecked under the booking lock inside PurchaseTx; this rejects
	// the common case without taking the lock.
	if _, err := s.addonRepo.FindOpenByBookingID(ctx, bookingID); err == nil {
		return nil, apperr.NewConflictError("booking already has an open wash add-on")
	} else {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind() != apperr.KindNotFound {
			return nil, err
		}
	}

	var addon *carwash.WashAddon
	err = s.addonRepo.PurchaseTx(ctx, bookingID, func(tx carwash.AddonPurchaseTx) error {
		exists, err := tx.OpenAddonExists(bookingID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.NewConflictError("booking already has an open wash add-on")
		}

		pay, err := paymentDomain.NewPayment(bookingID, userID, method, washType.PriceCents(), gatewayReference(method))
		if err != nil {
			return err
		}
		if err := tx.SavePayment(pay); err != nil {
			return err
		}

		employeeID, err := tx.PickLeastLoadedEmployee(lot.OwnerID())
		if err != nil {
			return err
		}

		active := pay.Status() == paymentDomain.StatusSuccess && employeeID != nil
		addon, err = carwash.NewWashAddon(bookingID, washType.ID(), employeeID, washType.PriceCents(), active)
		if err != nil {
			return err
		}
		if err := tx.SaveAddon(addon); err != nil {
			return err
		}

		if employeeID != nil {
			return tx.RecalculateWorkload(*employeeID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wash addon purchased",
		zap.String("addon_id", addon.ID().String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("status", addon.Status().String()))

	s.publish(ctx, events.TopicParkingEvents, events.WashAddonCreated, addonEvent(addon, userID, lot.ID()))
	s.notifier.Notify(lot.OwnerID(), "info", "a wash service was purchased for a booking at "+lot.Name())

	dto := toWashAddonDTO(addon)
	return &dto, nil
}

// GetBookingAddons retrieves the add-ons of a booking.
func (s *CarwashService) GetBookingAddons(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) ([]WashAddonDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingRead(ctx, actor, bk); err != nil {
		return nil, err
	}

	addons, err := s.addonRepo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]WashAddonDTO, len(addons))
	for i, a := range addons {
		dtos[i] = toWashAddonDTO(a)
	}
	return dtos, nil
}

// UpdateAddonStatus transitions a wash add-on, recalculating the
// assigned employee's workload. Only the lot owner or an admin may
// progress an add-on.
func (s *CarwashService) UpdateAddonStatus(ctx context.Context, actor auth.Actor, addonID uuid.UUID, rawStatus string) (*WashAddonDTO, error) {
	target, err := carwash.ParseAddonStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	existing, err := s.addonRepo.FindByID(ctx, addonID)
	if err != nil {
		return nil, err
	}
	bk, err := s.bookingRepo.FindByID(ctx, existing.BookingID())
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
		if err != nil {
			return nil, err
		}
		if !lot.IsOwnedBy(actor.AccountID) {
			return nil, apperr.NewForbiddenError("add-on does not belong to this owner's lot")
		}
	}

	updated, err := s.addonRepo.UpdateStatusTx(ctx, addonID, func(a *carwash.WashAddon) error {
		return a.TransitionTo(target)
	})
	if err != nil {
		return nil, err
	}

	if updated.Status() == carwash.AddonStatusCompleted {
		s.publish(ctx, events.TopicParkingEvents, events.WashCompleted, addonEvent(updated, bk.UserID(), bk.LotID()))
		s.notifier.Notify(bk.UserID(), "info", "your car wash has been completed")
	}

	dto := toWashAddonDTO(updated)
	return &dto, nil
}

// --- Helpers ---

func (s *CarwashService) authorizeBookingRead(ctx context.Context, actor auth.Actor, bk *bookingDomain.Booking) error {
	if actor.IsAdmin() || bk.UserID() == actor.AccountID {
		return nil
	}
	lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
	if err != nil {
		return err
	}
	if !lot.IsOwnedBy(actor.AccountID) {
		return apperr.NewForbiddenError("booking does not belong to this account")
	}
	return nil
}

func addonEvent(a *carwash.WashAddon, userID, lotID uuid.UUID) events.WashEvent {
	bookingID := a.BookingID()
	return events.WashEvent{
		WashID:     a.ID(),
		BookingID:  &bookingID,
		UserID:     userID,
		LotID:      &lotID,
		EmployeeID: a.EmployeeID(),
		Status:     a.Status().String(),
		PriceCents: a.PriceCents(),
	}
}

func toWashTypeDTO(wt *carwash.WashType) WashTypeDTO {
	return WashTypeDTO{
		ID:          wt.ID(),
		Name:        wt.Name(),
		Description: wt.Description(),
		PriceCents:  wt.PriceCents(),
		CreatedAt:   wt.CreatedAt(),
	}
}

func toWashAddonDTO(a *carwash.WashAddon) WashAddonDTO {
	return WashAddonDTO{
		ID:         a.ID(),
		BookingID:  a.BookingID(),
		WashTypeID: a.WashTypeID(),
		EmployeeID: a.EmployeeID(),
		PriceCents: a.PriceCents(),
		Status:     a.Status().String(),
		CreatedAt:  a.CreatedAt(),
	}
}
