package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/domain/apperr"
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/parking"
	paymentDomain "github.com/parkmate/service-parking/internal/domain/payment"
	"github.com/parkmate/service-parking/internal/events"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
)

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Method        string     `json:"method"`
	AmountCents   int64      `json:"amount_cents"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	VerifiedBy    *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PaymentService is the application service for payment listings, cash
// verification and gateway settlement events.
type PaymentService struct {
	paymentRepo paymentDomain.Repository
	bookingRepo bookingDomain.Repository
	lotRepo     parking.LotRepository
	policy      *bookingDomain.Policy
	notifier    notify.Notifier
	logger      *zap.Logger
	eventPublisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo paymentDomain.Repository,
	bookingRepo bookingDomain.Repository,
	lotRepo parking.LotRepository,
	policy *bookingDomain.Policy,
	notifier notify.Notifier,
	producer *kafka.Producer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		bookingRepo:    bookingRepo,
		lotRepo:        lotRepo,
		policy:         policy,
		notifier:       notifier,
		logger:         logger,
		eventPublisher: eventPublisher{producer: producer, logger: logger},
	}
}

// GetPayment retrieves a payment visible to the actor.
func (s *PaymentService) GetPayment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PaymentDTO, error) {
	pay, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, pay); err != nil {
		return nil, err
	}
	dto := toPaymentDTO(pay)
	return &dto, nil
}

// GetBookingPayments retrieves the payments of a booking, slot payment
// first.
func (s *PaymentService) GetBookingPayments(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) ([]PaymentDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && bk.UserID() != actor.AccountID {
		lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
		if err != nil {
			return nil, err
		}
		if !lot.IsOwnedBy(actor.AccountID) {
			return nil, apperr.NewForbiddenError("booking does not belong to this account")
		}
	}

	payments, err := s.paymentRepo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, nil
}

// GetUserPayments retrieves the actor's own payments.
func (s *PaymentService) GetUserPayments(ctx context.Context, userID uuid.UUID, page, limit int) (*apperr.PaginatedResult[PaymentDTO], error) {
	payments, total, err := s.paymentRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return paymentPage(payments, total, page, limit), nil
}

// GetOwnerPayments retrieves payments on bookings across the owner's
// lots.
func (s *PaymentService) GetOwnerPayments(ctx context.Context, ownerID uuid.UUID, page, limit int) (*apperr.PaginatedResult[PaymentDTO], error) {
	lots, err := s.lotRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	lotIDs := make([]uuid.UUID, len(lots))
	for i, l := range lots {
		lotIDs[i] = l.ID()
	}

	payments, total, err := s.paymentRepo.FindByLotIDs(ctx, lotIDs, page, limit)
	if err != nil {
		return nil, err
	}
	return paymentPage(payments, total, page, limit), nil
}

// ListAllPayments retrieves every payment (admin).
func (s *PaymentService) ListAllPayments(ctx context.Context, page, limit int) (*apperr.PaginatedResult[PaymentDTO], error) {
	payments, total, err := s.paymentRepo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return paymentPage(payments, total, page, limit), nil
}

// VerifyCashPayment settles a pending cash payment. When it is the
// booking's slot payment, the parking timer starts in the same
// transaction. Verifying twice changes nothing.
func (s *PaymentService) VerifyCashPayment(ctx context.Context, actor auth.Actor, paymentID uuid.UUID) (*PaymentDTO, error) {
	pay, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		bk, err := s.bookingRepo.FindByID(ctx, pay.BookingID())
		if err != nil {
			return nil, err
		}
		lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
		if err != nil {
			return nil, err
		}
		if !lot.IsOwnedBy(actor.AccountID) {
			return nil, apperr.NewForbiddenError("payment does not belong to this owner's lot")
		}
	}
	if !pay.Method().RequiresVerification() {
		return nil, apperr.NewConflictError("only cash payments require verification")
	}

	now := time.Now().UTC()
	var changed bool
	verified, err := s.bookingRepo.VerifyCashPayment(ctx, paymentID, func(p *paymentDomain.Payment, b *bookingDomain.Booking, isSlotPayment bool) error {
		var err error
		changed, err = p.Verify(actor.AccountID, now)
		if err != nil {
			return err
		}
		if changed && isSlotPayment && b.EndTime() == nil {
			return b.StartTimer(now, s.policy.Duration())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("cash payment verified",
			zap.String("payment_id", paymentID.String()),
			zap.String("verified_by", actor.AccountID.String()))

		s.publish(ctx, events.TopicPaymentEvents, events.PaymentVerified, paymentEvent(verified))
		s.notifier.Notify(verified.UserID(), "info", "your cash payment was verified")
	}

	dto := toPaymentDTO(verified)
	return &dto, nil
}

// ConfirmGatewayPayment settles the payment matching a gateway
// transaction reference. Invoked by the payment event consumer.
func (s *PaymentService) ConfirmGatewayPayment(ctx context.Context, transactionID string) error {
	pay, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if pay.Status() == paymentDomain.StatusSuccess {
		return nil
	}
	if err := pay.MarkSuccess(); err != nil {
		return err
	}
	if err := s.paymentRepo.Update(ctx, pay); err != nil {
		return err
	}

	s.notifier.Notify(pay.UserID(), "info", "your payment was confirmed")
	return nil
}

// FailGatewayPayment records a gateway rejection for the payment
// matching a transaction reference.
func (s *PaymentService) FailGatewayPayment(ctx context.Context, transactionID string) error {
	pay, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if pay.Status() == paymentDomain.StatusFailed {
		return nil
	}
	if err := pay.MarkFailed(); err != nil {
		return err
	}
	if err := s.paymentRepo.Update(ctx, pay); err != nil {
		return err
	}

	s.notifier.Notify(pay.UserID(), "warning", "your payment failed, please retry")
	return nil
}

// --- Helpers ---

func (s *PaymentService) authorizeRead(ctx context.Context, actor auth.Actor, pay *paymentDomain.Payment) error {
	if actor.IsAdmin() || pay.UserID() == actor.AccountID {
		return nil
	}
	bk, err := s.bookingRepo.FindByID(ctx, pay.BookingID())
	if err != nil {
		return err
	}
	lot, err := s.lotRepo.FindByID(ctx, bk.LotID())
	if err != nil {
		return err
	}
	if !lot.IsOwnedBy(actor.AccountID) {
		return apperr.NewForbiddenError("payment does not belong to this account")
	}
	return nil
}

func paymentPage(payments []*paymentDomain.Payment, total int64, page, limit int) *apperr.PaginatedResult[PaymentDTO] {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	result := apperr.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func paymentEvent(p *paymentDomain.Payment) events.PaymentEvent {
	return events.PaymentEvent{
		PaymentID:     p.ID(),
		BookingID:     p.BookingID(),
		UserID:        p.UserID(),
		Method:        string(p.Method()),
		AmountCents:   p.AmountCents(),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
	}
}

func toPaymentDTO(p *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
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
	}
}
