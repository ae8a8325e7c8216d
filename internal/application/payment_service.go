package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// PaymentRepository captures the persistence operations needed by the payment service.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	GetPaymentByBooking(ctx context.Context, bookingID string) (Payment, error)
	ListPaymentsByBookingUser(ctx context.Context, userID string) ([]Payment, error)
}

// BookingDirectory resolves bookings referenced by payments.
type BookingDirectory interface {
	GetBooking(ctx context.Context, id string) (Booking, error)
}

// PaymentService validates and persists payments against bookings.
type PaymentService struct {
	payments    PaymentRepository
	bookings    BookingDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPaymentService wires dependencies for the payment service.
func NewPaymentService(payments PaymentRepository, bookings BookingDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PaymentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		payments:    payments,
		bookings:    bookings,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreatePayment records a payment against an existing booking. Each booking
// accepts at most one payment; a second attempt fails with ErrPaymentExists.
// The booking owner is not checked here, any authenticated user may pay for
// any booking they can name.
func (s *PaymentService) CreatePayment(ctx context.Context, params CreatePaymentParams) (payment Payment, err error) {
	if s == nil {
		err = fmt.Errorf("PaymentService is nil")
		return
	}
	if s.payments == nil {
		err = fmt.Errorf("payment repository not configured")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking directory not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PaymentService", "CreatePayment",
		"principal_id", params.Principal.UserID, "booking_id", params.Input.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "payment failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("payment_id", payment.ID).InfoContext(ctx, "payment recorded")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	bookingID := strings.TrimSpace(params.Input.BookingID)
	if bookingID == "" {
		vErr.add("booking", "Booking is required.")
	}
	if params.Input.Amount.IsZero() || params.Input.Amount.IsNegative() {
		vErr.add("amount", "Amount must be greater than zero.")
	}
	if strings.TrimSpace(params.Input.Status) == "" {
		vErr.add("status", "Status is required.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var booking Booking
	booking, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			vErr.add("booking", "Booking does not exist.")
			err = vErr
		}
		return
	}

	if _, lookupErr := s.payments.GetPaymentByBooking(ctx, booking.ID); lookupErr == nil {
		err = ErrPaymentExists
		return
	} else if !errors.Is(lookupErr, ErrNotFound) {
		err = lookupErr
		return
	}

	candidate := Payment{
		ID:        s.idGenerator(),
		BookingID: booking.ID,
		Amount:    params.Input.Amount,
		Status:    strings.TrimSpace(params.Input.Status),
		PaidAt:    s.now(),
	}

	payment, err = s.payments.CreatePayment(ctx, candidate)
	if err != nil {
		// A concurrent payment can slip past the lookup above; the storage
		// uniqueness constraint reports it as ErrAlreadyExists.
		if errors.Is(err, ErrAlreadyExists) {
			err = ErrPaymentExists
		}
		return
	}

	return payment, nil
}

// ListPayments returns payments attached to the calling principal's bookings.
func (s *PaymentService) ListPayments(ctx context.Context, principal Principal) (payments []Payment, err error) {
	if s == nil {
		err = fmt.Errorf("PaymentService is nil")
		return
	}
	if s.payments == nil {
		err = fmt.Errorf("payment repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PaymentService", "ListPayments", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "payment listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(payments)).DebugContext(ctx, "payments listed")
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	return s.payments.ListPaymentsByBookingUser(ctx, principal.UserID)
}
