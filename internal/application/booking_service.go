package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// BookingRepository captures the persistence operations needed by the booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error)
}

// EventDirectory resolves events referenced by bookings.
type EventDirectory interface {
	GetEvent(ctx context.Context, id string) (Event, error)
}

// UserDirectory resolves users for notification delivery.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// BookingMailer sends the booking confirmation notification. Delivery is
// fire-and-forget; failures are logged and never fail the booking.
type BookingMailer interface {
	SendBookingConfirmation(ctx context.Context, user User, event Event, booking Booking) error
}

// BookingService validates and persists ticket reservations.
type BookingService struct {
	bookings    BookingRepository
	events      EventDirectory
	users       UserDirectory
	mailer      BookingMailer
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for the booking service. The users
// directory and mailer are optional; without them no confirmation is sent.
func NewBookingService(bookings BookingRepository, events EventDirectory, users UserDirectory, mailer BookingMailer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		events:      events,
		users:       users,
		mailer:      mailer,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateBooking stores a reservation for the calling principal. The booking is
// always attributed to the caller regardless of any user submitted in the
// request body.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event directory not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "BookingService", "CreateBooking",
		"principal_id", params.Principal.UserID, "event_id", params.Input.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	eventID := strings.TrimSpace(params.Input.EventID)
	if eventID == "" {
		vErr.add("event", "Event is required.")
	}
	if params.Input.NumberOfTickets <= 0 {
		vErr.add("number_of_tickets", "Number of tickets must be greater than zero.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			vErr.add("event", "Event does not exist.")
			err = vErr
		}
		return
	}

	candidate := Booking{
		ID:              s.idGenerator(),
		UserID:          params.Principal.UserID,
		EventID:         event.ID,
		NumberOfTickets: params.Input.NumberOfTickets,
		BookedAt:        s.now(),
	}

	booking, err = s.bookings.CreateBooking(ctx, candidate)
	if err != nil {
		return
	}

	if s.mailer != nil && s.users != nil {
		confirmed := booking
		bookedEvent := event
		mailCtx := context.WithoutCancel(ctx)
		go func() {
			user, lookupErr := s.users.GetUser(mailCtx, confirmed.UserID)
			if lookupErr != nil {
				logger.ErrorContext(mailCtx, "failed to resolve user for booking confirmation", "error", lookupErr)
				return
			}
			if mailErr := s.mailer.SendBookingConfirmation(mailCtx, user, bookedEvent, confirmed); mailErr != nil {
				logger.ErrorContext(mailCtx, "failed to send booking confirmation", "error", mailErr)
			}
		}()
	}

	return booking, nil
}

// ListBookings returns the reservations belonging to the calling principal.
// Other users' bookings are never visible.
func (s *BookingService) ListBookings(ctx context.Context, principal Principal) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "BookingService", "ListBookings", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(bookings)).DebugContext(ctx, "bookings listed")
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	return s.bookings.ListBookingsByUser(ctx, principal.UserID)
}
