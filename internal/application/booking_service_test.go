package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()

	t.Run("attributes the booking to the caller", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		events := newEventRepositoryStub()
		events.events["event-1"] = Event{ID: "event-1", Name: "Concert"}
		bookings := newBookingRepositoryStub()

		svc := NewBookingService(bookings, events, nil, nil, func() string { return "booking-1" }, func() time.Time { return now }, nil)

		booking, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1", Role: RoleUser},
			Input:     BookingInput{EventID: "event-1", NumberOfTickets: 3},
		})
		if err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}

		if booking.UserID != "user-1" {
			t.Fatalf("expected booking owned by caller, got %q", booking.UserID)
		}
		if !booking.BookedAt.Equal(now) {
			t.Fatalf("expected booking timestamp %v, got %v", now, booking.BookedAt)
		}
	})

	t.Run("rejects unknown events with a field error", func(t *testing.T) {
		t.Parallel()

		svc := NewBookingService(newBookingRepositoryStub(), newEventRepositoryStub(), nil, nil, nil, nil, nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input:     BookingInput{EventID: "missing", NumberOfTickets: 1},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["event"] != "Event does not exist." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("rejects non-positive ticket counts", func(t *testing.T) {
		t.Parallel()

		svc := NewBookingService(newBookingRepositoryStub(), newEventRepositoryStub(), nil, nil, nil, nil, nil)

		_, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input:     BookingInput{EventID: "event-1", NumberOfTickets: 0},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["number_of_tickets"] != "Number of tickets must be greater than zero." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("sends the booking confirmation without failing the booking", func(t *testing.T) {
		t.Parallel()

		events := newEventRepositoryStub()
		events.events["event-1"] = Event{ID: "event-1", Name: "Concert"}
		users := &credentialStoreStub{
			credentials: UserCredentials{User: User{ID: "user-1", Email: "user@example.com", IsActive: true}},
		}
		mailer := &bookingMailerStub{sent: make(chan Booking, 1), err: errors.New("smtp down")}

		svc := NewBookingService(newBookingRepositoryStub(), events, users, mailer, func() string { return "booking-2" }, nil, nil)

		booking, err := svc.CreateBooking(context.Background(), CreateBookingParams{
			Principal: Principal{UserID: "user-1"},
			Input:     BookingInput{EventID: "event-1", NumberOfTickets: 2},
		})
		if err != nil {
			t.Fatalf("CreateBooking failed despite mail error: %v", err)
		}

		select {
		case sent := <-mailer.sent:
			if sent.ID != booking.ID {
				t.Fatalf("expected confirmation for %q, got %q", booking.ID, sent.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected booking confirmation to be attempted")
		}
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	t.Parallel()

	t.Run("returns only the caller's bookings", func(t *testing.T) {
		t.Parallel()

		repo := newBookingRepositoryStub()
		repo.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "user-1"}
		repo.bookings["booking-2"] = Booking{ID: "booking-2", UserID: "user-2"}

		svc := NewBookingService(repo, newEventRepositoryStub(), nil, nil, nil, nil, nil)

		bookings, err := svc.ListBookings(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(bookings) != 1 || bookings[0].ID != "booking-1" {
			t.Fatalf("expected only the caller's booking, got %#v", bookings)
		}
	})

	t.Run("rejects anonymous callers", func(t *testing.T) {
		t.Parallel()

		svc := NewBookingService(newBookingRepositoryStub(), newEventRepositoryStub(), nil, nil, nil, nil, nil)

		if _, err := svc.ListBookings(context.Background(), Principal{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

// bookingRepositoryStub implements BookingRepository for tests.
type bookingRepositoryStub struct {
	bookings map[string]Booking

	createErr error
}

func newBookingRepositoryStub() *bookingRepositoryStub {
	return &bookingRepositoryStub{bookings: make(map[string]Booking)}
}

func (s *bookingRepositoryStub) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	if s.createErr != nil {
		return Booking{}, s.createErr
	}
	s.bookings[booking.ID] = booking
	return booking, nil
}

func (s *bookingRepositoryStub) GetBooking(ctx context.Context, id string) (Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return booking, nil
}

func (s *bookingRepositoryStub) ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error) {
	bookings := make([]Booking, 0)
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

// bookingMailerStub records booking confirmations.
type bookingMailerStub struct {
	sent chan Booking
	err  error
}

func (m *bookingMailerStub) SendBookingConfirmation(ctx context.Context, user User, event Event, booking Booking) error {
	m.sent <- booking
	return m.err
}
