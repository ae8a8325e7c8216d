package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/ticket-booking/internal/application"
)

// MemoryStore is an in-memory implementation of the application layer
// repository interfaces. It enforces the same uniqueness rules as the SQLite
// storage so service tests observe realistic error behavior.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]application.User
	hashes   map[string]string
	tokens   map[string]application.Token
	events   map[string]application.Event
	bookings map[string]application.Booking
	payments map[string]application.Payment
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]application.User),
		hashes:   make(map[string]string),
		tokens:   make(map[string]application.Token),
		events:   make(map[string]application.Event),
		bookings: make(map[string]application.Booking),
		payments: make(map[string]application.Payment),
	}
}

// AddUser seeds a user together with its password hash.
func (s *MemoryStore) AddUser(user application.User, passwordHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.hashes[user.ID] = passwordHash
}

// AddEvent seeds an event.
func (s *MemoryStore) AddEvent(event application.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
}

// AddBooking seeds a booking.
func (s *MemoryStore) AddBooking(booking application.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
}

// AddToken seeds a token.
func (s *MemoryStore) AddToken(token application.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Value] = token
}

// SetUserActive toggles the active flag on a seeded user.
func (s *MemoryStore) SetUserActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsActive = active
		s.users[id] = user
	}
}

// TokenByValue returns a stored token for assertions.
func (s *MemoryStore) TokenByValue(value string) (application.Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	return token, ok
}

// CreateUser stores a new user, rejecting duplicate email addresses.
func (s *MemoryStore) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return application.User{}, application.ErrAlreadyExists
		}
	}
	s.users[user.ID] = user
	s.hashes[user.ID] = passwordHash
	return user, nil
}

// GetUser returns a user by id.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail returns a user by email address.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return application.User{}, application.ErrNotFound
}

// GetUserCredentialsByEmail returns the credentials for a user by email.
func (s *MemoryStore) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return application.UserCredentials{
				User:         user,
				PasswordHash: s.hashes[user.ID],
				Disabled:     !user.IsActive,
			}, nil
		}
	}
	return application.UserCredentials{}, application.ErrNotFound
}

// CreateToken stores a token keyed by its opaque value.
func (s *MemoryStore) CreateToken(ctx context.Context, token application.Token) (application.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token.Value]; exists {
		return application.Token{}, application.ErrAlreadyExists
	}
	s.tokens[token.Value] = token
	return token, nil
}

// GetToken returns a token by its opaque value.
func (s *MemoryStore) GetToken(ctx context.Context, value string) (application.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return application.Token{}, application.ErrNotFound
	}
	return token, nil
}

// RevokeToken marks a token as revoked, keeping the original revocation time
// on repeated calls.
func (s *MemoryStore) RevokeToken(ctx context.Context, value string, revokedAt time.Time) (application.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return application.Token{}, application.ErrNotFound
	}
	if token.RevokedAt == nil {
		token.RevokedAt = &revokedAt
		s.tokens[value] = token
	}
	return token, nil
}

// DeleteExpiredTokens removes tokens whose expiry is at or before the reference.
func (s *MemoryStore) DeleteExpiredTokens(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for value, token := range s.tokens {
		if !token.ExpiresAt.After(reference) {
			delete(s.tokens, value)
		}
	}
	return nil
}

// CreateEvent stores an event.
func (s *MemoryStore) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return event, nil
}

// GetEvent returns an event by id.
func (s *MemoryStore) GetEvent(ctx context.Context, id string) (application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return application.Event{}, application.ErrNotFound
	}
	return event, nil
}

// ListEvents returns all events ordered by start time.
func (s *MemoryStore) ListEvents(ctx context.Context) ([]application.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]application.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	return events, nil
}

// CreateBooking stores a booking.
func (s *MemoryStore) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = booking
	return booking, nil
}

// GetBooking returns a booking by id.
func (s *MemoryStore) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return application.Booking{}, application.ErrNotFound
	}
	return booking, nil
}

// ListBookingsByUser returns bookings belonging to a user ordered by booking time.
func (s *MemoryStore) ListBookingsByUser(ctx context.Context, userID string) ([]application.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings := make([]application.Booking, 0)
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].BookedAt.Before(bookings[j].BookedAt)
	})
	return bookings, nil
}

// CreatePayment stores a payment, rejecting a second payment for the same booking.
func (s *MemoryStore) CreatePayment(ctx context.Context, payment application.Payment) (application.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.BookingID == payment.BookingID {
			return application.Payment{}, application.ErrAlreadyExists
		}
	}
	s.payments[payment.ID] = payment
	return payment, nil
}

// GetPaymentByBooking returns the payment attached to a booking.
func (s *MemoryStore) GetPaymentByBooking(ctx context.Context, bookingID string) (application.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, payment := range s.payments {
		if payment.BookingID == bookingID {
			return payment, nil
		}
	}
	return application.Payment{}, application.ErrNotFound
}

// ListPaymentsByBookingUser returns payments attached to a user's bookings
// ordered by payment time.
func (s *MemoryStore) ListPaymentsByBookingUser(ctx context.Context, userID string) ([]application.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payments := make([]application.Payment, 0)
	for _, payment := range s.payments {
		booking, ok := s.bookings[payment.BookingID]
		if ok && booking.UserID == userID {
			payments = append(payments, payment)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	return payments, nil
}
