package persistence

import (
	"context"
	"time"
)

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// EventRepository exposes persistence operations for events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
}

// BookingRepository exposes persistence operations for bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error)
}

// PaymentRepository exposes persistence operations for payments.
// CreatePayment returns ErrDuplicate when the booking already carries a payment.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment Payment) error
	GetPaymentByBooking(ctx context.Context, bookingID string) (Payment, error)
	ListPaymentsByBookingUser(ctx context.Context, userID string) ([]Payment, error)
}

// TokenRepository stores issued bearer tokens and the refresh-token revocation list.
type TokenRepository interface {
	CreateToken(ctx context.Context, token Token) (Token, error)
	GetToken(ctx context.Context, value string) (Token, error)
	RevokeToken(ctx context.Context, value string, revokedAt time.Time) (Token, error)
	DeleteExpiredTokens(ctx context.Context, reference time.Time) error
}
