package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies the capability level of a registered account.
type Role string

const (
	// RoleUser can book tickets and pay for bookings.
	RoleUser Role = "user"
	// RoleEventManager can additionally create events.
	RoleEventManager Role = "event_manager"
)

// ParseRole validates a caller supplied role string.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleEventManager:
		return Role(value), true
	}
	return "", false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// User represents a registered account exposed by the application services.
type User struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// RegisterParams captures the fields submitted during registration.
type RegisterParams struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
	Password  string
	Role      string
}

// TokenKind distinguishes short-lived access tokens from revocable refresh tokens.
type TokenKind string

const (
	// TokenKindAccess marks a short-lived bearer credential.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh marks a longer-lived credential that can be revoked on logout.
	TokenKindRefresh TokenKind = "refresh"
)

// Token represents an opaque bearer credential bound to a user and an expiry.
type Token struct {
	ID        string
	UserID    string
	Value     string
	Kind      TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult carries the token pair issued by a successful login.
type LoginResult struct {
	User         User
	AccessToken  Token
	RefreshToken Token
}

// RefreshParams captures the data required to exchange a refresh token.
type RefreshParams struct {
	RefreshToken string
}

// RefreshResult carries the access token issued by a refresh exchange.
type RefreshResult struct {
	AccessToken Token
}

// Event represents a bookable event.
type Event struct {
	ID          string
	Name        string
	Description string
	StartsAt    time.Time
	Location    string
	Category    string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventInput captures caller provided event fields. The owner is never part of
// the input; it is always taken from the authenticated principal.
type EventInput struct {
	Name        string
	Description string
	StartsAt    time.Time
	Location    string
	Category    string
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// Booking represents a ticket reservation.
type Booking struct {
	ID              string
	UserID          string
	EventID         string
	NumberOfTickets int
	BookedAt        time.Time
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	EventID         string
	NumberOfTickets int
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// Payment represents the single payment attached to a booking.
type Payment struct {
	ID        string
	BookingID string
	Amount    decimal.Decimal
	Status    string
	PaidAt    time.Time
}

// PaymentInput captures caller provided payment fields.
type PaymentInput struct {
	BookingID string
	Amount    decimal.Decimal
	Status    string
}

// CreatePaymentParams wraps the data required to record a payment.
type CreatePaymentParams struct {
	Principal Principal
	Input     PaymentInput
}
