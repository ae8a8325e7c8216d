package persistence

import "time"

// User represents a registered account in the booking domain.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event represents a bookable event created by an event manager.
type Event struct {
	ID          string
	Name        string
	Description string
	StartsAt    time.Time
	Location    string
	Category    *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking represents a ticket reservation linking a user to an event.
type Booking struct {
	ID              string
	UserID          string
	EventID         string
	NumberOfTickets int
	BookedAt        time.Time
}

// Payment represents the single payment attached to a booking.
// Amount is a fixed-point decimal serialized with two fractional digits.
type Payment struct {
	ID        string
	BookingID string
	Amount    string
	Status    string
	PaidAt    time.Time
}

// Token represents an opaque bearer credential issued to a user.
// Refresh tokens become part of the revocation list once RevokedAt is set.
type Token struct {
	ID        string
	UserID    string
	Value     string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Token kinds persisted in the tokens table.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)
