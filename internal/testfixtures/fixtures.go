package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/ticket-booking/internal/application"
	"github.com/example/ticket-booking/internal/persistence"
)

var (
	userCounter    uint64
	eventCounter   uint64
	bookingCounter uint64
	paymentCounter uint64
	tokenCounter   uint64
)

var referenceTime = time.Date(2025, time.June, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         application.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		Username:     id,
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleUser,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserDisabled marks the account as deactivated.
func WithUserDisabled() UserOption {
	return func(f *UserFixture) {
		f.IsActive = false
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Email:     f.Email,
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Role:      f.Role,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     !f.IsActive,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		Username:     f.Username,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		PasswordHash: f.PasswordHash,
		Role:         string(f.Role),
		IsActive:     f.IsActive,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event record.
type EventFixture struct {
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

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EventFixture{
		ID:          id,
		Name:        fmt.Sprintf("Event %03d", idx),
		Description: "A test event",
		StartsAt:    referenceTime.Add(time.Duration(idx) * 24 * time.Hour),
		Location:    "Main Hall",
		Category:    "music",
		CreatedBy:   "user-001",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventCreatedBy sets the owning user on the fixture.
func WithEventCreatedBy(userID string) EventOption {
	return func(f *EventFixture) {
		f.CreatedBy = userID
	}
}

// WithEventStartsAt sets the event date on the fixture.
func WithEventStartsAt(t time.Time) EventOption {
	return func(f *EventFixture) {
		f.StartsAt = t
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		StartsAt:    f.StartsAt,
		Location:    f.Location,
		Category:    f.Category,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	event := persistence.Event{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		StartsAt:    f.StartsAt,
		Location:    f.Location,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Category != "" {
		category := f.Category
		event.Category = &category
	}
	return event
}

// ----------------------------- Booking fixtures -----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID              string
	UserID          string
	EventID         string
	NumberOfTickets int
	BookedAt        time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:              fmt.Sprintf("booking-%03d", idx),
		UserID:          "user-001",
		EventID:         "event-001",
		NumberOfTickets: 2,
		BookedAt:        referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingUser sets the owning user on the fixture.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingEvent sets the referenced event on the fixture.
func WithBookingEvent(eventID string) BookingOption {
	return func(f *BookingFixture) {
		f.EventID = eventID
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		EventID:         f.EventID,
		NumberOfTickets: f.NumberOfTickets,
		BookedAt:        f.BookedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		EventID:         f.EventID,
		NumberOfTickets: f.NumberOfTickets,
		BookedAt:        f.BookedAt,
	}
}

// ----------------------------- Payment fixtures -----------------------------

// PaymentFixture represents a deterministic payment record.
type PaymentFixture struct {
	ID        string
	BookingID string
	Amount    decimal.Decimal
	Status    string
	PaidAt    time.Time
}

// PaymentOption configures the generated payment fixture.
type PaymentOption func(*PaymentFixture)

// NewPaymentFixture returns a deterministic payment fixture with optional overrides.
func NewPaymentFixture(opts ...PaymentOption) PaymentFixture {
	idx := atomic.AddUint64(&paymentCounter, 1)
	fixture := PaymentFixture{
		ID:        fmt.Sprintf("payment-%03d", idx),
		BookingID: "booking-001",
		Amount:    decimal.NewFromInt(100),
		Status:    "completed",
		PaidAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPaymentBooking sets the referenced booking on the fixture.
func WithPaymentBooking(bookingID string) PaymentOption {
	return func(f *PaymentFixture) {
		f.BookingID = bookingID
	}
}

// WithPaymentAmount sets the amount on the fixture.
func WithPaymentAmount(amount decimal.Decimal) PaymentOption {
	return func(f *PaymentFixture) {
		f.Amount = amount
	}
}

// Application returns the fixture as an application.Payment value.
func (f PaymentFixture) Application() application.Payment {
	return application.Payment{
		ID:        f.ID,
		BookingID: f.BookingID,
		Amount:    f.Amount,
		Status:    f.Status,
		PaidAt:    f.PaidAt,
	}
}

// Persistence returns the fixture as a persistence.Payment value.
func (f PaymentFixture) Persistence() persistence.Payment {
	return persistence.Payment{
		ID:        f.ID,
		BookingID: f.BookingID,
		Amount:    f.Amount.StringFixed(2),
		Status:    f.Status,
		PaidAt:    f.PaidAt,
	}
}

// ----------------------------- Token fixtures -----------------------------

// TokenFixture represents a deterministic token record.
type TokenFixture struct {
	ID        string
	UserID    string
	Value     string
	Kind      application.TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenOption configures the generated token fixture.
type TokenOption func(*TokenFixture)

// NewTokenFixture returns a deterministic token fixture with optional overrides.
func NewTokenFixture(opts ...TokenOption) TokenFixture {
	idx := atomic.AddUint64(&tokenCounter, 1)
	id := fmt.Sprintf("token-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	fixture := TokenFixture{
		ID:        id,
		UserID:    "user-001",
		Value:     fmt.Sprintf("%s-value", id),
		Kind:      application.TokenKindAccess,
		ExpiresAt: created.Add(15 * time.Minute),
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTokenUser sets the owning user on the fixture.
func WithTokenUser(userID string) TokenOption {
	return func(f *TokenFixture) {
		f.UserID = userID
	}
}

// WithTokenKind sets the token kind on the fixture.
func WithTokenKind(kind application.TokenKind) TokenOption {
	return func(f *TokenFixture) {
		f.Kind = kind
	}
}

// WithTokenExpiresAt sets the expiry on the fixture.
func WithTokenExpiresAt(t time.Time) TokenOption {
	return func(f *TokenFixture) {
		f.ExpiresAt = t
	}
}

// WithTokenRevokedAt marks the token as revoked at the given instant.
func WithTokenRevokedAt(t time.Time) TokenOption {
	return func(f *TokenFixture) {
		f.RevokedAt = &t
	}
}

// Application returns the fixture as an application.Token value.
func (f TokenFixture) Application() application.Token {
	return application.Token{
		ID:        f.ID,
		UserID:    f.UserID,
		Value:     f.Value,
		Kind:      f.Kind,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: f.RevokedAt,
	}
}

// Persistence returns the fixture as a persistence.Token value.
func (f TokenFixture) Persistence() persistence.Token {
	return persistence.Token{
		ID:        f.ID,
		UserID:    f.UserID,
		Value:     f.Value,
		Kind:      string(f.Kind),
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: f.RevokedAt,
	}
}
