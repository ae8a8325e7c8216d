package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/ticket-booking/internal/application"
	"github.com/example/ticket-booking/internal/persistence"
)

// mapPersistenceError translates persistence sentinels into their application
// layer counterparts so services only ever see application errors.
func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return application.ErrNotFound
	default:
		return err
	}
}

type userStoreAdapter struct {
	repo persistence.UserRepository
}

func newUserStoreAdapter(repo persistence.UserRepository) *userStoreAdapter {
	return &userStoreAdapter{repo: repo}
}

func (a *userStoreAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapPersistenceError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     !stored.IsActive,
	}, nil
}

type tokenRepositoryAdapter struct {
	repo persistence.TokenRepository
}

func newTokenRepositoryAdapter(repo persistence.TokenRepository) *tokenRepositoryAdapter {
	return &tokenRepositoryAdapter{repo: repo}
}

func (a *tokenRepositoryAdapter) CreateToken(ctx context.Context, token application.Token) (application.Token, error) {
	stored, err := a.repo.CreateToken(ctx, toPersistenceToken(token))
	if err != nil {
		return application.Token{}, mapPersistenceError(err)
	}
	return toApplicationToken(stored), nil
}

func (a *tokenRepositoryAdapter) GetToken(ctx context.Context, value string) (application.Token, error) {
	stored, err := a.repo.GetToken(ctx, value)
	if err != nil {
		return application.Token{}, mapPersistenceError(err)
	}
	return toApplicationToken(stored), nil
}

func (a *tokenRepositoryAdapter) RevokeToken(ctx context.Context, value string, revokedAt time.Time) (application.Token, error) {
	stored, err := a.repo.RevokeToken(ctx, value, revokedAt)
	if err != nil {
		return application.Token{}, mapPersistenceError(err)
	}
	return toApplicationToken(stored), nil
}

func (a *tokenRepositoryAdapter) DeleteExpiredTokens(ctx context.Context, reference time.Time) error {
	return mapPersistenceError(a.repo.DeleteExpiredTokens(ctx, reference))
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, mapPersistenceError(err)
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, mapPersistenceError(err)
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, mapPersistenceError(err)
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) ListBookingsByUser(ctx context.Context, userID string) ([]application.Booking, error) {
	models, err := a.repo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

type paymentRepositoryAdapter struct {
	repo persistence.PaymentRepository
}

func newPaymentRepositoryAdapter(repo persistence.PaymentRepository) *paymentRepositoryAdapter {
	return &paymentRepositoryAdapter{repo: repo}
}

func (a *paymentRepositoryAdapter) CreatePayment(ctx context.Context, payment application.Payment) (application.Payment, error) {
	if err := a.repo.CreatePayment(ctx, toPersistencePayment(payment)); err != nil {
		return application.Payment{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetPaymentByBooking(ctx, payment.BookingID)
	if err != nil {
		return application.Payment{}, mapPersistenceError(err)
	}
	return toApplicationPayment(stored)
}

func (a *paymentRepositoryAdapter) GetPaymentByBooking(ctx context.Context, bookingID string) (application.Payment, error) {
	stored, err := a.repo.GetPaymentByBooking(ctx, bookingID)
	if err != nil {
		return application.Payment{}, mapPersistenceError(err)
	}
	return toApplicationPayment(stored)
}

func (a *paymentRepositoryAdapter) ListPaymentsByBookingUser(ctx context.Context, userID string) ([]application.Payment, error) {
	models, err := a.repo.ListPaymentsByBookingUser(ctx, userID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	payments := make([]application.Payment, 0, len(models))
	for _, model := range models {
		payment, convErr := toApplicationPayment(model)
		if convErr != nil {
			return nil, convErr
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Email:     model.Email,
		Username:  model.Username,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Role:      application.Role(model.Role),
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: passwordHash,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationToken(model persistence.Token) application.Token {
	return application.Token{
		ID:        model.ID,
		UserID:    model.UserID,
		Value:     model.Value,
		Kind:      application.TokenKind(model.Kind),
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceToken(token application.Token) persistence.Token {
	return persistence.Token{
		ID:        token.ID,
		UserID:    token.UserID,
		Value:     token.Value,
		Kind:      string(token.Kind),
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
		RevokedAt: cloneTime(token.RevokedAt),
	}
}

func toApplicationEvent(model persistence.Event) application.Event {
	category := ""
	if model.Category != nil {
		category = *model.Category
	}
	return application.Event{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		StartsAt:    model.StartsAt,
		Location:    model.Location,
		Category:    category,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	model := persistence.Event{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		StartsAt:    event.StartsAt,
		Location:    event.Location,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	if event.Category != "" {
		category := event.Category
		model.Category = &category
	}
	return model
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	return application.Booking{
		ID:              model.ID,
		UserID:          model.UserID,
		EventID:         model.EventID,
		NumberOfTickets: model.NumberOfTickets,
		BookedAt:        model.BookedAt,
	}
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:              booking.ID,
		UserID:          booking.UserID,
		EventID:         booking.EventID,
		NumberOfTickets: booking.NumberOfTickets,
		BookedAt:        booking.BookedAt,
	}
}

func toApplicationPayment(model persistence.Payment) (application.Payment, error) {
	amount, err := decimal.NewFromString(model.Amount)
	if err != nil {
		return application.Payment{}, fmt.Errorf("stored payment %s has invalid amount %q: %w", model.ID, model.Amount, err)
	}
	return application.Payment{
		ID:        model.ID,
		BookingID: model.BookingID,
		Amount:    amount,
		Status:    model.Status,
		PaidAt:    model.PaidAt,
	}, nil
}

func toPersistencePayment(payment application.Payment) persistence.Payment {
	return persistence.Payment{
		ID:        payment.ID,
		BookingID: payment.BookingID,
		Amount:    payment.Amount.StringFixed(2),
		Status:    payment.Status,
		PaidAt:    payment.PaidAt,
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
