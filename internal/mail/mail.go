// Package mail delivers user facing notification emails.
package mail

import (
	"context"

	"github.com/example/ticket-booking/internal/application"
)

// Sender delivers the notifications produced by the application services.
type Sender interface {
	SendWelcome(ctx context.Context, user application.User) error
	SendBookingConfirmation(ctx context.Context, user application.User, event application.Event, booking application.Booking) error
}
