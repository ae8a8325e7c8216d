package mail

import (
	"context"
	"log/slog"

	"github.com/example/ticket-booking/internal/application"
)

// LogSender records notifications in the log instead of delivering them. It is
// the fallback used when no SMTP server is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// SendWelcome logs the welcome notification.
func (s *LogSender) SendWelcome(ctx context.Context, user application.User) error {
	s.logger.InfoContext(ctx, "welcome mail suppressed, smtp not configured",
		"recipient", user.Email, "user_id", user.ID)
	return nil
}

// SendBookingConfirmation logs the booking confirmation notification.
func (s *LogSender) SendBookingConfirmation(ctx context.Context, user application.User, event application.Event, booking application.Booking) error {
	s.logger.InfoContext(ctx, "booking confirmation mail suppressed, smtp not configured",
		"recipient", user.Email, "event_id", event.ID, "booking_id", booking.ID)
	return nil
}
