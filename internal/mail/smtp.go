package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/example/ticket-booking/internal/application"
)

// SMTPConfig holds the connection settings for the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers notifications over SMTP.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender constructs a sender for the given SMTP settings.
func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	return &SMTPSender{config: config}, nil
}

// SendWelcome mails the post-registration greeting.
func (s *SMTPSender) SendWelcome(ctx context.Context, user application.User) error {
	subject := "Welcome to Ticket Booking"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour account has been created. You can now browse events and book tickets.\r\n",
		user.FirstName,
	)
	return s.send(ctx, user.Email, subject, body)
}

// SendBookingConfirmation mails the booking receipt.
func (s *SMTPSender) SendBookingConfirmation(ctx context.Context, user application.User, event application.Event, booking application.Booking) error {
	subject := fmt.Sprintf("Booking confirmed: %s", event.Name)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour booking for %s on %s is confirmed.\r\nTickets: %d\r\nBooking reference: %s\r\n",
		user.FirstName,
		event.Name,
		event.StartsAt.Format(time.RFC1123),
		booking.NumberOfTickets,
		booking.ID,
	)
	return s.send(ctx, user.Email, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	options := []gomail.Option{gomail.WithPort(s.config.Port)}
	if s.config.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.config.Username),
			gomail.WithPassword(s.config.Password),
		)
	}

	client, err := gomail.NewClient(s.config.Host, options...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
