package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPaymentService_CreatePayment(t *testing.T) {
	t.Parallel()

	t.Run("records a payment against an existing booking", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		bookings := newBookingRepositoryStub()
		bookings.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "user-1"}
		payments := newPaymentRepositoryStub(bookings)

		svc := NewPaymentService(payments, bookings, func() string { return "payment-1" }, func() time.Time { return now }, nil)

		payment, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "user-1"},
			Input: PaymentInput{
				BookingID: "booking-1",
				Amount:    decimal.RequireFromString("149.50"),
				Status:    "completed",
			},
		})
		if err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		if payment.ID != "payment-1" || !payment.PaidAt.Equal(now) {
			t.Fatalf("unexpected payment: %#v", payment)
		}
		if payment.Status != "completed" {
			t.Fatalf("expected submitted status to be echoed, got %q", payment.Status)
		}
	})

	t.Run("allows paying for another user's booking", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		bookings.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "owner"}
		payments := newPaymentRepositoryStub(bookings)

		svc := NewPaymentService(payments, bookings, func() string { return "payment-2" }, nil, nil)

		_, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "someone-else"},
			Input: PaymentInput{
				BookingID: "booking-1",
				Amount:    decimal.NewFromInt(10),
				Status:    "pending",
			},
		})
		if err != nil {
			t.Fatalf("expected payment by non-owner to succeed, got %v", err)
		}
	})

	t.Run("rejects a second payment for the same booking", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		bookings.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "user-1"}
		payments := newPaymentRepositoryStub(bookings)
		payments.payments["payment-1"] = Payment{ID: "payment-1", BookingID: "booking-1"}

		svc := NewPaymentService(payments, bookings, nil, nil, nil)

		_, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "user-1"},
			Input: PaymentInput{
				BookingID: "booking-1",
				Amount:    decimal.NewFromInt(10),
				Status:    "completed",
			},
		})
		if !errors.Is(err, ErrPaymentExists) {
			t.Fatalf("expected ErrPaymentExists, got %v", err)
		}
	})

	t.Run("maps storage collisions from concurrent payments", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		bookings.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "user-1"}
		payments := newPaymentRepositoryStub(bookings)
		payments.createErr = ErrAlreadyExists

		svc := NewPaymentService(payments, bookings, nil, nil, nil)

		_, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "user-1"},
			Input: PaymentInput{
				BookingID: "booking-1",
				Amount:    decimal.NewFromInt(10),
				Status:    "completed",
			},
		})
		if !errors.Is(err, ErrPaymentExists) {
			t.Fatalf("expected ErrPaymentExists, got %v", err)
		}
	})

	t.Run("rejects unknown bookings with a field error", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		svc := NewPaymentService(newPaymentRepositoryStub(bookings), bookings, nil, nil, nil)

		_, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "user-1"},
			Input: PaymentInput{
				BookingID: "missing",
				Amount:    decimal.NewFromInt(10),
				Status:    "completed",
			},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["booking"] != "Booking does not exist." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		svc := NewPaymentService(newPaymentRepositoryStub(bookings), bookings, nil, nil, nil)

		_, err := svc.CreatePayment(context.Background(), CreatePaymentParams{
			Principal: Principal{UserID: "user-1"},
			Input:     PaymentInput{Amount: decimal.NewFromInt(-5)},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for field, want := range map[string]string{
			"booking": "Booking is required.",
			"amount":  "Amount must be greater than zero.",
			"status":  "Status is required.",
		} {
			if got := vErr.FieldErrors[field]; got != want {
				t.Fatalf("field %q: expected %q, got %q", field, want, got)
			}
		}
	})
}

func TestPaymentService_ListPayments(t *testing.T) {
	t.Parallel()

	t.Run("returns only payments for the caller's bookings", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		bookings.bookings["booking-1"] = Booking{ID: "booking-1", UserID: "user-1"}
		bookings.bookings["booking-2"] = Booking{ID: "booking-2", UserID: "user-2"}
		payments := newPaymentRepositoryStub(bookings)
		payments.payments["payment-1"] = Payment{ID: "payment-1", BookingID: "booking-1"}
		payments.payments["payment-2"] = Payment{ID: "payment-2", BookingID: "booking-2"}

		svc := NewPaymentService(payments, bookings, nil, nil, nil)

		result, err := svc.ListPayments(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if len(result) != 1 || result[0].ID != "payment-1" {
			t.Fatalf("expected only the caller's payment, got %#v", result)
		}
	})

	t.Run("rejects anonymous callers", func(t *testing.T) {
		t.Parallel()

		bookings := newBookingRepositoryStub()
		svc := NewPaymentService(newPaymentRepositoryStub(bookings), bookings, nil, nil, nil)

		if _, err := svc.ListPayments(context.Background(), Principal{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

// paymentRepositoryStub implements PaymentRepository for tests.
type paymentRepositoryStub struct {
	payments map[string]Payment
	bookings *bookingRepositoryStub

	createErr error
}

func newPaymentRepositoryStub(bookings *bookingRepositoryStub) *paymentRepositoryStub {
	return &paymentRepositoryStub{
		payments: make(map[string]Payment),
		bookings: bookings,
	}
}

func (s *paymentRepositoryStub) CreatePayment(ctx context.Context, payment Payment) (Payment, error) {
	if s.createErr != nil {
		return Payment{}, s.createErr
	}
	for _, existing := range s.payments {
		if existing.BookingID == payment.BookingID {
			return Payment{}, ErrAlreadyExists
		}
	}
	s.payments[payment.ID] = payment
	return payment, nil
}

func (s *paymentRepositoryStub) GetPaymentByBooking(ctx context.Context, bookingID string) (Payment, error) {
	for _, payment := range s.payments {
		if payment.BookingID == bookingID {
			return payment, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (s *paymentRepositoryStub) ListPaymentsByBookingUser(ctx context.Context, userID string) ([]Payment, error) {
	result := make([]Payment, 0)
	for _, payment := range s.payments {
		if booking, ok := s.bookings.bookings[payment.BookingID]; ok && booking.UserID == userID {
			result = append(result, payment)
		}
	}
	return result, nil
}
