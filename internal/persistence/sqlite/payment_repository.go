package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ticket-booking/internal/persistence"
)

// PaymentRepository implements persistence.PaymentRepository using SQLite.
type PaymentRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPaymentRepository creates a new SQLite payment repository.
func NewPaymentRepository(pool *ConnectionPool) *PaymentRepository {
	return &PaymentRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const paymentColumns = "id, booking_id, amount, status, paid_at"

// CreatePayment inserts a payment for a booking. The UNIQUE constraint on
// booking_id enforces the one-payment-per-booking invariant and is surfaced
// as persistence.ErrDuplicate.
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment persistence.Payment) error {
	if payment.ID == "" || payment.BookingID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Status,
		payment.PaidAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetPaymentByBooking retrieves the payment attached to a booking, if any.
func (r *PaymentRepository) GetPaymentByBooking(ctx context.Context, bookingID string) (persistence.Payment, error) {
	if bookingID == "" {
		return persistence.Payment{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID)
	return r.scanPayment(row)
}

// ListPaymentsByBookingUser returns payments whose booking belongs to the given user.
func (r *PaymentRepository) ListPaymentsByBookingUser(ctx context.Context, userID string) ([]persistence.Payment, error) {
	if userID == "" {
		return nil, nil
	}

	query := `
		SELECT p.id, p.booking_id, p.amount, p.status, p.paid_at
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.user_id = ?
		ORDER BY p.paid_at ASC, p.id ASC
	`

	rows, err := r.helper.Query(ctx, query, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var payments []persistence.Payment
	for rows.Next() {
		payment, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return payments, nil
}

func (r *PaymentRepository) scanPayment(row rowScanner) (persistence.Payment, error) {
	var payment persistence.Payment
	var paidAtStr string

	err := row.Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Status,
		&paidAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Payment{}, persistence.ErrNotFound
		}
		return persistence.Payment{}, r.mapper.MapError(err)
	}

	if payment.PaidAt, err = time.Parse(time.RFC3339, paidAtStr); err != nil {
		return persistence.Payment{}, fmt.Errorf("failed to parse paid_at: %w", err)
	}

	return payment, nil
}
