package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ticket-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const bookingColumns = "id, user_id, event_id, number_of_tickets, booked_at"

// CreateBooking inserts a new booking. The ticket-count check constraint is
// surfaced as persistence.ErrConstraintViolation.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.UserID == "" || booking.EventID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.NumberOfTickets,
		booking.BookedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return r.scanBooking(row)
}

// ListBookingsByUser returns the bookings owned by a single user, oldest first.
func (r *BookingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]persistence.Booking, error) {
	if userID == "" {
		return nil, nil
	}

	rows, err := r.helper.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY booked_at ASC, id ASC`, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return bookings, nil
}

func (r *BookingRepository) scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var bookedAtStr string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.NumberOfTickets,
		&bookedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, r.mapper.MapError(err)
	}

	if booking.BookedAt, err = time.Parse(time.RFC3339, bookedAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse booked_at: %w", err)
	}

	return booking, nil
}
