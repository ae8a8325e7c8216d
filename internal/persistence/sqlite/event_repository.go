package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ticket-booking/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventColumns = "id, name, description, starts_at, location, category, created_by, created_at, updated_at"

// CreateEvent inserts a new event owned by its creating user.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.CreatedBy == "" {
		return persistence.ErrConstraintViolation
	}

	var category sql.NullString
	if event.Category != nil {
		category = sql.NullString{String: *event.Category, Valid: true}
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.StartsAt.UTC().Format(time.RFC3339),
		event.Location,
		category,
		event.CreatedBy,
		event.CreatedAt.UTC().Format(time.RFC3339),
		event.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return r.scanEvent(row)
}

// ListEvents returns all events ordered by start time then ID.
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return events, nil
}

func (r *EventRepository) scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var startsAtStr, createdAtStr, updatedAtStr string
	var category sql.NullString

	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&startsAtStr,
		&event.Location,
		&category,
		&event.CreatedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, r.mapper.MapError(err)
	}

	if category.Valid {
		value := category.String
		event.Category = &value
	}

	if event.StartsAt, err = time.Parse(time.RFC3339, startsAtStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse starts_at: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return event, nil
}
