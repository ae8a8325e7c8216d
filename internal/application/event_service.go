package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EventRepository captures the persistence operations needed by the event service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
}

// EventService validates and persists events on behalf of event managers.
type EventService struct {
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateEvent stores a new event owned by the calling principal. Only event
// managers may create events; the owner is always the caller regardless of any
// value submitted in the request body.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "EventService", "CreateEvent", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if params.Principal.Role != RoleEventManager {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Input.Name) == "" {
		vErr.add("name", "Name is required.")
	}
	if params.Input.StartsAt.IsZero() {
		vErr.add("date", "Date is required.")
	}
	if strings.TrimSpace(params.Input.Location) == "" {
		vErr.add("location", "Location is required.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	candidate := Event{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(params.Input.Name),
		Description: strings.TrimSpace(params.Input.Description),
		StartsAt:    params.Input.StartsAt,
		Location:    strings.TrimSpace(params.Input.Location),
		Category:    strings.TrimSpace(params.Input.Category),
		CreatedBy:   params.Principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.events.CreateEvent(ctx, candidate)
}

// ListEvents returns every stored event. The listing is deliberately not
// scoped to the caller so that any authenticated user can browse events.
func (s *EventService) ListEvents(ctx context.Context, principal Principal) (events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "EventService", "ListEvents", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(events)).DebugContext(ctx, "events listed")
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	return s.events.ListEvents(ctx)
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, id string) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "EventService", "GetEvent", "principal_id", principal.UserID, "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "event lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if strings.TrimSpace(id) == "" {
		err = ErrNotFound
		return
	}

	return s.events.GetEvent(ctx, id)
}
