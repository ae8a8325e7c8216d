package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()

	startsAt := time.Date(2025, time.September, 20, 19, 0, 0, 0, time.UTC)

	t.Run("stores the event with the caller as owner", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newEventRepositoryStub()
		svc := NewEventService(repo, func() string { return "event-1" }, func() time.Time { return now }, nil)

		event, err := svc.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: "manager-1", Role: RoleEventManager},
			Input: EventInput{
				Name:     "Rock Concert",
				StartsAt: startsAt,
				Location: "Arena",
				Category: "music",
			},
		})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		if event.CreatedBy != "manager-1" {
			t.Fatalf("expected owner manager-1, got %q", event.CreatedBy)
		}
		if event.ID != "event-1" {
			t.Fatalf("expected generated id, got %q", event.ID)
		}
		if stored := repo.events["event-1"]; stored.CreatedBy != "manager-1" {
			t.Fatalf("repository received unexpected owner: %q", stored.CreatedBy)
		}
	})

	t.Run("rejects callers without the event manager role", func(t *testing.T) {
		t.Parallel()

		svc := NewEventService(newEventRepositoryStub(), nil, nil, nil)

		_, err := svc.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: "user-1", Role: RoleUser},
			Input:     EventInput{Name: "Concert", StartsAt: startsAt, Location: "Arena"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		svc := NewEventService(newEventRepositoryStub(), nil, nil, nil)

		_, err := svc.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: "manager-1", Role: RoleEventManager},
			Input:     EventInput{},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for field, want := range map[string]string{
			"name":     "Name is required.",
			"date":     "Date is required.",
			"location": "Location is required.",
		} {
			if got := vErr.FieldErrors[field]; got != want {
				t.Fatalf("field %q: expected %q, got %q", field, want, got)
			}
		}
	})
}

func TestEventService_ListEvents(t *testing.T) {
	t.Parallel()

	t.Run("returns events from all creators", func(t *testing.T) {
		t.Parallel()

		repo := newEventRepositoryStub()
		repo.events["event-1"] = Event{ID: "event-1", CreatedBy: "manager-1"}
		repo.events["event-2"] = Event{ID: "event-2", CreatedBy: "manager-2"}

		svc := NewEventService(repo, nil, nil, nil)

		events, err := svc.ListEvents(context.Background(), Principal{UserID: "user-1", Role: RoleUser})
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
	})

	t.Run("rejects anonymous callers", func(t *testing.T) {
		t.Parallel()

		svc := NewEventService(newEventRepositoryStub(), nil, nil, nil)

		if _, err := svc.ListEvents(context.Background(), Principal{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

// eventRepositoryStub implements EventRepository for tests.
type eventRepositoryStub struct {
	events map[string]Event

	createErr error
}

func newEventRepositoryStub() *eventRepositoryStub {
	return &eventRepositoryStub{events: make(map[string]Event)}
}

func (s *eventRepositoryStub) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if s.createErr != nil {
		return Event{}, s.createErr
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *eventRepositoryStub) GetEvent(ctx context.Context, id string) (Event, error) {
	event, ok := s.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (s *eventRepositoryStub) ListEvents(ctx context.Context) ([]Event, error) {
	events := make([]Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	return events, nil
}
