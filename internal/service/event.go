package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"github.com/Shivanand-hulikatti/event-checkin/internal/slug"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// EventService is the event registry.
type EventService struct {
	store repository.Store
	clock Clock
}

// NewEventService constructs an EventService. A nil clock uses time.Now.
func NewEventService(store repository.Store, clock Clock) *EventService {
	return &EventService{store: store, clock: clock}
}

// List returns every event, most recently created first.
func (s *EventService) List(ctx context.Context) (_ []model.Event, err error) {
	ctx, span := tracer.Start(ctx, "EventService.List")
	defer func() { endSpan(span, err) }()

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (_ *model.Event, err error) {
	ctx, span := tracer.Start(ctx, "EventService.Get")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event.id", id))

	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Create derives the slug from the title and persists a new event unless
// another event already owns that slug.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (_ *model.Event, err error) {
	ctx, span := tracer.Start(ctx, "EventService.Create")
	defer func() { endSpan(span, err) }()

	event := &model.Event{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Slug:            slug.Make(req.Title),
		Details:         req.Details,
		MaxParticipants: req.MaxParticipants,
		CreatedAt:       s.clock.now(),
	}
	span.SetAttributes(attribute.String("event.slug", event.Slug))

	err = s.store.InTx(ctx, func(q repository.Queries) error {
		_, err := q.GetEventBySlug(ctx, event.Slug)
		switch {
		case err == nil:
			return ErrSlugConflict
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check slug: %w", err)
		}

		if err := q.CreateEvent(ctx, event); err != nil {
			// Lost a race with a concurrent create of the same slug.
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrSlugConflict
			}
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}
