package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// ParticipantService is the participant registry.
type ParticipantService struct {
	store   repository.Store
	baseURL *url.URL
	clock   Clock
}

// NewParticipantService constructs a ParticipantService. baseURL is the
// public address of this API, used to build check-in links. A nil clock
// uses time.Now.
func NewParticipantService(store repository.Store, baseURL *url.URL, clock Clock) *ParticipantService {
	return &ParticipantService{store: store, baseURL: baseURL, clock: clock}
}

// List returns one page of an event's participants, most recent
// registration first, optionally filtered by a case-sensitive name substring.
func (s *ParticipantService) List(ctx context.Context, q model.ParticipantQuery) (_ []model.Participant, err error) {
	ctx, span := tracer.Start(ctx, "ParticipantService.List")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("event.id", q.EventID),
		attribute.Int("page", q.Page),
		attribute.Int("limit", q.Limit),
	)

	if q.Limit <= 0 {
		q.Limit = model.DefaultLimit
	}
	if q.Page < 0 {
		q.Page = 0
	}
	participants, err := s.store.ListParticipants(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// Credentials returns what a participant presents at the door, including
// the link that checks them in.
func (s *ParticipantService) Credentials(ctx context.Context, id int64) (_ *model.Credentials, err error) {
	ctx, span := tracer.Start(ctx, "ParticipantService.Credentials")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("participant.id", id))

	p, err := s.store.GetParticipant(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	event, err := s.store.GetEvent(ctx, p.EventID)
	if err != nil {
		return nil, fmt.Errorf("get participant event: %w", err)
	}

	return &model.Credentials{
		Name:       p.Name,
		Email:      p.Email,
		Event:      model.CredentialsEvent{Title: event.Title},
		CheckInURL: s.CheckInURL(id),
	}, nil
}

// CheckInURL is the absolute check-in link for participant id.
func (s *ParticipantService) CheckInURL(id int64) string {
	return s.baseURL.JoinPath("participants", strconv.FormatInt(id, 10), "check-in").String()
}

// Register adds a participant to an event.
//
// The event row stays locked while the cap and the (event, email)
// uniqueness are checked and the participant is inserted. The cap is
// checked before the email, so a full event reports CapacityError even
// for an already registered email.
func (s *ParticipantService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (_ *model.Participant, err error) {
	ctx, span := tracer.Start(ctx, "ParticipantService.Register")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event.id", eventID))

	var participant *model.Participant
	err = s.store.InTx(ctx, func(q repository.Queries) error {
		event, err := q.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		if event.MaxParticipants != nil {
			registered, err := q.CountParticipants(ctx, eventID)
			if err != nil {
				return fmt.Errorf("count participants: %w", err)
			}
			if event.IsFull(registered) {
				return &CapacityError{Max: *event.MaxParticipants}
			}
		}

		_, err = q.GetParticipantByEmail(ctx, eventID, req.Email)
		switch {
		case err == nil:
			return ErrDuplicateRegistration
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check duplicate: %w", err)
		}

		p := &model.Participant{
			Name:         req.Name,
			Email:        req.Email,
			SubscribedAt: s.clock.now(),
			EventID:      eventID,
		}
		if err := q.CreateParticipant(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateRegistration
			}
			return fmt.Errorf("create participant: %w", err)
		}
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// CheckIn records the participant's attendance. It succeeds once; every
// later call returns ErrAlreadyCheckedIn and leaves the first timestamp.
func (s *ParticipantService) CheckIn(ctx context.Context, id int64) (_ *model.Participant, err error) {
	ctx, span := tracer.Start(ctx, "ParticipantService.CheckIn")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("participant.id", id))

	var participant *model.Participant
	err = s.store.InTx(ctx, func(q repository.Queries) error {
		p, err := q.LockParticipant(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrParticipantNotFound
			}
			return fmt.Errorf("lock participant: %w", err)
		}
		if p.CheckedIn() {
			return ErrAlreadyCheckedIn
		}

		at := s.clock.now()
		if err := q.SetCheckIn(ctx, id, at); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return ErrAlreadyCheckedIn
			case errors.Is(err, repository.ErrNotFound):
				return ErrParticipantNotFound
			}
			return fmt.Errorf("set check-in: %w", err)
		}
		p.CheckInAt = &at
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}
