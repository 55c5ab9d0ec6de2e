package service

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// stepClock advances one second on every reading.
func stepClock() Clock {
	var mu sync.Mutex
	t := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type services struct {
	store        repository.Store
	events       *EventService
	participants *ParticipantService
}

func newServices(t *testing.T, store repository.Store) services {
	t.Helper()
	base, err := url.Parse("http://localhost:3333")
	require.NoError(t, err)
	clock := stepClock()
	return services{
		store:        store,
		events:       NewEventService(store, clock),
		participants: NewParticipantService(store, base, clock),
	}
}

func newMemoryServices(t *testing.T) services {
	return newServices(t, repository.NewMemoryStore())
}

func createEvent(t *testing.T, s services, title string, capacity *int) *model.Event {
	t.Helper()
	event, err := s.events.Create(context.Background(), model.CreateEventRequest{
		Title:           title,
		MaxParticipants: capacity,
	})
	require.NoError(t, err)
	return event
}

func register(t *testing.T, s services, eventID, name, email string) *model.Participant {
	t.Helper()
	p, err := s.participants.Register(context.Background(), eventID, model.RegisterRequest{Name: name, Email: email})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
