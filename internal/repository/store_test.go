package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the Store contract against any implementation.
// open must return an empty store.
func runStoreSuite(t *testing.T, open func(t *testing.T) Store) {
	t.Run("CreateAndGetEvent", func(t *testing.T) { testCreateAndGetEvent(t, open(t)) })
	t.Run("DuplicateSlug", func(t *testing.T) { testDuplicateSlug(t, open(t)) })
	t.Run("ListEventsOrder", func(t *testing.T) { testListEventsOrder(t, open(t)) })
	t.Run("ParticipantLifecycle", func(t *testing.T) { testParticipantLifecycle(t, open(t)) })
	t.Run("DuplicateEmailPerEvent", func(t *testing.T) { testDuplicateEmailPerEvent(t, open(t)) })
	t.Run("ListParticipantsWindow", func(t *testing.T) { testListParticipantsWindow(t, open(t)) })
	t.Run("SetCheckInOnce", func(t *testing.T) { testSetCheckInOnce(t, open(t)) })
	t.Run("InTxRollsBack", func(t *testing.T) { testInTxRollsBack(t, open(t)) })
	t.Run("InTxCommits", func(t *testing.T) { testInTxCommits(t, open(t)) })
	t.Run("InTxPanicReleasesTransaction", func(t *testing.T) { testInTxPanicReleasesTransaction(t, open(t)) })
}

var baseTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func mustCreateEvent(t *testing.T, s Store, slug string, created time.Time) *model.Event {
	t.Helper()
	e := &model.Event{
		ID:        uuid.NewString(),
		Title:     "Event " + slug,
		Slug:      slug,
		CreatedAt: created,
	}
	require.NoError(t, s.CreateEvent(context.Background(), e))
	return e
}

func mustRegister(t *testing.T, s Store, eventID, name, email string, at time.Time) *model.Participant {
	t.Helper()
	p := &model.Participant{Name: name, Email: email, EventID: eventID, SubscribedAt: at}
	require.NoError(t, s.CreateParticipant(context.Background(), p))
	return p
}

func testCreateAndGetEvent(t *testing.T, s Store) {
	ctx := context.Background()
	in := &model.Event{
		ID:              uuid.NewString(),
		Title:           "Tech Summit",
		Slug:            "tech-summit",
		Details:         strPtr("Keynotes and workshops"),
		MaxParticipants: intPtr(2),
		CreatedAt:       baseTime,
	}
	require.NoError(t, s.CreateEvent(ctx, in))

	got, err := s.GetEvent(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	bySlug, err := s.GetEventBySlug(ctx, "tech-summit")
	require.NoError(t, err)
	assert.Equal(t, in.ID, bySlug.ID)

	bare := &model.Event{ID: uuid.NewString(), Title: "Open Day", Slug: "open-day", CreatedAt: baseTime}
	require.NoError(t, s.CreateEvent(ctx, bare))
	got, err = s.GetEvent(ctx, bare.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Details)
	assert.Nil(t, got.MaxParticipants)

	_, err = s.GetEvent(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetEventBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDuplicateSlug(t *testing.T, s Store) {
	ctx := context.Background()
	mustCreateEvent(t, s, "tech-summit", baseTime)

	err := s.CreateEvent(ctx, &model.Event{ID: uuid.NewString(), Title: "Tech summit!", Slug: "tech-summit", CreatedAt: baseTime})
	assert.ErrorIs(t, err, ErrDuplicate)

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func testListEventsOrder(t *testing.T, s Store) {
	ctx := context.Background()

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	oldest := mustCreateEvent(t, s, "oldest", baseTime)
	newest := mustCreateEvent(t, s, "newest", baseTime.Add(2*time.Hour))
	middle := mustCreateEvent(t, s, "middle", baseTime.Add(time.Hour))

	events, err = s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{events[0].ID, events[1].ID, events[2].ID})

	again, err := s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, events, again)
}

func testParticipantLifecycle(t *testing.T, s Store) {
	ctx := context.Background()
	e := mustCreateEvent(t, s, "lifecycle", baseTime)

	first := mustRegister(t, s, e.ID, "Ann", "ann@x.com", baseTime)
	second := mustRegister(t, s, e.ID, "Bob", "bob@x.com", baseTime.Add(time.Minute))
	assert.Positive(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	n, err := s.CountParticipants(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.GetParticipant(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Nil(t, got.CheckInAt)

	locked, err := s.LockParticipant(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", locked.Name)

	byEmail, err := s.GetParticipantByEmail(ctx, e.ID, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byEmail.ID)

	_, err = s.GetParticipantByEmail(ctx, e.ID, "carol@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetParticipant(ctx, second.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDuplicateEmailPerEvent(t *testing.T, s Store) {
	ctx := context.Background()
	e := mustCreateEvent(t, s, "dup-e", baseTime)
	f := mustCreateEvent(t, s, "dup-f", baseTime)

	mustRegister(t, s, e.ID, "Ann", "a@x.com", baseTime)

	err := s.CreateParticipant(ctx, &model.Participant{Name: "Ann again", Email: "a@x.com", EventID: e.ID, SubscribedAt: baseTime})
	assert.ErrorIs(t, err, ErrDuplicate)

	mustRegister(t, s, f.ID, "Ann", "a@x.com", baseTime)

	n, err := s.CountParticipants(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testListParticipantsWindow(t *testing.T, s Store) {
	ctx := context.Background()
	e := mustCreateEvent(t, s, "window", baseTime)
	other := mustCreateEvent(t, s, "window-other", baseTime)

	names := []string{"Ann Lee", "Bob Stone", "Annie Hall", "Carl", "joann"}
	for i, name := range names {
		mustRegister(t, s, e.ID, name, fmt.Sprintf("p%d@x.com", i), baseTime.Add(time.Duration(i)*time.Minute))
	}
	mustRegister(t, s, other.ID, "Ann Other", "ann@x.com", baseTime)

	all, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: e.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 5)
	gotNames := make([]string, 0, len(all))
	for _, p := range all {
		gotNames = append(gotNames, p.Name)
	}
	assert.Equal(t, []string{"joann", "Carl", "Annie Hall", "Bob Stone", "Ann Lee"}, gotNames)

	page, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: e.ID, Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Annie Hall", page[0].Name)
	assert.Equal(t, "Bob Stone", page[1].Name)

	past, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: e.ID, Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past)

	// Case-sensitive: "Ann" matches "Ann Lee" and "Annie Hall" but not "joann".
	filtered, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: e.ID, Limit: 10, Query: "Ann"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Annie Hall", filtered[0].Name)
	assert.Equal(t, "Ann Lee", filtered[1].Name)

	lower, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: e.ID, Limit: 10, Query: "ann"})
	require.NoError(t, err)
	require.Len(t, lower, 1)
	assert.Equal(t, "joann", lower[0].Name)

	none, err := s.ListParticipants(ctx, model.ParticipantQuery{EventID: uuid.NewString(), Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testSetCheckInOnce(t *testing.T, s Store) {
	ctx := context.Background()
	e := mustCreateEvent(t, s, "checkin", baseTime)
	p := mustRegister(t, s, e.ID, "Ann", "a@x.com", baseTime)

	at := baseTime.Add(3 * time.Hour)
	require.NoError(t, s.SetCheckIn(ctx, p.ID, at))

	err := s.SetCheckIn(ctx, p.ID, at.Add(time.Hour))
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CheckInAt)
	assert.True(t, at.Equal(*got.CheckInAt))

	err = s.SetCheckIn(ctx, p.ID+100, at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func testInTxRollsBack(t *testing.T, s Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	id := uuid.NewString()

	err := s.InTx(ctx, func(q Queries) error {
		if err := q.CreateEvent(ctx, &model.Event{ID: id, Title: "Rolled back", Slug: "rolled-back", CreatedAt: baseTime}); err != nil {
			return err
		}
		if _, err := q.GetEvent(ctx, id); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetEvent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func testInTxCommits(t *testing.T, s Store) {
	ctx := context.Background()
	e := mustCreateEvent(t, s, "commit", baseTime)

	var created model.Participant
	err := s.InTx(ctx, func(q Queries) error {
		locked, err := q.LockEvent(ctx, e.ID)
		if err != nil {
			return err
		}
		n, err := q.CountParticipants(ctx, locked.ID)
		if err != nil {
			return err
		}
		if n != 0 {
			return errors.New("expected no participants")
		}
		created = model.Participant{Name: "Ann", Email: "a@x.com", EventID: e.ID, SubscribedAt: baseTime}
		return q.CreateParticipant(ctx, &created)
	})
	require.NoError(t, err)

	got, err := s.GetParticipant(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
}

func testInTxPanicReleasesTransaction(t *testing.T, s Store) {
	id := uuid.NewString()

	require.PanicsWithValue(t, "handler bug", func() {
		_ = s.InTx(context.Background(), func(q Queries) error {
			if err := q.CreateEvent(context.Background(), &model.Event{ID: id, Title: "Panicked", Slug: "panicked", CreatedAt: baseTime}); err != nil {
				return err
			}
			panic("handler bug")
		})
	})

	// A transaction left open would hold the connection and block these calls.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.GetEvent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.InTx(ctx, func(q Queries) error {
		return q.CreateEvent(ctx, &model.Event{ID: uuid.NewString(), Title: "After panic", Slug: "after-panic", CreatedAt: baseTime})
	})
	require.NoError(t, err)
	_, err = s.GetEventBySlug(ctx, "after-panic")
	assert.NoError(t, err)
}
