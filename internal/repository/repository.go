// Package repository implements persistence for events and participants.
// The PostgreSQL store uses pgx directly (no ORM); SQLite and in-memory
// stores implement the same Store contract for local runs and tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint
// (event slug, or participant event+email).
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned when a conditional update matched no row,
// e.g. setting a check-in that is already set.
var ErrConflict = errors.New("conflicting update")

// Queries is the set of record operations the registries consume.
type Queries interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*model.Event, error)
	// LockEvent reads an event and, inside InTx, holds it until the unit ends.
	LockEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, e *model.Event) error

	CountParticipants(ctx context.Context, eventID string) (int, error)
	ListParticipants(ctx context.Context, q model.ParticipantQuery) ([]model.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*model.Participant, error)
	// LockParticipant reads a participant and, inside InTx, holds it until the unit ends.
	LockParticipant(ctx context.Context, id int64) (*model.Participant, error)
	GetParticipantByEmail(ctx context.Context, eventID, email string) (*model.Participant, error)
	// CreateParticipant inserts p and assigns its generated ID.
	CreateParticipant(ctx context.Context, p *model.Participant) error
	// SetCheckIn sets check_in_at only while it is still null.
	SetCheckIn(ctx context.Context, id int64, at time.Time) error
}

// Store is a Queries implementation that can run several queries as one
// atomic unit. fn's Queries must be used for every call inside the unit;
// the unit commits when fn returns nil and rolls back otherwise.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}
