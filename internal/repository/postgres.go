package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// pgDB is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists events and participants in PostgreSQL.
type PostgresStore struct {
	pgQueries
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore on an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pgQueries: pgQueries{db: pool}, pool: pool}
}

// InTx runs fn inside a single transaction.
//
// Registration and check-in are read-then-write sequences. Two concurrent
// requests reading the same participant count (or the same null check_in_at)
// before either commits would both pass their guard. The Lock* queries use
// SELECT … FOR UPDATE, so a second transaction touching the same event or
// participant row blocks until the first one commits or rolls back.
func (s *PostgresStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved, panics included.
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(pgQueries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type pgQueries struct {
	db pgDB
}

const eventColumns = `id::text, title, slug, details, max_participants, created_at`

const participantColumns = `id, name, email, subscribed_at, check_in_at, event_id::text`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Details, &e.MaxParticipants, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var p model.Participant
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.SubscribedAt, &p.CheckInAt, &p.EventID); err != nil {
		return nil, err
	}
	// pgx yields timestamptz in the local zone.
	p.SubscribedAt = p.SubscribedAt.UTC()
	if p.CheckInAt != nil {
		at := p.CheckInAt.UTC()
		p.CheckInAt = &at
	}
	return &p, nil
}

// ListEvents returns all events ordered by creation time descending.
func (q pgQueries) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetEvent returns a single event or ErrNotFound.
func (q pgQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	uid, ok := parseUUID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return q.getEvent(ctx, "get event", `WHERE id = $1`, uid)
}

// GetEventBySlug returns the event owning slug or ErrNotFound.
func (q pgQueries) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return q.getEvent(ctx, "get event by slug", `WHERE slug = $1`, slug)
}

// LockEvent reads the event row with FOR UPDATE.
func (q pgQueries) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	uid, ok := parseUUID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return q.getEvent(ctx, "lock event row", `WHERE id = $1 FOR UPDATE`, uid)
}

func (q pgQueries) getEvent(ctx context.Context, op, where string, arg any) (*model.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// CreateEvent inserts e. A slug collision yields ErrDuplicate.
func (q pgQueries) CreateEvent(ctx context.Context, e *model.Event) error {
	uid, ok := parseUUID(e.ID)
	if !ok {
		return fmt.Errorf("insert event: malformed id %q", e.ID)
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO events (id, title, slug, details, max_participants, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uid, e.Title, e.Slug, e.Details, e.MaxParticipants, e.CreatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// CountParticipants returns how many participants are registered for eventID.
func (q pgQueries) CountParticipants(ctx context.Context, eventID string) (int, error) {
	uid, ok := parseUUID(eventID)
	if !ok {
		return 0, nil
	}
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = $1`,
		uid,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// ListParticipants returns one page of an event's participants, most recent
// registration first. The name filter is a case-sensitive substring match.
func (q pgQueries) ListParticipants(ctx context.Context, pq model.ParticipantQuery) ([]model.Participant, error) {
	participants := []model.Participant{}
	uid, ok := parseUUID(pq.EventID)
	if !ok {
		return participants, nil
	}

	rows, err := q.db.Query(ctx,
		`SELECT `+participantColumns+`
		 FROM participants
		 WHERE event_id = $1
		   AND ($2 = '' OR strpos(name, $2) > 0)
		 ORDER BY subscribed_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		uid, pq.Query, pq.Limit, pq.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// GetParticipant returns a single participant or ErrNotFound.
func (q pgQueries) GetParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return q.getParticipant(ctx, "get participant", `WHERE id = $1`, id)
}

// LockParticipant reads the participant row with FOR UPDATE.
func (q pgQueries) LockParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return q.getParticipant(ctx, "lock participant row", `WHERE id = $1 FOR UPDATE`, id)
}

// GetParticipantByEmail returns the participant registered on eventID with
// email, or ErrNotFound.
func (q pgQueries) GetParticipantByEmail(ctx context.Context, eventID, email string) (*model.Participant, error) {
	uid, ok := parseUUID(eventID)
	if !ok {
		return nil, ErrNotFound
	}
	return q.getParticipant(ctx, "get participant by email", `WHERE event_id = $1 AND email = $2`, uid, email)
}

func (q pgQueries) getParticipant(ctx context.Context, op, where string, args ...any) (*model.Participant, error) {
	p, err := scanParticipant(q.db.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreateParticipant inserts p and stores the generated id back into it.
// A repeated (event_id, email) pair yields ErrDuplicate.
func (q pgQueries) CreateParticipant(ctx context.Context, p *model.Participant) error {
	eventID, ok := parseUUID(p.EventID)
	if !ok {
		return fmt.Errorf("insert participant: malformed event id %q", p.EventID)
	}
	err := q.db.QueryRow(ctx,
		`INSERT INTO participants (name, email, subscribed_at, check_in_at, event_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.Name, p.Email, p.SubscribedAt, p.CheckInAt, eventID,
	).Scan(&p.ID)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// SetCheckIn records the check-in time. ErrNotFound when the participant is
// missing, ErrConflict when it is already checked in.
func (q pgQueries) SetCheckIn(ctx context.Context, id int64, at time.Time) error {
	ct, err := q.db.Exec(ctx,
		`UPDATE participants SET check_in_at = $2 WHERE id = $1 AND check_in_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("update check-in: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	if _, err := q.GetParticipant(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

// parseUUID rejects malformed ids before they reach the server, where they
// could only fail with invalid_text_representation.
func parseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
