package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// sqlDB is satisfied by both *sql.DB and *sql.Tx.
type sqlDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore persists events and participants in a SQLite file.
// The handle is expected to be opened by database.OpenSQLite, which uses
// immediate transactions on a single connection, so InTx units are serialized.
type SQLiteStore struct {
	sqliteQueries
	sqlDB *sql.DB
}

// NewSQLiteStore constructs a SQLiteStore on a migrated handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{sqliteQueries: sqliteQueries{db: db}, sqlDB: db}
}

// InTx runs fn inside a single transaction. The transaction is rolled back
// when fn fails or panics, releasing the only connection.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(sqliteQueries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Ping verifies the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type sqliteQueries struct {
	db sqlDB
}

// Timestamps are stored as unix microseconds, matching PostgreSQL precision.
func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEvent(row rowScanner) (*model.Event, error) {
	var (
		e         model.Event
		details   sql.NullString
		capacity  sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Slug, &details, &capacity, &createdAt); err != nil {
		return nil, err
	}
	if details.Valid {
		e.Details = &details.String
	}
	if capacity.Valid {
		n := int(capacity.Int64)
		e.MaxParticipants = &n
	}
	e.CreatedAt = fromMicros(createdAt)
	return &e, nil
}

func scanSQLiteParticipant(row rowScanner) (*model.Participant, error) {
	var (
		p            model.Participant
		subscribedAt int64
		checkInAt    sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &subscribedAt, &checkInAt, &p.EventID); err != nil {
		return nil, err
	}
	p.SubscribedAt = fromMicros(subscribedAt)
	if checkInAt.Valid {
		at := fromMicros(checkInAt.Int64)
		p.CheckInAt = &at
	}
	return &p, nil
}

const sqliteEventColumns = `id, title, slug, details, max_participants, created_at`

const sqliteParticipantColumns = `id, name, email, subscribed_at, check_in_at, event_id`

func (q sqliteQueries) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (q sqliteQueries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return q.getEvent(ctx, "get event", `id = ?`, id)
}

func (q sqliteQueries) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return q.getEvent(ctx, "get event by slug", `slug = ?`, slug)
}

// LockEvent is a plain read: the enclosing immediate transaction already
// holds the database write lock.
func (q sqliteQueries) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	return q.getEvent(ctx, "lock event", `id = ?`, id)
}

func (q sqliteQueries) getEvent(ctx context.Context, op, where, arg string) (*model.Event, error) {
	e, err := scanSQLiteEvent(q.db.QueryRowContext(ctx,
		`SELECT `+sqliteEventColumns+` FROM events WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (q sqliteQueries) CreateEvent(ctx context.Context, e *model.Event) error {
	var capacity any
	if e.MaxParticipants != nil {
		capacity = *e.MaxParticipants
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (id, title, slug, details, max_participants, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Slug, nullString(e.Details), capacity, toMicros(e.CreatedAt),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (q sqliteQueries) CountParticipants(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE event_id = ?`, eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// ListParticipants filters with instr(), which is case-sensitive, unlike
// SQLite's LIKE.
func (q sqliteQueries) ListParticipants(ctx context.Context, pq model.ParticipantQuery) ([]model.Participant, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sqliteParticipantColumns+`
		 FROM participants
		 WHERE event_id = ?
		   AND (? = '' OR instr(name, ?) > 0)
		 ORDER BY subscribed_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		pq.EventID, pq.Query, pq.Query, pq.Limit, pq.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		p, err := scanSQLiteParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (q sqliteQueries) GetParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return q.getParticipant(ctx, "get participant", `id = ?`, id)
}

func (q sqliteQueries) LockParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return q.getParticipant(ctx, "lock participant", `id = ?`, id)
}

func (q sqliteQueries) GetParticipantByEmail(ctx context.Context, eventID, email string) (*model.Participant, error) {
	return q.getParticipant(ctx, "get participant by email", `event_id = ? AND email = ?`, eventID, email)
}

func (q sqliteQueries) getParticipant(ctx context.Context, op, where string, args ...any) (*model.Participant, error) {
	p, err := scanSQLiteParticipant(q.db.QueryRowContext(ctx,
		`SELECT `+sqliteParticipantColumns+` FROM participants WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (q sqliteQueries) CreateParticipant(ctx context.Context, p *model.Participant) error {
	var checkIn any
	if p.CheckInAt != nil {
		checkIn = toMicros(*p.CheckInAt)
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO participants (name, email, subscribed_at, check_in_at, event_id)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Email, toMicros(p.SubscribedAt), checkIn, p.EventID,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("participant id: %w", err)
	}
	p.ID = id
	return nil
}

func (q sqliteQueries) SetCheckIn(ctx context.Context, id int64, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE participants SET check_in_at = ? WHERE id = ? AND check_in_at IS NULL`,
		toMicros(at), id,
	)
	if err != nil {
		return fmt.Errorf("update check-in: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update check-in: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := q.GetParticipant(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
