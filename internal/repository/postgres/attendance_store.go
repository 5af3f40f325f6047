package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"matchday/internal/domain"
)

// Transaction retry policy for lock/serialization conflicts.
const (
	txMaxAttempts  = 3
	txRetryBackoff = 50 * time.Millisecond
)

type attendanceStore struct {
	DB *sql.DB
}

// NewAttendanceStore returns an AttendanceStore backed by Postgres. All
// state-mutating attendance operations run through WithinEventTx so that the
// capacity reads and the dependent writes share one transaction.
func NewAttendanceStore(db *sql.DB) domain.AttendanceStore {
	return &attendanceStore{DB: db}
}

// WithinEventTx runs fn inside a transaction. Serialization and lock
// conflicts roll back and retry with backoff up to txMaxAttempts, after
// which domain.ErrTransient is returned. Business errors from fn abort the
// transaction wholesale and are returned as-is.
func (s *attendanceStore) WithinEventTx(ctx context.Context, fn func(tx domain.AttendanceTx) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		select {
		case <-time.After(time.Duration(attempt) * txRetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrTransient, lastErr)
}

func (s *attendanceStore) runTx(ctx context.Context, fn func(tx domain.AttendanceTx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&attendanceTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isRetryable reports whether err is a Postgres serialization failure,
// deadlock, or lock timeout worth retrying.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

func (s *attendanceStore) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return scanEvent(s.DB.QueryRowContext(ctx, eventSelect+` WHERE id = $1`, eventID))
}

func (s *attendanceStore) CountByStatus(ctx context.Context, eventID string, status domain.AttendanceStatus) (int, error) {
	return countByStatus(ctx, s.DB, eventID, status)
}

func (s *attendanceStore) GetActiveRecord(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	query := recordSelect + `
		WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
	`
	return scanRecordRow(s.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (s *attendanceStore) ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceRecord, error) {
	query := recordSelect + `
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *attendanceStore) ListSweepCandidates(ctx context.Context, now, until time.Time) ([]string, error) {
	// Events starting in the window with at least one waitlisted record and
	// fewer confirmed records than capacity. Unlimited events never waitlist
	// so the capacity join is an inner one.
	query := `
		SELECT e.id
		FROM events e
		WHERE e.starts_at > $1 AND e.starts_at <= $2
		  AND e.capacity IS NOT NULL
		  AND (SELECT COUNT(*) FROM attendance_records r
		       WHERE r.event_id = e.id AND r.status = 'WAITLISTED') > 0
		  AND (SELECT COUNT(*) FROM attendance_records r
		       WHERE r.event_id = e.id AND r.status = 'CONFIRMED') < e.capacity
		ORDER BY e.starts_at ASC
	`
	rows, err := s.DB.QueryContext(ctx, query, now, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// attendanceTx implements domain.AttendanceTx over one open *sql.Tx.
type attendanceTx struct {
	tx *sql.Tx
}

const eventSelect = `
	SELECT id, name, organizer_id, capacity, allow_waitlist, is_sold_out,
	       starts_at, ends_at, created_at, updated_at
	FROM events`

const recordSelect = `
	SELECT id, event_id, user_id, status, position, created_at, updated_at
	FROM attendance_records`

func (t *attendanceTx) GetEventForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	return scanEvent(t.tx.QueryRowContext(ctx, eventSelect+` WHERE id = $1 FOR UPDATE`, eventID))
}

func (t *attendanceTx) GetActiveRecord(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	query := recordSelect + `
		WHERE event_id = $1 AND user_id = $2 AND status <> 'CANCELLED'
	`
	return scanRecordRow(t.tx.QueryRowContext(ctx, query, eventID, userID))
}

func (t *attendanceTx) CountByStatus(ctx context.Context, eventID string, status domain.AttendanceStatus) (int, error) {
	return countByStatus(ctx, t.tx, eventID, status)
}

func (t *attendanceTx) MaxWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0)
		FROM attendance_records
		WHERE event_id = $1 AND status = 'WAITLISTED'
	`
	var max int
	err := t.tx.QueryRowContext(ctx, query, eventID).Scan(&max)
	return max, err
}

func (t *attendanceTx) NextWaitlisted(ctx context.Context, eventID string) (*domain.AttendanceRecord, error) {
	query := recordSelect + `
		WHERE event_id = $1 AND status = 'WAITLISTED'
		ORDER BY position ASC
		LIMIT 1
	`
	return scanRecordRow(t.tx.QueryRowContext(ctx, query, eventID))
}

func (t *attendanceTx) InsertRecord(ctx context.Context, rec *domain.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `
		INSERT INTO attendance_records (id, event_id, user_id, status, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.ExecContext(ctx, query,
		rec.ID, rec.EventID, rec.UserID, string(rec.Status), nullableInt(rec.Position),
		rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (t *attendanceTx) UpdateRecordStatus(ctx context.Context, recordID string, status domain.AttendanceStatus, position *int) error {
	query := `
		UPDATE attendance_records
		SET status = $1, position = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := t.tx.ExecContext(ctx, query, string(status), nullableInt(position), recordID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *attendanceTx) SetSoldOut(ctx context.Context, eventID string, soldOut bool) error {
	query := `UPDATE events SET is_sold_out = $1, updated_at = NOW() WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, soldOut, eventID)
	return err
}

func (t *attendanceTx) AppendLog(ctx context.Context, entry *domain.AttendanceLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO attendance_log (id, event_id, user_id, action, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := t.tx.ExecContext(ctx, query,
		entry.ID, entry.EventID, entry.UserID, string(entry.Action), entry.ActorID, entry.OccurredAt,
	)
	return err
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countByStatus(ctx context.Context, q queryer, eventID string, status domain.AttendanceStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attendance_records
		WHERE event_id = $1 AND status = $2
	`
	var count int
	err := q.QueryRowContext(ctx, query, eventID, string(status)).Scan(&count)
	return count, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var capNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.OrganizerID, &capNull, &e.AllowWaitlist, &e.IsSoldOut,
		&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if capNull.Valid {
		capacity := int(capNull.Int64)
		e.Capacity = &capacity
	}
	return e, nil
}

func scanRecordRow(row rowScanner) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{}
	var status string
	var posNull sql.NullInt64
	err := row.Scan(&rec.ID, &rec.EventID, &rec.UserID, &status, &posNull, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Status = domain.AttendanceStatus(status)
	if posNull.Valid {
		pos := int(posNull.Int64)
		rec.Position = &pos
	}
	return rec, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
