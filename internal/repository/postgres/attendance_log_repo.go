package postgres

import (
	"context"
	"database/sql"

	"matchday/internal/domain"
)

type attendanceLogRepository struct {
	DB *sql.DB
}

// NewAttendanceLogRepository returns the read side of the audit log. Writes
// happen only inside attendance transactions (AttendanceTx.AppendLog).
func NewAttendanceLogRepository(db *sql.DB) domain.AttendanceLogRepository {
	return &attendanceLogRepository{DB: db}
}

func (r *attendanceLogRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.AttendanceLogEntry, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM attendance_log WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, user_id, action, actor_id, occurred_at
		FROM attendance_log
		WHERE event_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*domain.AttendanceLogEntry, 0)
	for rows.Next() {
		entry := &domain.AttendanceLogEntry{}
		var action string
		if err := rows.Scan(&entry.ID, &entry.EventID, &entry.UserID, &action, &entry.ActorID, &entry.OccurredAt); err != nil {
			return nil, 0, err
		}
		entry.Action = domain.AttendanceAction(action)
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

func (r *attendanceLogRepository) HasAction(ctx context.Context, eventID, userID string, action domain.AttendanceAction) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance_log
			WHERE event_id = $1 AND user_id = $2 AND action = $3
		)
	`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, userID, string(action)).Scan(&exists)
	return exists, err
}
