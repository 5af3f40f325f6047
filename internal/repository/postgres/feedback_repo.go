package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"matchday/internal/domain"
)

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{DB: db}
}

// Upsert inserts the feedback row or, when the pair already left feedback,
// replaces its rating and comment.
func (r *feedbackRepository) Upsert(ctx context.Context, fb *domain.EventFeedback) error {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	query := `
		INSERT INTO event_feedback (id, event_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id, created_at
	`
	var comment any
	if fb.Comment != nil {
		comment = *fb.Comment
	}
	return r.DB.QueryRowContext(ctx, query,
		fb.ID, fb.EventID, fb.UserID, fb.Rating, comment, fb.CreatedAt,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func (r *feedbackRepository) ListByEvent(ctx context.Context, eventID string, limit int) ([]*domain.EventFeedback, error) {
	query := `
		SELECT id, event_id, user_id, rating, comment, created_at
		FROM event_feedback
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.EventFeedback, 0)
	for rows.Next() {
		fb := &domain.EventFeedback{}
		var commentNull sql.NullString
		if err := rows.Scan(&fb.ID, &fb.EventID, &fb.UserID, &fb.Rating, &commentNull, &fb.CreatedAt); err != nil {
			return nil, err
		}
		if commentNull.Valid {
			fb.Comment = &commentNull.String
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}
