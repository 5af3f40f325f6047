package domain

import (
	"context"
	"time"
)

// EventFeedback is a post-event rating left by a participant. Unique per
// (event, user); re-submission replaces the previous rating and comment.
// swagger:model EventFeedback
type EventFeedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventFeedback returns feedback for the pair with the given rating.
func NewEventFeedback(eventID, userID string, rating int, comment *string) *EventFeedback {
	return &EventFeedback{
		EventID:   eventID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
}

// FeedbackRepository defines storage operations for event feedback.
type FeedbackRepository interface {
	// Upsert inserts the feedback or replaces the pair's existing row.
	Upsert(ctx context.Context, fb *EventFeedback) error
	ListByEvent(ctx context.Context, eventID string, limit int) ([]*EventFeedback, error)
}

// FeedbackService records post-event feedback, gated on prior attendance:
// the participant must have been checked in at some point, or hold a
// confirmed record for an event that has already ended.
type FeedbackService interface {
	Submit(ctx context.Context, eventID, userID string, rating int, comment *string) (*EventFeedback, error)
}
