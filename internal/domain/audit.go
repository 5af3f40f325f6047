package domain

import (
	"context"
	"time"
)

// AttendanceAction names a recorded attendance transition.
type AttendanceAction string

const (
	ActionRSVPConfirmed AttendanceAction = "RSVP_CONFIRMED"
	ActionWaitlisted    AttendanceAction = "WAITLISTED"
	ActionCancelled     AttendanceAction = "CANCELLED"
	ActionPromoted      AttendanceAction = "PROMOTED"
	ActionCheckedIn     AttendanceAction = "CHECKED_IN"
	ActionNoShow        AttendanceAction = "NO_SHOW"
)

// AttendanceLogEntry is one immutable audit row per transition. ActorID is
// who caused the transition and may differ from UserID for organizer-forced
// actions.
// swagger:model AttendanceLogEntry
type AttendanceLogEntry struct {
	ID         string           `json:"id"`
	EventID    string           `json:"event_id"`
	UserID     string           `json:"user_id"`
	Action     AttendanceAction `json:"action"`
	ActorID    string           `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewAttendanceLogEntry returns a log entry stamped with the current time.
func NewAttendanceLogEntry(eventID, userID string, action AttendanceAction, actorID string) *AttendanceLogEntry {
	return &AttendanceLogEntry{
		EventID:    eventID,
		UserID:     userID,
		Action:     action,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
}

// AttendanceLogRepository is the read side of the audit log. Writes go
// through AttendanceTx.AppendLog only.
type AttendanceLogRepository interface {
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*AttendanceLogEntry, int, error)
	// HasAction reports whether the pair ever recorded the given action.
	HasAction(ctx context.Context, eventID, userID string, action AttendanceAction) (bool, error)
}
