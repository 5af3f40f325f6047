package domain

import (
	"context"
	"time"
)

// OrganizerAction is the closed set of transitions an organizer may force.
type OrganizerAction string

const (
	OrganizerConfirm       OrganizerAction = "confirm"
	OrganizerWaitlist      OrganizerAction = "waitlist"
	OrganizerCancel        OrganizerAction = "cancel"
	OrganizerCheckIn       OrganizerAction = "check_in"
	OrganizerNoShow        OrganizerAction = "no_show"
	OrganizerSweepWaitlist OrganizerAction = "sweep_waitlist"
	OrganizerFeedback      OrganizerAction = "feedback"
)

// Valid reports whether a is a known organizer action.
func (a OrganizerAction) Valid() bool {
	switch a {
	case OrganizerConfirm, OrganizerWaitlist, OrganizerCancel,
		OrganizerCheckIn, OrganizerNoShow, OrganizerSweepWaitlist,
		OrganizerFeedback:
		return true
	}
	return false
}

// OrganizerRequest is one organizer action against an event. TargetUserID
// names the attendee the action applies to; it is unused for
// sweep_waitlist. Rating and Comment apply to the feedback action only.
type OrganizerRequest struct {
	EventID      string
	ActorID      string
	Action       OrganizerAction
	TargetUserID string
	Rating       int
	Comment      *string
}

// OrganizerResult is the refreshed view returned after an organizer action.
type OrganizerResult struct {
	Roster          []*AttendanceRecord `json:"roster"`
	Summary         *AttendanceSummary  `json:"summary"`
	RecentFeedback  []*EventFeedback    `json:"recent_feedback"`
	PromotedUserIDs []string            `json:"promoted_user_ids,omitempty"`
}

// OrganizerService is the privileged control surface over the attendance
// state machine. Organizer actions bypass capacity arbitration (a forced
// confirm may exceed nominal capacity) but still respect the record-level
// invariants.
type OrganizerService interface {
	Act(ctx context.Context, req OrganizerRequest) (*OrganizerResult, error)
}

// PromotionNotice is the fact a promotion produced, returned to callers so
// they can trigger notification delivery after the transaction commits.
type PromotionNotice struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// SweepResult reports one bulk promotion pass.
type SweepResult struct {
	EventsProcessed int               `json:"events_processed"`
	Promotions      []PromotionNotice `json:"promotions"`
}

// SweepService runs the waitlist promotion sweep. Each promotion commits in
// its own transaction, so an interrupted sweep is safe to re-run.
type SweepService interface {
	// SweepWaitlists promotes across all events starting within lookahead.
	SweepWaitlists(ctx context.Context, lookahead time.Duration) (*SweepResult, error)
	// SweepEvent promotes for a single event until full or exhausted.
	SweepEvent(ctx context.Context, eventID string) ([]PromotionNotice, error)
}
