package domain

import (
	"context"
	"time"
)

// AttendanceStatus is the lifecycle state of an attendance record.
type AttendanceStatus string

// Attendance statuses. CANCELLED, CHECKED_IN, and NO_SHOW are terminal for a
// record instance; a fresh join after CANCELLED starts a new record.
const (
	StatusConfirmed  AttendanceStatus = "CONFIRMED"
	StatusWaitlisted AttendanceStatus = "WAITLISTED"
	StatusCancelled  AttendanceStatus = "CANCELLED"
	StatusCheckedIn  AttendanceStatus = "CHECKED_IN"
	StatusNoShow     AttendanceStatus = "NO_SHOW"
)

// Active reports whether the status counts against the one-active-record
// rule: every status except CANCELLED does.
func (s AttendanceStatus) Active() bool {
	return s != StatusCancelled
}

// AttendanceRecord tracks one user's RSVP state for one event. At most one
// non-CANCELLED record exists per (event, user) pair; Position is set only
// while the record is WAITLISTED and orders FIFO promotion.
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	ID        string           `json:"id"`
	EventID   string           `json:"event_id"`
	UserID    string           `json:"user_id"`
	Status    AttendanceStatus `json:"status"`
	Position  *int             `json:"position,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewAttendanceRecord returns a new record for the pair in the given status.
func NewAttendanceRecord(eventID, userID string, status AttendanceStatus, position *int) *AttendanceRecord {
	now := time.Now()
	return &AttendanceRecord{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttendanceSummary is the derived read model for one event's attendance.
// It is computed fresh from record aggregates on every read, never stored.
// swagger:model AttendanceSummary
type AttendanceSummary struct {
	ConfirmedCount int  `json:"confirmed_count"`
	WaitlistCount  int  `json:"waitlist_count"`
	Capacity       *int `json:"capacity"`
	IsFull         bool `json:"is_full"`
}

// JoinResult is returned by AttendanceService.Join.
type JoinResult struct {
	Record     *AttendanceRecord  `json:"record"`
	Waitlisted bool               `json:"waitlisted"`
	Summary    *AttendanceSummary `json:"summary"`
}

// LeaveResult is returned by AttendanceService.Leave. PromotedUserID is set
// when the freed slot auto-promoted a waitlisted attendee; notification
// delivery is the caller's responsibility, outside the transaction.
type LeaveResult struct {
	Record         *AttendanceRecord  `json:"record"`
	PromotedUserID string             `json:"promoted_user_id,omitempty"`
	Summary        *AttendanceSummary `json:"summary"`
}

// AttendanceTx is the set of storage operations available inside one atomic
// attendance transaction. The event row is locked for the duration, so reads
// through it cannot race with a concurrent join or promotion on the same
// event.
type AttendanceTx interface {
	// GetEventForUpdate loads the event row under an exclusive row lock.
	GetEventForUpdate(ctx context.Context, eventID string) (*Event, error)
	// GetActiveRecord returns the pair's non-CANCELLED record, or ErrNotFound.
	GetActiveRecord(ctx context.Context, eventID, userID string) (*AttendanceRecord, error)
	// CountByStatus counts the event's records with the given status.
	CountByStatus(ctx context.Context, eventID string, status AttendanceStatus) (int, error)
	// MaxWaitlistPosition returns the highest waitlist position for the
	// event, or 0 when the waitlist is empty.
	MaxWaitlistPosition(ctx context.Context, eventID string) (int, error)
	// NextWaitlisted returns the waitlisted record with the smallest
	// position, or ErrNotFound when the waitlist is empty.
	NextWaitlisted(ctx context.Context, eventID string) (*AttendanceRecord, error)
	InsertRecord(ctx context.Context, rec *AttendanceRecord) error
	// UpdateRecordStatus moves a record to status, replacing its waitlist
	// position (nil clears it).
	UpdateRecordStatus(ctx context.Context, recordID string, status AttendanceStatus, position *int) error
	SetSoldOut(ctx context.Context, eventID string, soldOut bool) error
	AppendLog(ctx context.Context, entry *AttendanceLogEntry) error
}

// AttendanceStore owns attendance persistence. WithinEventTx runs fn inside
// a single transaction, retrying a bounded number of times on lock or
// serialization conflicts before giving up with ErrTransient. The remaining
// methods are plain reads outside any transaction.
type AttendanceStore interface {
	WithinEventTx(ctx context.Context, fn func(tx AttendanceTx) error) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetActiveRecord(ctx context.Context, eventID, userID string) (*AttendanceRecord, error)
	CountByStatus(ctx context.Context, eventID string, status AttendanceStatus) (int, error)
	ListByEvent(ctx context.Context, eventID string) ([]*AttendanceRecord, error)
	// ListSweepCandidates returns IDs of events starting in (now, until]
	// that have spare confirmed capacity and a non-empty waitlist.
	ListSweepCandidates(ctx context.Context, now, until time.Time) ([]string, error)
}

// AttendanceService is the RSVP state machine and summary builder.
type AttendanceService interface {
	Join(ctx context.Context, eventID, userID string) (*JoinResult, error)
	Leave(ctx context.Context, eventID, userID string) (*LeaveResult, error)
	GetSummary(ctx context.Context, eventID string) (*AttendanceSummary, error)
}
