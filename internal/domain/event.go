package domain

import (
	"context"
	"time"
)

// Event represents a group sports event with a bounded number of confirmed
// attendees. Capacity nil means unlimited; unlimited events never waitlist.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	OrganizerID   string    `json:"organizer_id"`
	Capacity      *int      `json:"capacity"`
	AllowWaitlist bool      `json:"allow_waitlist"`
	IsSoldOut     bool      `json:"is_sold_out"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, organizerID string, capacity *int, allowWaitlist bool, startsAt, endsAt time.Time) *Event {
	now := time.Now()
	return &Event{
		Name:          name,
		OrganizerID:   organizerID,
		Capacity:      capacity,
		AllowWaitlist: allowWaitlist,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasEnded reports whether the event's end time has passed at the given instant.
func (e *Event) HasEnded(now time.Time) bool {
	return now.After(e.EndsAt)
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]*Event, error)
}

// EventService defines event management operations outside the attendance core.
type EventService interface {
	// CreateEvent persists the event and records the organizer as a
	// confirmed attendee.
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListUpcomingEvents(ctx context.Context) ([]*Event, error)
}
