package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matchday/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	store     domain.AttendanceStore
}

// NewEventService creates the event management service.
func NewEventService(eventRepo domain.EventRepository, store domain.AttendanceStore) domain.EventService {
	return &eventService{eventRepo: eventRepo, store: store}
}

// CreateEvent persists the event and seeds the organizer as a confirmed
// attendee, so the roster never exists without its organizer.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if event.OrganizerID == "" {
		return fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && *event.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be a positive integer", domain.ErrInvalidInput)
	}
	if !event.EndsAt.After(event.StartsAt) {
		return fmt.Errorf("%w: event must end after it starts", domain.ErrInvalidInput)
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	err := s.store.WithinEventTx(ctx, func(tx domain.AttendanceTx) error {
		ev, err := tx.GetEventForUpdate(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		rec := domain.NewAttendanceRecord(ev.ID, ev.OrganizerID, domain.StatusConfirmed, nil)
		if err := tx.InsertRecord(ctx, rec); err != nil {
			return fmt.Errorf("insert organizer record: %w", err)
		}
		if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(ev.ID, ev.OrganizerID, domain.ActionRSVPConfirmed, ev.OrganizerID)); err != nil {
			return fmt.Errorf("append log: %w", err)
		}
		return refreshSoldOut(ctx, tx, ev)
	})
	if err != nil {
		return fmt.Errorf("seed organizer attendance: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListUpcomingEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListUpcoming(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
