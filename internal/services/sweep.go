package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"matchday/internal/domain"
)

type sweepService struct {
	store  domain.AttendanceStore
	logger *slog.Logger
}

// NewSweepService creates the bulk waitlist promotion pass. It is invoked by
// an external timer (and by the organizer surface for single events); the
// service itself does no scheduling.
func NewSweepService(store domain.AttendanceStore, logger *slog.Logger) domain.SweepService {
	return &sweepService{store: store, logger: logger}
}

// SweepWaitlists promotes waitlisted attendees for every event starting
// within lookahead that has spare confirmed capacity. Each promotion commits
// in its own transaction, so partial progress from an interrupted run is
// safe and a re-run with no intervening change promotes nobody.
func (s *sweepService) SweepWaitlists(ctx context.Context, lookahead time.Duration) (*domain.SweepResult, error) {
	now := time.Now()
	eventIDs, err := s.store.ListSweepCandidates(ctx, now, now.Add(lookahead))
	if err != nil {
		return nil, fmt.Errorf("list sweep candidates: %w", err)
	}

	result := &domain.SweepResult{Promotions: []domain.PromotionNotice{}}
	for _, eventID := range eventIDs {
		promotions, err := s.SweepEvent(ctx, eventID)
		if err != nil {
			// Keep sweeping the remaining events; the next run retries.
			s.logger.ErrorContext(ctx, "sweep failed for event", "event_id", eventID, "err", err)
			continue
		}
		result.EventsProcessed++
		result.Promotions = append(result.Promotions, promotions...)
	}
	return result, nil
}

// SweepEvent runs single promotions for one event until it is full or the
// waitlist is exhausted.
func (s *sweepService) SweepEvent(ctx context.Context, eventID string) ([]domain.PromotionNotice, error) {
	promotions := []domain.PromotionNotice{}
	for {
		promoted, err := s.promoteOne(ctx, eventID)
		if err != nil {
			return promotions, err
		}
		if promoted == "" {
			return promotions, nil
		}
		promotions = append(promotions, domain.PromotionNotice{EventID: eventID, UserID: promoted})
	}
}

// promoteOne promotes at most one attendee in its own transaction. Returns
// the promoted user ID, or "" when the event is full, unlimited, or has an
// empty waitlist.
func (s *sweepService) promoteOne(ctx context.Context, eventID string) (string, error) {
	var promotedUserID string
	err := s.store.WithinEventTx(ctx, func(tx domain.AttendanceTx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if ev.Capacity != nil {
			confirmed, err := tx.CountByStatus(ctx, eventID, domain.StatusConfirmed)
			if err != nil {
				return fmt.Errorf("count confirmed: %w", err)
			}
			if confirmed >= *ev.Capacity {
				return refreshSoldOut(ctx, tx, ev)
			}
		}
		promoted, err := promoteNext(ctx, tx, ev, "")
		if err != nil {
			return err
		}
		if promoted != nil {
			promotedUserID = promoted.UserID
		}
		return refreshSoldOut(ctx, tx, ev)
	})
	if err != nil {
		return "", err
	}
	return promotedUserID, nil
}
