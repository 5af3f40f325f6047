package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matchday/internal/domain"
)

const maxFeedbackCommentLen = 2000

type feedbackService struct {
	store   domain.AttendanceStore
	logRepo domain.AttendanceLogRepository
	repo    domain.FeedbackRepository
}

// NewFeedbackService creates the post-event feedback service.
func NewFeedbackService(store domain.AttendanceStore, logRepo domain.AttendanceLogRepository, repo domain.FeedbackRepository) domain.FeedbackService {
	return &feedbackService{store: store, logRepo: logRepo, repo: repo}
}

// Submit records feedback for the pair. Eligibility requires prior
// attendance: a CHECKED_IN entry in the audit log (which survives a later
// forced no-show), or a still-CONFIRMED record for an event that has ended.
func (s *feedbackService) Submit(ctx context.Context, eventID, userID string, rating int, comment *string) (*domain.EventFeedback, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else {
			if len(trimmed) > maxFeedbackCommentLen {
				return nil, fmt.Errorf("%w: comment too long", domain.ErrInvalidInput)
			}
			comment = &trimmed
		}
	}

	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	eligible, err := s.eligible(ctx, ev, userID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.ErrFeedbackNotEligible
	}

	fb := domain.NewEventFeedback(eventID, userID, rating, comment)
	if err := s.repo.Upsert(ctx, fb); err != nil {
		return nil, fmt.Errorf("upsert feedback: %w", err)
	}
	return fb, nil
}

func (s *feedbackService) eligible(ctx context.Context, ev *domain.Event, userID string) (bool, error) {
	checkedIn, err := s.logRepo.HasAction(ctx, ev.ID, userID, domain.ActionCheckedIn)
	if err != nil {
		return false, fmt.Errorf("check audit log: %w", err)
	}
	if checkedIn {
		return true, nil
	}
	if !ev.HasEnded(time.Now()) {
		return false, nil
	}
	rec, err := s.store.GetActiveRecord(ctx, ev.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get active record: %w", err)
	}
	return rec.Status == domain.StatusConfirmed, nil
}
