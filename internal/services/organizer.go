package services

import (
	"context"
	"errors"
	"fmt"

	"matchday/internal/domain"
)

// recentFeedbackLimit bounds the feedback slice in organizer responses.
const recentFeedbackLimit = 20

type organizerService struct {
	store        domain.AttendanceStore
	feedbackRepo domain.FeedbackRepository
	feedbackSvc  domain.FeedbackService
	sweepSvc     domain.SweepService
}

// NewOrganizerService creates the privileged control surface. Forced
// transitions reuse the same transactional primitive as the public state
// machine; only the preconditions differ.
func NewOrganizerService(
	store domain.AttendanceStore,
	feedbackRepo domain.FeedbackRepository,
	feedbackSvc domain.FeedbackService,
	sweepSvc domain.SweepService,
) domain.OrganizerService {
	return &organizerService{
		store:        store,
		feedbackRepo: feedbackRepo,
		feedbackSvc:  feedbackSvc,
		sweepSvc:     sweepSvc,
	}
}

func (s *organizerService) Act(ctx context.Context, req domain.OrganizerRequest) (*domain.OrganizerResult, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, req.Action)
	}

	ev, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev.OrganizerID != req.ActorID {
		return nil, domain.ErrForbidden
	}

	var promotedUserIDs []string
	switch req.Action {
	case domain.OrganizerSweepWaitlist:
		promotions, err := s.sweepSvc.SweepEvent(ctx, req.EventID)
		if err != nil {
			return nil, err
		}
		for _, p := range promotions {
			promotedUserIDs = append(promotedUserIDs, p.UserID)
		}
	case domain.OrganizerFeedback:
		if req.TargetUserID == "" {
			return nil, fmt.Errorf("%w: target user is required", domain.ErrInvalidInput)
		}
		if _, err := s.feedbackSvc.Submit(ctx, req.EventID, req.TargetUserID, req.Rating, req.Comment); err != nil {
			return nil, err
		}
	default:
		if req.TargetUserID == "" {
			return nil, fmt.Errorf("%w: target user is required", domain.ErrInvalidInput)
		}
		promoted, err := s.forceTransition(ctx, req)
		if err != nil {
			return nil, err
		}
		if promoted != "" {
			promotedUserIDs = append(promotedUserIDs, promoted)
		}
	}

	return s.buildResult(ctx, req.EventID, promotedUserIDs)
}

// forceTransition applies one organizer-forced state change inside a single
// attendance transaction. Capacity arbitration is skipped (a forced confirm
// may exceed nominal capacity) but record invariants still hold. Returns the
// auto-promoted user ID when an organizer cancellation freed a slot.
func (s *organizerService) forceTransition(ctx context.Context, req domain.OrganizerRequest) (string, error) {
	var promotedUserID string
	err := s.store.WithinEventTx(ctx, func(tx domain.AttendanceTx) error {
		ev, err := tx.GetEventForUpdate(ctx, req.EventID)
		if err != nil {
			return err
		}

		rec, err := tx.GetActiveRecord(ctx, req.EventID, req.TargetUserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get active record: %w", err)
		}
		missing := errors.Is(err, domain.ErrNotFound)

		switch req.Action {
		case domain.OrganizerConfirm:
			if missing {
				rec = domain.NewAttendanceRecord(req.EventID, req.TargetUserID, domain.StatusConfirmed, nil)
				if err := tx.InsertRecord(ctx, rec); err != nil {
					return fmt.Errorf("insert record: %w", err)
				}
			} else {
				if rec.Status == domain.StatusCheckedIn || rec.Status == domain.StatusNoShow {
					return domain.ErrInvalidTransition
				}
				if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusConfirmed, nil); err != nil {
					return err
				}
			}
			if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(req.EventID, req.TargetUserID, domain.ActionRSVPConfirmed, req.ActorID)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}

		case domain.OrganizerWaitlist:
			if !missing && rec.Status != domain.StatusConfirmed && rec.Status != domain.StatusWaitlisted {
				return domain.ErrInvalidTransition
			}
			max, err := tx.MaxWaitlistPosition(ctx, req.EventID)
			if err != nil {
				return fmt.Errorf("max waitlist position: %w", err)
			}
			pos := max + 1
			if missing {
				rec = domain.NewAttendanceRecord(req.EventID, req.TargetUserID, domain.StatusWaitlisted, &pos)
				if err := tx.InsertRecord(ctx, rec); err != nil {
					return fmt.Errorf("insert record: %w", err)
				}
			} else if rec.Status == domain.StatusConfirmed {
				if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusWaitlisted, &pos); err != nil {
					return err
				}
			}
			if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(req.EventID, req.TargetUserID, domain.ActionWaitlisted, req.ActorID)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}

		case domain.OrganizerCancel:
			if missing || (rec.Status != domain.StatusConfirmed && rec.Status != domain.StatusWaitlisted) {
				return domain.ErrInvalidTransition
			}
			wasConfirmed := rec.Status == domain.StatusConfirmed
			if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusCancelled, nil); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(req.EventID, req.TargetUserID, domain.ActionCancelled, req.ActorID)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}
			if wasConfirmed {
				promoted, err := promoteNext(ctx, tx, ev, req.ActorID)
				if err != nil {
					return err
				}
				if promoted != nil {
					promotedUserID = promoted.UserID
				}
			}

		case domain.OrganizerCheckIn:
			if missing || rec.Status != domain.StatusConfirmed {
				return domain.ErrInvalidTransition
			}
			if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusCheckedIn, nil); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(req.EventID, req.TargetUserID, domain.ActionCheckedIn, req.ActorID)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}

		case domain.OrganizerNoShow:
			// Reachable from CONFIRMED, or from CHECKED_IN when the
			// organizer corrects a mistaken check-in.
			if missing || (rec.Status != domain.StatusConfirmed && rec.Status != domain.StatusCheckedIn) {
				return domain.ErrInvalidTransition
			}
			if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusNoShow, nil); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(req.EventID, req.TargetUserID, domain.ActionNoShow, req.ActorID)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}
		}

		return refreshSoldOut(ctx, tx, ev)
	})
	if err != nil {
		return "", err
	}
	return promotedUserID, nil
}

func (s *organizerService) buildResult(ctx context.Context, eventID string, promotedUserIDs []string) (*domain.OrganizerResult, error) {
	roster, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	confirmed, err := s.store.CountByStatus(ctx, eventID, domain.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}
	waitlisted, err := s.store.CountByStatus(ctx, eventID, domain.StatusWaitlisted)
	if err != nil {
		return nil, fmt.Errorf("count waitlisted: %w", err)
	}
	feedback, err := s.feedbackRepo.ListByEvent(ctx, eventID, recentFeedbackLimit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return &domain.OrganizerResult{
		Roster:          roster,
		Summary:         buildSummary(ev, confirmed, waitlisted),
		RecentFeedback:  feedback,
		PromotedUserIDs: promotedUserIDs,
	}, nil
}
