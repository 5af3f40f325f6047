package services

import (
	"context"
	"errors"
	"fmt"

	"matchday/internal/domain"
)

type attendanceService struct {
	store domain.AttendanceStore
}

// NewAttendanceService creates the RSVP state machine over the given store.
func NewAttendanceService(store domain.AttendanceStore) domain.AttendanceService {
	return &attendanceService{store: store}
}

// Join creates or revives the pair's attendance record: CONFIRMED while a
// slot is free, WAITLISTED once the event is full. The capacity read and the
// record write share one row-locked transaction, so two concurrent joins
// cannot both take the last slot.
func (s *attendanceService) Join(ctx context.Context, eventID, userID string) (*domain.JoinResult, error) {
	var result *domain.JoinResult
	err := s.store.WithinEventTx(ctx, func(tx domain.AttendanceTx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}

		existing, err := tx.GetActiveRecord(ctx, eventID, userID)
		if err == nil {
			if existing.Status == domain.StatusWaitlisted {
				// Joining while already waitlisted is a no-op success.
				summary, err := summaryInTx(ctx, tx, ev)
				if err != nil {
					return err
				}
				result = &domain.JoinResult{Record: existing, Waitlisted: true, Summary: summary}
				return nil
			}
			return domain.ErrAlreadyConfirmed
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get active record: %w", err)
		}

		status := domain.StatusConfirmed
		var position *int
		if ev.Capacity != nil {
			confirmed, err := tx.CountByStatus(ctx, eventID, domain.StatusConfirmed)
			if err != nil {
				return fmt.Errorf("count confirmed: %w", err)
			}
			if confirmed >= *ev.Capacity {
				if !ev.AllowWaitlist {
					return domain.ErrWaitlistDisabled
				}
				max, err := tx.MaxWaitlistPosition(ctx, eventID)
				if err != nil {
					return fmt.Errorf("max waitlist position: %w", err)
				}
				next := max + 1
				status = domain.StatusWaitlisted
				position = &next
			}
		}

		rec := domain.NewAttendanceRecord(eventID, userID, status, position)
		if err := tx.InsertRecord(ctx, rec); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		action := domain.ActionRSVPConfirmed
		if status == domain.StatusWaitlisted {
			action = domain.ActionWaitlisted
		}
		if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(eventID, userID, action, userID)); err != nil {
			return fmt.Errorf("append log: %w", err)
		}
		if err := refreshSoldOut(ctx, tx, ev); err != nil {
			return err
		}

		summary, err := summaryInTx(ctx, tx, ev)
		if err != nil {
			return err
		}
		result = &domain.JoinResult{
			Record:     rec,
			Waitlisted: status == domain.StatusWaitlisted,
			Summary:    summary,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Leave cancels the pair's active record. A freed confirmed slot immediately
// promotes the earliest-waiting attendee; the promoted user ID is surfaced so
// the caller can notify them after commit.
func (s *attendanceService) Leave(ctx context.Context, eventID, userID string) (*domain.LeaveResult, error) {
	var result *domain.LeaveResult
	err := s.store.WithinEventTx(ctx, func(tx domain.AttendanceTx) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if ev.OrganizerID == userID {
			return domain.ErrOrganizerCannotLeave
		}

		rec, err := tx.GetActiveRecord(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotAttending
			}
			return fmt.Errorf("get active record: %w", err)
		}
		if rec.Status != domain.StatusConfirmed && rec.Status != domain.StatusWaitlisted {
			// Checked-in and no-show records are settled; they cannot leave.
			return domain.ErrNotAttending
		}

		wasConfirmed := rec.Status == domain.StatusConfirmed
		if err := tx.UpdateRecordStatus(ctx, rec.ID, domain.StatusCancelled, nil); err != nil {
			return fmt.Errorf("cancel record: %w", err)
		}
		rec.Status = domain.StatusCancelled
		rec.Position = nil
		if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(eventID, userID, domain.ActionCancelled, userID)); err != nil {
			return fmt.Errorf("append log: %w", err)
		}

		var promotedUserID string
		if wasConfirmed {
			promoted, err := promoteNext(ctx, tx, ev, userID)
			if err != nil {
				return err
			}
			if promoted != nil {
				promotedUserID = promoted.UserID
			}
		}
		if err := refreshSoldOut(ctx, tx, ev); err != nil {
			return err
		}

		summary, err := summaryInTx(ctx, tx, ev)
		if err != nil {
			return err
		}
		result = &domain.LeaveResult{Record: rec, PromotedUserID: promotedUserID, Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetSummary recomputes the attendance summary from record aggregates. It is
// never cached so it reflects the latest committed transition.
func (s *attendanceService) GetSummary(ctx context.Context, eventID string) (*domain.AttendanceSummary, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
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
	return buildSummary(ev, confirmed, waitlisted), nil
}

// promoteNext moves the earliest-waiting WAITLISTED record to CONFIRMED.
// Returns nil without error when the waitlist is empty. actorID attributes
// the promotion in the audit log; empty means system-triggered and the
// promoted user is recorded as actor.
func promoteNext(ctx context.Context, tx domain.AttendanceTx, ev *domain.Event, actorID string) (*domain.AttendanceRecord, error) {
	next, err := tx.NextWaitlisted(ctx, ev.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("next waitlisted: %w", err)
	}
	if err := tx.UpdateRecordStatus(ctx, next.ID, domain.StatusConfirmed, nil); err != nil {
		return nil, fmt.Errorf("promote record: %w", err)
	}
	next.Status = domain.StatusConfirmed
	next.Position = nil
	if actorID == "" {
		actorID = next.UserID
	}
	if err := tx.AppendLog(ctx, domain.NewAttendanceLogEntry(ev.ID, next.UserID, domain.ActionPromoted, actorID)); err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}
	return next, nil
}

// refreshSoldOut recomputes the denormalized sold-out flag from the
// confirmed count and writes it back only when it changed.
func refreshSoldOut(ctx context.Context, tx domain.AttendanceTx, ev *domain.Event) error {
	soldOut := false
	if ev.Capacity != nil {
		confirmed, err := tx.CountByStatus(ctx, ev.ID, domain.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed: %w", err)
		}
		soldOut = confirmed >= *ev.Capacity
	}
	if soldOut == ev.IsSoldOut {
		return nil
	}
	if err := tx.SetSoldOut(ctx, ev.ID, soldOut); err != nil {
		return fmt.Errorf("set sold out: %w", err)
	}
	ev.IsSoldOut = soldOut
	return nil
}

func summaryInTx(ctx context.Context, tx domain.AttendanceTx, ev *domain.Event) (*domain.AttendanceSummary, error) {
	confirmed, err := tx.CountByStatus(ctx, ev.ID, domain.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}
	waitlisted, err := tx.CountByStatus(ctx, ev.ID, domain.StatusWaitlisted)
	if err != nil {
		return nil, fmt.Errorf("count waitlisted: %w", err)
	}
	return buildSummary(ev, confirmed, waitlisted), nil
}

func buildSummary(ev *domain.Event, confirmed, waitlisted int) *domain.AttendanceSummary {
	return &domain.AttendanceSummary{
		ConfirmedCount: confirmed,
		WaitlistCount:  waitlisted,
		Capacity:       ev.Capacity,
		IsFull:         ev.Capacity != nil && confirmed >= *ev.Capacity,
	}
}
