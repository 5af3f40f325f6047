package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday/internal/domain"
)

type organizerFixture struct {
	store  *fakeStore
	fbRepo *fakeFeedbackRepo
	svc    domain.OrganizerService
}

func newOrganizerFixture() *organizerFixture {
	store := newFakeStore()
	fbRepo := &fakeFeedbackRepo{}
	feedbackSvc := NewFeedbackService(store, &fakeLogRepo{store: store}, fbRepo)
	sweepSvc := NewSweepService(store, testLogger())
	return &organizerFixture{
		store:  store,
		fbRepo: fbRepo,
		svc:    NewOrganizerService(store, fbRepo, feedbackSvc, sweepSvc),
	}
}

func (f *organizerFixture) request(eventID string, action domain.OrganizerAction, target string) domain.OrganizerRequest {
	return domain.OrganizerRequest{
		EventID:      eventID,
		ActorID:      "organizer",
		Action:       action,
		TargetUserID: target,
	}
}

func TestOrganizerService_Act_RejectsNonOrganizer(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)

	_, err := f.svc.Act(context.Background(), domain.OrganizerRequest{
		EventID:      ev.ID,
		ActorID:      "intruder",
		Action:       domain.OrganizerConfirm,
		TargetUserID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrganizerService_Act_UnknownAction(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, "explode", "u1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrganizerService_Act_EventNotFound(t *testing.T) {
	f := newOrganizerFixture()
	_, err := f.svc.Act(context.Background(), f.request("missing", domain.OrganizerConfirm, "u1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrganizerService_Act_TargetRequired(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerConfirm, ""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrganizerService_Act_ForceConfirmExceedsCapacity(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(1), true)
	f.store.seedRecord(ev.ID, "organizer", domain.StatusConfirmed, nil)

	result, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerConfirm, "u2"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.ConfirmedCount)
	assert.True(t, result.Summary.IsFull)
	assert.Len(t, result.Roster, 2)
	assert.Equal(t, domain.StatusConfirmed, f.store.activeRecord(ev.ID, "u2").Status)
	assert.True(t, f.store.hasLog(ev.ID, "u2", domain.ActionRSVPConfirmed, "organizer"))
}

func TestOrganizerService_Act_ConfirmFromWaitlist(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(1), true)
	f.store.seedRecord(ev.ID, "organizer", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u2", domain.StatusWaitlisted, intPtr(1))

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerConfirm, "u2"))
	require.NoError(t, err)
	rec := f.store.activeRecord(ev.ID, "u2")
	assert.Equal(t, domain.StatusConfirmed, rec.Status)
	assert.Nil(t, rec.Position)
}

func TestOrganizerService_Act_ConfirmSettledRecordFails(t *testing.T) {
	for _, status := range []domain.AttendanceStatus{domain.StatusCheckedIn, domain.StatusNoShow} {
		t.Run(string(status), func(t *testing.T) {
			f := newOrganizerFixture()
			ev := testEvent(f.store, "organizer", intPtr(5), true)
			f.store.seedRecord(ev.ID, "u2", status, nil)

			_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerConfirm, "u2"))
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

func TestOrganizerService_Act_WaitlistDemotesConfirmed(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)
	f.store.seedRecord(ev.ID, "u2", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u3", domain.StatusWaitlisted, intPtr(1))

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerWaitlist, "u2"))
	require.NoError(t, err)
	rec := f.store.activeRecord(ev.ID, "u2")
	assert.Equal(t, domain.StatusWaitlisted, rec.Status)
	require.NotNil(t, rec.Position)
	assert.Equal(t, 2, *rec.Position)
}

func TestOrganizerService_Act_CancelConfirmedPromotesNext(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(2), true)
	f.store.seedRecord(ev.ID, "organizer", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u2", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u3", domain.StatusWaitlisted, intPtr(1))

	result, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerCancel, "u2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, result.PromotedUserIDs)
	assert.Nil(t, f.store.activeRecord(ev.ID, "u2"))
	assert.Equal(t, domain.StatusConfirmed, f.store.activeRecord(ev.ID, "u3").Status)
	assert.True(t, f.store.hasLog(ev.ID, "u2", domain.ActionCancelled, "organizer"))
	assert.True(t, f.store.hasLog(ev.ID, "u3", domain.ActionPromoted, "organizer"))
}

func TestOrganizerService_Act_CancelWithoutRecordFails(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerCancel, "ghost"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrganizerService_Act_CheckInAndNoShow(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)
	f.store.seedRecord(ev.ID, "u2", domain.StatusConfirmed, nil)
	ctx := context.Background()

	_, err := f.svc.Act(ctx, f.request(ev.ID, domain.OrganizerCheckIn, "u2"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedIn, f.store.activeRecord(ev.ID, "u2").Status)
	assert.True(t, f.store.hasLog(ev.ID, "u2", domain.ActionCheckedIn, "organizer"))

	// A mistaken check-in can be corrected to a no-show.
	_, err = f.svc.Act(ctx, f.request(ev.ID, domain.OrganizerNoShow, "u2"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoShow, f.store.activeRecord(ev.ID, "u2").Status)
}

func TestOrganizerService_Act_CheckInFromWaitlistFails(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(1), true)
	f.store.seedRecord(ev.ID, "u1", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u2", domain.StatusWaitlisted, intPtr(1))

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerCheckIn, "u2"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrganizerService_Act_NoShowFromWaitlistFails(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(1), true)
	f.store.seedRecord(ev.ID, "u1", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u2", domain.StatusWaitlisted, intPtr(1))

	_, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerNoShow, "u2"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrganizerService_Act_SweepWaitlist(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(3), true)
	f.store.seedRecord(ev.ID, "organizer", domain.StatusConfirmed, nil)
	f.store.seedRecord(ev.ID, "u2", domain.StatusWaitlisted, intPtr(1))
	f.store.seedRecord(ev.ID, "u3", domain.StatusWaitlisted, intPtr(2))

	result, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerSweepWaitlist, ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, result.PromotedUserIDs)
	assert.Equal(t, 3, result.Summary.ConfirmedCount)
	assert.Zero(t, result.Summary.WaitlistCount)
}

func TestOrganizerService_Act_FeedbackOnBehalfOfAttendee(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)
	f.store.seedRecord(ev.ID, "u2", domain.StatusCheckedIn, nil)
	f.store.logs = append(f.store.logs, domain.NewAttendanceLogEntry(ev.ID, "u2", domain.ActionCheckedIn, "organizer"))

	req := f.request(ev.ID, domain.OrganizerFeedback, "u2")
	req.Rating = 4
	result, err := f.svc.Act(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.RecentFeedback, 1)
	assert.Equal(t, "u2", result.RecentFeedback[0].UserID)
	assert.Equal(t, 4, result.RecentFeedback[0].Rating)
}

func TestOrganizerService_Act_ResultIncludesRecentFeedback(t *testing.T) {
	f := newOrganizerFixture()
	ev := testEvent(f.store, "organizer", intPtr(5), true)
	f.store.seedRecord(ev.ID, "u2", domain.StatusConfirmed, nil)
	require.NoError(t, f.fbRepo.Upsert(context.Background(), domain.NewEventFeedback(ev.ID, "u9", 5, nil)))

	result, err := f.svc.Act(context.Background(), f.request(ev.ID, domain.OrganizerCheckIn, "u2"))
	require.NoError(t, err)
	require.Len(t, result.RecentFeedback, 1)
	assert.Equal(t, 5, result.RecentFeedback[0].Rating)
	assert.False(t, result.RecentFeedback[0].CreatedAt.After(time.Now()))
}
