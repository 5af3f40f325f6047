package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday/internal/domain"
)

func TestEventService_CreateEvent_SeedsOrganizerAttendance(t *testing.T) {
	store := newFakeStore()
	svc := NewEventService(&fakeEventRepo{store: store}, store)

	ev := domain.NewEvent("Friday Football", "organizer", intPtr(10), true,
		time.Now().Add(24*time.Hour), time.Now().Add(26*time.Hour))
	require.NoError(t, svc.CreateEvent(context.Background(), ev))
	require.NotEmpty(t, ev.ID)

	rec := store.activeRecord(ev.ID, "organizer")
	require.NotNil(t, rec)
	assert.Equal(t, domain.StatusConfirmed, rec.Status)
	assert.True(t, store.hasLog(ev.ID, "organizer", domain.ActionRSVPConfirmed, "organizer"))
	assert.False(t, ev.IsSoldOut)
}

func TestEventService_CreateEvent_CapacityOneSellsOutImmediately(t *testing.T) {
	store := newFakeStore()
	svc := NewEventService(&fakeEventRepo{store: store}, store)

	ev := domain.NewEvent("Squash Ladder", "organizer", intPtr(1), true,
		time.Now().Add(24*time.Hour), time.Now().Add(25*time.Hour))
	require.NoError(t, svc.CreateEvent(context.Background(), ev))
	assert.True(t, ev.IsSoldOut)
}

func TestEventService_CreateEvent_Validation(t *testing.T) {
	starts := time.Now().Add(24 * time.Hour)
	ends := starts.Add(2 * time.Hour)

	tests := []struct {
		name  string
		event *domain.Event
	}{
		{"empty name", domain.NewEvent("   ", "organizer", intPtr(10), true, starts, ends)},
		{"missing organizer", domain.NewEvent("Football", "", intPtr(10), true, starts, ends)},
		{"zero capacity", domain.NewEvent("Football", "organizer", intPtr(0), true, starts, ends)},
		{"negative capacity", domain.NewEvent("Football", "organizer", intPtr(-3), true, starts, ends)},
		{"ends before start", domain.NewEvent("Football", "organizer", intPtr(10), true, ends, starts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewEventService(&fakeEventRepo{store: store}, store)

			err := svc.CreateEvent(context.Background(), tt.event)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.records)
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	store := newFakeStore()
	ev := testEvent(store, "organizer", intPtr(10), true)
	svc := NewEventService(&fakeEventRepo{store: store}, store)

	got, err := svc.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)

	_, err = svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListUpcomingEvents(t *testing.T) {
	store := newFakeStore()
	svc := NewEventService(&fakeEventRepo{store: store}, store)

	events, err := svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	testEvent(store, "organizer", intPtr(10), true)
	store.addEvent(&domain.Event{
		Name:        "Last Week",
		OrganizerID: "organizer",
		StartsAt:    time.Now().Add(-48 * time.Hour),
		EndsAt:      time.Now().Add(-46 * time.Hour),
	})

	events, err = svc.ListUpcomingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Friday Football", events[0].Name)
}
