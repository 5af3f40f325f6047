package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"matchday/internal/domain"
)

// fakeStore is an in-memory AttendanceStore for service tests. It also
// implements AttendanceTx, so WithinEventTx just runs fn against the store
// itself; none of the fakes fail mid-transaction, so rollback is not modeled.
type fakeStore struct {
	events  map[string]*domain.Event
	records []*domain.AttendanceRecord
	logs    []*domain.AttendanceLogEntry
	seq     int
	txCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[string]*domain.Event{}}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%d", f.seq)
}

func (f *fakeStore) addEvent(ev *domain.Event) *domain.Event {
	if ev.ID == "" {
		ev.ID = f.nextID()
	}
	f.events[ev.ID] = ev
	return ev
}

func (f *fakeStore) seedRecord(eventID, userID string, status domain.AttendanceStatus, position *int) *domain.AttendanceRecord {
	rec := domain.NewAttendanceRecord(eventID, userID, status, position)
	rec.ID = f.nextID()
	f.records = append(f.records, rec)
	return rec
}

func (f *fakeStore) activeRecord(eventID, userID string) *domain.AttendanceRecord {
	for _, rec := range f.records {
		if rec.EventID == eventID && rec.UserID == userID && rec.Status.Active() {
			return rec
		}
	}
	return nil
}

func (f *fakeStore) hasLog(eventID, userID string, action domain.AttendanceAction, actorID string) bool {
	for _, entry := range f.logs {
		if entry.EventID == eventID && entry.UserID == userID && entry.Action == action && entry.ActorID == actorID {
			return true
		}
	}
	return false
}

func (f *fakeStore) WithinEventTx(ctx context.Context, fn func(tx domain.AttendanceTx) error) error {
	f.txCount++
	return fn(f)
}

func (f *fakeStore) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeStore) GetEventForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	return f.GetEvent(ctx, eventID)
}

func (f *fakeStore) GetActiveRecord(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	if rec := f.activeRecord(eventID, userID); rec != nil {
		return rec, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) CountByStatus(ctx context.Context, eventID string, status domain.AttendanceStatus) (int, error) {
	count := 0
	for _, rec := range f.records {
		if rec.EventID == eventID && rec.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceRecord, error) {
	var out []*domain.AttendanceRecord
	for _, rec := range f.records {
		if rec.EventID == eventID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSweepCandidates(ctx context.Context, now, until time.Time) ([]string, error) {
	var ids []string
	for id, ev := range f.events {
		if !ev.StartsAt.After(now) || ev.StartsAt.After(until) || ev.Capacity == nil {
			continue
		}
		confirmed, _ := f.CountByStatus(ctx, id, domain.StatusConfirmed)
		waitlisted, _ := f.CountByStatus(ctx, id, domain.StatusWaitlisted)
		if waitlisted > 0 && confirmed < *ev.Capacity {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) MaxWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	max := 0
	for _, rec := range f.records {
		if rec.EventID == eventID && rec.Status == domain.StatusWaitlisted && rec.Position != nil && *rec.Position > max {
			max = *rec.Position
		}
	}
	return max, nil
}

func (f *fakeStore) NextWaitlisted(ctx context.Context, eventID string) (*domain.AttendanceRecord, error) {
	var next *domain.AttendanceRecord
	for _, rec := range f.records {
		if rec.EventID != eventID || rec.Status != domain.StatusWaitlisted || rec.Position == nil {
			continue
		}
		if next == nil || *rec.Position < *next.Position {
			next = rec
		}
	}
	if next == nil {
		return nil, domain.ErrNotFound
	}
	return next, nil
}

func (f *fakeStore) InsertRecord(ctx context.Context, rec *domain.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = f.nextID()
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) UpdateRecordStatus(ctx context.Context, recordID string, status domain.AttendanceStatus, position *int) error {
	for _, rec := range f.records {
		if rec.ID == recordID {
			rec.Status = status
			rec.Position = position
			rec.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) SetSoldOut(ctx context.Context, eventID string, soldOut bool) error {
	ev, ok := f.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	ev.IsSoldOut = soldOut
	return nil
}

func (f *fakeStore) AppendLog(ctx context.Context, entry *domain.AttendanceLogEntry) error {
	if entry.ID == "" {
		entry.ID = f.nextID()
	}
	f.logs = append(f.logs, entry)
	return nil
}

// fakeLogRepo serves audit reads straight from the fake store's log slice.
type fakeLogRepo struct {
	store *fakeStore
}

func (r *fakeLogRepo) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.AttendanceLogEntry, int, error) {
	var all []*domain.AttendanceLogEntry
	for _, entry := range r.store.logs {
		if entry.EventID == eventID {
			all = append(all, entry)
		}
	}
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *fakeLogRepo) HasAction(ctx context.Context, eventID, userID string, action domain.AttendanceAction) (bool, error) {
	for _, entry := range r.store.logs {
		if entry.EventID == eventID && entry.UserID == userID && entry.Action == action {
			return true, nil
		}
	}
	return false, nil
}

type fakeFeedbackRepo struct {
	rows []*domain.EventFeedback
	seq  int
}

func (r *fakeFeedbackRepo) Upsert(ctx context.Context, fb *domain.EventFeedback) error {
	for _, existing := range r.rows {
		if existing.EventID == fb.EventID && existing.UserID == fb.UserID {
			existing.Rating = fb.Rating
			existing.Comment = fb.Comment
			fb.ID = existing.ID
			fb.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	r.seq++
	fb.ID = fmt.Sprintf("fb-%d", r.seq)
	r.rows = append(r.rows, fb)
	return nil
}

func (r *fakeFeedbackRepo) ListByEvent(ctx context.Context, eventID string, limit int) ([]*domain.EventFeedback, error) {
	var out []*domain.EventFeedback
	for _, fb := range r.rows {
		if fb.EventID == eventID {
			out = append(out, fb)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeEventRepo writes events into the shared fake store so the seeding
// transaction can see them.
type fakeEventRepo struct {
	store *fakeStore
	err   error
}

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if r.err != nil {
		return r.err
	}
	r.store.addEvent(event)
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.store.GetEvent(ctx, id)
}

func (r *fakeEventRepo) ListUpcoming(ctx context.Context, from time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, ev := range r.store.events {
		if ev.StartsAt.After(from) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func intPtr(v int) *int { return &v }

func testEvent(f *fakeStore, organizerID string, capacity *int, allowWaitlist bool) *domain.Event {
	return f.addEvent(&domain.Event{
		Name:          "Friday Football",
		OrganizerID:   organizerID,
		Capacity:      capacity,
		AllowWaitlist: allowWaitlist,
		StartsAt:      time.Now().Add(2 * time.Hour),
		EndsAt:        time.Now().Add(4 * time.Hour),
	})
}
