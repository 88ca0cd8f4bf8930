package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/timeutil"
)

var tickNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeApptStore struct {
	appts   map[uuid.UUID]*appointments.Appointment
	lockErr error

	listedStart time.Time
	listedEnd   time.Time
}

func (f *fakeApptStore) ListConfirmedBetween(ctx context.Context, start, end time.Time) ([]appointments.Appointment, error) {
	f.listedStart, f.listedEnd = start, end
	var out []appointments.Appointment
	for _, a := range f.appts {
		if a.Status != appointments.StatusConfirmed {
			continue
		}
		if a.StartTime.Before(start) || !a.StartTime.Before(end) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeApptStore) UpdateWithOptimisticLock(ctx context.Context, a *appointments.Appointment) (*appointments.Appointment, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	stored, ok := f.appts[a.ID]
	if !ok {
		return nil, appointments.ErrNotFound
	}
	if stored.Version != a.Version {
		return nil, appointments.ErrConcurrencyConflict
	}
	updated := *a
	updated.Version++
	f.appts[a.ID] = &updated
	copied := updated
	return &copied, nil
}

type fakeCatalog struct {
	list []activities.Activity
	err  error
}

func (f *fakeCatalog) FindAll(ctx context.Context) ([]activities.Activity, error) {
	return f.list, f.err
}

func (f *fakeCatalog) FindByID(ctx context.Context, id uuid.UUID) (*activities.Activity, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, activities.ErrNotFound
}

type fakeSender struct {
	sent []uuid.UUID
	fail bool
}

func (f *fakeSender) SendReminder(ctx context.Context, id uuid.UUID) bool {
	if f.fail {
		return false
	}
	f.sent = append(f.sent, id)
	return true
}

func reminderActivity(hoursBefore int, enabled bool) activities.Activity {
	return activities.Activity{
		ID:              uuid.New(),
		Name:            "Consultation",
		DurationMinutes: 60,
		Reminder:        activities.ReminderSettings{Enabled: enabled, HoursBefore: hoursBefore},
	}
}

func confirmedAt(activityID uuid.UUID, start time.Time) *appointments.Appointment {
	return &appointments.Appointment{
		ID:           uuid.New(),
		ActivityID:   activityID,
		ActivityName: "Consultation",
		Client:       appointments.ClientInfo{Name: "Ada", Email: "ada@example.com"},
		StartTime:    start,
		Status:       appointments.StatusConfirmed,
		Version:      2,
	}
}

func newTestScheduler(store *fakeApptStore, catalog *fakeCatalog, sender *fakeSender) *Scheduler {
	return NewScheduler(store, catalog, sender, timeutil.FixedClock(tickNow), nil, nil)
}

func TestRunTickSendsOnceThenFlags(t *testing.T) {
	activity := reminderActivity(24, true)
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	catalog := &fakeCatalog{list: []activities.Activity{activity}}
	sender := &fakeSender{}

	sched := newTestScheduler(store, catalog, sender)
	sched.RunTick(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, appt.ID, sender.sent[0])
	assert.True(t, store.appts[appt.ID].ReminderSent)
	assert.Equal(t, 3, store.appts[appt.ID].Version)

	// Second tick finds the flag set and does nothing.
	sched.RunTick(context.Background())
	assert.Len(t, sender.sent, 1)
}

func TestRunTickQueriesLookaheadWindow(t *testing.T) {
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{}}
	sched := newTestScheduler(store, &fakeCatalog{}, &fakeSender{})

	sched.RunTick(context.Background())
	assert.Equal(t, tickNow.Add(24*time.Hour), store.listedStart)
	assert.Equal(t, tickNow.Add(49*time.Hour), store.listedEnd)
}

func TestRunTickSkipsOutsideDispatchSlice(t *testing.T) {
	activity := reminderActivity(24, true)
	// Reminder time lands exactly at now+1h, outside the half-open slice.
	appt := confirmedAt(activity.ID, tickNow.Add(25*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{activity}}, sender).
		RunTick(context.Background())

	assert.Empty(t, sender.sent)
	assert.False(t, store.appts[appt.ID].ReminderSent)
}

func TestRunTickSkipsDisabledActivity(t *testing.T) {
	activity := reminderActivity(24, false)
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{activity}}, sender).
		RunTick(context.Background())

	assert.Empty(t, sender.sent)
}

func TestRunTickSkipsMissingActivity(t *testing.T) {
	appt := confirmedAt(uuid.New(), tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{}, sender).RunTick(context.Background())

	assert.Empty(t, sender.sent)
	assert.False(t, store.appts[appt.ID].ReminderSent)
}

func TestRunTickFallsBackToDefaultLeadTime(t *testing.T) {
	activity := reminderActivity(0, true) // no explicit lead time
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{activity}}, sender).
		RunTick(context.Background())

	assert.Len(t, sender.sent, 1)
}

func TestRunTickSendFailureLeavesFlagUnset(t *testing.T) {
	activity := reminderActivity(24, true)
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{fail: true}

	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{activity}}, sender).
		RunTick(context.Background())

	assert.False(t, store.appts[appt.ID].ReminderSent)
	assert.Equal(t, 2, store.appts[appt.ID].Version)
}

func TestRunTickToleratesFlagWriteConflict(t *testing.T) {
	activity := reminderActivity(24, true)
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{
		appts:   map[uuid.UUID]*appointments.Appointment{appt.ID: appt},
		lockErr: appointments.ErrConcurrencyConflict,
	}
	sender := &fakeSender{}

	// Must not panic or abort; the email went out but the flag write lost.
	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{activity}}, sender).
		RunTick(context.Background())

	assert.Len(t, sender.sent, 1)
	assert.False(t, store.appts[appt.ID].ReminderSent)
}

func TestRunTickIsolatesPerAppointmentFailures(t *testing.T) {
	good := reminderActivity(24, true)
	goodAppt := confirmedAt(good.ID, tickNow.Add(24*time.Hour))
	orphan := confirmedAt(uuid.New(), tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{
		goodAppt.ID: goodAppt,
		orphan.ID:   orphan,
	}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{list: []activities.Activity{good}}, sender).
		RunTick(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, goodAppt.ID, sender.sent[0])
}

func TestRunTickSurvivesCatalogError(t *testing.T) {
	activity := reminderActivity(24, true)
	appt := confirmedAt(activity.ID, tickNow.Add(24*time.Hour))
	store := &fakeApptStore{appts: map[uuid.UUID]*appointments.Appointment{appt.ID: appt}}
	sender := &fakeSender{}

	newTestScheduler(store, &fakeCatalog{err: errors.New("db down")}, sender).
		RunTick(context.Background())

	assert.Empty(t, sender.sent)
	assert.False(t, store.appts[appt.ID].ReminderSent)
}
