package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/availability"
	"github.com/wolfman30/bookline/internal/timeutil"
)

type fakeRepo struct {
	byID        map[uuid.UUID]*Appointment
	created     []*Appointment
	createErr   error
	updateErr   error
	updateCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*Appointment{}}
}

func (r *fakeRepo) Create(ctx context.Context, a *Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	a.ID = uuid.New()
	r.created = append(r.created, a)
	copied := *a
	r.byID[a.ID] = &copied
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.byID {
		if !a.StartTime.Before(start) && a.StartTime.Before(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateWithOptimisticLock(ctx context.Context, a *Appointment) (*Appointment, error) {
	r.updateCalls++
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	stored, ok := r.byID[a.ID]
	if !ok || stored.Version != a.Version {
		return nil, ErrConcurrencyConflict
	}
	updated := *a
	updated.Version = a.Version + 1
	r.byID[a.ID] = &updated
	copied := updated
	return &copied, nil
}

type fakeCatalog struct {
	activity *activities.Activity
}

func (c *fakeCatalog) FindByID(ctx context.Context, id uuid.UUID) (*activities.Activity, error) {
	if c.activity == nil || c.activity.ID != id {
		return nil, activities.ErrNotFound
	}
	return c.activity, nil
}

func (c *fakeCatalog) FindAll(ctx context.Context) ([]activities.Activity, error) {
	if c.activity == nil {
		return nil, nil
	}
	return []activities.Activity{*c.activity}, nil
}

type fakeAvail struct {
	a *availability.Availability
}

func (f *fakeAvail) Find(ctx context.Context) (*availability.Availability, error) {
	return f.a, nil
}

type fakeNotifier struct {
	received, confirmations, cancellations int
}

func (n *fakeNotifier) SendBookingReceived(ctx context.Context, a *Appointment) bool {
	n.received++
	return true
}

func (n *fakeNotifier) SendConfirmation(ctx context.Context, a *Appointment) bool {
	n.confirmations++
	return true
}

func (n *fakeNotifier) SendCancellation(ctx context.Context, a *Appointment) bool {
	n.cancellations++
	return true
}

// serviceNow is a Saturday; allDayAvailability opens every day so weekday math
// stays out of these tests.
var serviceNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func allDayAvailability() *availability.Availability {
	slots := make([]availability.WeeklySlot, 0, 7)
	for day := 0; day < 7; day++ {
		slots = append(slots, availability.WeeklySlot{DayOfWeek: day, StartTime: "00:00", EndTime: "23:59"})
	}
	return &availability.Availability{WeeklySlots: slots}
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeCatalog, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepo()
	catalog := &fakeCatalog{activity: &activities.Activity{
		ID:              uuid.New(),
		Name:            "Consultation",
		DurationMinutes: 60,
		MinNoticeHours:  24,
		Reminder:        activities.ReminderSettings{Enabled: true, HoursBefore: 24},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, catalog, &fakeAvail{a: allDayAvailability()}, notifier,
		timeutil.FixedClock(serviceNow), nil)
	return svc, repo, catalog, notifier
}

func TestCreatePersistsPendingV1(t *testing.T) {
	svc, repo, catalog, notifier := newTestService(t)

	appt, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, appt.Status)
	assert.Equal(t, 1, appt.Version)
	assert.False(t, appt.ReminderSent)
	assert.Equal(t, "Consultation", appt.ActivityName)
	assert.Equal(t, 60, appt.DurationMinutes)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 1, notifier.received)
}

func TestCreateUnknownActivity(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: uuid.New(),
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingNoticeViolation(t *testing.T) {
	svc, _, catalog, _ := newTestService(t)
	// Activity requires 24h notice; attempt is 1h out.
	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, ErrBookingNotice)
}

func TestCreateExactNoticeBoundaryAllowed(t *testing.T) {
	svc, _, catalog, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(24 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.NoError(t, err)
}

func TestCreateOutsideOpenHours(t *testing.T) {
	svc, repo, catalog, notifier := newTestService(t)
	svc.avail = &fakeAvail{a: &availability.Availability{}} // nothing open

	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, repo.created)
	assert.Zero(t, notifier.received)
}

func TestCreateOverlapFromStore(t *testing.T) {
	svc, repo, catalog, _ := newTestService(t)
	repo.createErr = ErrSlotUnavailable

	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _, catalog, _ := newTestService(t)
	catalog.activity.RequiredFields = activities.RequiredFieldsConfig{Phone: true}

	_, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, ErrInvalidClientInfo)
}

func TestConfirmBumpsVersionAndNotifies(t *testing.T) {
	svc, repo, catalog, notifier := newTestService(t)
	appt, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Equal(t, 2, confirmed.Version)
	assert.Equal(t, 1, notifier.confirmations)
	assert.Equal(t, StatusConfirmed, repo.byID[appt.ID].Status)
}

func TestConfirmMissingAppointment(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Confirm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCancelOneWins(t *testing.T) {
	svc, repo, catalog, notifier := newTestService(t)
	appt, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	confirmed, err := svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)

	// Simulate two writers that both read version 2: the first cancel wins and
	// bumps to 3; a second write with the stale version must conflict.
	first, err := svc.Cancel(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, confirmed.Version+1, first.Version)

	stale := *confirmed
	stale.Status = StatusCancelled
	_, err = repo.UpdateWithOptimisticLock(context.Background(), &stale)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, 1, notifier.cancellations)
}

func TestCancelCancelledRejected(t *testing.T) {
	svc, _, catalog, _ := newTestService(t)
	appt, err := svc.Create(context.Background(), CreateInput{
		ActivityID: catalog.activity.ID,
		StartTime:  serviceNow.Add(48 * time.Hour),
		Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), appt.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetByDateRange(t *testing.T) {
	svc, _, catalog, _ := newTestService(t)
	for _, offset := range []time.Duration{30 * time.Hour, 54 * time.Hour, 200 * time.Hour} {
		_, err := svc.Create(context.Background(), CreateInput{
			ActivityID: catalog.activity.ID,
			StartTime:  serviceNow.Add(offset),
			Client:     ClientInfo{Name: "Ada", Email: "ada@example.com"},
		})
		require.NoError(t, err)
	}

	appts, err := svc.GetByDateRange(context.Background(), serviceNow, serviceNow.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Len(t, appts, 2)
}
