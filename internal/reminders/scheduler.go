package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/internal/timeutil"
	"github.com/wolfman30/bookline/pkg/logging"
)

// AppointmentStore is the slice of the appointments repository the scheduler
// needs: the confirmed lookahead query and the conditional flag write.
type AppointmentStore interface {
	ListConfirmedBetween(ctx context.Context, start, end time.Time) ([]appointments.Appointment, error)
	UpdateWithOptimisticLock(ctx context.Context, a *appointments.Appointment) (*appointments.Appointment, error)
}

// ActivityCatalog loads the activity list for one tick.
type ActivityCatalog interface {
	FindAll(ctx context.Context) ([]activities.Activity, error)
}

// ReminderSender dispatches the reminder email for one appointment and
// reports whether it actually went out.
type ReminderSender interface {
	SendReminder(ctx context.Context, id uuid.UUID) bool
}

// Scheduler runs the time-driven reminder dispatch. It holds no state between
// ticks: every tick re-derives its work from the store, so a crashed or
// skipped tick is recovered by the next one as long as the check window is
// wider than the tick interval.
type Scheduler struct {
	appts   AppointmentStore
	catalog ActivityCatalog
	sender  ReminderSender
	clock   timeutil.Clock
	metrics *metrics.ReminderMetrics
	logger  *logging.Logger

	interval           time.Duration
	defaultHoursBefore int
	checkWindowHours   int
}

// NewScheduler creates a reminder scheduler with the default cadence: hourly
// ticks, reminders 24h before the appointment, a 25h check window.
func NewScheduler(appts AppointmentStore, catalog ActivityCatalog, sender ReminderSender, clock timeutil.Clock, m *metrics.ReminderMetrics, logger *logging.Logger) *Scheduler {
	if clock == nil {
		clock = timeutil.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		appts:              appts,
		catalog:            catalog,
		sender:             sender,
		clock:              clock,
		metrics:            m,
		logger:             logger,
		interval:           time.Hour,
		defaultHoursBefore: 24,
		checkWindowHours:   25,
	}
}

// WithInterval sets the tick interval.
func (s *Scheduler) WithInterval(d time.Duration) *Scheduler {
	s.interval = d
	return s
}

// WithDefaultHoursBefore sets the fallback lead time for activities without
// their own reminder setting.
func (s *Scheduler) WithDefaultHoursBefore(hours int) *Scheduler {
	s.defaultHoursBefore = hours
	return s
}

// WithCheckWindowHours sets the width of the lookahead window. It must stay
// wider than the tick interval or appointments can slip between ticks.
func (s *Scheduler) WithCheckWindowHours(hours int) *Scheduler {
	s.checkWindowHours = hours
	return s
}

// Start runs the scheduler loop. Blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting reminder scheduler",
		"interval", s.interval.String(),
		"default_hours_before", s.defaultHoursBefore,
		"check_window_hours", s.checkWindowHours,
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	s.RunTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler shutting down")
			return
		case <-ticker.C:
			s.RunTick(ctx)
		}
	}
}

// RunTick performs a single reminder pass: query confirmed appointments in
// the lookahead window, compute each one's reminder time from its activity's
// lead setting, and dispatch the ones whose reminder time falls inside the
// next hour. The email goes out first; the reminder flag is persisted only
// after a successful send, through the conditional-version write.
func (s *Scheduler) RunTick(ctx context.Context) {
	started := time.Now()
	now := s.clock.Now()

	windowStart := now.Add(time.Duration(s.defaultHoursBefore) * time.Hour)
	windowEnd := windowStart.Add(time.Duration(s.checkWindowHours) * time.Hour)

	due, err := s.appts.ListConfirmedBetween(ctx, windowStart, windowEnd)
	if err != nil {
		s.logger.Error("reminder tick: list confirmed appointments", "error", err)
		s.metrics.ObserveTick(time.Since(started).Seconds())
		return
	}
	if len(due) == 0 {
		s.logger.Debug("reminder tick: nothing in window")
		s.metrics.ObserveTick(time.Since(started).Seconds())
		return
	}

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		s.logger.Error("reminder tick: load activities", "error", err)
		s.metrics.ObserveTick(time.Since(started).Seconds())
		return
	}

	dispatchEnd := now.Add(time.Hour)
	sent := 0
	for i := range due {
		if s.dispatch(ctx, &due[i], catalog, now, dispatchEnd) {
			sent++
		}
	}

	s.logger.Info("reminder tick complete",
		"window_start", windowStart.Format(time.RFC3339),
		"candidates", len(due),
		"sent", sent,
	)
	s.metrics.ObserveTick(time.Since(started).Seconds())
}

func (s *Scheduler) loadCatalog(ctx context.Context) (map[uuid.UUID]activities.Activity, error) {
	list, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]activities.Activity, len(list))
	for _, a := range list {
		byID[a.ID] = a
	}
	return byID, nil
}

// dispatch handles one candidate appointment. Returns true only when the
// reminder was sent and the flag persisted. Failures are isolated per
// appointment: one bad row never aborts the tick.
func (s *Scheduler) dispatch(ctx context.Context, appt *appointments.Appointment, catalog map[uuid.UUID]activities.Activity, now, dispatchEnd time.Time) bool {
	if appt.ReminderSent {
		return false
	}

	activity, ok := catalog[appt.ActivityID]
	if !ok {
		s.logger.Warn("reminder skipped: activity missing",
			"appointment_id", appt.ID, "activity_id", appt.ActivityID)
		s.metrics.ObserveDispatch("skipped")
		return false
	}
	if !activity.Reminder.Enabled {
		return false
	}

	hoursBefore := activity.Reminder.HoursBefore
	if hoursBefore <= 0 {
		hoursBefore = s.defaultHoursBefore
	}
	reminderTime := timeutil.ReminderTime(appt.StartTime, hoursBefore)
	if reminderTime.Before(now) || !reminderTime.Before(dispatchEnd) {
		return false
	}

	if !s.sender.SendReminder(ctx, appt.ID) {
		// Flag stays unset so the next tick can retry.
		s.logger.Warn("reminder not sent", "appointment_id", appt.ID)
		s.metrics.ObserveDispatch("send_failed")
		return false
	}

	flagged := appt.MarkReminderSent(now)
	if _, err := s.appts.UpdateWithOptimisticLock(ctx, &flagged); err != nil {
		if errors.Is(err, appointments.ErrConcurrencyConflict) {
			s.logger.Warn("reminder flag write lost version race", "appointment_id", appt.ID)
		} else {
			s.logger.Error("reminder flag write failed", "appointment_id", appt.ID, "error", err)
		}
		s.metrics.ObserveDispatch("flag_failed")
		return false
	}

	s.logger.Info("reminder sent",
		"appointment_id", appt.ID,
		"start_time", appt.StartTime.Format(time.RFC3339),
		"hours_before", hoursBefore,
	)
	s.metrics.ObserveDispatch("sent")
	return true
}
