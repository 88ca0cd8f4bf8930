package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/availability"
	"github.com/wolfman30/bookline/internal/timeutil"
	"github.com/wolfman30/bookline/pkg/logging"
)

var appointmentsTracer = otel.Tracer("bookline.internal.appointments")

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error)
	UpdateWithOptimisticLock(ctx context.Context, a *Appointment) (*Appointment, error)
}

// AvailabilityFinder loads the open-hours aggregate.
type AvailabilityFinder interface {
	Find(ctx context.Context) (*availability.Availability, error)
}

// Notifier sends the appointment emails. Results are booleans, not errors:
// a failed or skipped email never fails the booking operation.
type Notifier interface {
	SendBookingReceived(ctx context.Context, a *Appointment) bool
	SendConfirmation(ctx context.Context, a *Appointment) bool
	SendCancellation(ctx context.Context, a *Appointment) bool
}

// Service implements the booking use cases: create with validation, confirm,
// cancel, and range queries.
type Service struct {
	repo       Repository
	activities activities.Repository
	avail      AvailabilityFinder
	notifier   Notifier
	clock      timeutil.Clock
	logger     *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Repository, catalog activities.Repository, avail AvailabilityFinder, notifier Notifier, clock timeutil.Clock, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if clock == nil {
		clock = timeutil.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		activities: catalog,
		avail:      avail,
		notifier:   notifier,
		clock:      clock,
		logger:     logger,
	}
}

// CreateInput is the booking request.
type CreateInput struct {
	ActivityID uuid.UUID
	StartTime  time.Time
	Client     ClientInfo
}

// Create validates a booking request and persists a pending appointment.
// Failure modes, in order: ErrNotFound (activity), ErrInvalidClientInfo,
// ErrBookingNotice, ErrSlotUnavailable (outside open hours or overlapping).
// The overlap check runs against the store at write time, not a stale read.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(attribute.String("bookline.activity_id", input.ActivityID.String()))

	activity, err := s.activities.FindByID(ctx, input.ActivityID)
	if err != nil {
		if errors.Is(err, activities.ErrNotFound) {
			return nil, fmt.Errorf("%w: activity %s", ErrNotFound, input.ActivityID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: load activity: %w", err)
	}

	if err := input.Client.Validate(activity.RequiredFields); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if timeutil.HoursUntil(now, input.StartTime) < float64(activity.MinNoticeHours) {
		return nil, fmt.Errorf("%w: requires %dh notice", ErrBookingNotice, activity.MinNoticeHours)
	}

	duration := time.Duration(activity.DurationMinutes) * time.Minute
	open, err := s.avail.Find(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: load availability: %w", err)
	}
	if !open.IsBookable(input.StartTime, duration) {
		return nil, fmt.Errorf("%w: outside open hours", ErrSlotUnavailable)
	}

	appt := &Appointment{
		ActivityID:      activity.ID,
		ActivityName:    activity.Name,
		DurationMinutes: activity.DurationMinutes,
		Client:          input.Client,
		StartTime:       input.StartTime,
		Status:          StatusPending,
		Version:         1,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		if !errors.Is(err, ErrSlotUnavailable) {
			span.RecordError(err)
		}
		return nil, err
	}

	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"activity", appt.ActivityName,
		"start_time", appt.StartTime,
	)

	if s.notifier != nil {
		// Best-effort admin notification; the booking stands either way.
		s.notifier.SendBookingReceived(ctx, appt)
	}
	return appt, nil
}

// Confirm moves a pending appointment to confirmed through the optimistic-lock
// path and sends the confirmation email.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.confirm")
	defer span.End()
	span.SetAttributes(attribute.String("bookline.appointment_id", id.String()))

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	confirmed, err := appt.Confirm(s.clock.Now())
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateWithOptimisticLock(ctx, &confirmed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment confirmed", "appointment_id", id, "version", updated.Version)
	if s.notifier != nil {
		s.notifier.SendConfirmation(ctx, updated)
	}
	return updated, nil
}

// Cancel moves a pending or confirmed appointment to cancelled through the
// optimistic-lock path and sends the cancellation email.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("bookline.appointment_id", id.String()))

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cancelled, err := appt.Cancel(s.clock.Now())
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateWithOptimisticLock(ctx, &cancelled)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment cancelled", "appointment_id", id, "version", updated.Version)
	if s.notifier != nil {
		s.notifier.SendCancellation(ctx, updated)
	}
	return updated, nil
}

// GetByDateRange returns appointments starting in [start, end) ordered by
// start time.
func (s *Service) GetByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	return s.repo.FindByDateRange(ctx, start, end)
}
