package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides persistence for appointments, including the conditional
// version write that makes concurrent mutation safe without locks.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const appointmentColumns = `id, activity_id, activity_name, duration_minutes,
	client_name, client_email, client_phone, client_address, client_custom_field,
	start_time, status, version, reminder_sent, created_at, updated_at`

// exclusion constraint name from the migration; violations mean an overlap
// slipped past the in-transaction check.
const overlapConstraint = "appointments_no_overlap"

// Create inserts a pending appointment, checking for overlap with existing
// non-cancelled appointments inside the same transaction. The exclusion
// constraint on (start_time, end_time) backs this check at the storage level.
func (s *Store) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Version == 0 {
		a.Version = 1
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var overlapping bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE status <> 'cancelled'
			AND start_time < $2 AND end_time > $1
		)`, a.StartTime, a.EndTime()).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("appointments: overlap check: %w", err)
	}
	if overlapping {
		return ErrSlotUnavailable
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(id, activity_id, activity_name, duration_minutes,
			client_name, client_email, client_phone, client_address, client_custom_field,
			start_time, end_time, status, version, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		a.ID, a.ActivityID, a.ActivityName, a.DurationMinutes,
		a.Client.Name, a.Client.Email, a.Client.Phone, a.Client.Address, a.Client.CustomField,
		a.StartTime, a.EndTime(), string(a.Status), a.Version, a.ReminderSent, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isOverlapViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isOverlapViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("appointments: commit create: %w", err)
	}
	return nil
}

// FindByID loads one appointment.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: find by id: %w", err)
	}
	return a, nil
}

// FindByDateRange returns appointments starting in [start, end), ordered by
// start time.
func (s *Store) FindByDateRange(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("appointments: find by date range: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListConfirmedBetween returns confirmed appointments starting in
// [start, end), ordered by start time. This feeds the reminder tick; pending
// and cancelled bookings never get reminders.
func (s *Store) ListConfirmedBetween(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'confirmed' AND start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("appointments: list confirmed: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// UpdateWithOptimisticLock performs the conditional write: the row is updated
// only if its stored version still equals a.Version, and the version is
// incremented in the same statement. Zero rows matched means another writer
// got there first (or the row is gone) and yields ErrConcurrencyConflict.
// The returned copy carries the incremented version.
func (s *Store) UpdateWithOptimisticLock(ctx context.Context, a *Appointment) (*Appointment, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET status = $3, reminder_sent = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $2`,
		a.ID, a.Version, string(a.Status), a.ReminderSent, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: optimistic update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConcurrencyConflict
	}
	updated := *a
	updated.Version = a.Version + 1
	return &updated, nil
}

// Update overwrites mutable fields unconditionally. Administrative use only;
// the reminder scheduler must go through UpdateWithOptimisticLock.
func (s *Store) Update(ctx context.Context, a *Appointment) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments
		SET client_name = $2, client_email = $3, client_phone = $4,
			client_address = $5, client_custom_field = $6,
			start_time = $7, end_time = $8, status = $9, reminder_sent = $10,
			updated_at = $11
		WHERE id = $1`,
		a.ID, a.Client.Name, a.Client.Email, a.Client.Phone,
		a.Client.Address, a.Client.CustomField,
		a.StartTime, a.EndTime(), string(a.Status), a.ReminderSent,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("appointments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an appointment. Admin action only.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23P01" && pgErr.ConstraintName == overlapConstraint
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(
		&a.ID, &a.ActivityID, &a.ActivityName, &a.DurationMinutes,
		&a.Client.Name, &a.Client.Email, &a.Client.Phone, &a.Client.Address, &a.Client.CustomField,
		&a.StartTime, &status, &a.Version, &a.ReminderSent, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}
