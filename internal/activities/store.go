package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no activity exists for the given id.
var ErrNotFound = errors.New("activities: not found")

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides read access to the activity catalog.
type Store struct {
	db DB
}

// NewStore creates an activity store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const activityColumns = `id, name, duration_minutes, price, color, min_notice_hours,
	required_fields, reminder_enabled, reminder_hours_before, created_at, updated_at`

// FindByID loads one activity.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+activityColumns+`
		FROM activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("activities: find by id: %w", err)
	}
	return a, nil
}

// FindAll returns the whole catalog ordered by name.
func (s *Store) FindAll(ctx context.Context) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+activityColumns+`
		FROM activities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("activities: find all: %w", err)
	}
	defer rows.Close()

	var result []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("activities: scan: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanActivity(row pgx.Row) (*Activity, error) {
	var a Activity
	var requiredJSON []byte
	err := row.Scan(
		&a.ID, &a.Name, &a.DurationMinutes, &a.Price, &a.Color, &a.MinNoticeHours,
		&requiredJSON, &a.Reminder.Enabled, &a.Reminder.HoursBefore,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(requiredJSON) > 0 {
		if err := json.Unmarshal(requiredJSON, &a.RequiredFields); err != nil {
			return nil, fmt.Errorf("decode required fields: %w", err)
		}
	}
	return &a, nil
}
