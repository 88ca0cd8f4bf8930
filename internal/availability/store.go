package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the availability singleton as one row with JSONB columns.
type Store struct {
	db DB
}

// NewStore creates an availability store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Find loads the availability aggregate. A missing row yields an empty
// aggregate, which makes every instant unbookable until configured.
func (s *Store) Find(ctx context.Context) (*Availability, error) {
	var slotsJSON, exceptionsJSON []byte
	var updatedAt time.Time
	err := s.db.QueryRow(ctx, `
		SELECT weekly_slots, exceptions, updated_at
		FROM availability WHERE id = 1`).Scan(&slotsJSON, &exceptionsJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Availability{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("availability: find: %w", err)
	}

	a := &Availability{UpdatedAt: updatedAt}
	if err := json.Unmarshal(slotsJSON, &a.WeeklySlots); err != nil {
		return nil, fmt.Errorf("availability: decode weekly slots: %w", err)
	}
	if err := json.Unmarshal(exceptionsJSON, &a.Exceptions); err != nil {
		return nil, fmt.Errorf("availability: decode exceptions: %w", err)
	}
	return a, nil
}

// Update replaces the aggregate wholesale. Concurrent readers may observe
// either the old or the new value; there is no partial-state visibility.
func (s *Store) Update(ctx context.Context, a *Availability) error {
	if err := a.Validate(); err != nil {
		return err
	}
	slotsJSON, err := json.Marshal(a.WeeklySlots)
	if err != nil {
		return fmt.Errorf("availability: encode weekly slots: %w", err)
	}
	exceptionsJSON, err := json.Marshal(a.Exceptions)
	if err != nil {
		return fmt.Errorf("availability: encode exceptions: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO availability (id, weekly_slots, exceptions, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET weekly_slots = EXCLUDED.weekly_slots,
			exceptions = EXCLUDED.exceptions,
			updated_at = now()`,
		slotsJSON, exceptionsJSON)
	if err != nil {
		return fmt.Errorf("availability: update: %w", err)
	}
	return nil
}
