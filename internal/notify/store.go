package notify

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
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists email settings, templates, and the send audit log.
type Store struct {
	db DB
}

// NewStore creates a notify store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// GetEmailSettings loads the singleton settings row. A missing row means
// email is unconfigured, not an error.
func (s *Store) GetEmailSettings(ctx context.Context) (*EmailSettings, error) {
	var settings EmailSettings
	err := s.db.QueryRow(ctx, `
		SELECT sender_address, sender_name, admin_address
		FROM email_settings WHERE id = 1`).
		Scan(&settings.SenderAddress, &settings.SenderName, &settings.AdminAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return &EmailSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("notify: get email settings: %w", err)
	}
	return &settings, nil
}

// GetTemplate loads the template for one email type. Missing templates come
// back nil so callers can treat them as disabled.
func (s *Store) GetTemplate(ctx context.Context, typ TemplateType) (*EmailTemplate, error) {
	tpl := EmailTemplate{Type: typ}
	err := s.db.QueryRow(ctx, `
		SELECT subject, body, enabled
		FROM email_templates WHERE type = $1`, string(typ)).
		Scan(&tpl.Subject, &tpl.Body, &tpl.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("notify: get template %s: %w", typ, err)
	}
	return &tpl, nil
}

// SaveEmailLog writes one audit row.
func (s *Store) SaveEmailLog(ctx context.Context, entry *EmailLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO email_logs (id, appointment_id, template_type, recipient, subject, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AppointmentID, string(entry.TemplateType), entry.Recipient,
		entry.Subject, string(entry.Status), entry.ErrorMessage, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notify: save email log: %w", err)
	}
	return nil
}
