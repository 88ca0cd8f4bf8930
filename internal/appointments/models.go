package appointments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/bookline/internal/activities"
)

// Status tracks the lifecycle of an appointment. There is no completed state;
// appointments age out once their start time is in the past.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ClientInfo is captured at booking time and validated against the activity's
// required-fields policy once, at creation. It is never re-validated.
type ClientInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	CustomField string `json:"custom_field,omitempty"`
}

// Validate checks the info against an activity's policy. Name and email are
// always required.
func (c ClientInfo) Validate(req activities.RequiredFieldsConfig) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidClientInfo)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: email required", ErrInvalidClientInfo)
	}
	if req.Phone && c.Phone == "" {
		return fmt.Errorf("%w: phone required", ErrInvalidClientInfo)
	}
	if req.Address && c.Address == "" {
		return fmt.Errorf("%w: address required", ErrInvalidClientInfo)
	}
	if req.CustomField && c.CustomField == "" {
		label := req.CustomFieldLabel
		if label == "" {
			label = "custom field"
		}
		return fmt.Errorf("%w: %s required", ErrInvalidClientInfo, label)
	}
	return nil
}

// Appointment is the aggregate root: one booked interval for one activity and
// one client. Activity name and duration are denormalized at booking time so
// later catalog edits don't rewrite history. Mutation goes through the
// transition methods, which return copies; the store performs the
// compare-and-swap write against Version.
type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	ActivityID      uuid.UUID  `json:"activity_id"`
	ActivityName    string     `json:"activity_name"`
	DurationMinutes int        `json:"duration_minutes"`
	Client          ClientInfo `json:"client"`
	StartTime       time.Time  `json:"start_time"`
	Status          Status     `json:"status"`
	Version         int        `json:"version"`
	ReminderSent    bool       `json:"reminder_sent"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EndTime is derived from the denormalized duration.
func (a Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Confirm returns a confirmed copy. Only pending appointments can be
// confirmed.
func (a Appointment) Confirm(now time.Time) (Appointment, error) {
	if a.Status != StatusPending {
		return Appointment{}, fmt.Errorf("%w: cannot confirm %s appointment", ErrInvalidTransition, a.Status)
	}
	a.Status = StatusConfirmed
	a.UpdatedAt = now
	return a, nil
}

// Cancel returns a cancelled copy. Valid from pending or confirmed; cancelled
// is terminal.
func (a Appointment) Cancel(now time.Time) (Appointment, error) {
	if a.Status == StatusCancelled {
		return Appointment{}, fmt.Errorf("%w: already cancelled", ErrInvalidTransition)
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now
	return a, nil
}

// MarkReminderSent returns a copy with the reminder flag set. The flag only
// ever goes false → true, independent of status.
func (a Appointment) MarkReminderSent(now time.Time) Appointment {
	a.ReminderSent = true
	a.UpdatedAt = now
	return a
}
