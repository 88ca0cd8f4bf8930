package activities

import (
	"time"

	"github.com/google/uuid"
)

// ReminderSettings is the per-activity reminder policy.
type ReminderSettings struct {
	Enabled     bool `json:"enabled"`
	HoursBefore int  `json:"hours_before"`
}

// RequiredFieldsConfig controls which client fields an activity requires at
// booking time. Name and email are always required.
type RequiredFieldsConfig struct {
	Phone            bool   `json:"phone"`
	Address          bool   `json:"address"`
	CustomField      bool   `json:"custom_field"`
	CustomFieldLabel string `json:"custom_field_label,omitempty"`
}

// Activity is a bookable service type. The booking flow consumes it read-only;
// editing the catalog is an admin concern outside this module.
type Activity struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	DurationMinutes int                  `json:"duration_minutes"`
	Price           float64              `json:"price"`
	Color           string               `json:"color,omitempty"`
	MinNoticeHours  int                  `json:"minimum_booking_notice_hours"`
	RequiredFields  RequiredFieldsConfig `json:"required_fields"`
	Reminder        ReminderSettings     `json:"reminder_settings"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
