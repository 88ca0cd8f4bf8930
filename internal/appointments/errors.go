package appointments

import "errors"

var (
	// ErrNotFound is returned when no appointment (or referenced activity)
	// exists for the given id.
	ErrNotFound = errors.New("appointments: not found")

	// ErrBookingNotice is returned when a booking attempt falls inside the
	// activity's minimum notice window.
	ErrBookingNotice = errors.New("appointments: minimum booking notice not met")

	// ErrSlotUnavailable is returned when the requested interval is outside
	// open hours or overlaps an existing non-cancelled appointment.
	ErrSlotUnavailable = errors.New("appointments: slot unavailable")

	// ErrConcurrencyConflict is returned when a versioned write loses the
	// race: the stored version no longer matches the one the caller read.
	// Callers must re-fetch and re-apply business rules before retrying.
	ErrConcurrencyConflict = errors.New("appointments: concurrency conflict")

	// ErrInvalidTransition is returned for illegal status transitions, e.g.
	// confirming a cancelled appointment.
	ErrInvalidTransition = errors.New("appointments: invalid status transition")

	// ErrInvalidClientInfo is returned when the client info fails the
	// activity's required-fields policy.
	ErrInvalidClientInfo = errors.New("appointments: invalid client info")
)
