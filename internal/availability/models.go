package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeeklySlot is a recurring open window on one weekday. Times are "HH:MM"
// 24-hour local time.
type WeeklySlot struct {
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Exception blocks out a date range. Without time bounds the whole day(s) are
// blocked; with time bounds only that sub-interval is blocked on each day in
// range. Dates are "YYYY-MM-DD".
type Exception struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Availability is the singleton aggregate of weekly open hours plus
// date-specific exceptions. It is replaced wholesale by admin edits.
type Availability struct {
	WeeklySlots []WeeklySlot `json:"weekly_slots"`
	Exceptions  []Exception  `json:"exceptions"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks slot and exception shapes at edit time. Weekly slots on the
// same day must not overlap each other; this is not re-checked on reads.
func (a *Availability) Validate() error {
	for i, s := range a.WeeklySlots {
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			return fmt.Errorf("availability: slot %d: day_of_week %d out of range", i, s.DayOfWeek)
		}
		start, err := parseHHMM(s.StartTime)
		if err != nil {
			return fmt.Errorf("availability: slot %d: %w", i, err)
		}
		end, err := parseHHMM(s.EndTime)
		if err != nil {
			return fmt.Errorf("availability: slot %d: %w", i, err)
		}
		if end <= start {
			return fmt.Errorf("availability: slot %d: end %q not after start %q", i, s.EndTime, s.StartTime)
		}
		for j := 0; j < i; j++ {
			o := a.WeeklySlots[j]
			if o.DayOfWeek != s.DayOfWeek {
				continue
			}
			oStart, _ := parseHHMM(o.StartTime)
			oEnd, _ := parseHHMM(o.EndTime)
			if start < oEnd && oStart < end {
				return fmt.Errorf("availability: slots %d and %d overlap on day %d", j, i, s.DayOfWeek)
			}
		}
	}
	for i, e := range a.Exceptions {
		startDate, err := time.Parse(time.DateOnly, e.StartDate)
		if err != nil {
			return fmt.Errorf("availability: exception %d: bad start_date %q", i, e.StartDate)
		}
		endDate, err := time.Parse(time.DateOnly, e.EndDate)
		if err != nil {
			return fmt.Errorf("availability: exception %d: bad end_date %q", i, e.EndDate)
		}
		if endDate.Before(startDate) {
			return fmt.Errorf("availability: exception %d: end_date before start_date", i)
		}
		if (e.StartTime == "") != (e.EndTime == "") {
			return fmt.Errorf("availability: exception %d: start_time and end_time must both be set or both empty", i)
		}
		if e.StartTime != "" {
			start, err := parseHHMM(e.StartTime)
			if err != nil {
				return fmt.Errorf("availability: exception %d: %w", i, err)
			}
			end, err := parseHHMM(e.EndTime)
			if err != nil {
				return fmt.Errorf("availability: exception %d: %w", i, err)
			}
			if end <= start {
				return fmt.Errorf("availability: exception %d: end %q not after start %q", i, e.EndTime, e.StartTime)
			}
		}
	}
	return nil
}

// parseHHMM converts "HH:MM" to minutes from midnight.
func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}
